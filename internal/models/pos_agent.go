package models

import (
	"time"

	"gorm.io/gorm"
)

// POSAgent is a terminal operator registered under a bank. Agent counts shown
// on bank submission summaries are computed from these rows.
type POSAgent struct {
	gorm.Model
	BankID          uint   `gorm:"not null;index"`
	Name            string `gorm:"not null"`
	Phone           string `gorm:"uniqueIndex;not null"`
	TerminalID      string `gorm:"uniqueIndex;not null"`
	BusinessName    string
	BusinessAddress string
	Status          string `gorm:"default:'active'"`
	OnboardedAt     time.Time
}
