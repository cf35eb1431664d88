package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin      = "admin"
	RoleBank       = "bank"
	RoleGovernment = "government"
	RoleAgent      = "agent"
)

type User struct {
	gorm.Model
	Email               string `gorm:"uniqueIndex;not null"` // Unique index on Email
	Password            string `gorm:"not null"`
	Name                string `gorm:"not null"`
	Phone               string `gorm:"uniqueIndex;not null"` // Unique index on Phone
	Role                string `gorm:"default:'bank'"`
	Status              string `gorm:"default:'active'"`
	BankName            string
	BankCode            string `gorm:"index"`
	ContactAddress      string
	LastLoginAt         time.Time
	LastLoginIP         string
	FailedLoginAttempts int `gorm:"default:0"`
	AccountLockoutUntil *time.Time
	TokenVersion        int `gorm:"default:1"`
}

// CreateUserInput carries the fields accepted at registration. Role is
// validated by the service; self-registration only ever yields bank accounts.
type CreateUserInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	BankName       string `json:"bank_name"`
	BankCode       string `json:"bank_code"`
	ContactAddress string `json:"contact_address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// IsFiler reports whether this user submits monthly tax reports.
// Only bank accounts file; admin, government and agent accounts never do.
func (u *User) IsFiler() bool {
	return u.Role == RoleBank
}
