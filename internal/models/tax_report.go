package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tax report lifecycle statuses
const (
	ReportStatusPending  = "pending"
	ReportStatusApproved = "approved"
	ReportStatusRejected = "rejected"
)

// TaxReport is one monthly filing by a bank. A rejected report is revised in
// place rather than duplicated, so at most one row exists per (bank, period).
type TaxReport struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	BankID            uint            `gorm:"not null;uniqueIndex:idx_reports_bank_period" json:"bank_id"`
	Month             int             `gorm:"not null;uniqueIndex:idx_reports_bank_period" json:"month"` // 0-11, January = 0
	Year              int             `gorm:"not null;uniqueIndex:idx_reports_bank_period" json:"year"`
	TransactionVolume decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"transaction_volume"`
	ProfitBaseline    decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"profit_baseline"` // percentage, 0-100
	Notes             string          `json:"notes"`
	Status            string          `gorm:"not null;default:'pending'" json:"status"`
	RevisionCount     int             `gorm:"default:0" json:"revision_count"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	DocumentURL       string          `gorm:"not null" json:"document_url"`
	DocumentName      string          `json:"document_name"`
	SubmittedAt       time.Time       `json:"submitted_at"`
	ResubmittedAt     *time.Time      `json:"resubmitted_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Active reports whether the report blocks a new submission for its period.
func (r *TaxReport) Active() bool {
	return r.Status == ReportStatusPending || r.Status == ReportStatusApproved
}

// SubmitReportRequest is the payload for a first submission.
type SubmitReportRequest struct {
	Month             int    `json:"month"`
	Year              int    `json:"year"`
	TransactionVolume string `json:"transaction_volume"`
	ProfitBaseline    string `json:"profit_baseline"`
	Notes             string `json:"notes"`
	DocumentURL       string `json:"document_url"`
	DocumentName      string `json:"document_name"`
	ConfirmAccuracy   bool   `json:"confirm_accuracy"`
}

// ReviseReportRequest is the payload for resubmitting a rejected report.
// Document fields are optional; the prior document is carried over when empty.
type ReviseReportRequest struct {
	TransactionVolume string `json:"transaction_volume"`
	ProfitBaseline    string `json:"profit_baseline"`
	Notes             string `json:"notes"`
	DocumentURL       string `json:"document_url"`
	DocumentName      string `json:"document_name"`
	ConfirmAccuracy   bool   `json:"confirm_accuracy"`
}

// ReviewRequest is the admin approve/reject payload.
type ReviewRequest struct {
	Reason string `json:"reason"`
}
