package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice payment statuses
const (
	PaymentStatusPending       = "pending"
	PaymentStatusLinkGenerated = "payment_link_generated"
	PaymentStatusProcessing    = "processing"
	PaymentStatusSuccess       = "success"
	PaymentStatusFailed        = "failed"
)

// Invoice investigation statuses (administrative review, independent of payment)
const (
	InvestigationPendingReview = "pending_review"
	InvestigationUnderReview   = "under_review"
	InvestigationApproved      = "approved"
	InvestigationRejected      = "rejected"
)

// Invoice is the monetary instrument derived 1:1 from a TaxReport. The
// invoice number is generated once and survives every revision of the report.
type Invoice struct {
	ID                    uint            `gorm:"primarykey" json:"id"`
	InvoiceNumber         string          `gorm:"uniqueIndex;not null" json:"invoice_number"`
	TaxReportID           uint            `gorm:"uniqueIndex;not null" json:"tax_report_id"`
	BankID                uint            `gorm:"not null;index" json:"bank_id"`
	TaxRate               decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"tax_rate"`
	TaxAmount             decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"tax_amount"`
	PreviousPaymentAmount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"previous_payment_amount"`
	AdditionalTaxAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"additional_tax_amount"`
	Currency              string          `gorm:"default:'NGN'" json:"currency"`
	PaymentStatus         string          `gorm:"not null;default:'pending'" json:"payment_status"`
	InvestigationStatus   string          `gorm:"not null;default:'pending_review'" json:"investigation_status"`
	RejectionReason       string          `json:"rejection_reason,omitempty"`
	ReviewerID            *uint           `json:"reviewer_id,omitempty"`
	ReviewedAt            *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// Reviewable reports whether the invoice is still open for an admin decision.
func (i *Invoice) Reviewable() bool {
	return i.InvestigationStatus == InvestigationPendingReview ||
		i.InvestigationStatus == InvestigationUnderReview
}

// Paid reports whether the gateway confirmed collection.
func (i *Invoice) Paid() bool {
	return i.PaymentStatus == PaymentStatusSuccess
}
