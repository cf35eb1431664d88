package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement attributes the funds of an approved, paid invoice to the
// government ledger. Created exactly once per invoice by the reviewing admin.
type Settlement struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Reference    string          `gorm:"uniqueIndex;not null" json:"reference"`
	TaxReportID  uint            `gorm:"not null;index" json:"tax_report_id"`
	InvoiceID    uint            `gorm:"uniqueIndex;not null" json:"invoice_id"`
	TaxPaymentID *uint           `json:"tax_payment_id,omitempty"` // nil when no payment record matched
	BankID       uint            `gorm:"not null;index" json:"bank_id"`
	Amount       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Currency     string          `gorm:"default:'NGN'" json:"currency"`
	CreatedByID  uint            `gorm:"not null" json:"created_by_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
