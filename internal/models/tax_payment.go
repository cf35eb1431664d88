package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxPayment is one gateway collection attempt against an invoice. The
// reference is handed to the gateway at initialization and echoed back on the
// callback, which is how the two records are matched.
type TaxPayment struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	InvoiceID        uint            `gorm:"not null;index" json:"invoice_id"`
	TaxReportID      uint            `gorm:"not null;index" json:"tax_report_id"`
	BankID           uint            `gorm:"not null;index" json:"bank_id"`
	Amount           decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Currency         string          `gorm:"default:'NGN'" json:"currency"`
	Reference        string          `gorm:"uniqueIndex;not null" json:"reference"`
	GatewaySessionID string          `json:"gateway_session_id"`
	Status           string          `gorm:"not null;default:'pending'" json:"status"`
	Metadata         JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
