package report

import (
	"context"
	"time"

	"taxgate/internal/models"

	"github.com/shopspring/decimal"
)

// ReportStore is the subset of the tax report repository the service needs.
// The combined writes are transactional: report and invoice commit together.
type ReportStore interface {
	GetByID(id uint) (*models.TaxReport, error)
	GetByBankAndPeriod(bankID uint, month, year int) (*models.TaxReport, error)
	ListByBank(bankID uint) ([]models.TaxReport, error)
	CreateWithInvoice(report *models.TaxReport, invoice *models.Invoice) error
	UpdateWithInvoice(report *models.TaxReport, invoice *models.Invoice) error
}

// InvoiceStore reads and mutates invoices outside of combined writes.
type InvoiceStore interface {
	GetByID(id uint) (*models.Invoice, error)
	GetByReportID(reportID uint) (*models.Invoice, error)
}

// PaymentSummer totals confirmed gateway collections for an invoice.
type PaymentSummer interface {
	SumSuccessfulForInvoice(invoiceID uint) (decimal.Decimal, error)
}

// SettlementTrigger fires on administrative approval.
type SettlementTrigger interface {
	CreateForApproval(ctx context.Context, report *models.TaxReport, invoice *models.Invoice, reviewerID uint, now time.Time) (*models.Settlement, error)
}

// AgentCounter supplies the live POS agent count for submission overviews.
type AgentCounter interface {
	CountActiveByBank(bankID uint) (int64, error)
}

// OverviewCache serves submission overviews without rereading the report
// history. Report writes invalidate it at the repository layer.
type OverviewCache interface {
	GetSubmissionStatus(ctx context.Context, bankID uint, dest interface{}) (bool, error)
	CacheSubmissionStatus(ctx context.Context, bankID uint, status interface{}) error
}

type Service interface {
	// Submit files a new report for a period and creates its invoice.
	Submit(ctx context.Context, bank *models.User, req models.SubmitReportRequest) (*models.TaxReport, *models.Invoice, error)

	// Revise resubmits a rejected report in place, reconciling the invoice
	// against what was already paid.
	Revise(ctx context.Context, bankID, reportID uint, req models.ReviseReportRequest) (*models.TaxReport, *models.Invoice, error)

	// Approve records an admin approval and fires the settlement trigger.
	Approve(ctx context.Context, reviewerID, invoiceID uint) error

	// Reject records an admin rejection with a reason.
	Reject(ctx context.Context, reviewerID, invoiceID uint, reason string) error

	// Overview summarizes a bank's submission standing for the current period.
	Overview(ctx context.Context, bank *models.User) (*Overview, error)

	// ListByBank returns the bank's full report history.
	ListByBank(ctx context.Context, bankID uint) ([]models.TaxReport, error)
}
