package repositories

import (
	"errors"

	"taxgate/internal/models"
)

var (
	ErrReportNotFound  = errors.New("tax report not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// TaxReportRepository defines database operations for tax reports. The
// combined writes mutate a report and its invoice inside one database
// transaction so a revision or review never half-commits.
type TaxReportRepository interface {
	// GetByID retrieves a report by its ID
	GetByID(id uint) (*models.TaxReport, error)

	// GetByBankAndPeriod retrieves the report a bank filed for one period
	GetByBankAndPeriod(bankID uint, month, year int) (*models.TaxReport, error)

	// ListByBank retrieves all reports for a bank, newest first
	ListByBank(bankID uint) ([]models.TaxReport, error)

	// List retrieves reports across all banks with pagination
	List(status string, offset, limit int) ([]models.TaxReport, int64, error)

	// CreateWithInvoice inserts a new report and its invoice atomically
	CreateWithInvoice(report *models.TaxReport, invoice *models.Invoice) error

	// UpdateWithInvoice saves report and invoice mutations atomically
	UpdateWithInvoice(report *models.TaxReport, invoice *models.Invoice) error
}

// InvoiceRepository defines database operations for invoices.
type InvoiceRepository interface {
	// GetByID retrieves an invoice by its ID
	GetByID(id uint) (*models.Invoice, error)

	// GetByReportID retrieves the invoice linked to a report
	GetByReportID(reportID uint) (*models.Invoice, error)

	// ListByBank retrieves all invoices for a bank, newest first
	ListByBank(bankID uint) ([]models.Invoice, error)

	// ListForReview retrieves paid invoices awaiting an admin decision
	ListForReview(offset, limit int) ([]models.Invoice, int64, error)

	// Update saves invoice mutations
	Update(invoice *models.Invoice) error
}
