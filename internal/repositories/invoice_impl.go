package repositories

import (
	"taxgate/internal/models"

	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new instance of InvoiceRepository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.First(&invoice, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByReportID(reportID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Where("tax_report_id = ?", reportID).First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByBank(bankID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("bank_id = ?", bankID).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListForReview(offset, limit int) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	query := r.db.Model(&models.Invoice{}).
		Where("payment_status = ? AND investigation_status IN ?",
			models.PaymentStatusSuccess,
			[]string{models.InvestigationPendingReview, models.InvestigationUnderReview})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("updated_at ASC").Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepository) Update(invoice *models.Invoice) error {
	return r.db.Save(invoice).Error
}
