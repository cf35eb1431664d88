package repositories

import (
	"errors"

	"taxgate/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("tax payment not found")

// TaxPaymentRepository defines database operations for gateway payments.
type TaxPaymentRepository interface {
	// Create inserts a new payment record
	Create(payment *models.TaxPayment) error

	// GetByReference retrieves a payment by its gateway reference
	GetByReference(reference string) (*models.TaxPayment, error)

	// GetLatestForInvoice retrieves the newest successful payment for an
	// invoice by the given bank, if any
	GetLatestForInvoice(bankID, invoiceID uint) (*models.TaxPayment, error)

	// SumSuccessfulForInvoice totals all confirmed collections on an invoice
	SumSuccessfulForInvoice(invoiceID uint) (decimal.Decimal, error)

	// Update saves payment mutations
	Update(payment *models.TaxPayment) error
}

type taxPaymentRepository struct {
	db *gorm.DB
}

// NewTaxPaymentRepository creates a new instance of TaxPaymentRepository
func NewTaxPaymentRepository(db *gorm.DB) TaxPaymentRepository {
	return &taxPaymentRepository{db: db}
}

func (r *taxPaymentRepository) Create(payment *models.TaxPayment) error {
	return r.db.Create(payment).Error
}

func (r *taxPaymentRepository) GetByReference(reference string) (*models.TaxPayment, error) {
	var payment models.TaxPayment
	err := r.db.Where("reference = ?", reference).First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *taxPaymentRepository) GetLatestForInvoice(bankID, invoiceID uint) (*models.TaxPayment, error) {
	var payment models.TaxPayment
	err := r.db.Where("bank_id = ? AND invoice_id = ? AND status = ?",
		bankID, invoiceID, models.PaymentStatusSuccess).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *taxPaymentRepository) SumSuccessfulForInvoice(invoiceID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&models.TaxPayment{}).
		Where("invoice_id = ? AND status = ?", invoiceID, models.PaymentStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *taxPaymentRepository) Update(payment *models.TaxPayment) error {
	return r.db.Save(payment).Error
}
