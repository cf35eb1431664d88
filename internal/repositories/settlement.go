package repositories

import (
	"errors"
	"strings"

	"taxgate/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrSettlementExists   = errors.New("settlement already exists for invoice")
)

// SettlementRepository defines database operations for settlements.
type SettlementRepository interface {
	// Create inserts a settlement; at most one may exist per invoice
	Create(settlement *models.Settlement) error

	// GetByInvoiceID retrieves the settlement for an invoice
	GetByInvoiceID(invoiceID uint) (*models.Settlement, error)

	// List retrieves settlements with pagination, newest first
	List(offset, limit int) ([]models.Settlement, int64, error)
}

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new instance of SettlementRepository
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Create(settlement *models.Settlement) error {
	if err := r.db.Create(settlement).Error; err != nil {
		// The unique index on invoice_id backs the exactly-once guarantee.
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrSettlementExists
		}
		return err
	}
	return nil
}

func (r *settlementRepository) GetByInvoiceID(invoiceID uint) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.Where("invoice_id = ?", invoiceID).First(&settlement).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSettlementNotFound
		}
		return nil, err
	}
	return &settlement, nil
}

func (r *settlementRepository) List(offset, limit int) ([]models.Settlement, int64, error) {
	var settlements []models.Settlement
	var total int64

	if err := r.db.Model(&models.Settlement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&settlements).Error
	return settlements, total, err
}
