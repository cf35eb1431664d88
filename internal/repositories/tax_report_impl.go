package repositories

import (
	"context"
	"log"

	"taxgate/internal/models"
	"taxgate/internal/repositories/cache"

	"gorm.io/gorm"
)

type taxReportRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewTaxReportRepository creates a new instance of TaxReportRepository
func NewTaxReportRepository(db *gorm.DB, cache *cache.CacheService) TaxReportRepository {
	return &taxReportRepository{
		db:    db,
		cache: cache,
	}
}

func (r *taxReportRepository) GetByID(id uint) (*models.TaxReport, error) {
	var report models.TaxReport
	if err := r.db.First(&report, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *taxReportRepository) GetByBankAndPeriod(bankID uint, month, year int) (*models.TaxReport, error) {
	var report models.TaxReport
	err := r.db.Where("bank_id = ? AND month = ? AND year = ?", bankID, month, year).
		Order("submitted_at DESC").
		First(&report).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *taxReportRepository) ListByBank(bankID uint) ([]models.TaxReport, error) {
	var reports []models.TaxReport
	err := r.db.Where("bank_id = ?", bankID).
		Order("year DESC, month DESC").
		Find(&reports).Error
	return reports, err
}

func (r *taxReportRepository) List(status string, offset, limit int) ([]models.TaxReport, int64, error) {
	var reports []models.TaxReport
	var total int64

	query := r.db.Model(&models.TaxReport{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("submitted_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, total, err
}

func (r *taxReportRepository) CreateWithInvoice(report *models.TaxReport, invoice *models.Invoice) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		invoice.TaxReportID = report.ID
		return tx.Create(invoice).Error
	})
	if err != nil {
		return err
	}

	r.invalidateSubmission(report.BankID)
	return nil
}

func (r *taxReportRepository) UpdateWithInvoice(report *models.TaxReport, invoice *models.Invoice) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(report).Error; err != nil {
			return err
		}
		return tx.Save(invoice).Error
	})
	if err != nil {
		return err
	}

	r.invalidateSubmission(report.BankID)
	return nil
}

func (r *taxReportRepository) invalidateSubmission(bankID uint) {
	if err := r.cache.InvalidateSubmissionStatus(context.Background(), bankID); err != nil {
		log.Printf("Warning: Failed to invalidate submission cache for bank %d: %v", bankID, err)
	}
}
