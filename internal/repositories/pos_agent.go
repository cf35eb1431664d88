package repositories

import (
	"errors"

	"taxgate/internal/models"

	"gorm.io/gorm"
)

var ErrAgentNotFound = errors.New("pos agent not found")

// POSAgentRepository defines database operations for POS agents.
type POSAgentRepository interface {
	// Create registers a new agent under a bank
	Create(agent *models.POSAgent) error

	// GetByID retrieves an agent by its ID
	GetByID(id uint) (*models.POSAgent, error)

	// ListByBank retrieves a bank's agents with pagination
	ListByBank(bankID uint, offset, limit int) ([]models.POSAgent, int64, error)

	// CountActiveByBank counts a bank's active agents
	CountActiveByBank(bankID uint) (int64, error)

	// Update saves agent mutations
	Update(agent *models.POSAgent) error
}

type posAgentRepository struct {
	db *gorm.DB
}

// NewPOSAgentRepository creates a new instance of POSAgentRepository
func NewPOSAgentRepository(db *gorm.DB) POSAgentRepository {
	return &posAgentRepository{db: db}
}

func (r *posAgentRepository) Create(agent *models.POSAgent) error {
	return r.db.Create(agent).Error
}

func (r *posAgentRepository) GetByID(id uint) (*models.POSAgent, error) {
	var agent models.POSAgent
	if err := r.db.First(&agent, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

func (r *posAgentRepository) ListByBank(bankID uint, offset, limit int) ([]models.POSAgent, int64, error) {
	var agents []models.POSAgent
	var total int64

	query := r.db.Model(&models.POSAgent{}).Where("bank_id = ?", bankID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&agents).Error
	return agents, total, err
}

func (r *posAgentRepository) CountActiveByBank(bankID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.POSAgent{}).
		Where("bank_id = ? AND status = ?", bankID, "active").
		Count(&count).Error
	return count, err
}

func (r *posAgentRepository) Update(agent *models.POSAgent) error {
	return r.db.Save(agent).Error
}
