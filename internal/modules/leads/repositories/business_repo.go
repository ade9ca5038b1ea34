package repositories

import (
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/models"
	"gorm.io/gorm"
)

type BusinessRepo interface {
	GetByID(id string) (*models.Business, error)
	List() ([]models.Business, error)
}

type businessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepo {
	return &businessRepo{db: db}
}

func (r *businessRepo) GetByID(id string) (*models.Business, error) {
	var business models.Business
	if err := r.db.First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepo) List() ([]models.Business, error) {
	var businesses []models.Business
	err := r.db.Order("created_at ASC").Find(&businesses).Error
	return businesses, err
}
