package interfaces

import (
	"fleet-charging/models"

	"gorm.io/gorm"
)

// StationRepositoryInterface defines charging station data access operations.
type StationRepositoryInterface interface {
	Create(station *models.Station) (*models.Station, error)
	GetByID(id uint) (*models.Station, error)
	List() ([]models.Station, error)
	Update(id uint, updates map[string]interface{}) (*models.Station, error)
	Delete(id uint) error

	GetTx(tx *gorm.DB, id uint) (*models.Station, error)
	UpdateTx(tx *gorm.DB, id uint, updates map[string]interface{}) error
	FindFirstIdleTx(tx *gorm.DB) (*models.Station, error)
}
