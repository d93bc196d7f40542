package interfaces

import (
	"fleet-charging/models"

	"gorm.io/gorm"
)

// RobotRepositoryInterface defines robot data access operations.
type RobotRepositoryInterface interface {
	Create(robot *models.Robot) (*models.Robot, error)
	GetByID(id uint) (*models.Robot, error)
	List() ([]models.Robot, error)
	Update(id uint, updates map[string]interface{}) (*models.Robot, error)
	Delete(id uint) error

	// Transactional accessors used by the fleet state machine.
	GetTx(tx *gorm.DB, id uint) (*models.Robot, error)
	UpdateTx(tx *gorm.DB, id uint, updates map[string]interface{}) error
	FindByStationTx(tx *gorm.DB, stationID uint, excludeRobotID uint) (*models.Robot, error)

	// Sweep queries.
	FindLowBatteryIdle(threshold float64) ([]models.Robot, error)
	FindCharging() ([]models.Robot, error)
}
