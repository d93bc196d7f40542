package interfaces

import (
	"fleet-charging/models"

	"gorm.io/gorm"
)

// OrderRepositoryInterface defines charging order data access operations.
// Orders are opened and closed only by the fleet state machine.
type OrderRepositoryInterface interface {
	GetByID(id uint) (*models.ChargingOrder, error)
	List() ([]models.ChargingOrder, error)

	CreateTx(tx *gorm.DB, order *models.ChargingOrder) error
	UpdateTx(tx *gorm.DB, id uint, updates map[string]interface{}) error

	// LatestOpenForRobotTx returns the robot's open order with the greatest
	// start time, or nil when the robot has no open order.
	LatestOpenForRobotTx(tx *gorm.DB, robotID uint) (*models.ChargingOrder, error)
}
