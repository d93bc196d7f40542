package repositories

import (
	"errors"
	"fmt"

	"fleet-charging/models"
	"fleet-charging/repositories/base"
	"fleet-charging/repositories/interfaces"

	"gorm.io/gorm"
)

type RobotRepository struct {
	*base.BaseCRUDRepository[models.Robot]
}

func NewRobotRepository(db *gorm.DB) interfaces.RobotRepositoryInterface {
	return &RobotRepository{
		BaseCRUDRepository: base.NewBaseCRUDRepository[models.Robot](db, "robots"),
	}
}

func (r *RobotRepository) Create(robot *models.Robot) (*models.Robot, error) {
	if err := models.ValidateStatus("robot", robot.Status.Valid(), string(robot.Status)); err != nil {
		return nil, base.NewValidationError("status", string(robot.Status), err.Error())
	}
	return r.CreateAndGet(robot)
}

func (r *RobotRepository) List() ([]models.Robot, error) {
	return r.ListWithPagination(0, 0, "id asc")
}

func (r *RobotRepository) Update(id uint, updates map[string]interface{}) (*models.Robot, error) {
	if status, ok := updates["status"].(string); ok {
		if !models.RobotStatus(status).Valid() {
			return nil, base.NewValidationError("status", status, "not a valid robot status")
		}
	}
	return r.UpdateAndGet(id, updates)
}

func (r *RobotRepository) Delete(id uint) error {
	return r.DeleteWithValidation(id)
}

func (r *RobotRepository) GetTx(tx *gorm.DB, id uint) (*models.Robot, error) {
	var robot models.Robot
	err := tx.Where("id = ?", id).First(&robot).Error
	if err != nil {
		return nil, base.HandleDBError("get", "robots", fmt.Sprintf("ID %d", id), err)
	}
	return &robot, nil
}

func (r *RobotRepository) UpdateTx(tx *gorm.DB, id uint, updates map[string]interface{}) error {
	return r.UpdateWithTransaction(tx, id, updates)
}

// FindByStationTx returns the robot attached to the station, excluding the
// given robot id. Returns nil when no other robot references the station.
func (r *RobotRepository) FindByStationTx(tx *gorm.DB, stationID uint, excludeRobotID uint) (*models.Robot, error) {
	var robot models.Robot
	err := tx.Where("station_id = ? AND id <> ?", stationID, excludeRobotID).First(&robot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, base.WrapDBError("find by station", "robots", err)
	}
	return &robot, nil
}

func (r *RobotRepository) FindLowBatteryIdle(threshold float64) ([]models.Robot, error) {
	var robots []models.Robot
	err := r.DB().
		Where("battery_level < ? AND status = ?", threshold, models.RobotIdle).
		Order("id asc").
		Find(&robots).Error
	if err != nil {
		return nil, base.WrapDBError("find low battery", "robots", err)
	}
	return robots, nil
}

func (r *RobotRepository) FindCharging() ([]models.Robot, error) {
	var robots []models.Robot
	err := r.DB().
		Where("status = ?", models.RobotCharging).
		Order("id asc").
		Find(&robots).Error
	if err != nil {
		return nil, base.WrapDBError("find charging", "robots", err)
	}
	return robots, nil
}
