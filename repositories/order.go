package repositories

import (
	"errors"
	"fmt"

	"fleet-charging/models"
	"fleet-charging/repositories/base"
	"fleet-charging/repositories/interfaces"

	"gorm.io/gorm"
)

type OrderRepository struct {
	*base.BaseCRUDRepository[models.ChargingOrder]
}

func NewOrderRepository(db *gorm.DB) interfaces.OrderRepositoryInterface {
	return &OrderRepository{
		BaseCRUDRepository: base.NewBaseCRUDRepository[models.ChargingOrder](db, "charging_orders"),
	}
}

func (r *OrderRepository) GetByID(id uint) (*models.ChargingOrder, error) {
	var order models.ChargingOrder
	err := r.DB().Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, base.HandleDBError("get", "charging_orders", fmt.Sprintf("ID %d", id), err)
	}
	return &order, nil
}

func (r *OrderRepository) List() ([]models.ChargingOrder, error) {
	var orders []models.ChargingOrder
	err := r.DB().Order("start_time asc, id asc").Find(&orders).Error
	if err != nil {
		return nil, base.WrapDBError("list", "charging_orders", err)
	}
	return orders, nil
}

func (r *OrderRepository) CreateTx(tx *gorm.DB, order *models.ChargingOrder) error {
	if err := models.ValidateStatus("order", order.Status.Valid(), string(order.Status)); err != nil {
		return base.NewValidationError("status", string(order.Status), err.Error())
	}
	return r.CreateWithTransaction(tx, order)
}

func (r *OrderRepository) UpdateTx(tx *gorm.DB, id uint, updates map[string]interface{}) error {
	return r.UpdateWithTransaction(tx, id, updates)
}

func (r *OrderRepository) LatestOpenForRobotTx(tx *gorm.DB, robotID uint) (*models.ChargingOrder, error) {
	var order models.ChargingOrder
	err := tx.
		Where("robot_id = ? AND status = ?", robotID, models.OrderCharging).
		Order("start_time desc, id desc").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, base.WrapDBError("find open order", "charging_orders", err)
	}
	return &order, nil
}
