package repositories

import (
	"errors"
	"fmt"

	"fleet-charging/models"
	"fleet-charging/repositories/base"
	"fleet-charging/repositories/interfaces"

	"gorm.io/gorm"
)

type StationRepository struct {
	*base.BaseCRUDRepository[models.Station]
}

func NewStationRepository(db *gorm.DB) interfaces.StationRepositoryInterface {
	return &StationRepository{
		BaseCRUDRepository: base.NewBaseCRUDRepository[models.Station](db, "charging_stations"),
	}
}

func (r *StationRepository) Create(station *models.Station) (*models.Station, error) {
	if station.Status == "" {
		station.Status = models.StationIdle
	}
	if err := models.ValidateStatus("station", station.Status.Valid(), string(station.Status)); err != nil {
		return nil, base.NewValidationError("status", string(station.Status), err.Error())
	}
	if station.EfficiencyRating < 0 || station.EfficiencyRating > 100 {
		return nil, base.NewValidationError("efficiency", fmt.Sprintf("%v", station.EfficiencyRating), "must be between 0 and 100")
	}
	return r.CreateAndGet(station)
}

func (r *StationRepository) List() ([]models.Station, error) {
	return r.ListWithPagination(0, 0, "id asc")
}

func (r *StationRepository) Update(id uint, updates map[string]interface{}) (*models.Station, error) {
	if status, ok := updates["status"].(string); ok {
		if !models.StationStatus(status).Valid() {
			return nil, base.NewValidationError("status", status, "not a valid station status")
		}
	}
	if eff, ok := updates["efficiency"].(float64); ok {
		if eff < 0 || eff > 100 {
			return nil, base.NewValidationError("efficiency", fmt.Sprintf("%v", eff), "must be between 0 and 100")
		}
	}
	return r.UpdateAndGet(id, updates)
}

func (r *StationRepository) Delete(id uint) error {
	return r.DeleteWithValidation(id)
}

func (r *StationRepository) GetTx(tx *gorm.DB, id uint) (*models.Station, error) {
	var station models.Station
	err := tx.Where("id = ?", id).First(&station).Error
	if err != nil {
		return nil, base.HandleDBError("get", "charging_stations", fmt.Sprintf("ID %d", id), err)
	}
	return &station, nil
}

func (r *StationRepository) UpdateTx(tx *gorm.DB, id uint, updates map[string]interface{}) error {
	return r.UpdateWithTransaction(tx, id, updates)
}

// FindFirstIdleTx returns any currently idle station, or nil when none is
// idle.
func (r *StationRepository) FindFirstIdleTx(tx *gorm.DB) (*models.Station, error) {
	var station models.Station
	err := tx.Where("status = ?", models.StationIdle).Order("id asc").First(&station).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, base.WrapDBError("find idle", "charging_stations", err)
	}
	return &station, nil
}
