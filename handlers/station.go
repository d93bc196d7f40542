package handlers

import (
	"log/slog"

	"fleet-charging/database"
	"fleet-charging/handlers/base"
	"fleet-charging/models"

	"github.com/labstack/echo/v4"
)

// StationHandler handles charging station CRUD.
type StationHandler struct {
	db     *database.Database
	logger *slog.Logger
}

func NewStationHandler(db *database.Database, logger *slog.Logger) *StationHandler {
	return &StationHandler{
		db:     db,
		logger: logger.With("component", "station_handler"),
	}
}

type createStationRequest struct {
	Name             string  `json:"name"`
	Location         string  `json:"location"`
	PowerRating      float64 `json:"power_rating"`
	EfficiencyRating float64 `json:"efficiency"`
	Status           string  `json:"status"`
}

// CreateStation registers a new charging station.
func (h *StationHandler) CreateStation(c echo.Context) error {
	var req createStationRequest
	if err := c.Bind(&req); err != nil {
		return base.HandleBindError(c, err)
	}
	if req.Name == "" {
		return base.BadRequestError("name is required")
	}

	station := &models.Station{
		Name:             req.Name,
		Location:         req.Location,
		PowerRating:      req.PowerRating,
		EfficiencyRating: req.EfficiencyRating,
		Status:           models.StationIdle,
	}
	if req.Status != "" {
		station.Status = models.StationStatus(req.Status)
	}
	if station.EfficiencyRating == 0 {
		station.EfficiencyRating = 100
	}

	created, err := h.db.StationRepo.Create(station)
	return base.SendCreationResult(c, created, err, "Station")
}

// ListStations retrieves all charging stations.
func (h *StationHandler) ListStations(c echo.Context) error {
	stations, err := h.db.StationRepo.List()
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendGetResponse(c, stations)
}

// GetStation retrieves a single charging station.
func (h *StationHandler) GetStation(c echo.Context) error {
	id, err := base.ExtractIDParam(c, "id")
	if err != nil {
		return err
	}

	station, err := h.db.StationRepo.GetByID(id)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendGetResponse(c, station)
}

// UpdateStation applies a partial update to a station.
func (h *StationHandler) UpdateStation(c echo.Context) error {
	id, err := base.ExtractIDParam(c, "id")
	if err != nil {
		return err
	}

	var updates map[string]interface{}
	if err := c.Bind(&updates); err != nil {
		return base.HandleBindError(c, err)
	}

	station, err := h.db.StationRepo.Update(id, updates)
	return base.SendUpdateResult(c, station, err, "Station", id)
}

// DeleteStation removes a station.
func (h *StationHandler) DeleteStation(c echo.Context) error {
	id, err := base.ExtractIDParam(c, "id")
	if err != nil {
		return err
	}

	err = h.db.StationRepo.Delete(id)
	return base.SendDeletionResult(c, err, "Station", id)
}
