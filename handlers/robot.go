package handlers

import (
	"log/slog"
	"net/http"

	"fleet-charging/cache"
	"fleet-charging/database"
	"fleet-charging/fleet"
	"fleet-charging/handlers/base"
	"fleet-charging/models"

	"github.com/labstack/echo/v4"
)

// RobotHandler handles robot CRUD and every charging transition.
type RobotHandler struct {
	db     *database.Database
	engine *fleet.Engine
	cache  *cache.Cache
	logger *slog.Logger
}

func NewRobotHandler(db *database.Database, engine *fleet.Engine, cacheClient *cache.Cache, logger *slog.Logger) *RobotHandler {
	return &RobotHandler{
		db:     db,
		engine: engine,
		cache:  cacheClient,
		logger: logger.With("component", "robot_handler"),
	}
}

// invalidateAnalytics drops cached analytics after a fleet mutation. A cache
// failure is logged, never surfaced; the store is the source of truth.
func (h *RobotHandler) invalidateAnalytics(c echo.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAnalytics(c.Request().Context()); err != nil {
		h.logger.Error("Failed to invalidate analytics cache", slog.Any("error", err))
	}
}

// ===================================================================
// CRUD
// ===================================================================

type createRobotRequest struct {
	Name         string  `json:"name"`
	BatteryLevel float64 `json:"battery_level"`
	Status       string  `json:"status"`
}

// CreateRobot registers a new robot.
func (h *RobotHandler) CreateRobot(c echo.Context) error {
	var req createRobotRequest
	if err := c.Bind(&req); err != nil {
		return base.HandleBindError(c, err)
	}
	if req.Name == "" {
		return base.BadRequestError("name is required")
	}

	robot := &models.Robot{
		Name:         req.Name,
		BatteryLevel: req.BatteryLevel,
		Status:       models.RobotIdle,
	}
	if req.Status != "" {
		robot.Status = models.RobotStatus(req.Status)
	}

	created, err := h.db.RobotRepo.Create(robot)
	return base.SendCreationResult(c, created, err, "Robot")
}

// ListRobots retrieves all robots.
func (h *RobotHandler) ListRobots(c echo.Context) error {
	robots, err := h.db.RobotRepo.List()
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendGetResponse(c, robots)
}

// GetRobot retrieves a single robot.
func (h *RobotHandler) GetRobot(c echo.Context) error {
	id, err := base.ExtractRobotID(c)
	if err != nil {
		return err
	}

	robot, err := h.db.RobotRepo.GetByID(id)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendGetResponse(c, robot)
}

// UpdateRobot applies a partial update to a robot.
func (h *RobotHandler) UpdateRobot(c echo.Context) error {
	id, err := base.ExtractRobotID(c)
	if err != nil {
		return err
	}

	var updates map[string]interface{}
	if err := c.Bind(&updates); err != nil {
		return base.HandleBindError(c, err)
	}

	robot, err := h.db.RobotRepo.Update(id, updates)
	return base.SendUpdateResult(c, robot, err, "Robot", id)
}

// DeleteRobot removes a robot.
func (h *RobotHandler) DeleteRobot(c echo.Context) error {
	id, err := base.ExtractRobotID(c)
	if err != nil {
		return err
	}

	err = h.db.RobotRepo.Delete(id)
	return base.SendDeletionResult(c, err, "Robot", id)
}

// ===================================================================
// CHARGING TRANSITIONS
// ===================================================================

// AssignRobot attaches a robot to a station and starts a charging session.
func (h *RobotHandler) AssignRobot(c echo.Context) error {
	robotID, err := base.ExtractRobotID(c)
	if err != nil {
		return err
	}
	stationID, err := base.ExtractStationID(c)
	if err != nil {
		return err
	}

	message, err := h.engine.Assign(robotID, stationID)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}

	h.invalidateAnalytics(c)
	return base.SendOKJSON(c, message, nil)
}

// ReleaseRobot detaches a robot from its station and completes the session.
func (h *RobotHandler) ReleaseRobot(c echo.Context) error {
	robotID, err := base.ExtractRobotID(c)
	if err != nil {
		return err
	}

	message, err := h.engine.Release(robotID)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}

	h.invalidateAnalytics(c)
	return base.SendOKJSON(c, message, nil)
}

// StartCharging begins a session on the robot's attached station.
func (h *RobotHandler) StartCharging(c echo.Context) error {
	robotID, err := base.ExtractRobotID(c)
	if err != nil {
		return err
	}

	message, err := h.engine.StartCharging(robotID)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}

	h.invalidateAnalytics(c)
	return base.SendOKJSON(c, message, nil)
}

// CompleteCharging ends the robot's session.
func (h *RobotHandler) CompleteCharging(c echo.Context) error {
	robotID, err := base.ExtractRobotID(c)
	if err != nil {
		return err
	}

	message, err := h.engine.CompleteCharging(robotID)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}

	h.invalidateAnalytics(c)
	return base.SendOKJSON(c, message, nil)
}

// CheckLowBattery runs the low-battery sweep and returns the actions taken.
func (h *RobotHandler) CheckLowBattery(c echo.Context) error {
	actions, err := h.engine.LowBatterySweep()
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}

	h.invalidateAnalytics(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"actions": actions,
		"count":   len(actions),
	})
}
