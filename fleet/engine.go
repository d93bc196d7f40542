package fleet

import (
	"fmt"
	"log/slog"
	"time"

	"fleet-charging/database"
	"fleet-charging/models"
	"fleet-charging/repositories/base"

	"gorm.io/gorm"
)

// ActionType labels one sweep action record.
type ActionType string

const (
	ActionStartCharging     ActionType = "start_charging"
	ActionAssignAndStart    ActionType = "assign_and_start_charging"
	ActionNoIdleStation     ActionType = "no_idle_station"
	ActionChargingCompleted ActionType = "charging_completed"
)

// Action is one entry in the ordered result of a low-battery sweep.
type Action struct {
	RobotID     uint       `json:"robot_id"`
	RobotName   string     `json:"robot_name"`
	StationID   *uint      `json:"station_id,omitempty"`
	StationName string     `json:"station_name,omitempty"`
	Action      ActionType `json:"action"`
	Message     string     `json:"message"`
}

// Station power fallback when a station record carries no rating, matching
// the value seeded throughout the order history.
const defaultStationPowerKW = 10.0

// Engine owns every robot/station/order transition. Each mutating operation
// runs inside a single store transaction and is serialized per robot id and
// per station id, so the invariant "a station is charging iff exactly one
// charging robot references it" holds after every call.
type Engine struct {
	db     *database.Database
	rate   RateModel
	logger *slog.Logger
	locks  *keyedMutex
	now    func() time.Time

	lowBatteryThreshold float64
	// assumedEfficiency is the fixed percentage used to close orders when no
	// measured value exists. Production systems should replace it with a
	// telemetry-derived figure.
	assumedEfficiency float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithThresholds overrides the low-battery threshold and the assumed closing
// efficiency percentage.
func WithThresholds(lowBattery, assumedEfficiency float64) Option {
	return func(e *Engine) {
		e.lowBatteryThreshold = lowBattery
		e.assumedEfficiency = assumedEfficiency
	}
}

func NewEngine(db *database.Database, rate RateModel, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		db:                  db,
		rate:                rate,
		logger:              logger.With("component", "fleet_engine"),
		locks:               newKeyedMutex(),
		now:                 time.Now,
		lowBatteryThreshold: 20,
		assumedEfficiency:   90,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ===================================================================
// ASSIGN / RELEASE
// ===================================================================

// Assign attaches a robot to an idle station and opens a charging order.
// Re-assigning a robot to the station it is already charging on is a no-op
// success. If the robot was attached to a different charging station, that
// station is reset to idle.
func (e *Engine) Assign(robotID, stationID uint) (string, error) {
	unlock := e.locks.LockKeys(robotKey(robotID), stationKey(stationID))
	defer unlock()

	var message string
	err := e.inTransaction("assign", func(tx *gorm.DB) error {
		robot, err := e.db.RobotRepo.GetTx(tx, robotID)
		if err != nil {
			return err
		}
		station, err := e.db.StationRepo.GetTx(tx, stationID)
		if err != nil {
			return err
		}

		// Idempotent re-assign: the robot already charges on this station.
		if robot.StationID != nil && *robot.StationID == stationID &&
			robot.Status == models.RobotCharging && station.Status == models.StationCharging {
			message = fmt.Sprintf("Robot %s is already charging at station %s", robot.Name, station.Name)
			return nil
		}

		if station.Status != models.StationIdle {
			return base.NewConflictError("station %s is not idle, current status: %s", station.Name, station.Status)
		}

		other, err := e.db.RobotRepo.FindByStationTx(tx, stationID, robotID)
		if err != nil {
			return err
		}
		if other != nil {
			return base.NewConflictError("station %s is already occupied by robot %s", station.Name, other.Name)
		}

		// Detach from the previous station; only its status is reset, the
		// old order stays with the new station's session history untouched.
		if robot.StationID != nil && *robot.StationID != stationID {
			old, err := e.db.StationRepo.GetTx(tx, *robot.StationID)
			if err == nil && old.Status == models.StationCharging {
				if err := e.db.StationRepo.UpdateTx(tx, old.ID, map[string]interface{}{
					"status": models.StationIdle,
				}); err != nil {
					return err
				}
			} else if err != nil && !base.IsEntityNotFound(err) {
				return err
			}
		}

		if err := e.startChargingTx(tx, robot, station); err != nil {
			return err
		}

		message = fmt.Sprintf("Robot %s assigned to station %s and started charging", robot.Name, station.Name)
		return nil
	})
	if err != nil {
		return "", err
	}
	return message, nil
}

// Release detaches a robot from its station, closes the latest open order as
// completed, and returns both entities to idle.
func (e *Engine) Release(robotID uint) (string, error) {
	// The station id is only known after reading the robot; read it outside
	// the transaction to take both locks in one sorted acquisition.
	robot, err := e.db.RobotRepo.GetByID(robotID)
	if err != nil {
		return "", err
	}
	if robot.StationID == nil {
		return "", base.NewConflictError("robot %s is not attached to any station", robot.Name)
	}

	unlock := e.locks.LockKeys(robotKey(robotID), stationKey(*robot.StationID))
	defer unlock()

	var message string
	err = e.inTransaction("release", func(tx *gorm.DB) error {
		robot, err := e.db.RobotRepo.GetTx(tx, robotID)
		if err != nil {
			return err
		}
		if robot.StationID == nil {
			return base.NewConflictError("robot %s is not attached to any station", robot.Name)
		}

		station, err := e.db.StationRepo.GetTx(tx, *robot.StationID)
		if err != nil && !base.IsEntityNotFound(err) {
			return err
		}

		now := e.now()
		if err := e.closeOpenOrderTx(tx, robot.ID, station, now); err != nil {
			return err
		}

		if err := e.db.RobotRepo.UpdateTx(tx, robot.ID, map[string]interface{}{
			"station_id":       nil,
			"status":           models.RobotIdle,
			"last_charging_at": now,
		}); err != nil {
			return err
		}

		stationName := fmt.Sprintf("Station %d", *robot.StationID)
		if station != nil {
			stationName = station.Name
			if err := e.db.StationRepo.UpdateTx(tx, station.ID, map[string]interface{}{
				"status": models.StationIdle,
			}); err != nil {
				return err
			}
		}

		message = fmt.Sprintf("Robot %s released from station %s", robot.Name, stationName)
		return nil
	})
	if err != nil {
		return "", err
	}
	return message, nil
}

// StartCharging begins a session on the station the robot is already
// attached to. The original API exposed this next to assign/release without a
// distinct protocol; it is the attached-station branch of the sweep made
// directly callable.
func (e *Engine) StartCharging(robotID uint) (string, error) {
	robot, err := e.db.RobotRepo.GetByID(robotID)
	if err != nil {
		return "", err
	}
	if robot.StationID == nil {
		return "", base.NewConflictError("robot %s is not attached to any station", robot.Name)
	}

	unlock := e.locks.LockKeys(robotKey(robotID), stationKey(*robot.StationID))
	defer unlock()

	var message string
	err = e.inTransaction("start charging", func(tx *gorm.DB) error {
		robot, err := e.db.RobotRepo.GetTx(tx, robotID)
		if err != nil {
			return err
		}
		if robot.StationID == nil {
			return base.NewConflictError("robot %s is not attached to any station", robot.Name)
		}
		station, err := e.db.StationRepo.GetTx(tx, *robot.StationID)
		if err != nil {
			return err
		}
		if station.Status != models.StationIdle {
			return base.NewConflictError("station %s is not idle, current status: %s", station.Name, station.Status)
		}

		if err := e.startChargingTx(tx, robot, station); err != nil {
			return err
		}
		message = fmt.Sprintf("Robot %s started charging at station %s", robot.Name, station.Name)
		return nil
	})
	if err != nil {
		return "", err
	}
	return message, nil
}

// CompleteCharging closes the robot's session. Alias for Release.
func (e *Engine) CompleteCharging(robotID uint) (string, error) {
	return e.Release(robotID)
}

// ===================================================================
// LOW-BATTERY SWEEP
// ===================================================================

// LowBatterySweep is the periodic maintenance pass. It schedules charging for
// idle robots under the low-battery threshold, then advances every charging
// robot's battery through the rate model, completing sessions that reach
// 100%. Each robot runs in its own transaction: one robot's failure rolls
// back only that robot's writes and the sweep continues.
func (e *Engine) LowBatterySweep() ([]Action, error) {
	actions := []Action{}

	lowRobots, err := e.db.RobotRepo.FindLowBatteryIdle(e.lowBatteryThreshold)
	if err != nil {
		return nil, err
	}
	for i := range lowRobots {
		robot := lowRobots[i]
		action, err := e.scheduleRobot(&robot)
		if err != nil {
			e.logger.Error("sweep: scheduling failed", "robot_id", robot.ID, "error", err)
			continue
		}
		if action != nil {
			actions = append(actions, *action)
		}
	}

	chargingRobots, err := e.db.RobotRepo.FindCharging()
	if err != nil {
		return nil, err
	}
	for i := range chargingRobots {
		robot := chargingRobots[i]
		action, err := e.advanceRobot(&robot)
		if err != nil {
			e.logger.Error("sweep: battery advance failed", "robot_id", robot.ID, "error", err)
			continue
		}
		if action != nil {
			actions = append(actions, *action)
		}
	}

	return actions, nil
}

// scheduleRobot starts charging for one low-battery idle robot.
func (e *Engine) scheduleRobot(robot *models.Robot) (*Action, error) {
	keys := []string{robotKey(robot.ID)}
	if robot.StationID != nil {
		keys = append(keys, stationKey(*robot.StationID))
	}
	unlock := e.locks.LockKeys(keys...)
	defer unlock()

	var action *Action
	err := e.inTransaction("sweep schedule", func(tx *gorm.DB) error {
		robot, err := e.db.RobotRepo.GetTx(tx, robot.ID)
		if err != nil {
			return err
		}
		if robot.Status != models.RobotIdle || robot.BatteryLevel >= e.lowBatteryThreshold {
			return nil
		}

		if robot.StationID != nil {
			// The station is known attached to this robot; only its
			// idleness needs checking.
			station, err := e.db.StationRepo.GetTx(tx, *robot.StationID)
			if err != nil {
				if base.IsEntityNotFound(err) {
					return nil
				}
				return err
			}
			if station.Status != models.StationIdle {
				return nil
			}
			if err := e.startChargingTx(tx, robot, station); err != nil {
				return err
			}
			action = &Action{
				RobotID:     robot.ID,
				RobotName:   robot.Name,
				StationID:   &station.ID,
				StationName: station.Name,
				Action:      ActionStartCharging,
				Message:     fmt.Sprintf("Robot %s started charging at station %s", robot.Name, station.Name),
			}
			return nil
		}

		station, err := e.db.StationRepo.FindFirstIdleTx(tx)
		if err != nil {
			return err
		}
		if station == nil {
			action = &Action{
				RobotID:   robot.ID,
				RobotName: robot.Name,
				Action:    ActionNoIdleStation,
				Message:   fmt.Sprintf("Robot %s has low battery but no station is idle", robot.Name),
			}
			return nil
		}

		if err := e.startChargingTx(tx, robot, station); err != nil {
			return err
		}
		action = &Action{
			RobotID:     robot.ID,
			RobotName:   robot.Name,
			StationID:   &station.ID,
			StationName: station.Name,
			Action:      ActionAssignAndStart,
			Message:     fmt.Sprintf("Robot %s assigned to station %s and started charging", robot.Name, station.Name),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return action, nil
}

// advanceRobot moves one charging robot's battery forward and completes the
// session when it reaches 100%.
func (e *Engine) advanceRobot(robot *models.Robot) (*Action, error) {
	keys := []string{robotKey(robot.ID)}
	if robot.StationID != nil {
		keys = append(keys, stationKey(*robot.StationID))
	}
	unlock := e.locks.LockKeys(keys...)
	defer unlock()

	var action *Action
	err := e.inTransaction("sweep advance", func(tx *gorm.DB) error {
		robot, err := e.db.RobotRepo.GetTx(tx, robot.ID)
		if err != nil {
			return err
		}
		if robot.Status != models.RobotCharging {
			return nil
		}

		now := e.now()
		elapsed := now.Sub(robot.UpdatedAt)
		level := robot.BatteryLevel + e.rate.Delta(elapsed, robot.BatteryLevel)

		if level < 100 {
			return e.db.RobotRepo.UpdateTx(tx, robot.ID, map[string]interface{}{
				"battery_level": level,
				"updated_at":    now,
			})
		}

		// Full: clamp, return the robot and its station to idle and close
		// the open order with the same computation Release uses.
		var station *models.Station
		if robot.StationID != nil {
			station, err = e.db.StationRepo.GetTx(tx, *robot.StationID)
			if err != nil && !base.IsEntityNotFound(err) {
				return err
			}
		}

		if err := e.closeOpenOrderTx(tx, robot.ID, station, now); err != nil {
			return err
		}

		if err := e.db.RobotRepo.UpdateTx(tx, robot.ID, map[string]interface{}{
			"battery_level":    100.0,
			"status":           models.RobotIdle,
			"last_charging_at": now,
			"updated_at":       now,
		}); err != nil {
			return err
		}

		if station != nil {
			if err := e.db.StationRepo.UpdateTx(tx, station.ID, map[string]interface{}{
				"status": models.StationIdle,
			}); err != nil {
				return err
			}
		}

		action = &Action{
			RobotID:   robot.ID,
			RobotName: robot.Name,
			Action:    ActionChargingCompleted,
			Message:   fmt.Sprintf("Robot %s finished charging, battery full", robot.Name),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return action, nil
}

// ===================================================================
// SHARED TRANSITION HELPERS
// ===================================================================

// startChargingTx applies the robot/station/order triple for a new session.
func (e *Engine) startChargingTx(tx *gorm.DB, robot *models.Robot, station *models.Station) error {
	now := e.now()

	if err := e.db.RobotRepo.UpdateTx(tx, robot.ID, map[string]interface{}{
		"station_id": station.ID,
		"status":     models.RobotCharging,
		"updated_at": now,
	}); err != nil {
		return err
	}
	if err := e.db.StationRepo.UpdateTx(tx, station.ID, map[string]interface{}{
		"status": models.StationCharging,
	}); err != nil {
		return err
	}

	order := &models.ChargingOrder{
		RobotID:   robot.ID,
		StationID: station.ID,
		StartTime: now,
		Status:    models.OrderCharging,
	}
	return e.db.OrderRepo.CreateTx(tx, order)
}

// closeOpenOrderTx completes the robot's latest open order. Energy delivered
// is powerRating x elapsedHours x assumedEfficiency; both figures are assumed
// defaults, not measurements. A robot without an open order closes nothing.
func (e *Engine) closeOpenOrderTx(tx *gorm.DB, robotID uint, station *models.Station, now time.Time) error {
	order, err := e.db.OrderRepo.LatestOpenForRobotTx(tx, robotID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	power := defaultStationPowerKW
	if station != nil && station.PowerRating > 0 {
		power = station.PowerRating
	}
	hours := now.Sub(order.StartTime).Hours()
	energy := power * hours * e.assumedEfficiency / 100

	return e.db.OrderRepo.UpdateTx(tx, order.ID, map[string]interface{}{
		"status":           models.OrderCompleted,
		"end_time":         now,
		"energy_delivered": energy,
		"efficiency_pct":   e.assumedEfficiency,
	})
}

// inTransaction runs fn inside one store transaction. Any error rolls the
// whole transaction back so partial writes are never observable.
func (e *Engine) inTransaction(operation string, fn func(tx *gorm.DB) error) error {
	tx := e.db.UoW.Begin()
	if tx.Error != nil {
		return base.NewTransactionError(operation, "could not begin transaction", tx.Error)
	}
	defer e.db.UoW.Rollback(tx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := e.db.UoW.Commit(tx); err != nil {
		return base.NewTransactionError(operation, "could not commit", err)
	}
	return nil
}
