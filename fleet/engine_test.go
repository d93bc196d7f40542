package fleet

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleet-charging/database"
	"fleet-charging/models"
	"fleet-charging/repositories/base"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	dsn := fmt.Sprintf("file:fleet_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return database.Wrap(db)
}

// testClock is a settable time source for the engine.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, db *database.Database, rate RateModel) (*Engine, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)}
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewEngine(db, rate, discard, WithClock(clock.Now))
	return engine, clock
}

func seedRobot(t *testing.T, db *database.Database, name string, battery float64) *models.Robot {
	t.Helper()
	robot, err := db.RobotRepo.Create(&models.Robot{
		Name:         name,
		BatteryLevel: battery,
		Status:       models.RobotIdle,
	})
	require.NoError(t, err)
	return robot
}

func seedStation(t *testing.T, db *database.Database, name string, power float64) *models.Station {
	t.Helper()
	station, err := db.StationRepo.Create(&models.Station{
		Name:             name,
		Status:           models.StationIdle,
		PowerRating:      power,
		EfficiencyRating: 100,
	})
	require.NoError(t, err)
	return station
}

func getRobot(t *testing.T, db *database.Database, id uint) *models.Robot {
	t.Helper()
	robot, err := db.RobotRepo.GetByID(id)
	require.NoError(t, err)
	return robot
}

func getStation(t *testing.T, db *database.Database, id uint) *models.Station {
	t.Helper()
	station, err := db.StationRepo.GetByID(id)
	require.NoError(t, err)
	return station
}

func listOrders(t *testing.T, db *database.Database) []models.ChargingOrder {
	t.Helper()
	var orders []models.ChargingOrder
	require.NoError(t, db.DB.Order("id asc").Find(&orders).Error)
	return orders
}

func TestAssignStartsCharging(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	robot := seedRobot(t, db, "R1", 50)
	station := seedStation(t, db, "S1", 20)

	msg, err := engine.Assign(robot.ID, station.ID)
	require.NoError(t, err)
	assert.Contains(t, msg, "started charging")

	gotRobot := getRobot(t, db, robot.ID)
	assert.Equal(t, models.RobotCharging, gotRobot.Status)
	require.NotNil(t, gotRobot.StationID)
	assert.Equal(t, station.ID, *gotRobot.StationID)

	assert.Equal(t, models.StationCharging, getStation(t, db, station.ID).Status)

	orders := listOrders(t, db)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderCharging, orders[0].Status)
	assert.Equal(t, robot.ID, orders[0].RobotID)
	assert.Equal(t, station.ID, orders[0].StationID)
	assert.Nil(t, orders[0].EndTime)
}

func TestAssignIsIdempotentForSameStation(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	robot := seedRobot(t, db, "R1", 50)
	station := seedStation(t, db, "S1", 20)

	_, err := engine.Assign(robot.ID, station.ID)
	require.NoError(t, err)

	msg, err := engine.Assign(robot.ID, station.ID)
	require.NoError(t, err)
	assert.Contains(t, msg, "already charging")

	// No second order was opened.
	assert.Len(t, listOrders(t, db), 1)
}

func TestAssignToBusyStationConflicts(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	first := seedRobot(t, db, "R1", 50)
	second := seedRobot(t, db, "R2", 50)
	station := seedStation(t, db, "S1", 20)

	_, err := engine.Assign(first.ID, station.ID)
	require.NoError(t, err)

	_, err = engine.Assign(second.ID, station.ID)
	require.Error(t, err)
	assert.True(t, base.IsConflict(err))

	// The loser left no trace.
	assert.Equal(t, models.RobotIdle, getRobot(t, db, second.ID).Status)
	assert.Len(t, listOrders(t, db), 1)
}

func TestAssignUnknownRobotReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	seedStation(t, db, "S1", 20)

	_, err := engine.Assign(999, 1)
	require.Error(t, err)
	assert.True(t, base.IsEntityNotFound(err))
}

func TestAssignMovingRobotResetsOldStation(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	robot := seedRobot(t, db, "R1", 50)
	old := seedStation(t, db, "S1", 20)
	next := seedStation(t, db, "S2", 20)

	_, err := engine.Assign(robot.ID, old.ID)
	require.NoError(t, err)

	_, err = engine.Assign(robot.ID, next.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StationIdle, getStation(t, db, old.ID).Status)
	assert.Equal(t, models.StationCharging, getStation(t, db, next.ID).Status)

	gotRobot := getRobot(t, db, robot.ID)
	require.NotNil(t, gotRobot.StationID)
	assert.Equal(t, next.ID, *gotRobot.StationID)
}

func TestReleaseCompletesOrderAndIdlesBoth(t *testing.T) {
	db := newTestDB(t)
	engine, clock := newTestEngine(t, db, FixedRate(10))
	robot := seedRobot(t, db, "R1", 50)
	station := seedStation(t, db, "S1", 20)

	_, err := engine.Assign(robot.ID, station.ID)
	require.NoError(t, err)

	clock.Advance(time.Hour)

	msg, err := engine.Release(robot.ID)
	require.NoError(t, err)
	assert.Contains(t, msg, "released")

	gotRobot := getRobot(t, db, robot.ID)
	assert.Equal(t, models.RobotIdle, gotRobot.Status)
	assert.Nil(t, gotRobot.StationID)
	require.NotNil(t, gotRobot.LastChargingAt)
	assert.WithinDuration(t, clock.Now(), *gotRobot.LastChargingAt, time.Second)

	assert.Equal(t, models.StationIdle, getStation(t, db, station.ID).Status)

	orders := listOrders(t, db)
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, models.OrderCompleted, order.Status)
	require.NotNil(t, order.EndTime)
	// 20 kW for 1 hour at the assumed 90% efficiency.
	require.NotNil(t, order.EnergyDelivered)
	assert.InDelta(t, 18.0, *order.EnergyDelivered, 0.001)
	require.NotNil(t, order.EfficiencyPct)
	assert.Equal(t, 90.0, *order.EfficiencyPct)
}

func TestReleaseUnattachedRobotConflicts(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	robot := seedRobot(t, db, "R1", 50)

	_, err := engine.Release(robot.ID)
	require.Error(t, err)
	assert.True(t, base.IsConflict(err))
}

func TestCompleteChargingBehavesLikeRelease(t *testing.T) {
	db := newTestDB(t)
	engine, clock := newTestEngine(t, db, FixedRate(10))
	robot := seedRobot(t, db, "R1", 50)
	station := seedStation(t, db, "S1", 10)

	_, err := engine.Assign(robot.ID, station.ID)
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)

	_, err = engine.CompleteCharging(robot.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RobotIdle, getRobot(t, db, robot.ID).Status)
	orders := listOrders(t, db)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderCompleted, orders[0].Status)
}

func TestSweepAssignsLowBatteryRobotToIdleStation(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	robot := seedRobot(t, db, "R1", 15)
	station := seedStation(t, db, "S1", 10)

	actions, err := engine.LowBatterySweep()
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionAssignAndStart, actions[0].Action)
	assert.Equal(t, robot.ID, actions[0].RobotID)
	require.NotNil(t, actions[0].StationID)
	assert.Equal(t, station.ID, *actions[0].StationID)

	assert.Equal(t, models.RobotCharging, getRobot(t, db, robot.ID).Status)
	assert.Equal(t, models.StationCharging, getStation(t, db, station.ID).Status)
	require.Len(t, listOrders(t, db), 1)
}

func TestSweepReportsWhenNoStationIsIdle(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	busyRobot := seedRobot(t, db, "R1", 80)
	lowRobot := seedRobot(t, db, "R2", 10)
	station := seedStation(t, db, "S1", 10)

	_, err := engine.Assign(busyRobot.ID, station.ID)
	require.NoError(t, err)

	actions, err := engine.LowBatterySweep()
	require.NoError(t, err)

	var found bool
	for _, action := range actions {
		if action.RobotID == lowRobot.ID {
			found = true
			assert.Equal(t, ActionNoIdleStation, action.Action)
			assert.Nil(t, action.StationID)
		}
	}
	assert.True(t, found)
	assert.Equal(t, models.RobotIdle, getRobot(t, db, lowRobot.ID).Status)
}

func TestSweepAdvancesBatteryWithoutExceedingFull(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(30))
	robot := seedRobot(t, db, "R1", 50)
	station := seedStation(t, db, "S1", 10)

	_, err := engine.Assign(robot.ID, station.ID)
	require.NoError(t, err)

	actions, err := engine.LowBatterySweep()
	require.NoError(t, err)
	assert.Empty(t, actions)
	assert.InDelta(t, 80.0, getRobot(t, db, robot.ID).BatteryLevel, 0.001)

	// Second pass would land at 110; it clamps to 100 and completes.
	actions, err = engine.LowBatterySweep()
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionChargingCompleted, actions[0].Action)

	gotRobot := getRobot(t, db, robot.ID)
	assert.Equal(t, 100.0, gotRobot.BatteryLevel)
	assert.Equal(t, models.RobotIdle, gotRobot.Status)
	require.NotNil(t, gotRobot.LastChargingAt)

	assert.Equal(t, models.StationIdle, getStation(t, db, station.ID).Status)

	orders := listOrders(t, db)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderCompleted, orders[0].Status)
}

func TestSweepNeverAssignsToNonIdleStation(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(5))
	charging := seedRobot(t, db, "R1", 80)
	low := seedRobot(t, db, "R2", 10)
	station := seedStation(t, db, "S1", 10)

	_, err := engine.Assign(charging.ID, station.ID)
	require.NoError(t, err)

	_, err = engine.LowBatterySweep()
	require.NoError(t, err)

	// The low robot stayed idle rather than doubling up on the busy station.
	gotLow := getRobot(t, db, low.ID)
	assert.Equal(t, models.RobotIdle, gotLow.Status)
	assert.Nil(t, gotLow.StationID)

	occupied := getRobot(t, db, charging.ID)
	require.NotNil(t, occupied.StationID)
	assert.Equal(t, station.ID, *occupied.StationID)
}

func TestConcurrentAssignOnlyOneWins(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	first := seedRobot(t, db, "R1", 50)
	second := seedRobot(t, db, "R2", 50)
	station := seedStation(t, db, "S1", 10)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(robotID uint) {
			defer wg.Done()
			_, err := engine.Assign(robotID, station.ID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		if err == nil {
			successes++
		} else if base.IsConflict(err) {
			conflicts++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	// Exactly one robot holds the station and one order is open.
	assert.Len(t, listOrders(t, db), 1)
	assert.Equal(t, models.StationCharging, getStation(t, db, station.ID).Status)
}

func TestStartChargingRequiresAttachedStation(t *testing.T) {
	db := newTestDB(t)
	engine, _ := newTestEngine(t, db, FixedRate(10))
	robot := seedRobot(t, db, "R1", 50)

	_, err := engine.StartCharging(robot.ID)
	require.Error(t, err)
	assert.True(t, base.IsConflict(err))
}

// recordingRate captures the elapsed values handed to the rate model.
type recordingRate struct {
	mu      sync.Mutex
	elapsed []time.Duration
	delta   float64
}

func (r *recordingRate) Delta(elapsed time.Duration, currentLevel float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elapsed = append(r.elapsed, elapsed)
	return r.delta
}

func (r *recordingRate) seen() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.elapsed...)
}

func TestSweepElapsedFollowsEngineClock(t *testing.T) {
	db := newTestDB(t)
	rate := &recordingRate{delta: 10}
	engine, clock := newTestEngine(t, db, rate)

	robot := seedRobot(t, db, "R1", 50)
	station := seedStation(t, db, "S1", 20)

	_, err := engine.Assign(robot.ID, station.ID)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = engine.LowBatterySweep()
	require.NoError(t, err)

	seen := rate.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, 30*time.Minute, seen[0].Round(time.Second))
}
