package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-charging/models"
)

func timeAt(day string, hour, minute int) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+"00:00")
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func completedOrder(id, robotID, stationID uint, start, end time.Time, energy, efficiency *float64) models.ChargingOrder {
	return models.ChargingOrder{
		ID:              id,
		RobotID:         robotID,
		StationID:       stationID,
		StartTime:       start,
		EndTime:         timePtr(end),
		Status:          models.OrderCompleted,
		EnergyDelivered: energy,
		EfficiencyPct:   efficiency,
		CreatedAt:       start.Add(-10 * time.Minute),
	}
}

func TestFilterOrdersEmptyFilterReturnsInputUnchanged(t *testing.T) {
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), floatPtr(90)),
		completedOrder(2, 2, 2, timeAt("2025-01-11", 8, 0), timeAt("2025-01-11", 9, 0), floatPtr(9), floatPtr(90)),
	}

	filtered := FilterOrders(orders, Filter{})

	assert.Equal(t, orders, filtered)
	assert.Len(t, filtered, 2)
}

func TestFilterOrdersByRangeAndIDs(t *testing.T) {
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), floatPtr(90)),
		completedOrder(2, 2, 2, timeAt("2025-01-11", 8, 0), timeAt("2025-01-11", 9, 0), floatPtr(9), floatPtr(90)),
		completedOrder(3, 1, 2, timeAt("2025-01-12", 8, 0), timeAt("2025-01-12", 9, 0), floatPtr(9), floatPtr(90)),
	}

	start := timeAt("2025-01-11", 0, 0)
	filtered := FilterOrders(orders, Filter{StartDate: &start, RobotIDs: []uint{1}})

	require.Len(t, filtered, 1)
	assert.Equal(t, uint(3), filtered[0].ID)
}

func TestComputeKPIZeroPreviousPeriodReportsZeroChange(t *testing.T) {
	now := timeAt("2025-01-10", 12, 0)
	stations := []models.Station{{ID: 1, Name: "S1", PowerRating: 10}}
	current := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), floatPtr(90)),
	}

	kpi := ComputeKPI(current, nil, stations, 24, now)

	assert.Equal(t, 90.0, kpi.AvgEfficiency)
	assert.Equal(t, 9.0, kpi.TotalEnergy)
	assert.Equal(t, 1, kpi.TotalOrders)
	assert.Zero(t, kpi.EfficiencyChange)
	assert.Zero(t, kpi.EnergyChange)
	assert.Zero(t, kpi.OrdersChange)
	assert.Zero(t, kpi.UtilizationChange)
}

func TestComputeKPISuccessRateIgnoresOpenOrders(t *testing.T) {
	now := timeAt("2025-01-10", 12, 0)
	open := models.ChargingOrder{
		ID: 3, RobotID: 3, StationID: 1,
		StartTime: timeAt("2025-01-10", 11, 0),
		Status:    models.OrderCharging,
		CreatedAt: timeAt("2025-01-10", 11, 0),
	}
	failed := models.ChargingOrder{
		ID: 2, RobotID: 2, StationID: 1,
		StartTime: timeAt("2025-01-10", 9, 0),
		EndTime:   timePtr(timeAt("2025-01-10", 9, 30)),
		Status:    models.OrderFailed,
		CreatedAt: timeAt("2025-01-10", 9, 0),
	}
	current := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), floatPtr(90)),
		failed,
		open,
	}

	kpi := ComputeKPI(current, nil, []models.Station{{ID: 1, PowerRating: 10}}, 24, now)

	assert.Equal(t, 50.0, kpi.SuccessRate)
}

func TestOrderEfficiencyFallsBackToDerivedValue(t *testing.T) {
	stations := []models.Station{{ID: 1, PowerRating: 10}}
	powers := stationPowerMap(stations)

	// 1 hour at 10 kW with 9 kWh delivered and no stored efficiency.
	order := completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), nil)

	eff, ok := orderEfficiency(&order, powers)
	require.True(t, ok)
	assert.InDelta(t, 90.0, eff, 0.001)
}

func TestOrderEfficiencyUsesDefaultPowerForUnknownStation(t *testing.T) {
	// Station 99 is not in the map, so the 10 kW default applies.
	order := completedOrder(1, 1, 99, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), nil)

	eff, ok := orderEfficiency(&order, map[uint]float64{})
	require.True(t, ok)
	assert.InDelta(t, 90.0, eff, 0.001)
}

func TestEfficiencyTrendCarriesForwardAndSeedsFromRating(t *testing.T) {
	rng := DateRange{Start: timeAt("2025-01-10", 0, 0), End: timeAt("2025-01-12", 0, 0)}
	stations := []models.Station{{ID: 1, Name: "S1", PowerRating: 10, EfficiencyRating: 95}}
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-11", 8, 0), timeAt("2025-01-11", 9, 0), floatPtr(9), floatPtr(88)),
	}

	result := EfficiencyTrend(rng, orders, stations)

	require.Equal(t, []string{"2025-01-10", "2025-01-11", "2025-01-12"}, result.Timeline)
	require.Len(t, result.Stations, 1)
	// Day one seeds from the rating, day two averages the order, day three
	// carries day two forward.
	assert.Equal(t, []float64{95, 88, 88}, result.Stations[0].EfficiencyData)
}

func TestEnergyHeatmapSplitsAcrossHourBuckets(t *testing.T) {
	rng := DateRange{Start: timeAt("2025-01-10", 0, 0), End: timeAt("2025-01-10", 23, 0)}
	stations := []models.Station{{ID: 1, Name: "S1", PowerRating: 10}}
	// 01:30 to 02:30, 4 kWh: half in bucket 1, half in bucket 2.
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 1, 30), timeAt("2025-01-10", 2, 30), floatPtr(4), floatPtr(40)),
	}

	result := EnergyHeatmap(rng, orders, stations)

	require.Len(t, result.Data, 24)
	byHour := make(map[int]HeatmapCell)
	for _, cell := range result.Data {
		byHour[cell.Hour] = cell
	}
	assert.Equal(t, 2.0, byHour[1].Energy)
	assert.Equal(t, 2.0, byHour[2].Energy)
	assert.Equal(t, 0.0, byHour[3].Energy)
	assert.False(t, byHour[1].Estimated)
	assert.Equal(t, 2.0, result.MaxEnergy)
}

func TestEnergyHeatmapMarksEstimatedEnergy(t *testing.T) {
	rng := DateRange{Start: timeAt("2025-01-10", 0, 0), End: timeAt("2025-01-10", 23, 0)}
	stations := []models.Station{{ID: 1, PowerRating: 10}}
	// No stored energy, so the value derives from efficiency x power x hours.
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 5, 0), timeAt("2025-01-10", 6, 0), nil, floatPtr(80)),
	}

	result := EnergyHeatmap(rng, orders, stations)

	byHour := make(map[int]HeatmapCell)
	for _, cell := range result.Data {
		byHour[cell.Hour] = cell
	}
	assert.Equal(t, 8.0, byHour[5].Energy)
	assert.True(t, byHour[5].Estimated)
}

func TestComputeStationUtilizationBucketsByStatus(t *testing.T) {
	now := timeAt("2025-01-10", 23, 0)
	stations := []models.Station{
		{ID: 1, Name: "S1", Status: models.StationIdle},
		{ID: 2, Name: "S2", Status: models.StationMaintenance},
	}
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 10, 0), floatPtr(18), floatPtr(90)),
	}

	result := ComputeStationUtilization(orders, stations, 24, now)

	require.Len(t, result, 2)
	assert.Equal(t, 2.0, result[0].BusyHours)
	assert.Equal(t, 22.0, result[0].IdleHours)
	assert.Zero(t, result[0].MaintenanceHours)
	assert.Zero(t, result[1].BusyHours)
	assert.Equal(t, 24.0, result[1].MaintenanceHours)
	assert.Zero(t, result[1].IdleHours)
}

func TestComputeRobotBehaviorAverages(t *testing.T) {
	robots := []models.Robot{{ID: 1, Name: "R1"}, {ID: 2, Name: "R2"}}
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), floatPtr(90)),
		completedOrder(2, 1, 1, timeAt("2025-01-10", 12, 0), timeAt("2025-01-10", 14, 0), floatPtr(18), floatPtr(90)),
	}

	result := ComputeRobotBehavior(orders, robots)

	require.Len(t, result.Robots, 2)
	assert.Equal(t, 2, result.Robots[0].ChargingCount)
	assert.Equal(t, 90.0, result.Robots[0].AvgChargingDuration)
	assert.Equal(t, 10.0, result.Robots[0].AvgWaitingTime)
	assert.Zero(t, result.Robots[1].ChargingCount)
	assert.Zero(t, result.Robots[1].AvgChargingDuration)
}

func TestComputePeakAnalysisBucketsByCreationHour(t *testing.T) {
	orders := []models.ChargingOrder{
		{ID: 1, CreatedAt: timeAt("2025-01-10", 1, 0), StartTime: timeAt("2025-01-10", 1, 30)},
		{ID: 2, CreatedAt: timeAt("2025-01-10", 1, 45), StartTime: timeAt("2025-01-10", 2, 15)},
		{ID: 3, CreatedAt: timeAt("2025-01-10", 14, 0), StartTime: timeAt("2025-01-10", 14, 0)},
	}

	result := ComputePeakAnalysis(orders)

	require.Len(t, result.TimeSlots, 12)
	require.Len(t, result.RequestCounts, 12)
	assert.Equal(t, 2, result.RequestCounts[0])
	assert.Equal(t, 1, result.RequestCounts[7])
	assert.Equal(t, 30.0, result.AvgWaitingTimes[0])
	// The 14:00 order started the moment it was created, so no wait counts.
	assert.Zero(t, result.AvgWaitingTimes[7])
}

func TestBuildEventsFallsBackToPlaceholderNames(t *testing.T) {
	orders := []models.ChargingOrder{
		completedOrder(1, 7, 9, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), nil),
	}

	events := BuildEvents(orders, nil, nil)

	require.Len(t, events, 1)
	assert.Equal(t, "Robot 7", events[0].RobotName)
	assert.Equal(t, "Station 9", events[0].StationName)
	require.NotNil(t, events[0].Efficiency)
	assert.InDelta(t, 90.0, *events[0].Efficiency, 0.001)
}

func TestEventsPagePaginationAndQuery(t *testing.T) {
	robots := []models.Robot{{ID: 1, Name: "Alpha"}, {ID: 2, Name: "Beta"}}
	stations := []models.Station{{ID: 1, Name: "Dock A", PowerRating: 10}}
	orders := make([]models.ChargingOrder, 0, 5)
	for i := 0; i < 5; i++ {
		start := timeAt("2025-01-10", 8+i, 0)
		robotID := uint(1)
		if i%2 == 1 {
			robotID = 2
		}
		orders = append(orders, completedOrder(uint(i+1), robotID, 1, start, start.Add(30*time.Minute), floatPtr(4), floatPtr(80)))
	}
	events := BuildEvents(orders, robots, stations)

	page1 := EventsPage(events, "", 1, 2)
	require.Len(t, page1.Items, 2)
	assert.Equal(t, 5, page1.Pagination.TotalItems)
	assert.Equal(t, 3, page1.Pagination.TotalPages)
	// Newest start time first.
	assert.Equal(t, uint(5), page1.Items[0].ID)
	assert.Equal(t, uint(4), page1.Items[1].ID)

	lastPage := EventsPage(events, "", 3, 2)
	require.Len(t, lastPage.Items, 1)
	assert.Equal(t, uint(1), lastPage.Items[0].ID)

	beyond := EventsPage(events, "", 9, 2)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 5, beyond.Pagination.TotalItems)
	assert.Equal(t, 3, beyond.Pagination.TotalPages)
	assert.Equal(t, 9, beyond.Pagination.CurrentPage)

	byName := EventsPage(events, "beta", 1, 10)
	assert.Len(t, byName.Items, 2)
	for _, ev := range byName.Items {
		assert.Equal(t, "Beta", ev.RobotName)
	}
}

func TestExportCSVIncludesHeaderAndRows(t *testing.T) {
	stations := []models.Station{{ID: 1, Name: "Dock A", PowerRating: 10}}
	robots := []models.Robot{{ID: 1, Name: "Alpha"}}
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), floatPtr(90)),
	}
	events := BuildEvents(orders, robots, stations)

	data, err := ExportCSV(events)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "Order ID,Robot ID,Robot Name")
	assert.Contains(t, text, "Alpha")
	assert.Contains(t, text, "Dock A")
	assert.Contains(t, text, "completed")
}

func TestExportXLSXProducesWorkbook(t *testing.T) {
	stations := []models.Station{{ID: 1, Name: "Dock A", PowerRating: 10}}
	orders := []models.ChargingOrder{
		completedOrder(1, 1, 1, timeAt("2025-01-10", 8, 0), timeAt("2025-01-10", 9, 0), floatPtr(9), floatPtr(90)),
	}
	events := BuildEvents(orders, nil, stations)

	data, err := ExportXLSX(events)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 1, 14, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "energy_efficiency_data_20250114.csv", ExportFilename("csv", now))
	assert.Equal(t, "energy_efficiency_data_20250114.xlsx", ExportFilename("xlsx", now))
}

func TestPreviousPeriodShiftsWindowBack(t *testing.T) {
	start := timeAt("2025-01-10", 0, 0)
	end := timeAt("2025-01-12", 0, 0)
	f := Filter{StartDate: &start, EndDate: &end, StationIDs: []uint{1}}

	prev, ok := f.PreviousPeriod()
	require.True(t, ok)
	assert.Equal(t, timeAt("2025-01-08", 0, 0), *prev.StartDate)
	assert.Equal(t, start, *prev.EndDate)
	assert.Equal(t, []uint{1}, prev.StationIDs)

	_, ok = Filter{StartDate: &start}.PreviousPeriod()
	assert.False(t, ok)
}
