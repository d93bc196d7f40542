package analytics

import (
	"time"

	"fleet-charging/models"
)

// StationUtilization breaks one station's period into busy time and a single
// remainder bucket chosen by the station's current status. Attributing the
// whole remainder to one bucket is a simplification; the store keeps no
// status history to split it against.
type StationUtilization struct {
	StationID        uint    `json:"stationId"`
	StationName      string  `json:"stationName"`
	BusyHours        float64 `json:"busyHours"`
	IdleHours        float64 `json:"idleHours"`
	MaintenanceHours float64 `json:"maintenanceHours"`
	ErrorHours       float64 `json:"errorHours"`
}

// ComputeStationUtilization sums order durations per station as busy time.
// Open orders run until now. The rest of the period lands in the maintenance,
// error or idle bucket according to the station's current status.
func ComputeStationUtilization(orders []models.ChargingOrder, stations []models.Station, periodHours float64, now time.Time) []StationUtilization {
	busy := make(map[uint]float64, len(stations))
	for i := range orders {
		busy[orders[i].StationID] += orders[i].DurationHours(now)
	}

	result := make([]StationUtilization, 0, len(stations))
	for _, station := range stations {
		entry := StationUtilization{
			StationID:   station.ID,
			StationName: station.Name,
			BusyHours:   round2(busy[station.ID]),
		}
		remainder := periodHours - busy[station.ID]
		switch station.Status {
		case models.StationMaintenance:
			entry.MaintenanceHours = round2(remainder)
		case models.StationError:
			entry.ErrorHours = round2(remainder)
		default:
			entry.IdleHours = round2(remainder)
		}
		result = append(result, entry)
	}
	return result
}

// RobotBehavior summarises one robot's charging pattern over the period.
type RobotBehavior struct {
	ID                  uint    `json:"id"`
	Name                string  `json:"name"`
	ChargingCount       int     `json:"chargingCount"`
	AvgChargingDuration float64 `json:"avgChargingDuration"`
	AvgWaitingTime      float64 `json:"avgWaitingTime"`
}

// BehaviorResult wraps the per-robot behavior rows.
type BehaviorResult struct {
	Robots []RobotBehavior `json:"robots"`
}

// ComputeRobotBehavior reports, per robot, how many orders it had, the mean
// duration of its completed charges in minutes, and its mean wait in minutes.
// Charging count includes open and failed orders; the duration average only
// covers completed ones.
func ComputeRobotBehavior(orders []models.ChargingOrder, robots []models.Robot) BehaviorResult {
	type acc struct {
		count         int
		durationSum   float64
		durationCount int
		waitSum       float64
		waitCount     int
	}
	byRobot := make(map[uint]*acc, len(robots))
	for i := range orders {
		order := &orders[i]
		a := byRobot[order.RobotID]
		if a == nil {
			a = &acc{}
			byRobot[order.RobotID] = a
		}
		a.count++
		if order.Status == models.OrderCompleted && order.EndTime != nil {
			a.durationSum += order.EndTime.Sub(order.StartTime).Minutes()
			a.durationCount++
		}
		if wait, ok := waitMinutes(order); ok {
			a.waitSum += wait
			a.waitCount++
		}
	}

	rows := make([]RobotBehavior, 0, len(robots))
	for _, robot := range robots {
		row := RobotBehavior{ID: robot.ID, Name: robot.Name}
		if a := byRobot[robot.ID]; a != nil {
			row.ChargingCount = a.count
			if a.durationCount > 0 {
				row.AvgChargingDuration = round2(a.durationSum / float64(a.durationCount))
			}
			if a.waitCount > 0 {
				row.AvgWaitingTime = round2(a.waitSum / float64(a.waitCount))
			}
		}
		rows = append(rows, row)
	}
	return BehaviorResult{Robots: rows}
}

// PeakResult buckets order demand into twelve fixed two-hour slots of the
// day, keyed by when the order was created.
type PeakResult struct {
	TimeSlots       []string  `json:"timeSlots"`
	RequestCounts   []int     `json:"requestCounts"`
	AvgWaitingTimes []float64 `json:"avgWaitingTimes"`
}

var peakTimeSlots = []string{
	"0-2", "2-4", "4-6", "6-8", "8-10", "10-12",
	"12-14", "14-16", "16-18", "18-20", "20-22", "22-24",
}

// ComputePeakAnalysis counts orders per two-hour slot of creation time and
// averages the wait of the orders in each slot.
func ComputePeakAnalysis(orders []models.ChargingOrder) PeakResult {
	counts := make([]int, 12)
	waitSums := make([]float64, 12)
	waitCounts := make([]int, 12)

	for i := range orders {
		order := &orders[i]
		slot := order.CreatedAt.Hour() / 2
		counts[slot]++
		if wait, ok := waitMinutes(order); ok {
			waitSums[slot] += wait
			waitCounts[slot]++
		}
	}

	avgWaits := make([]float64, 12)
	for i := range avgWaits {
		if waitCounts[i] > 0 {
			avgWaits[i] = round2(waitSums[i] / float64(waitCounts[i]))
		}
	}

	return PeakResult{
		TimeSlots:       peakTimeSlots,
		RequestCounts:   counts,
		AvgWaitingTimes: avgWaits,
	}
}
