package analytics

import (
	"time"

	"fleet-charging/models"
)

// Filter holds the optional order filters shared by every analytics
// endpoint. A nil/empty field is a no-op.
type Filter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	StationIDs []uint
	RobotIDs   []uint
}

func (f Filter) empty() bool {
	return f.StartDate == nil && f.EndDate == nil && len(f.StationIDs) == 0 && len(f.RobotIDs) == 0
}

// FilterOrders applies the filter: an inclusive range check on the order's
// start time and set membership on station/robot ids. With no filters set the
// input is returned unchanged.
func FilterOrders(orders []models.ChargingOrder, f Filter) []models.ChargingOrder {
	if f.empty() {
		return orders
	}

	var stationSet, robotSet map[uint]struct{}
	if len(f.StationIDs) > 0 {
		stationSet = make(map[uint]struct{}, len(f.StationIDs))
		for _, id := range f.StationIDs {
			stationSet[id] = struct{}{}
		}
	}
	if len(f.RobotIDs) > 0 {
		robotSet = make(map[uint]struct{}, len(f.RobotIDs))
		for _, id := range f.RobotIDs {
			robotSet[id] = struct{}{}
		}
	}

	filtered := make([]models.ChargingOrder, 0, len(orders))
	for _, order := range orders {
		if f.StartDate != nil && order.StartTime.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && order.StartTime.After(*f.EndDate) {
			continue
		}
		if stationSet != nil {
			if _, ok := stationSet[order.StationID]; !ok {
				continue
			}
		}
		if robotSet != nil {
			if _, ok := robotSet[order.RobotID]; !ok {
				continue
			}
		}
		filtered = append(filtered, order)
	}
	return filtered
}

// PreviousPeriod shifts the filter one period back: the window of the same
// length ending where the current one starts. Used for KPI period-over-period
// comparisons. Returns false when the filter has no complete range.
func (f Filter) PreviousPeriod() (Filter, bool) {
	if f.StartDate == nil || f.EndDate == nil {
		return Filter{}, false
	}
	length := f.EndDate.Sub(*f.StartDate)
	prevEnd := *f.StartDate
	prevStart := prevEnd.Add(-length)
	return Filter{
		StartDate:  &prevStart,
		EndDate:    &prevEnd,
		StationIDs: f.StationIDs,
		RobotIDs:   f.RobotIDs,
	}, true
}

// FilterStations keeps the stations named by the filter, or all of them when
// no station filter is set.
func FilterStations(stations []models.Station, f Filter) []models.Station {
	if len(f.StationIDs) == 0 {
		return stations
	}
	keep := make(map[uint]struct{}, len(f.StationIDs))
	for _, id := range f.StationIDs {
		keep[id] = struct{}{}
	}
	filtered := make([]models.Station, 0, len(stations))
	for _, s := range stations {
		if _, ok := keep[s.ID]; ok {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// FilterRobots keeps the robots named by the filter, or all of them when no
// robot filter is set.
func FilterRobots(robots []models.Robot, f Filter) []models.Robot {
	if len(f.RobotIDs) == 0 {
		return robots
	}
	keep := make(map[uint]struct{}, len(f.RobotIDs))
	for _, id := range f.RobotIDs {
		keep[id] = struct{}{}
	}
	filtered := make([]models.Robot, 0, len(robots))
	for _, r := range robots {
		if _, ok := keep[r.ID]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
