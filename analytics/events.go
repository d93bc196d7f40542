package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fleet-charging/models"
)

// ChargingEvent is a denormalized order row for list views and export.
type ChargingEvent struct {
	ID             uint       `json:"id"`
	RobotID        uint       `json:"robotId"`
	RobotName      string     `json:"robotName"`
	StationID      uint       `json:"stationId"`
	StationName    string     `json:"stationName"`
	CreatedAt      time.Time  `json:"createdAt"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	EnergyConsumed *float64   `json:"energyConsumed"`
	Efficiency     *float64   `json:"efficiency"`
	Status         string     `json:"status"`
}

// Pagination describes one page of a result set. Pages are 1-based.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// EventsResult is a page of charging events.
type EventsResult struct {
	Items      []ChargingEvent `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// BuildEvents joins orders with robot and station names. Missing entities get
// a placeholder name so a deleted robot never hides its order history. The
// efficiency column prefers the stored value and derives one for completed
// orders otherwise.
func BuildEvents(orders []models.ChargingOrder, robots []models.Robot, stations []models.Station) []ChargingEvent {
	robotNames := make(map[uint]string, len(robots))
	for _, r := range robots {
		robotNames[r.ID] = r.Name
	}
	stationNames := make(map[uint]string, len(stations))
	for _, s := range stations {
		stationNames[s.ID] = s.Name
	}
	powers := stationPowerMap(stations)

	events := make([]ChargingEvent, 0, len(orders))
	for i := range orders {
		order := &orders[i]

		robotName, ok := robotNames[order.RobotID]
		if !ok {
			robotName = fmt.Sprintf("Robot %d", order.RobotID)
		}
		stationName, ok := stationNames[order.StationID]
		if !ok {
			stationName = fmt.Sprintf("Station %d", order.StationID)
		}

		var efficiency *float64
		if eff, ok := orderEfficiency(order, powers); ok {
			rounded := round2(eff)
			efficiency = &rounded
		}

		events = append(events, ChargingEvent{
			ID:             order.ID,
			RobotID:        order.RobotID,
			RobotName:      robotName,
			StationID:      order.StationID,
			StationName:    stationName,
			CreatedAt:      order.CreatedAt,
			StartTime:      order.StartTime,
			EndTime:        order.EndTime,
			EnergyConsumed: order.EnergyDelivered,
			Efficiency:     efficiency,
			Status:         string(order.Status),
		})
	}
	return events
}

// EventsPage filters events by a free-text query, sorts them newest first by
// start time and returns the requested 1-based page. A page past the end
// yields an empty item list with the real totals.
func EventsPage(events []ChargingEvent, query string, page, pageSize int) EventsResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	matched := events
	if query != "" {
		q := strings.ToLower(query)
		matched = make([]ChargingEvent, 0, len(events))
		for _, ev := range events {
			if strings.Contains(strings.ToLower(fmt.Sprintf("%d", ev.ID)), q) ||
				strings.Contains(strings.ToLower(ev.RobotName), q) ||
				strings.Contains(strings.ToLower(ev.StationName), q) ||
				strings.Contains(strings.ToLower(ev.Status), q) {
				matched = append(matched, ev)
			}
		}
	}

	sorted := make([]ChargingEvent, len(matched))
	copy(sorted, matched)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})

	totalItems := len(sorted)
	totalPages := (totalItems + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	items := []ChargingEvent{}
	if start < totalItems {
		end := start + pageSize
		if end > totalItems {
			end = totalItems
		}
		items = sorted[start:end]
	}

	return EventsResult{
		Items: items,
		Pagination: Pagination{
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			CurrentPage: page,
			PageSize:    pageSize,
		},
	}
}
