package analytics

import (
	"time"

	"fleet-charging/models"
)

// HeatmapCell is the energy delivered in one day/hour bucket.
type HeatmapCell struct {
	Day       string  `json:"day"`
	Hour      int     `json:"hour"`
	Energy    float64 `json:"energy"`
	Estimated bool    `json:"estimated"`
}

// HeatmapResult is the dense day x hour energy distribution for a range.
type HeatmapResult struct {
	Days      []string      `json:"days"`
	Data      []HeatmapCell `json:"data"`
	MaxEnergy float64       `json:"maxEnergy"`
}

// EnergyHeatmap spreads each completed order's energy across the hour buckets
// it overlaps, proportional to the overlap duration. Buckets are half-open
// [h:00, h+1:00). Every day/hour cell of the range is present, zeros included,
// and MaxEnergy is the true maximum cell value.
func EnergyHeatmap(rng DateRange, orders []models.ChargingOrder, stations []models.Station) HeatmapResult {
	days := rng.Days()
	powers := stationPowerMap(stations)

	type cellKey struct {
		day  string
		hour int
	}
	energy := make(map[cellKey]float64)
	estimated := make(map[cellKey]bool)

	for i := range orders {
		order := &orders[i]
		if order.Status != models.OrderCompleted || order.EndTime == nil {
			continue
		}
		total := order.EndTime.Sub(order.StartTime)
		if total <= 0 {
			continue
		}
		kwh, isEstimate := orderEnergy(order, powers)

		cursor := order.StartTime
		for cursor.Before(*order.EndTime) {
			bucketEnd := cursor.Truncate(time.Hour).Add(time.Hour)
			if bucketEnd.After(*order.EndTime) {
				bucketEnd = *order.EndTime
			}
			share := bucketEnd.Sub(cursor).Seconds() / total.Seconds()
			key := cellKey{day: cursor.Format("2006-01-02"), hour: cursor.Hour()}
			energy[key] += kwh * share
			if isEstimate {
				estimated[key] = true
			}
			cursor = bucketEnd
		}
	}

	cells := make([]HeatmapCell, 0, len(days)*24)
	maxEnergy := 0.0
	for _, day := range days {
		for hour := 0; hour < 24; hour++ {
			key := cellKey{day: day, hour: hour}
			value := round2(energy[key])
			if value > maxEnergy {
				maxEnergy = value
			}
			cells = append(cells, HeatmapCell{
				Day:       day,
				Hour:      hour,
				Energy:    value,
				Estimated: estimated[key],
			})
		}
	}

	return HeatmapResult{
		Days:      days,
		Data:      cells,
		MaxEnergy: maxEnergy,
	}
}
