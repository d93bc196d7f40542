package analytics

import (
	"fleet-charging/models"
)

// StationTrend is one station's daily efficiency series, aligned with the
// result's timeline.
type StationTrend struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	EfficiencyData []float64 `json:"efficiencyData"`
}

// TrendResult is the per-station efficiency trend over the range.
type TrendResult struct {
	Timeline []string       `json:"timeline"`
	Stations []StationTrend `json:"stations"`
}

// EfficiencyTrend computes each station's average completed-order efficiency
// per calendar day. A day with no orders carries the previous day's value
// forward; the first day seeds from the station's static efficiency rating.
func EfficiencyTrend(rng DateRange, orders []models.ChargingOrder, stations []models.Station) TrendResult {
	days := rng.Days()
	powers := stationPowerMap(stations)

	// day -> station -> completed orders that started that day
	byDayStation := make(map[string]map[uint][]*models.ChargingOrder)
	for i := range orders {
		order := &orders[i]
		if order.Status != models.OrderCompleted {
			continue
		}
		day := order.StartTime.Format("2006-01-02")
		if byDayStation[day] == nil {
			byDayStation[day] = make(map[uint][]*models.ChargingOrder)
		}
		byDayStation[day][order.StationID] = append(byDayStation[day][order.StationID], order)
	}

	trends := make([]StationTrend, 0, len(stations))
	for _, station := range stations {
		series := make([]float64, 0, len(days))
		for _, day := range days {
			dayOrders := byDayStation[day][station.ID]
			if len(dayOrders) > 0 {
				sum := 0.0
				count := 0
				for _, order := range dayOrders {
					if eff, ok := orderEfficiency(order, powers); ok {
						sum += eff
						count++
					}
				}
				if count > 0 {
					series = append(series, round2(sum/float64(count)))
					continue
				}
			}
			if len(series) > 0 {
				series = append(series, series[len(series)-1])
			} else {
				series = append(series, round2(station.EfficiencyRating))
			}
		}
		trends = append(trends, StationTrend{
			ID:             station.ID,
			Name:           station.Name,
			EfficiencyData: series,
		})
	}

	return TrendResult{
		Timeline: days,
		Stations: trends,
	}
}
