// Package analytics computes energy-efficiency reporting over a snapshot of
// robots, stations and charging orders. Every function is pure: it takes the
// snapshot data and a filter context and returns a result, with no side
// effects and no hidden state. Missing optional fields and empty inputs never
// raise; the functions substitute neutral defaults and return well-formed,
// zero-valued results.
package analytics

import (
	"math"
	"time"

	"fleet-charging/models"
)

// Station power fallback used when a station record is absent or carries no
// rating.
const defaultStationPowerKW = 10.0

// Last-resort energy estimate for an order with no stored energy and not
// enough data to derive one. Always an estimate, never a measurement.
const defaultEnergyEstimateKWh = 5.0

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// pctChange is the period-over-period delta in percent. Defined as 0 when
// the previous value is 0 so results are never NaN or infinite.
func pctChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func stationPowerMap(stations []models.Station) map[uint]float64 {
	powers := make(map[uint]float64, len(stations))
	for _, s := range stations {
		powers[s.ID] = s.PowerRating
	}
	return powers
}

func stationPower(powers map[uint]float64, stationID uint) float64 {
	if p, ok := powers[stationID]; ok && p > 0 {
		return p
	}
	return defaultStationPowerKW
}

// orderEfficiency returns the efficiency percentage of a completed order,
// preferring the stored value and falling back to
// energy / durationHours / power x 100.
func orderEfficiency(order *models.ChargingOrder, powers map[uint]float64) (float64, bool) {
	if order.Status != models.OrderCompleted {
		return 0, false
	}
	if order.EfficiencyPct != nil {
		return *order.EfficiencyPct, true
	}
	if order.EnergyDelivered != nil && order.EndTime != nil {
		hours := order.EndTime.Sub(order.StartTime).Hours()
		power := stationPower(powers, order.StationID)
		if hours > 0 && power > 0 {
			return *order.EnergyDelivered / hours / power * 100, true
		}
	}
	return 0, false
}

// orderEnergy returns the order's energy in kWh and whether the figure is an
// estimate rather than a stored value. The estimate chain is: stored energy,
// then efficiency x power x hours / 100, then a fixed constant.
func orderEnergy(order *models.ChargingOrder, powers map[uint]float64) (energy float64, estimated bool) {
	if order.EnergyDelivered != nil {
		return *order.EnergyDelivered, false
	}
	if order.EfficiencyPct != nil && order.EndTime != nil {
		hours := order.EndTime.Sub(order.StartTime).Hours()
		power := stationPower(powers, order.StationID)
		return power * hours * *order.EfficiencyPct / 100, true
	}
	return defaultEnergyEstimateKWh, true
}

// waitMinutes returns the order's wait time in minutes. Only strictly
// positive waits count; clock skew can put createdAt after startTime.
func waitMinutes(order *models.ChargingOrder) (float64, bool) {
	wait := order.StartTime.Sub(order.CreatedAt).Minutes()
	if wait > 0 {
		return wait, true
	}
	return 0, false
}

// DateRange bounds a reporting period.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days lists the calendar days of the range, inclusive, as YYYY-MM-DD.
func (r DateRange) Days() []string {
	if r.End.Before(r.Start) {
		return []string{}
	}
	days := []string{}
	day := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, r.Start.Location())
	last := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, r.End.Location())
	for !day.After(last) {
		days = append(days, day.Format("2006-01-02"))
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// Hours is the length of the period in hours.
func (r DateRange) Hours() float64 {
	return r.End.Sub(r.Start).Hours()
}
