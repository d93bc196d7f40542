package analytics

import (
	"time"

	"fleet-charging/models"
)

// KPIMetrics is the headline metric set for a period. Every metric carries a
// period-over-period change in percent against the previous equal-length
// window; a change against a zero baseline is reported as 0.
type KPIMetrics struct {
	AvgEfficiency     float64 `json:"avgEfficiency"`
	EfficiencyChange  float64 `json:"efficiencyChange"`
	TotalEnergy       float64 `json:"totalEnergy"`
	EnergyChange      float64 `json:"energyChange"`
	Utilization       float64 `json:"utilization"`
	UtilizationChange float64 `json:"utilizationChange"`
	AvgWaitTime       float64 `json:"avgWaitTime"`
	WaitTimeChange    float64 `json:"waitTimeChange"`
	SuccessRate       float64 `json:"successRate"`
	SuccessRateChange float64 `json:"successRateChange"`
	TotalOrders       int     `json:"totalOrders"`
	OrdersChange      float64 `json:"ordersChange"`
}

// ComputeKPI aggregates the current and previous period order sets.
// periodHours sizes the utilization denominator (stationCount x periodHours);
// now bounds the duration of still-open orders.
func ComputeKPI(current, previous []models.ChargingOrder, stations []models.Station, periodHours float64, now time.Time) KPIMetrics {
	powers := stationPowerMap(stations)

	avgEfficiency := meanEfficiency(current, powers)
	prevAvgEfficiency := meanEfficiency(previous, powers)

	totalEnergy := sumEnergy(current)
	prevTotalEnergy := sumEnergy(previous)

	totalAvailableHours := float64(len(stations)) * periodHours
	utilization := 0.0
	prevUtilization := 0.0
	if totalAvailableHours > 0 {
		utilization = sumDurationHours(current, now) / totalAvailableHours * 100
		prevUtilization = sumDurationHours(previous, now) / totalAvailableHours * 100
	}

	avgWait := meanWaitMinutes(current)
	prevAvgWait := meanWaitMinutes(previous)

	successRate := computeSuccessRate(current)
	prevSuccessRate := computeSuccessRate(previous)

	completed := countByStatus(current, models.OrderCompleted)
	prevCompleted := countByStatus(previous, models.OrderCompleted)

	return KPIMetrics{
		AvgEfficiency:     avgEfficiency,
		EfficiencyChange:  pctChange(avgEfficiency, prevAvgEfficiency),
		TotalEnergy:       totalEnergy,
		EnergyChange:      pctChange(totalEnergy, prevTotalEnergy),
		Utilization:       utilization,
		UtilizationChange: pctChange(utilization, prevUtilization),
		AvgWaitTime:       avgWait,
		WaitTimeChange:    pctChange(avgWait, prevAvgWait),
		SuccessRate:       successRate,
		SuccessRateChange: pctChange(successRate, prevSuccessRate),
		TotalOrders:       completed,
		OrdersChange:      pctChange(float64(completed), float64(prevCompleted)),
	}
}

func meanEfficiency(orders []models.ChargingOrder, powers map[uint]float64) float64 {
	sum := 0.0
	count := 0
	for i := range orders {
		if eff, ok := orderEfficiency(&orders[i], powers); ok {
			sum += eff
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func sumEnergy(orders []models.ChargingOrder) float64 {
	total := 0.0
	for i := range orders {
		if orders[i].Status == models.OrderCompleted && orders[i].EnergyDelivered != nil {
			total += *orders[i].EnergyDelivered
		}
	}
	return total
}

func sumDurationHours(orders []models.ChargingOrder, now time.Time) float64 {
	total := 0.0
	for i := range orders {
		total += orders[i].DurationHours(now)
	}
	return total
}

func meanWaitMinutes(orders []models.ChargingOrder) float64 {
	sum := 0.0
	count := 0
	for i := range orders {
		if wait, ok := waitMinutes(&orders[i]); ok {
			sum += wait
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func computeSuccessRate(orders []models.ChargingOrder) float64 {
	completed := countByStatus(orders, models.OrderCompleted)
	failed := countByStatus(orders, models.OrderFailed)
	finished := completed + failed
	if finished == 0 {
		return 0
	}
	return float64(completed) / float64(finished) * 100
}

func countByStatus(orders []models.ChargingOrder, status models.OrderStatus) int {
	count := 0
	for i := range orders {
		if orders[i].Status == status {
			count++
		}
	}
	return count
}
