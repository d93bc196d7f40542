package models

import "fmt"

// Status fields are closed sets validated at the store boundary so an
// invalid state is never persisted.

type RobotStatus string

const (
	RobotIdle     RobotStatus = "idle"
	RobotWorking  RobotStatus = "working"
	RobotCharging RobotStatus = "charging"
	RobotError    RobotStatus = "error"
)

func (s RobotStatus) Valid() bool {
	switch s {
	case RobotIdle, RobotWorking, RobotCharging, RobotError:
		return true
	}
	return false
}

type StationStatus string

const (
	StationIdle        StationStatus = "idle"
	StationCharging    StationStatus = "charging"
	StationMaintenance StationStatus = "maintenance"
	StationError       StationStatus = "error"
)

func (s StationStatus) Valid() bool {
	switch s {
	case StationIdle, StationCharging, StationMaintenance, StationError:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderCharging  OrderStatus = "charging"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderCharging, OrderCompleted, OrderFailed:
		return true
	}
	return false
}

// ValidateStatus reports an error naming the offending value so handlers can
// surface it as a validation failure.
func ValidateStatus(kind string, valid bool, value string) error {
	if valid {
		return nil
	}
	return fmt.Errorf("invalid %s status: %q", kind, value)
}
