package models

import "time"

// Robot is a mobile unit with a battery level and an operational status.
// StationID is set while the robot is attached to a charging station.
type Robot struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	Name           string      `json:"name" gorm:"size:100;not null"`
	BatteryLevel   float64     `json:"battery_level" gorm:"default:100"`
	Status         RobotStatus `json:"status" gorm:"size:20;default:idle"`
	StationID      *uint       `json:"station_id"`
	LastChargingAt *time.Time  `json:"last_charging"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (r *Robot) GetID() uint { return r.ID }

func (Robot) TableName() string { return "robots" }

// Station is a fixed charging point. EfficiencyRating is a static baseline
// (0-100) used by the analytics engine when no order history exists for a day.
type Station struct {
	ID               uint          `json:"id" gorm:"primaryKey"`
	Name             string        `json:"name" gorm:"size:100;not null"`
	Location         string        `json:"location" gorm:"size:200"`
	Status           StationStatus `json:"status" gorm:"size:20;default:idle"`
	PowerRating      float64       `json:"power_rating" gorm:"default:0"`
	EfficiencyRating float64       `json:"efficiency" gorm:"default:100"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (s *Station) GetID() uint { return s.ID }

func (Station) TableName() string { return "charging_stations" }

// ChargingOrder records one charging session linking a robot to a station.
// EndTime is set exactly when the order leaves the charging state;
// EnergyDelivered and EfficiencyPct are set exactly when it completes.
type ChargingOrder struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	RobotID         uint        `json:"robot_id" gorm:"not null;index"`
	StationID       uint        `json:"station_id" gorm:"not null;index"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         *time.Time  `json:"end_time"`
	Status          OrderStatus `json:"status" gorm:"size:20;default:charging;index"`
	EnergyDelivered *float64    `json:"charge_amount"`
	EfficiencyPct   *float64    `json:"charging_efficiency"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (o *ChargingOrder) GetID() uint { return o.ID }

func (ChargingOrder) TableName() string { return "charging_orders" }

// DurationHours returns the session length in hours. Open orders are measured
// against now.
func (o *ChargingOrder) DurationHours(now time.Time) float64 {
	end := now
	if o.EndTime != nil {
		end = *o.EndTime
	}
	return end.Sub(o.StartTime).Hours()
}

// User is the auth collaborator's identity record.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:80;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255"`
	Role         string    `json:"role" gorm:"size:20;default:user"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) GetID() uint { return u.ID }

func (User) TableName() string { return "users" }
