// Package core holds the domain types shared across the service.
package core

import "time"

// FuelKind classifies how a vehicle stores energy. It selects which
// capacity field on Vehicle is meaningful.
type FuelKind string

const (
	FuelDiesel     FuelKind = "Diesel"
	FuelPetrol     FuelKind = "Petrol"
	FuelElectrical FuelKind = "Electrical"
)

// Position is a WGS84 coordinate pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Waypoint is one recorded GPS sample of a trip. Name is optional and
// carries a human-readable stop label when the sample was taken at a
// known location.
type Waypoint struct {
	Position
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name,omitempty"`
}

// Vehicle holds the static attributes of a tracked vehicle. Number is
// the registration plate and is unique across the fleet. Exactly one of
// TankCapacityLiters / BatteryCapacityKWh is set, selected by FuelKind.
type Vehicle struct {
	Number             string   `json:"vehicleNumber"`
	Type               string   `json:"vehicleType"`
	Model              string   `json:"vehicleModel"`
	FuelKind           FuelKind `json:"fuelType"`
	TankCapacityLiters *int     `json:"tankCapacityLiters,omitempty"`
	BatteryCapacityKWh *float64 `json:"batteryCapacityKwh,omitempty"`
}

// TripDetail is a fully loaded trip: its vehicle and its waypoints in
// recorded timestamp order. The waypoint order is authoritative for
// playback and must never be re-sorted downstream.
type TripDetail struct {
	ID            uint           `json:"tripId"`
	RouteName     string         `json:"routeName"`
	ReportContext string         `json:"reportContext"`
	Vehicle       Vehicle        `json:"vehicle"`
	Waypoints     []Waypoint     `json:"points"`
	Meta          map[string]any `json:"meta,omitempty"`
}

// ReportSummary is one row of the trip listing used for report selection.
type ReportSummary struct {
	TripID        uint   `json:"tripId"`
	RouteName     string `json:"routeName"`
	ReportContext string `json:"reportContext"`
	VehicleNumber string `json:"vehicleNumber"`
	VehicleType   string `json:"vehicleType"`
}

// ContextCount is one slice of the per-context trip breakdown.
type ContextCount struct {
	Context string `json:"groupName"`
	Count   int64  `json:"count"`
}

// DashboardSummary aggregates trips for the dashboard view, optionally
// filtered to one reporting context.
type DashboardSummary struct {
	TotalTrips         int64          `json:"totalTrips"`
	Breakdown          []ContextCount `json:"pieBreakdown"`
	UtilizationPercent int            `json:"utilization"`
}
