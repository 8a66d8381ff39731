package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Vehicle{},
	&Trip{},
	&RoutePoint{},
}

// DatabaseModelsSQLite mirrors DatabaseModels for the SQLite fallback.
var DatabaseModelsSQLite = []interface{}{
	&Vehicle{},
	&Trip{},
	&RoutePoint{},
}

// Vehicle stores the static attributes of one fleet vehicle.
// VehicleNumber is the registration plate and is unique. Exactly one of
// TankCapacityLiters / BatteryCapacityKwh is populated, selected by FuelType.
type Vehicle struct {
	gorm.Model
	VehicleNumber      string   `json:"vehicleNumber" gorm:"size:63;uniqueIndex"`
	VehicleType        string   `json:"vehicleType" gorm:"size:63"`
	VehicleModel       string   `json:"vehicleModel" gorm:"size:127"`
	FuelType           string   `json:"fuelType" gorm:"size:31"`
	TankCapacityLiters *int     `json:"tankCapacityLiters"`
	BatteryCapacityKwh *float64 `json:"batteryCapacityKwh"`
}

func (*Vehicle) TableName() string {
	return "vehicles"
}

// Trip is one recorded journey of a vehicle. ReportContext is the
// historical bucket the trip is reported under ("Today", "This Week", ...).
// Meta carries free-form attributes from the seed files, such as driver
// vitals, that the replay engine itself never interprets.
type Trip struct {
	gorm.Model
	RouteName     string         `json:"routeName" gorm:"size:255"`
	ReportContext string         `json:"reportContext" gorm:"size:63;index:idx_trips_report_context"`
	VehicleID     uint           `json:"vehicleId" gorm:"index:idx_trips_vehicle_id"`
	Vehicle       Vehicle        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:VehicleID"`
	Meta          datatypes.JSON `json:"meta"`
}

func (*Trip) TableName() string {
	return "trips"
}

// RoutePoint is one recorded GPS sample of a trip. Timestamp-ascending
// order is the authoritative playback order; the engine never re-sorts or
// deduplicates points. Name optionally labels a known stop.
type RoutePoint struct {
	gorm.Model
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp" gorm:"index:idx_route_points_timestamp"`
	Name      string    `json:"name" gorm:"size:255"`
	TripID    uint      `json:"tripId" gorm:"index:idx_route_points_trip_id"`
	Trip      Trip      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:TripID"`
}

func (*RoutePoint) TableName() string {
	return "route_points"
}
