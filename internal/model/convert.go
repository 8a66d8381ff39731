package model

import (
	"encoding/json"

	"github.com/tripcast/tripcast/pkg/core"
)

// ToCore converts a database vehicle to its domain form.
func (v *Vehicle) ToCore() core.Vehicle {
	return core.Vehicle{
		Number:             v.VehicleNumber,
		Type:               v.VehicleType,
		Model:              v.VehicleModel,
		FuelKind:           core.FuelKind(v.FuelType),
		TankCapacityLiters: v.TankCapacityLiters,
		BatteryCapacityKWh: v.BatteryCapacityKwh,
	}
}

// ToCore converts a database route point to a domain waypoint.
func (p *RoutePoint) ToCore() core.Waypoint {
	return core.Waypoint{
		Position:  core.Position{Latitude: p.Latitude, Longitude: p.Longitude},
		Timestamp: p.Timestamp,
		Name:      p.Name,
	}
}

// TripDetailFromModels assembles a domain trip from its database rows.
// points must already be in timestamp-ascending order.
func TripDetailFromModels(t Trip, vehicle Vehicle, points []RoutePoint) core.TripDetail {
	detail := core.TripDetail{
		ID:            t.ID,
		RouteName:     t.RouteName,
		ReportContext: t.ReportContext,
		Vehicle:       vehicle.ToCore(),
		Waypoints:     make([]core.Waypoint, len(points)),
	}
	for i := range points {
		detail.Waypoints[i] = points[i].ToCore()
	}
	if len(t.Meta) > 0 {
		// Meta is opaque to the engine; unmarshal errors just drop it.
		_ = json.Unmarshal(t.Meta, &detail.Meta)
	}
	return detail
}
