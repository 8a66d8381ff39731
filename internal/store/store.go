// Package store defines the trip store contract shared by its backends.
package store

import (
	"context"
	"errors"

	"github.com/tripcast/tripcast/pkg/core"
)

// ErrTripNotFound is returned when no trip exists for the given identifier.
var ErrTripNotFound = errors.New("trip not found")

// TripStore is the interface all trip store implementations must satisfy.
// Waypoints are always returned in timestamp-ascending order, which is the
// authoritative playback order.
type TripStore interface {
	// Lifecycle
	Close() error

	// Reads
	GetTrip(ctx context.Context, tripID uint) (*core.TripDetail, error)
	ListReports(ctx context.Context) ([]core.ReportSummary, error)
	Summary(ctx context.Context, reportContext string) (core.DashboardSummary, error)

	// Seeding
	SaveBundle(ctx context.Context, b Bundle) (uint, error)
	CountTrips(ctx context.Context) (int64, error)
}

// Bundle is one seedable route: a named trip, its vehicle and its
// recorded points. Vehicles are upserted by number so several bundles may
// share one vehicle.
type Bundle struct {
	RouteName     string
	ReportContext string
	Vehicle       core.Vehicle
	Meta          map[string]any
	Waypoints     []core.Waypoint
}
