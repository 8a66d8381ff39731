// Package routing densifies recorded waypoints into road-following paths.
package routing

import (
	"context"
	"errors"

	"github.com/tripcast/tripcast/pkg/core"
)

var (
	// ErrDegenerateRoute reports a trip with fewer than two waypoints.
	// Such a trip cannot be replayed.
	ErrDegenerateRoute = errors.New("route has fewer than two waypoints")

	// ErrRouteServiceUnavailable reports that the road-snapping service
	// could not produce a path. Callers fall back to the raw waypoints.
	ErrRouteServiceUnavailable = errors.New("route service unavailable")
)

// Densifier expands a sparse recorded route into a dense chain of
// positions suitable for smooth playback.
type Densifier interface {
	Densify(ctx context.Context, waypoints []core.Waypoint) ([]core.Position, error)
}

// Passthrough is a Densifier that returns the recorded waypoint
// positions unchanged. It serves deployments without a routing service.
type Passthrough struct{}

func (Passthrough) Densify(_ context.Context, waypoints []core.Waypoint) ([]core.Position, error) {
	if len(waypoints) < 2 {
		return nil, ErrDegenerateRoute
	}
	path := make([]core.Position, len(waypoints))
	for i, w := range waypoints {
		path[i] = w.Position
	}
	return path, nil
}
