// Package telemetry derives instantaneous motion figures from pairs of
// recorded waypoints. Only recorded waypoints carry timestamps, so these
// functions never operate on densified path points.
package telemetry

import (
	"errors"
	"fmt"

	"github.com/tripcast/tripcast/internal/geo"
	"github.com/tripcast/tripcast/pkg/core"
)

// ErrUndefinedSpeed is returned when no time elapsed between two
// waypoints. "No time elapsed" is a distinct condition from "stationary"
// and must not be reported as 0 km/h.
var ErrUndefinedSpeed = errors.New("speed undefined: no time elapsed between waypoints")

// Sample holds the derived figures for one traversed segment.
// SpeedKmh is nil when the segment's elapsed recorded time is zero.
type Sample struct {
	DistanceKm float64  `json:"distanceKm"`
	SpeedKmh   *float64 `json:"speedKmh"`
	BearingDeg float64  `json:"bearingDeg"`
}

// Speed returns the average speed in km/h between two ordered waypoints.
func Speed(a, b core.Waypoint) (float64, error) {
	elapsed := b.Timestamp.Sub(a.Timestamp)
	if elapsed <= 0 {
		return 0, ErrUndefinedSpeed
	}
	return geo.HaversineKm(a.Position, b.Position) / elapsed.Hours(), nil
}

// Derive computes distance, speed and bearing for the segment a -> b.
func Derive(a, b core.Waypoint) Sample {
	s := Sample{
		DistanceKm: geo.HaversineKm(a.Position, b.Position),
		BearingDeg: geo.InitialBearing(a.Position, b.Position),
	}
	if speed, err := Speed(a, b); err == nil {
		s.SpeedKmh = &speed
	}
	return s
}

// Segment derives the sample for the segment ending at waypoint index i,
// i.e. between waypoints[i-1] and waypoints[i].
func Segment(waypoints []core.Waypoint, i int) (Sample, error) {
	if i < 1 || i >= len(waypoints) {
		return Sample{}, fmt.Errorf("segment index %d out of range for %d waypoints", i, len(waypoints))
	}
	return Derive(waypoints[i-1], waypoints[i]), nil
}
