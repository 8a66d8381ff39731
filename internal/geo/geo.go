package geo

import (
	"errors"
	"math"

	"github.com/tripcast/tripcast/pkg/core"
)

// EarthRadiusKm is the mean Earth radius used for great-circle math.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinates is returned when a coordinate sequence cannot be
// interpreted as positions.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// HaversineKm returns the great-circle distance between two positions in
// kilometers.
func HaversineKm(a, b core.Position) float64 {
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*math.Pi/180)*math.Cos(b.Latitude*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// InitialBearing returns the initial great-circle bearing from a to b in
// degrees, normalized into [0, 360). 0 is north, clockwise positive.
func InitialBearing(a, b core.Position) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(brng+360, 360)
}

// WithinTolerance reports whether two positions are within tol degrees of
// each other on both axes. This is the snap test used to re-attach
// waypoint labels to dense-path coordinates.
func WithinTolerance(a, b core.Position, tol float64) bool {
	return math.Abs(a.Latitude-b.Latitude) < tol && math.Abs(a.Longitude-b.Longitude) < tol
}

// PathLengthKm sums the great-circle segment lengths of a path.
func PathLengthKm(path []core.Position) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += HaversineKm(path[i-1], path[i])
	}
	return total
}
