package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/tripcast/tripcast/pkg/core"
)

// PathFromCoords converts a routing-service coordinate list into a path.
// Input coordinates are (lng, lat) pairs, the order OSRM speaks.
func PathFromCoords(coords [][]float64) ([]core.Position, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("polyline must have at least 2 points, got %d: %w", len(coords), ErrInvalidCoordinates)
	}

	path := make([]core.Position, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values: %w", i, ErrInvalidCoordinates)
		}
		path[i] = core.Position{Longitude: coord[0], Latitude: coord[1]}
	}
	return path, nil
}

// LineStringOf builds a geom.LineString from a path, X=longitude Y=latitude.
func LineStringOf(path []core.Position) (geom.LineString, error) {
	if len(path) < 2 {
		return geom.LineString{}, fmt.Errorf("line string needs at least 2 points, got %d: %w", len(path), ErrInvalidCoordinates)
	}

	flat := make([]float64, 0, len(path)*2)
	for _, p := range path {
		flat = append(flat, p.Longitude, p.Latitude)
	}
	seq := geom.NewSequence(flat, geom.DimXY)
	return geom.NewLineString(seq), nil
}
