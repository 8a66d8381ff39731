package geo

import (
	"errors"
	"testing"

	"github.com/tripcast/tripcast/pkg/core"
)

func TestPathFromCoords_Valid(t *testing.T) {
	coords := [][]float64{{78.43, 17.41}, {78.44, 17.42}, {78.45, 17.43}}

	path, err := PathFromCoords(coords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(path))
	}
	if path[0].Longitude != 78.43 || path[0].Latitude != 17.41 {
		t.Errorf("expected (lng,lat) ordering preserved, got %+v", path[0])
	}
}

func TestPathFromCoords_TooFewPoints(t *testing.T) {
	_, err := PathFromCoords([][]float64{{78.43, 17.41}})
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestPathFromCoords_ShortCoordinate(t *testing.T) {
	_, err := PathFromCoords([][]float64{{78.43, 17.41}, {78.44}})
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestLineStringOf_RoundTrip(t *testing.T) {
	path := []core.Position{
		{Latitude: 17.41, Longitude: 78.43},
		{Latitude: 17.42, Longitude: 78.44},
	}

	ls, err := LineStringOf(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seq := ls.Coordinates()
	if seq.Length() != 2 {
		t.Fatalf("expected 2 coordinates, got %d", seq.Length())
	}
	first := seq.GetXY(0)
	if first.X != 78.43 || first.Y != 17.41 {
		t.Errorf("expected X=lng Y=lat, got %+v", first)
	}
}

func TestBoundsOf(t *testing.T) {
	path := []core.Position{
		{Latitude: 17.41, Longitude: 78.43},
		{Latitude: 17.45, Longitude: 78.40},
		{Latitude: 17.43, Longitude: 78.47},
	}

	b, ok := BoundsOf(path)
	if !ok {
		t.Fatal("expected bounds for valid path")
	}
	if b.MinLat != 17.41 || b.MaxLat != 17.45 {
		t.Errorf("unexpected latitude bounds: %+v", b)
	}
	if b.MinLng != 78.40 || b.MaxLng != 78.47 {
		t.Errorf("unexpected longitude bounds: %+v", b)
	}
	if b.Min3857[0] >= b.Max3857[0] || b.Min3857[1] >= b.Max3857[1] {
		t.Errorf("projected bounds not ordered: %+v", b)
	}
}

func TestBoundsOf_DegeneratePath(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Error("expected no bounds for empty path")
	}
	if _, ok := BoundsOf([]core.Position{{Latitude: 1, Longitude: 1}}); ok {
		t.Error("expected no bounds for single point")
	}
}
