package telemetry

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tripcast/tripcast/internal/geo"
	"github.com/tripcast/tripcast/pkg/core"
)

func wp(lat, lng float64, ts time.Time, name string) core.Waypoint {
	return core.Waypoint{
		Position:  core.Position{Latitude: lat, Longitude: lng},
		Timestamp: ts,
		Name:      name,
	}
}

func TestSpeed_OneHourSegment(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := wp(17.41, 78.43, t0, "")
	b := wp(17.42, 78.44, t0.Add(time.Hour), "")

	speed, err := Speed(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Elapsed is exactly 1h, so speed equals the haversine distance.
	want := geo.HaversineKm(a.Position, b.Position)
	if math.Abs(speed-want) > 1e-9 {
		t.Errorf("expected speed %f, got %f", want, speed)
	}
}

func TestSpeed_ZeroElapsed(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := wp(17.41, 78.43, t0, "")
	b := wp(17.42, 78.44, t0, "")

	_, err := Speed(a, b)
	if !errors.Is(err, ErrUndefinedSpeed) {
		t.Errorf("expected ErrUndefinedSpeed, got %v", err)
	}
}

func TestSpeed_NegativeElapsed(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := wp(17.41, 78.43, t0, "")
	b := wp(17.42, 78.44, t0.Add(-time.Minute), "")

	_, err := Speed(a, b)
	if !errors.Is(err, ErrUndefinedSpeed) {
		t.Errorf("expected ErrUndefinedSpeed for reversed timestamps, got %v", err)
	}
}

func TestDerive(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := wp(17.41, 78.43, t0, "")
	b := wp(17.42, 78.44, t0.Add(30*time.Minute), "")

	s := Derive(a, b)
	if s.SpeedKmh == nil {
		t.Fatal("expected defined speed")
	}
	if s.BearingDeg < 0 || s.BearingDeg >= 360 {
		t.Errorf("bearing %f out of [0,360)", s.BearingDeg)
	}
	if s.DistanceKm <= 0 {
		t.Errorf("expected positive distance, got %f", s.DistanceKm)
	}
	// 30 minutes elapsed: speed is twice the distance.
	if math.Abs(*s.SpeedKmh-2*s.DistanceKm) > 1e-9 {
		t.Errorf("expected speed %f, got %f", 2*s.DistanceKm, *s.SpeedKmh)
	}
}

func TestDerive_UndefinedSpeedKeepsBearing(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := wp(0, 0, t0, "")
	b := wp(0, 1, t0, "")

	s := Derive(a, b)
	if s.SpeedKmh != nil {
		t.Errorf("expected nil speed, got %f", *s.SpeedKmh)
	}
	if math.Abs(s.BearingDeg-90) > 1e-9 {
		t.Errorf("expected bearing 90, got %f", s.BearingDeg)
	}
}

func TestSegment(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	wps := []core.Waypoint{
		wp(0, 0, t0, "depot"),
		wp(0, 1, t0.Add(time.Hour), "toll"),
		wp(0, 2, t0.Add(3*time.Hour), "market"),
	}

	s, err := Segment(wps, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SpeedKmh == nil {
		t.Fatal("expected defined speed")
	}
	// Segment 1->2 covers one degree of longitude in two hours.
	want := geo.HaversineKm(wps[1].Position, wps[2].Position) / 2
	if math.Abs(*s.SpeedKmh-want) > 1e-9 {
		t.Errorf("expected speed %f, got %f", want, *s.SpeedKmh)
	}

	if _, err := Segment(wps, 0); err == nil {
		t.Error("expected error for segment index 0")
	}
	if _, err := Segment(wps, 3); err == nil {
		t.Error("expected error for out-of-range index")
	}
}
