// Package seed loads trip bundles from JSON files and plants them into
// an empty trip store at startup.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tripcast/tripcast/internal/store"
	"github.com/tripcast/tripcast/pkg/core"
)

// File is the on-disk shape of one seed bundle.
type File struct {
	RouteName     string         `json:"routeName" validate:"required"`
	ReportContext string         `json:"reportContext" validate:"required"`
	Vehicle       vehicleJSON    `json:"vehicle" validate:"required"`
	Points        []pointJSON    `json:"points" validate:"min=2,dive"`
	Meta          map[string]any `json:"meta"`
}

type vehicleJSON struct {
	Number             string   `json:"vehicleNumber" validate:"required"`
	Type               string   `json:"vehicleType" validate:"required"`
	Model              string   `json:"vehicleModel"`
	FuelType           string   `json:"fuelType" validate:"required,oneof=Diesel Petrol Electrical"`
	TankCapacityLiters *int     `json:"tankCapacityLiters"`
	BatteryCapacityKwh *float64 `json:"batteryCapacityKwh"`
}

type pointJSON struct {
	Latitude  float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Name      string    `json:"name"`
}

// Loader reads and validates seed files.
type Loader struct {
	validate *validator.Validate
	logger   *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Load parses every .json file in dir into a bundle. Files are read in
// name order so seeding is deterministic. A file that fails validation
// aborts the whole load; partial seeds are worse than none.
func (l *Loader) Load(dir string) ([]store.Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading seed dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	bundles := make([]store.Bundle, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		bundle, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("seed file %s: %w", name, err)
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

func (l *Loader) loadFile(path string) (store.Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return store.Bundle{}, err
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return store.Bundle{}, fmt.Errorf("parsing: %w", err)
	}
	if err := l.validate.Struct(f); err != nil {
		return store.Bundle{}, fmt.Errorf("validating: %w", err)
	}

	b := store.Bundle{
		RouteName:     f.RouteName,
		ReportContext: f.ReportContext,
		Vehicle: core.Vehicle{
			Number:             f.Vehicle.Number,
			Type:               f.Vehicle.Type,
			Model:              f.Vehicle.Model,
			FuelKind:           core.FuelKind(f.Vehicle.FuelType),
			TankCapacityLiters: f.Vehicle.TankCapacityLiters,
			BatteryCapacityKWh: f.Vehicle.BatteryCapacityKwh,
		},
		Meta: f.Meta,
	}
	for _, p := range f.Points {
		b.Waypoints = append(b.Waypoints, core.Waypoint{
			Position:  core.Position{Latitude: p.Latitude, Longitude: p.Longitude},
			Timestamp: p.Timestamp,
			Name:      p.Name,
		})
	}
	return b, nil
}

// Apply saves the bundles into the store unless it already holds trips.
// Returns the number of trips seeded.
func (l *Loader) Apply(ctx context.Context, ts store.TripStore, bundles []store.Bundle) (int, error) {
	existing, err := ts.CountTrips(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting existing trips: %w", err)
	}
	if existing > 0 {
		l.logger.Info("Store already seeded, skipping", "trips", existing)
		return 0, nil
	}

	for _, b := range bundles {
		tripID, err := ts.SaveBundle(ctx, b)
		if err != nil {
			return 0, fmt.Errorf("seeding trip %q: %w", b.RouteName, err)
		}
		l.logger.Info("Seeded trip", "trip", tripID, "route", b.RouteName, "points", len(b.Waypoints))
	}
	return len(bundles), nil
}
