// Package gormstore implements the trip store on a GORM database,
// serving either Postgres or the SQLite fallback.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tripcast/tripcast/internal/model"
	"github.com/tripcast/tripcast/internal/store"
	"github.com/tripcast/tripcast/pkg/core"
)

// Store reads and seeds trips through a GORM connection.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New creates a trip store backed by the given GORM database.
func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Close is a no-op; the connection is owned by the database manager.
func (s *Store) Close() error {
	return nil
}

// GetTrip loads a trip, its vehicle and its points in timestamp order.
func (s *Store) GetTrip(ctx context.Context, tripID uint) (*core.TripDetail, error) {
	var trip model.Trip
	err := s.db.WithContext(ctx).First(&trip, tripID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("trip %d: %w", tripID, store.ErrTripNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading trip %d: %w", tripID, err)
	}

	var vehicle model.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, trip.VehicleID).Error; err != nil {
		return nil, fmt.Errorf("loading vehicle %d for trip %d: %w", trip.VehicleID, tripID, err)
	}

	var points []model.RoutePoint
	err = s.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("timestamp ASC").
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("loading points for trip %d: %w", tripID, err)
	}

	detail := model.TripDetailFromModels(trip, vehicle, points)
	return &detail, nil
}

// ListReports returns all trips joined with their vehicles, newest first.
func (s *Store) ListReports(ctx context.Context) ([]core.ReportSummary, error) {
	var rows []struct {
		TripID        uint
		RouteName     string
		ReportContext string
		VehicleNumber string
		VehicleType   string
	}

	err := s.db.WithContext(ctx).
		Table("trips").
		Select("trips.id AS trip_id, trips.route_name, trips.report_context, vehicles.vehicle_number, vehicles.vehicle_type").
		Joins("JOIN vehicles ON vehicles.id = trips.vehicle_id").
		Where("trips.deleted_at IS NULL").
		Order("trips.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	reports := make([]core.ReportSummary, len(rows))
	for i, r := range rows {
		reports[i] = core.ReportSummary{
			TripID:        r.TripID,
			RouteName:     r.RouteName,
			ReportContext: r.ReportContext,
			VehicleNumber: r.VehicleNumber,
			VehicleType:   r.VehicleType,
		}
	}
	return reports, nil
}

// Summary aggregates trips for the dashboard, optionally filtered to one
// reporting context ("" or "All" means no filter). Utilization is the
// percentage of matching trips that have at least one recorded point.
func (s *Store) Summary(ctx context.Context, reportContext string) (core.DashboardSummary, error) {
	var summary core.DashboardSummary

	trips := s.db.WithContext(ctx).Model(&model.Trip{})
	if reportContext != "" && reportContext != "All" {
		trips = trips.Where("report_context = ?", reportContext)
	}
	if err := trips.Count(&summary.TotalTrips).Error; err != nil {
		return summary, fmt.Errorf("counting trips: %w", err)
	}

	breakdown := s.db.WithContext(ctx).Model(&model.Trip{}).
		Select("report_context AS context, COUNT(id) AS count").
		Group("report_context")
	if reportContext != "" && reportContext != "All" {
		breakdown = breakdown.Where("report_context = ?", reportContext)
	}
	if err := breakdown.Scan(&summary.Breakdown).Error; err != nil {
		return summary, fmt.Errorf("grouping trips: %w", err)
	}

	if summary.TotalTrips > 0 {
		var withPoints int64
		q := s.db.WithContext(ctx).
			Table("route_points").
			Joins("JOIN trips ON trips.id = route_points.trip_id").
			Where("trips.deleted_at IS NULL")
		if reportContext != "" && reportContext != "All" {
			q = q.Where("trips.report_context = ?", reportContext)
		}
		if err := q.Distinct("route_points.trip_id").Count(&withPoints).Error; err != nil {
			return summary, fmt.Errorf("counting trips with points: %w", err)
		}
		summary.UtilizationPercent = int(withPoints * 100 / summary.TotalTrips)
	}

	return summary, nil
}

// SaveBundle upserts the bundle's vehicle by number, then creates the
// trip and its points. Returns the new trip's ID.
func (s *Store) SaveBundle(ctx context.Context, b store.Bundle) (uint, error) {
	var tripID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicle := model.Vehicle{
			VehicleNumber:      b.Vehicle.Number,
			VehicleType:        b.Vehicle.Type,
			VehicleModel:       b.Vehicle.Model,
			FuelType:           string(b.Vehicle.FuelKind),
			TankCapacityLiters: b.Vehicle.TankCapacityLiters,
			BatteryCapacityKwh: b.Vehicle.BatteryCapacityKWh,
		}
		if err := tx.Where(model.Vehicle{VehicleNumber: b.Vehicle.Number}).
			FirstOrCreate(&vehicle).Error; err != nil {
			return fmt.Errorf("upserting vehicle %q: %w", b.Vehicle.Number, err)
		}

		trip := model.Trip{
			RouteName:     b.RouteName,
			ReportContext: b.ReportContext,
			VehicleID:     vehicle.ID,
		}
		if b.Meta != nil {
			raw, err := json.Marshal(b.Meta)
			if err != nil {
				return fmt.Errorf("marshaling trip meta: %w", err)
			}
			trip.Meta = datatypes.JSON(raw)
		}
		if err := tx.Create(&trip).Error; err != nil {
			return fmt.Errorf("creating trip %q: %w", b.RouteName, err)
		}
		tripID = trip.ID

		if len(b.Waypoints) == 0 {
			s.logger.Warn("Bundle has no points, seeding trip without route", "route", b.RouteName)
			return nil
		}

		points := make([]model.RoutePoint, len(b.Waypoints))
		for i, w := range b.Waypoints {
			points[i] = model.RoutePoint{
				Latitude:  w.Latitude,
				Longitude: w.Longitude,
				Timestamp: w.Timestamp,
				Name:      w.Name,
				TripID:    trip.ID,
			}
		}
		if err := tx.Create(&points).Error; err != nil {
			return fmt.Errorf("creating %d points for trip %q: %w", len(points), b.RouteName, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return tripID, nil
}

// CountTrips returns the number of stored trips.
func (s *Store) CountTrips(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Trip{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting trips: %w", err)
	}
	return n, nil
}
