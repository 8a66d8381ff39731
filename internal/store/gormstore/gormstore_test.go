package gormstore

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tripcast/tripcast/internal/model"
	"github.com/tripcast/tripcast/internal/store"
	"github.com/tripcast/tripcast/pkg/core"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.DatabaseModelsSQLite...))

	return New(db, slog.Default())
}

func seedBundle(name, context, vehicleNumber string, pointCount int) store.Bundle {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tank := 60

	b := store.Bundle{
		RouteName:     name,
		ReportContext: context,
		Vehicle: core.Vehicle{
			Number:             vehicleNumber,
			Type:               "Truck",
			Model:              "Tata LPT",
			FuelKind:           core.FuelDiesel,
			TankCapacityLiters: &tank,
		},
		Meta: map[string]any{"driverHeartRate": 72},
	}
	for i := 0; i < pointCount; i++ {
		b.Waypoints = append(b.Waypoints, core.Waypoint{
			Position:  core.Position{Latitude: 17.41 + float64(i)*0.01, Longitude: 78.43},
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Name:      "",
		})
	}
	return b
}

func TestSaveBundleAndGetTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	b := seedBundle("Morning Run", "Today", "TS09UB1234", 3)
	b.Waypoints[0].Name = "Depot"

	tripID, err := s.SaveBundle(ctx, b)
	require.NoError(t, err)
	require.NotZero(t, tripID)

	detail, err := s.GetTrip(ctx, tripID)
	require.NoError(t, err)

	assert.Equal(t, "Morning Run", detail.RouteName)
	assert.Equal(t, "Today", detail.ReportContext)
	assert.Equal(t, "TS09UB1234", detail.Vehicle.Number)
	assert.Equal(t, core.FuelDiesel, detail.Vehicle.FuelKind)
	require.Len(t, detail.Waypoints, 3)
	assert.Equal(t, "Depot", detail.Waypoints[0].Name)
	assert.Equal(t, float64(72), detail.Meta["driverHeartRate"])

	// Points come back in timestamp order.
	for i := 1; i < len(detail.Waypoints); i++ {
		assert.True(t, detail.Waypoints[i].Timestamp.After(detail.Waypoints[i-1].Timestamp))
	}
}

func TestGetTrip_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetTrip(context.Background(), 9999)
	assert.True(t, errors.Is(err, store.ErrTripNotFound), "expected ErrTripNotFound, got %v", err)
}

func TestSaveBundle_SharedVehicle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.SaveBundle(ctx, seedBundle("Run A", "Today", "TS09UB1234", 2))
	require.NoError(t, err)
	_, err = s.SaveBundle(ctx, seedBundle("Run B", "Yesterday", "TS09UB1234", 2))
	require.NoError(t, err)

	var vehicles int64
	require.NoError(t, s.db.Model(&model.Vehicle{}).Count(&vehicles).Error)
	assert.Equal(t, int64(1), vehicles, "vehicle should be upserted once by number")
}

func TestListReports(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.SaveBundle(ctx, seedBundle("Run A", "Today", "V1", 2))
	require.NoError(t, err)
	second, err := s.SaveBundle(ctx, seedBundle("Run B", "Yesterday", "V2", 2))
	require.NoError(t, err)

	reports, err := s.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Newest first.
	assert.Equal(t, second, reports[0].TripID)
	assert.Equal(t, first, reports[1].TripID)
	assert.Equal(t, "V2", reports[0].VehicleNumber)
}

func TestSummary(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.SaveBundle(ctx, seedBundle("Run A", "Today", "V1", 2))
	require.NoError(t, err)
	_, err = s.SaveBundle(ctx, seedBundle("Run B", "Today", "V2", 0))
	require.NoError(t, err)
	_, err = s.SaveBundle(ctx, seedBundle("Run C", "Yesterday", "V3", 2))
	require.NoError(t, err)

	all, err := s.Summary(ctx, "All")
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalTrips)
	assert.Len(t, all.Breakdown, 2)
	// 2 of 3 trips have points.
	assert.Equal(t, 66, all.UtilizationPercent)

	today, err := s.Summary(ctx, "Today")
	require.NoError(t, err)
	assert.Equal(t, int64(2), today.TotalTrips)
	require.Len(t, today.Breakdown, 1)
	assert.Equal(t, "Today", today.Breakdown[0].Context)
	assert.Equal(t, 50, today.UtilizationPercent)
}

func TestCountTrips(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n, err := s.CountTrips(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.SaveBundle(ctx, seedBundle("Run A", "Today", "V1", 2))
	require.NoError(t, err)

	n, err = s.CountTrips(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
