package seed

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcast/tripcast/internal/store/memstore"
)

const validSeed = `{
	"routeName": "Hyderabad Loop",
	"reportContext": "Today",
	"vehicle": {
		"vehicleNumber": "TS09UB1234",
		"vehicleType": "Truck",
		"vehicleModel": "Tata LPT",
		"fuelType": "Diesel",
		"tankCapacityLiters": 60
	},
	"points": [
		{"latitude": 17.41, "longitude": 78.43, "timestamp": "2024-03-01T09:00:00Z", "name": "Depot"},
		{"latitude": 17.43, "longitude": 78.45, "timestamp": "2024-03-01T09:10:00Z"}
	],
	"meta": {"driverHeartRate": 72}
}`

func writeSeed(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "today.json", validSeed)
	writeSeed(t, dir, "notes.txt", "not a seed")

	bundles, err := NewLoader(slog.Default()).Load(dir)
	require.NoError(t, err)
	require.Len(t, bundles, 1)

	b := bundles[0]
	assert.Equal(t, "Hyderabad Loop", b.RouteName)
	assert.Equal(t, "TS09UB1234", b.Vehicle.Number)
	require.NotNil(t, b.Vehicle.TankCapacityLiters)
	assert.Equal(t, 60, *b.Vehicle.TankCapacityLiters)
	require.Len(t, b.Waypoints, 2)
	assert.Equal(t, "Depot", b.Waypoints[0].Name)
	assert.Equal(t, float64(72), b.Meta["driverHeartRate"])
}

func TestLoad_RejectsInvalidFuelType(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "bad.json", `{
		"routeName": "X", "reportContext": "Today",
		"vehicle": {"vehicleNumber": "V1", "vehicleType": "Van", "fuelType": "Steam"},
		"points": [
			{"latitude": 0, "longitude": 0, "timestamp": "2024-03-01T09:00:00Z"},
			{"latitude": 0, "longitude": 1, "timestamp": "2024-03-01T09:01:00Z"}
		]
	}`)

	_, err := NewLoader(slog.Default()).Load(dir)
	assert.Error(t, err)
}

func TestLoad_RejectsSinglePoint(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "short.json", `{
		"routeName": "X", "reportContext": "Today",
		"vehicle": {"vehicleNumber": "V1", "vehicleType": "Van", "fuelType": "Petrol"},
		"points": [{"latitude": 0, "longitude": 0, "timestamp": "2024-03-01T09:00:00Z"}]
	}`)

	_, err := NewLoader(slog.Default()).Load(dir)
	assert.Error(t, err)
}

func TestLoad_RejectsOutOfRangeCoordinates(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "range.json", `{
		"routeName": "X", "reportContext": "Today",
		"vehicle": {"vehicleNumber": "V1", "vehicleType": "Van", "fuelType": "Petrol"},
		"points": [
			{"latitude": 91, "longitude": 0, "timestamp": "2024-03-01T09:00:00Z"},
			{"latitude": 0, "longitude": 1, "timestamp": "2024-03-01T09:01:00Z"}
		]
	}`)

	_, err := NewLoader(slog.Default()).Load(dir)
	assert.Error(t, err)
}

func TestApply_SeedsEmptyStoreOnly(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "today.json", validSeed)

	loader := NewLoader(slog.Default())
	bundles, err := loader.Load(dir)
	require.NoError(t, err)

	s := memstore.New()
	ctx := context.Background()

	n, err := loader.Apply(ctx, s, bundles)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Second apply is a no-op.
	n, err = loader.Apply(ctx, s, bundles)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := s.CountTrips(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
