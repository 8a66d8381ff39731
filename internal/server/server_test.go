package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcast/tripcast/internal/config"
	"github.com/tripcast/tripcast/internal/replay"
	"github.com/tripcast/tripcast/internal/routing"
	"github.com/tripcast/tripcast/internal/store"
	"github.com/tripcast/tripcast/internal/store/memstore"
	"github.com/tripcast/tripcast/pkg/core"
)

func newTestServer(t *testing.T, interval time.Duration) (*httptest.Server, store.TripStore, *replay.Manager) {
	t.Helper()

	s := memstore.New()
	cfg := config.ReplayConfig{Interval: interval, SnapTolerance: 1e-4}
	replays, err := replay.NewManager(s, routing.Passthrough{}, cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(replays.Shutdown)

	srv := httptest.NewServer(New(s, replays, cfg, slog.Default()).Router())
	t.Cleanup(srv.Close)
	return srv, s, replays
}

func seedTrip(t *testing.T, s store.TripStore, points int) uint {
	t.Helper()
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	b := store.Bundle{
		RouteName:     "City Loop",
		ReportContext: "Today",
		Vehicle:       core.Vehicle{Number: "TS09UB1234", Type: "Truck", FuelKind: core.FuelDiesel},
	}
	for i := 0; i < points; i++ {
		name := ""
		if i == 0 {
			name = "Depot"
		}
		b.Waypoints = append(b.Waypoints, core.Waypoint{
			Position:  core.Position{Latitude: 17.41 + float64(i)*0.01, Longitude: 78.43 + float64(i)*0.01},
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Name:      name,
		})
	}
	id, err := s.SaveBundle(context.Background(), b)
	require.NoError(t, err)
	return id
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, time.Second)

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestReportsList(t *testing.T) {
	srv, s, _ := newTestServer(t, time.Second)
	seedTrip(t, s, 3)
	seedTrip(t, s, 2)

	var body struct {
		Reports []core.ReportSummary `json:"reports"`
	}
	status := getJSON(t, srv.URL+"/api/reports/list", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Reports, 2)
	assert.Equal(t, "TS09UB1234", body.Reports[0].VehicleNumber)
}

func TestTripDetail(t *testing.T) {
	srv, s, _ := newTestServer(t, time.Second)
	tripID := seedTrip(t, s, 3)

	var body struct {
		core.TripDetail
		Bounds *struct {
			MinLat float64 `json:"minLat"`
			MaxLat float64 `json:"maxLat"`
		} `json:"bounds"`
	}
	status := getJSON(t, srv.URL+"/api/trips/1", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, tripID, body.ID)
	assert.Equal(t, "City Loop", body.RouteName)
	require.Len(t, body.Waypoints, 3)
	require.NotNil(t, body.Bounds)
	assert.InDelta(t, 17.41, body.Bounds.MinLat, 1e-9)
	assert.InDelta(t, 17.43, body.Bounds.MaxLat, 1e-9)
}

func TestTripDetail_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t, time.Second)

	status := getJSON(t, srv.URL+"/api/trips/404", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTripDetail_BadID(t *testing.T) {
	srv, _, _ := newTestServer(t, time.Second)

	status := getJSON(t, srv.URL+"/api/trips/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDashboardSummary(t *testing.T) {
	srv, s, _ := newTestServer(t, time.Second)
	seedTrip(t, s, 3)
	seedTrip(t, s, 2)

	var body core.DashboardSummary
	status := getJSON(t, srv.URL+"/api/dashboard/summary?context=Today", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), body.TotalTrips)
	assert.Equal(t, 100, body.UtilizationPercent)
}
