package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tripcast/tripcast/internal/config"
	"github.com/tripcast/tripcast/internal/routing"
	"github.com/tripcast/tripcast/internal/store"
)

// Manager multiplexes replay sessions, one per observer. It owns the
// session registry; per-session ticking stays inside each Clock and is
// never synchronized through the manager.
type Manager struct {
	store     store.TripStore
	densifier routing.Densifier
	interval  time.Duration
	snapTol   float64
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session

	// OTEL metrics
	active   metric.Int64ObservableGauge
	opened   metric.Int64Counter
	degraded metric.Int64Counter
	ticks    metric.Int64Counter
}

type session struct {
	clock  *Clock
	tripID uint
}

// NewManager creates a session manager over the given trip store and
// path densifier. Uses the global OTel meter for metrics (no-op if not
// configured).
func NewManager(ts store.TripStore, densifier routing.Densifier, cfg config.ReplayConfig, logger *slog.Logger) (*Manager, error) {
	m := &Manager{
		store:     ts,
		densifier: densifier,
		interval:  cfg.Interval,
		snapTol:   cfg.SnapTolerance,
		logger:    logger,
		sessions:  make(map[string]*session),
	}

	mt := meter()

	var err error
	m.active, err = mt.Int64ObservableGauge(
		"replay.sessions.active",
		metric.WithDescription("Currently registered replay sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active sessions gauge: %w", err)
	}
	_, err = mt.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			m.mu.RLock()
			defer m.mu.RUnlock()
			o.ObserveInt64(m.active, int64(len(m.sessions)))
			return nil
		},
		m.active,
	)
	if err != nil {
		return nil, fmt.Errorf("registering sessions callback: %w", err)
	}

	m.opened, err = mt.Int64Counter(
		"replay.sessions.opened",
		metric.WithDescription("Total replay sessions opened"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating opened counter: %w", err)
	}

	m.degraded, err = mt.Int64Counter(
		"replay.sessions.degraded",
		metric.WithDescription("Total sessions replaying raw waypoints after a densifier failure"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating degraded counter: %w", err)
	}

	m.ticks, err = mt.Int64Counter(
		"replay.ticks.emitted",
		metric.WithDescription("Total position updates emitted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	return m, nil
}

// Open builds a replay session for the observer: loads the trip,
// densifies its route and registers an idle Clock. A second Open for
// the same observer replaces the running session; the prior session is
// torn down only once the replacement is fully constructed, so a
// failed restart leaves it untouched.
//
// When the densifier is unreachable the session falls back to replaying
// the raw recorded waypoints.
func (m *Manager) Open(ctx context.Context, observerID string, tripID uint, emitter Emitter) (*Clock, error) {
	return m.open(ctx, observerID, tripID, emitter, m.interval)
}

// OpenWithInterval is Open with a caller-chosen tick cadence. A zero or
// negative interval falls back to the configured default.
func (m *Manager) OpenWithInterval(ctx context.Context, observerID string, tripID uint, emitter Emitter, interval time.Duration) (*Clock, error) {
	if interval <= 0 {
		interval = m.interval
	}
	return m.open(ctx, observerID, tripID, emitter, interval)
}

func (m *Manager) open(ctx context.Context, observerID string, tripID uint, emitter Emitter, interval time.Duration) (*Clock, error) {
	trip, err := m.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(trip.Waypoints) < 2 {
		return nil, fmt.Errorf("trip %d: %w", tripID, routing.ErrDegenerateRoute)
	}

	path, err := m.densifier.Densify(ctx, trip.Waypoints)
	if errors.Is(err, routing.ErrRouteServiceUnavailable) {
		m.logger.Warn("Densifier unavailable, replaying raw waypoints",
			"observer", observerID, "trip", tripID, "error", err)
		m.degraded.Add(ctx, 1)
		path, err = routing.Passthrough{}.Densify(ctx, trip.Waypoints)
	}
	if err != nil {
		return nil, err
	}

	clock := NewClock(path, trip.Waypoints, interval, m.snapTol, emitter)
	clock.ticks = m.ticks

	m.mu.Lock()
	if prior, ok := m.sessions[observerID]; ok {
		prior.clock.Cancel()
		m.logger.Info("Replaced replay session", "observer", observerID, "previousTrip", prior.tripID)
	}
	m.sessions[observerID] = &session{clock: clock, tripID: tripID}
	m.mu.Unlock()

	m.opened.Add(ctx, 1)
	m.logger.Info("Opened replay session",
		"observer", observerID, "trip", tripID, "points", len(path), "interval", interval)
	return clock, nil
}

// Close cancels and discards the observer's session. Idempotent; the
// transport layer calls it on every disconnect.
func (m *Manager) Close(observerID string) {
	m.mu.Lock()
	sess, ok := m.sessions[observerID]
	if ok {
		delete(m.sessions, observerID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	sess.clock.Cancel()
	m.logger.Info("Closed replay session", "observer", observerID, "trip", sess.tripID)
}

// Get returns the observer's live clock, if any.
func (m *Manager) Get(observerID string) (*Clock, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[observerID]
	if !ok {
		return nil, false
	}
	return sess.clock, true
}

// ActiveSessions returns the number of registered sessions.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown cancels every session. Called once at process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		sess.clock.Cancel()
		delete(m.sessions, id)
	}
}
