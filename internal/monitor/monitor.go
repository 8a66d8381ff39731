// Package monitor periodically reports service health: active replay
// sessions, stored trips and database validity.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/tripcast/tripcast/internal/influx"
	"github.com/tripcast/tripcast/internal/replay"
	"github.com/tripcast/tripcast/internal/store"
)

// Dependencies holds everything the monitor observes.
type Dependencies struct {
	Store           store.TripStore
	Replays         *replay.Manager
	Influx          *influx.Manager
	Logger          *slog.Logger
	IsDatabaseValid func() bool
}

// Service samples the dependencies on a fixed interval.
type Service struct {
	deps      Dependencies
	interval  time.Duration
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a monitor sampling at the given interval.
func NewService(deps Dependencies, interval time.Duration) *Service {
	return &Service{
		deps:     deps,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the monitor loop is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Start launches the sampling loop. Calling Start twice is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	go s.run()
}

// Stop halts the sampling loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
}

func (s *Service) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *Service) sample() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessions := s.deps.Replays.ActiveSessions()
	dbValid := s.deps.IsDatabaseValid == nil || s.deps.IsDatabaseValid()

	trips, err := s.deps.Store.CountTrips(ctx)
	if err != nil {
		s.deps.Logger.Warn("Counting trips failed", "error", err)
	}

	s.deps.Logger.Info("Service status",
		"activeSessions", sessions,
		"trips", trips,
		"databaseValid", dbValid,
	)

	if s.deps.Influx == nil {
		return
	}
	point := influxdb2.NewPointWithMeasurement("service_status").
		AddField("active_sessions", sessions).
		AddField("trips", trips).
		AddField("database_valid", dbValid).
		SetTime(time.Now())
	if err := s.deps.Influx.WritePoint(point); err != nil {
		s.deps.Logger.Warn("Writing status point failed", "error", err)
	}
}
