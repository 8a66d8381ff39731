// Package memstore implements the trip store in process memory. It backs
// tests and demo runs where no database is available.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tripcast/tripcast/internal/store"
	"github.com/tripcast/tripcast/pkg/core"
)

// Store holds trips in a map guarded by a mutex.
type Store struct {
	mu     sync.RWMutex
	trips  map[uint]core.TripDetail
	nextID uint
}

// New creates an empty in-memory trip store.
func New() *Store {
	return &Store{trips: make(map[uint]core.TripDetail), nextID: 1}
}

func (s *Store) Close() error {
	return nil
}

// GetTrip returns a copy of the stored trip.
func (s *Store) GetTrip(_ context.Context, tripID uint) (*core.TripDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trip, ok := s.trips[tripID]
	if !ok {
		return nil, fmt.Errorf("trip %d: %w", tripID, store.ErrTripNotFound)
	}

	detail := trip
	detail.Waypoints = append([]core.Waypoint(nil), trip.Waypoints...)
	if trip.Meta != nil {
		detail.Meta = make(map[string]any, len(trip.Meta))
		for k, v := range trip.Meta {
			detail.Meta[k] = v
		}
	}
	return &detail, nil
}

// ListReports returns stored trips newest first.
func (s *Store) ListReports(_ context.Context) ([]core.ReportSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]core.ReportSummary, 0, len(s.trips))
	for _, trip := range s.trips {
		reports = append(reports, core.ReportSummary{
			TripID:        trip.ID,
			RouteName:     trip.RouteName,
			ReportContext: trip.ReportContext,
			VehicleNumber: trip.Vehicle.Number,
			VehicleType:   trip.Vehicle.Type,
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].TripID > reports[j].TripID })
	return reports, nil
}

// Summary aggregates stored trips, optionally filtered to one reporting
// context ("" or "All" means no filter).
func (s *Store) Summary(_ context.Context, reportContext string) (core.DashboardSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := reportContext != "" && reportContext != "All"

	var summary core.DashboardSummary
	counts := make(map[string]int64)
	var withPoints int64
	for _, trip := range s.trips {
		if filtered && trip.ReportContext != reportContext {
			continue
		}
		summary.TotalTrips++
		counts[trip.ReportContext]++
		if len(trip.Waypoints) > 0 {
			withPoints++
		}
	}
	for context, count := range counts {
		summary.Breakdown = append(summary.Breakdown, core.ContextCount{Context: context, Count: count})
	}
	sort.Slice(summary.Breakdown, func(i, j int) bool {
		return summary.Breakdown[i].Context < summary.Breakdown[j].Context
	})
	if summary.TotalTrips > 0 {
		summary.UtilizationPercent = int(withPoints * 100 / summary.TotalTrips)
	}
	return summary, nil
}

// SaveBundle stores the bundle as a new trip and returns its ID.
func (s *Store) SaveBundle(_ context.Context, b store.Bundle) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	trip := core.TripDetail{
		ID:            id,
		RouteName:     b.RouteName,
		ReportContext: b.ReportContext,
		Vehicle:       b.Vehicle,
		Waypoints:     append([]core.Waypoint(nil), b.Waypoints...),
	}
	if b.Meta != nil {
		trip.Meta = make(map[string]any, len(b.Meta))
		for k, v := range b.Meta {
			trip.Meta[k] = v
		}
	}
	s.trips[id] = trip
	return id, nil
}

func (s *Store) CountTrips(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.trips)), nil
}
