package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tripcast/tripcast/internal/geo"
	"github.com/tripcast/tripcast/internal/store"
	"github.com/tripcast/tripcast/pkg/core"
)

// tripResponse augments the stored trip with the map viewport bounds of
// its recorded route.
type tripResponse struct {
	core.TripDetail
	Bounds *geo.Bounds `json:"bounds,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	reports, err := s.store.ListReports(r.Context())
	if err != nil {
		s.logger.Error("Listing reports failed", "error", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleTripDetail(w http.ResponseWriter, r *http.Request) {
	tripID, err := strconv.ParseUint(r.PathValue("tripId"), 10, 32)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid trip id")
		return
	}

	trip, err := s.store.GetTrip(r.Context(), uint(tripID))
	if errors.Is(err, store.ErrTripNotFound) {
		s.writeError(w, r, http.StatusNotFound, "trip not found")
		return
	}
	if err != nil {
		s.logger.Error("Loading trip failed", "trip", tripID, "error", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := tripResponse{TripDetail: *trip}
	path := make([]core.Position, len(trip.Waypoints))
	for i, wp := range trip.Waypoints {
		path[i] = wp.Position
	}
	if bounds, ok := geo.BoundsOf(path); ok {
		resp.Bounds = &bounds
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary(r.Context(), r.URL.Query().Get("context"))
	if err != nil {
		s.logger.Error("Building summary failed", "error", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Encoding response failed", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, map[string]string{"error": msg})
}
