// Package server exposes the REST surface and the replay WebSocket.
package server

import (
	"log/slog"
	"net/http"

	"github.com/tripcast/tripcast/internal/config"
	"github.com/tripcast/tripcast/internal/replay"
	"github.com/tripcast/tripcast/internal/store"
)

// Server wires the trip store and the replay manager into HTTP handlers.
type Server struct {
	store   store.TripStore
	replays *replay.Manager
	cfg     config.ReplayConfig
	logger  *slog.Logger
}

// New creates the HTTP layer over the given store and replay manager.
func New(ts store.TripStore, replays *replay.Manager, cfg config.ReplayConfig, logger *slog.Logger) *Server {
	return &Server{store: ts, replays: replays, cfg: cfg, logger: logger}
}

// Router binds all routes. The returned handler logs every request.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/reports/list", s.handleReportsList)
	mux.HandleFunc("GET /api/trips/{tripId}", s.handleTripDetail)
	mux.HandleFunc("GET /api/dashboard/summary", s.handleDashboardSummary)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}
