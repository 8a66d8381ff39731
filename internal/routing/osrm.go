package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/tripcast/tripcast/internal/config"
	"github.com/tripcast/tripcast/internal/geo"
	"github.com/tripcast/tripcast/pkg/core"
)

// OSRMClient densifies routes through an OSRM HTTP server's driving
// profile. Any transport or service failure is reported as
// ErrRouteServiceUnavailable so callers can degrade to the raw route.
type OSRMClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOSRMClient creates a client for the configured OSRM endpoint.
func NewOSRMClient(cfg config.OSRMConfig, logger *slog.Logger) *OSRMClient {
	return &OSRMClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Densify requests a road-following path through the recorded waypoints.
func (c *OSRMClient) Densify(ctx context.Context, waypoints []core.Waypoint) ([]core.Position, error) {
	if len(waypoints) < 2 {
		return nil, ErrDegenerateRoute
	}

	url := c.routeURL(waypoints)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building route request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Route request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRouteServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn("Route request rejected", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrRouteServiceUnavailable, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrRouteServiceUnavailable, err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		c.logger.Warn("Route service returned no route", "code", body.Code)
		return nil, fmt.Errorf("%w: code %q", ErrRouteServiceUnavailable, body.Code)
	}

	path, err := geo.PathFromCoords(body.Routes[0].Geometry.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouteServiceUnavailable, err)
	}
	return path, nil
}

// routeURL builds the driving-profile route URL. OSRM expects
// longitude,latitude pairs separated by semicolons.
func (c *OSRMClient) routeURL(waypoints []core.Waypoint) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/route/v1/driving/")
	for i, w := range waypoints {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.FormatFloat(w.Longitude, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Latitude, 'f', 6, 64))
	}
	b.WriteString("?overview=full&geometries=geojson")
	return b.String()
}
