package streaming

import "encoding/json"

// Message type constants for the replay WebSocket protocol.
//
// Clients send commands, the server answers with events. A client drives
// one replay session per connection; a second start_replay tears down the
// running session and starts over.
const (
	// client -> server
	TypeStartReplay = "start_replay"
	TypePause       = "pause"
	TypeResume      = "resume"
	TypeReset       = "reset"
	TypeStopReplay  = "stop_replay"
	TypeTelemetry   = "telemetry"

	// server -> client
	TypePosition    = "position"
	TypeReplayEnded = "replay_ended"
	TypeReplayError = "replay_error"
	TypeAck         = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StartReplayPayload carries the client's subscribe request.
// IntervalMs overrides the server's default tick cadence when positive.
type StartReplayPayload struct {
	TripID     uint `json:"tripId"`
	IntervalMs int  `json:"intervalMs,omitempty"`
}

// PositionPayload is emitted once per replay tick and on reset.
// Name is present only when the dense-path coordinate snapped to one of
// the trip's recorded waypoints.
type PositionPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      *string `json:"name,omitempty"`
	Index     int     `json:"index"`
	Status    string  `json:"status"`
}

// ReplayEndedPayload is the terminal event of a completed replay.
type ReplayEndedPayload struct {
	Message string `json:"message"`
}

// ReplayErrorPayload is the terminal event of a failed subscribe or a
// mid-playback failure.
type ReplayErrorPayload struct {
	Message string `json:"message"`
}

// TelemetryPayload answers a telemetry request with figures derived from
// the two recorded waypoints bracketing the current position.
// SpeedKmh is nil when no time elapsed between the waypoints.
type TelemetryPayload struct {
	SpeedKmh   *float64 `json:"speedKmh"`
	BearingDeg float64  `json:"bearingDeg"`
	DistanceKm float64  `json:"distanceKm"`
}

// AckPayload acknowledges a client command.
type AckPayload struct {
	For string `json:"for"`
}
