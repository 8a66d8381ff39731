package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/tripcast/tripcast/internal/replay"
	"github.com/tripcast/tripcast/internal/routing"
	"github.com/tripcast/tripcast/internal/store"
	"github.com/tripcast/tripcast/pkg/streaming"
)

const (
	sendChSize = 256
	writeWait  = 10 * time.Second
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

var observerSeq atomic.Uint64

// client is one observer's WebSocket connection with a single write
// goroutine draining sendCh.
type client struct {
	mu     sync.Mutex
	conn   *ws.Conn
	sendCh chan []byte
	done   chan struct{} // closed on shutdown
	closed bool

	observerID string
	server     *Server
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		conn:       conn,
		sendCh:     make(chan []byte, sendChSize),
		done:       make(chan struct{}),
		observerID: fmt.Sprintf("%s#%d", r.RemoteAddr, observerSeq.Add(1)),
		server:     s,
	}

	s.logger.Info("Observer connected", "observer", c.observerID)
	go c.writeLoop()
	c.readLoop()

	// No session may outlive its observer's connection.
	s.replays.Close(c.observerID)
	c.close()
	s.logger.Info("Observer disconnected", "observer", c.observerID)
}

// readLoop dispatches client commands until the connection drops.
func (c *client) readLoop() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if !ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
					c.server.logger.Debug("WebSocket read error", "observer", c.observerID, "error", err)
				}
			}
			return
		}

		var env streaming.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.sendError("malformed message")
			continue
		}
		c.dispatch(env)
	}
}

func (c *client) dispatch(env streaming.Envelope) {
	switch env.Type {
	case streaming.TypeStartReplay:
		c.handleStartReplay(env.Payload)

	case streaming.TypePause:
		c.withClock(env.Type, func(clock *replay.Clock) error { return clock.Pause() })

	case streaming.TypeResume:
		c.withClock(env.Type, func(clock *replay.Clock) error { return clock.Play() })

	case streaming.TypeReset:
		c.withClock(env.Type, func(clock *replay.Clock) error { return clock.Reset() })

	case streaming.TypeStopReplay:
		c.server.replays.Close(c.observerID)
		c.sendAck(env.Type)

	case streaming.TypeTelemetry:
		c.handleTelemetry()

	default:
		c.sendError(fmt.Sprintf("unknown message type %q", env.Type))
	}
}

func (c *client) handleStartReplay(raw json.RawMessage) {
	var payload streaming.StartReplayPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.sendError("malformed start_replay payload")
		return
	}

	interval := time.Duration(payload.IntervalMs) * time.Millisecond
	clock, err := c.server.replays.OpenWithInterval(
		context.Background(), c.observerID, payload.TripID, &wsEmitter{client: c}, interval)
	switch {
	case errors.Is(err, store.ErrTripNotFound):
		c.sendError(fmt.Sprintf("trip %d not found", payload.TripID))
		return
	case errors.Is(err, routing.ErrDegenerateRoute):
		c.sendError(fmt.Sprintf("trip %d has too few waypoints to replay", payload.TripID))
		return
	case err != nil:
		c.server.logger.Error("Opening replay failed",
			"observer", c.observerID, "trip", payload.TripID, "error", err)
		c.sendError("replay could not be started")
		return
	}

	// Push the starting waypoint before the first tick so the observer
	// renders the vehicle at the trip's origin immediately.
	if err := clock.Reset(); err == nil {
		err = clock.Play()
	}
	if err != nil {
		c.sendError("replay could not be started")
		return
	}
	c.sendAck(streaming.TypeStartReplay)
}

func (c *client) handleTelemetry() {
	clock, ok := c.server.replays.Get(c.observerID)
	if !ok {
		c.sendError("no active replay")
		return
	}
	sample, err := clock.Telemetry()
	if err != nil {
		c.sendError("no active replay")
		return
	}
	c.send(streaming.TypeTelemetry, streaming.TelemetryPayload{
		SpeedKmh:   sample.SpeedKmh,
		BearingDeg: sample.BearingDeg,
		DistanceKm: sample.DistanceKm,
	})
}

// withClock runs a command against the observer's live session and acks
// it, or reports that no session exists.
func (c *client) withClock(ackFor string, fn func(*replay.Clock) error) {
	clock, ok := c.server.replays.Get(c.observerID)
	if !ok {
		c.sendError("no active replay")
		return
	}
	if err := fn(clock); err != nil {
		c.sendError("no active replay")
		return
	}
	c.sendAck(ackFor)
}

func (c *client) sendAck(cmd string) {
	c.send(streaming.TypeAck, streaming.AckPayload{For: cmd})
}

func (c *client) sendError(msg string) {
	c.send(streaming.TypeReplayError, streaming.ReplayErrorPayload{Message: msg})
}

// send marshals an envelope onto the write loop. Non-blocking; drops if
// the channel is full so a stalled observer cannot back up a session.
func (c *client) send(msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.server.logger.Warn("Marshaling payload failed", "type", msgType, "error", err)
		return
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		c.server.logger.Warn("Marshaling envelope failed", "type", msgType, "error", err)
		return
	}

	select {
	case c.sendCh <- data:
	default:
		c.server.logger.Warn("Send channel full, dropping message",
			"observer", c.observerID, "type", msgType)
	}
}

// writeLoop drains sendCh and writes messages to the WebSocket.
func (c *client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.server.logger.Warn("WebSocket SetWriteDeadline error",
					"observer", c.observerID, "error", err)
				return
			}
			if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.server.logger.Warn("WebSocket write error",
					"observer", c.observerID, "error", err)
				return
			}
		}
	}
}

// close shuts down the connection and its write goroutine. Idempotent.
func (c *client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	_ = c.conn.WriteControl(
		ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	_ = c.conn.Close()
}

// wsEmitter adapts a client connection to the replay engine's emitter.
type wsEmitter struct {
	client *client
}

func (e *wsEmitter) Emit(u replay.Update) {
	e.client.send(streaming.TypePosition, streaming.PositionPayload{
		Latitude:  u.Position.Latitude,
		Longitude: u.Position.Longitude,
		Name:      u.Label,
		Index:     u.Index,
		Status:    string(u.Status),
	})
}

func (e *wsEmitter) End() {
	e.client.send(streaming.TypeReplayEnded, streaming.ReplayEndedPayload{
		Message: "replay complete",
	})
}
