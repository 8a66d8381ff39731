package replay

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tripcast/tripcast/internal/geo"
	"github.com/tripcast/tripcast/internal/telemetry"
	"github.com/tripcast/tripcast/pkg/core"
)

// Clock replays one densified path. It owns the path index and the tick
// timer; the tick goroutine is the only writer of the index while the
// session is playing. All methods are safe for concurrent use.
type Clock struct {
	mu sync.Mutex

	path      []core.Position
	waypoints []core.Waypoint
	interval  time.Duration
	snapTol   float64
	emitter   Emitter

	index  int
	status Status
	closed bool

	// waypointMark is the index of the last recorded waypoint the
	// playback position snapped to. It anchors telemetry queries.
	waypointMark int

	ticker *time.Ticker
	done   chan struct{}

	// ticks is set by the session manager; nil for standalone clocks.
	ticks metric.Int64Counter
}

// NewClock creates an idle clock over the given dense path and its
// original recorded waypoints. The caller guarantees len(path) >= 2 and
// len(waypoints) >= 2, and must not mutate either slice afterwards.
func NewClock(path []core.Position, waypoints []core.Waypoint, interval time.Duration, snapTol float64, emitter Emitter) *Clock {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &Clock{
		path:      path,
		waypoints: waypoints,
		interval:  interval,
		snapTol:   snapTol,
		emitter:   emitter,
		status:    StatusIdle,
	}
}

// Play starts or resumes ticking. It is a no-op when the session is
// already playing, has ended, or the index is at the final point.
func (c *Clock) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSessionClosed
	}
	if c.status == StatusPlaying || c.status == StatusEnded {
		return nil
	}
	if c.index >= len(c.path)-1 {
		return nil
	}

	c.status = StatusPlaying
	c.ticker = time.NewTicker(c.interval)
	c.done = make(chan struct{})
	go c.run(c.ticker, c.done)
	return nil
}

// Pause stops the tick timer and retains the index. No-op unless the
// session is playing.
func (c *Clock) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSessionClosed
	}
	if c.status != StatusPlaying {
		return nil
	}
	c.stopTimerLocked()
	c.status = StatusPaused
	return nil
}

// Reset rewinds to the start from any state and emits the first
// recorded waypoint, so the initial label always matches the trip's
// starting point even when the dense path begins elsewhere.
func (c *Clock) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSessionClosed
	}
	c.stopTimerLocked()
	c.index = 0
	c.waypointMark = 0
	c.status = StatusIdle

	first := c.waypoints[0]
	var label *string
	if first.Name != "" {
		name := first.Name
		label = &name
	}
	c.emitter.Emit(Update{
		Position: first.Position,
		Label:    label,
		Index:    0,
		Status:   StatusIdle,
	})
	return nil
}

// Cancel releases the session. The timer is stopped before Cancel
// returns and every later command fails with ErrSessionClosed.
// Idempotent.
func (c *Clock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.closed = true
}

// CurrentState answers a pull-mode observer's per-frame query.
func (c *Clock) CurrentState() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return State{}, ErrSessionClosed
	}
	return State{
		Index:    c.index,
		Position: c.path[c.index],
		Status:   c.status,
	}, nil
}

// Telemetry derives speed, bearing and distance from the two recorded
// waypoints bracketing the current position.
func (c *Clock) Telemetry() (telemetry.Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return telemetry.Sample{}, ErrSessionClosed
	}
	i := c.waypointMark
	if i >= len(c.waypoints)-1 {
		i = len(c.waypoints) - 2
	}
	return telemetry.Derive(c.waypoints[i], c.waypoints[i+1]), nil
}

func (c *Clock) run(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick advances the index by one and emits the new state. Reaching the
// final dense-path point ends the session.
func (c *Clock) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.status != StatusPlaying {
		return
	}

	c.index++
	pos := c.path[c.index]
	label := c.snapLocked(pos)

	ended := c.index >= len(c.path)-1
	if ended {
		c.stopTimerLocked()
		c.status = StatusEnded
	}

	c.emitter.Emit(Update{
		Position: pos,
		Label:    label,
		Index:    c.index,
		Status:   c.status,
	})
	if c.ticks != nil {
		c.ticks.Add(context.Background(), 1)
	}
	if ended {
		c.emitter.End()
	}
}

// snapLocked matches the dense-path coordinate against the recorded
// waypoints and returns the matched waypoint's label, if any. A match
// also advances the telemetry anchor.
func (c *Clock) snapLocked(pos core.Position) *string {
	for i, w := range c.waypoints {
		if !geo.WithinTolerance(pos, w.Position, c.snapTol) {
			continue
		}
		if i > c.waypointMark {
			c.waypointMark = i
		}
		if w.Name == "" {
			return nil
		}
		name := w.Name
		return &name
	}
	return nil
}

// stopTimerLocked releases the tick timer synchronously. Safe to call
// with no timer active.
func (c *Clock) stopTimerLocked() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.done)
	c.ticker = nil
	c.done = nil
}
