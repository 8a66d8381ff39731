// Package replay implements the playback engine. A Clock replays one
// trip's densified path at a fixed cadence, and a Manager multiplexes
// one Clock per connected observer.
package replay

import (
	"errors"
	"sync"

	"github.com/tripcast/tripcast/pkg/core"
)

// ErrSessionClosed reports a command sent to a cancelled session.
var ErrSessionClosed = errors.New("replay session closed")

// Status is a replay session's lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusEnded   Status = "ended"
)

// Update is the observable state pushed to the session's emitter on
// every tick and reset. Label is set only when the current dense-path
// coordinate snapped to a named recorded waypoint.
type Update struct {
	Position core.Position
	Label    *string
	Index    int
	Status   Status
}

// State answers a pull-mode observer's query for the current frame.
type State struct {
	Index    int
	Position core.Position
	Status   Status
}

// Emitter receives a session's updates. Emit is called once per tick
// and on reset; End each time playback reaches the final point, so a
// session reset and replayed to completion ends again.
// Implementations must not call back into the Clock.
type Emitter interface {
	Emit(u Update)
	End()
}

type nopEmitter struct{}

func (nopEmitter) Emit(Update) {}
func (nopEmitter) End()        {}

// ChannelEmitter delivers updates over channels. The Updates channel is
// buffered; a full buffer drops the oldest pending update so a slow
// reader cannot stall the clock. Done closes when playback first
// reaches the final point and stays closed across later restarts.
type ChannelEmitter struct {
	Updates chan Update
	Done    chan struct{}

	endOnce sync.Once
}

// NewChannelEmitter creates an emitter with the given update buffer
// size. The buffer holds at least one update so Emit can always make
// room by dropping.
func NewChannelEmitter(buffer int) *ChannelEmitter {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelEmitter{
		Updates: make(chan Update, buffer),
		Done:    make(chan struct{}),
	}
}

func (e *ChannelEmitter) Emit(u Update) {
	for {
		select {
		case e.Updates <- u:
			return
		default:
			select {
			case <-e.Updates:
			default:
			}
		}
	}
}

func (e *ChannelEmitter) End() {
	e.endOnce.Do(func() { close(e.Done) })
}
