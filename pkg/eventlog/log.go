// Package eventlog implements the append-only per-game event log and the
// incremental projection engine built on it.
package eventlog

import (
	"fmt"

	"github.com/decred/slog"
	"github.com/vctt94/pokerledger/pkg/events"
)

// Sink receives every appended event, in order, synchronously. Sinks are used
// for durability and broadcast. A failing sink never fails the append.
type Sink interface {
	Append(e events.Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(e events.Event) error

// Append calls f.
func (f SinkFunc) Append(e events.Event) error { return f(e) }

type snapshot struct {
	pos   int
	state any
}

// Log is the ordered event history of one game. It is not safe for concurrent
// use; the owning aggregate serializes access.
type Log struct {
	gameID    string
	log       slog.Logger
	events    []events.Event
	sinks     []Sink
	snapshots map[snapshotKey]snapshot
}

type snapshotKey struct {
	gameID   string
	identity string
}

// New creates an empty log for gameID.
func New(gameID string, log slog.Logger) *Log {
	if log == nil {
		log = slog.Disabled
	}
	return &Log{
		gameID:    gameID,
		log:       log,
		snapshots: make(map[snapshotKey]snapshot),
	}
}

// Replay builds a log holding history without notifying any sink. It is the
// load path for persisted games.
func Replay(gameID string, log slog.Logger, history []events.Event) *Log {
	l := New(gameID, log)
	l.events = append(l.events, history...)
	return l
}

// GameID returns the game this log belongs to.
func (l *Log) GameID() string { return l.gameID }

// AddSink registers s to receive every subsequent append.
func (l *Log) AddSink(s Sink) {
	l.sinks = append(l.sinks, s)
}

// Append adds evs to the log and forwards each to every sink in order.
func (l *Log) Append(evs ...events.Event) {
	for _, e := range evs {
		l.events = append(l.events, e)
		for _, s := range l.sinks {
			l.forward(s, e)
		}
	}
}

func (l *Log) forward(s Sink, e events.Event) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorf("game %s: sink panicked on %s: %v", l.gameID, e.Kind(), r)
		}
	}()
	if err := s.Append(e); err != nil {
		l.log.Errorf("game %s: sink failed on %s: %v", l.gameID, e.Kind(), err)
	}
}

// Len returns the number of events in the log.
func (l *Log) Len() int { return len(l.events) }

// Events returns a copy of the full history.
func (l *Log) Events() []events.Event {
	out := make([]events.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Since returns the events appended at or after position pos.
func (l *Log) Since(pos int) []events.Event {
	if pos >= len(l.events) {
		return nil
	}
	if pos < 0 {
		pos = 0
	}
	out := make([]events.Event, len(l.events)-pos)
	copy(out, l.events[pos:])
	return out
}

// Snapshots returns the number of cached projection snapshots.
func (l *Log) Snapshots() int { return len(l.snapshots) }

// Reset discards the history and every cached snapshot. Only repair and test
// code rebuilding a log from scratch should call it.
func (l *Log) Reset(history []events.Event) {
	l.events = append([]events.Event(nil), history...)
	l.snapshots = make(map[snapshotKey]snapshot)
}

// Project folds fold over the log, resuming from the snapshot cached under
// identity. Only events appended since the previous call for the same
// identity are folded. fold must not mutate its input state.
func Project[S any](l *Log, identity string, fold func(S, events.Event) S, initial S) S {
	key := snapshotKey{gameID: l.gameID, identity: identity}
	state, pos := initial, 0
	if snap, ok := l.snapshots[key]; ok {
		cached, ok := snap.state.(S)
		if !ok {
			panic(fmt.Sprintf("eventlog: projection %q reused with a different state type", identity))
		}
		state, pos = cached, snap.pos
	}
	if pos == len(l.events) {
		return state
	}
	for _, e := range l.events[pos:] {
		state = fold(state, e)
	}
	l.snapshots[key] = snapshot{pos: len(l.events), state: state}
	return state
}

// ProjectUncached folds fold over the whole log without touching the cache.
func ProjectUncached[S any](l *Log, fold func(S, events.Event) S, initial S) S {
	state := initial
	for _, e := range l.events {
		state = fold(state, e)
	}
	return state
}
