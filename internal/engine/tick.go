// Package engine provides the round session and the tick-based loop that
// drives it.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/duck-sorter/internal/config"
	"github.com/talgya/duck-sorter/internal/vec"
)

// DefaultTickHz is the fixed simulation rate the tunings were built for.
const DefaultTickHz = 60

// Engine drives at most one live session. All methods are safe for
// concurrent use: the HTTP handlers, the WebSocket readers and the tick
// loop share one engine.
type Engine struct {
	Tuning   config.Tuning
	Interval time.Duration // tick interval used by Run

	// OnEvent is called after every lifecycle event, outside the engine
	// lock, one event at a time and in the order the events happened. It
	// must not call back into the engine. Populated during setup.
	OnEvent func(Event)

	mu      sync.Mutex
	emitMu  sync.Mutex // taken before mu is released, so delivery keeps lock order
	clock   Clock
	session *Session
	target  vec.Vec2 // last write wins, read once per step

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

// NewEngine creates an engine for the given tuning. A nil clock means the
// system clock; tickHz <= 0 means DefaultTickHz.
func NewEngine(tuning config.Tuning, clock Clock, tickHz int) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if tickHz <= 0 {
		tickHz = DefaultTickHz
	}
	return &Engine{
		Tuning:   tuning,
		Interval: time.Second / time.Duration(tickHz),
		clock:    clock,
		subs:     make(map[chan Event]struct{}),
	}
}

// Start builds a new session for r, replacing any live one. On error the
// current session is left untouched.
func (e *Engine) Start(r Round) (Snapshot, error) {
	s, err := NewSession(r, e.Tuning, e.clock)
	if err != nil {
		return Snapshot{}, fmt.Errorf("start round: %w", err)
	}

	e.mu.Lock()
	var events []Event
	if old := e.session; old != nil && old.State() != StateSolved {
		events = append(events, e.event(EventStopped, old))
	}
	e.session = s
	e.target = e.Tuning.PlayerStart
	snap := s.Snapshot()
	events = append(events, e.event(EventStarted, s))
	e.emitMu.Lock()
	e.mu.Unlock()

	slog.Info("round started",
		"round", s.ID,
		"seed", r.Seed,
		"groups", r.NumGroups,
		"ducks_per_group", r.DucksPerGroup,
		"tuning", e.Tuning.Name,
	)
	e.emit(events...)
	e.emitMu.Unlock()
	return snap, nil
}

// Stop drops the live session. Once Stop returns no further step of that
// session runs. It reports whether there was a session to stop.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	s := e.session
	e.session = nil
	var events []Event
	if s != nil && s.State() != StateSolved {
		events = append(events, e.event(EventStopped, s))
	}
	e.emitMu.Lock()
	e.mu.Unlock()
	defer e.emitMu.Unlock()

	if s == nil {
		return false
	}
	slog.Info("round stopped", "round", s.ID, "tick", s.Tick())
	e.emit(events...)
	return true
}

// SetTarget records the pointer target for the next step.
func (e *Engine) SetTarget(v vec.Vec2) {
	e.mu.Lock()
	e.target = v
	e.mu.Unlock()
}

// Target returns the pending pointer target.
func (e *Engine) Target() vec.Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// Tick advances the live session by one step. ok is false when there is no
// session.
func (e *Engine) Tick() (res StepResult, ok bool) {
	e.mu.Lock()
	s := e.session
	if s == nil {
		e.mu.Unlock()
		return StepResult{}, false
	}
	res = s.Step(e.target)
	if !res.JustSolved {
		e.mu.Unlock()
		return res, true
	}
	events := []Event{e.event(EventSolved, s)}
	e.emitMu.Lock()
	e.mu.Unlock()

	e.emit(events...)
	e.emitMu.Unlock()
	return res, true
}

// Snapshot copies the live session's state. ok is false when there is no
// session.
func (e *Engine) Snapshot() (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Snapshot{}, false
	}
	return e.session.Snapshot(), true
}

// Status summarises the engine for status endpoints.
type Status struct {
	Running bool    `json:"running"`
	TickHz  float64 `json:"tick_hz"`
	Tuning  string  `json:"tuning"`
	RoundID string  `json:"round_id,omitempty"`
	Seed    int64   `json:"seed,omitempty"`
	Tick    uint64  `json:"tick"`
	Elapsed float64 `json:"elapsed"`
	Solved  bool    `json:"solved"`
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		TickHz: float64(time.Second) / float64(e.Interval),
		Tuning: e.Tuning.Name,
	}
	if s := e.session; s != nil {
		st.Running = s.State() != StateSolved
		st.RoundID = s.ID.String()
		st.Seed = s.Round.Seed
		st.Tick = s.Tick()
		st.Elapsed = s.Elapsed().Seconds()
		st.Solved = s.State() == StateSolved
	}
	return st
}

// Run steps the live session every Interval until ctx is cancelled.
// Front-ends that own their frame loop call Tick themselves instead.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("simulation engine started", "interval", e.Interval, "tuning", e.Tuning.Name)
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped")
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// FormatClock renders a duration as m:ss, in whole seconds, for timers.
func FormatClock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
