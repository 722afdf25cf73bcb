package engine

import (
	"log/slog"
	"time"
)

// EventKind names a round lifecycle event.
type EventKind string

const (
	EventStarted EventKind = "round_started"
	EventSolved  EventKind = "round_solved"
	EventStopped EventKind = "round_stopped" // abandoned before solving
)

// Event is a notable moment in a round's life.
type Event struct {
	Kind          EventKind `json:"kind"`
	RoundID       string    `json:"round_id"`
	Seed          int64     `json:"seed"`
	NumGroups     int       `json:"num_groups"`
	DucksPerGroup int       `json:"ducks_per_group"`
	Tuning        string    `json:"tuning"`
	Tick          uint64    `json:"tick"`
	Elapsed       float64   `json:"elapsed"` // seconds; the final time for round_solved
	At            time.Time `json:"at"`
}

// event describes s. Caller holds e.mu.
func (e *Engine) event(kind EventKind, s *Session) Event {
	return Event{
		Kind:          kind,
		RoundID:       s.ID.String(),
		Seed:          s.Round.Seed,
		NumGroups:     s.Round.NumGroups,
		DucksPerGroup: s.Round.DucksPerGroup,
		Tuning:        s.Tuning.Name,
		Tick:          s.Tick(),
		Elapsed:       s.Elapsed().Seconds(),
		At:            e.clock.Now(),
	}
}

// Subscribe returns a channel receiving every lifecycle event. Events that
// do not fit in the buffer are dropped for that subscriber.
func (e *Engine) Subscribe(buffer int) chan Event {
	ch := make(chan Event, buffer)
	e.subMu.Lock()
	e.subs[ch] = struct{}{}
	e.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes ch.
func (e *Engine) Unsubscribe(ch chan Event) {
	e.subMu.Lock()
	if _, ok := e.subs[ch]; ok {
		delete(e.subs, ch)
		close(ch)
	}
	e.subMu.Unlock()
}

// emit delivers events to OnEvent and subscribers. Caller holds e.emitMu,
// not e.mu.
func (e *Engine) emit(events ...Event) {
	for _, ev := range events {
		if e.OnEvent != nil {
			e.OnEvent(ev)
		}
		e.subMu.Lock()
		for ch := range e.subs {
			select {
			case ch <- ev:
			default:
				slog.Debug("dropping event for slow subscriber", "kind", ev.Kind)
			}
		}
		e.subMu.Unlock()
	}
}
