package protocol

import "github.com/talgya/duck-sorter/internal/engine"

type Hello struct {
	V    int    `json:"v"`
	Name string `json:"name,omitempty"`
}

// Target is a pointer position in arena coordinates.
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Start asks for a new round. Seed wins over Mode; Mode is "daily" or
// "random" (the default).
type Start struct {
	Seed          *int64 `json:"seed,omitempty"`
	Mode          string `json:"mode,omitempty"`
	NumGroups     int    `json:"num_groups"`
	DucksPerGroup int    `json:"ducks_per_group"`
}

type Stop struct{}

type Welcome struct {
	ClientID    string `json:"clientId"`
	TickHz      int    `json:"tickHz"`
	BroadcastHz int    `json:"broadcastHz"`
	Tuning      string `json:"tuning"`
}

// State carries a full round snapshot.
type State = engine.Snapshot

// Event relays a round lifecycle event.
type Event = engine.Event

type Error struct {
	Message string `json:"message"`
}
