// Package agents provides the duck and player data model and the seeded
// spawner that lays a round out.
package agents

import (
	"github.com/talgya/duck-sorter/internal/vec"
	"github.com/talgya/duck-sorter/internal/world"
)

// DuckID is a stable identifier for a duck within a round.
type DuckID int

// Duck is a mobile point mass belonging to exactly one group.
type Duck struct {
	ID      DuckID      `json:"id"`
	GroupID int         `json:"group_id"` // fixed at spawn
	Color   world.Color `json:"color"`
	Radius  float64     `json:"radius"`

	Position vec.Vec2 `json:"position"`
	Velocity vec.Vec2 `json:"velocity"`

	// Force accumulates the forces of the current step. The integrator
	// consumes and clears it.
	Force vec.Vec2 `json:"-"`
}

// ApplyForce adds f to the duck's accumulated force.
func (d *Duck) ApplyForce(f vec.Vec2) {
	d.Force = d.Force.Add(f)
}

// Player is the externally steered repulsor. It is never moved by forces.
type Player struct {
	Position vec.Vec2 `json:"position"`
	Target   vec.Vec2 `json:"target"`
	Radius   float64  `json:"radius"`
}

// NewPlayer places a player at start, already aimed at start.
func NewPlayer(start vec.Vec2, radius float64) *Player {
	return &Player{Position: start, Target: start, Radius: radius}
}

// Track records target and moves the player a fraction lerp of the way
// toward it. This is a low-pass filter on the pointer, not physics.
func (p *Player) Track(target vec.Vec2, lerp float64) {
	p.Target = target
	p.Position = p.Position.Lerp(target, lerp)
}

// CloneDucks returns deep copies of ducks.
func CloneDucks(ducks []*Duck) []*Duck {
	out := make([]*Duck, len(ducks))
	for i, d := range ducks {
		c := *d
		out[i] = &c
	}
	return out
}
