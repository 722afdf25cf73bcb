// Package physics provides the per-step force fields acting on ducks and
// the integrator that turns accumulated force into motion.
//
// Every force function only adds to Duck.Force; positions are written by
// the integrator alone.
package physics

import (
	"github.com/talgya/duck-sorter/internal/agents"
	"github.com/talgya/duck-sorter/internal/vec"
	"github.com/talgya/duck-sorter/internal/world"
)

// Params are the force constants of one step.
type Params struct {
	ComfortRadius float64
	ComfortForce  float64
	GroupingForce float64
	FearRadius    float64
	FearForce     float64
	BoundsForce   float64
}

// Apply runs the force stages in their fixed order: personal space,
// cohesion, then fear and containment per duck.
func Apply(ducks []*agents.Duck, player *agents.Player, arena world.Arena, p Params) {
	ApplyComfortZone(ducks, p.ComfortRadius, p.ComfortForce)
	ApplyGrouping(ducks, p.GroupingForce)
	for _, d := range ducks {
		d.ApplyForce(FearForce(d.Position, player.Position, p.FearRadius, p.FearForce))
		d.ApplyForce(ContainmentForce(d.Position, arena, p.BoundsForce))
	}
}

// ApplyComfortZone pushes apart every pair of ducks closer than radius.
// The push fades linearly to zero at the radius; the two ducks receive
// exactly opposite forces. Coincident ducks are left alone.
//
// O(n²) in the number of ducks, fine for a few dozen.
func ApplyComfortZone(ducks []*agents.Duck, radius, strength float64) {
	for i := 0; i < len(ducks); i++ {
		for j := i + 1; j < len(ducks); j++ {
			a, b := ducks[i], ducks[j]
			f := RepulsionForce(a.Position, b.Position, radius, strength)
			if f.IsZero() {
				continue
			}
			a.ApplyForce(f)
			b.ApplyForce(f.Neg())
		}
	}
}

// RepulsionForce is the personal-space force on a duck at a from a duck at b.
func RepulsionForce(a, b vec.Vec2, radius, strength float64) vec.Vec2 {
	between := a.Sub(b)
	d := between.Len()
	if d <= 0 || d >= radius {
		return vec.Vec2{}
	}
	return between.Normalize().Scale((radius - d) * strength)
}

// ApplyGrouping pulls every duck toward the centroid of all the other
// ducks, whatever their group, with a force proportional to the distance.
// This keeps the flock together; sorting it is the player's job.
func ApplyGrouping(ducks []*agents.Duck, strength float64) {
	n := len(ducks)
	if n <= 1 {
		return
	}

	var total vec.Vec2
	for _, d := range ducks {
		total = total.Add(d.Position)
	}
	mean := total.Scale(1 / float64(n))

	for _, d := range ducks {
		others := mean.Scale(float64(n)).Sub(d.Position).Scale(1 / float64(n-1))
		toCenter := others.Sub(d.Position)
		d.ApplyForce(toCenter.Normalize().Scale(toCenter.Len() * strength))
	}
}

// FearForce pushes a duck at pos straight away from the player, strongest
// (strength) on top of the player and fading to zero at radius.
func FearForce(pos, player vec.Vec2, radius, strength float64) vec.Vec2 {
	away := pos.Sub(player)
	d := away.Len()
	if d <= 0 || d >= radius {
		return vec.Vec2{}
	}
	return away.Normalize().Scale(strength * (1 - d/radius))
}

// ContainmentForce drags a duck back once it has left the play area by more
// than the buffer. Each axis is handled on its own: a coordinate still
// inside the outer bounds gets no force on that axis.
func ContainmentForce(pos vec.Vec2, arena world.Arena, strength float64) vec.Vec2 {
	if arena.PlayArea.Contains(pos) {
		return vec.Vec2{}
	}

	outer := arena.OuterBounds
	var f vec.Vec2
	if pos.X < outer.Min.X {
		f.X = (outer.Min.X - pos.X) * strength
	} else if pos.X > outer.Max.X {
		f.X = (outer.Max.X - pos.X) * strength
	}
	if pos.Y < outer.Min.Y {
		f.Y = (outer.Min.Y - pos.Y) * strength
	} else if pos.Y > outer.Max.Y {
		f.Y = (outer.Max.Y - pos.Y) * strength
	}
	return f
}
