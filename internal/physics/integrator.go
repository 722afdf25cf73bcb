package physics

import (
	"math"

	"github.com/talgya/duck-sorter/internal/agents"
	"github.com/talgya/duck-sorter/internal/vec"
)

// Verlet advances ducks the way a position-Verlet rigid body engine does
// with gravity off: velocity decays by FrictionAir every step and gains
// force/mass*dt². There is no contact resolution.
type Verlet struct {
	FrictionAir float64 // fraction of velocity lost per step, in [0,1)
	Density     float64 // mass per unit area
	StepMillis  float64 // fixed step length in milliseconds
}

// Mass returns the mass of a disc of the given radius.
func (v Verlet) Mass(radius float64) float64 {
	return v.Density * math.Pi * radius * radius
}

// Integrate moves every duck one step and clears its accumulated force.
func (v Verlet) Integrate(ducks []*agents.Duck) {
	dt2 := v.StepMillis * v.StepMillis
	damping := 1 - v.FrictionAir
	for _, d := range ducks {
		m := v.Mass(d.Radius)
		vel := d.Velocity.Scale(damping)
		if m > 0 {
			vel = vel.Add(d.Force.Scale(dt2 / m))
		}
		d.Velocity = vel
		d.Position = d.Position.Add(vel)
		d.Force = vec.Vec2{}
	}
}
