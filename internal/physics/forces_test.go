package physics

import (
	"math"
	"testing"

	"github.com/talgya/duck-sorter/internal/agents"
	"github.com/talgya/duck-sorter/internal/vec"
	"github.com/talgya/duck-sorter/internal/world"
)

func duckAt(id int, group int, x, y float64) *agents.Duck {
	return &agents.Duck{ID: agents.DuckID(id), GroupID: group, Radius: 8, Position: vec.New(x, y)}
}

func isFinite(v vec.Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func TestComfortZoneAntisymmetric(t *testing.T) {
	a := duckAt(0, 0, 100, 100)
	b := duckAt(1, 1, 107, 96)
	ApplyComfortZone([]*agents.Duck{a, b}, 20, 0.00005)

	if a.Force.IsZero() {
		t.Fatalf("expected a repulsion force inside the comfort radius")
	}
	if a.Force != b.Force.Neg() {
		t.Fatalf("forces not antisymmetric: a=%v b=%v", a.Force, b.Force)
	}
	// a sits left of b, so it is pushed left.
	if a.Force.X >= 0 {
		t.Fatalf("a pushed toward b: %v", a.Force)
	}
}

func TestComfortZoneMagnitude(t *testing.T) {
	a := duckAt(0, 0, 0, 0)
	b := duckAt(1, 0, 5, 0)
	ApplyComfortZone([]*agents.Duck{a, b}, 20, 0.5)
	want := (20.0 - 5.0) * 0.5
	if math.Abs(b.Force.X-want) > 1e-12 || b.Force.Y != 0 {
		t.Fatalf("b force = %v, want (%v,0)", b.Force, want)
	}
}

func TestComfortZoneOutsideRadius(t *testing.T) {
	a := duckAt(0, 0, 0, 0)
	b := duckAt(1, 0, 20, 0)
	ApplyComfortZone([]*agents.Duck{a, b}, 20, 1)
	if !a.Force.IsZero() || !b.Force.IsZero() {
		t.Fatalf("force at the radius boundary should vanish: %v %v", a.Force, b.Force)
	}
}

func TestComfortZoneCoincidentDucks(t *testing.T) {
	a := duckAt(0, 0, 50, 50)
	b := duckAt(1, 1, 50, 50)
	ApplyComfortZone([]*agents.Duck{a, b}, 20, 0.00005)
	if !a.Force.IsZero() || !b.Force.IsZero() {
		t.Fatalf("coincident ducks got force %v / %v, want zero", a.Force, b.Force)
	}
	if !isFinite(a.Force) || !isFinite(b.Force) {
		t.Fatalf("coincident ducks produced NaN")
	}
}

func TestComfortZoneSumsToZero(t *testing.T) {
	ducks := []*agents.Duck{
		duckAt(0, 0, 0, 0), duckAt(1, 0, 3, 4), duckAt(2, 1, -2, 6),
		duckAt(3, 1, 10, -1), duckAt(4, 2, 5, 5),
	}
	ApplyComfortZone(ducks, 20, 0.01)
	var sum vec.Vec2
	for _, d := range ducks {
		sum = sum.Add(d.Force)
	}
	if sum.Len() > 1e-12 {
		t.Fatalf("internal forces do not cancel: %v", sum)
	}
}

func TestGroupingSingleDuck(t *testing.T) {
	d := duckAt(0, 0, 10, 10)
	ApplyGrouping([]*agents.Duck{d}, 1)
	if !d.Force.IsZero() || !isFinite(d.Force) {
		t.Fatalf("single duck got cohesion force %v", d.Force)
	}
	ApplyGrouping(nil, 1)
}

func TestGroupingPullsTowardOthers(t *testing.T) {
	a := duckAt(0, 0, 0, 0)
	b := duckAt(1, 0, 10, 0)
	c := duckAt(2, 1, 20, 0)
	ApplyGrouping([]*agents.Duck{a, b, c}, 0.1)

	// Others of a are at mean 15: force = 15 * 0.1 toward +x.
	if math.Abs(a.Force.X-1.5) > 1e-9 || math.Abs(a.Force.Y) > 1e-12 {
		t.Fatalf("a force = %v, want (1.5,0)", a.Force)
	}
	// b is exactly at the centroid of a and c.
	if b.Force.Len() > 1e-9 {
		t.Fatalf("b force = %v, want zero", b.Force)
	}
	if math.Abs(c.Force.X+1.5) > 1e-9 {
		t.Fatalf("c force = %v, want (-1.5,0)", c.Force)
	}
}

func TestGroupingIgnoresGroups(t *testing.T) {
	// Two ducks of group 0 far left, one of group 1 far right: the group-1
	// duck is still pulled toward the others.
	a := duckAt(0, 0, 0, 0)
	b := duckAt(1, 0, 0, 10)
	c := duckAt(2, 1, 100, 5)
	ApplyGrouping([]*agents.Duck{a, b, c}, 0.01)
	if c.Force.X >= 0 {
		t.Fatalf("foreign duck not pulled toward population: %v", c.Force)
	}
}

func TestFearForce(t *testing.T) {
	player := vec.New(0, 0)

	f := FearForce(vec.New(75, 0), player, 150, 0.00035)
	want := 0.00035 * 0.5
	if math.Abs(f.X-want) > 1e-15 || f.Y != 0 {
		t.Fatalf("fear at half radius = %v, want (%v,0)", f, want)
	}
	if f := FearForce(vec.New(0, 150), player, 150, 0.00035); !f.IsZero() {
		t.Fatalf("fear at radius = %v, want zero", f)
	}
	if f := FearForce(vec.New(0, 200), player, 150, 0.00035); !f.IsZero() {
		t.Fatalf("fear outside radius = %v, want zero", f)
	}
	if f := FearForce(player, player, 150, 0.00035); !f.IsZero() || !isFinite(f) {
		t.Fatalf("fear on top of player = %v, want zero", f)
	}
	near := FearForce(vec.New(1, 0), player, 150, 1)
	far := FearForce(vec.New(100, 0), player, 150, 1)
	if near.Len() <= far.Len() {
		t.Fatalf("fear should decay with distance: near %v far %v", near, far)
	}
}

func TestContainmentForce(t *testing.T) {
	arena, err := world.NewArena(600, 600, 20)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	const k = 0.008

	cases := []struct {
		name string
		pos  vec.Vec2
		want vec.Vec2
	}{
		{"inside", vec.New(300, 300), vec.Vec2{}},
		{"on edge", vec.New(0, 600), vec.Vec2{}},
		{"buffer left", vec.New(-10, 300), vec.Vec2{}},
		{"buffer corner", vec.New(615, -15), vec.Vec2{}},
		{"beyond left", vec.New(-30, 300), vec.New((-20+30)*k, 0)},
		{"beyond bottom", vec.New(300, 650), vec.New(0, (620-650)*k)},
		{"beyond right, buffer top", vec.New(640, -10), vec.New((620-640)*k, 0)},
		{"beyond both", vec.New(-40, -50), vec.New((-20+40)*k, (-20+50)*k)},
	}
	for _, c := range cases {
		got := ContainmentForce(c.pos, arena, k)
		if math.Abs(got.X-c.want.X) > 1e-12 || math.Abs(got.Y-c.want.Y) > 1e-12 {
			t.Fatalf("%s: ContainmentForce(%v) = %v, want %v", c.name, c.pos, got, c.want)
		}
	}
}

func TestApplyAccumulates(t *testing.T) {
	arena, _ := world.NewArena(600, 600, 20)
	player := agents.NewPlayer(vec.New(100, 100), 10)
	d := duckAt(0, 0, 110, 100)
	p := Params{ComfortRadius: 20, ComfortForce: 1, GroupingForce: 1, FearRadius: 150, FearForce: 0.5, BoundsForce: 1}

	Apply([]*agents.Duck{d}, player, arena, p)

	want := FearForce(d.Position, player.Position, 150, 0.5)
	if d.Force != want {
		t.Fatalf("lone duck force = %v, want fear only %v", d.Force, want)
	}
}
