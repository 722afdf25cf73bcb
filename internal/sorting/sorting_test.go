package sorting

import (
	"math"
	"reflect"
	"testing"

	"github.com/talgya/duck-sorter/internal/agents"
	"github.com/talgya/duck-sorter/internal/vec"
)

const radius = 40.0

// cluster lays n ducks of group g on a short line starting at (x, y), each
// 15 apart so the group is a connected chain.
func cluster(ducks []*agents.Duck, g, n int, x, y float64) []*agents.Duck {
	for i := 0; i < n; i++ {
		ducks = append(ducks, &agents.Duck{
			ID:       agents.DuckID(len(ducks)),
			GroupID:  g,
			Position: vec.New(x+float64(i)*15, y),
		})
	}
	return ducks
}

func sortedArrangement() []*agents.Duck {
	var ducks []*agents.Duck
	ducks = cluster(ducks, 0, 4, 100, 100)
	ducks = cluster(ducks, 1, 4, 400, 100)
	ducks = cluster(ducks, 2, 4, 100, 400)
	return ducks
}

func TestEvaluateSolved(t *testing.T) {
	ducks := sortedArrangement()
	res := Evaluate(ducks, 3, 4, radius)
	if !res.Solved {
		t.Fatalf("expected solved arrangement")
	}
	for id, ok := range res.Sorted {
		if !ok {
			t.Fatalf("duck %d not individually sorted", id)
		}
	}
	if len(res.Sorted) != len(ducks) {
		t.Fatalf("sorted map has %d entries, want %d", len(res.Sorted), len(ducks))
	}
}

func TestEvaluateForeignContamination(t *testing.T) {
	ducks := sortedArrangement()
	// First duck of group 1 wanders next to group 0's tail.
	intruder := ducks[4]
	intruder.Position = vec.New(100+45+30, 100)

	res := Evaluate(ducks, 3, 4, radius)
	if res.Solved {
		t.Fatalf("contaminated arrangement reported solved")
	}
	if res.Sorted[intruder.ID] {
		t.Fatalf("intruder should not be individually sorted")
	}
	if res.Sorted[ducks[3].ID] {
		t.Fatalf("duck next to a foreigner should not be individually sorted")
	}
	if !res.Sorted[ducks[0].ID] {
		t.Fatalf("duck far from the intruder should stay sorted")
	}
}

func TestEvaluateSplitGroup(t *testing.T) {
	ducks := sortedArrangement()
	// Split group 2 into two pairs 200 apart; nobody foreign nearby.
	ducks[10].Position = vec.New(300, 600)
	ducks[11].Position = vec.New(315, 600)

	res := Evaluate(ducks, 3, 4, radius)
	if res.Solved {
		t.Fatalf("split group reported solved")
	}
	for _, d := range ducks {
		if !res.Sorted[d.ID] {
			t.Fatalf("duck %d should still be individually sorted", d.ID)
		}
	}
}

func TestEvaluateChainIsConnected(t *testing.T) {
	// 0-1-2 chained: 0 and 2 are 60 apart but reachable through 1.
	ducks := []*agents.Duck{
		{ID: 0, GroupID: 0, Position: vec.New(0, 0)},
		{ID: 1, GroupID: 0, Position: vec.New(30, 0)},
		{ID: 2, GroupID: 0, Position: vec.New(60, 0)},
	}
	if !Evaluate(ducks, 1, 3, radius).Solved {
		t.Fatalf("chained group should be connected")
	}
}

func TestEvaluateRadiusIsStrict(t *testing.T) {
	ducks := []*agents.Duck{
		{ID: 0, GroupID: 0, Position: vec.New(0, 0)},
		{ID: 1, GroupID: 0, Position: vec.New(radius, 0)},
	}
	res := Evaluate(ducks, 1, 2, radius)
	if res.Solved {
		t.Fatalf("ducks exactly radius apart are not neighbours")
	}
	if res.Sorted[0] || res.Sorted[1] {
		t.Fatalf("lonely ducks are not individually sorted")
	}
}

func TestEvaluateMissingMembers(t *testing.T) {
	ducks := sortedArrangement()
	if Evaluate(ducks[:11], 3, 4, radius).Solved {
		t.Fatalf("group with too few ducks reported solved")
	}
	if Evaluate(ducks, 4, 4, radius).Solved {
		t.Fatalf("empty group reported solved")
	}
	if Evaluate(nil, 3, 4, radius).Solved {
		t.Fatalf("no ducks reported solved")
	}
}

func TestEvaluateSingleDuckGroups(t *testing.T) {
	ducks := []*agents.Duck{
		{ID: 0, GroupID: 0, Position: vec.New(0, 0)},
		{ID: 1, GroupID: 1, Position: vec.New(200, 0)},
	}
	res := Evaluate(ducks, 2, 1, radius)
	if !res.Solved {
		t.Fatalf("isolated single-duck groups are sorted")
	}
	if res.Sorted[0] {
		t.Fatalf("a duck without groupmates nearby is not individually sorted")
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	ducks := sortedArrangement()
	ducks[4].Position = vec.New(170, 110)
	before := agents.CloneDucks(ducks)

	first := Evaluate(ducks, 3, 4, radius)
	second := Evaluate(ducks, 3, 4, radius)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between calls: %+v vs %+v", first, second)
	}
	for i := range ducks {
		if *ducks[i] != *before[i] {
			t.Fatalf("evaluate mutated duck %d", i)
		}
	}
}

func TestIndividuallySortedShortCircuitsOnForeigner(t *testing.T) {
	d := &agents.Duck{ID: 0, GroupID: 0, Position: vec.New(0, 0)}
	all := []*agents.Duck{
		d,
		{ID: 1, GroupID: 1, Position: vec.New(10, 0)},
		{ID: 2, GroupID: 0, Position: vec.New(0, 10)},
	}
	if IndividuallySorted(d, all, radius) {
		t.Fatalf("foreigner nearby must disqualify")
	}
	all[1].Position = vec.New(math.Inf(1), 0)
	if !IndividuallySorted(d, all, radius) {
		t.Fatalf("with the foreigner gone the duck is sorted")
	}
}
