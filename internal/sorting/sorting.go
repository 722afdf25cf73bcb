// Package sorting decides whether the ducks have sorted themselves: every
// group pure (no foreigner within the sorting radius of any member) and
// connected (its proximity graph has a single component).
package sorting

import "github.com/talgya/duck-sorter/internal/agents"

// Result is the verdict for one snapshot of duck positions.
type Result struct {
	Solved bool                   `json:"solved"`
	Sorted map[agents.DuckID]bool `json:"sorted"` // per-duck visual feedback
}

// Evaluate checks all groups and computes each duck's sorted flag. It reads
// positions only and never fails; anything unexpected counts as unsorted.
func Evaluate(ducks []*agents.Duck, numGroups, ducksPerGroup int, radius float64) Result {
	res := Result{Sorted: make(map[agents.DuckID]bool, len(ducks))}
	for _, d := range ducks {
		res.Sorted[d.ID] = IndividuallySorted(d, ducks, radius)
	}

	if len(ducks) == 0 || numGroups <= 0 {
		return res
	}

	groups := make([][]*agents.Duck, numGroups)
	for _, d := range ducks {
		if d.GroupID >= 0 && d.GroupID < numGroups {
			groups[d.GroupID] = append(groups[d.GroupID], d)
		}
	}

	for _, members := range groups {
		if len(members) < ducksPerGroup {
			return res
		}
		if !pure(members, ducks, radius) || !connected(members, radius) {
			return res
		}
	}
	res.Solved = true
	return res
}

// IndividuallySorted reports whether d has at least one groupmate and no
// foreigner within radius.
func IndividuallySorted(d *agents.Duck, all []*agents.Duck, radius float64) bool {
	friend := false
	for _, o := range all {
		if o.ID == d.ID {
			continue
		}
		if d.Position.Dist(o.Position) >= radius {
			continue
		}
		if o.GroupID != d.GroupID {
			return false
		}
		friend = true
	}
	return friend
}

// pure reports whether no member has a duck of another group within radius.
func pure(members, all []*agents.Duck, radius float64) bool {
	for _, d := range members {
		for _, o := range all {
			if o.GroupID != d.GroupID && d.Position.Dist(o.Position) < radius {
				return false
			}
		}
	}
	return true
}

// connected runs a breadth-first search over the members' proximity graph,
// with an edge between two members closer than radius.
func connected(members []*agents.Duck, radius float64) bool {
	if len(members) == 0 {
		return false
	}
	visited := make(map[agents.DuckID]bool, len(members))
	queue := []*agents.Duck{members[0]}
	visited[members[0].ID] = true

	for head := 0; head < len(queue); head++ {
		d := queue[head]
		for _, o := range members {
			if visited[o.ID] || d.Position.Dist(o.Position) >= radius {
				continue
			}
			visited[o.ID] = true
			queue = append(queue, o)
		}
	}
	return len(visited) == len(members)
}
