// Package world provides the arena the ducks live in and the colour
// palettes their groups are painted with.
package world

import (
	"fmt"

	"github.com/talgya/duck-sorter/internal/vec"
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min vec.Vec2 `json:"min"`
	Max vec.Vec2 `json:"max"`
}

// Contains returns true if p lies inside r, edges included.
func (r Rect) Contains(p vec.Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Arena is the play area [0,0]×[W,H] and the outer bounds around it.
// Between the two lies the buffer where containment does not act.
type Arena struct {
	PlayArea    Rect    `json:"play_area"`
	OuterBounds Rect    `json:"outer_bounds"`
	Buffer      float64 `json:"buffer"`
}

// NewArena creates an arena of the given size. The buffer must be positive
// so that the outer bounds strictly contain the play area.
func NewArena(width, height, buffer float64) (Arena, error) {
	if width <= 0 || height <= 0 {
		return Arena{}, fmt.Errorf("arena size %gx%g must be positive", width, height)
	}
	if buffer <= 0 {
		return Arena{}, fmt.Errorf("arena buffer %g must be positive", buffer)
	}
	play := Rect{Min: vec.New(0, 0), Max: vec.New(width, height)}
	return Arena{
		PlayArea: play,
		OuterBounds: Rect{
			Min: vec.New(play.Min.X-buffer, play.Min.Y-buffer),
			Max: vec.New(play.Max.X+buffer, play.Max.Y+buffer),
		},
		Buffer: buffer,
	}, nil
}

// Center returns the middle of the play area.
func (a Arena) Center() vec.Vec2 {
	return vec.New(
		(a.PlayArea.Min.X+a.PlayArea.Max.X)/2,
		(a.PlayArea.Min.Y+a.PlayArea.Max.Y)/2,
	)
}
