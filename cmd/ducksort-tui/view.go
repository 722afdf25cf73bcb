package main

import (
	"math"

	"github.com/talgya/duck-sorter/internal/vec"
)

// view maps between terminal cells and arena coordinates. The bottom row
// is the status line, the rest of the screen is the arena.
type view struct {
	cols, rows     int
	arenaW, arenaH float64
}

func (v view) fieldRows() int {
	if v.rows <= 1 {
		return 1
	}
	return v.rows - 1
}

// toArena returns the arena point at the centre of cell (cx, cy).
func (v view) toArena(cx, cy int) vec.Vec2 {
	return vec.New(
		(float64(cx)+0.5)*v.arenaW/float64(max(v.cols, 1)),
		(float64(cy)+0.5)*v.arenaH/float64(v.fieldRows()),
	)
}

// toCell returns the cell containing p and whether it is on screen.
func (v view) toCell(p vec.Vec2) (int, int, bool) {
	cx := int(math.Floor(p.X * float64(v.cols) / v.arenaW))
	cy := int(math.Floor(p.Y * float64(v.fieldRows()) / v.arenaH))
	ok := cx >= 0 && cx < v.cols && cy >= 0 && cy < v.fieldRows()
	return cx, cy, ok
}
