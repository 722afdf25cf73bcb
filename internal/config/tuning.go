package config

import (
	"errors"
	"fmt"

	"github.com/talgya/duck-sorter/internal/vec"
)

// Tuning holds every physical constant of a round. Forces are in the units
// of a body with mass density*π*r² stepped at StepMillis.
type Tuning struct {
	Name string `json:"name"`

	ArenaWidth   float64 `json:"arena_width"`
	ArenaHeight  float64 `json:"arena_height"`
	BoundsBuffer float64 `json:"bounds_buffer"` // dead zone outside the play area
	SpawnRadius  float64 `json:"spawn_radius"`
	Palette      string  `json:"palette"`

	LerpSpeed   float64  `json:"lerp_speed"` // higher = player follows the pointer faster
	PlayerStart vec.Vec2 `json:"player_start"`

	FearRadius    float64 `json:"fear_radius"`
	FearForce     float64 `json:"fear_force"`
	BoundsForce   float64 `json:"bounds_force"`
	GroupingForce float64 `json:"grouping_force"`
	ComfortRadius float64 `json:"comfort_radius"`
	ComfortForce  float64 `json:"comfort_force"`
	SortingRadius float64 `json:"sorting_radius"`

	DuckRadius   float64 `json:"duck_radius"`
	PlayerRadius float64 `json:"player_radius"`
	Density      float64 `json:"density"`
	FrictionAir  float64 `json:"friction_air"`
	Restitution  float64 `json:"restitution"`
	StepMillis   float64 `json:"step_millis"`
}

// DefaultTuning is the current 800×800 tuning.
func DefaultTuning() Tuning {
	return Tuning{
		Name:          "current",
		ArenaWidth:    800,
		ArenaHeight:   800,
		BoundsBuffer:  20,
		SpawnRadius:   70,
		Palette:       "base",
		LerpSpeed:     0.1,
		PlayerStart:   vec.New(295, 500),
		FearRadius:    150,
		FearForce:     0.00035,
		BoundsForce:   0.008,
		GroupingForce: 0.0000002,
		ComfortRadius: 20,
		ComfortForce:  0.00005,
		SortingRadius: 40,
		DuckRadius:    8,
		PlayerRadius:  10,
		Density:       0.001,
		FrictionAir:   0.1,
		Restitution:   0.5,
		StepMillis:    1000.0 / 60.0,
	}
}

// ClassicTuning is the earlier 600×600 tuning: a wider, weaker fear field,
// softer containment and the earth palette.
func ClassicTuning() Tuning {
	t := DefaultTuning()
	t.Name = "classic"
	t.ArenaWidth = 600
	t.ArenaHeight = 600
	t.BoundsBuffer = 10
	t.SpawnRadius = 80
	t.Palette = "earth"
	t.FearRadius = 250
	t.FearForce = 0.0003
	t.BoundsForce = 0.003
	return t
}

// TuningByName returns a preset by name.
func TuningByName(name string) (Tuning, error) {
	switch name {
	case "", "current":
		return DefaultTuning(), nil
	case "classic":
		return ClassicTuning(), nil
	}
	return Tuning{}, fmt.Errorf("unknown tuning %q", name)
}

// Validate rejects tunings the force pipeline cannot run with.
func (t Tuning) Validate() error {
	var errs []error
	positive := map[string]float64{
		"arena_width":    t.ArenaWidth,
		"arena_height":   t.ArenaHeight,
		"bounds_buffer":  t.BoundsBuffer,
		"fear_radius":    t.FearRadius,
		"comfort_radius": t.ComfortRadius,
		"sorting_radius": t.SortingRadius,
		"duck_radius":    t.DuckRadius,
		"density":        t.Density,
		"step_millis":    t.StepMillis,
	}
	for name, v := range positive {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", name, v))
		}
	}
	if t.SpawnRadius < 0 {
		errs = append(errs, fmt.Errorf("spawn_radius must not be negative, got %g", t.SpawnRadius))
	}
	if t.LerpSpeed <= 0 || t.LerpSpeed >= 1 {
		errs = append(errs, fmt.Errorf("lerp_speed must be in (0,1), got %g", t.LerpSpeed))
	}
	if t.FrictionAir < 0 || t.FrictionAir >= 1 {
		errs = append(errs, fmt.Errorf("friction_air must be in [0,1), got %g", t.FrictionAir))
	}
	return errors.Join(errs...)
}
