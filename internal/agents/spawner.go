// Duck spawning: one colour per group drawn from the palette, members
// scattered uniformly over a disc around the arena centre. Every random
// draw comes from entropy.SeededRandom so a seed always reproduces the
// same layout.
package agents

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/duck-sorter/internal/entropy"
	"github.com/talgya/duck-sorter/internal/vec"
	"github.com/talgya/duck-sorter/internal/world"
)

// ErrConfig marks a round configuration that cannot be spawned.
var ErrConfig = errors.New("invalid round configuration")

// MaxDucksPerGroup caps a group. Every step is quadratic in the duck count.
const MaxDucksPerGroup = 32

// SpawnConfig controls the initial layout of a round.
type SpawnConfig struct {
	NumGroups     int
	DucksPerGroup int
	Seed          int64
	Center        vec.Vec2
	SpawnRadius   float64
	DuckRadius    float64
	Palette       world.Palette
}

// Validate checks the configuration without spawning anything.
func (c SpawnConfig) Validate() error {
	if c.NumGroups < 1 {
		return fmt.Errorf("%w: need at least one group, got %d", ErrConfig, c.NumGroups)
	}
	if c.NumGroups > len(c.Palette) {
		return fmt.Errorf("%w: %d groups but only %d colours", ErrConfig, c.NumGroups, len(c.Palette))
	}
	if c.DucksPerGroup < 1 {
		return fmt.Errorf("%w: need at least one duck per group, got %d", ErrConfig, c.DucksPerGroup)
	}
	if c.DucksPerGroup > MaxDucksPerGroup {
		return fmt.Errorf("%w: at most %d ducks per group, got %d", ErrConfig, MaxDucksPerGroup, c.DucksPerGroup)
	}
	return nil
}

// Spawn creates NumGroups*DucksPerGroup ducks, group by group.
func Spawn(cfg SpawnConfig) ([]*Duck, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	available := make(world.Palette, len(cfg.Palette))
	copy(available, cfg.Palette)

	ducks := make([]*Duck, 0, cfg.NumGroups*cfg.DucksPerGroup)
	for g := 0; g < cfg.NumGroups; g++ {
		idx := int(math.Floor(entropy.SeededRandom(entropy.ColorSeed(cfg.Seed, g)) * float64(len(available))))
		color := available[idx]
		available = append(available[:idx], available[idx+1:]...)

		for m := 0; m < cfg.DucksPerGroup; m++ {
			angle := entropy.SeededRandom(entropy.AngleSeed(cfg.Seed, g, m)) * 2 * math.Pi
			// sqrt keeps the density uniform over the disc area.
			r := cfg.SpawnRadius * math.Sqrt(entropy.SeededRandom(entropy.RadiusSeed(cfg.Seed, g, m)))

			ducks = append(ducks, &Duck{
				ID:       DuckID(len(ducks)),
				GroupID:  g,
				Color:    color,
				Radius:   cfg.DuckRadius,
				Position: cfg.Center.Add(vec.FromAngle(angle, r)),
			})
		}
	}
	return ducks, nil
}
