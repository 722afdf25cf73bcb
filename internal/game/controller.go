// Package game holds the screen flow shared by the desktop and terminal
// front-ends: a start screen with settings, the round itself, and a
// victory screen that offers another round.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/duck-sorter/internal/engine"
	"github.com/talgya/duck-sorter/internal/entropy"
	"github.com/talgya/duck-sorter/internal/vec"
)

// Phase is the screen currently shown.
type Phase uint8

const (
	PhaseStart Phase = iota
	PhasePlaying
	PhaseWon
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhasePlaying:
		return "playing"
	case PhaseWon:
		return "won"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Selectable round sizes.
var (
	GroupOptions = []int{2, 3, 4}
	DucksOptions = []int{2, 3, 4}
)

const (
	DefaultGroups        = 3
	DefaultDucksPerGroup = 4
)

// Sounds are the cues the controller triggers. *audio.Chimes satisfies it.
type Sounds interface {
	PlayStart()
	PlayWin()
}

// Controller drives an engine through the screen flow. Not safe for
// concurrent use; front-ends call it from their frame loop.
type Controller struct {
	Eng    *engine.Engine
	Seeds  *entropy.SeedSource // nil means crypto/rand
	Sounds Sounds              // nil means silent
	Now    func() time.Time

	Phase         Phase
	NumGroups     int
	DucksPerGroup int

	// Last is the most recent snapshot produced by Frame or a start.
	Last      engine.Snapshot
	FinalTime time.Duration

	lastSeed int64
	hasSeed  bool
}

// NewController creates a controller on the start screen with the default
// settings.
func NewController(eng *engine.Engine, seeds *entropy.SeedSource) *Controller {
	return &Controller{
		Eng:           eng,
		Seeds:         seeds,
		Now:           time.Now,
		NumGroups:     DefaultGroups,
		DucksPerGroup: DefaultDucksPerGroup,
	}
}

// CycleGroups advances the group count to the next option.
func (c *Controller) CycleGroups() {
	if c.Phase == PhasePlaying {
		return
	}
	c.NumGroups = next(GroupOptions, c.NumGroups)
}

// CycleDucks advances the ducks-per-group count to the next option.
func (c *Controller) CycleDucks() {
	if c.Phase == PhasePlaying {
		return
	}
	c.DucksPerGroup = next(DucksOptions, c.DucksPerGroup)
}

func next(options []int, cur int) int {
	for i, v := range options {
		if v == cur {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// StartDaily starts a round on today's seed.
func (c *Controller) StartDaily() error {
	return c.start(entropy.DailySeed(c.Now()))
}

// StartRandom starts a round on a fresh random seed.
func (c *Controller) StartRandom() error {
	return c.start(c.Seeds.Seed())
}

// Replay starts another round on the last seed played, or today's seed
// when nothing has been played yet.
func (c *Controller) Replay() error {
	if !c.hasSeed {
		return c.StartDaily()
	}
	return c.start(c.lastSeed)
}

// LastSeed returns the seed of the most recent round.
func (c *Controller) LastSeed() (int64, bool) {
	return c.lastSeed, c.hasSeed
}

func (c *Controller) start(seed int64) error {
	if c.Phase == PhasePlaying {
		return nil
	}
	snap, err := c.Eng.Start(engine.Round{
		Seed:          seed,
		NumGroups:     c.NumGroups,
		DucksPerGroup: c.DucksPerGroup,
	})
	if err != nil {
		return err
	}
	c.Last = snap
	c.lastSeed, c.hasSeed = seed, true
	c.FinalTime = 0
	c.Phase = PhasePlaying
	if c.Sounds != nil {
		c.Sounds.PlayStart()
	}
	return nil
}

// Back handles the escape key: abandon a round in progress, leave the
// victory screen, or report that the user wants to quit from the start
// screen.
func (c *Controller) Back() (quit bool) {
	switch c.Phase {
	case PhasePlaying:
		c.Eng.Stop()
		c.Phase = PhaseStart
		slog.Info("round abandoned", "seed", c.lastSeed)
	case PhaseWon:
		c.Eng.Stop()
		c.Phase = PhaseStart
	default:
		return true
	}
	return false
}

// Frame advances the round by one step toward target while playing. On the
// solving step it switches to the victory screen.
func (c *Controller) Frame(target vec.Vec2) engine.Snapshot {
	if c.Phase != PhasePlaying {
		return c.Last
	}
	c.Eng.SetTarget(target)
	res, ok := c.Eng.Tick()
	if !ok {
		c.Phase = PhaseStart
		return c.Last
	}
	c.Last = res.Snapshot
	if res.JustSolved {
		c.Phase = PhaseWon
		c.FinalTime = time.Duration(res.Snapshot.FinalTime * float64(time.Second))
		if c.Sounds != nil {
			c.Sounds.PlayWin()
		}
	}
	return c.Last
}

// TimerText is the running timer in whole seconds.
func (c *Controller) TimerText() string {
	return engine.FormatClock(time.Duration(c.Last.Elapsed * float64(time.Second)))
}

// VictoryText is the headline of the victory screen.
func (c *Controller) VictoryText() string {
	return fmt.Sprintf("You sorted the ducks in %.2f seconds!", c.FinalTime.Seconds())
}

// SettingsText describes the pending round size.
func (c *Controller) SettingsText() string {
	return fmt.Sprintf("%d groups × %d ducks", c.NumGroups, c.DucksPerGroup)
}
