package game

import (
	"sync"
	"testing"
	"time"

	"github.com/talgya/duck-sorter/internal/config"
	"github.com/talgya/duck-sorter/internal/engine"
	"github.com/talgya/duck-sorter/internal/vec"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordedSounds struct{ starts, wins int }

func (s *recordedSounds) PlayStart() { s.starts++ }
func (s *recordedSounds) PlayWin()   { s.wins++ }

var day = time.Date(2025, 6, 1, 8, 30, 0, 0, time.Local)

func newController(tuning config.Tuning) (*Controller, *fakeClock, *recordedSounds) {
	clock := &fakeClock{now: day}
	c := NewController(engine.NewEngine(tuning, clock, 60), nil)
	c.Now = clock.Now
	sounds := &recordedSounds{}
	c.Sounds = sounds
	return c, clock, sounds
}

func TestSettingsCycle(t *testing.T) {
	c, _, _ := newController(config.DefaultTuning())
	if c.NumGroups != 3 || c.DucksPerGroup != 4 {
		t.Fatalf("defaults = %d×%d", c.NumGroups, c.DucksPerGroup)
	}
	var groups []int
	for i := 0; i < 4; i++ {
		c.CycleGroups()
		groups = append(groups, c.NumGroups)
	}
	if want := []int{4, 2, 3, 4}; !equal(groups, want) {
		t.Fatalf("group cycle = %v, want %v", groups, want)
	}
	c.CycleDucks()
	if c.DucksPerGroup != 2 {
		t.Fatalf("ducks after cycle = %d, want 2", c.DucksPerGroup)
	}
	if c.SettingsText() != "4 groups × 2 ducks" {
		t.Fatalf("settings text %q", c.SettingsText())
	}
}

func TestStartDailyAndAbandon(t *testing.T) {
	c, clock, sounds := newController(config.DefaultTuning())
	if err := c.StartDaily(); err != nil {
		t.Fatalf("StartDaily: %v", err)
	}
	if c.Phase != PhasePlaying || sounds.starts != 1 {
		t.Fatalf("phase %v, starts %d", c.Phase, sounds.starts)
	}
	if seed, ok := c.LastSeed(); !ok || seed != 20250601 {
		t.Fatalf("last seed = %d, %v", seed, ok)
	}

	c.CycleGroups()
	if c.NumGroups != 3 {
		t.Fatalf("settings changed mid-round")
	}

	c.Frame(vec.New(400, 400))
	clock.Advance(65 * time.Second)
	snap := c.Frame(vec.New(400, 400))
	if snap.Tick != 2 || c.TimerText() != "1:05" {
		t.Fatalf("tick %d, timer %q", snap.Tick, c.TimerText())
	}

	if quit := c.Back(); quit || c.Phase != PhaseStart {
		t.Fatalf("abandon: quit=%v phase=%v", quit, c.Phase)
	}
	if _, ok := c.Eng.Snapshot(); ok {
		t.Fatalf("abandoned round still live")
	}
	if !c.Back() {
		t.Fatalf("escape on the start screen should quit")
	}
}

func TestWinAndReplay(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.SortingRadius = 2000 // one group is then trivially sorted
	c, _, sounds := newController(tuning)
	c.NumGroups = 1

	if err := c.Replay(); err != nil {
		t.Fatalf("Replay without history: %v", err)
	}
	first, _ := c.LastSeed()
	if first != 20250601 {
		t.Fatalf("replay without history used seed %d", first)
	}

	c.Frame(vec.New(0, 0))
	if c.Phase != PhaseWon || sounds.wins != 1 {
		t.Fatalf("phase %v, wins %d", c.Phase, sounds.wins)
	}
	if c.VictoryText() != "You sorted the ducks in 0.00 seconds!" {
		t.Fatalf("victory text %q", c.VictoryText())
	}

	before := c.Last
	if after := c.Frame(vec.New(800, 800)); after.Tick != before.Tick {
		t.Fatalf("frames advance on the victory screen")
	}

	if err := c.StartRandom(); err != nil {
		t.Fatalf("StartRandom: %v", err)
	}
	c.Frame(vec.New(0, 0))
	random, _ := c.LastSeed()
	if err := c.Replay(); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if seed, _ := c.LastSeed(); seed != random {
		t.Fatalf("replay seed %d, want %d", seed, random)
	}
	if sounds.starts != 3 {
		t.Fatalf("start chimes = %d, want 3", sounds.starts)
	}
}

func TestStartErrorKeepsStartScreen(t *testing.T) {
	c, _, sounds := newController(config.DefaultTuning())
	c.NumGroups = 0
	if err := c.StartDaily(); err == nil {
		t.Fatalf("invalid settings accepted")
	}
	if c.Phase != PhaseStart || sounds.starts != 0 {
		t.Fatalf("phase %v, starts %d", c.Phase, sounds.starts)
	}
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
