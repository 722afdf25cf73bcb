// Session ties together the arena, the player and the ducks of one round
// and advances them one fixed step at a time.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/duck-sorter/internal/agents"
	"github.com/talgya/duck-sorter/internal/config"
	"github.com/talgya/duck-sorter/internal/physics"
	"github.com/talgya/duck-sorter/internal/sorting"
	"github.com/talgya/duck-sorter/internal/vec"
	"github.com/talgya/duck-sorter/internal/world"
)

// Round is what a player chooses before a session starts.
type Round struct {
	Seed          int64 `json:"seed"`
	NumGroups     int   `json:"num_groups"`
	DucksPerGroup int   `json:"ducks_per_group"`
}

// State is a session's lifecycle state.
type State uint8

const (
	StateCreated State = iota
	StateRunning
	StateSolved // terminal
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateSolved:
		return "solved"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Integrator turns the forces accumulated on ducks into motion and clears
// them.
type Integrator interface {
	Integrate(ducks []*agents.Duck)
}

// Session holds the complete state of one round. It is not safe for
// concurrent use; Engine serialises access to it.
type Session struct {
	ID     uuid.UUID
	Round  Round
	Tuning config.Tuning

	Arena  world.Arena
	Player *agents.Player
	Ducks  []*agents.Duck

	Integrator Integrator

	state     State
	tick      uint64
	clock     Clock
	started   time.Time
	finalTime time.Duration
	sorted    map[agents.DuckID]bool
}

// StepResult is the outcome of one Step.
type StepResult struct {
	Snapshot   Snapshot `json:"snapshot"`
	JustSolved bool     `json:"just_solved"` // true only on the solving step
}

// NewSession validates the round and tuning, then spawns the ducks. Nothing
// is allocated for an invalid configuration; errors wrap agents.ErrConfig.
func NewSession(round Round, tuning config.Tuning, clock Clock) (*Session, error) {
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("%w: tuning %q: %w", agents.ErrConfig, tuning.Name, err)
	}
	palette, err := world.PaletteByName(tuning.Palette)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", agents.ErrConfig, err)
	}
	arena, err := world.NewArena(tuning.ArenaWidth, tuning.ArenaHeight, tuning.BoundsBuffer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", agents.ErrConfig, err)
	}

	ducks, err := agents.Spawn(agents.SpawnConfig{
		NumGroups:     round.NumGroups,
		DucksPerGroup: round.DucksPerGroup,
		Seed:          round.Seed,
		Center:        arena.Center(),
		SpawnRadius:   tuning.SpawnRadius,
		DuckRadius:    tuning.DuckRadius,
		Palette:       palette,
	})
	if err != nil {
		return nil, fmt.Errorf("spawn round: %w", err)
	}

	if clock == nil {
		clock = SystemClock{}
	}
	return &Session{
		ID:     uuid.New(),
		Round:  round,
		Tuning: tuning,
		Arena:  arena,
		Player: agents.NewPlayer(tuning.PlayerStart, tuning.PlayerRadius),
		Ducks:  ducks,
		Integrator: physics.Verlet{
			FrictionAir: tuning.FrictionAir,
			Density:     tuning.Density,
			StepMillis:  tuning.StepMillis,
		},
		clock:  clock,
		sorted: make(map[agents.DuckID]bool, len(ducks)),
	}, nil
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Tick returns the number of steps executed.
func (s *Session) Tick() uint64 { return s.tick }

// Elapsed is the time since the first step; once solved it stays at the
// solving step's value.
func (s *Session) Elapsed() time.Duration {
	switch s.state {
	case StateRunning:
		return s.clock.Now().Sub(s.started)
	case StateSolved:
		return s.finalTime
	}
	return 0
}

// FinalTime returns the frozen solve time, or 0 while unsolved.
func (s *Session) FinalTime() time.Duration {
	if s.state != StateSolved {
		return 0
	}
	return s.finalTime
}

func (s *Session) params() physics.Params {
	return physics.Params{
		ComfortRadius: s.Tuning.ComfortRadius,
		ComfortForce:  s.Tuning.ComfortForce,
		GroupingForce: s.Tuning.GroupingForce,
		FearRadius:    s.Tuning.FearRadius,
		FearForce:     s.Tuning.FearForce,
		BoundsForce:   s.Tuning.BoundsForce,
	}
}

// Step advances the round by one fixed step toward target: the player
// tracks the target, forces accumulate, the integrator moves the ducks and
// the evaluator inspects the result. A solved session no longer changes.
func (s *Session) Step(target vec.Vec2) StepResult {
	if s.state == StateSolved {
		return StepResult{Snapshot: s.Snapshot()}
	}
	if s.state == StateCreated {
		s.state = StateRunning
		s.started = s.clock.Now()
	}
	s.tick++

	s.Player.Track(target, s.Tuning.LerpSpeed)
	physics.Apply(s.Ducks, s.Player, s.Arena, s.params())
	s.Integrator.Integrate(s.Ducks)

	res := sorting.Evaluate(s.Ducks, s.Round.NumGroups, s.Round.DucksPerGroup, s.Tuning.SortingRadius)
	s.sorted = res.Sorted

	justSolved := false
	if res.Solved {
		s.finalTime = s.clock.Now().Sub(s.started)
		s.state = StateSolved
		justSolved = true
		slog.Info("round solved",
			"round", s.ID,
			"seed", s.Round.Seed,
			"tick", s.tick,
			"time", s.finalTime.Round(time.Millisecond),
		)
	}
	return StepResult{Snapshot: s.Snapshot(), JustSolved: justSolved}
}

// DuckView is a duck as seen from outside the session.
type DuckView struct {
	ID       agents.DuckID `json:"id"`
	GroupID  int           `json:"group_id"`
	Color    world.Color   `json:"color"`
	Radius   float64       `json:"radius"`
	Position vec.Vec2      `json:"position"`
	Sorted   bool          `json:"sorted"`
}

// Snapshot is a deep copy of a session's observable state.
type Snapshot struct {
	RoundID       string        `json:"round_id"`
	Seed          int64         `json:"seed"`
	NumGroups     int           `json:"num_groups"`
	DucksPerGroup int           `json:"ducks_per_group"`
	Tuning        string        `json:"tuning"`
	State         string        `json:"state"`
	Tick          uint64        `json:"tick"`
	Elapsed       float64       `json:"elapsed"` // seconds
	Solved        bool          `json:"solved"`
	FinalTime     float64       `json:"final_time"` // seconds, 0 until solved
	Arena         world.Arena   `json:"arena"`
	Player        agents.Player `json:"player"`
	Ducks         []DuckView    `json:"ducks"`
}

// Snapshot copies the session's current state.
func (s *Session) Snapshot() Snapshot {
	ducks := make([]DuckView, len(s.Ducks))
	for i, d := range s.Ducks {
		ducks[i] = DuckView{
			ID:       d.ID,
			GroupID:  d.GroupID,
			Color:    d.Color,
			Radius:   d.Radius,
			Position: d.Position,
			Sorted:   s.sorted[d.ID],
		}
	}
	return Snapshot{
		RoundID:       s.ID.String(),
		Seed:          s.Round.Seed,
		NumGroups:     s.Round.NumGroups,
		DucksPerGroup: s.Round.DucksPerGroup,
		Tuning:        s.Tuning.Name,
		State:         s.state.String(),
		Tick:          s.tick,
		Elapsed:       s.Elapsed().Seconds(),
		Solved:        s.state == StateSolved,
		FinalTime:     s.FinalTime().Seconds(),
		Arena:         s.Arena,
		Player:        *s.Player,
		Ducks:         ducks,
	}
}
