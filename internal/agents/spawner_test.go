package agents

import (
	"errors"
	"testing"

	"github.com/talgya/duck-sorter/internal/vec"
	"github.com/talgya/duck-sorter/internal/world"
)

func spawnConfig(seed int64, groups, perGroup int) SpawnConfig {
	return SpawnConfig{
		NumGroups:     groups,
		DucksPerGroup: perGroup,
		Seed:          seed,
		Center:        vec.New(300, 300),
		SpawnRadius:   70,
		DuckRadius:    8,
		Palette:       world.BasePalette,
	}
}

func TestSpawnDeterministic(t *testing.T) {
	for _, seed := range []int64{0, 1, 42, 12345, 20261019, -99} {
		a, err := Spawn(spawnConfig(seed, 4, 3))
		if err != nil {
			t.Fatalf("Spawn(%d): %v", seed, err)
		}
		b, err := Spawn(spawnConfig(seed, 4, 3))
		if err != nil {
			t.Fatalf("Spawn(%d): %v", seed, err)
		}
		for i := range a {
			if a[i].Position != b[i].Position || a[i].Color != b[i].Color || a[i].GroupID != b[i].GroupID {
				t.Fatalf("seed %d duck %d differs: %+v vs %+v", seed, i, a[i], b[i])
			}
		}
	}
}

func TestSpawnPartition(t *testing.T) {
	for groups := 1; groups <= len(world.BasePalette); groups++ {
		for perGroup := 1; perGroup <= 4; perGroup++ {
			ducks, err := Spawn(spawnConfig(7, groups, perGroup))
			if err != nil {
				t.Fatalf("Spawn(%d,%d): %v", groups, perGroup, err)
			}
			if len(ducks) != groups*perGroup {
				t.Fatalf("got %d ducks, want %d", len(ducks), groups*perGroup)
			}
			counts := make(map[int]int)
			colors := make(map[int]world.Color)
			for i, d := range ducks {
				if d.ID != DuckID(i) {
					t.Fatalf("duck %d has id %d", i, d.ID)
				}
				counts[d.GroupID]++
				if c, ok := colors[d.GroupID]; ok && c != d.Color {
					t.Fatalf("group %d has two colours", d.GroupID)
				}
				colors[d.GroupID] = d.Color
			}
			for g := 0; g < groups; g++ {
				if counts[g] != perGroup {
					t.Fatalf("group %d has %d ducks, want %d", g, counts[g], perGroup)
				}
			}
			if len(counts) != groups {
				t.Fatalf("group ids not contiguous: %v", counts)
			}
			seen := make(map[world.Color]bool)
			for _, c := range colors {
				if seen[c] {
					t.Fatalf("colour %s used by two groups", c)
				}
				seen[c] = true
			}
		}
	}
}

func TestSpawnScenarioSeed12345(t *testing.T) {
	cfg := spawnConfig(12345, 3, 4)
	ducks, err := Spawn(cfg)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if len(ducks) != 12 {
		t.Fatalf("got %d ducks, want 12", len(ducks))
	}
	colors := make(map[world.Color]bool)
	for _, d := range ducks {
		colors[d.Color] = true
		if dist := d.Position.Dist(cfg.Center); dist > cfg.SpawnRadius+1e-9 {
			t.Fatalf("duck %d spawned %.3f from centre, want <= %.1f", d.ID, dist, cfg.SpawnRadius)
		}
	}
	if len(colors) != 3 {
		t.Fatalf("got %d colours, want 3", len(colors))
	}
	for c := range colors {
		found := false
		for _, p := range world.BasePalette {
			if p == c {
				found = true
			}
		}
		if !found {
			t.Fatalf("colour %s not from palette", c)
		}
	}
}

func TestSpawnDoesNotMutatePalette(t *testing.T) {
	palette := world.Palette{"#000001", "#000002", "#000003"}
	cfg := spawnConfig(5, 3, 1)
	cfg.Palette = palette
	if _, err := Spawn(cfg); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if palette[0] != "#000001" || palette[1] != "#000002" || palette[2] != "#000003" {
		t.Fatalf("palette mutated: %v", palette)
	}
}

func TestSpawnRejectsBadConfig(t *testing.T) {
	cases := []SpawnConfig{
		spawnConfig(1, 0, 4),
		spawnConfig(1, len(world.BasePalette)+1, 4),
		spawnConfig(1, 3, 0),
		spawnConfig(1, 2, MaxDucksPerGroup+1),
		spawnConfig(1, 2, 1<<62),
	}
	for _, c := range cases {
		ducks, err := Spawn(c)
		if !errors.Is(err, ErrConfig) {
			t.Fatalf("Spawn(%d groups, %d per group) err = %v, want ErrConfig", c.NumGroups, c.DucksPerGroup, err)
		}
		if ducks != nil {
			t.Fatalf("ducks returned alongside config error")
		}
	}

	ducks, err := Spawn(spawnConfig(1, 2, MaxDucksPerGroup))
	if err != nil || len(ducks) != 2*MaxDucksPerGroup {
		t.Fatalf("Spawn at the cap: %d ducks, err %v", len(ducks), err)
	}
}

func TestPlayerTrack(t *testing.T) {
	p := NewPlayer(vec.New(0, 0), 10)
	p.Track(vec.New(100, 50), 0.1)
	if p.Position != vec.New(10, 5) {
		t.Fatalf("position = %v, want (10,5)", p.Position)
	}
	if p.Target != vec.New(100, 50) {
		t.Fatalf("target = %v", p.Target)
	}
	for i := 0; i < 500; i++ {
		p.Track(vec.New(100, 50), 0.1)
	}
	if p.Position.Dist(vec.New(100, 50)) > 1e-6 {
		t.Fatalf("player did not converge: %v", p.Position)
	}
}

func TestCloneDucks(t *testing.T) {
	src := []*Duck{{ID: 1, Position: vec.New(1, 2)}}
	dst := CloneDucks(src)
	dst[0].Position = vec.New(9, 9)
	if src[0].Position != vec.New(1, 2) {
		t.Fatalf("clone shares state with source")
	}
}
