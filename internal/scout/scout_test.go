package scout

import (
	"testing"

	"github.com/talgya/gridscout/internal/goals"
	"github.com/talgya/gridscout/internal/host"
	"github.com/talgya/gridscout/internal/view"
	"github.com/talgya/gridscout/internal/world"
)

func testScout(t *testing.T) *Scout {
	t.Helper()
	cfg := host.DefaultConfig()
	cfg.Gen = host.SmallTestConfig()
	return New(host.New(cfg))
}

func TestTickOnceObservesSurroundings(t *testing.T) {
	s := testScout(t)
	if err := s.TickOnce(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if s.View.Observed() == 0 {
		t.Fatal("first tick observed nothing")
	}
	if s.Host.Tick() != 1 {
		t.Fatalf("host tick %d after one cycle", s.Host.Tick())
	}

	// The agent's own cell is always inside the viewport.
	if _, ok := s.View.TileAt(s.Host.AgentPosition()); !ok {
		t.Fatal("agent's own cell not observed")
	}
}

func TestScoutRunsManyTicks(t *testing.T) {
	s := testScout(t)
	s.Goals.Add(goals.NewGoal("rocks", "gather rocks", goals.GoalCollectItems, 3))

	before := s.View.Observed()
	for i := 0; i < 100; i++ {
		if err := s.TickOnce(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if s.View.Observed() < before {
		t.Fatal("observation count went backwards")
	}
	if s.Host.Tick() != 100 {
		t.Fatalf("host tick %d after 100 cycles", s.Host.Tick())
	}
}

func TestObservePinsNotableContents(t *testing.T) {
	s := testScout(t)
	pos := s.Host.AgentPosition()

	// Plant a rock next to the agent so the first observation pins it.
	target := pos.Neighbor(world.Down)
	if !s.Host.InBounds(target) {
		target = pos.Neighbor(world.Up)
	}
	s.Host.SetTile(target, world.Tile{Terrain: world.TerrainHill, Content: world.ContentRock, ContentAmount: 2})

	if err := s.observe(); err != nil {
		t.Fatalf("observe: %v", err)
	}
	coords, err := s.View.SearchPin(view.ContentMarker(world.ContentRock))
	if err != nil {
		t.Fatalf("search rock pins: %v", err)
	}
	found := false
	for _, c := range coords {
		if c == target {
			found = true
		}
	}
	if !found {
		t.Fatalf("rock at %s not pinned; pinned %v", target, coords)
	}

	// A second observation of the same cell tolerates the existing pin.
	if err := s.observe(); err != nil {
		t.Fatalf("re-observe: %v", err)
	}
}

func TestScoutHarvestsAdjacentDeposit(t *testing.T) {
	s := testScout(t)
	s.Goals.Add(goals.NewGoal("rocks", "", goals.GoalCollectItems, 1))
	pos := s.Host.AgentPosition()

	target := pos.Neighbor(world.Down)
	if !s.Host.InBounds(target) {
		target = pos.Neighbor(world.Up)
	}
	s.Host.SetTile(target, world.Tile{Terrain: world.TerrainHill, Content: world.ContentRock, ContentAmount: 2})

	// Within a few ticks the scout should pin, reach, and harvest it.
	for i := 0; i < 10 && s.Host.BackpackCount(world.ContentRock) == 0; i++ {
		if err := s.TickOnce(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if s.Host.BackpackCount(world.ContentRock) == 0 {
		t.Fatal("scout never harvested the adjacent deposit")
	}
	if !s.Goals.Goals()[0].Completed {
		t.Fatal("collect goal not advanced by the harvest")
	}
	// The consumed deposit's pin is cleaned up.
	if coords, err := s.View.SearchPin(view.ContentMarker(world.ContentRock)); err == nil {
		for _, c := range coords {
			if c == target {
				t.Fatal("harvested deposit still pinned")
			}
		}
	}
}

func TestNearestPrefersCloserCoord(t *testing.T) {
	from := world.Coord{Row: 5, Col: 5}
	coords := []world.Coord{
		{Row: 0, Col: 0},
		{Row: 5, Col: 7},
		{Row: 6, Col: 5},
	}
	got, ok := nearest(from, coords, func(world.Coord) bool { return true })
	if !ok || got != (world.Coord{Row: 6, Col: 5}) {
		t.Fatalf("nearest: got %v, %v", got, ok)
	}

	_, ok = nearest(from, coords, func(world.Coord) bool { return false })
	if ok {
		t.Fatal("nearest with empty keep set must report no match")
	}
}
