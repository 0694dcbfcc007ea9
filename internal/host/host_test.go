package host

import (
	"errors"
	"testing"

	"github.com/talgya/gridscout/internal/route"
	"github.com/talgya/gridscout/internal/world"
)

func testHost(t *testing.T) *Host {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Gen = SmallTestConfig()
	return New(cfg)
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	a := Generate(SmallTestConfig())
	b := Generate(SmallTestConfig())
	for r := range a {
		for c := range a[r] {
			if a[r][c] != b[r][c] {
				t.Fatalf("cell (%d,%d) differs between identical seeds: %v vs %v", r, c, a[r][c], b[r][c])
			}
		}
	}

	other := SmallTestConfig()
	other.Seed = 43
	o := Generate(other)
	same := true
	for r := range a {
		for c := range a[r] {
			if a[r][c] != o[r][c] {
				same = false
			}
		}
	}
	if same {
		t.Fatal("different seeds produced identical worlds")
	}
}

func TestGenerateDimensions(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Rows, cfg.Cols = 5, 9
	grid := Generate(cfg)
	if len(grid) != 5 || len(grid[0]) != 9 {
		t.Fatalf("grid is %dx%d, want 5x9", len(grid), len(grid[0]))
	}
}

func TestNewPlacesAgentOnTraversableTile(t *testing.T) {
	h := testHost(t)
	pos := h.AgentPosition()
	if _, ok := route.EdgeCost(h.grid[pos.Row][pos.Col].Terrain); !ok {
		t.Fatalf("agent starts on impassable terrain at %s", pos)
	}
	grid := h.DiscoveredGrid()
	if grid[pos.Row][pos.Col] == nil {
		t.Fatal("starting tile not marked discovered")
	}
}

func TestLocalViewportShapeAndDiscovery(t *testing.T) {
	h := testHost(t)
	window := h.LocalViewport()
	if len(window) != 3 || len(window[0]) != 3 {
		t.Fatalf("viewport is %dx%d, want 3x3", len(window), len(window[0]))
	}

	pos := h.AgentPosition()
	center := window[1][1]
	if center == nil || *center != h.grid[pos.Row][pos.Col] {
		t.Fatalf("viewport center does not match agent tile")
	}

	// Every non-nil window entry is now discovered.
	grid := h.DiscoveredGrid()
	for i := range window {
		for j := range window[i] {
			if window[i][j] == nil {
				continue
			}
			c := world.Coord{Row: pos.Row - 1 + i, Col: pos.Col - 1 + j}
			if grid[c.Row][c.Col] == nil {
				t.Fatalf("viewed cell %s not marked discovered", c)
			}
		}
	}
}

func TestDirectionalViewChargesEnergy(t *testing.T) {
	h := testHost(t)
	before := h.Energy()

	// Distance 1 hugs the free local range.
	if _, err := h.DirectionalView(world.Down, 1); err != nil {
		t.Fatalf("short ray: %v", err)
	}
	if h.Energy() != before {
		t.Fatalf("short ray charged energy: %d -> %d", before, h.Energy())
	}

	if _, err := h.DirectionalView(world.Down, 4); err != nil {
		t.Fatalf("long ray: %v", err)
	}
	if h.Energy() != before-4 {
		t.Fatalf("long ray charged %d, want 4", before-h.Energy())
	}

	h.energy = 2
	if _, err := h.DirectionalView(world.Down, 3); !errors.Is(err, ErrNotEnoughEnergy) {
		t.Fatalf("underfunded ray: got %v, want ErrNotEnoughEnergy", err)
	}

	if _, err := h.DirectionalView(world.Down, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("zero distance: got %v, want ErrOutOfBounds", err)
	}
}

func TestDirectionalViewBandShapes(t *testing.T) {
	h := testHost(t)
	// Park the agent mid-grid so nothing clamps.
	h.pos = world.Coord{Row: 4, Col: 4}

	down, err := h.DirectionalView(world.Down, 2)
	if err != nil {
		t.Fatalf("down: %v", err)
	}
	if len(down) != 2 || len(down[0]) != 3 {
		t.Fatalf("down band is %dx%d, want 2x3", len(down), len(down[0]))
	}
	if down[0][1] != h.grid[5][4] {
		t.Fatal("down band row 0 center mismatch")
	}

	right, err := h.DirectionalView(world.Right, 2)
	if err != nil {
		t.Fatalf("right: %v", err)
	}
	if len(right) != 3 || len(right[0]) != 2 {
		t.Fatalf("right band is %dx%d, want 3x2", len(right), len(right[0]))
	}
	if right[1][0] != h.grid[4][5] {
		t.Fatal("right band center row mismatch")
	}

	// Rays clamp at the world edge instead of failing.
	h.pos = world.Coord{Row: 1, Col: 1}
	up, err := h.DirectionalView(world.Up, 5)
	if err != nil {
		t.Fatalf("clamped up: %v", err)
	}
	if len(up) != 1 {
		t.Fatalf("clamped up band has %d rows, want 1", len(up))
	}
}

func TestDiscoverChargesPerTile(t *testing.T) {
	h := testHost(t)
	before := h.Energy()

	coords := []world.Coord{{Row: 7, Col: 7}, {Row: 6, Col: 6}, {Row: 9, Col: 9}}
	found, err := h.Discover(coords)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if h.Energy() != before-3*discoverEnergyCost {
		t.Fatalf("discover charged %d, want %d", before-h.Energy(), 3*discoverEnergyCost)
	}
	if found[world.Coord{Row: 9, Col: 9}] != nil {
		t.Fatal("out-of-world coordinate must resolve to nil")
	}
	if found[world.Coord{Row: 7, Col: 7}] == nil {
		t.Fatal("in-world coordinate not revealed")
	}

	h.energy = 1
	if _, err := h.Discover(coords); !errors.Is(err, ErrNotEnoughEnergy) {
		t.Fatalf("underfunded discover: got %v", err)
	}
}

func TestMoveAccounting(t *testing.T) {
	h := testHost(t)
	h.grid[3][3] = world.Tile{Terrain: world.TerrainGrass}
	h.grid[3][4] = world.Tile{Terrain: world.TerrainShallowWater}
	h.grid[4][3] = world.Tile{Terrain: world.TerrainWall}
	h.pos = world.Coord{Row: 3, Col: 3}
	h.energy = 10

	if err := h.Move(world.Right); err != nil {
		t.Fatalf("move: %v", err)
	}
	if h.AgentPosition() != (world.Coord{Row: 3, Col: 4}) {
		t.Fatalf("agent at %s after moving right", h.AgentPosition())
	}
	if h.Energy() != 8 {
		t.Fatalf("energy %d after shallow water, want 8", h.Energy())
	}

	h.pos = world.Coord{Row: 3, Col: 3}
	if err := h.Move(world.Down); !errors.Is(err, ErrImpassable) {
		t.Fatalf("move into wall: got %v", err)
	}
	if h.AgentPosition() != (world.Coord{Row: 3, Col: 3}) {
		t.Fatal("failed move displaced the agent")
	}

	h.energy = 1
	if err := h.Move(world.Right); !errors.Is(err, ErrNotEnoughEnergy) {
		t.Fatalf("underfunded move: got %v", err)
	}

	h.pos = world.Coord{Row: 0, Col: 0}
	if err := h.Move(world.Up); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("move off-world: got %v", err)
	}
}

func TestDestroyHarvestsIntoBackpack(t *testing.T) {
	h := testHost(t)
	h.grid[3][3] = world.Tile{Terrain: world.TerrainGrass}
	h.grid[2][3] = world.Tile{Terrain: world.TerrainHill, Content: world.ContentRock, ContentAmount: 3}
	h.pos = world.Coord{Row: 3, Col: 3}
	h.energy = 10

	got, err := h.Destroy(world.Up)
	if err != nil || got != 3 {
		t.Fatalf("destroy: got %d, %v", got, err)
	}
	if h.BackpackCount(world.ContentRock) != 3 {
		t.Fatalf("backpack holds %d rocks, want 3", h.BackpackCount(world.ContentRock))
	}
	if h.grid[2][3].Content != world.ContentNone || h.grid[2][3].ContentAmount != 0 {
		t.Fatalf("harvested tile still holds %s", h.grid[2][3].String())
	}

	if _, err := h.Destroy(world.Up); !errors.Is(err, ErrNoContent) {
		t.Fatalf("re-destroy: got %v, want ErrNoContent", err)
	}
}

func TestDestroyClampsToBackpackSpace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gen = SmallTestConfig()
	cfg.BackpackCap = 4
	h := New(cfg)
	h.grid[3][3] = world.Tile{Terrain: world.TerrainGrass}
	h.grid[2][3] = world.Tile{Terrain: world.TerrainHill, Content: world.ContentRock, ContentAmount: 10}
	h.pos = world.Coord{Row: 3, Col: 3}
	h.energy = 10
	h.GrantContent(world.ContentCoin, 3)

	got, err := h.Destroy(world.Up)
	if err != nil || got != 1 {
		t.Fatalf("clamped destroy: got %d, %v", got, err)
	}

	h.GrantContent(world.ContentCoin, 10) // Tops out at capacity
	h.grid[2][3] = world.Tile{Terrain: world.TerrainHill, Content: world.ContentRock, ContentAmount: 1}
	if _, err := h.Destroy(world.Up); !errors.Is(err, ErrBackpackFull) {
		t.Fatalf("full backpack: got %v, want ErrBackpackFull", err)
	}
}

func TestPutExtinguishesFire(t *testing.T) {
	h := testHost(t)
	h.grid[3][3] = world.Tile{Terrain: world.TerrainGrass}
	h.grid[3][4] = world.Tile{Terrain: world.TerrainGrass, Content: world.ContentFire, ContentAmount: 1}
	h.pos = world.Coord{Row: 3, Col: 3}
	h.energy = 10
	h.GrantContent(world.ContentWater, 2)

	used, err := h.Put(world.ContentWater, 1, world.Right)
	if err != nil || used != 1 {
		t.Fatalf("put water: got %d, %v", used, err)
	}
	if h.grid[3][4].Content != world.ContentNone {
		t.Fatal("fire survived the water")
	}
	if h.BackpackCount(world.ContentWater) != 1 {
		t.Fatalf("backpack water %d, want 1", h.BackpackCount(world.ContentWater))
	}
}

func TestPutPavesStreet(t *testing.T) {
	h := testHost(t)
	h.grid[3][3] = world.Tile{Terrain: world.TerrainGrass}
	h.grid[3][4] = world.Tile{Terrain: world.TerrainShallowWater}
	h.pos = world.Coord{Row: 3, Col: 3}
	h.energy = 10
	h.GrantContent(world.ContentRock, 2)

	used, err := h.Put(world.ContentRock, 1, world.Right)
	if err != nil || used != 1 {
		t.Fatalf("pave: got %d, %v", used, err)
	}
	if h.grid[3][4].Terrain != world.TerrainStreet {
		t.Fatalf("terrain is %s after paving", world.TerrainName(h.grid[3][4].Terrain))
	}

	// A street cannot be paved again.
	if _, err := h.Put(world.ContentRock, 1, world.Right); err == nil {
		t.Fatal("re-paving a street must fail")
	}
}

func TestPutMarketSaleYieldsCoins(t *testing.T) {
	h := testHost(t)
	h.grid[3][3] = world.Tile{Terrain: world.TerrainGrass}
	h.grid[3][4] = world.Tile{Terrain: world.TerrainGrass, Content: world.ContentMarket}
	h.pos = world.Coord{Row: 3, Col: 3}
	h.energy = 10
	h.GrantContent(world.ContentRock, 5)

	used, err := h.Put(world.ContentRock, 3, world.Right)
	if err != nil || used != 3 {
		t.Fatalf("sell: got %d, %v", used, err)
	}
	if h.BackpackCount(world.ContentCoin) != 3 {
		t.Fatalf("coins %d after sale, want 3", h.BackpackCount(world.ContentCoin))
	}
	if h.BackpackCount(world.ContentRock) != 2 {
		t.Fatalf("rocks %d after sale, want 2", h.BackpackCount(world.ContentRock))
	}
}

func TestPutRequiresStock(t *testing.T) {
	h := testHost(t)
	h.grid[3][3] = world.Tile{Terrain: world.TerrainGrass}
	h.grid[3][4] = world.Tile{Terrain: world.TerrainGrass, Content: world.ContentBin}
	h.pos = world.Coord{Row: 3, Col: 3}
	h.energy = 10

	if _, err := h.Put(world.ContentGarbage, 1, world.Right); !errors.Is(err, ErrBackpackEmpty) {
		t.Fatalf("put without stock: got %v, want ErrBackpackEmpty", err)
	}
}

func TestAdvanceTickRecharges(t *testing.T) {
	h := testHost(t)
	h.energy = 10
	h.AdvanceTick()
	if h.Energy() != 10+h.recharge {
		t.Fatalf("energy %d after tick, want %d", h.Energy(), 10+h.recharge)
	}
	if h.Tick() != 1 {
		t.Fatalf("tick %d, want 1", h.Tick())
	}

	h.energy = h.maxEnergy
	h.AdvanceTick()
	if h.Energy() != h.maxEnergy {
		t.Fatalf("recharge overshot the cap: %d", h.Energy())
	}
}

func TestEventLogIsBounded(t *testing.T) {
	h := testHost(t)
	var seen int
	h.OnEvent(func(Event) { seen++ })

	for i := 0; i < maxEvents+20; i++ {
		h.emit("move", "step %d", i)
	}
	events := h.Events()
	if len(events) != maxEvents {
		t.Fatalf("event log holds %d entries, want %d", len(events), maxEvents)
	}
	// Oldest entries dropped: the first surviving entry is step 20.
	if events[0].Description != "step 20" {
		t.Fatalf("oldest surviving event is %q", events[0].Description)
	}
	if seen != maxEvents+20 {
		t.Fatalf("callback saw %d events, want %d", seen, maxEvents+20)
	}
}
