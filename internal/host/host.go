// Package host provides an in-process reference implementation of the
// simulation host contract: per-tick agent control, bounded viewport and
// ray queries, world-mutating actions, and event notification. The demo
// binary and integration-style tests run against it; a production agent
// would be wired to an external host instead.
package host

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/gridscout/internal/route"
	"github.com/talgya/gridscout/internal/world"
)

// Host action errors.
var (
	ErrNotEnoughEnergy = errors.New("not enough energy")
	ErrOutOfBounds     = errors.New("target outside the world")
	ErrImpassable      = errors.New("terrain impassable")
	ErrBackpackFull    = errors.New("backpack full")
	ErrBackpackEmpty   = errors.New("not enough content in backpack")
	ErrNoContent       = errors.New("nothing on target tile")
)

// Per-action energy prices.
const (
	destroyEnergyCost  = 1
	putEnergyCost      = 1
	discoverEnergyCost = 3 // Per revealed tile
)

// maxEvents bounds the host's event log; oldest entries drop first.
const maxEvents = 64

// Event is a notable occurrence reported by the host.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "move", "put", "destroy", "discover"
}

// Config holds host parameters.
type Config struct {
	Gen         GenConfig
	StartEnergy int
	MaxEnergy   int
	Recharge    int // Energy regained per tick
	BackpackCap int // Total items carried
}

// DefaultConfig returns a playable host configuration.
func DefaultConfig() Config {
	return Config{
		Gen:         DefaultGenConfig(),
		StartEnergy: 100,
		MaxEnergy:   100,
		Recharge:    2,
		BackpackCap: 20,
	}
}

// Host owns the ground-truth world and the single agent in it.
type Host struct {
	SessionID uuid.UUID

	grid       [][]world.Tile
	discovered [][]bool

	pos         world.Coord
	energy      int
	maxEnergy   int
	recharge    int
	backpack    map[world.Content]int
	backpackCap int

	tick    uint64
	events  []Event
	onEvent func(Event)
}

// New generates a world from the config and places the agent on the
// first walkable tile.
func New(cfg Config) *Host {
	grid := Generate(cfg.Gen)
	discovered := make([][]bool, len(grid))
	for r := range discovered {
		discovered[r] = make([]bool, len(grid[r]))
	}

	h := &Host{
		SessionID:   uuid.New(),
		grid:        grid,
		discovered:  discovered,
		energy:      cfg.StartEnergy,
		maxEnergy:   cfg.MaxEnergy,
		recharge:    cfg.Recharge,
		backpack:    make(map[world.Content]int),
		backpackCap: cfg.BackpackCap,
	}
	h.pos = h.findStart()
	h.markDiscovered(h.pos)
	return h
}

// findStart returns the first traversable coordinate, row-major.
func (h *Host) findStart() world.Coord {
	for r := range h.grid {
		for c := range h.grid[r] {
			if _, ok := route.EdgeCost(h.grid[r][c].Terrain); ok {
				return world.Coord{Row: r, Col: c}
			}
		}
	}
	return world.Coord{}
}

// Rows returns the world height.
func (h *Host) Rows() int { return len(h.grid) }

// Cols returns the world width.
func (h *Host) Cols() int {
	if len(h.grid) == 0 {
		return 0
	}
	return len(h.grid[0])
}

// AgentPosition returns the agent's current coordinate.
func (h *Host) AgentPosition() world.Coord { return h.pos }

// Energy returns the agent's current energy.
func (h *Host) Energy() int { return h.energy }

// Tick returns the current simulation tick.
func (h *Host) Tick() uint64 { return h.tick }

// BackpackCount returns how many of the content the agent carries.
func (h *Host) BackpackCount(c world.Content) int { return h.backpack[c] }

// GrantContent adds items to the backpack directly, up to capacity.
// Demo convenience for seeding the agent with supplies.
func (h *Host) GrantContent(c world.Content, n int) int {
	space := h.backpackCap - h.backpackTotal()
	if n > space {
		n = space
	}
	if n > 0 {
		h.backpack[c] += n
	}
	return n
}

// SetTile overwrites a ground-truth tile. Demo convenience for staging
// scenarios; reports false if the coordinate is off-world.
func (h *Host) SetTile(c world.Coord, t world.Tile) bool {
	if !h.inBounds(c) {
		return false
	}
	h.grid[c.Row][c.Col] = t
	return true
}

// InBounds reports whether the coordinate is inside the world.
func (h *Host) InBounds(c world.Coord) bool { return h.inBounds(c) }

func (h *Host) backpackTotal() int {
	total := 0
	for _, n := range h.backpack {
		total += n
	}
	return total
}

// OnEvent registers the event-notification callback.
func (h *Host) OnEvent(fn func(Event)) { h.onEvent = fn }

// Events returns the bounded event log, oldest first.
func (h *Host) Events() []Event {
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

// AdvanceTick moves the simulation forward one tick, recharging energy.
func (h *Host) AdvanceTick() {
	h.tick++
	h.energy += h.recharge
	if h.energy > h.maxEnergy {
		h.energy = h.maxEnergy
	}
}

func (h *Host) inBounds(c world.Coord) bool {
	return c.Row >= 0 && c.Row < h.Rows() && c.Col >= 0 && c.Col < h.Cols()
}

func (h *Host) markDiscovered(c world.Coord) {
	if h.inBounds(c) {
		h.discovered[c.Row][c.Col] = true
	}
}

func (h *Host) emit(category, format string, args ...any) {
	ev := Event{Tick: h.tick, Description: fmt.Sprintf(format, args...), Category: category}
	h.events = append(h.events, ev)
	if len(h.events) > maxEvents {
		h.events = h.events[len(h.events)-maxEvents:]
	}
	if h.onEvent != nil {
		h.onEvent(ev)
	}
}

// ── View queries ─────────────────────────────────────────────────────

// LocalViewport returns the 3x3 window of tiles centered on the agent.
// Off-world entries are nil. Revealed tiles count as discovered.
func (h *Host) LocalViewport() [][]*world.Tile {
	out := make([][]*world.Tile, 3)
	for i := 0; i < 3; i++ {
		out[i] = make([]*world.Tile, 3)
		for j := 0; j < 3; j++ {
			c := world.Coord{Row: h.pos.Row - 1 + i, Col: h.pos.Col - 1 + j}
			if !h.inBounds(c) {
				continue
			}
			t := h.grid[c.Row][c.Col]
			out[i][j] = &t
			h.markDiscovered(c)
		}
	}
	return out
}

// DirectionalView returns a band of tiles along a ray: for Up and Down,
// distance rows of up to 3 columns; for Left and Right, up to 3 rows of
// distance columns. The band starts adjacent to the agent, is clamped at
// world edges, and costs distance energy beyond the free local range.
func (h *Host) DirectionalView(d world.Direction, distance int) ([][]world.Tile, error) {
	if distance <= 0 {
		return nil, fmt.Errorf("directional view distance %d: %w", distance, ErrOutOfBounds)
	}
	if distance > 1 {
		if h.energy < distance {
			return nil, ErrNotEnoughEnergy
		}
		h.energy -= distance
	}

	colLo, colHi := h.pos.Col-1, h.pos.Col+1
	if colLo < 0 {
		colLo = 0
	}
	if colHi > h.Cols()-1 {
		colHi = h.Cols() - 1
	}
	rowLo, rowHi := h.pos.Row-1, h.pos.Row+1
	if rowLo < 0 {
		rowLo = 0
	}
	if rowHi > h.Rows()-1 {
		rowHi = h.Rows() - 1
	}

	var band [][]world.Tile
	switch d {
	case world.Up:
		for i := 0; i < distance; i++ {
			r := h.pos.Row - 1 - i
			if r < 0 {
				break
			}
			band = append(band, h.rowSlice(r, colLo, colHi))
		}
	case world.Down:
		for i := 0; i < distance; i++ {
			r := h.pos.Row + 1 + i
			if r >= h.Rows() {
				break
			}
			band = append(band, h.rowSlice(r, colLo, colHi))
		}
	case world.Left:
		for r := rowLo; r <= rowHi; r++ {
			var row []world.Tile
			for j := 0; j < distance; j++ {
				c := h.pos.Col - 1 - j
				if c < 0 {
					break
				}
				row = append(row, h.grid[r][c])
				h.markDiscovered(world.Coord{Row: r, Col: c})
			}
			band = append(band, row)
		}
	case world.Right:
		for r := rowLo; r <= rowHi; r++ {
			var row []world.Tile
			for j := 0; j < distance; j++ {
				c := h.pos.Col + 1 + j
				if c >= h.Cols() {
					break
				}
				row = append(row, h.grid[r][c])
				h.markDiscovered(world.Coord{Row: r, Col: c})
			}
			band = append(band, row)
		}
	}
	return band, nil
}

func (h *Host) rowSlice(r, colLo, colHi int) []world.Tile {
	row := make([]world.Tile, 0, colHi-colLo+1)
	for c := colLo; c <= colHi; c++ {
		row = append(row, h.grid[r][c])
		h.markDiscovered(world.Coord{Row: r, Col: c})
	}
	return row
}

// DiscoveredGrid returns the best-effort full grid: tiles the agent has
// revealed at some point, nil elsewhere.
func (h *Host) DiscoveredGrid() [][]*world.Tile {
	out := make([][]*world.Tile, h.Rows())
	for r := range out {
		out[r] = make([]*world.Tile, h.Cols())
		for c := range out[r] {
			if h.discovered[r][c] {
				t := h.grid[r][c]
				out[r][c] = &t
			}
		}
	}
	return out
}

// Discover reveals the named tiles at a per-tile energy price.
func (h *Host) Discover(coords []world.Coord) (map[world.Coord]*world.Tile, error) {
	price := len(coords) * discoverEnergyCost
	if h.energy < price {
		return nil, ErrNotEnoughEnergy
	}
	h.energy -= price

	found := make(map[world.Coord]*world.Tile, len(coords))
	for _, c := range coords {
		if !h.inBounds(c) {
			found[c] = nil
			continue
		}
		t := h.grid[c.Row][c.Col]
		found[c] = &t
		h.markDiscovered(c)
	}
	h.emit("discover", "revealed %d tiles", len(found))
	return found, nil
}

// ── Actions ──────────────────────────────────────────────────────────

// FacingTile returns the tile one step in the given direction.
func (h *Host) FacingTile(d world.Direction) (world.Tile, bool) {
	c := h.pos.Neighbor(d)
	if !h.inBounds(c) {
		return world.Tile{}, false
	}
	return h.grid[c.Row][c.Col], true
}

// Move steps the agent one tile, charging the terrain's energy cost.
func (h *Host) Move(d world.Direction) error {
	target := h.pos.Neighbor(d)
	if !h.inBounds(target) {
		return ErrOutOfBounds
	}
	cost, ok := route.EdgeCost(h.grid[target.Row][target.Col].Terrain)
	if !ok {
		return ErrImpassable
	}
	if h.energy < cost.Energy {
		return ErrNotEnoughEnergy
	}
	h.energy -= cost.Energy
	h.pos = target
	h.markDiscovered(target)
	h.emit("move", "moved %s to %s", world.DirectionName(d), target)
	return nil
}

// Put deposits content from the backpack onto the facing tile and
// returns the quantity consumed. Water onto fire extinguishes it; rock
// onto open terrain paves a street; garbage into a bin and goods into a
// market are absorbed.
func (h *Host) Put(content world.Content, quantity int, d world.Direction) (int, error) {
	target := h.pos.Neighbor(d)
	if !h.inBounds(target) {
		return 0, ErrOutOfBounds
	}
	if h.backpack[content] < quantity {
		return 0, ErrBackpackEmpty
	}
	if h.energy < putEnergyCost {
		return 0, ErrNotEnoughEnergy
	}

	tile := &h.grid[target.Row][target.Col]
	used := 0
	switch {
	case tile.Content == world.ContentFire && content == world.ContentWater:
		tile.Content = world.ContentNone
		tile.ContentAmount = 0
		used = 1
		h.emit("put", "extinguished fire at %s", target)
	case tile.Content == world.ContentBin && content == world.ContentGarbage:
		used = quantity
		h.emit("put", "discarded %d garbage at %s", used, target)
	case tile.Content == world.ContentMarket:
		used = quantity
		h.backpack[world.ContentCoin] += used
		h.emit("put", "sold %d %s at %s", used, world.ContentName(content), target)
	case content == world.ContentRock && tile.Content == world.ContentNone && tile.Terrain != world.TerrainStreet:
		if _, ok := route.EdgeCost(tile.Terrain); !ok {
			return 0, ErrImpassable
		}
		tile.Terrain = world.TerrainStreet
		used = 1
		h.emit("put", "paved street at %s", target)
	default:
		return 0, fmt.Errorf("cannot put %s onto %s", world.ContentName(content), tile)
	}

	h.energy -= putEnergyCost
	h.backpack[content] -= used
	if h.backpack[content] <= 0 {
		delete(h.backpack, content)
	}
	return used, nil
}

// Destroy harvests the facing tile's content into the backpack and
// returns the quantity collected.
func (h *Host) Destroy(d world.Direction) (int, error) {
	target := h.pos.Neighbor(d)
	if !h.inBounds(target) {
		return 0, ErrOutOfBounds
	}
	tile := &h.grid[target.Row][target.Col]
	if tile.Content == world.ContentNone {
		return 0, ErrNoContent
	}
	if h.energy < destroyEnergyCost {
		return 0, ErrNotEnoughEnergy
	}

	got := tile.ContentAmount
	if got == 0 {
		got = 1
	}
	space := h.backpackCap - h.backpackTotal()
	if space <= 0 {
		return 0, ErrBackpackFull
	}
	if got > space {
		got = space
	}

	h.energy -= destroyEnergyCost
	h.backpack[tile.Content] += got
	slog.Debug("destroyed content",
		"content", world.ContentName(tile.Content),
		"amount", got,
		"at", target,
	)
	h.emit("destroy", "collected %d %s at %s", got, world.ContentName(tile.Content), target)
	tile.Content = world.ContentNone
	tile.ContentAmount = 0
	return got, nil
}
