// Resource-aware shortest path over the remembered grid. Dijkstra on
// (coordinate, energy, material) states with non-negative edge weights.
package route

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/talgya/gridscout/internal/world"
)

// Planning failures. All are recoverable: the caller may relax the
// budget, change mode, or observe more of the world and retry.
var (
	ErrUnreachable          = errors.New("target unreachable")
	ErrInsufficientEnergy   = errors.New("insufficient energy")
	ErrInsufficientMaterial = errors.New("insufficient material")
	ErrOutOfRange           = errors.New("coordinate out of range")
)

// Mode selects which depleting resource the planner prioritizes.
type Mode uint8

const (
	EnergySave   Mode = iota // Minimize weighted energy spend
	MaterialSave             // Minimize weighted material spend
	Balanced                 // Minimize the sum of both
)

// ModeName returns a human-readable mode name.
func ModeName(m Mode) string {
	switch m {
	case EnergySave:
		return "energy-save"
	case MaterialSave:
		return "material-save"
	case Balanced:
		return "balanced"
	}
	return "unknown"
}

// DefaultMaterialCap is the carried-material ceiling used when a request
// leaves MaterialCap zero. Matches the host backpack default.
const DefaultMaterialCap = 20

// Request describes one planning call.
type Request struct {
	Start, Target world.Coord
	Energy        int     // Energy budget at plan start
	Material      int     // Carried material at plan start
	MaterialCap   int     // Ceiling for carried material; 0 means DefaultMaterialCap
	Mode          Mode
	Divider       float64 // WeightRatio divider; 0 means 1
}

// Result is a planned route: unit steps from start to target and the
// resource levels on arrival.
type Result struct {
	Steps    []world.Direction
	Path     []world.Coord // Start through target, inclusive
	Energy   int           // Energy remaining on arrival
	Material int           // Material carried on arrival
	Weight   int           // Total weighted cost of the route
}

// state is one search node. Keying on the full tuple keeps paths with
// different resource histories distinct.
type state struct {
	pos      world.Coord
	energy   int
	material int
}

type frontierItem struct {
	st     state
	weight int
	seq    int // Insertion order; breaks weight ties deterministically
}

type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].weight != f[j].weight {
		return f[i].weight < f[j].weight
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)        { *f = append(*f, x.(frontierItem)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	it := old[n-1]
	*f = old[:n-1]
	return it
}

type cameFrom struct {
	prev state
	dir  world.Direction
}

// Plan finds the minimum-weighted-cost route between two known cells.
// An edge into a neighbor exists iff the neighbor's terrain has a cost,
// the remaining energy covers its energy cost, and the material carried
// would not drop below zero; otherwise the neighbor is pruned. Material
// is clamped from above at the cap after each traversal. The search
// terminates the first time the target coordinate leaves the frontier.
//
// Identical requests against unchanged tiles return identical results:
// successors are generated in the fixed order Down, Right, Up, Left and
// equal weights break by insertion order.
func Plan(tiles [][]*world.Tile, req Request) (*Result, error) {
	rows := len(tiles)
	if rows == 0 {
		return nil, fmt.Errorf("plan: empty grid: %w", ErrOutOfRange)
	}
	cols := len(tiles[0])
	inBounds := func(c world.Coord) bool {
		return c.Row >= 0 && c.Row < rows && c.Col >= 0 && c.Col < cols
	}
	if !inBounds(req.Start) {
		return nil, fmt.Errorf("plan: start %s: %w", req.Start, ErrOutOfRange)
	}
	if !inBounds(req.Target) {
		return nil, fmt.Errorf("plan: target %s: %w", req.Target, ErrOutOfRange)
	}
	if req.Energy < 0 {
		return nil, ErrInsufficientEnergy
	}
	if req.Material < 0 {
		return nil, ErrInsufficientMaterial
	}

	matCap := req.MaterialCap
	if matCap <= 0 {
		matCap = DefaultMaterialCap
	}
	divider := req.Divider
	if divider == 0 {
		divider = 1
	}

	// Fast fail: with no energy and no zero-energy edge out of the
	// start, no move is possible at all.
	if req.Energy == 0 && req.Start != req.Target && !hasFreeEdge(tiles, req.Start, inBounds) {
		return nil, ErrInsufficientEnergy
	}

	// One ratio per planning call, from start-of-plan budgets.
	ratio := WeightRatio(req.Energy, req.Material, divider)

	start := state{pos: req.Start, energy: req.Energy, material: req.Material}
	dist := map[state]int{start: 0}
	prev := map[state]cameFrom{}

	f := &frontier{{st: start, weight: 0, seq: 0}}
	heap.Init(f)
	seq := 0

	for f.Len() > 0 {
		cur := heap.Pop(f).(frontierItem)
		if cur.weight > dist[cur.st] {
			continue // Stale entry
		}
		if cur.st.pos == req.Target {
			return reconstruct(cur.st, cur.weight, start, prev), nil
		}

		for _, d := range world.CardinalDirections {
			n := cur.st.pos.Neighbor(d)
			if !inBounds(n) {
				continue
			}
			tile := tiles[n.Row][n.Col]
			if tile == nil {
				continue // Unobserved cells are not traversable
			}
			cost, ok := EdgeCost(tile.Terrain)
			if !ok {
				continue
			}
			if cur.st.energy < cost.Energy {
				continue // Pruned, not erroneous
			}
			material := cur.st.material - cost.Material
			if material < 0 {
				continue // Would overdraw material; no edge
			}
			if material > matCap {
				material = matCap
			}

			next := state{pos: n, energy: cur.st.energy - cost.Energy, material: material}
			w := cur.weight + stepWeight(cost, req.Mode, ratio)
			if best, seen := dist[next]; seen && best <= w {
				continue
			}
			dist[next] = w
			prev[next] = cameFrom{prev: cur.st, dir: d}
			seq++
			heap.Push(f, frontierItem{st: next, weight: w, seq: seq})
		}
	}

	return nil, ErrUnreachable
}

// stepWeight prices one traversal under the chosen mode. Weights are
// clamped at zero: material-netting terrain can push the Balanced sum
// negative, which Dijkstra does not tolerate.
func stepWeight(c Cost, mode Mode, ratio float64) int {
	if ratio == 0 {
		// No trade-off to express; fall back to the raw energy cost.
		return c.Energy
	}
	var w int
	switch mode {
	case EnergySave:
		w = int(math.Round(float64(c.Energy) * ratio))
	case MaterialSave:
		w = int(math.Round(float64(c.Material) / ratio))
	case Balanced:
		w = int(math.Round(float64(c.Energy)*ratio)) + int(math.Round(float64(c.Material)/ratio))
	}
	if w < 0 {
		w = 0
	}
	return w
}

func hasFreeEdge(tiles [][]*world.Tile, from world.Coord, inBounds func(world.Coord) bool) bool {
	for _, d := range world.CardinalDirections {
		n := from.Neighbor(d)
		if !inBounds(n) || tiles[n.Row][n.Col] == nil {
			continue
		}
		if cost, ok := EdgeCost(tiles[n.Row][n.Col].Terrain); ok && cost.Energy == 0 {
			return true
		}
	}
	return false
}

func reconstruct(end state, weight int, start state, prev map[state]cameFrom) *Result {
	var steps []world.Direction
	var path []world.Coord
	cur := end
	for cur != start {
		from := prev[cur]
		steps = append(steps, from.dir)
		path = append(path, cur.pos)
		cur = from.prev
	}
	path = append(path, start.pos)

	// Reverse into start→target order.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return &Result{
		Steps:    steps,
		Path:     path,
		Energy:   end.energy,
		Material: end.material,
		Weight:   weight,
	}
}
