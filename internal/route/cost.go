// Package route plans minimum-weighted-cost paths over the agent's
// remembered tiles, tracking two depleting resources: movement energy
// and carried construction material.
package route

import (
	"github.com/talgya/gridscout/internal/world"
)

// Cost is the per-traversal price of entering a tile. Material is
// negative when traversal nets material (mining a mountain) and positive
// when it consumes material (paving water). The planner's bookkeeping
// relies on this sign convention.
type Cost struct {
	Energy   int // Non-negative
	Material int
}

// EdgeCost maps a terrain type to its traversal cost. The second return
// is false for non-traversable terrain: no edge, not an error.
func EdgeCost(t world.Terrain) (Cost, bool) {
	switch t {
	case world.TerrainGrass, world.TerrainSand, world.TerrainHill, world.TerrainSnow:
		return Cost{Energy: 1, Material: 1}, true
	case world.TerrainStreet:
		return Cost{Energy: 0, Material: 0}, true
	case world.TerrainShallowWater:
		return Cost{Energy: 2, Material: 2}, true
	case world.TerrainDeepWater:
		return Cost{Energy: 6, Material: 3}, true
	case world.TerrainLava:
		return Cost{Energy: 9, Material: 3}, true
	case world.TerrainMountain:
		return Cost{Energy: 16, Material: -4}, true
	}
	return Cost{}, false
}

// WeightRatio expresses the relative scarcity of energy versus material
// at plan time: energy / (material / divider). Returns 0 when either
// budget is zero, since there is no trade-off with nothing to trade.
//
// The ratio is computed once per planning call from the budgets at plan
// start; it does not adapt as resources deplete along a candidate path.
func WeightRatio(energy, material int, divider float64) float64 {
	if energy <= 0 || material <= 0 {
		return 0
	}
	return float64(energy) / (float64(material) / divider)
}
