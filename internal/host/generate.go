// World generation using layered simplex noise. Generates elevation,
// rainfall, and temperature fields, then derives terrain and scattered
// contents. Deterministic for a given seed.
package host

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/gridscout/internal/world"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Rows, Cols  int
	Seed        int64   // 0 = random
	SeaLevel    float64 // Elevation threshold for water (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Rows:        32,
		Cols:        32,
		Seed:        0,
		SeaLevel:    0.28,
		MountainLvl: 0.72,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Rows:        8,
		Cols:        8,
		Seed:        42,
		SeaLevel:    0.20,
		MountainLvl: 0.80,
	}
}

// Generate creates a complete grid of tiles.
func Generate(cfg GenConfig) [][]world.Tile {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent noise layers.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)
	rng := rand.New(rand.NewSource(seed + 3))

	grid := make([][]world.Tile, cfg.Rows)
	for r := range grid {
		grid[r] = make([]world.Tile, cfg.Cols)
		for c := range grid[r] {
			x := float64(c)
			y := float64(r)

			elev := octaveNoise(elevNoise, x, y, 4, 0.09, 0.5)
			rain := octaveNoise(rainNoise, x, y, 3, 0.06, 0.5)
			temp := octaveNoise(tempNoise, x, y, 3, 0.05, 0.5)

			// Cooler at elevation.
			temp = temp*0.7 + (1.0-elev)*0.3

			terrain := deriveTerrain(elev, rain, temp, cfg)
			grid[r][c] = world.Tile{
				Terrain:       terrain,
				Content:       deriveContent(terrain, rain, rng),
				ContentAmount: 0,
				Elevation:     int(elev * 100),
			}
			if grid[r][c].Content != world.ContentNone {
				grid[r][c].ContentAmount = 1 + rng.Intn(3)
			}
		}
	}

	return grid
}

func deriveTerrain(elev, rain, temp float64, cfg GenConfig) world.Terrain {
	switch {
	case elev < cfg.SeaLevel*0.6:
		return world.TerrainDeepWater
	case elev < cfg.SeaLevel:
		return world.TerrainShallowWater
	case elev > cfg.MountainLvl && temp > 0.85:
		return world.TerrainLava
	case elev > cfg.MountainLvl && temp < 0.30:
		return world.TerrainSnow
	case elev > cfg.MountainLvl:
		return world.TerrainMountain
	case elev > cfg.MountainLvl-0.12:
		return world.TerrainHill
	case rain < 0.25:
		return world.TerrainSand
	default:
		return world.TerrainGrass
	}
}

func deriveContent(t world.Terrain, rain float64, rng *rand.Rand) world.Content {
	roll := rng.Float64()
	switch t {
	case world.TerrainMountain, world.TerrainHill:
		if roll < 0.30 {
			return world.ContentRock
		}
	case world.TerrainGrass:
		switch {
		case rain > 0.55 && roll < 0.25:
			return world.ContentTree
		case roll < 0.30:
			return world.ContentBush
		case roll < 0.34:
			return world.ContentGarbage
		case roll < 0.37:
			return world.ContentCoin
		case roll < 0.385:
			return world.ContentFire
		case roll < 0.40:
			return world.ContentMarket
		case roll < 0.41:
			return world.ContentBin
		case roll < 0.42:
			return world.ContentBank
		}
	case world.TerrainShallowWater:
		if roll < 0.20 {
			return world.ContentFish
		}
	}
	return world.ContentNone
}

// octaveNoise samples layered noise at decreasing amplitude.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}

	if maxValue == 0 {
		return 0
	}
	return math.Min(math.Max(total/maxValue, 0), 1)
}
