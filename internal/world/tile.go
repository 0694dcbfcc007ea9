// Package world provides the grid coordinate, terrain, and tile primitives
// shared by the view and route packages.
// The grid uses (row, col) coordinates with row 0 at the top.
package world

import "fmt"

// Coord represents a position on the grid.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String returns the coordinate as "(row,col)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Direction is one of the four cardinal moves.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// DirectionName returns a human-readable name for a direction.
func DirectionName(d Direction) string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Opposite returns the reverse of a direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	}
	return Left
}

// Delta returns the (row, col) offset of one step in the direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	}
	return 0, 1
}

// Neighbor returns the coordinate one step in the given direction.
// The result may be out of bounds; callers check against grid dimensions.
func (c Coord) Neighbor(d Direction) Coord {
	dr, dc := d.Delta()
	return Coord{Row: c.Row + dr, Col: c.Col + dc}
}

// CardinalDirections lists the four moves in the fixed successor order
// used by the planner: Down, Right, Up, Left.
var CardinalDirections = [4]Direction{Down, Right, Up, Left}

// Terrain types for grid tiles.
type Terrain uint8

const (
	TerrainDeepWater    Terrain = iota // Crossable at high energy cost
	TerrainShallowWater                // Crossable, moderate cost
	TerrainSand                        // Open ground
	TerrainGrass                       // Open ground
	TerrainStreet                      // Paved, free traversal
	TerrainHill                        // Open ground
	TerrainMountain                    // Expensive, but traversal nets rock
	TerrainSnow                        // Open ground
	TerrainLava                        // Crossable at extreme cost
	TerrainWall                        // Impassable
)

// TerrainName returns a human-readable terrain name.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainDeepWater:
		return "deep water"
	case TerrainShallowWater:
		return "shallow water"
	case TerrainSand:
		return "sand"
	case TerrainGrass:
		return "grass"
	case TerrainStreet:
		return "street"
	case TerrainHill:
		return "hill"
	case TerrainMountain:
		return "mountain"
	case TerrainSnow:
		return "snow"
	case TerrainLava:
		return "lava"
	case TerrainWall:
		return "wall"
	}
	return "unknown"
}

// Content enumerates what a tile can hold on top of its terrain.
type Content uint8

const (
	ContentNone Content = iota
	ContentRock
	ContentTree
	ContentGarbage
	ContentFire
	ContentCoin
	ContentBin
	ContentCrate
	ContentBank
	ContentMarket
	ContentFish
	ContentBush
	ContentWater
)

// ContentName returns a human-readable content name.
func ContentName(c Content) string {
	switch c {
	case ContentNone:
		return "none"
	case ContentRock:
		return "rock"
	case ContentTree:
		return "tree"
	case ContentGarbage:
		return "garbage"
	case ContentFire:
		return "fire"
	case ContentCoin:
		return "coin"
	case ContentBin:
		return "bin"
	case ContentCrate:
		return "crate"
	case ContentBank:
		return "bank"
	case ContentMarket:
		return "market"
	case ContentFish:
		return "fish"
	case ContentBush:
		return "bush"
	case ContentWater:
		return "water"
	}
	return "unknown"
}

// Tile is one observed grid square. Tiles are immutable values: a
// re-observation replaces the whole tile, never patches fields.
type Tile struct {
	Terrain       Terrain `json:"terrain"`
	Content       Content `json:"content"`
	ContentAmount int     `json:"content_amount"` // Quantity for stackable contents (rocks, coins, ...)
	Elevation     int     `json:"elevation"`
}

// String returns a summary of the tile.
func (t Tile) String() string {
	if t.Content == ContentNone {
		return TerrainName(t.Terrain)
	}
	return fmt.Sprintf("%s[%s:%d]", TerrainName(t.Terrain), ContentName(t.Content), t.ContentAmount)
}
