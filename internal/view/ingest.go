// Ingest translates host-relative viewport and ray queries into absolute
// grid observations and pushes them into the view. Host errors propagate
// unchanged; the view never retries a host call.
package view

import (
	"github.com/talgya/gridscout/internal/world"
)

// Source is the slice of the host collaborator the ingest layer consumes.
// LocalViewport returns a 3x3 window of optional tiles centered on the
// agent. DirectionalView returns a band of tiles along a ray: for Up and
// Down the band is distance rows of up to 3 columns; for Left and Right
// it is up to 3 rows of distance columns. DiscoveredGrid is the host's
// best-effort full grid of optional tiles, used only by resync.
type Source interface {
	AgentPosition() world.Coord
	LocalViewport() [][]*world.Tile
	DirectionalView(d world.Direction, distance int) ([][]world.Tile, error)
	DiscoveredGrid() [][]*world.Tile
}

// Discoverer is the optional host capability to reveal arbitrary tiles.
type Discoverer interface {
	Discover(coords []world.Coord) (map[world.Coord]*world.Tile, error)
}

// IngestViewport pulls the 3x3 viewport around the agent, normalizes it
// to absolute coordinates, and applies it to the view. Returns the
// applied observations.
func IngestViewport(src Source, v *View) ([]Observation, error) {
	pos := src.AgentPosition()
	window := src.LocalViewport()

	var obs []Observation
	for i, row := range window {
		for j, tile := range row {
			if tile == nil {
				continue
			}
			c := world.Coord{Row: pos.Row - 1 + i, Col: pos.Col - 1 + j}
			if !v.InBounds(c) {
				continue
			}
			obs = append(obs, Observation{Coord: c, Tile: *tile})
		}
	}
	if err := v.ApplyObservations(obs); err != nil {
		return nil, err
	}
	return obs, nil
}

// IngestDirectional pulls a directional ray view of the given length,
// normalizes it to absolute coordinates, and applies it to the view.
// The 3-wide band hugging the ray is clamped at the world edge, matching
// the host's own clamping of the returned window.
func IngestDirectional(src Source, v *View, d world.Direction, distance int) ([]Observation, error) {
	band, err := src.DirectionalView(d, distance)
	if err != nil {
		return nil, err
	}
	pos := src.AgentPosition()

	// Band origin along the perpendicular axis: one before the agent,
	// clamped at zero.
	bandRow := pos.Row - 1
	if pos.Row == 0 {
		bandRow = 0
	}
	bandCol := pos.Col - 1
	if pos.Col == 0 {
		bandCol = 0
	}

	var obs []Observation
	for i, row := range band {
		for j, tile := range row {
			var c world.Coord
			switch d {
			case world.Up:
				c = world.Coord{Row: pos.Row - 1 - i, Col: bandCol + j}
			case world.Down:
				c = world.Coord{Row: pos.Row + 1 + i, Col: bandCol + j}
			case world.Left:
				c = world.Coord{Row: bandRow + i, Col: pos.Col - 1 - j}
			case world.Right:
				c = world.Coord{Row: bandRow + i, Col: pos.Col + 1 + j}
			}
			if !v.InBounds(c) {
				continue
			}
			obs = append(obs, Observation{Coord: c, Tile: tile})
		}
	}
	if err := v.ApplyObservations(obs); err != nil {
		return nil, err
	}
	return obs, nil
}

// IngestDiscovered reveals the named tiles through the host and applies
// whatever came back. Returns the host's discovery result unchanged.
func IngestDiscovered(src Discoverer, v *View, coords []world.Coord) (map[world.Coord]*world.Tile, error) {
	found, err := src.Discover(coords)
	if err != nil {
		return nil, err
	}
	var obs []Observation
	for c, tile := range found {
		if tile == nil || !v.InBounds(c) {
			continue
		}
		obs = append(obs, Observation{Coord: c, Tile: *tile})
	}
	if err := v.ApplyObservations(obs); err != nil {
		return nil, err
	}
	return found, nil
}

// ResyncFromHost refreshes the whole view from the host's discovered grid.
func ResyncFromHost(src Source, v *View) error {
	return v.Resync(src.DiscoveredGrid())
}
