// Package view implements the agent's annotated belief of the world: a
// grid of possibly-unobserved tiles, at most one pin per cell, and a
// reverse index from pin to the cells carrying it.
package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/talgya/gridscout/internal/world"
)

// Errors returned by view operations. All are recoverable by the caller
// except ErrOutOfRange, which signals a caller programming error.
var (
	ErrPinAlreadySet = errors.New("pin already set on cell")
	ErrPinNotFound   = errors.New("pin not found")
	ErrEmptyCell     = errors.New("no pin on cell")
	ErrOutOfRange    = errors.New("coordinate out of range")
)

// Observation pairs an absolute coordinate with the tile seen there.
type Observation struct {
	Coord world.Coord
	Tile  world.Tile
}

// cell is one grid square of the belief: what was last observed there,
// if anything, and the pin attached to it, if any.
type cell struct {
	tile *world.Tile
	pin  *Pin
}

// View owns the agent's remembered grid and the pin reverse index.
// The two structures are updated together inside every mutating
// operation; the index is never rebuilt by scanning the grid.
type View struct {
	rows, cols int
	cells      [][]cell
	index      map[pinKey][]world.Coord
}

// New creates a view sized to the world, with every cell unobserved and
// unannotated. The view never shrinks; it lives for the agent's session.
func New(rows, cols int) *View {
	cells := make([][]cell, rows)
	for r := range cells {
		cells[r] = make([]cell, cols)
	}
	return &View{
		rows:  rows,
		cols:  cols,
		cells: cells,
		index: make(map[pinKey][]world.Coord),
	}
}

// Rows returns the grid height.
func (v *View) Rows() int { return v.rows }

// Cols returns the grid width.
func (v *View) Cols() int { return v.cols }

// InBounds reports whether the coordinate addresses a cell of this view.
func (v *View) InBounds(c world.Coord) bool {
	return c.Row >= 0 && c.Row < v.rows && c.Col >= 0 && c.Col < v.cols
}

// ApplyObservations overwrites the observed tile at each coordinate.
// The batch is validated before any write: one out-of-range record
// rejects the whole batch and leaves the view untouched.
func (v *View) ApplyObservations(obs []Observation) error {
	for _, o := range obs {
		if !v.InBounds(o.Coord) {
			return fmt.Errorf("observation at %s: %w", o.Coord, ErrOutOfRange)
		}
	}
	for _, o := range obs {
		t := o.Tile
		v.cells[o.Coord.Row][o.Coord.Col].tile = &t
	}
	return nil
}

// TileAt returns the last observed tile at the coordinate, if any.
func (v *View) TileAt(c world.Coord) (world.Tile, bool) {
	if !v.InBounds(c) {
		return world.Tile{}, false
	}
	t := v.cells[c.Row][c.Col].tile
	if t == nil {
		return world.Tile{}, false
	}
	return *t, true
}

// Observed returns the number of cells with an observed tile.
func (v *View) Observed() int {
	n := 0
	for r := range v.cells {
		for c := range v.cells[r] {
			if v.cells[r][c].tile != nil {
				n++
			}
		}
	}
	return n
}

// Tiles returns a snapshot of the observed grid for the planner. The
// snapshot is independent of the view: callers must not hold references
// into the live grid across calls, since Resync replaces cell contents
// wholesale.
func (v *View) Tiles() [][]*world.Tile {
	out := make([][]*world.Tile, v.rows)
	for r := range out {
		out[r] = make([]*world.Tile, v.cols)
		for c := range out[r] {
			if t := v.cells[r][c].tile; t != nil {
				cp := *t
				out[r][c] = &cp
			}
		}
	}
	return out
}

// resyncWorkers bounds the row fanout of Resync.
const resyncWorkers = 8

// Resync overwrites every cell from ground truth. This is the slow path;
// rows never alias, so the sweep fans out across row blocks with a
// completion barrier. A cell already observed is never downgraded to
// unobserved, and resyncing unchanged ground truth is a no-op.
func (v *View) Resync(ground [][]*world.Tile) error {
	if len(ground) != v.rows {
		return fmt.Errorf("ground truth has %d rows, view has %d: %w", len(ground), v.rows, ErrOutOfRange)
	}
	for r, row := range ground {
		if len(row) != v.cols {
			return fmt.Errorf("ground truth row %d has %d cols, view has %d: %w", r, len(row), v.cols, ErrOutOfRange)
		}
	}

	workers := resyncWorkers
	if workers > v.rows {
		workers = v.rows
	}
	if workers < 1 {
		return nil
	}

	var wg sync.WaitGroup
	chunk := (v.rows + workers - 1) / workers
	for start := 0; start < v.rows; start += chunk {
		end := start + chunk
		if end > v.rows {
			end = v.rows
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for r := lo; r < hi; r++ {
				for c := 0; c < v.cols; c++ {
					if ground[r][c] == nil {
						continue
					}
					t := *ground[r][c]
					v.cells[r][c].tile = &t
				}
			}
		}(start, end)
	}
	wg.Wait()
	return nil
}

// AddPin attaches a pin to a cell and records it in the reverse index.
// A cell carries at most one pin: adding to an occupied cell fails with
// ErrPinAlreadySet and leaves the existing pin unchanged.
func (v *View) AddPin(c world.Coord, p Pin) error {
	if !v.InBounds(c) {
		return fmt.Errorf("add pin at %s: %w", c, ErrOutOfRange)
	}
	if !p.Valid() {
		return fmt.Errorf("add pin at %s: invalid pin", c)
	}
	if v.cells[c.Row][c.Col].pin != nil {
		return ErrPinAlreadySet
	}
	v.cells[c.Row][c.Col].pin = &p
	v.index[p.key] = append(v.index[p.key], c)
	return nil
}

// PinAt returns the pin on a cell, if any.
func (v *View) PinAt(c world.Coord) (Pin, bool) {
	if !v.InBounds(c) {
		return Pin{}, false
	}
	p := v.cells[c.Row][c.Col].pin
	if p == nil {
		return Pin{}, false
	}
	return *p, true
}

// DeletePin clears the pin on a cell and removes the coordinate from the
// reverse index, dropping the key once its last coordinate is gone.
// Fails with ErrEmptyCell if the cell carries no pin.
func (v *View) DeletePin(c world.Coord) error {
	if !v.InBounds(c) {
		return fmt.Errorf("delete pin at %s: %w", c, ErrOutOfRange)
	}
	p := v.cells[c.Row][c.Col].pin
	if p == nil {
		return ErrEmptyCell
	}
	v.cells[c.Row][c.Col].pin = nil
	v.removeFromIndex(p.key, c)
	return nil
}

// SearchPin returns every coordinate carrying a pin equal to p, in the
// order the pins were added. Fails with ErrPinNotFound if no cell does.
func (v *View) SearchPin(p Pin) ([]world.Coord, error) {
	coords, ok := v.index[p.key]
	if !ok {
		return nil, ErrPinNotFound
	}
	out := make([]world.Coord, len(coords))
	copy(out, coords)
	return out, nil
}

// Pins returns every pinned coordinate with its pin, row-major.
// Used by persistence snapshots.
func (v *View) Pins() []PinnedCell {
	var out []PinnedCell
	for r := range v.cells {
		for c := range v.cells[r] {
			if p := v.cells[r][c].pin; p != nil {
				out = append(out, PinnedCell{Coord: world.Coord{Row: r, Col: c}, Pin: *p})
			}
		}
	}
	return out
}

// PinnedCell pairs a coordinate with the pin it carries.
type PinnedCell struct {
	Coord world.Coord
	Pin   Pin
}

func (v *View) removeFromIndex(key pinKey, c world.Coord) {
	coords := v.index[key]
	for i, have := range coords {
		if have == c {
			v.index[key] = append(coords[:i], coords[i+1:]...)
			break
		}
	}
	if len(v.index[key]) == 0 {
		delete(v.index, key)
	}
}
