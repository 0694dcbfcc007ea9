// Package scout implements the demo agent loop: each tick it ingests the
// local viewport into the annotated view, pins notable contents, plans a
// route to the nearest pinned rock deposit, and walks it one step at a
// time, collecting what it finds. Pure glue over view, route, and goals.
package scout

import (
	"errors"
	"log/slog"

	"github.com/talgya/gridscout/internal/goals"
	"github.com/talgya/gridscout/internal/host"
	"github.com/talgya/gridscout/internal/route"
	"github.com/talgya/gridscout/internal/view"
	"github.com/talgya/gridscout/internal/world"
)

// Scout wires the agent's memory and planner to a host.
type Scout struct {
	Host  *host.Host
	View  *view.View
	Goals *goals.Tracker
	Mode  route.Mode

	plan    *route.Result
	planIdx int
	target  *world.Coord
}

// New creates a scout with a fresh view sized to the host's world.
func New(h *host.Host) *Scout {
	return &Scout{
		Host:  h,
		View:  view.New(h.Rows(), h.Cols()),
		Goals: goals.NewTracker(),
		Mode:  route.Balanced,
	}
}

// TickOnce runs one observe → decide → act cycle, then advances the host.
func (s *Scout) TickOnce() error {
	if err := s.observe(); err != nil {
		return err
	}
	s.decide()
	s.act()
	s.Host.AdvanceTick()
	return nil
}

// observe ingests the viewport and pins notable contents.
func (s *Scout) observe() error {
	obs, err := view.IngestViewport(s.Host, s.View)
	if err != nil {
		return err
	}
	for _, o := range obs {
		var pin view.Pin
		switch o.Tile.Content {
		case world.ContentRock, world.ContentMarket, world.ContentBank:
			pin = view.ContentMarker(o.Tile.Content)
		default:
			continue
		}
		err := s.View.AddPin(o.Coord, pin)
		if err != nil && !errors.Is(err, view.ErrPinAlreadySet) {
			return err
		}
	}
	return nil
}

// decide picks or refreshes the current objective and plans a route.
func (s *Scout) decide() {
	if s.plan != nil && s.planIdx < len(s.plan.Steps) {
		return // Mid-route
	}
	s.plan = nil
	s.planIdx = 0

	coords, err := s.View.SearchPin(view.ContentMarker(world.ContentRock))
	if err != nil {
		return // Nothing pinned yet
	}

	pos := s.Host.AgentPosition()
	target, ok := nearest(pos, coords, func(c world.Coord) bool { return c != pos })
	if !ok {
		return
	}

	// Route to a cell beside the deposit; harvesting works on the
	// facing tile, not underfoot.
	approach, ok := s.approachCell(pos, target)
	if !ok {
		return
	}

	result, err := route.Plan(s.View.Tiles(), route.Request{
		Start:    pos,
		Target:   approach,
		Energy:   s.Host.Energy(),
		Material: s.Host.BackpackCount(world.ContentRock),
		Mode:     s.Mode,
		Divider:  1,
	})
	if err != nil {
		slog.Debug("route planning failed",
			"target", target.String(),
			"mode", route.ModeName(s.Mode),
			"error", err,
		)
		return
	}
	s.plan = result
	s.target = &target
	slog.Info("route planned",
		"target", target.String(),
		"steps", len(result.Steps),
		"arrival_energy", result.Energy,
	)
}

// approachCell picks an observed, traversable neighbor of target to
// stand on while harvesting. The agent's own cell qualifies.
func (s *Scout) approachCell(pos, target world.Coord) (world.Coord, bool) {
	// Already adjacent: stay put.
	for _, d := range world.CardinalDirections {
		if target.Neighbor(d) == pos {
			return pos, true
		}
	}
	for _, d := range world.CardinalDirections {
		n := target.Neighbor(d)
		tile, ok := s.View.TileAt(n)
		if !ok {
			continue
		}
		if _, ok := route.EdgeCost(tile.Terrain); ok {
			return n, true
		}
	}
	return world.Coord{}, false
}

// act walks one step of the current plan, harvesting on arrival.
func (s *Scout) act() {
	if s.plan == nil {
		return
	}
	if s.planIdx < len(s.plan.Steps) {
		step := s.plan.Steps[s.planIdx]
		if err := s.Host.Move(step); err != nil {
			// The world may have shifted under the plan; drop it and
			// replan next tick. Host errors are not retried.
			slog.Debug("move failed, dropping plan", "direction", world.DirectionName(step), "error", err)
			s.plan = nil
			s.planIdx = 0
			return
		}
		s.planIdx++
		if s.planIdx < len(s.plan.Steps) {
			return
		}
	}
	s.harvest()
	s.plan = nil
	s.planIdx = 0
	s.target = nil
}

// harvest collects the pinned deposit the agent now stands beside.
func (s *Scout) harvest() {
	if s.target == nil {
		return
	}
	pos := s.Host.AgentPosition()
	for _, d := range world.CardinalDirections {
		if pos.Neighbor(d) != *s.target {
			continue
		}
		if _, err := goals.CollectItems(s.Host, d, s.Goals); err == nil {
			if derr := s.View.DeletePin(*s.target); derr != nil && !errors.Is(derr, view.ErrEmptyCell) {
				slog.Debug("pin cleanup failed", "at", s.target.String(), "error", derr)
			}
		}
		return
	}
}

// nearest returns the coordinate with the smallest Manhattan distance to
// from, among those passing keep.
func nearest(from world.Coord, coords []world.Coord, keep func(world.Coord) bool) (world.Coord, bool) {
	best := world.Coord{}
	bestDist := -1
	for _, c := range coords {
		if !keep(c) {
			continue
		}
		d := manhattan(from, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist >= 0
}

func manhattan(a, b world.Coord) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
