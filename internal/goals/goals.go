// Package goals tracks what the agent is trying to accomplish and ties
// host actions to goal progress.
package goals

import (
	"fmt"

	"github.com/talgya/gridscout/internal/world"
)

// GoalType classifies a goal by the action that advances it.
type GoalType uint8

const (
	GoalCollectItems GoalType = iota
	GoalSellItems
	GoalExtinguishFire
	GoalDiscardGarbage
)

// GoalTypeName returns a human-readable goal type name.
func GoalTypeName(t GoalType) string {
	switch t {
	case GoalCollectItems:
		return "collect items"
	case GoalSellItems:
		return "sell items"
	case GoalExtinguishFire:
		return "extinguish fire"
	case GoalDiscardGarbage:
		return "discard garbage"
	}
	return "unknown"
}

// Goal is one objective with a completion quantity.
type Goal struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        GoalType `json:"type"`
	Quantity    int      `json:"quantity"`
	Left        int      `json:"left"`
	Completed   bool     `json:"completed"`
}

// NewGoal creates an incomplete goal requiring quantity completions.
func NewGoal(name, description string, t GoalType, quantity int) Goal {
	return Goal{
		Name:        name,
		Description: description,
		Type:        t,
		Quantity:    quantity,
		Left:        quantity,
	}
}

// String returns a summary of the goal.
func (g Goal) String() string {
	status := "in progress"
	if g.Completed {
		status = "completed"
	}
	return fmt.Sprintf("%s [%s] %d/%d (%s)", g.Name, GoalTypeName(g.Type), g.Quantity-g.Left, g.Quantity, status)
}

// Tracker holds the agent's goals and a running completion count.
type Tracker struct {
	goals     []*Goal
	completed int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add registers a goal.
func (tr *Tracker) Add(g Goal) {
	tr.goals = append(tr.goals, &g)
}

// Remove drops the goal with the given name and returns it.
func (tr *Tracker) Remove(name string) (Goal, bool) {
	for i, g := range tr.goals {
		if g.Name == name {
			removed := *g
			tr.goals = append(tr.goals[:i], tr.goals[i+1:]...)
			if removed.Completed {
				tr.completed--
			}
			return removed, true
		}
	}
	return Goal{}, false
}

// CleanCompleted drops every completed goal, keeping the completion count.
func (tr *Tracker) CleanCompleted() {
	kept := tr.goals[:0]
	for _, g := range tr.goals {
		if !g.Completed {
			kept = append(kept, g)
		}
	}
	tr.goals = kept
}

// Goals returns the tracked goals.
func (tr *Tracker) Goals() []Goal {
	out := make([]Goal, len(tr.goals))
	for i, g := range tr.goals {
		out[i] = *g
	}
	return out
}

// CompletedCount returns how many goals have completed since creation,
// including completed goals since removed.
func (tr *Tracker) CompletedCount() int {
	return tr.completed
}

// Apply advances every incomplete goal of the given type by n.
func (tr *Tracker) Apply(t GoalType, n int) {
	for _, g := range tr.goals {
		if g.Type != t || g.Completed {
			continue
		}
		g.Left -= n
		if g.Left <= 0 {
			g.Left = 0
			g.Completed = true
			tr.completed++
		}
	}
}

// Actor is the slice of the host contract the action helpers consume.
// Put deposits content onto the facing tile; Destroy harvests the facing
// tile's content into the backpack. Both return the quantity moved.
type Actor interface {
	FacingTile(d world.Direction) (world.Tile, bool)
	Put(content world.Content, quantity int, d world.Direction) (int, error)
	Destroy(d world.Direction) (int, error)
}

// ExtinguishFire pours water onto a facing fire tile and advances
// extinguish goals on success. Host errors propagate unchanged.
func ExtinguishFire(a Actor, d world.Direction, quantity int, tr *Tracker) (int, error) {
	tile, ok := a.FacingTile(d)
	if !ok || tile.Content != world.ContentFire {
		return 0, fmt.Errorf("no fire %s of agent", world.DirectionName(d))
	}
	n, err := a.Put(world.ContentWater, quantity, d)
	if err != nil {
		return 0, err
	}
	tr.Apply(GoalExtinguishFire, 1)
	return n, nil
}

// SellItems deposits content onto a facing market tile and advances sell
// goals on success.
func SellItems(a Actor, d world.Direction, content world.Content, quantity int, tr *Tracker) (int, error) {
	tile, ok := a.FacingTile(d)
	if !ok || tile.Content != world.ContentMarket {
		return 0, fmt.Errorf("no market %s of agent", world.DirectionName(d))
	}
	n, err := a.Put(content, quantity, d)
	if err != nil {
		return 0, err
	}
	tr.Apply(GoalSellItems, 1)
	return n, nil
}

// DiscardGarbage drops garbage into a facing bin and advances discard
// goals on success.
func DiscardGarbage(a Actor, d world.Direction, quantity int, tr *Tracker) (int, error) {
	tile, ok := a.FacingTile(d)
	if !ok || tile.Content != world.ContentBin {
		return 0, fmt.Errorf("no bin %s of agent", world.DirectionName(d))
	}
	n, err := a.Put(world.ContentGarbage, quantity, d)
	if err != nil {
		return 0, err
	}
	tr.Apply(GoalDiscardGarbage, 1)
	return n, nil
}

// CollectItems harvests the facing tile's content and advances collect
// goals on success.
func CollectItems(a Actor, d world.Direction, tr *Tracker) (int, error) {
	tile, ok := a.FacingTile(d)
	if !ok || tile.Content == world.ContentNone {
		return 0, fmt.Errorf("nothing to collect %s of agent", world.DirectionName(d))
	}
	n, err := a.Destroy(d)
	if err != nil {
		return 0, err
	}
	tr.Apply(GoalCollectItems, 1)
	return n, nil
}
