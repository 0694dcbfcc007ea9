// Command scoutsim runs the demo agent against the in-process reference
// host: generate a world, scout it for a while, and snapshot the agent's
// annotated view to SQLite.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/talgya/gridscout/internal/goals"
	"github.com/talgya/gridscout/internal/host"
	"github.com/talgya/gridscout/internal/persistence"
	"github.com/talgya/gridscout/internal/scout"
	"github.com/talgya/gridscout/internal/view"
	"github.com/talgya/gridscout/internal/world"
)

func main() {
	var (
		seed    = flag.Int64("seed", 42, "world generation seed (0 = random)")
		size    = flag.Int("size", 32, "world rows and columns")
		ticks   = flag.Int("ticks", 200, "simulation ticks to run")
		dbPath  = flag.String("db", "data/scout.db", "snapshot database path")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── Host ──────────────────────────────────────────────────────────
	cfg := host.DefaultConfig()
	cfg.Gen.Seed = *seed
	cfg.Gen.Rows = *size
	cfg.Gen.Cols = *size
	h := host.New(cfg)
	h.OnEvent(func(ev host.Event) {
		slog.Debug("host event", "tick", ev.Tick, "category", ev.Category, "description", ev.Description)
	})
	// Starting supplies so the planner has material headroom.
	h.GrantContent(world.ContentRock, 10)

	slog.Info("world generated",
		"session", h.SessionID,
		"rows", h.Rows(),
		"cols", h.Cols(),
		"start", h.AgentPosition().String(),
	)

	// ── Scout ─────────────────────────────────────────────────────────
	sc := scout.New(h)
	sc.Goals.Add(goals.NewGoal("rocks", "gather rocks for paving", goals.GoalCollectItems, 5))

	for i := 0; i < *ticks; i++ {
		if err := sc.TickOnce(); err != nil {
			slog.Error("tick failed", "tick", h.Tick(), "error", err)
			os.Exit(1)
		}
	}

	// ── Snapshot ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open snapshot database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.SaveView(sc.View, h.SessionID, h.Tick()); err != nil {
		slog.Error("snapshot save failed", "error", err)
		os.Exit(1)
	}
	slog.Info("view snapshot saved", "path", *dbPath, "tick", h.Tick())

	// ── Summary ───────────────────────────────────────────────────────
	total := h.Rows() * h.Cols()
	pinned := len(sc.View.Pins())
	rockPins := 0
	if coords, err := sc.View.SearchPin(view.ContentMarker(world.ContentRock)); err == nil {
		rockPins = len(coords)
	}

	fmt.Printf("\nScouted %s of %s cells (%d pinned, %d rock deposits still marked).\n",
		humanize.Comma(int64(sc.View.Observed())), humanize.Comma(int64(total)), pinned, rockPins)
	fmt.Printf("Energy %d, carrying %d rocks after %s ticks.\n",
		h.Energy(), h.BackpackCount(world.ContentRock), humanize.Comma(int64(h.Tick())))
	for _, g := range sc.Goals.Goals() {
		fmt.Println(g)
	}
}
