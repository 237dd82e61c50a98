// Command conflictsim runs the faction tension and war simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/conflict-sim/internal/engine"
	"github.com/talgya/conflict-sim/internal/entropy"
	"github.com/talgya/conflict-sim/internal/faction"
	"github.com/talgya/conflict-sim/internal/persistence"
	"github.com/talgya/conflict-sim/internal/world"
)

func main() {
	var (
		seed    = flag.Int64("seed", 42, "world seed (0 = random)")
		dbPath  = flag.String("db", "data/conflicts.db", "SQLite database path")
		speed   = flag.Float64("speed", 1.0, "simulation speed multiplier")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Conflict Simulator — faction tension, war, and diplomacy")

	var rng entropy.Source
	if *seed != 0 {
		rng = entropy.NewSeeded(*seed)
	} else {
		rng = entropy.Crypto{}
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	// ── Load or Generate World State ─────────────────────────────────
	var factions []*faction.Faction
	var regions []*faction.Region
	var startDay uint64

	if loaded, err := db.LoadFactions(); err == nil && len(loaded) > 0 {
		slog.Info("found saved world state, loading...")
		factions = loaded
		regions, err = db.LoadRegions()
		if err != nil {
			slog.Error("failed to load regions", "error", err)
			os.Exit(1)
		}
		if dayStr, err := db.GetMeta("last_day"); err == nil {
			if d, err := strconv.ParseUint(dayStr, 10, 64); err == nil {
				startDay = d
			}
		}
		slog.Info("world state restored",
			"factions", len(factions),
			"regions", len(regions),
			"day", startDay,
			"sim_time", engine.SimTime(startDay),
		)
	} else {
		slog.Info("no saved state found, generating new world...")
		factions = faction.SeedFactions()

		cfg := world.DefaultGenConfig()
		cfg.Seed = *seed
		regions = world.Generate(cfg, factions, rng)

		for terrain, count := range world.TerrainCounts(regions) {
			slog.Info("terrain", "type", terrain, "count", count)
		}
	}

	totalPop := 0
	for _, r := range regions {
		totalPop += r.Population
	}
	slog.Info("world ready",
		"factions", len(factions),
		"regions", len(regions),
		"population", humanize.Comma(int64(totalPop)),
	)

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(factions, regions, rng)
	sim.LastDay = startDay

	if startDay > 0 {
		if err := db.LoadTensions(sim.Tensions); err != nil {
			slog.Error("failed to load tensions", "error", err)
			os.Exit(1)
		}
		if err := db.LoadWars(sim.Wars); err != nil {
			slog.Error("failed to load wars", "error", err)
			os.Exit(1)
		}
		if err := db.LoadDiplomacy(sim.Diplomacy); err != nil {
			slog.Error("failed to load diplomacy", "error", err)
			os.Exit(1)
		}
	} else {
		// Save on fresh generation only (loaded worlds are already saved).
		if err := db.SaveWorldState(snapshot(sim)); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	eng := engine.NewEngine()
	eng.Tick = startDay
	eng.Speed = *speed

	eng.OnDay = sim.TickDay
	eng.OnWeek = func(day uint64) {
		sim.TickWeek(day)
		// Auto-save weekly.
		if err := db.SaveWorldState(snapshot(sim)); err != nil {
			slog.Error("weekly save failed", "error", err)
		}
	}
	eng.OnSeason = func(day uint64) {
		slog.Info("season turns", "sim_time", engine.SimTime(day))
	}

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\n%d factions contest %d regions holding %s people.\n",
		len(factions), len(regions), humanize.Comma(int64(totalPop)))
	if startDay > 0 {
		fmt.Printf("Resuming from day %d (%s)\n", startDay, engine.SimTime(startDay))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(snapshot(sim)); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Printf("Simulation stopped after %s battles and %s casualties. World state saved.\n",
		humanize.Comma(int64(sim.Stats.TotalBattles)),
		humanize.Comma(int64(sim.Stats.TotalCasualties)))
}

func snapshot(sim *engine.Simulation) persistence.WorldState {
	return persistence.WorldState{
		Day:       int(sim.CurrentDay()),
		Factions:  sim.Factions,
		Regions:   sim.Regions,
		Tensions:  sim.Tensions,
		Wars:      sim.Wars,
		Diplomacy: sim.Diplomacy,
	}
}
