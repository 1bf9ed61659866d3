// Command worldsim runs the emergent world event simulation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/api"
	"github.com/talgya/worldevents/internal/config"
	"github.com/talgya/worldevents/internal/engine"
	"github.com/talgya/worldevents/internal/entropy"
	"github.com/talgya/worldevents/internal/events"
	"github.com/talgya/worldevents/internal/persistence"
	"github.com/talgya/worldevents/internal/world"
)

// historyReload is how many days of logged events a resumed world keeps in memory.
const historyReload = 90

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("worldevents: emergent world event simulation")

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("failed to create data directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	hasState, err := db.HasWorldState()
	if err != nil {
		slog.Error("failed to inspect database", "error", err)
		os.Exit(1)
	}

	// ── Seed ──────────────────────────────────────────────────────────
	seed := cfg.Seed
	if seed == 0 && hasState {
		if saved, err := db.LoadSeed(); err == nil {
			seed = saved
		}
	}
	if seed == 0 {
		client := entropy.NewClient(cfg.RandomOrgKey)
		seed, err = entropy.NewSeed(client)
		if err != nil {
			slog.Error("failed to draw a seed", "error", err)
			os.Exit(1)
		}
		slog.Info("drew fresh seed", "seed", seed, "random_org", client.Enabled())
	}

	// ── Load or Generate World State ─────────────────────────────────
	var (
		w         *world.World
		pop       []*agents.Agent
		cooldowns map[string]int
		history   []events.Event
	)
	spawner := agents.NewSpawner(seed)
	genCfg := world.DefaultGenConfig()
	genCfg.Seed = seed

	if hasState {
		slog.Info("found saved world state, loading...")

		if w, err = db.LoadWorld(); err != nil {
			slog.Error("failed to load world", "error", err)
			os.Exit(1)
		}
		w.AttachNoise(seed, genCfg.Jitter)

		if pop, err = db.LoadAgents(); err != nil {
			slog.Error("failed to load agents", "error", err)
			os.Exit(1)
		}
		if cooldowns, err = db.LoadCooldowns(); err != nil {
			slog.Error("failed to load cooldowns", "error", err)
			os.Exit(1)
		}
		if history, err = db.RecentEvents(w.Day - historyReload); err != nil {
			slog.Error("failed to load event history", "error", err)
			os.Exit(1)
		}

		// Newcomers arrive if the configured population grew since the last run.
		spawner.Reserve(pop)
		if missing := cfg.Population - len(pop); missing > 0 {
			pop = append(pop, spawner.SpawnPopulation(missing, w.LocationNames())...)
			slog.Info("newcomers arrived", "count", missing)
		}

		slog.Info("world state restored",
			"day", w.Day,
			"sim_time", engine.SimDate(w.Day),
			"agents", len(pop),
			"cooldowns", len(cooldowns),
			"events", len(history),
		)
	} else {
		slog.Info("no saved state found, generating new world...")

		w = world.Generate(genCfg)
		pop = spawner.SpawnPopulation(cfg.Population, w.LocationNames())
		if err := db.SaveSeed(seed); err != nil {
			slog.Error("failed to save seed", "error", err)
		}

		for _, a := range pop {
			slog.Debug("villager", "name", a.Name, "age", a.Age, "traits", a.Traits, "location", a.Location)
		}
	}

	slog.Info("world ready", "world", w.String(), "agents", len(pop), "seed", seed)

	// ── Simulation ────────────────────────────────────────────────────
	sys := events.NewSystem(events.DefaultCatalog(), entropy.NewSeeded(seed+int64(w.Day)))
	sys.Cooldowns().Restore(cooldowns)

	sim := engine.NewSimulation(w, pop, sys)
	if len(history) > engine.MaxHistory {
		history = history[len(history)-engine.MaxHistory:]
	}
	sim.History = history

	if !hasState {
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	eng := engine.NewEngine()
	eng.Day = uint64(w.Day) // weekly and seasonal layers follow the world calendar
	eng.Interval = cfg.DayInterval
	eng.MaxDays = cfg.MaxDays

	// Log events and auto-save every sim-day.
	eng.OnDay = func(uint64) {
		todays := sim.TickDay()
		if _, err := db.SaveDay(sim, todays); err != nil {
			slog.Error("daily save failed", "error", err)
		}
	}
	eng.OnWeek = func(uint64) { sim.TickWeek() }
	eng.OnSeason = func(uint64) { sim.TickSeason() }

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.APIPort > 0 {
		if cfg.AdminKey == "" {
			slog.Warn("WORLDSIM_ADMIN_KEY not set, admin endpoints are disabled")
		}
		apiServer := &api.Server{
			Sim:         sim,
			Eng:         eng,
			DB:          db,
			Port:        cfg.APIPort,
			AdminKey:    cfg.AdminKey,
			CORSOrigins: cfg.CORSOrigins,
		}
		apiServer.Start(ctx)
	}

	// ── Start ─────────────────────────────────────────────────────────
	fmt.Printf("\nThe village is alive: %d souls, %d event templates, %s.\n",
		len(agents.Living(pop)), sys.Catalog().Len(), engine.SimDate(w.Day))
	if cfg.APIPort > 0 {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("simulation stopped unexpectedly", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. World state saved.")
}
