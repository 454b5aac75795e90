// Command sphterm runs the tank in a terminal window.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pthm-cable/sphtank/config"
	"github.com/pthm-cable/sphtank/sph"
	"github.com/pthm-cable/sphtank/terminal"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	count := flag.Int("n", 0, "Particle count (0 = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	fps := flag.Int("fps", 30, "Redraw rate")
	logFile := flag.String("log", "sphterm.log", "Log file (the terminal is taken over)")
	flag.Parse()

	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setup := sph.SetupFromConfig(cfg)
	if *count > 0 {
		setup.Count = *count
	}
	if *seed != 0 {
		setup.Seed = *seed
	}
	params := sph.ParamsFromConfig(cfg)

	sim, err := sph.New(params, setup)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer sim.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	v := &terminal.Viewer{
		Sim:      sim,
		Params:   params,
		Setup:    setup,
		Substeps: cfg.Integration.Substeps,
		Radius:   cfg.Interaction.Radius,
		Strength: cfg.Interaction.Strength,
		Response: cfg.Interaction.Response,
	}
	slog.Info("starting terminal viewer", "particles", setup.Count, "seed", setup.Seed)
	if err := v.Run(ctx, *fps); err != nil {
		slog.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}
