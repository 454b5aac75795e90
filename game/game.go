// Package game wires the simulation, telemetry and raylib viewer together.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/sphtank/camera"
	"github.com/pthm-cable/sphtank/config"
	"github.com/pthm-cable/sphtank/palette"
	"github.com/pthm-cable/sphtank/sph"
	"github.com/pthm-cable/sphtank/stream"
	"github.com/pthm-cable/sphtank/telemetry"
	"github.com/pthm-cable/sphtank/ui"
)

// Options configures a new game.
type Options struct {
	Seed           int64 // 0 = config seed, or time-based if that is 0 too
	Count          int   // 0 = config count
	Headless       bool
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string // bookmark snapshots; empty disables them
	SnapshotPath   string // resume from this snapshot
	OutputDir      string
	StepsPerUpdate int
	Hub            *stream.Hub // nil disables frame streaming
}

// Game owns the simulation and everything that observes or steers it.
type Game struct {
	cfg    *config.Config
	sim    *sph.Simulation
	params sph.Params
	setup  sph.Setup
	seed   int64

	interaction  sph.Interaction
	pushStrength float64 // mouse force strength, tuned by slider
	paused       bool
	stepOnce    bool

	stepsPerUpdate int
	substeps       int
	headless       bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	energyHistory    *telemetry.Series
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string
	renderPerf       *renderPerf

	// Streaming
	hub         *stream.Hub
	streamEvery int64

	// Viewer
	camera       *camera.Camera
	colorMode    palette.Mode
	hud          *ui.HUD
	uiRenderer   *ui.Renderer
	perfPanel    *ui.PerfPanel
	fluidPanel   *ui.FluidPanel
	controls     *ui.ControlsPanel
	overlays     *ui.OverlayRegistry
	screenWidth  float32
	screenHeight float32
}

// maxStepsPerUpdate bounds the , and . keys.
const maxStepsPerUpdate = 10

// energyHistoryLen is how many updates the energy graph shows.
const energyHistoryLen = 300

// NewGameWithOptions creates a game from the global config.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	setup := sph.SetupFromConfig(cfg)
	if opts.Seed != 0 {
		setup.Seed = opts.Seed
	}
	if setup.Seed == 0 {
		setup.Seed = time.Now().UnixNano()
	}
	if opts.Count > 0 {
		setup.Count = opts.Count
	}

	params := sph.ParamsFromConfig(cfg)
	sim, err := sph.New(params, setup)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	g := &Game{
		cfg:              cfg,
		sim:              sim,
		params:           params,
		setup:            setup,
		seed:             setup.Seed,
		stepsPerUpdate:   stepsPerUpdate,
		substeps:         cfg.Integration.Substeps,
		headless:         opts.Headless,
		pushStrength:     cfg.Interaction.Strength,
		collector:        telemetry.NewCollector(statsWindow, params.DT),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		energyHistory:    telemetry.NewSeries(energyHistoryLen),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		renderPerf:       newRenderPerf(),
		hub:              opts.Hub,
		streamEvery:      int64(cfg.Stream.Every),
		screenWidth:      cfg.Derived.ScreenW32,
		screenHeight:     cfg.Derived.ScreenH32,
	}
	sim.PhaseHook = g.perfCollector.StartPhase

	if opts.SnapshotPath != "" {
		if err := g.loadSnapshot(opts.SnapshotPath); err != nil {
			sim.Close()
			return nil, err
		}
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		sim.Close()
		return nil, fmt.Errorf("creating output: %w", err)
	}
	g.outputManager = om
	if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	if !opts.Headless {
		g.initViewer()
	}

	slog.Info("simulation created",
		"particles", sim.Len(),
		"layout", setup.Layout,
		"seed", setup.Seed,
		"tank_w", params.Tank.Extent.X,
		"tank_h", params.Tank.Extent.Y,
	)
	return g, nil
}

func (g *Game) initViewer() {
	g.camera = camera.New(g.screenWidth, g.screenHeight, g.screenWidth, g.screenHeight)
	g.hud = ui.NewHUD()
	g.uiRenderer = ui.NewRenderer()
	g.perfPanel = ui.NewPerfPanel(10, 110)
	g.fluidPanel = ui.NewFluidPanel()
	g.controls = ui.NewControlsPanel(10, 110, 260)
	g.overlays = ui.NewOverlayRegistry()
	g.overlays.SetEnabled(ui.OverlayFluidPanel, true)
	g.overlays.SetEnabled(ui.OverlaySmoothing, true)
}

// SetStatsCallback registers a function called with every flushed stats window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Update handles input and advances the simulation for one frame.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.handleInput()
	g.advance()
}

// UpdateHeadless advances the simulation without reading input.
func (g *Game) UpdateHeadless() {
	g.advance()
}

// advance runs stepsPerUpdate updates of substeps steps each, or a single step when
// paused and a step was requested.
func (g *Game) advance() {
	if g.paused && !g.stepOnce {
		return
	}

	steps := g.stepsPerUpdate * g.substeps
	if g.paused {
		steps = 1
	}
	g.stepOnce = false

	for i := 0; i < steps; i++ {
		g.step()
	}

	if !g.headless {
		g.energyHistory.Push(sph.KineticEnergy(g.sim.Particles, g.params.Mass))
	}
}

// step advances one dt and feeds telemetry.
func (g *Game) step() {
	g.perfCollector.StartTick()
	stats := g.sim.Step(g.params, g.interaction)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordStep(stats, sph.MaxSpeed(g.sim.Particles))
	g.flushTelemetry()
	g.publishFrame()
	g.perfCollector.EndTick()
}

// reset respawns the particle set with the current parameters.
func (g *Game) reset() {
	if err := g.sim.Reset(g.params, g.setup); err != nil {
		slog.Error("reset failed", "error", err)
		return
	}
	g.collector.Reset(g.sim.Tick())
	g.energyHistory.Clear()
	slog.Info("simulation reset", "particles", g.sim.Len(), "layout", g.setup.Layout)
}

// toggleLayout switches between grid and random spawning and respawns.
func (g *Game) toggleLayout() {
	if g.setup.Layout == config.LayoutGrid {
		g.setup.Layout = config.LayoutRandom
	} else {
		g.setup.Layout = config.LayoutGrid
	}
	g.reset()
}

// Tick returns the number of completed simulation steps.
func (g *Game) Tick() int64 {
	return g.sim.Tick()
}

// Simulation exposes the underlying simulation.
func (g *Game) Simulation() *sph.Simulation {
	return g.sim
}

// Params returns the step parameters currently in effect.
func (g *Game) Params() sph.Params {
	return g.params
}

// Unload releases resources.
func (g *Game) Unload() {
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}
	g.sim.Close()
}
