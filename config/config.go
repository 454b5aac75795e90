// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Layout modes for the initial particle placement.
const (
	LayoutRandom = "random"
	LayoutGrid   = "grid"
)

// Validation errors. Wrapped with the offending values by Validate.
var (
	ErrInvalidCount  = errors.New("particle count must be positive")
	ErrInvalidRadius = errors.New("smoothing radius must be positive")
	ErrInvalidMass   = errors.New("particle mass must be positive")
	ErrTankTooSmall  = errors.New("tank extent must exceed twice the particle radius plus boundary epsilon")
	ErrInvalidLayout = errors.New("unknown spawn layout")
	ErrInvalidDT     = errors.New("integration dt must be positive")

	ErrInvalidEpsilon     = errors.New("boundary epsilon must be positive")
	ErrInvalidRestitution = errors.New("restitution must be within [0, 1]")
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Tank        TankConfig        `yaml:"tank"`
	Fluid       FluidConfig       `yaml:"fluid"`
	Integration IntegrationConfig `yaml:"integration"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Interaction InteractionConfig `yaml:"interaction"`
	Parallel    ParallelConfig    `yaml:"parallel"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Stream      StreamConfig      `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// TankConfig is the rectangle the fluid is confined to, in screen pixels.
type TankConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`  // 0 = fill the screen minus margins
	Height float64 `yaml:"height"` // 0 = fill the screen minus margins
}

// FluidConfig holds the SPH material parameters. All of these can be tuned live.
type FluidConfig struct {
	Mass            float64 `yaml:"mass"` // 0 = pi * particle_radius^2
	SmoothingRadius float64 `yaml:"smoothing_radius"`
	TargetDensity   float64 `yaml:"target_density"`
	PressureFactor  float64 `yaml:"pressure_factor"`  // stiffness
	ViscosityFactor float64 `yaml:"viscosity_factor"` // 0 disables viscosity
	Gravity         float64 `yaml:"gravity"`          // px/s^2, +y is down
	DensityScale    float64 `yaml:"density_scale"`
	ParticleRadius  float64 `yaml:"particle_radius"`
}

// IntegrationConfig holds step controls.
type IntegrationConfig struct {
	DT              float64 `yaml:"dt"`
	Substeps        int     `yaml:"substeps"`
	Restitution     float64 `yaml:"restitution"`
	BoundaryEpsilon float64 `yaml:"boundary_epsilon"`
}

// SpawnConfig controls initial particle placement.
type SpawnConfig struct {
	Count  int    `yaml:"count"`
	Layout string `yaml:"layout"` // "random" or "grid"
	Seed   int64  `yaml:"seed"`
}

// InteractionConfig holds the mouse force defaults.
type InteractionConfig struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"` // target outward speed; sign flips with the mouse button
	Response float64 `yaml:"response"` // how fast velocities relax toward the target (1/s)
}

// ParallelConfig controls the worker pool.
type ParallelConfig struct {
	Threshold int `yaml:"threshold"` // below this many particles, run single-threaded
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// StreamConfig holds websocket frame streaming parameters.
type StreamConfig struct {
	Addr  string `yaml:"addr"`  // empty = disabled
	Every int    `yaml:"every"` // publish every N ticks
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TankW     float64 // effective tank width
	TankH     float64 // effective tank height
	Mass      float64 // effective particle mass
	ScreenW32 float32
	ScreenH32 float32
}

// tankMargin is the gap left around an auto-sized tank.
const tankMargin = 20

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults with derived values filled in.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Tank dimensions default to the screen minus the tank origin and a margin
	c.Derived.TankW = c.Tank.Width
	if c.Derived.TankW == 0 {
		c.Derived.TankW = float64(c.Screen.Width) - c.Tank.X - tankMargin
	}
	c.Derived.TankH = c.Tank.Height
	if c.Derived.TankH == 0 {
		c.Derived.TankH = float64(c.Screen.Height) - c.Tank.Y - tankMargin
	}

	c.Derived.Mass = c.Fluid.Mass
	if c.Derived.Mass == 0 {
		c.Derived.Mass = math.Pi * c.Fluid.ParticleRadius * c.Fluid.ParticleRadius
	}

	if c.Integration.Substeps < 1 {
		c.Integration.Substeps = 1
	}
	if c.Stream.Every < 1 {
		c.Stream.Every = 1
	}
}

// Validate checks the invariants the simulation relies on. It runs after derived
// values are computed, so auto-sized tanks are checked too.
func (c *Config) Validate() error {
	if c.Spawn.Count <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, c.Spawn.Count)
	}
	if c.Fluid.SmoothingRadius <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidRadius, c.Fluid.SmoothingRadius)
	}
	if c.Derived.Mass <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidMass, c.Derived.Mass)
	}
	if err := CheckBoundary(c.Derived.TankW, c.Derived.TankH, c.Fluid.ParticleRadius,
		c.Integration.BoundaryEpsilon, c.Integration.Restitution); err != nil {
		return err
	}
	if c.Spawn.Layout != LayoutRandom && c.Spawn.Layout != LayoutGrid {
		return fmt.Errorf("%w: %q", ErrInvalidLayout, c.Spawn.Layout)
	}
	if c.Integration.DT <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidDT, c.Integration.DT)
	}
	return nil
}

// CheckBoundary validates the wall collision settings. A clamped particle sits eps
// inside the wall, which must leave it on its own side of the tank centre and out of
// contact, so the extent has to exceed 2*(radius+eps) on both axes.
func CheckBoundary(w, h, radius, eps, restitution float64) error {
	if !(eps > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidEpsilon, eps)
	}
	if !(restitution >= 0 && restitution <= 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidRestitution, restitution)
	}
	minExtent := 2 * (radius + eps)
	if !(w > minExtent && h > minExtent) {
		return fmt.Errorf("%w: tank %gx%g, radius %g, epsilon %g",
			ErrTankTooSmall, w, h, radius, eps)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
