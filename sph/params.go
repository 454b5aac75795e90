package sph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphtank/config"
)

// Default numerical guards.
const (
	// DefaultRestitution is the fraction of wall-normal speed kept after a bounce.
	DefaultRestitution = 0.7
	// DefaultBoundaryEpsilon keeps clamped particles strictly inside the tank.
	DefaultBoundaryEpsilon = 0.001

	// minDistance below which two particles are treated as coincident.
	minDistance = 1e-9
	// minDensity floors densities used as divisors.
	minDensity = 1e-9
)

// Re-exported validation errors so callers of New can match with errors.Is.
var (
	ErrInvalidCount  = config.ErrInvalidCount
	ErrInvalidRadius = config.ErrInvalidRadius
	ErrInvalidMass   = config.ErrInvalidMass
	ErrTankTooSmall  = config.ErrTankTooSmall
	ErrInvalidLayout = config.ErrInvalidLayout
	ErrInvalidDT     = config.ErrInvalidDT

	ErrInvalidEpsilon     = config.ErrInvalidEpsilon
	ErrInvalidRestitution = config.ErrInvalidRestitution
)

// Tank is an axis-aligned rectangle.
type Tank struct {
	Origin r2.Vec // top-left corner
	Extent r2.Vec // width, height
}

// Center returns the tank centre.
func (t Tank) Center() r2.Vec {
	return r2.Vec{X: t.Origin.X + t.Extent.X/2, Y: t.Origin.Y + t.Extent.Y/2}
}

// HalfExtent returns half the width and height.
func (t Tank) HalfExtent() r2.Vec {
	return r2.Vec{X: t.Extent.X / 2, Y: t.Extent.Y / 2}
}

// Contains reports whether p lies inside the rectangle (inclusive).
func (t Tank) Contains(p r2.Vec) bool {
	return p.X >= t.Origin.X && p.X <= t.Origin.X+t.Extent.X &&
		p.Y >= t.Origin.Y && p.Y <= t.Origin.Y+t.Extent.Y
}

// Params holds every tunable read by a step. The owner passes it by value each step,
// so changes made between steps take effect on the next one.
type Params struct {
	Mass            float64
	SmoothingRadius float64
	TargetDensity   float64
	PressureFactor  float64
	ViscosityFactor float64
	Gravity         float64 // along +y
	DensityScale    float64
	ParticleRadius  float64
	Tank            Tank

	DT              float64
	Restitution     float64
	BoundaryEpsilon float64
}

// ParamsFromConfig builds step parameters from a loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Mass:            cfg.Derived.Mass,
		SmoothingRadius: cfg.Fluid.SmoothingRadius,
		TargetDensity:   cfg.Fluid.TargetDensity,
		PressureFactor:  cfg.Fluid.PressureFactor,
		ViscosityFactor: cfg.Fluid.ViscosityFactor,
		Gravity:         cfg.Fluid.Gravity,
		DensityScale:    cfg.Fluid.DensityScale,
		ParticleRadius:  cfg.Fluid.ParticleRadius,
		Tank: Tank{
			Origin: r2.Vec{X: cfg.Tank.X, Y: cfg.Tank.Y},
			Extent: r2.Vec{X: cfg.Derived.TankW, Y: cfg.Derived.TankH},
		},
		DT:              cfg.Integration.DT,
		Restitution:     cfg.Integration.Restitution,
		BoundaryEpsilon: cfg.Integration.BoundaryEpsilon,
	}
}

// SetupFromConfig builds spawn and worker settings from a loaded config.
func SetupFromConfig(cfg *config.Config) Setup {
	return Setup{
		Count:             cfg.Spawn.Count,
		Layout:            cfg.Spawn.Layout,
		Seed:              cfg.Spawn.Seed,
		Workers:           cfg.Parallel.Workers,
		ParallelThreshold: cfg.Parallel.Threshold,
	}
}

// Validate checks the geometric and physical invariants.
func (p Params) Validate() error {
	if p.SmoothingRadius <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidRadius, p.SmoothingRadius)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidMass, p.Mass)
	}
	if err := config.CheckBoundary(p.Tank.Extent.X, p.Tank.Extent.Y, p.ParticleRadius,
		p.BoundaryEpsilon, p.Restitution); err != nil {
		return err
	}
	if p.DT <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidDT, p.DT)
	}
	return nil
}

// Interaction describes the external cursor force. Strength 0 disables it;
// positive pushes particles away from Pos, negative pulls them in.
type Interaction struct {
	Pos      r2.Vec
	Radius   float64
	Strength float64
	Response float64 // scales the relaxation force; 0 means 1
}

// Active reports whether the interaction contributes any force.
func (in Interaction) Active() bool {
	return in.Strength != 0 && in.Radius > 0
}
