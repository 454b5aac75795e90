// Package telemetry provides flow statistics, performance timing, bookmarks and snapshots.
package telemetry

import (
	"math"

	"github.com/pthm-cable/sphtank/sph"
)

// Collector accumulates step events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	steps     int
	wallHits  int
	guards    int
	peakSpeed float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per step (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordStep records one completed step and the fastest particle after it.
func (c *Collector) RecordStep(stats sph.StepStats, maxSpeed float64) {
	c.steps++
	c.wallHits += stats.WallHits
	c.guards += stats.Guards
	c.peakSpeed = math.Max(c.peakSpeed, maxSpeed)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Reset starts a fresh window at tick, dropping anything accumulated.
func (c *Collector) Reset(tick int64) {
	c.windowStartTick = tick
	c.steps = 0
	c.wallHits = 0
	c.guards = 0
	c.peakSpeed = 0
}

// Flush produces a WindowStats from the particle set at currentTick and resets
// counters for the next window.
func (c *Collector) Flush(currentTick int64, p *sph.Particles, mass, targetDensity float64) WindowStats {
	mean, std, p10, p50, p90 := ComputeDensityStats(p.Density)

	var densityErr float64
	if targetDensity > 0 {
		densityErr = (mean - targetDensity) / targetDensity
	}

	maxSpeed := sph.MaxSpeed(p)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Particles: p.Len(),

		DensityMean:  mean,
		DensityStd:   std,
		DensityP10:   p10,
		DensityP50:   p50,
		DensityP90:   p90,
		DensityError: densityErr,

		KineticEnergy: sph.KineticEnergy(p, mass),
		MaxSpeed:      maxSpeed,
		PeakSpeed:     math.Max(c.peakSpeed, maxSpeed),

		Steps:    c.steps,
		WallHits: c.wallHits,
		Guards:   c.guards,
	}

	c.Reset(currentTick)

	return stats
}
