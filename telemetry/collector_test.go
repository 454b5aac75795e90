package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphtank/sph"
)

func TestCollector_ShouldFlush(t *testing.T) {
	// 1 second windows at 0.25s per step = 4 ticks
	c := NewCollector(1.0, 0.25)

	tests := []struct {
		tick int64
		want bool
	}{
		{0, false},
		{3, false},
		{4, true},
		{10, true},
	}
	for _, tt := range tests {
		if got := c.ShouldFlush(tt.tick); got != tt.want {
			t.Errorf("ShouldFlush(%d) = %v, want %v", tt.tick, got, tt.want)
		}
	}

	// Window shorter than a step still flushes every tick
	c = NewCollector(0.001, 0.25)
	if !c.ShouldFlush(1) {
		t.Error("expected flush every tick for sub-step window")
	}
}

func TestCollector_Flush(t *testing.T) {
	c := NewCollector(1.0, 0.5)

	c.RecordStep(sph.StepStats{WallHits: 3, Guards: 1}, 12)
	c.RecordStep(sph.StepStats{WallHits: 2}, 7)

	p := sph.NewParticles(4)
	copy(p.Density, []float64{1, 2, 3, 4})
	p.Velocity[0] = r2.Vec{X: 3, Y: 4}
	p.Velocity[2] = r2.Vec{X: -1}

	stats := c.Flush(2, p, 2, 2)

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 2 {
		t.Errorf("window = [%d, %d], want [0, 2]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.SimTimeSec != 1.0 {
		t.Errorf("sim time = %v, want 1", stats.SimTimeSec)
	}
	if stats.Steps != 2 || stats.WallHits != 5 || stats.Guards != 1 {
		t.Errorf("counters = %d/%d/%d, want 2/5/1", stats.Steps, stats.WallHits, stats.Guards)
	}
	if stats.Particles != 4 {
		t.Errorf("particles = %d, want 4", stats.Particles)
	}
	if math.Abs(stats.DensityMean-2.5) > 1e-12 {
		t.Errorf("density mean = %v, want 2.5", stats.DensityMean)
	}
	if math.Abs(stats.DensityError-0.25) > 1e-12 {
		t.Errorf("density error = %v, want 0.25", stats.DensityError)
	}
	// 0.5 * 2 * (25 + 1)
	if math.Abs(stats.KineticEnergy-26) > 1e-12 {
		t.Errorf("kinetic energy = %v, want 26", stats.KineticEnergy)
	}
	if stats.MaxSpeed != 5 {
		t.Errorf("max speed = %v, want 5", stats.MaxSpeed)
	}
	if stats.PeakSpeed != 12 {
		t.Errorf("peak speed = %v, want 12", stats.PeakSpeed)
	}

	// Counters reset, window advances
	next := c.Flush(4, p, 2, 0)
	if next.WindowStartTick != 2 || next.Steps != 0 || next.WallHits != 0 {
		t.Errorf("expected reset window, got %+v", next)
	}
	if next.DensityError != 0 {
		t.Errorf("density error without target = %v, want 0", next.DensityError)
	}
	if next.PeakSpeed != 5 {
		t.Errorf("peak speed after reset = %v, want current max 5", next.PeakSpeed)
	}
}
