package sph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphtank/config"
)

// smallParams is a unit-scale setup: mass 1, target 0 so pressure == density.
func smallParams() Params {
	return Params{
		Mass:            1,
		SmoothingRadius: 10,
		TargetDensity:   0,
		PressureFactor:  1,
		DensityScale:    1,
		ParticleRadius:  1,
		Tank:            Tank{Extent: r2.Vec{X: 200, Y: 200}},
		DT:              0.1,
		Restitution:     DefaultRestitution,
		BoundaryEpsilon: DefaultBoundaryEpsilon,
	}
}

func defaultParams(t *testing.T) (Params, *config.Config) {
	t.Helper()
	cfg, err := config.Defaults()
	require.NoError(t, err)
	return ParamsFromConfig(cfg), cfg
}

func newSim(t *testing.T, params Params, setup Setup) *Simulation {
	t.Helper()
	s, err := New(params, setup)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNewRejectsInvalidSetup(t *testing.T) {
	base := smallParams()
	setup := Setup{Count: 10, Layout: config.LayoutGrid, Seed: 1}

	tests := []struct {
		name   string
		mutate func(*Params, *Setup)
		want   error
	}{
		{"zero count", func(_ *Params, s *Setup) { s.Count = 0 }, ErrInvalidCount},
		{"zero radius", func(p *Params, _ *Setup) { p.SmoothingRadius = 0 }, ErrInvalidRadius},
		{"negative mass", func(p *Params, _ *Setup) { p.Mass = -1 }, ErrInvalidMass},
		{"tank too small", func(p *Params, _ *Setup) { p.ParticleRadius = 100 }, ErrTankTooSmall},
		{"zero dt", func(p *Params, _ *Setup) { p.DT = 0 }, ErrInvalidDT},
		{"zero epsilon", func(p *Params, _ *Setup) { p.BoundaryEpsilon = 0 }, ErrInvalidEpsilon},
		{"negative epsilon", func(p *Params, _ *Setup) { p.BoundaryEpsilon = -0.1 }, ErrInvalidEpsilon},
		{"restitution above one", func(p *Params, _ *Setup) { p.Restitution = 1.5 }, ErrInvalidRestitution},
		{"negative restitution", func(p *Params, _ *Setup) { p.Restitution = -0.2 }, ErrInvalidRestitution},
		{"tank within epsilon of contact", func(p *Params, _ *Setup) {
			p.Tank.Extent = r2.Vec{X: 2.0015, Y: 200}
			p.ParticleRadius = 1
			p.BoundaryEpsilon = 0.001
		}, ErrTankTooSmall},
		{"bad layout", func(_ *Params, s *Setup) { s.Layout = "spiral" }, ErrInvalidLayout},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, s := base, setup
			tc.mutate(&p, &s)
			_, err := New(p, s)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInitialFieldsComputed(t *testing.T) {
	params, _ := defaultParams(t)
	s := newSim(t, params, Setup{Count: 200, Layout: config.LayoutGrid, Seed: 1})

	for i := 0; i < s.Len(); i++ {
		assert.Greater(t, s.Particles.Density[i], 0.0)
		assert.Equal(t, r2.Vec{}, s.Particles.Velocity[i])
	}
	assert.Equal(t, int64(0), s.Tick())
}

func TestSingleParticleDensityIsSelfTerm(t *testing.T) {
	params := smallParams()
	params.Mass = 2
	params.DensityScale = 3
	s := newSim(t, params, Setup{Count: 1, Layout: config.LayoutGrid, Seed: 1})

	want := NewKernel(params.SmoothingRadius).Max() * 2 * 3
	assert.InDelta(t, want, s.Particles.Density[0], 1e-15)
}

func TestTwoParticlesAtHalfRadiusSeparate(t *testing.T) {
	params := smallParams()
	s := newSim(t, params, Setup{Count: 2, Layout: config.LayoutGrid, Seed: 1})

	h := params.SmoothingRadius
	s.Particles.Position[0] = r2.Vec{X: 100, Y: 100}
	s.Particles.Position[1] = r2.Vec{X: 100 + h/2, Y: 100}
	before := r2.Norm(r2.Sub(s.Particles.Position[1], s.Particles.Position[0]))

	s.Step(params, Interaction{})

	after := r2.Norm(r2.Sub(s.Particles.Position[1], s.Particles.Position[0]))
	assert.Greater(t, after, before)
	assert.Less(t, s.Particles.Velocity[0].X, 0.0)
	assert.Greater(t, s.Particles.Velocity[1].X, 0.0)
	assert.Greater(t, s.Particles.Density[0], params.TargetDensity)
}

func TestEquilibriumHasNoSpuriousForces(t *testing.T) {
	params, _ := defaultParams(t)
	params.Gravity = 0
	params.PressureFactor = 0
	s := newSim(t, params, Setup{Count: 400, Layout: config.LayoutGrid, Seed: 1})

	s.Step(params, Interaction{})

	for i, v := range s.Particles.Velocity {
		require.InDelta(t, 0, r2.Norm(v), 1e-12, "particle %d", i)
	}
	assert.Equal(t, r2.Vec{}, NetVelocity(s.Particles))
}

func TestStepKeepsParticlesInTank(t *testing.T) {
	params, _ := defaultParams(t)
	s := newSim(t, params, Setup{Count: 500, Layout: config.LayoutRandom, Seed: 9})

	in := Interaction{Pos: params.Tank.Center(), Radius: 100, Strength: 300, Response: 8}
	for step := 0; step < 60; step++ {
		s.Step(params, in)
	}

	require.True(t, Finite(s.Particles))
	c, half := params.Tank.Center(), params.Tank.HalfExtent()
	for i, p := range s.Particles.Position {
		assert.Less(t, abs(p.X-c.X)+params.ParticleRadius, half.X, "particle %d x", i)
		assert.Less(t, abs(p.Y-c.Y)+params.ParticleRadius, half.Y, "particle %d y", i)
	}
	assert.Equal(t, int64(60), s.Tick())
	assert.InDelta(t, 60*params.DT, s.Time(), 1e-9)
}

func TestParallelMatchesSerial(t *testing.T) {
	params, _ := defaultParams(t)
	setup := Setup{Count: 700, Layout: config.LayoutRandom, Seed: 42}

	serialSetup := setup
	serialSetup.Workers = 1
	parallelSetup := setup
	parallelSetup.Workers = 4
	parallelSetup.ParallelThreshold = 1

	serial := newSim(t, params, serialSetup)
	parallel := newSim(t, params, parallelSetup)

	in := Interaction{Pos: r2.Vec{X: 300, Y: 300}, Radius: 120, Strength: -200, Response: 4}
	for step := 0; step < 10; step++ {
		a := serial.Step(params, in)
		b := parallel.Step(params, in)
		require.Equal(t, a, b, "step %d stats", step)
	}

	assert.Equal(t, serial.Particles.Position, parallel.Particles.Position)
	assert.Equal(t, serial.Particles.Velocity, parallel.Particles.Velocity)
	assert.Equal(t, serial.Particles.Density, parallel.Particles.Density)
}

func TestZeroDensityScaleStaysFinite(t *testing.T) {
	params := smallParams()
	params.DensityScale = 0
	params.Gravity = 50
	s := newSim(t, params, Setup{Count: 30, Layout: config.LayoutGrid, Seed: 1})

	stats := s.Step(params, Interaction{})
	assert.Greater(t, stats.Guards, 0)
	assert.True(t, Finite(s.Particles))
}

func TestDensityAtMatchesParticleDensity(t *testing.T) {
	params, _ := defaultParams(t)
	s := newSim(t, params, Setup{Count: 300, Layout: config.LayoutGrid, Seed: 1})

	for _, i := range []int{0, 17, 150, 299} {
		got := s.DensityAt(s.Particles.Predicted[i], params)
		assert.InDelta(t, s.Particles.Density[i], got, 1e-12)
	}
	assert.Zero(t, s.DensityAt(r2.Vec{X: -5000, Y: -5000}, params))
}

func TestResetChangesCount(t *testing.T) {
	params := smallParams()
	s := newSim(t, params, Setup{Count: 10, Layout: config.LayoutGrid, Seed: 1})
	s.Step(params, Interaction{})

	require.NoError(t, s.Reset(params, Setup{Count: 25, Layout: config.LayoutRandom, Seed: 2}))
	assert.Equal(t, 25, s.Len())
	assert.Len(t, s.Particles.CellHash, 25)
	assert.Equal(t, int64(0), s.Tick())

	assert.Error(t, s.Reset(params, Setup{Count: 0, Layout: config.LayoutGrid}))
}

func TestPhaseHookOrder(t *testing.T) {
	params := smallParams()
	s := newSim(t, params, Setup{Count: 5, Layout: config.LayoutGrid, Seed: 1})

	var phases []string
	s.PhaseHook = func(phase string) { phases = append(phases, phase) }
	s.Step(params, Interaction{})

	assert.Equal(t, []string{PhasePredict, PhaseIndex, PhaseDensity, PhaseForces, PhaseIntegrate}, phases)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestRestoreResumesState(t *testing.T) {
	params := smallParams()
	s := newSim(t, params, Setup{Count: 3, Layout: config.LayoutGrid, Seed: 1})

	positions := []r2.Vec{{X: 50, Y: 50}, {X: 55, Y: 50}, {X: 150, Y: 150}}
	velocities := []r2.Vec{{X: 1}, {Y: -2}, {}}
	require.NoError(t, s.Restore(params, Setup{}, positions, velocities, 120, 12))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, positions, s.Particles.Position)
	assert.Equal(t, velocities, s.Particles.Velocity)
	assert.Equal(t, int64(120), s.Tick())
	assert.Equal(t, 12.0, s.Time())
	assert.Greater(t, s.Particles.Density[0], s.Particles.Density[2], "clustered pair is denser")

	assert.ErrorIs(t, s.Restore(params, Setup{}, nil, nil, 0, 0), ErrInvalidCount)
	assert.Error(t, s.Restore(params, Setup{}, positions, velocities[:1], 0, 0))
}

func TestSetupFromConfig(t *testing.T) {
	_, cfg := defaultParams(t)
	cfg.Spawn.Seed = 9
	cfg.Parallel.Workers = 3

	setup := SetupFromConfig(cfg)
	assert.Equal(t, cfg.Spawn.Count, setup.Count)
	assert.Equal(t, config.LayoutGrid, setup.Layout)
	assert.Equal(t, int64(9), setup.Seed)
	assert.Equal(t, 3, setup.Workers)
	assert.Equal(t, cfg.Parallel.Threshold, setup.ParallelThreshold)

	s := newSim(t, ParamsFromConfig(cfg), setup)
	assert.Equal(t, cfg.Spawn.Count, s.Len())
}
