package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/sphtank/config"
	"github.com/pthm-cable/sphtank/sph"
	"github.com/pthm-cable/sphtank/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := []float64{8000, 40, 0.5}

	norm := pv.Normalize(raw)
	for i, v := range norm {
		assert.GreaterOrEqual(t, v, 0.0, pv.Specs[i].Name)
		assert.LessOrEqual(t, v, 1.0, pv.Specs[i].Name)
	}
	back := pv.Denormalize(norm)
	for i := range raw {
		assert.InDelta(t, raw[i], back[i], 1e-9)
	}
}

func TestClamp(t *testing.T) {
	pv := NewParamVector()
	got := pv.Clamp([]float64{-10, 1e6, 0.5})
	assert.Equal(t, pv.Specs[0].Min, got[0])
	assert.Equal(t, pv.Specs[1].Max, got[1])
	assert.Equal(t, 0.5, got[2])
}

func TestApplyAndExtract(t *testing.T) {
	cfg, err := config.Defaults()
	require.NoError(t, err)

	pv := NewParamVector()
	pv.ApplyToConfig(cfg, []float64{2500, 12, 0.8})

	assert.Equal(t, 2500.0, cfg.Fluid.PressureFactor)
	assert.Equal(t, 12.0, cfg.Fluid.ViscosityFactor)
	assert.Equal(t, 0.8, cfg.Integration.Restitution)
	assert.Equal(t, []float64{2500, 12, 0.8}, pv.ExtractFromConfig(cfg))
}

func TestScore(t *testing.T) {
	assert.Equal(t, blowupFitness, score(Detail{Blowup: true, Error: 0.01}))
	assert.InDelta(t, 0.1+0.5*0.2+0.1*3, score(Detail{Error: 0.1, Spread: 0.2, Motion: 3}), 1e-12)
}

func TestSummariseSkipsWarmup(t *testing.T) {
	cfg, err := config.Defaults()
	require.NoError(t, err)
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, cfg, 10, []int64{1})
	require.NotSame(t, cfg, fe.copyConfig())

	target := cfg.Fluid.TargetDensity
	windows := []telemetry.WindowStats{
		{DensityError: 5, DensityStd: 5},
		{DensityError: 5, DensityStd: 5},
		{DensityError: -0.1, DensityStd: 0.1 * target},
		{DensityError: 0.3, DensityStd: 0.3 * target},
	}

	d := summarise(windows, sph.ParamsFromConfig(cfg), 100)
	assert.False(t, d.Blowup)
	assert.InDelta(t, 0.2, d.Error, 1e-12)
	assert.InDelta(t, 0.2, d.Spread, 1e-12)

	assert.True(t, summarise(nil, sph.ParamsFromConfig(cfg), 100).Blowup)
	assert.False(t, math.IsNaN(summarise(windows[:1], sph.ParamsFromConfig(cfg), 100).Error))
}

func TestShortRunScoresWorst(t *testing.T) {
	cfg, err := config.Defaults()
	require.NoError(t, err)
	params := sph.ParamsFromConfig(cfg)

	short := summarise(make([]telemetry.WindowStats, warmupWindows), params, 100)
	assert.True(t, short.TooShort)
	assert.False(t, short.Blowup)
	assert.Equal(t, blowupFitness, score(short))

	settled := summarise(make([]telemetry.WindowStats, warmupWindows+1), params, 100)
	assert.False(t, settled.TooShort)
	assert.Less(t, score(settled), blowupFitness)
}

func TestMinTicks(t *testing.T) {
	cfg, err := config.Defaults()
	require.NoError(t, err)
	cfg.Spawn.Count = 40
	pv := NewParamVector()

	fe := NewFitnessEvaluator(pv, cfg, 0, []int64{1})
	minTicks := fe.MinTicks(cfg.Integration.DT)
	assert.Equal(t, int64(warmupWindows+1)*int64(1.0/cfg.Integration.DT), minTicks)

	// One window short of measurable: every candidate must score worst
	fe = NewFitnessEvaluator(pv, cfg, minTicks-1, []int64{1})
	assert.Equal(t, blowupFitness, fe.Evaluate(pv.ExtractFromConfig(cfg)))
	assert.True(t, fe.LastDetail().TooShort)
}

func TestEvaluateShortRun(t *testing.T) {
	if testing.Short() {
		t.Skip("runs a simulation")
	}
	cfg, err := config.Defaults()
	require.NoError(t, err)
	cfg.Spawn.Count = 60

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, cfg, 600, []int64{1, 2})
	fitness := fe.Evaluate(pv.ExtractFromConfig(cfg))

	assert.False(t, math.IsNaN(fitness))
	assert.GreaterOrEqual(t, fitness, 0.0)
	assert.LessOrEqual(t, fitness, blowupFitness)
}
