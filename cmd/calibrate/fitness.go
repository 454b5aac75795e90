package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/sphtank/config"
	"github.com/pthm-cable/sphtank/sph"
	"github.com/pthm-cable/sphtank/telemetry"
)

// Fitness component weights.
const (
	weightError  = 1.0
	weightSpread = 0.5
	weightMotion = 0.1

	// blowupFitness is returned when the run produces non-finite state.
	blowupFitness = 1e3

	// warmupWindows are skipped while the initial layout collapses.
	warmupWindows = 2

	// motionRefSpeed is the speed (px/s) whose kinetic energy scores a motion of 1.
	motionRefSpeed = 10.0
)

// FitnessEvaluator runs headless simulations and scores how well the fluid holds
// its target density once settled.
type FitnessEvaluator struct {
	params      *ParamVector
	base        *config.Config
	ticks       int64
	seeds       []int64
	statsWindow float64

	mu         sync.Mutex
	lastDetail Detail
}

// Detail breaks a fitness value into its components, averaged over seeds.
type Detail struct {
	Error  float64 // mean |density error|
	Spread float64 // mean density std / target
	Motion float64 // mean kinetic energy per particle, relative to motionRefSpeed
	Blowup bool
	// TooShort is set when the run ended before any window after warmup
	TooShort bool
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, base *config.Config, ticks int64, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		base:        base,
		ticks:       ticks,
		seeds:       seeds,
		statsWindow: 1.0,
	}
}

// MinTicks is the shortest run that yields at least one window after warmup.
func (fe *FitnessEvaluator) MinTicks(dt float64) int64 {
	windowTicks := max(int64(fe.statsWindow/dt), 1)
	return int64(warmupWindows+1) * windowTicks
}

// LastDetail returns the components of the most recent evaluation.
func (fe *FitnessEvaluator) LastDetail() Detail {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDetail
}

// Evaluate computes fitness for raw parameter values (lower = better). Seeds run
// in parallel, each simulation single-threaded.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	details := make([]Detail, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			details[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var avg Detail
	for _, d := range details {
		avg.Error += d.Error
		avg.Spread += d.Spread
		avg.Motion += d.Motion
		avg.Blowup = avg.Blowup || d.Blowup
		avg.TooShort = avg.TooShort || d.TooShort
	}
	n := float64(len(details))
	avg.Error /= n
	avg.Spread /= n
	avg.Motion /= n

	fe.mu.Lock()
	fe.lastDetail = avg
	fe.mu.Unlock()

	return score(avg)
}

// score combines the components into the scalar fitness. A run with nothing to
// measure scores as badly as a blow-up.
func score(d Detail) float64 {
	if d.Blowup || d.TooShort {
		return blowupFitness
	}
	return weightError*d.Error + weightSpread*d.Spread + weightMotion*d.Motion
}

// runSimulation executes one headless run and summarises its settled windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) Detail {
	params := sph.ParamsFromConfig(cfg)
	setup := sph.SetupFromConfig(cfg)
	setup.Seed = seed
	setup.Workers = 1

	sim, err := sph.New(params, setup)
	if err != nil {
		return Detail{Blowup: true}
	}
	defer sim.Close()

	collector := telemetry.NewCollector(fe.statsWindow, params.DT)
	var windows []telemetry.WindowStats
	for sim.Tick() < fe.ticks {
		stats := sim.Step(params, sph.Interaction{})
		collector.RecordStep(stats, 0)
		if collector.ShouldFlush(sim.Tick()) {
			if !sph.Finite(sim.Particles) {
				return Detail{Blowup: true}
			}
			windows = append(windows, collector.Flush(sim.Tick(), sim.Particles, params.Mass, params.TargetDensity))
		}
	}
	return summarise(windows, params, sim.Len())
}

// summarise averages the windows after warmup.
func summarise(windows []telemetry.WindowStats, params sph.Params, n int) Detail {
	if len(windows) <= warmupWindows {
		return Detail{Blowup: len(windows) == 0, TooShort: true}
	}
	valid := windows[warmupWindows:]

	refEnergy := 0.5 * params.Mass * motionRefSpeed * motionRefSpeed * float64(n)
	var d Detail
	for _, w := range valid {
		d.Error += math.Abs(w.DensityError)
		if params.TargetDensity > 0 {
			d.Spread += w.DensityStd / params.TargetDensity
		}
		if refEnergy > 0 {
			d.Motion += w.KineticEnergy / refEnergy
		}
		if math.IsNaN(w.KineticEnergy) || math.IsInf(w.KineticEnergy, 0) {
			d.Blowup = true
		}
	}
	k := float64(len(valid))
	d.Error /= k
	d.Spread /= k
	d.Motion /= k
	return d
}

// copyConfig returns a private copy of the base config. Config holds only value
// fields, so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.base
	return &cfg
}
