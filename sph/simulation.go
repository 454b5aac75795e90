package sph

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Phase names reported to the PhaseHook.
const (
	PhasePredict   = "predict"
	PhaseIndex     = "index"
	PhaseDensity   = "density"
	PhaseForces    = "forces"
	PhaseIntegrate = "integrate"
)

// Setup describes how to (re)initialise a particle set.
type Setup struct {
	Count  int
	Layout string // config.LayoutRandom or config.LayoutGrid
	Seed   int64  // 0 = time-based

	Workers           int // 0 = GOMAXPROCS
	ParallelThreshold int // 0 = default
}

// StepStats summarises numerical events from one step.
type StepStats struct {
	Guards   int // coincident pairs or near-zero densities substituted
	WallHits int // particles clamped by the tank
}

// Simulation owns a particle set and advances it one step at a time.
// It is not safe for concurrent use; parameter changes happen between steps.
type Simulation struct {
	Particles *Particles

	// PhaseHook, if set, is called at the start of each step phase.
	PhaseHook func(phase string)

	kernel Kernel
	origin r2.Vec // cell grid origin (tank origin)
	index  Index
	pool   *workerPool

	tick    int64
	simTime float64
	last    StepStats
}

// New validates params, spawns setup.Count particles and computes their initial
// densities and pressures so renderers have data before the first step.
func New(params Params, setup Setup) (*Simulation, error) {
	s := &Simulation{}
	if err := s.Reset(params, setup); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset discards the particle set and spawns a new one. This is the only way N changes.
func (s *Simulation) Reset(params Params, setup Setup) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("sph: %w", err)
	}

	seed := setup.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	positions, err := Spawn(setup.Count, setup.Layout, params.Tank, params.ParticleRadius, rng)
	if err != nil {
		return fmt.Errorf("sph: %w", err)
	}

	s.load(params, setup, positions, nil)
	return nil
}

// Restore replaces the particle set with saved positions and velocities and resumes
// counting from tick and simTime. velocities may be nil for a set at rest.
func (s *Simulation) Restore(params Params, setup Setup, positions, velocities []r2.Vec, tick int64, simTime float64) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("sph: %w", err)
	}
	if len(positions) == 0 {
		return fmt.Errorf("sph: %w: got 0", ErrInvalidCount)
	}
	if velocities != nil && len(velocities) != len(positions) {
		return fmt.Errorf("sph: %d velocities for %d positions", len(velocities), len(positions))
	}

	s.load(params, setup, positions, velocities)
	s.tick = tick
	s.simTime = simTime
	return nil
}

func (s *Simulation) load(params Params, setup Setup, positions, velocities []r2.Vec) {
	if s.pool != nil {
		s.pool.stopWorkers()
	}

	s.Particles = NewParticles(len(positions))
	copy(s.Particles.Position, positions)
	copy(s.Particles.Velocity, velocities)
	s.pool = newWorkerPool(setup.Workers, setup.ParallelThreshold)
	s.tick = 0
	s.simTime = 0
	s.last = StepStats{}

	// Initial field pass so renderers have densities before the first step
	s.updateFields(params, Interaction{})
}

// Close stops the worker goroutines.
func (s *Simulation) Close() {
	if s.pool != nil {
		s.pool.stopWorkers()
	}
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int64 { return s.tick }

// Time returns the simulated time in seconds.
func (s *Simulation) Time() float64 { return s.simTime }

// LastStats returns the stats of the most recent step.
func (s *Simulation) LastStats() StepStats { return s.last }

// Len returns the particle count.
func (s *Simulation) Len() int { return s.Particles.Len() }

func (s *Simulation) phase(name string) {
	if s.PhaseHook != nil {
		s.PhaseHook(name)
	}
}

// Step advances the simulation by params.DT. params must satisfy Validate; it is read
// once and held constant for the whole step, as is the interaction descriptor.
//
// Phases, each separated by a barrier:
//  1. predicted positions, cell hashes, index, densities and pressures
//  2. pressure, viscosity and external forces from the frozen densities
//  3. velocity and position integration, then tank collision
func (s *Simulation) Step(params Params, in Interaction) StepStats {
	s.pool.resetCounters()

	s.updateFields(params, in)

	s.phase(PhaseIntegrate)
	p := s.Particles
	dt := params.DT
	gravity := r2.Vec{Y: params.Gravity}
	s.pool.run(p.Len(), func(i0, i1 int, scratch *workerScratch) {
		for i := i0; i < i1; i++ {
			acc := r2.Add(gravity, r2.Add(p.ViscosityForce[i], p.ExternalForce[i]))
			if rho := p.Density[i]; rho >= minDensity {
				acc = r2.Add(acc, r2.Scale(1/rho, p.PressureForce[i]))
			} else {
				scratch.Guards++
			}

			vel := r2.Add(p.Velocity[i], r2.Scale(dt, acc))
			pos := r2.Add(p.Position[i], r2.Scale(dt, vel))

			var hit bool
			pos, vel, hit = Collide(pos, vel, params.Tank, params.ParticleRadius,
				params.Restitution, params.BoundaryEpsilon)
			if hit {
				scratch.WallHits++
			}

			p.Position[i] = pos
			p.Velocity[i] = vel
		}
	})

	guards, wallHits := s.pool.counters()
	s.last = StepStats{Guards: guards, WallHits: wallHits}
	s.tick++
	s.simTime += dt
	return s.last
}

// updateFields runs phases 1 and 2: everything up to, but not including, integration.
func (s *Simulation) updateFields(params Params, in Interaction) {
	p := s.Particles
	n := p.Len()
	dt := params.DT
	s.kernel = NewKernel(params.SmoothingRadius)
	s.origin = params.Tank.Origin
	k := s.kernel
	h := params.SmoothingRadius

	s.phase(PhasePredict)
	s.pool.run(n, func(i0, i1 int, _ *workerScratch) {
		for i := i0; i < i1; i++ {
			p.Predicted[i] = r2.Add(p.Position[i], r2.Scale(dt, p.Velocity[i]))
			p.CellHash[i] = HashOf(CellOf(p.Predicted[i], s.origin, h))
		}
	})

	s.phase(PhaseIndex)
	s.index.Build(p.CellHash)

	s.phase(PhaseDensity)
	s.pool.run(n, func(i0, i1 int, scratch *workerScratch) {
		for i := i0; i < i1; i++ {
			scratch.Candidates = s.index.AppendCandidates(scratch.Candidates[:0], p.CellHash[i])
			rho := densityAt(p.Predicted[i], p.Predicted, scratch.Candidates, k,
				params.Mass, params.DensityScale, scratch)
			p.Density[i] = rho
			p.Pressure[i] = PressureFromDensity(rho, params.TargetDensity, params.PressureFactor)
		}
	})

	s.phase(PhaseForces)
	s.pool.run(n, func(i0, i1 int, scratch *workerScratch) {
		for i := i0; i < i1; i++ {
			scratch.Candidates = s.index.AppendCandidates(scratch.Candidates[:0], p.CellHash[i])
			p.PressureForce[i] = pressureForce(i, p.Predicted, p.Density, p.Pressure,
				scratch.Candidates, k, params.Mass, scratch)
			p.ViscosityForce[i] = viscosityForce(i, p.Predicted, p.Velocity,
				scratch.Candidates, k, params.ViscosityFactor)
			p.ExternalForce[i] = ExternalForce(p.Predicted[i], p.Velocity[i], in)
		}
	})
}

// DensityAt samples the density field at an arbitrary point using the predicted
// positions, index and smoothing radius from the most recent step. Mass and density
// scale come from params.
func (s *Simulation) DensityAt(pos r2.Vec, params Params) float64 {
	h := s.kernel.Radius()
	hash := HashOf(CellOf(pos, s.origin, h))
	scratch := &workerScratch{}
	scratch.Candidates = s.index.AppendCandidates(nil, hash)
	return densityAt(pos, s.Particles.Predicted, scratch.Candidates, s.kernel,
		params.Mass, params.DensityScale, scratch)
}
