package sph

import "gonum.org/v1/gonum/spatial/r2"

// Particles is the structure-of-arrays particle set. Every slice has the same length,
// fixed until the owning Simulation is reset.
type Particles struct {
	Position       []r2.Vec
	Predicted      []r2.Vec // Position + Velocity*dt, used for neighbor queries
	Velocity       []r2.Vec
	Density        []float64
	Pressure       []float64 // scalar pressure derived from Density
	PressureForce  []r2.Vec
	ViscosityForce []r2.Vec
	ExternalForce  []r2.Vec
	CellHash       []int64
}

// NewParticles allocates a zeroed particle set of size n.
func NewParticles(n int) *Particles {
	return &Particles{
		Position:       make([]r2.Vec, n),
		Predicted:      make([]r2.Vec, n),
		Velocity:       make([]r2.Vec, n),
		Density:        make([]float64, n),
		Pressure:       make([]float64, n),
		PressureForce:  make([]r2.Vec, n),
		ViscosityForce: make([]r2.Vec, n),
		ExternalForce:  make([]r2.Vec, n),
		CellHash:       make([]int64, n),
	}
}

// Len returns the particle count.
func (p *Particles) Len() int { return len(p.Position) }

// View is a read-only copy of one particle's state for renderers.
type View struct {
	Position      r2.Vec
	Velocity      r2.Vec
	Density       float64
	Pressure      float64
	PressureForce r2.Vec
}

// At returns a snapshot of particle i.
func (p *Particles) At(i int) View {
	return View{
		Position:      p.Position[i],
		Velocity:      p.Velocity[i],
		Density:       p.Density[i],
		Pressure:      p.Pressure[i],
		PressureForce: p.PressureForce[i],
	}
}
