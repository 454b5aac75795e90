package sph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// KineticEnergy returns sum(0.5 * mass * |v|^2) over all particles.
func KineticEnergy(p *Particles, mass float64) float64 {
	var total float64
	for _, v := range p.Velocity {
		total += r2.Norm2(v)
	}
	return 0.5 * mass * total
}

// MaxSpeed returns the largest particle speed, or 0 for an empty set. It runs every
// step and every frame, so it compares squared speeds and does not allocate.
func MaxSpeed(p *Particles) float64 {
	var top float64
	for _, v := range p.Velocity {
		top = max(top, r2.Norm2(v))
	}
	return math.Sqrt(top)
}

// NetVelocity returns the summed velocity of all particles (total momentum / mass).
func NetVelocity(p *Particles) r2.Vec {
	var sum r2.Vec
	for _, v := range p.Velocity {
		sum = r2.Add(sum, v)
	}
	return sum
}

// Finite reports whether every position and velocity is a finite number.
func Finite(p *Particles) bool {
	for i := range p.Position {
		pos, vel := p.Position[i], p.Velocity[i]
		for _, x := range [4]float64{pos.X, pos.Y, vel.X, vel.Y} {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}
