package sph

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Field accumulators. Each one reads shared arrays and returns the value for a single
// particle or query point; callers write the result into that particle's own slot only.

// densityAt sums kernel weights from the candidate particles at pos, scaled by mass and
// the density scale. A particle located at pos contributes the kernel maximum.
func densityAt(pos r2.Vec, positions []r2.Vec, cands []int32, k Kernel, mass, scale float64, s *workerScratch) float64 {
	s.Dists = s.Dists[:0]
	for _, j := range cands {
		s.Dists = append(s.Dists, r2.Norm(r2.Sub(positions[j], pos)))
	}
	s.Weights = k.Weights(s.Weights, s.Dists)
	return floats.Sum(s.Weights) * mass * scale
}

// PressureFromDensity converts density to pressure with the signed convention:
// positive above the target density (push apart), negative below (pull together).
func PressureFromDensity(density, target, stiffness float64) float64 {
	return (density - target) * stiffness
}

// coincidentDir is the fallback unit direction from particle i toward particle j when
// the two share a position. It depends only on index order so paired forces stay
// opposite and results are reproducible.
func coincidentDir(i, j int) r2.Vec {
	if j > i {
		return r2.Vec{X: 1}
	}
	return r2.Vec{X: -1}
}

// pressureForce returns the symmetric pressure force on particle i:
//
//	sum_j mass * (p_i+p_j)/2 * Slope(d) / rho_j * unit(x_j - x_i)
//
// Slope is negative inside the support, so a positive shared pressure pushes i away from j.
func pressureForce(i int, positions []r2.Vec, densities, pressures []float64, cands []int32, k Kernel, mass float64, s *workerScratch) r2.Vec {
	var f r2.Vec
	pos := positions[i]
	h := k.Radius()
	for _, jj := range cands {
		j := int(jj)
		if j == i {
			continue
		}
		off := r2.Sub(positions[j], pos)
		d := r2.Norm(off)
		if d >= h {
			continue
		}

		var dir r2.Vec
		if d < minDistance {
			dir = coincidentDir(i, j)
			s.Guards++
		} else {
			dir = r2.Scale(1/d, off)
		}

		rhoJ := densities[j]
		if rhoJ < minDensity {
			rhoJ = minDensity
			s.Guards++
		}

		shared := (pressures[i] + pressures[j]) / 2
		f = r2.Add(f, r2.Scale(mass*shared*k.Slope(d)/rhoJ, dir))
	}
	return f
}

// viscosityForce pulls particle i's velocity toward its neighbors', weighted by proximity.
func viscosityForce(i int, positions, velocities []r2.Vec, cands []int32, k Kernel, factor float64) r2.Vec {
	if factor == 0 {
		return r2.Vec{}
	}
	var f r2.Vec
	pos := positions[i]
	vel := velocities[i]
	for _, jj := range cands {
		j := int(jj)
		if j == i {
			continue
		}
		w := k.Weight(r2.Norm(r2.Sub(positions[j], pos)))
		if w == 0 {
			continue
		}
		f = r2.Add(f, r2.Scale(w, r2.Sub(velocities[j], vel)))
	}
	return r2.Scale(factor, f)
}

// ExternalForce is the cursor interaction force on a particle at pos moving at vel.
// Inside the radius it relaxes the velocity toward Strength along the outward direction,
// with a linear falloff to zero at the edge. At the exact cursor position the direction
// is undefined and only the damping term remains.
func ExternalForce(pos, vel r2.Vec, in Interaction) r2.Vec {
	if !in.Active() {
		return r2.Vec{}
	}
	off := r2.Sub(pos, in.Pos)
	d := r2.Norm(off)
	if d >= in.Radius {
		return r2.Vec{}
	}

	var target r2.Vec
	if d >= minDistance {
		target = r2.Scale(in.Strength/d, off)
	}

	gain := in.Response
	if gain == 0 {
		gain = 1
	}
	falloff := 1 - d/in.Radius
	return r2.Scale(gain*falloff, r2.Sub(target, vel))
}
