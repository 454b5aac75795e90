// Package sph implements the smoothed particle hydrodynamics core: kernels,
// the per-step spatial hash, field accumulators, tank collision and the step loop.
package sph

import "math"

// Kernel is the quadratic smoothing kernel (h-d)^2 / V with compact support h.
// V is chosen so the kernel integrates to 1 over the plane for any h.
type Kernel struct {
	h      float64
	volume float64
}

// NewKernel builds a kernel for smoothing radius h. h must be positive.
func NewKernel(h float64) Kernel {
	// Integral of (h-r)^2 * 2*pi*r dr over [0,h]
	return Kernel{h: h, volume: math.Pi * h * h * h * h / 6}
}

// Radius returns the support radius.
func (k Kernel) Radius() float64 { return k.h }

// Weight returns the kernel weight at distance d. Zero for d >= h.
func (k Kernel) Weight(d float64) float64 {
	if d >= k.h {
		return 0
	}
	if d < 0 {
		d = 0
	}
	v := k.h - d
	return v * v / k.volume
}

// Slope returns dWeight/dd at distance d. Negative inside the support, zero for d >= h,
// so force contributions fade out exactly where neighbors stop being counted.
func (k Kernel) Slope(d float64) float64 {
	if d >= k.h {
		return 0
	}
	if d < 0 {
		d = 0
	}
	return 2 * (d - k.h) / k.volume
}

// Max returns the weight at d = 0.
func (k Kernel) Max() float64 {
	return k.h * k.h / k.volume
}

// Weights evaluates Weight elementwise, writing into dst (grown if needed).
func (k Kernel) Weights(dst, ds []float64) []float64 {
	dst = resize(dst, len(ds))
	for i, d := range ds {
		dst[i] = k.Weight(d)
	}
	return dst
}

// Slopes evaluates Slope elementwise, writing into dst (grown if needed).
func (k Kernel) Slopes(dst, ds []float64) []float64 {
	dst = resize(dst, len(ds))
	for i, d := range ds {
		dst[i] = k.Slope(d)
	}
	return dst
}

func resize(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}
