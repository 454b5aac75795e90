package main

import (
	"github.com/pthm-cable/sphtank/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of calibrated parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of calibrated parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pressure_factor", Path: "fluid.pressure_factor", Min: 500, Max: 30000},
			{Name: "viscosity_factor", Path: "fluid.viscosity_factor", Min: 0, Max: 200},
			{Name: "restitution", Path: "integration.restitution", Min: 0.1, Max: 1.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Fluid.PressureFactor = clamped[0]
	cfg.Fluid.ViscosityFactor = clamped[1]
	cfg.Integration.Restitution = clamped[2]
}

// ExtractFromConfig reads the current values from cfg, clamped into bounds so they
// can seed the search.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return pv.Clamp([]float64{
		cfg.Fluid.PressureFactor,
		cfg.Fluid.ViscosityFactor,
		cfg.Integration.Restitution,
	})
}
