package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles int `csv:"particles"`

	// Density distribution (sampled at window end)
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`

	// Relative deviation of the mean from the target density
	DensityError float64 `csv:"density_error"`

	// Motion (sampled at window end, except PeakSpeed)
	KineticEnergy float64 `csv:"kinetic_energy"`
	MaxSpeed      float64 `csv:"max_speed"`
	PeakSpeed     float64 `csv:"peak_speed"` // highest max speed seen during the window

	// Events during window
	Steps    int `csv:"steps"`
	WallHits int `csv:"wall_hits"`
	Guards   int `csv:"guards"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDensityStats calculates mean, std, and percentiles from density values.
// std is the sample standard deviation; it is 0 for fewer than two values.
func ComputeDensityStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p10", s.DensityP10),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("density_error", s.DensityError),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("peak_speed", s.PeakSpeed),
		slog.Int("steps", s.Steps),
		slog.Int("wall_hits", s.WallHits),
		slog.Int("guards", s.Guards),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"density_mean", s.DensityMean,
		"density_std", s.DensityStd,
		"density_p10", s.DensityP10,
		"density_p50", s.DensityP50,
		"density_p90", s.DensityP90,
		"density_error", s.DensityError,
		"kinetic_energy", s.KineticEnergy,
		"max_speed", s.MaxSpeed,
		"peak_speed", s.PeakSpeed,
		"steps", s.Steps,
		"wall_hits", s.WallHits,
		"guards", s.Guards,
	)
}
