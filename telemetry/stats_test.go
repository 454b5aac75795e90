package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDensityStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, std, p10, p50, p90 := ComputeDensityStats(values)

	// Mean should be 0.55
	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}

	// Sample std: sqrt(0.825 / 9)
	if math.Abs(std-0.30277) > 0.001 {
		t.Errorf("std = %v, want ~0.3028", std)
	}

	// P10 should be around 0.19
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}

	// P50 should be around 0.55
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}

	// P90 should be around 0.91
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}

	// Input must not be reordered
	if values[0] != 0.1 || values[9] != 1.0 {
		t.Error("input slice was modified")
	}
}

func TestComputeDensityStatsSmall(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDensityStats([]float64{})
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}

	mean, std, _, p50, _ = ComputeDensityStats([]float64{0.4})
	if mean != 0.4 || p50 != 0.4 {
		t.Errorf("single value: mean = %v, p50 = %v, want 0.4", mean, p50)
	}
	if std != 0 {
		t.Errorf("single value: std = %v, want 0", std)
	}
}
