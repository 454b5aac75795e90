// Package palette maps particle field values to colours. It has no graphics
// dependency so every viewer can share it.
package palette

import (
	"fmt"
	"image/color"
	"math"
)

// Scene colours.
var (
	Background = color.RGBA{R: 26, G: 35, B: 54, A: 255}
	Water      = color.RGBA{R: 43, G: 106, B: 240, A: 255}
	Tank       = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	Cursor     = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	Arrow      = color.RGBA{R: 250, G: 200, B: 80, A: 255}

	// Over- and under-target ends of the density and pressure scales
	More = color.RGBA{R: 235, G: 70, B: 55, A: 255}
	Less = color.RGBA{R: 60, G: 130, B: 245, A: 255}

	densityNeutral  = color.RGBA{R: 15, G: 15, B: 20, A: 255}
	pressureNeutral = color.RGBA{R: 250, G: 250, B: 250, A: 255}
)

// speedStops is the slow-to-fast gradient.
var speedStops = []color.RGBA{
	{R: 25, G: 70, B: 200, A: 255},
	{R: 40, G: 200, B: 220, A: 255},
	{R: 240, G: 240, B: 120, A: 255},
	{R: 250, G: 110, B: 40, A: 255},
}

// Mode selects which field colours the particles.
type Mode int

const (
	ModeSpeed Mode = iota
	ModeDensity
	ModePressure
	numModes
)

var modeNames = [numModes]string{"speed", "density", "pressure"}

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next cycles to the following mode.
func (m Mode) Next() Mode { return (m + 1) % numModes }

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown colour mode %q", s)
}

// Lerp blends a toward b by t, clamped to [0, 1].
func Lerp(a, b color.RGBA, t float64) color.RGBA {
	t = Clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// Clamp01 restricts t to [0, 1]. NaN maps to 0.
func Clamp01(t float64) float64 {
	if !(t > 0) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// DensityBand is the half-width of the neutral band around the target density,
// as a fraction of the target.
const DensityBand = 0.03

// Density colours a density relative to target. Values within the neutral band are
// dark; denser particles shade toward More on a log scale reaching full colour at max,
// sparser ones toward Less reaching full colour at zero.
func Density(density, target, max float64) color.RGBA {
	if target <= 0 {
		return Lerp(densityNeutral, More, logRatio(density+1, max+1))
	}
	ref := DensityBand * target
	diff := density - target
	switch {
	case math.Abs(diff) < ref:
		return densityNeutral
	case diff > 0:
		span := max - target - ref
		if span <= 0 {
			return More
		}
		return Lerp(densityNeutral, More, logRatio(diff-ref+1, span+1))
	default:
		return Lerp(Less, densityNeutral, logRatio(density+1, target-ref+1))
	}
}

// Pressure colours a signed pressure. |p| < band is neutral white; beyond that the
// colour moves toward More (positive) or Less (negative) on a log scale reaching full
// colour at |p| = full.
func Pressure(pressure, band, full float64) color.RGBA {
	mag := math.Abs(pressure)
	if mag < band || band <= 0 {
		return pressureNeutral
	}
	t := 1.0
	if full > band {
		t = math.Log(mag/band) / math.Log(full/band)
	}
	if pressure > 0 {
		return Lerp(pressureNeutral, More, t)
	}
	return Lerp(pressureNeutral, Less, t)
}

// Speed colours a speed on the slow-to-fast gradient, saturating at max.
func Speed(speed, max float64) color.RGBA {
	if max <= 0 {
		return speedStops[0]
	}
	return Gradient(speedStops, speed/max)
}

// Gradient samples evenly spaced colour stops at t in [0, 1].
func Gradient(stops []color.RGBA, t float64) color.RGBA {
	if len(stops) == 0 {
		return color.RGBA{}
	}
	if len(stops) == 1 {
		return stops[0]
	}
	pos := Clamp01(t) * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	return Lerp(stops[i], stops[i+1], pos-float64(i))
}

// logRatio returns log(x)/log(full) clamped to [0, 1]; both arguments are >= 1 in use.
func logRatio(x, full float64) float64 {
	if full <= 1 {
		return 1
	}
	return Clamp01(math.Log(x) / math.Log(full))
}
