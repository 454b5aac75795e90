package sph

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphtank/config"
)

// Spawn returns n initial positions inside tank for particles of the given radius.
//
// "random" scatters particles uniformly over the region where they do not touch a wall.
// "grid" lays out evenly spaced rows, centred in the tank, with the column count chosen
// from the tank aspect ratio and the spacing as large as the interior allows.
func Spawn(n int, layout string, tank Tank, radius float64, rng *rand.Rand) ([]r2.Vec, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	if tank.Extent.X <= 2*radius || tank.Extent.Y <= 2*radius {
		return nil, fmt.Errorf("%w: tank %gx%g, radius %g",
			ErrTankTooSmall, tank.Extent.X, tank.Extent.Y, radius)
	}

	// Interior: where a particle centre can sit without touching a wall
	lo := r2.Vec{X: tank.Origin.X + radius, Y: tank.Origin.Y + radius}
	inner := r2.Vec{X: tank.Extent.X - 2*radius, Y: tank.Extent.Y - 2*radius}

	switch layout {
	case config.LayoutRandom:
		return spawnRandom(n, lo, inner, rng), nil
	case config.LayoutGrid:
		return spawnGrid(n, tank.Center(), inner), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLayout, layout)
	}
}

func spawnRandom(n int, lo, inner r2.Vec, rng *rand.Rand) []r2.Vec {
	out := make([]r2.Vec, n)
	for i := range out {
		// Float64 is in [0,1), keep off the far wall as well
		out[i] = r2.Vec{
			X: lo.X + rng.Float64()*inner.X*0.999,
			Y: lo.Y + rng.Float64()*inner.Y*0.999,
		}
	}
	return out
}

func spawnGrid(n int, center, inner r2.Vec) []r2.Vec {
	aspect := inner.X / inner.Y
	cols := int(math.Ceil(math.Sqrt(float64(n) * aspect)))
	if cols < 1 {
		cols = 1
	}
	if cols > n {
		cols = n
	}
	rows := (n + cols - 1) / cols

	// Spacing so the block spans at most the interior on both axes
	spacing := math.Min(inner.X/float64(cols), inner.Y/float64(rows))

	origin := r2.Vec{
		X: center.X - float64(cols-1)*spacing/2,
		Y: center.Y - float64(rows-1)*spacing/2,
	}

	out := make([]r2.Vec, n)
	for i := range out {
		r, c := i/cols, i%cols
		out[i] = r2.Vec{
			X: origin.X + float64(c)*spacing,
			Y: origin.Y + float64(r)*spacing,
		}
	}
	return out
}
