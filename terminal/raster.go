// Package terminal draws the tank as ASCII art with termbox.
package terminal

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphtank/sph"
)

// Ramp orders glyphs from empty to crowded.
const Ramp = " .:-=+*#%@"

// Grid is a cols x rows raster of particle counts over the tank interior.
type Grid struct {
	Cols, Rows int
	Counts     []int
	Max        int
}

// Rasterize bins positions into a cols x rows grid spanning the tank. A position
// is counted when it lies inside the tank rectangle, edges included; positions on
// the far edges land in the last row or column and everything outside is skipped.
func Rasterize(positions []r2.Vec, tank sph.Tank, cols, rows int) Grid {
	g := Grid{Cols: max(cols, 1), Rows: max(rows, 1)}
	g.Counts = make([]int, g.Cols*g.Rows)
	if tank.Extent.X <= 0 || tank.Extent.Y <= 0 {
		return g
	}

	sx := float64(g.Cols) / tank.Extent.X
	sy := float64(g.Rows) / tank.Extent.Y
	for _, p := range positions {
		fx := (p.X - tank.Origin.X) * sx
		fy := (p.Y - tank.Origin.Y) * sy
		if !(fx >= 0 && fy >= 0 && fx <= float64(g.Cols) && fy <= float64(g.Rows)) {
			continue
		}
		cx := min(int(math.Floor(fx)), g.Cols-1)
		cy := min(int(math.Floor(fy)), g.Rows-1)
		idx := cy*g.Cols + cx
		g.Counts[idx]++
		g.Max = max(g.Max, g.Counts[idx])
	}
	return g
}

// Glyph maps the count in cell (x, y) onto Ramp relative to the busiest cell.
func (g Grid) Glyph(x, y int) rune {
	n := g.Counts[y*g.Cols+x]
	if n == 0 || g.Max == 0 {
		return rune(Ramp[0])
	}
	// Rounded up so non-empty cells never use the blank glyph
	idx := (n*(len(Ramp)-1) + g.Max - 1) / g.Max
	return rune(Ramp[min(idx, len(Ramp)-1)])
}

// Level returns the fill fraction of cell (x, y) in [0, 1].
func (g Grid) Level(x, y int) float64 {
	if g.Max == 0 {
		return 0
	}
	return float64(g.Counts[y*g.Cols+x]) / float64(g.Max)
}

// CellCenter maps a terminal cell back to tank coordinates.
func CellCenter(x, y, cols, rows int, tank sph.Tank) r2.Vec {
	return r2.Vec{
		X: tank.Origin.X + (float64(x)+0.5)*tank.Extent.X/float64(max(cols, 1)),
		Y: tank.Origin.Y + (float64(y)+0.5)*tank.Extent.Y/float64(max(rows, 1)),
	}
}
