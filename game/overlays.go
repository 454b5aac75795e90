package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphtank/palette"
	"github.com/pthm-cable/sphtank/ui"
)

// Arrow scaling for the force and velocity overlays, in seconds: an arrow shows
// how far the quantity would carry the particle in that time, capped at maxArrow.
const (
	forceArrowScale    = 0.002
	velocityArrowScale = 0.05
	maxArrow           = 40
)

// drawWorldOverlays renders the enabled overlays that live in tank coordinates.
func (g *Game) drawWorldOverlays() {
	if g.overlays.IsEnabled(ui.OverlayHashGrid) {
		g.drawHashGrid()
	}
	if g.overlays.IsEnabled(ui.OverlayForces) {
		g.drawForceArrows()
	}
	if g.overlays.IsEnabled(ui.OverlayVelocity) {
		g.drawVelocityArrows()
	}
	if g.overlays.IsEnabled(ui.OverlaySmoothing) {
		g.drawCursorRings()
	}
}

// drawHashGrid draws the cell boundaries used by the spatial hash.
func (g *Game) drawHashGrid() {
	t := g.params.Tank
	h := g.params.SmoothingRadius
	c := rl.Color{R: 255, G: 255, B: 255, A: 30}

	x0, y0 := float32(t.Origin.X), float32(t.Origin.Y)
	x1, y1 := float32(t.Origin.X+t.Extent.X), float32(t.Origin.Y+t.Extent.Y)
	for x := t.Origin.X; x <= t.Origin.X+t.Extent.X; x += h {
		rl.DrawLineV(rl.Vector2{X: float32(x), Y: y0}, rl.Vector2{X: float32(x), Y: y1}, c)
	}
	for y := t.Origin.Y; y <= t.Origin.Y+t.Extent.Y; y += h {
		rl.DrawLineV(rl.Vector2{X: x0, Y: float32(y)}, rl.Vector2{X: x1, Y: float32(y)}, c)
	}
}

// drawForceArrows draws each particle's pressure acceleration.
func (g *Game) drawForceArrows() {
	p := g.sim.Particles
	for i := 0; i < p.Len(); i++ {
		rho := p.Density[i]
		if rho <= 0 {
			continue
		}
		f := p.PressureForce[i]
		g.drawArrow(p.Position[i].X, p.Position[i].Y, f.X/rho, f.Y/rho, forceArrowScale)
	}
}

// drawVelocityArrows draws each particle's velocity.
func (g *Game) drawVelocityArrows() {
	p := g.sim.Particles
	for i := 0; i < p.Len(); i++ {
		v := p.Velocity[i]
		g.drawArrow(p.Position[i].X, p.Position[i].Y, v.X, v.Y, velocityArrowScale)
	}
}

func (g *Game) drawArrow(x, y, dx, dy, scale float64) {
	length := math.Hypot(dx, dy) * scale
	if length < 0.5 {
		return
	}
	if !g.camera.IsVisible(float32(x), float32(y), maxArrow) {
		return
	}
	k := math.Min(length, maxArrow) / length * scale
	rl.DrawLineV(
		rl.Vector2{X: float32(x), Y: float32(y)},
		rl.Vector2{X: float32(x + dx*k), Y: float32(y + dy*k)},
		ui.RL(palette.Arrow),
	)
}

// drawCursorRings shows the kernel support at the cursor, and the push radius while
// a mouse button is held.
func (g *Game) drawCursorRings() {
	m := g.mouseWorld()
	center := rl.Vector2{X: float32(m.X), Y: float32(m.Y)}
	rl.DrawCircleLinesV(center, float32(g.params.SmoothingRadius), ui.RL(palette.Cursor))

	if g.interaction.Active() {
		c := ui.RL(palette.More)
		if g.interaction.Strength < 0 {
			c = ui.RL(palette.Less)
		}
		rl.DrawCircleLinesV(center, float32(g.interaction.Radius), c)
	}
}
