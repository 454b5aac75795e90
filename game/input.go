package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphtank/sph"
	"github.com/pthm-cable/sphtank/ui"
)

// gravityStep is the change per Up/Down key press, in px/s^2.
const gravityStep = 50

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.toggleLayout()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.colorMode = g.colorMode.Next()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot(nil)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}

	if rl.IsKeyPressed(rl.KeyUp) {
		g.params.Gravity += gravityStep
		slog.Info("gravity changed", "gravity", g.params.Gravity)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		g.params.Gravity -= gravityStep
		slog.Info("gravity changed", "gravity", g.params.Gravity)
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < maxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	g.handleOverlayKeys()
	g.handleCameraInput()
	g.handleMouseForce()
}

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.camera.Resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Zoom toward the cursor with the mouse wheel
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		g.camera.ZoomAt(mouse.X, mouse.Y, 1+wheel*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Middle-drag pans
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// mouseWorld returns the cursor in tank coordinates.
func (g *Game) mouseWorld() r2.Vec {
	mouse := rl.GetMousePosition()
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	return r2.Vec{X: float64(wx), Y: float64(wy)}
}

// overControls reports whether the cursor is over the controls panel.
func (g *Game) overControls() bool {
	mouse := rl.GetMousePosition()
	return g.controls.Contains(mouse.X, mouse.Y, g.controls.Height(g.overlays, g.tunables()))
}

// handleMouseForce turns the mouse buttons into the external force for the next
// steps: left pushes fluid away from the cursor, right pulls it in.
func (g *Game) handleMouseForce() {
	g.interaction = sph.Interaction{}
	if g.overControls() {
		return
	}

	var sign float64
	switch {
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		sign = 1
	case rl.IsMouseButtonDown(rl.MouseButtonRight):
		sign = -1
	default:
		return
	}

	g.interaction = g.pushInteraction(g.mouseWorld(), sign)
}

// pushInteraction builds the cursor force at pos; sign +1 pushes, -1 pulls.
func (g *Game) pushInteraction(pos r2.Vec, sign float64) sph.Interaction {
	return sph.Interaction{
		Pos:      pos,
		Radius:   g.cfg.Interaction.Radius,
		Strength: sign * g.pushStrength,
		Response: g.cfg.Interaction.Response,
	}
}

// tunables lists the parameters exposed as sliders. Pointers go straight into
// game-owned state, which the next step reads.
func (g *Game) tunables() []ui.Tunable {
	return []ui.Tunable{
		{Label: "Gravity", Value: &g.params.Gravity, Min: -1000, Max: 1000, Format: "%.0f"},
		{Label: "Pressure factor", Value: &g.params.PressureFactor, Min: 0, Max: 30000, Format: "%.0f"},
		{Label: "Viscosity factor", Value: &g.params.ViscosityFactor, Min: 0, Max: 200, Format: "%.1f"},
		{Label: "Target density", Value: &g.params.TargetDensity, Min: 0, Max: 2, Format: "%.3f"},
		{Label: "Smoothing radius", Value: &g.params.SmoothingRadius, Min: 2 * g.params.ParticleRadius, Max: 100, Format: "%.1f"},
		{Label: "Push strength", Value: &g.pushStrength, Min: 0, Max: 1000, Format: "%.0f"},
	}
}
