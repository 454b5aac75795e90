package game

import (
	"image/color"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphtank/palette"
	"github.com/pthm-cable/sphtank/sph"
	"github.com/pthm-cable/sphtank/ui"
)

const controlsLegend = "Space pause | N step | R reset | L layout | C colour | Up/Down gravity | , . speed | " +
	"S snapshot | Tab controls | LMB push | RMB pull | Wheel zoom | MMB pan"

// Draw renders the game state.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ui.RL(palette.Background))

	rl.BeginMode2D(g.camera2D())

	start := time.Now()
	g.drawParticles()
	g.renderPerf.Record(passParticles, time.Since(start))

	start = time.Now()
	g.drawWorldOverlays()
	g.drawTank()
	g.renderPerf.Record(passOverlays, time.Since(start))

	rl.EndMode2D()

	start = time.Now()
	g.drawUI()
	g.renderPerf.Record(passUI, time.Since(start))

	rl.EndDrawing()
}

// camera2D converts the camera into raylib's transform. Offset and target make the
// mapping identical to camera.WorldToScreen.
func (g *Game) camera2D() rl.Camera2D {
	return rl.Camera2D{
		Offset: rl.Vector2{X: g.camera.ViewportW / 2, Y: g.camera.ViewportH / 2},
		Target: rl.Vector2{X: g.camera.X, Y: g.camera.Y},
		Zoom:   g.camera.Zoom,
	}
}

func (g *Game) drawTank() {
	t := g.params.Tank
	rl.DrawRectangleLinesEx(rl.Rectangle{
		X:      float32(t.Origin.X),
		Y:      float32(t.Origin.Y),
		Width:  float32(t.Extent.X),
		Height: float32(t.Extent.Y),
	}, 2/g.camera.Zoom, ui.RL(palette.Tank))
}

func (g *Game) drawParticles() {
	p := g.sim.Particles
	radius := float32(g.params.ParticleRadius)
	for i := 0; i < p.Len(); i++ {
		x, y := float32(p.Position[i].X), float32(p.Position[i].Y)
		if !g.camera.IsVisible(x, y, radius) {
			continue
		}
		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, radius, ui.RL(g.particleColor(i)))
	}
}

// particleColor shades particle i by the selected colour mode.
func (g *Game) particleColor(i int) color.RGBA {
	p := g.sim.Particles
	target := g.params.TargetDensity
	switch g.colorMode {
	case palette.ModeDensity:
		return palette.Density(p.Density[i], target, 2*target)
	case palette.ModePressure:
		full := target * g.params.PressureFactor
		return palette.Pressure(p.Pressure[i], palette.DensityBand*full, full)
	default:
		v := p.Velocity[i]
		return palette.Speed(math.Hypot(v.X, v.Y), g.speedScale())
	}
}

// speedScale is the speed at which the speed gradient saturates.
func (g *Game) speedScale() float64 {
	return math.Max(g.pushStrength, 1)
}

func (g *Game) drawUI() {
	g.hud.Draw(ui.HUDData{
		Title:          "SPH Tank",
		Particles:      g.sim.Len(),
		Tick:           g.sim.Tick(),
		SimTime:        g.sim.Time(),
		StepsPerUpdate: g.stepsPerUpdate,
		Substeps:       g.substeps,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
		Gravity:        g.params.Gravity,
		ColorMode:      g.colorMode.String(),
		Layout:         g.setup.Layout,
		Zoom:           g.camera.Zoom,
	})

	sw := int32(g.screenWidth)
	sh := int32(g.screenHeight)

	if g.overlays.IsEnabled(ui.OverlayFluidPanel) {
		data := g.fluidPanelData()
		g.fluidPanel.Draw(sw-260, 10, &data)
	}

	if g.overlays.IsEnabled(ui.OverlayEnergyGraph) {
		values := g.energyHistory.Values(nil)
		lo, hi := g.energyHistory.Range()
		g.uiRenderer.DrawGraph(sw-530, 10, 260, 90, "Kinetic energy", values, lo, hi)
	}

	leftY := int32(110)
	if g.controls.IsVisible() {
		g.controls.SetPosition(10, leftY)
		tunables := g.tunables()
		res := g.controls.Draw(g.overlays, tunables, g.paused)
		if res.Pause {
			g.paused = !g.paused
		}
		if res.Reset {
			g.reset()
		}
		leftY += g.controls.Height(g.overlays, tunables) + 10
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.SetPosition(10, leftY)
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	g.hud.DrawControls(sh, controlsLegend)
}

// fluidPanelData gathers the live readout, including the density probe at the cursor.
func (g *Game) fluidPanelData() ui.FluidPanelData {
	p := g.sim.Particles
	last := g.sim.LastStats()

	var mean float64
	for _, rho := range p.Density {
		mean += rho
	}
	if n := p.Len(); n > 0 {
		mean /= float64(n)
	}

	data := ui.FluidPanelData{
		DensityMean:   mean,
		TargetDensity: g.params.TargetDensity,
		KineticEnergy: sph.KineticEnergy(p, g.params.Mass),
		MaxSpeed:      sph.MaxSpeed(p),
		Guards:        last.Guards,
		WallHits:      last.WallHits,
	}
	if g.params.TargetDensity > 0 {
		data.DensityError = (mean - g.params.TargetDensity) / g.params.TargetDensity
	}

	if probe := g.mouseWorld(); g.params.Tank.Contains(probe) {
		rho := g.sim.DensityAt(probe, g.params)
		data.ProbeActive = true
		data.ProbeDensity = rho
		data.ProbeColor = ui.RL(palette.Density(rho, g.params.TargetDensity, 2*g.params.TargetDensity))
	}
	return data
}
