package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphtank/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Particles      int
	Tick           int64
	SimTime        float64
	StepsPerUpdate int
	Substeps       int
	FPS            int32
	Paused         bool
	Gravity        float64
	ColorMode      string
	Layout         string
	Zoom           float32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD along the top of the screen, above the tank.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Layout: %s | Colour: %s | Gravity: %.0f",
			data.Particles, data.Layout, data.ColorMode, data.Gravity),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | t = %.2fs | Speed: %dx%d | FPS: %d | Zoom: %.1fx",
			data.Tick, data.SimTime, data.StepsPerUpdate, data.Substeps, data.FPS, data.Zoom),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED (N to step)"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-18, 12, rl.Gray)
}

// PerfPanel renders the step phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel, phases in step order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	width := int32(290)
	height := r.Theme.Padding*2 + 36 + int32(len(telemetry.Phases))*14
	r.DrawPanel(p.x, p.y, width, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s  p90 %s  (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond),
		stats.P90TickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
