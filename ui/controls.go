package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel renders the overlay toggles and the live tunables.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies over the visible panel, so mouse
// input there can be kept away from the fluid.
func (c *ControlsPanel) Contains(px, py float32, height int32) bool {
	return c.visible &&
		px >= float32(c.x) && px <= float32(c.x+c.width) &&
		py >= float32(c.y) && py <= float32(c.y+height)
}

// Tunable is a float parameter exposed as a slider.
type Tunable struct {
	Label    string
	Value    *float64
	Min, Max float64
	Format   string
}

// Height returns the panel height for the given content.
func (c *ControlsPanel) Height(overlays *OverlayRegistry, tunables []Tunable) int32 {
	r := c.renderer
	lines := int32(0)
	for _, cat := range overlays.Categories() {
		lines += int32(len(overlays.ByCategory(cat))) + 1
	}
	return r.Theme.Padding*3 + (lines+2)*r.Theme.LineHeight + int32(len(tunables))*sliderPitch + buttonRow
}

const (
	sliderPitch = 36
	buttonRow   = 34
)

// ControlsResult reports which buttons were pressed this frame.
type ControlsResult struct {
	Changed bool // a tunable moved
	Reset   bool
	Pause   bool
}

// Draw renders the panel. Slider edits are written straight through the Tunable
// pointers; the caller rebuilds step parameters when Changed is set.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, tunables []Tunable, paused bool) ControlsResult {
	var res ControlsResult
	if !c.visible {
		return res
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	r.DrawPanel(c.x, c.y, c.width, c.Height(overlays, tunables))

	x := c.x + padding
	y := c.y + padding
	inner := c.width - padding*2

	rl.DrawText("Tunables", x, y, 16, rl.White)
	y += lineHeight + 4

	for _, t := range tunables {
		rl.DrawText(t.Label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner - 60), Height: 16}
		cur := float32(*t.Value)
		next := gui.SliderBar(bounds, "", "", cur, float32(t.Min), float32(t.Max))
		if next != cur {
			*t.Value = float64(next)
			res.Changed = true
		}
		rl.DrawText(fmt.Sprintf(t.Format, *t.Value), x+inner-55, y+2, r.Theme.FontSize, r.Theme.ValueColor)
		y += sliderPitch - 14
	}

	half := float32(inner-10) / 2
	pauseLabel := "Pause"
	if paused {
		pauseLabel = "Run"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: 24}, pauseLabel) {
		res.Pause = true
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + 10, Y: float32(y), Width: half, Height: 24}, "Reset") {
		res.Reset = true
	}
	y += buttonRow

	rl.DrawText("Overlays", x, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), inner)
			y += lineHeight
		}
	}
	return res
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case CategoryVisual:
		return "Visual"
	case CategoryDebug:
		return "Debug"
	default:
		return cat
	}
}
