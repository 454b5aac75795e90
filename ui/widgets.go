package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a progress bar for values in rng.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, rng FieldRange, width int32) int32 {
	frac := float32(0)
	if rng.Max > rng.Min {
		frac = (value - rng.Min) / (rng.Max - rng.Min)
	}
	frac = min(max(frac, 0), 1)

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*frac), r.Theme.BarHeight, r.Theme.BarFill)
	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

// DrawCenteredBar draws a bar growing left or right from the middle, scaled so the
// larger of |min| and |max| fills half the bar.
func (r *Renderer) DrawCenteredBar(x, y int32, label string, value float32, rng FieldRange, width int32) int32 {
	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	centerX := barX + barWidth/2
	rl.DrawLine(centerX, y+2, centerX, y+2+r.Theme.BarHeight, rl.Color{R: 90, G: 90, B: 100, A: 255})

	limit := float32(math.Max(math.Abs(float64(rng.Min)), math.Abs(float64(rng.Max))))
	frac := float32(0)
	if limit > 0 {
		frac = min(float32(math.Abs(float64(value)))/limit, 1)
	}
	fillWidth := int32(float32(barWidth/2) * frac)

	fillX, barColor := centerX, r.Theme.BarFillPositive
	if value < 0 {
		fillX, barColor = centerX-fillWidth, r.Theme.BarFillNegative
	}
	rl.DrawRectangle(fillX, y+2, fillWidth, r.Theme.BarHeight, barColor)
	rl.DrawText(fmt.Sprintf("%+.3f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

// DrawColorSwatch draws a color swatch.
func (r *Renderer) DrawColorSwatch(x, y int32, label string, color rl.Color) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(x+r.Theme.LabelWidth, y+1, 12, 12, color)
	return y + r.Theme.LineHeight
}

// DrawField renders a field based on its descriptor.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	value := float32(0)
	if fd.Getter != nil {
		value = fd.Getter(data)
	}

	switch fd.Widget {
	case WidgetText:
		text := ""
		if fd.TextGetter != nil {
			text = fd.TextGetter(data)
		} else if fd.Getter != nil {
			text = fmt.Sprintf(fd.Format, value)
		}
		return r.DrawLabelValue(x, y, fd.Label, text)
	case WidgetBar:
		return r.DrawBar(x, y, fd.Label, value, fd.Range, width)
	case WidgetCenteredBar:
		return r.DrawCenteredBar(x, y, fd.Label, value, fd.Range, width)
	case WidgetColorSwatch:
		c := rl.White
		if fd.ColorGetter != nil {
			c = fd.ColorGetter(data)
		}
		return r.DrawColorSwatch(x, y, fd.Label, c)
	case WidgetSection:
		return r.DrawSectionHeader(x, y, fd.Label)
	case WidgetSpacer:
		return y + 6
	}
	return y
}

// fieldHeight mirrors the advance DrawField makes for a widget.
func (r *Renderer) fieldHeight(fd FieldDescriptor) int32 {
	switch fd.Widget {
	case WidgetBar, WidgetCenteredBar:
		return r.Theme.LineHeight + 2
	case WidgetSpacer:
		return 6
	default:
		return r.Theme.LineHeight
	}
}

// DrawSection renders a section with header and fields.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if sd.Visible != nil && !sd.Visible(data) {
		return y
	}
	if sd.Title != "" {
		y = r.DrawSectionHeader(x, y, sd.Title)
	}
	for _, fd := range sd.Fields {
		if fd.Visible != nil && !fd.Visible(data) {
			continue
		}
		y = r.DrawField(x, y, fd, data, width)
	}
	return y + 4
}

// PanelHeight measures a panel so its background can be drawn before its content.
func (r *Renderer) PanelHeight(pd PanelDescriptor, data any) int32 {
	h := r.Theme.Padding * 2
	if pd.Title != "" {
		h += r.Theme.LineHeight + 4
	}
	for _, sd := range pd.Sections {
		if sd.Visible != nil && !sd.Visible(data) {
			continue
		}
		if sd.Title != "" {
			h += r.Theme.LineHeight
		}
		for _, fd := range sd.Fields {
			if fd.Visible == nil || fd.Visible(data) {
				h += r.fieldHeight(fd)
			}
		}
		h += 4
	}
	return h
}

// DrawPanelDescriptor draws a whole panel at (x, y) and returns its bottom edge.
func (r *Renderer) DrawPanelDescriptor(x, y int32, pd PanelDescriptor, data any) int32 {
	height := r.PanelHeight(pd, data)
	r.DrawPanel(x, y, pd.Width, height)

	cx := x + r.Theme.Padding
	cy := y + r.Theme.Padding
	inner := pd.Width - 2*r.Theme.Padding
	if pd.Title != "" {
		rl.DrawText(pd.Title, cx, cy, 16, rl.White)
		cy += r.Theme.LineHeight + 4
	}
	for _, sd := range pd.Sections {
		cy = r.DrawSection(cx, cy, sd, data, inner)
	}
	return y + height
}

// DrawGraph plots values left to right inside a panel, scaled between lo and hi.
func (r *Renderer) DrawGraph(x, y, width, height int32, title string, values []float64, lo, hi float64) {
	r.DrawPanel(x, y, width, height)
	rl.DrawText(title, x+4, y+3, r.Theme.FontSize, r.Theme.LabelColor)
	if len(values) < 2 {
		return
	}
	if hi <= lo {
		hi = lo + 1
	}

	top := float32(y + r.Theme.LineHeight + 2)
	plotH := float32(height) - (top - float32(y)) - 4
	plotW := float32(width - 8)
	step := plotW / float32(len(values)-1)

	point := func(i int) rl.Vector2 {
		t := float32((values[i] - lo) / (hi - lo))
		return rl.Vector2{
			X: float32(x+4) + float32(i)*step,
			Y: top + plotH*(1-t),
		}
	}
	prev := point(0)
	for i := 1; i < len(values); i++ {
		cur := point(i)
		rl.DrawLineV(prev, cur, r.Theme.GraphLine)
		prev = cur
	}

	rl.DrawText(fmt.Sprintf("%.3g", values[len(values)-1]), x+width-60, y+3, r.Theme.FontSize, r.Theme.ValueColor)
}
