// Package ui provides a descriptor-driven UI system for the tank viewer.
// Panels are described by metadata so new readouts only need a getter.
package ui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText        WidgetType = iota // Plain text with format string
	WidgetBar                           // Progress bar [0, 1]
	WidgetCenteredBar                   // Bar growing from the middle of Range
	WidgetColorSwatch                   // Color preview square
	WidgetSection                       // Section header
	WidgetSpacer                        // Vertical spacing
)

// FieldRange defines the value range for bar widgets.
type FieldRange struct {
	Min float32
	Max float32
}

// DefaultRange returns a [0, 1] range.
func DefaultRange() FieldRange {
	return FieldRange{Min: 0, Max: 1}
}

// CenteredRange returns a [-1, +1] range.
func CenteredRange() FieldRange {
	return FieldRange{Min: -1, Max: 1}
}

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	Label       string
	Widget      WidgetType
	Format      string // Printf format for numeric text (e.g., "%.2f")
	Range       FieldRange
	Visible     func(any) bool     // nil = always visible
	Getter      func(any) float32  // numeric fields
	TextGetter  func(any) string   // text fields
	ColorGetter func(any) rl.Color // color swatches
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	Title   string
	Fields  []FieldDescriptor
	Visible func(any) bool
}

// PanelDescriptor defines a complete panel layout.
type PanelDescriptor struct {
	Title    string
	Sections []SectionDescriptor
	Width    int32
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	GraphLine       rl.Color
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:         rl.Color{R: 14, G: 20, B: 34, A: 230},
		PanelBorder:     rl.Color{R: 60, G: 75, B: 100, A: 255},
		SectionHeader:   rl.Color{R: 250, G: 200, B: 80, A: 255},
		LabelColor:      rl.LightGray,
		ValueColor:      rl.RayWhite,
		BarBg:           rl.Color{R: 35, G: 40, B: 55, A: 255},
		BarFill:         rl.Color{R: 43, G: 106, B: 240, A: 255},
		BarFillNegative: rl.Color{R: 60, G: 130, B: 245, A: 255},
		BarFillPositive: rl.Color{R: 235, G: 70, B: 55, A: 255},
		GraphLine:       rl.Color{R: 80, G: 220, B: 120, A: 255},
		Padding:         10,
		LineHeight:      16,
		LabelWidth:      90,
		BarHeight:       12,
		FontSize:        12,
		HeaderFontSize:  14,
	}
}

// RL converts a palette colour to a raylib colour.
func RL(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
