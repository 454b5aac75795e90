package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FluidPanelData is the live readout of the particle set.
type FluidPanelData struct {
	DensityMean   float64
	DensityError  float64 // (mean - target) / target
	TargetDensity float64
	KineticEnergy float64
	MaxSpeed      float64
	Guards        int
	WallHits      int

	ProbeActive  bool
	ProbeDensity float64
	ProbeColor   rl.Color
}

func fluidData(data any) *FluidPanelData { return data.(*FluidPanelData) }

// FluidPanel shows density, energy and the cursor probe.
type FluidPanel struct {
	renderer *Renderer
	layout   PanelDescriptor
}

// NewFluidPanel creates the panel.
func NewFluidPanel() *FluidPanel {
	return &FluidPanel{
		renderer: NewRenderer(),
		layout:   fluidLayout(),
	}
}

// Draw renders the panel at (x, y) and returns its bottom edge.
func (f *FluidPanel) Draw(x, y int32, data *FluidPanelData) int32 {
	return f.renderer.DrawPanelDescriptor(x, y, f.layout, data)
}

func fluidLayout() PanelDescriptor {
	return PanelDescriptor{
		Title: "Fluid",
		Width: 250,
		Sections: []SectionDescriptor{
			{
				Title: "Density",
				Fields: []FieldDescriptor{
					{
						Label:  "Mean",
						Widget: WidgetText,
						TextGetter: func(d any) string {
							fd := fluidData(d)
							return fmt.Sprintf("%.4f / %.4f", fd.DensityMean, fd.TargetDensity)
						},
					},
					{
						Label:  "Error",
						Widget: WidgetCenteredBar,
						Range:  FieldRange{Min: -0.5, Max: 0.5},
						Getter: func(d any) float32 { return float32(fluidData(d).DensityError) },
					},
				},
			},
			{
				Title: "Motion",
				Fields: []FieldDescriptor{
					{
						Label:  "Kinetic",
						Widget: WidgetText,
						Format: "%.4g",
						Getter: func(d any) float32 { return float32(fluidData(d).KineticEnergy) },
					},
					{
						Label:  "Max speed",
						Widget: WidgetText,
						Format: "%.1f px/s",
						Getter: func(d any) float32 { return float32(fluidData(d).MaxSpeed) },
					},
					{
						Label:  "Wall hits",
						Widget: WidgetText,
						TextGetter: func(d any) string {
							return fmt.Sprintf("%d", fluidData(d).WallHits)
						},
					},
					{
						Label:   "Guards",
						Widget:  WidgetText,
						Visible: func(d any) bool { return fluidData(d).Guards > 0 },
						TextGetter: func(d any) string {
							return fmt.Sprintf("%d", fluidData(d).Guards)
						},
					},
				},
			},
			{
				Title:   "Probe",
				Visible: func(d any) bool { return fluidData(d).ProbeActive },
				Fields: []FieldDescriptor{
					{
						Label:  "Density",
						Widget: WidgetText,
						Format: "%.4f",
						Getter: func(d any) float32 { return float32(fluidData(d).ProbeDensity) },
					},
					{
						Label:       "Shade",
						Widget:      WidgetColorSwatch,
						ColorGetter: func(d any) rl.Color { return fluidData(d).ProbeColor },
					},
				},
			},
		},
	}
}
