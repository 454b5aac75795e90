package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Overlay IDs.
const (
	OverlayForces      OverlayID = "forces"
	OverlayVelocity    OverlayID = "velocity"
	OverlaySmoothing   OverlayID = "smoothing_radius"
	OverlayHashGrid    OverlayID = "hash_grid"
	OverlayEnergyGraph OverlayID = "energy_graph"
	OverlayPerf        OverlayID = "perf"
	OverlayFluidPanel  OverlayID = "fluid_panel"
)

// Overlay categories.
const (
	CategoryVisual = "visual"
	CategoryDebug  = "debug"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // 0 = no key
	KeyLabel    string // e.g. "F"
	Category    string
	Exclusive   []OverlayID // disabled when this one is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the tank overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayForces,
		Name:        "Pressure Forces",
		Description: "Arrow per particle along its pressure force",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    CategoryVisual,
		Exclusive:   []OverlayID{OverlayVelocity},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayVelocity,
		Name:        "Velocities",
		Description: "Arrow per particle along its velocity",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    CategoryVisual,
		Exclusive:   []OverlayID{OverlayForces},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlaySmoothing,
		Name:        "Smoothing Radius",
		Description: "Kernel support ring around the cursor",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    CategoryVisual,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayFluidPanel,
		Name:        "Fluid Panel",
		Description: "Density, energy and probe readout",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Category:    CategoryVisual,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayEnergyGraph,
		Name:        "Energy Graph",
		Description: "Kinetic energy history",
		Key:         rl.KeyE,
		KeyLabel:    "E",
		Category:    CategoryDebug,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayHashGrid,
		Name:        "Hash Grid",
		Description: "Spatial hash cells, one smoothing radius wide",
		Key:         rl.KeyX,
		KeyLabel:    "X",
		Category:    CategoryDebug,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Step Timing",
		Description: "Per-phase step timing",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    CategoryDebug,
	})
}

// Register adds an overlay to the registry, initially disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key, if any.
// Returns the overlay ID, its new state and whether a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}
