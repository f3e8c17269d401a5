package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Scene overlays.
const (
	OverlayParticles OverlayID = "particles"
	OverlayBars      OverlayID = "bars"
	OverlayCurve     OverlayID = "curve"
	OverlayScale     OverlayID = "scale"
	OverlayInspector OverlayID = "inspector"
	OverlayPerf      OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // Keyboard key to toggle (0 = no key)
	KeyLabel    string // Key label for display (e.g., "B")
	Category    string // "scene" or "debug"
	Default     bool   // Enabled at startup
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
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
		ID:          OverlayParticles,
		Name:        "Impacts",
		Description: "Point cloud of particle impacts on the screen",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "scene",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayBars,
		Name:        "Bar Chart",
		Description: "Histogram of counts per bin",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "scene",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayCurve,
		Name:        "Intensity Curve",
		Description: "Theoretical intensity across the screen",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    "scene",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayScale,
		Name:        "Scale",
		Description: "Ruler under the screen in millimetres",
		Key:         rl.KeyS,
		KeyLabel:    "S",
		Category:    "scene",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayInspector,
		Name:        "Bin Inspector",
		Description: "Details of the bin under the cursor",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Category:    "debug",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Performance",
		Description: "Frame timing by phase",
		Key:         rl.KeyF3,
		KeyLabel:    "F3",
		Category:    "debug",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	if _, ok := r.byID[id]; ok {
		r.enabled[id] = enabled
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

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}
