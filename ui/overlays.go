package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Overlay IDs.
const (
	OverlayDebugLines    OverlayID = "debug_lines"
	OverlayTargets       OverlayID = "targets"
	OverlayThreatRadius  OverlayID = "threat_radius"
	OverlayContactRadius OverlayID = "contact_radius"
	OverlayArenaBounds   OverlayID = "arena_bounds"
	OverlayStats         OverlayID = "stats"
	OverlayPerf          OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // 0 = no key
	KeyLabel    string // e.g. "Space", "T"
	Category    string
	Requires    OverlayID   // only drawn while this overlay is also enabled
	Exclusive   []OverlayID // disabled when this one is enabled
	Default     bool
}

var defaultOverlays = []OverlayDescriptor{
	{
		ID:          OverlayDebugLines,
		Name:        "Debug Lines",
		Description: "Forward, right and future-position lines for every agent",
		Key:         rl.KeySpace,
		KeyLabel:    "Space",
		Category:    "debug",
	},
	{
		ID:          OverlayTargets,
		Name:        "Pursuit Targets",
		Description: "Line from each tracking predator to its prey",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "debug",
		Requires:    OverlayDebugLines,
		Default:     true,
	},
	{
		ID:          OverlayThreatRadius,
		Name:        "Threat Radius",
		Description: "Distance at which prey start evading",
		Key:         rl.KeyR,
		KeyLabel:    "R",
		Category:    "debug",
	},
	{
		ID:          OverlayContactRadius,
		Name:        "Contact Radius",
		Description: "Distance at which a predator converts prey",
		Key:         rl.KeyC,
		KeyLabel:    "C",
		Category:    "debug",
	},
	{
		ID:          OverlayArenaBounds,
		Name:        "Arena Bounds",
		Description: "Square outside which agents steer home",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "visual",
		Default:     true,
	},
	{
		ID:          OverlayStats,
		Name:        "Window Stats",
		Description: "Last telemetry window",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Category:    "panels",
		Exclusive:   []OverlayID{OverlayPerf},
	},
	{
		ID:          OverlayPerf,
		Name:        "Tick Timing",
		Description: "Per-phase tick timing",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "panels",
		Exclusive:   []OverlayID{OverlayStats},
	},
}

// OverlayRegistry holds the viewer's overlay toggles. A single registry is
// shared by everything drawn in a frame, so toggles apply to every agent at
// once.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the viewer's overlays.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	for _, desc := range defaultOverlays {
		r.Register(desc)
	}
	return r
}

// Register adds an overlay, enabled if its descriptor says so.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.SetEnabled(desc.ID, desc.Default)
}

// SetEnabled sets an overlay's state. Enabling one turns off its exclusive
// partners.
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

// Toggle flips an overlay and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	on := !r.enabled[id]
	r.SetEnabled(id, on)
	return r.enabled[id]
}

// IsEnabled reports the overlay's own toggle.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// IsActive reports whether an overlay is enabled and so is every overlay it
// requires.
func (r *OverlayRegistry) IsActive(id OverlayID) bool {
	if !r.enabled[id] {
		return false
	}
	if req := r.byID[id].Requires; req != "" {
		return r.IsActive(req)
	}
	return true
}

// All returns all overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns the overlays in category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns the distinct categories in first-seen order.
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

// HandleKeyPress toggles the overlay bound to key. It returns the overlay,
// its new state, and whether any overlay matched.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}
