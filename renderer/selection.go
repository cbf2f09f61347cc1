package renderer

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outbreak/telemetry"
	"github.com/pthm-cable/outbreak/ui"
)

// pickRadius is the click tolerance in screen pixels.
const pickRadius = 12.0

// pickAgent returns the agent closest to (x, z) within maxDist world units.
func pickAgent(agents []telemetry.AgentState, x, z, maxDist float64) (telemetry.AgentState, bool) {
	var (
		best  telemetry.AgentState
		found bool
	)
	bestDist := maxDist
	for _, a := range agents {
		d := math.Hypot(a.X-x, a.Z-z) - a.Radius
		if d <= bestDist {
			best, bestDist, found = a, d, true
		}
	}
	return best, found
}

// selected returns the selected agent if it is still in the snapshot.
// Conversion gives the agent a new ID, so a caught prey drops the selection.
func (v *Viewer) selected() (telemetry.AgentState, bool) {
	if !v.hasSelection {
		return telemetry.AgentState{}, false
	}
	for _, a := range v.snapshot.Agents {
		if a.ID == v.selectedID {
			return a, true
		}
	}
	v.hasSelection = false
	return telemetry.AgentState{}, false
}

// drawSelection circles the selected agent and always shows its debug lines.
func (v *Viewer) drawSelection() {
	a, ok := v.selected()
	if !ok {
		return
	}
	sx, sy := v.camera.WorldToScreen(float32(a.X), float32(a.Z))
	r := float32(a.Radius)*v.camera.Scale()*2 + 4
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, rl.Yellow)

	if v.overlays.IsActive(ui.OverlayDebugLines) {
		return
	}
	for _, seg := range a.DebugSegments() {
		x1, y1 := v.camera.WorldToScreen(float32(seg.X1), float32(seg.Z1))
		x2, y2 := v.camera.WorldToScreen(float32(seg.X2), float32(seg.Z2))
		rl.DrawLineEx(rl.Vector2{X: x1, Y: y1}, rl.Vector2{X: x2, Y: y2}, 1.5, segmentColor(seg))
	}
}

// drawInfoPanel shows the selected agent's state.
func (v *Viewer) drawInfoPanel() {
	a, ok := v.selected()
	if !ok {
		return
	}

	r := ui.NewRenderer()
	padding := r.Theme.Padding
	width := int32(220)
	height := r.Theme.LineHeight*7 + padding*2
	x := int32(v.screenWidth) - width - 10
	y := int32(v.screenHeight) - height - 40

	r.DrawPanel(x, y, width, height)
	x += padding
	y += padding
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("%s #%d", a.Kind, a.ID))
	y = r.DrawLabelValue(x, y, "Position", fmt.Sprintf("%.1f, %.1f", a.X, a.Z), width)
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%.2f", math.Hypot(a.VelX, a.VelZ)), width)
	y = r.DrawLabelValue(x, y, "Heading", fmt.Sprintf("%.0f deg", a.Heading), width)
	if a.Tracking {
		y = r.DrawLabelValue(x, y, "Target", fmt.Sprintf("%.1f, %.1f", a.TargetX, a.TargetZ), width)
		r.DrawLabelValue(x, y, "Distance", fmt.Sprintf("%.2f", math.Hypot(a.TargetX-a.X, a.TargetZ-a.Z)), width)
	}
}
