package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outbreak/components"
	"github.com/pthm-cable/outbreak/steering"
	"github.com/pthm-cable/outbreak/telemetry"
	"github.com/pthm-cable/outbreak/ui"
)

var (
	backgroundColor = rl.Color{R: 34, G: 38, B: 42, A: 255}
	groundColor     = rl.Color{R: 196, G: 200, B: 184, A: 255}
	boundsColor     = rl.Color{R: 150, G: 60, B: 60, A: 200}
	obstacleColor   = rl.Color{R: 110, G: 100, B: 90, A: 255}
	threatColor     = rl.Color{R: 90, G: 170, B: 230, A: 60}
	contactColor    = rl.Color{R: 110, G: 190, B: 80, A: 90}

	forwardColor        = rl.Color{R: 0, G: 160, B: 0, A: 255}
	rightColor          = rl.Color{R: 0, G: 0, B: 220, A: 255}
	targetColor         = rl.Black
	preyFutureColor     = rl.Color{R: 140, G: 0, B: 170, A: 255}
	predatorFutureColor = rl.Color{R: 220, G: 0, B: 0, A: 255}
)

// arenaMargin is how far beyond the boundary the ground is drawn; agents
// may overshoot before steering home.
const arenaMargin = 4

// drawArena draws the ground and, when enabled, the boundary square.
func (v *Viewer) drawArena() {
	half := float32(v.snapshot.HalfExtent)

	x0, z0 := v.camera.WorldToScreen(-half-arenaMargin, -half-arenaMargin)
	x1, z1 := v.camera.WorldToScreen(half+arenaMargin, half+arenaMargin)
	rl.DrawRectangleRec(rl.Rectangle{X: x0, Y: z0, Width: x1 - x0, Height: z1 - z0}, groundColor)

	if v.overlays.IsEnabled(ui.OverlayArenaBounds) {
		bx0, bz0 := v.camera.WorldToScreen(-half, -half)
		bx1, bz1 := v.camera.WorldToScreen(half, half)
		rl.DrawRectangleLinesEx(rl.Rectangle{X: bx0, Y: bz0, Width: bx1 - bx0, Height: bz1 - bz0}, 2, boundsColor)
	}
}

// drawObstacles draws every obstacle as a filled circle.
func (v *Viewer) drawObstacles() {
	s := v.camera.Scale()
	for _, o := range v.snapshot.Obstacles {
		if !v.camera.IsVisible(float32(o.X), float32(o.Z), float32(o.Radius)) {
			continue
		}
		sx, sy := v.camera.WorldToScreen(float32(o.X), float32(o.Z))
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, float32(o.Radius)*s, obstacleColor)
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, float32(o.Radius)*s, rl.DarkBrown)
	}
}

// drawRadii draws the prey threat radius and the predator contact radius.
func (v *Viewer) drawRadii() {
	cfg := v.game.Config()
	threat := v.overlays.IsEnabled(ui.OverlayThreatRadius)
	contact := v.overlays.IsEnabled(ui.OverlayContactRadius)
	if !threat && !contact {
		return
	}

	s := v.camera.Scale()
	for _, a := range v.snapshot.Agents {
		sx, sy := v.camera.WorldToScreen(float32(a.X), float32(a.Z))
		center := rl.Vector2{X: sx, Y: sy}
		switch {
		case threat && a.Kind == components.KindPrey:
			rl.DrawCircleLinesV(center, float32(cfg.Prey.ThreatRadius)*s, threatColor)
		case contact && a.Kind == components.KindPredator:
			rl.DrawCircleV(center, float32(cfg.Population.ContactRadius)*s, contactColor)
		}
	}
}

// drawAgents renders all agents as oriented triangles.
func (v *Viewer) drawAgents() {
	theme := ui.DefaultTheme()
	s := v.camera.Scale()

	for _, a := range v.snapshot.Agents {
		if !v.camera.IsVisible(float32(a.X), float32(a.Z), float32(a.Radius)*2) {
			continue
		}
		color := theme.PreyColor
		if a.Kind == components.KindPredator {
			color = theme.PredatorColor
		}
		sx, sy := v.camera.WorldToScreen(float32(a.X), float32(a.Z))
		drawOrientedTriangle(sx, sy, a.Heading, float32(a.Radius)*s, color)
	}
}

// drawDebugLines draws each agent's axes, predicted position and, when the
// target overlay is on, the predator's pursuit line.
func (v *Viewer) drawDebugLines() {
	targets := v.overlays.IsActive(ui.OverlayTargets)

	for _, a := range v.snapshot.Agents {
		for _, seg := range a.DebugSegments() {
			if seg.Role == telemetry.SegmentTarget && !targets {
				continue
			}
			x1, y1 := v.camera.WorldToScreen(float32(seg.X1), float32(seg.Z1))
			x2, y2 := v.camera.WorldToScreen(float32(seg.X2), float32(seg.Z2))
			rl.DrawLineEx(rl.Vector2{X: x1, Y: y1}, rl.Vector2{X: x2, Y: y2}, 1.5, segmentColor(seg))
		}
	}
}

func segmentColor(seg telemetry.Segment) rl.Color {
	switch seg.Role {
	case telemetry.SegmentForward:
		return forwardColor
	case telemetry.SegmentRight:
		return rightColor
	case telemetry.SegmentTarget:
		return targetColor
	}
	if seg.Kind == components.KindPredator {
		return predatorFutureColor
	}
	return preyFutureColor
}

// drawOrientedTriangle draws a triangle pointing along heading, in degrees
// from +Z towards +X.
func drawOrientedTriangle(x, y float32, heading float64, radius float32, color rl.Color) {
	fwd := steering.ForwardOf(heading)
	right := steering.RightOf(heading)
	fx, fy := float32(fwd.X), float32(fwd.Z)
	rx, ry := float32(right.X), float32(right.Z)

	v1 := rl.Vector2{X: x + fx*radius*1.5, Y: y + fy*radius*1.5}
	v2 := rl.Vector2{X: x - fx*radius + rx*radius*0.8, Y: y - fy*radius + ry*radius*0.8}
	v3 := rl.Vector2{X: x - fx*radius - rx*radius*0.8, Y: y - fy*radius - ry*radius*0.8}

	// DrawTriangle requires counter-clockwise winding on screen
	rl.DrawTriangle(v1, v2, v3, color)
	rl.DrawTriangleLines(v1, v2, v3, rl.White)
}
