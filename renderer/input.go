package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeyP) {
		v.paused = !v.paused
	}

	// Steps-per-frame control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.speed > 1 {
		v.speed--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.speed < MaxSpeed {
		v.speed++
	}

	if rl.IsKeyPressed(rl.KeyH) {
		v.game.SpawnPrey()
	}
	if rl.IsKeyPressed(rl.KeyZ) {
		v.game.SpawnPredator()
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		v.overlays.HandleKeyPress(key)
	}

	v.handleCameraInput()
	v.handleSelection()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.perf.SetPosition(int32(w)-310, 120)
	v.stats.SetPosition(int32(w)-310, 120)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / v.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	mouse := rl.GetMousePosition()
	if v.controls.Contains(mouse.X, mouse.Y) {
		return
	}

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomAt(mouse.X, mouse.Y, 1+wheel*0.1)
	}

	// Drag with the right mouse button
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		v.camera.Pan(-delta.X, -delta.Y)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// handleSelection selects the agent under a left click, or clears the
// selection when clicking empty ground.
func (v *Viewer) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if v.controls.Contains(mouse.X, mouse.Y) {
		return
	}

	wx, wz := v.camera.ScreenToWorld(mouse.X, mouse.Y)
	if a, ok := pickAgent(v.snapshot.Agents, float64(wx), float64(wz), pickRadius/float64(v.camera.Scale())); ok {
		v.selectedID = a.ID
		v.hasSelection = true
		return
	}
	v.hasSelection = false
}
