// Package renderer draws the arena top-down with raylib and turns keyboard
// and mouse input into game commands.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outbreak/camera"
	"github.com/pthm-cable/outbreak/game"
	"github.com/pthm-cable/outbreak/telemetry"
	"github.com/pthm-cable/outbreak/ui"
)

// MaxSpeed is the highest number of ticks run per frame.
const MaxSpeed = 10

const controlsText = "[H] human  [Z] zombie  [Space] debug  [P] pause  [<>] speed  [wheel] zoom  [arrows] pan  [Home] reset  [Tab] panel"

// Viewer owns the window-side state: camera, overlays, panels and the
// selection. The game itself stays free of raylib.
type Viewer struct {
	game *game.Game

	camera   *camera.Camera
	overlays *ui.OverlayRegistry
	hud      *ui.HUD
	controls *ui.ControlsPanel
	perf     *ui.PerfPanel
	stats    *ui.StatsPanel

	screenWidth  float32
	screenHeight float32

	paused bool
	speed  int

	selectedID   uint32
	hasSelection bool

	snapshot *telemetry.Snapshot
}

// NewViewer creates a viewer for g. The raylib window must already be open.
func NewViewer(g *game.Game) *Viewer {
	cfg := g.Config()
	w := float32(cfg.Screen.Width)
	h := float32(cfg.Screen.Height)

	v := &Viewer{
		game:         g,
		camera:       camera.New(w, h, float32(cfg.Arena.HalfExtent)),
		overlays:     ui.NewOverlayRegistry(),
		hud:          ui.NewHUD(),
		controls:     ui.NewControlsPanel(10, 10, 220),
		perf:         ui.NewPerfPanel(int32(w)-310, 120, 300),
		stats:        ui.NewStatsPanel(int32(w)-310, 120, 300),
		screenWidth:  w,
		screenHeight: h,
		speed:        1,
	}
	v.snapshot = g.Snapshot()
	return v
}

// Update handles input and advances the game by the current speed unless
// paused.
func (v *Viewer) Update() {
	v.handleInput()

	if !v.paused {
		for i := 0; i < v.speed; i++ {
			v.game.Step()
		}
	}
	v.game.RecordFrame()
	v.snapshot = v.game.Snapshot()
}

// Snapshot returns the state drawn this frame.
func (v *Viewer) Snapshot() *telemetry.Snapshot {
	return v.snapshot
}

// Draw renders the current frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	v.drawArena()
	v.drawObstacles()
	v.drawRadii()
	v.drawAgents()
	if v.overlays.IsActive(ui.OverlayDebugLines) {
		v.drawDebugLines()
	}
	v.drawSelection()

	v.drawUI()

	rl.EndDrawing()
}

// drawUI draws the HUD, panels and controls, and applies control actions.
func (v *Viewer) drawUI() {
	cfg := v.game.Config()
	prey, predators := v.snapshot.Counts()

	v.hud.Draw(ui.HUDData{
		Title:        "Outbreak",
		PreyCount:    prey,
		PredCount:    predators,
		Tick:         v.snapshot.Tick,
		SimTime:      v.snapshot.SimTimeSec,
		Speed:        v.speed,
		FPS:          rl.GetFPS(),
		Paused:       v.paused,
		Bookmark:     v.snapshot.Bookmark,
		ScreenWidth:  int32(v.screenWidth),
		ScreenHeight: int32(v.screenHeight),
	})
	v.hud.DrawControls(int32(v.screenWidth), int32(v.screenHeight), controlsText)

	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perf.Draw(v.game.PerfStats())
	}
	if v.overlays.IsEnabled(ui.OverlayStats) {
		v.stats.Draw(v.game.Stats())
	}

	action := v.controls.Draw(ui.ControlsState{
		Speed:       v.speed,
		MaxSpeed:    MaxSpeed,
		Paused:      v.paused,
		PreyCount:   prey,
		PredCount:   predators,
		SpawnCap:    cfg.Population.SpawnCap,
		PredatorCap: cfg.Population.PredatorCap,
	}, v.overlays)

	if action.SpawnPrey {
		v.game.SpawnPrey()
	}
	if action.SpawnPredator {
		v.game.SpawnPredator()
	}
	if action.TogglePause {
		v.paused = !v.paused
	}
	v.speed = clampSpeed(action.Speed)

	v.drawInfoPanel()
}

func clampSpeed(s int) int {
	return min(max(s, 1), MaxSpeed)
}
