package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outbreak/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	PreyCount    int
	PredCount    int
	Tick         int32
	SimTime      float64
	Speed        int
	FPS          int32
	Paused       bool
	Bookmark     *telemetry.Bookmark
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD along the top right of the screen.
func (h *HUD) Draw(data HUDData) {
	x := data.ScreenWidth - 300
	theme := h.renderer.Theme

	rl.DrawText(data.Title, x, 10, 20, rl.White)

	prey := fmt.Sprintf("Humans: %d", data.PreyCount)
	rl.DrawText(prey, x, 35, 16, theme.PreyColor)
	rl.DrawText(fmt.Sprintf("Zombies: %d", data.PredCount), x+rl.MeasureText(prey, 16)+16, 35, 16, theme.PredatorColor)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | %.1fs | Speed: %dx | FPS: %d", data.Tick, data.SimTime, data.Speed, data.FPS),
		x, 55, 14, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	} else if data.PreyCount == 0 && data.PredCount > 0 {
		statusText = "Outbreak complete"
	}
	rl.DrawText(statusText, x, 75, 16, rl.Yellow)

	if data.Bookmark != nil {
		rl.DrawText(
			fmt.Sprintf("[%d] %s", data.Bookmark.Tick, data.Bookmark.Description),
			x, 95, 12, rl.Orange,
		)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase tick timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight*int32(len(telemetry.Phases)+3) + padding*2

	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding
	y = r.DrawSectionHeader(x, y, "Tick Timing")

	rl.DrawText(
		fmt.Sprintf("avg %s | p95 %s | %.0f tps",
			data.AvgTickDuration.Round(time.Microsecond),
			data.P95TickDuration.Round(time.Microsecond),
			data.TicksPerSecond),
		x, y, r.Theme.FontSize, rl.Yellow,
	)
	y += r.Theme.LineHeight + 2

	for _, phase := range telemetry.Phases {
		y = r.DrawBar(x, y, phase.String(), float32(data.PhasePct[phase]/100), p.width-padding*2)
	}
}

// StatsPanel renders the most recent telemetry window.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new window stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the stats panel.
func (s *StatsPanel) Draw(stats telemetry.WindowStats) {
	r := s.renderer
	padding := r.Theme.Padding
	w := s.width - padding*2
	height := r.Theme.LineHeight*12 + padding*2

	r.DrawPanel(s.x, s.y, s.width, height)

	x := s.x + padding
	y := s.y + padding
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Window ending %.1fs", stats.SimTimeSec))

	y = r.DrawLabelValue(x, y, "Humans", fmt.Sprintf("%d", stats.PreyCount), w)
	y = r.DrawLabelValue(x, y, "Zombies", fmt.Sprintf("%d (%d tracking)", stats.PredCount, stats.Tracking), w)
	y = r.DrawLabelValue(x, y, "Conversions", fmt.Sprintf("%d", stats.Conversions), w)
	y = r.DrawLabelValue(x, y, "Evictions", fmt.Sprintf("%d", stats.Evictions), w)
	y = r.DrawLabelValue(x, y, "Rejected", fmt.Sprintf("%d", stats.SpawnRejected), w)
	y = r.DrawLabelValue(x, y, "Human speed", fmt.Sprintf("%.2f (p90 %.2f)", stats.PreySpeedMean, stats.PreySpeedP90), w)
	y = r.DrawLabelValue(x, y, "Zombie speed", fmt.Sprintf("%.2f (p90 %.2f)", stats.PredSpeedMean, stats.PredSpeedP90), w)
	y = r.DrawLabelValue(x, y, "Threat dist", fmt.Sprintf("%.2f (min %.2f)", stats.ThreatDistMean, stats.ThreatDistMin), w)
	r.DrawLabelValue(x, y, "Survival", fmt.Sprintf("%.1fs +/- %.1f", stats.PreySurvivalMean, stats.PreySurvivalStd), w)
}
