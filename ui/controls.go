package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the controls panel shows and may change.
type ControlsState struct {
	Speed       int // ticks per frame
	MaxSpeed    int
	Paused      bool
	PreyCount   int
	PredCount   int
	SpawnCap    int
	PredatorCap int
}

// ControlsAction reports which buttons were pressed this frame.
type ControlsAction struct {
	SpawnPrey     bool
	SpawnPredator bool
	TogglePause   bool
	Speed         int
}

// ControlsPanel renders the left-side controls panel: spawn buttons, pause,
// simulation speed and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32 // as last drawn
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so clicks on it
// are not treated as arena input.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) && y >= float32(c.y) && y <= float32(c.y+c.height)
}

func (c *ControlsPanel) panelHeight(overlays *OverlayRegistry) int32 {
	r := c.renderer
	rows := int32(len(overlays.All()) + len(overlays.Categories()) + 5)
	return rows*r.Theme.LineHeight + 3*34 + r.Theme.Padding*3
}

// Draw renders the controls panel and returns the actions taken.
func (c *ControlsPanel) Draw(state ControlsState, overlays *OverlayRegistry) ControlsAction {
	action := ControlsAction{Speed: state.Speed}
	if !c.visible {
		return action
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)
	half := (inner - 8) / 2

	c.height = c.panelHeight(overlays)
	r.DrawPanel(c.x, c.y, c.width, c.height)

	x := float32(c.x + padding)
	y := c.y + padding

	rl.DrawText("Population", int32(x), y, 16, rl.White)
	y += lineHeight + 4

	y = r.DrawLabelValue(int32(x), y, "Humans", fmt.Sprintf("%d / %d", state.PreyCount, state.SpawnCap), c.width)
	y = r.DrawLabelValue(int32(x), y, "Zombies", fmt.Sprintf("%d (cap %d)", state.PredCount, state.PredatorCap), c.width)
	y += 4

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 26}, "Human [H]") {
		action.SpawnPrey = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 8, Y: float32(y), Width: half, Height: 26}, "Zombie [Z]") {
		action.SpawnPredator = true
	}
	y += 34

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 26}, toggleText(state.Paused, "Resume [P]", "Pause [P]")) {
		action.TogglePause = true
	}
	y += 34

	rl.DrawText(fmt.Sprintf("Speed: %dx", state.Speed), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	speed := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: float32(y), Width: inner - 40, Height: 16},
		"1", fmt.Sprintf("%d", state.MaxSpeed),
		float32(state.Speed), 1, float32(state.MaxSpeed),
	)
	action.Speed = int(speed + 0.5)
	y += 30

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(int32(x), y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}

	return action
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	// Name
	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
