package ui

import (
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/config"
)

// Density slider range.
const (
	DensityMin float32 = 0
	DensityMax float32 = 4
)

const (
	controlsWidth  = 220
	controlsHeight = 268
	rowHeight      = 24
	rowGap         = 8
)

// ControlsState is the simulation state the panel reflects.
type ControlsState struct {
	Running    bool
	Mode       int
	Density    float32
	MicOn      bool
	MicPending bool
	Source     string // Active audio source name, empty when none
	Background string // Current background file name
}

// ControlsResult is the user intent gathered during one frame.
type ControlsResult struct {
	TogglePlay     bool
	NextBackground bool
	Reset          bool
	ModeChanged    bool
	Mode           int
	DensityChanged bool
	Density        float32
	MicChanged     bool
	Mic            bool
}

// Controls renders the raygui control panel.
type Controls struct {
	renderer  *Renderer
	modeItems string
	visible   bool
	bounds    rl.Rectangle
}

// NewControls creates a visible control panel.
func NewControls() *Controls {
	return &Controls{
		renderer:  NewRenderer(),
		modeItems: strings.Join(config.ModeNames, ";"),
		visible:   true,
		bounds:    rl.Rectangle{Width: controlsWidth, Height: controlsHeight},
	}
}

// Toggle switches panel visibility.
func (c *Controls) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *Controls) IsVisible() bool {
	return c.visible
}

// Contains reports whether (x, y) falls on the visible panel. Pointer
// events there belong to the widgets, not the animation.
func (c *Controls) Contains(x, y float32) bool {
	return c.visible && rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, c.bounds)
}

// Draw renders the panel anchored top-left and returns what the user changed.
func (c *Controls) Draw(state ControlsState, screenW, screenH float32) ControlsResult {
	var res ControlsResult
	if !c.visible {
		return res
	}

	r := c.renderer
	pad := float32(r.Theme.Padding)
	c.bounds.X, c.bounds.Y = AnchorTopLeft.Place(screenW, screenH, controlsWidth, controlsHeight, pad)
	r.DrawPanel(int32(c.bounds.X), int32(c.bounds.Y), controlsWidth, controlsHeight)

	x := c.bounds.X + pad
	y := c.bounds.Y + pad
	w := float32(controlsWidth) - 2*pad
	row := func(h float32) rl.Rectangle {
		rect := rl.Rectangle{X: x, Y: y, Width: w, Height: h}
		y += h + rowGap
		return rect
	}

	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Ashfall"))

	playLabel := "Pause"
	if !state.Running {
		playLabel = "Play"
	}
	if gui.Button(row(rowHeight), playLabel) {
		res.TogglePlay = true
	}

	mode := gui.ComboBox(row(rowHeight), c.modeItems, int32(state.Mode))
	if int(mode) != state.Mode {
		res.ModeChanged = true
		res.Mode = int(mode)
	}

	rl.DrawText("Density", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += float32(r.Theme.LineHeight)
	density := gui.SliderBar(row(rowHeight-6), "0", "4", state.Density, DensityMin, DensityMax)
	if density != state.Density {
		res.DensityChanged = true
		res.Density = density
	}

	half := (w - rowGap) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: rowHeight}, "Next background") {
		res.NextBackground = true
	}
	if gui.Button(rl.Rectangle{X: x + half + rowGap, Y: y, Width: half, Height: rowHeight}, "Reset") {
		res.Reset = true
	}
	y += rowHeight + rowGap

	micLabel := "Microphone"
	if state.MicPending {
		micLabel = "Microphone (waiting)"
	}
	mic := gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, micLabel, state.MicOn)
	if mic != state.MicOn {
		res.MicChanged = true
		res.Mic = mic
	}
	y += 16 + rowGap

	source := state.Source
	if source == "" {
		source = "drop an audio file to play"
	}
	y = float32(r.DrawLabelValue(int32(x), int32(y), "Audio", source))
	if state.Background != "" {
		y = float32(r.DrawLabelValue(int32(x), int32(y), "Image", state.Background))
	}
	rl.DrawText("[space] play  [n] next  [h] hide", int32(x), int32(y+4), r.Theme.FontSize-2, r.Theme.HintColor)

	return res
}
