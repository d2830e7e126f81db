package game

import (
	"path/filepath"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/systems"
)

// audioExtensions are the dropped-file types handed to the audio manager.
var audioExtensions = map[string]bool{
	".wav": true, ".ogg": true, ".mp3": true, ".flac": true, ".qoa": true, ".xm": true, ".mod": true,
}

// handleInput processes keyboard, pointer and dropped-file input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
		switch c {
		case 'h', 'H':
			g.controls.Toggle()
		case 'p', 'P':
			g.perfPanel.Toggle()
		default:
			g.sim.OnKey(rune(c))
		}
	}

	g.handlePointer()
	g.handleDroppedFiles()
}

// handlePointer translates mouse and touch input into simulation pointer
// events. Presses on a panel belong to the panel.
func (g *Game) handlePointer() {
	var pos rl.Vector2
	var pressed, released bool
	if rl.GetTouchPointCount() > 0 {
		pos = rl.GetTouchPosition(0)
	} else {
		pos = rl.GetMousePosition()
	}
	pressed = rl.IsMouseButtonPressed(rl.MouseButtonLeft)
	released = rl.IsMouseButtonReleased(rl.MouseButtonLeft)

	ptr := g.sim.Pointer()
	if !ptr.HasPrev || ptr.X != pos.X || ptr.Y != pos.Y {
		g.sim.PointerMove(pos.X, pos.Y)
	}

	if pressed && !g.overPanel(pos.X, pos.Y) {
		g.sim.PointerDown(pos.X, pos.Y)
	}
	if released {
		g.sim.PointerUp()
	}
}

func (g *Game) overPanel(x, y float32) bool {
	if g.controls.Contains(x, y) {
		return true
	}
	return g.sim.Reveal().Visible && g.lore.Contains(x, y)
}

// handleDroppedFiles plays the first dropped audio file.
func (g *Game) handleDroppedFiles() {
	if !rl.IsFileDropped() {
		return
	}
	files := rl.LoadDroppedFiles()
	rl.UnloadDroppedFiles()

	for _, path := range files {
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			g.openAudio(path)
			return
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.sim.Resize(w, h)
	g.background.Resize(w, h)
}

// applyControls feeds the panel's result back into the simulation and the
// audio manager.
func (g *Game) applyControls() {
	res := g.controls.Draw(g.controlsState(), g.screenWidth, g.screenHeight)

	if res.TogglePlay {
		g.sim.ToggleRunning()
	}
	if res.ModeChanged {
		g.sim.SetWeatherMode(systems.Mode(res.Mode))
	}
	if res.DensityChanged {
		g.sim.SetDensity(res.Density)
	}
	if res.NextBackground {
		g.sim.AdvanceBackground()
	}
	if res.Reset {
		g.sim.Reset()
	}
	if res.MicChanged {
		if res.Mic {
			g.audio.RequestMic()
		} else {
			g.audio.StopMic()
		}
	}
}
