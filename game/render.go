package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/ui"
)

// Draw renders the frame: background, entities, then the UI layers.
func (g *Game) Draw() {
	rl.BeginDrawing()

	g.background.Draw()
	g.particles.Draw(g.sim.Population())

	g.drawReveal()
	g.applyControls()

	counts := g.sim.Population().CountByKind()
	g.hud.Draw(ui.HUDData{
		Weather:    g.sim.WeatherMode().String(),
		Density:    g.sim.Density(),
		Entities:   g.sim.Population().Len(),
		Counts:     counts,
		AudioLevel: g.sim.AudioLevel(),
		Threshold:  g.cfg.Audio.SparkThreshold,
		FPS:        rl.GetFPS(),
		Running:    g.sim.Running(),
	}, g.screenWidth, g.screenHeight)
	g.perfPanel.Draw(g.perfCollector.Stats(), g.screenWidth, g.screenHeight)

	if !g.controls.IsVisible() {
		g.hud.DrawHint(int32(g.screenWidth), int32(g.screenHeight), "[h] controls")
	} else if g.audioSourceName() == "" && !g.audio.MicActive() {
		g.hud.DrawHint(int32(g.screenWidth), int32(g.screenHeight), "Drop an audio file onto the window to make the embers dance")
	}

	rl.EndDrawing()
}

// drawReveal shows the lore panel while a reveal is visible.
func (g *Game) drawReveal() {
	reveal := g.sim.Reveal()
	if !reveal.Visible {
		g.lore.Hide()
		return
	}

	var image *rl.Texture2D
	if tex, ok := g.textures.Get(int(reveal.Image)); ok {
		image = &tex
	}
	if g.lore.Draw(reveal.Quote, image, g.screenWidth, g.screenHeight) {
		g.sim.DismissReveal()
	}
}

// controlsState gathers what the control panel reflects.
func (g *Game) controlsState() ui.ControlsState {
	state := ui.ControlsState{
		Running:    g.sim.Running(),
		Mode:       int(g.sim.WeatherMode()),
		Density:    g.sim.Density(),
		MicOn:      g.audio.MicActive(),
		MicPending: g.audio.MicPending(),
		Source:     g.audioSourceName(),
	}
	if i := g.sim.BackgroundIndex(); i < len(g.backgrounds) {
		state.Background = g.backgrounds[i]
	}
	return state
}
