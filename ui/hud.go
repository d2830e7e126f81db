package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/telemetry"
)

// HUDData holds all the data needed to render the heads-up display.
type HUDData struct {
	Weather    string
	Density    float32
	Entities   int
	Counts     [components.NumKinds]int
	AudioLevel float64
	Threshold  float64 // Spark threshold, highlighted on the level bar
	FPS        int32
	Running    bool
}

const hudWidth = 200

// HUD renders the heads-up display in the top-right corner.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData, screenW, screenH float32) {
	r := h.renderer
	pad := r.Theme.Padding
	height := r.Theme.LineHeight*5 + pad*2 + 4

	fx, fy := AnchorTopRight.Place(screenW, screenH, hudWidth, float32(height), float32(pad))
	x, y := int32(fx), int32(fy)
	r.DrawPanel(x, y, hudWidth, height)

	x += pad
	y += pad
	status := data.Weather
	if !data.Running {
		status += " (paused)"
	}
	y = r.DrawLabelValue(x, y, "Weather", status)
	y = r.DrawLabelValue(x, y, "Density", fmt.Sprintf("%.2f", data.Density))
	y = r.DrawLabelValue(x, y, "Entities", fmt.Sprintf("%d (%d/%d/%d/%d)",
		data.Entities, data.Counts[0], data.Counts[1], data.Counts[2], data.Counts[3]))
	y = r.DrawBar(x, y, "Audio", float32(data.AudioLevel), float32(data.Threshold), hudWidth-pad*2)
	r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
}

// DrawHint renders a single line hint centered at the bottom of the screen.
func (h *HUD) DrawHint(screenW, screenH int32, hint string) {
	size := h.renderer.Theme.FontSize + 2
	w := rl.MeasureText(hint, size)
	rl.DrawText(hint, (screenW-w)/2, screenH-size-12, size, h.renderer.Theme.HintColor)
}

// PerfPanel renders the step phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	visible  bool
}

// NewPerfPanel creates a hidden performance panel.
func NewPerfPanel() *PerfPanel {
	return &PerfPanel{renderer: NewRenderer()}
}

// Toggle switches panel visibility.
func (p *PerfPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Draw renders the performance panel at the bottom-left corner.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, screenW, screenH float32) {
	if !p.visible {
		return
	}
	r := p.renderer
	pad := r.Theme.Padding
	lines := int32(telemetry.NumPhases + 3)
	height := lines*14 + pad*2
	fx, fy := AnchorBottomLeft.Place(screenW, screenH, 230, float32(height), float32(pad))
	x, y := int32(fx), int32(fy)
	r.DrawPanel(x, y, 230, height)

	x += pad
	y += pad
	rl.DrawText(fmt.Sprintf("Step: %s  FPS: %.0f", stats.AvgTick.Round(time.Microsecond), stats.FPS),
		x, y, 12, rl.Yellow)
	y += 18
	rl.DrawText(fmt.Sprintf("p95: %s  %.0f ns/entity", stats.P95Tick.Round(time.Microsecond), stats.NSPerEntity),
		x, y, 12, rl.LightGray)
	y += 14

	for phase := telemetry.Phase(0); phase < telemetry.NumPhases; phase++ {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %6s %5.1f%%", phase.String(), stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color)
		y += 14
	}
}
