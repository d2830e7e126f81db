// Spectrum preview tool - plays an audio file (or listens to the microphone)
// and shows the analyser bins, the low-band level and the reactor response
// with sliders for the reactor parameters.
//
// Usage: go run ./cmd/spectrumpreview [-config path] [file]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/audio"
	"github.com/pthm-cable/ashfall/audio/backend"
	"github.com/pthm-cable/ashfall/config"
	"github.com/pthm-cable/ashfall/spectrum"
	"github.com/pthm-cable/ashfall/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	plotWidth    = 600
	plotHeight   = 260
	panelX       = plotWidth + 30
	panelWidth   = windowWidth - panelX - 20
	historyLen   = plotWidth / 2
)

// ReactorParams holds the tunable reactor values.
type ReactorParams struct {
	Threshold float32
	Scale     float32
	Pulse     float32
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	ac := cfg.Audio

	rl.InitWindow(windowWidth, windowHeight, "Spectrum Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	rl.InitAudioDevice()
	defer rl.CloseAudioDevice()

	analyser := spectrum.New(&ac)
	manager := audio.NewManager(analyser, backend.FileOpener(float32(ac.Volume)), backend.MicOpener(ac.SampleRate))
	defer manager.Close()

	if flag.NArg() > 0 {
		if err := manager.OpenFile(flag.Arg(0)); err != nil {
			slog.Warn("open failed", "path", flag.Arg(0), "error", err)
		}
	}

	params := ReactorParams{
		Threshold: float32(ac.SparkThreshold),
		Scale:     float32(ac.SparkScale),
		Pulse:     float32(ac.SizePulse),
	}
	reactor := newReactor(ac, params)

	bins := make([]uint8, 0, analyser.Bins())
	history := make([]float64, historyLen)
	historyIdx := 0

	for !rl.WindowShouldClose() {
		if rl.IsFileDropped() {
			files := rl.LoadDroppedFiles()
			rl.UnloadDroppedFiles()
			if len(files) > 0 {
				if err := manager.OpenFile(files[0]); err != nil {
					slog.Warn("open failed", "path", files[0], "error", err)
				}
			}
		}
		manager.Update()

		bins, _ = manager.Spectrum(bins)
		reactor.Sample(manager)
		history[historyIdx] = reactor.Level()
		historyIdx = (historyIdx + 1) % historyLen

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawSpectrum(bins, 10, 10)
		drawHistory(history, historyIdx, params.Threshold, 10, plotHeight+30)

		// Stats
		statsY := int32(2*plotHeight + 50)
		source, err := manager.Current()
		if err != nil {
			source = "none (drop an audio file)"
		}
		rl.DrawText(fmt.Sprintf("Source: %s", source), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Level: %.3f  Sparks/tick: %d  Size x%.2f",
			reactor.Level(), reactor.SparkCount(), systems.PulseSize(1, reactor.Level(), float64(params.Pulse))),
			15, statsY+20, 16, rl.DarkGray)

		// Control panel
		y := float32(10)
		rl.DrawText("Reactor Parameters", panelX, int32(y), 20, rl.DarkGray)
		y += 35

		changed := false
		changed = slider(&y, "Spark threshold (low-band level)", "0", "1", &params.Threshold, 0, 1) || changed
		changed = slider(&y, "Spark scale (sparks = level x scale)", "0", "20", &params.Scale, 0, 20) || changed
		changed = slider(&y, "Size pulse (size = base x (1 + level x pulse))", "0", "2", &params.Pulse, 0, 2) || changed
		if changed {
			reactor = newReactor(ac, params)
		}

		rl.DrawLine(panelX, int32(y), panelX+panelWidth, int32(y), rl.LightGray)
		y += 15

		micLabel := "Microphone"
		if manager.MicActive() {
			micLabel = "Stop microphone"
		}
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 150, Height: 30}, micLabel) {
			if manager.MicActive() {
				manager.StopMic()
			} else {
				manager.RequestMic()
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: y, Width: 150, Height: 30}, "Reset Params") {
			params = ReactorParams{
				Threshold: float32(cfg.Audio.SparkThreshold),
				Scale:     float32(cfg.Audio.SparkScale),
				Pulse:     float32(cfg.Audio.SizePulse),
			}
			reactor = newReactor(ac, params)
		}

		rl.EndDrawing()
	}
}

// newReactor builds a reactor from the base audio config with params applied.
func newReactor(base config.AudioConfig, p ReactorParams) *systems.Reactor {
	base.SparkThreshold = float64(p.Threshold)
	base.SparkScale = float64(p.Scale)
	base.SizePulse = float64(p.Pulse)
	return systems.NewReactor(&base)
}

// slider draws a labelled slider and reports whether the value changed.
func slider(y *float32, label, minText, maxText string, value *float32, minVal, maxVal float32) bool {
	rl.DrawText(label, panelX, int32(*y), 14, rl.Gray)
	*y += 18
	next := gui.SliderBar(
		rl.Rectangle{X: panelX + 20, Y: *y, Width: panelWidth - 90, Height: 20},
		minText, maxText,
		*value, minVal, maxVal,
	)
	rl.DrawText(fmt.Sprintf("%.2f", *value), panelX+panelWidth-50, int32(*y+2), 16, rl.DarkGray)
	*y += 35
	if next == *value {
		return false
	}
	*value = next
	return true
}

// drawSpectrum draws the analyser bins; the low band the reactor averages
// is highlighted.
func drawSpectrum(bins []uint8, x, y int32) {
	rl.DrawRectangle(x, y, plotWidth, plotHeight, rl.Color{R: 20, G: 20, B: 24, A: 255})
	rl.DrawRectangleLines(x, y, plotWidth, plotHeight, rl.DarkGray)
	if len(bins) == 0 {
		return
	}

	low := (len(bins) + 2) / 3
	barW := float32(plotWidth) / float32(len(bins))
	for i, b := range bins {
		h := float32(b) / 255 * plotHeight
		c := rl.Color{R: 120, G: 140, B: 170, A: 255}
		if i < low {
			c = rl.Color{R: 255, G: 150, B: 60, A: 255}
		}
		rl.DrawRectangleRec(rl.Rectangle{
			X:      float32(x) + float32(i)*barW,
			Y:      float32(y) + plotHeight - h,
			Width:  max(barW-1, 1),
			Height: h,
		}, c)
	}
}

// drawHistory plots the level ring buffer oldest to newest with the
// threshold as a horizontal line.
func drawHistory(history []float64, next int, threshold float32, x, y int32) {
	rl.DrawRectangle(x, y, plotWidth, plotHeight, rl.Color{R: 20, G: 20, B: 24, A: 255})
	rl.DrawRectangleLines(x, y, plotWidth, plotHeight, rl.DarkGray)

	ty := y + plotHeight - int32(threshold*plotHeight)
	rl.DrawLine(x, ty, x+plotWidth, ty, rl.Red)

	step := float32(plotWidth) / float32(len(history)-1)
	for i := 1; i < len(history); i++ {
		a := history[(next+i-1)%len(history)]
		b := history[(next+i)%len(history)]
		rl.DrawLineV(
			rl.Vector2{X: float32(x) + float32(i-1)*step, Y: float32(y) + plotHeight*(1-float32(a))},
			rl.Vector2{X: float32(x) + float32(i)*step, Y: float32(y) + plotHeight*(1-float32(b))},
			rl.Orange,
		)
	}
}
