package game

import (
	"fmt"
	"io"

	"github.com/pthm-cable/ashfall/components"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logWorldState logs a human-readable summary of the population.
func (g *Game) logWorldState() {
	var total, interactive, linked int
	var alphaSum, sizeSum float32
	g.sim.Population().Each(func(_ *components.Position, _ *components.Velocity, p *components.Particle) {
		total++
		alphaSum += p.Alpha
		sizeSum += p.Size
		if p.Interactive {
			interactive++
		}
		if p.HasImage() {
			linked++
		}
	})

	var avgAlpha, avgSize float32
	if total > 0 {
		avgAlpha = alphaSum / float32(total)
		avgSize = sizeSum / float32(total)
	}

	counts := g.sim.Population().CountByKind()
	w := g.sim.Weather()

	Logf("=== Tick %d (%.1fs) ===", g.sim.Tick(), g.sim.SimTimeMS()/1000)
	Logf("Weather: %s (next change in %.1fs) | Density: %.2f | Running: %v",
		w.Mode(), (w.Threshold()-w.Elapsed())/1000, g.sim.Density(), g.sim.Running())
	Logf("Entities: %d (ambient: %d, sparks: %d, wisps: %d, runes: %d)",
		total, counts[components.KindAmbient], counts[components.KindSpark],
		counts[components.KindWisp], counts[components.KindRune])
	Logf("Carriers: %d (with image: %d) | Avg alpha: %.2f | Avg size: %.2f",
		interactive, linked, avgAlpha, avgSize)
	if g.audio != nil {
		source := g.audioSourceName()
		if source == "" {
			source = "none"
		}
		Logf("Audio: %s | Level: %.2f", source, g.sim.AudioLevel())
	}
	Logf("")
}
