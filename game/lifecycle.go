package game

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pthm-cable/ashfall/assets"
	"github.com/pthm-cable/ashfall/audio"
	"github.com/pthm-cable/ashfall/audio/backend"
	"github.com/pthm-cable/ashfall/renderer"
	"github.com/pthm-cable/ashfall/spectrum"
)

// backgroundLoadTimeout bounds startup image decoding.
const backgroundLoadTimeout = 30 * time.Second

// loadBackgrounds decodes the configured images and, with a window,
// uploads them as textures. Failed images are skipped.
func (g *Game) loadBackgrounds() {
	paths := g.cfg.Derived.ImagePaths
	if len(paths) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backgroundLoadTimeout)
	defer cancel()

	start := time.Now()
	decoded := assets.DecodeImages(ctx, paths, g.cfg.Background.DecodeLimit)

	g.backgrounds = make([]string, len(decoded))
	for i, d := range decoded {
		g.backgrounds[i] = d.Name
	}
	if !g.headless {
		g.textures = renderer.UploadTextures(decoded)
	}
	g.sim.SetBackgroundCount(len(decoded))

	slog.Info("backgrounds_loaded",
		"requested", len(paths),
		"loaded", len(decoded),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// initAudio wires the analyser, the audio manager and the start-up source.
func (g *Game) initAudio(opts Options) {
	ac := &g.cfg.Audio
	g.analyser = spectrum.New(ac)
	g.audio = audio.NewManager(g.analyser,
		backend.FileOpener(float32(ac.Volume)),
		backend.MicOpener(ac.SampleRate),
	)
	g.audio.OnChange = g.onAudioSource
	g.sim.SetSpectrumSource(g.audio)

	switch {
	case opts.AudioFile != "":
		g.openAudio(opts.AudioFile)
	case opts.Mic:
		g.audio.RequestMic()
	}
}

// openAudio plays path, replacing any current source. Failures leave the
// animation without audio.
func (g *Game) openAudio(path string) {
	err := g.audio.OpenFile(path)
	// Opener failures are logged by the manager
	if errors.Is(err, audio.ErrNoSource) {
		slog.Warn("audio_file_failed", "path", path, "error", err)
	}
}

// audioSourceName returns the attached source for display.
func (g *Game) audioSourceName() string {
	name, err := g.audio.Current()
	if err != nil {
		return ""
	}
	return name
}
