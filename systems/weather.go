package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/ashfall/config"
)

// Mode is a weather state.
type Mode uint8

const (
	ModeAmbient Mode = iota
	ModeAsh
	ModeSnow
	ModeRain
	ModeSparks
	ModeFog
)

// NumModes is the number of weather states.
const NumModes = 6

// String returns the config name of a mode.
func (m Mode) String() string {
	if int(m) < len(config.ModeNames) {
		return config.ModeNames[m]
	}
	return "unknown"
}

// ParseMode maps a config name to a mode.
func ParseMode(name string) (Mode, error) {
	for i, n := range config.ModeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weather mode %q", name)
}

// Rate is one resolved entry of a spawn table.
type Rate struct {
	Gen  Generator
	Rate float32
}

// Weather is the weather state machine. It holds the active mode and the
// time accumulated towards the next random transition.
type Weather struct {
	mode      Mode
	elapsed   float32
	threshold float32

	minInterval float32
	maxInterval float32
	tables      [NumModes][]Rate

	rng *rand.Rand

	// OnChange, if set, is called after every automatic transition.
	OnChange func(from, to Mode)
}

// NewWeather builds the state machine from config. The config is assumed
// to be validated.
func NewWeather(rng *rand.Rand, cfg *config.WeatherConfig) (*Weather, error) {
	initial, err := ParseMode(cfg.Initial)
	if err != nil {
		return nil, err
	}

	w := &Weather{
		mode:        initial,
		minInterval: float32(cfg.MinIntervalMS),
		maxInterval: float32(cfg.MaxIntervalMS),
		rng:         rng,
	}
	for i, name := range config.ModeNames {
		for _, r := range cfg.Modes[name] {
			gen, err := ParseGenerator(r.Kind)
			if err != nil {
				return nil, fmt.Errorf("weather mode %s: %w", name, err)
			}
			w.tables[i] = append(w.tables[i], Rate{Gen: gen, Rate: float32(r.Rate)})
		}
	}
	w.threshold = w.drawThreshold()
	return w, nil
}

func (w *Weather) drawThreshold() float32 {
	return w.minInterval + w.rng.Float32()*(w.maxInterval-w.minInterval)
}

// Advance accumulates dt and performs a transition once the threshold is
// reached. Returns true when a transition happened (including a redraw of
// the same mode).
func (w *Weather) Advance(dt float32) bool {
	w.elapsed += dt
	if w.elapsed < w.threshold {
		return false
	}

	from := w.mode
	w.elapsed = 0
	w.mode = Mode(w.rng.Intn(NumModes))
	w.threshold = w.drawThreshold()

	if w.OnChange != nil {
		w.OnChange(from, w.mode)
	}
	return true
}

// SetMode switches mode immediately. The accumulator is left alone.
func (w *Weather) SetMode(m Mode) {
	if int(m) >= NumModes {
		return
	}
	w.mode = m
}

// Mode returns the active mode.
func (w *Weather) Mode() Mode {
	return w.mode
}

// Elapsed returns the time accumulated since the last transition.
func (w *Weather) Elapsed() float32 {
	return w.elapsed
}

// Threshold returns the accumulated time at which the next transition fires.
func (w *Weather) Threshold() float32 {
	return w.threshold
}

// Rates returns the spawn table of the active mode.
func (w *Weather) Rates() []Rate {
	return w.tables[w.mode]
}
