// Package spectrum turns a PCM stream into byte frequency magnitudes.
//
// Audio callbacks push samples from their own goroutines with Write. The
// frame loop reads a smoothed, windowed spectrum with Spectrum. Only the
// sample ring is shared between goroutines.
package spectrum

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/pthm-cable/ashfall/config"
)

// Analyser computes a frequency spectrum over the most recent FFTSize
// samples, mapped from decibels to [0, 255].
type Analyser struct {
	mu      sync.Mutex
	ring    []float64
	write   int
	written bool

	size      int
	smoothing float64
	minDB     float64
	maxDB     float64

	// Owned by the reading goroutine
	fft      *fourier.FFT
	window   []float64
	frame    []float64
	coeffs   []complex128
	smoothed []float64
}

// New creates an analyser from config. FFTSize must be a power of two.
func New(cfg *config.AudioConfig) *Analyser {
	n := cfg.FFTSize
	return &Analyser{
		ring:      make([]float64, n),
		size:      n,
		smoothing: cfg.Smoothing,
		minDB:     cfg.MinDecibels,
		maxDB:     cfg.MaxDecibels,
		fft:       fourier.NewFFT(n),
		window:    blackman(n),
		frame:     make([]float64, n),
		coeffs:    make([]complex128, n/2+1),
		smoothed:  make([]float64, n/2),
	}
}

// blackman returns the Blackman window of length n.
func blackman(n int) []float64 {
	const a0, a1, a2 = 0.42, 0.5, 0.08
	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}

// Bins returns the number of frequency bins (FFTSize / 2).
func (a *Analyser) Bins() int {
	return a.size / 2
}

// Write appends mono samples. Safe to call from any goroutine.
func (a *Analyser) Write(samples []float32) {
	if len(samples) == 0 {
		return
	}
	a.mu.Lock()
	for _, s := range samples {
		a.ring[a.write] = float64(s)
		a.write = (a.write + 1) % a.size
	}
	a.written = true
	a.mu.Unlock()
}

// WriteInterleaved downmixes interleaved frames to mono and appends them.
func (a *Analyser) WriteInterleaved(samples []float32, channels int) {
	if channels <= 1 {
		a.Write(samples)
		return
	}
	frames := len(samples) / channels
	if frames == 0 {
		return
	}
	a.mu.Lock()
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[f*channels+c]
		}
		a.ring[a.write] = float64(sum / float32(channels))
		a.write = (a.write + 1) % a.size
	}
	a.written = true
	a.mu.Unlock()
}

// Reset clears the sample history and the smoothing state.
func (a *Analyser) Reset() {
	a.mu.Lock()
	clear(a.ring)
	a.write = 0
	a.written = false
	a.mu.Unlock()
	clear(a.smoothed)
}

// Spectrum fills dst with Bins() byte magnitudes and returns it. Returns
// false before any sample has been written. Not safe for concurrent readers.
func (a *Analyser) Spectrum(dst []uint8) ([]uint8, bool) {
	a.mu.Lock()
	if !a.written {
		a.mu.Unlock()
		return dst, false
	}
	// Oldest sample first
	n := copy(a.frame, a.ring[a.write:])
	copy(a.frame[n:], a.ring[:a.write])
	a.mu.Unlock()

	for i := range a.frame {
		a.frame[i] *= a.window[i]
	}
	a.fft.Coefficients(a.coeffs, a.frame)

	bins := a.size / 2
	if cap(dst) < bins {
		dst = make([]uint8, bins)
	}
	dst = dst[:bins]

	scale := 1 / float64(a.size)
	span := a.maxDB - a.minDB
	for k := 0; k < bins; k++ {
		mag := cmplx.Abs(a.coeffs[k]) * scale
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		dst[k] = toByte(a.smoothed[k], a.minDB, span)
	}
	return dst, true
}

// toByte maps a linear magnitude onto [0, 255] across the decibel range.
func toByte(mag, minDB, span float64) uint8 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := 255 * (db - minDB) / span
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
