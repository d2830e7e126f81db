// Package audio manages the single active audio source feeding the analyser.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ashfall/spectrum"
)

// ErrNoSource is returned when no audio source is attached.
var ErrNoSource = errors.New("no audio source")

// Sink receives interleaved PCM frames. Implementations must be safe for
// use from audio callback goroutines.
type Sink interface {
	WriteInterleaved(samples []float32, channels int)
}

// Source is an attached audio input.
type Source interface {
	Name() string
	// Update is called once per frame on the main goroutine.
	Update()
	Close() error
}

// FileOpener starts looping playback of a decoded file.
type FileOpener func(path string, sink Sink) (Source, error)

// MicOpener starts live capture. It runs off the main goroutine and should
// give up when ctx is cancelled.
type MicOpener func(ctx context.Context, sink Sink) (Source, error)

type micResult struct {
	src Source
	err error
}

// Manager keeps at most one source attached. Selecting a file tears down
// the microphone and vice versa. All methods must be called from the main
// goroutine.
type Manager struct {
	analyser *spectrum.Analyser
	openFile FileOpener
	openMic  MicOpener

	active      Source
	activeIsMic bool

	micWanted bool
	pending   chan micResult
	cancel    context.CancelFunc

	// OnChange, if set, is called with the new source name ("" when detached).
	OnChange func(name string)
}

// NewManager creates a manager feeding analyser. Either opener may be nil
// when the backend is unavailable.
func NewManager(analyser *spectrum.Analyser, openFile FileOpener, openMic MicOpener) *Manager {
	return &Manager{
		analyser: analyser,
		openFile: openFile,
		openMic:  openMic,
	}
}

// OpenFile replaces the current source with looping playback of path.
// On failure the manager is left without a source.
func (m *Manager) OpenFile(path string) error {
	m.abandonMic()
	m.micWanted = false
	m.detach()

	if m.openFile == nil {
		return fmt.Errorf("opening %s: %w", path, ErrNoSource)
	}
	m.analyser.Reset()
	src, err := m.openFile(path, m.analyser)
	if err != nil {
		slog.Warn("audio_file_failed", "path", path, "error", err)
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if src == nil {
		return fmt.Errorf("opening %s: %w", path, ErrNoSource)
	}
	m.attach(src, false)
	return nil
}

// RequestMic starts asynchronous microphone acquisition. The result is
// picked up by Poll. Any file source is closed immediately.
func (m *Manager) RequestMic() {
	if m.micWanted {
		return
	}
	m.micWanted = true
	m.detach()

	if m.openMic == nil {
		slog.Warn("mic_unavailable", "error", ErrNoSource)
		m.micWanted = false
		return
	}

	m.analyser.Reset()
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan micResult, 1)
	m.pending = ch
	m.cancel = cancel

	open := m.openMic
	sink := m.analyser
	go func() {
		src, err := open(ctx, sink)
		ch <- micResult{src: src, err: err}
	}()
}

// StopMic cancels a pending request or closes the live microphone.
func (m *Manager) StopMic() {
	m.micWanted = false
	m.abandonMic()
	if m.activeIsMic {
		m.detach()
	}
}

// abandonMic cancels a pending acquisition and closes whatever it yields.
func (m *Manager) abandonMic() {
	if m.pending == nil {
		return
	}
	m.cancel()
	go func(ch chan micResult) {
		if r := <-ch; r.src != nil {
			r.src.Close()
		}
	}(m.pending)
	m.pending = nil
	m.cancel = nil
}

// Poll completes a pending microphone request. Returns true when the
// source changed.
func (m *Manager) Poll() bool {
	if m.pending == nil {
		return false
	}

	var r micResult
	select {
	case r = <-m.pending:
	default:
		return false
	}
	m.cancel()
	m.pending = nil
	m.cancel = nil

	if r.err == nil && r.src == nil {
		r.err = ErrNoSource
	}
	if r.err != nil {
		slog.Warn("mic_unavailable", "error", r.err)
		m.micWanted = false
		return false
	}
	if !m.micWanted {
		r.src.Close()
		return false
	}
	m.attach(r.src, true)
	return true
}

// Update polls for a pending microphone and pumps the active source.
func (m *Manager) Update() {
	m.Poll()
	if m.active != nil {
		m.active.Update()
	}
}

// Spectrum reads the analyser while a source is attached.
func (m *Manager) Spectrum(dst []uint8) ([]uint8, bool) {
	if m.active == nil {
		return dst, false
	}
	return m.analyser.Spectrum(dst)
}

// Current returns the name of the attached source, or ErrNoSource.
func (m *Manager) Current() (string, error) {
	if m.active == nil {
		return "", ErrNoSource
	}
	return m.active.Name(), nil
}

// MicActive reports whether the microphone is attached or being acquired.
// The UI toggle mirrors this.
func (m *Manager) MicActive() bool {
	return m.micWanted
}

// MicPending reports whether acquisition is still in flight.
func (m *Manager) MicPending() bool {
	return m.pending != nil
}

// Close releases every source.
func (m *Manager) Close() error {
	m.micWanted = false
	m.abandonMic()
	if m.active == nil {
		return nil
	}
	err := m.active.Close()
	m.active = nil
	m.activeIsMic = false
	if err != nil {
		return fmt.Errorf("closing audio source: %w", err)
	}
	return nil
}

func (m *Manager) attach(src Source, mic bool) {
	m.active = src
	m.activeIsMic = mic
	slog.Info("audio_source_attached", "source", src.Name(), "mic", mic)
	if m.OnChange != nil {
		m.OnChange(src.Name())
	}
}

func (m *Manager) detach() {
	if m.active == nil {
		return
	}
	if err := m.active.Close(); err != nil {
		slog.Warn("audio_close_failed", "source", m.active.Name(), "error", err)
	}
	m.active = nil
	m.activeIsMic = false
	if m.OnChange != nil {
		m.OnChange("")
	}
}
