package backend

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/gen2brain/malgo"

	"github.com/pthm-cable/ashfall/audio"
)

// MicSource captures mono float32 PCM from the default input device.
// Captured audio is analysed only, never played back.
type MicSource struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

// MicOpener returns an audio.MicOpener capturing at sampleRate.
func MicOpener(sampleRate int) audio.MicOpener {
	return func(ctx context.Context, sink audio.Sink) (audio.Source, error) {
		return OpenMic(ctx, sampleRate, sink)
	}
}

// OpenMic initializes capture and starts streaming into sink. Returns
// ctx.Err() if the request was cancelled during setup.
func OpenMic(ctx context.Context, sampleRate int, sink audio.Sink) (*MicSource, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("initializing capture context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(sampleRate)
	cfg.Alsa.NoMMap = 1

	// Reused by the capture thread
	var samples []float32
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frames uint32) {
			samples = decodeF32(samples, input)
			sink.WriteInterleaved(samples, 1)
		},
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		freeContext(mctx)
		return nil, fmt.Errorf("opening capture device: %w", err)
	}

	src := &MicSource{ctx: mctx, device: device}
	if err := ctx.Err(); err != nil {
		src.Close()
		return nil, err
	}
	if err := device.Start(); err != nil {
		src.Close()
		return nil, fmt.Errorf("starting capture: %w", err)
	}
	return src, nil
}

// decodeF32 converts little-endian float32 bytes into dst.
func decodeF32(dst []float32, raw []byte) []float32 {
	n := len(raw) / 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return dst
}

// Name identifies the source.
func (m *MicSource) Name() string {
	return "microphone"
}

// Update is a no-op; capture is callback driven.
func (m *MicSource) Update() {}

// Close stops capture and releases the device and context.
func (m *MicSource) Close() error {
	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	if m.ctx != nil {
		freeContext(m.ctx)
		m.ctx = nil
	}
	return nil
}

func freeContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		slog.Warn("malgo_uninit_failed", "error", err)
	}
	ctx.Free()
}
