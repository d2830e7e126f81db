// Package backend provides the concrete audio sources: raylib music
// streams for files and malgo capture for the microphone.
package backend

import (
	"fmt"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/audio"
)

// FileSource plays a decoded file in a loop and taps its samples.
type FileSource struct {
	name      string
	music     rl.Music
	processor rl.AudioCallback
}

// FileOpener returns an audio.FileOpener playing at the given volume.
// The audio device must be initialized.
func FileOpener(volume float32) audio.FileOpener {
	return func(path string, sink audio.Sink) (audio.Source, error) {
		return OpenFile(path, volume, sink)
	}
}

// OpenFile loads path as a looping music stream and starts playback.
func OpenFile(path string, volume float32, sink audio.Sink) (*FileSource, error) {
	if !rl.IsAudioDeviceReady() {
		return nil, fmt.Errorf("audio device not ready: %w", audio.ErrNoSource)
	}

	music := rl.LoadMusicStream(path)
	if music.FrameCount == 0 {
		return nil, fmt.Errorf("loading music stream %s: unsupported or unreadable", path)
	}
	music.Looping = true

	channels := int(music.Stream.Channels)
	src := &FileSource{
		name:  filepath.Base(path),
		music: music,
		processor: func(data []float32, frames int) {
			n := frames * channels
			if n > len(data) {
				n = len(data)
			}
			sink.WriteInterleaved(data[:n], channels)
		},
	}

	rl.AttachAudioStreamProcessor(music.Stream, src.processor)
	rl.SetMusicVolume(music, volume)
	rl.PlayMusicStream(music)
	return src, nil
}

// Name returns the file name.
func (s *FileSource) Name() string {
	return s.name
}

// Update refills the stream buffers. Must run every frame.
func (s *FileSource) Update() {
	rl.UpdateMusicStream(s.music)
}

// Close stops playback and releases the stream.
func (s *FileSource) Close() error {
	rl.DetachAudioStreamProcessor(s.music.Stream, s.processor)
	rl.StopMusicStream(s.music)
	rl.UnloadMusicStream(s.music)
	return nil
}
