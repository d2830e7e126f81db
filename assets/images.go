// Package assets decodes background images off the main goroutine.
package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Decoded is a successfully decoded image.
type Decoded struct {
	Path  string
	Name  string
	Image image.Image
}

// Bounds returns the pixel size of the image.
func (d Decoded) Bounds() (w, h int) {
	b := d.Image.Bounds()
	return b.Dx(), b.Dy()
}

// DecodeImages decodes paths concurrently with at most limit decoders.
// Failures are logged and skipped. The result keeps the order of paths.
// Cancelling ctx skips images that have not started decoding.
func DecodeImages(ctx context.Context, paths []string, limit int) []Decoded {
	results := make([]*Decoded, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			img, err := DecodeFile(path)
			if err != nil {
				slog.Warn("background_load_failed", "path", path, "error", err)
				return nil
			}
			results[i] = &Decoded{Path: path, Name: filepath.Base(path), Image: img}
			return nil
		})
	}
	// Per-file errors are logged, never returned
	_ = g.Wait()

	out := make([]Decoded, 0, len(paths))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// DecodeFile decodes a single png, jpeg or webp file.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("decoding %s image: empty bounds", format)
	}
	return img, nil
}
