package assets

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeImagesSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.jpg")
	garbage := filepath.Join(dir, "garbage.webp")
	missing := filepath.Join(dir, "missing.png")

	writePNG(t, a, 4, 3)
	writeJPEG(t, b, 8, 6)
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	got := DecodeImages(context.Background(), []string{missing, a, garbage, b}, 2)

	if len(got) != 2 {
		t.Fatalf("decoded %d images, want 2", len(got))
	}
	if got[0].Name != "a.png" || got[1].Name != "b.jpg" {
		t.Errorf("order = [%s %s], want [a.png b.jpg]", got[0].Name, got[1].Name)
	}
	if w, h := got[0].Bounds(); w != 4 || h != 3 {
		t.Errorf("a.png bounds = %dx%d, want 4x3", w, h)
	}
	if w, h := got[1].Bounds(); w != 8 || h != 6 {
		t.Errorf("b.jpg bounds = %dx%d, want 8x6", w, h)
	}
}

func TestDecodeImagesPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 12; i++ {
		p := filepath.Join(dir, string(rune('a'+i))+".png")
		writePNG(t, p, i+1, 1)
		paths = append(paths, p)
	}

	got := DecodeImages(context.Background(), paths, 3)
	if len(got) != len(paths) {
		t.Fatalf("decoded %d images, want %d", len(got), len(paths))
	}
	for i, d := range got {
		if d.Path != paths[i] {
			t.Errorf("result %d = %s, want %s", i, d.Path, paths[i])
		}
		if w, _ := d.Bounds(); w != i+1 {
			t.Errorf("result %d width = %d, want %d", i, w, i+1)
		}
	}
}

func TestDecodeImagesEmpty(t *testing.T) {
	if got := DecodeImages(context.Background(), nil, 4); len(got) != 0 {
		t.Errorf("decoded %d images from no paths", len(got))
	}
}

func TestDecodeImagesCancelled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	writePNG(t, p, 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := DecodeImages(ctx, []string{p, p, p}, 1); len(got) != 0 {
		t.Errorf("decoded %d images after cancellation, want 0", len(got))
	}
}

func TestDecodeFileMissing(t *testing.T) {
	if _, err := DecodeFile(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
