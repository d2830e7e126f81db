package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/config"
	"github.com/pthm-cable/ashfall/viewport"
)

// BackgroundRenderer paints the base fill, the cover-fitted background
// image with cross-fades, and the multiplicative vignette.
type BackgroundRenderer struct {
	textures *TextureSet

	view      viewport.Viewport
	baseColor rl.Color
	vigTop    rl.Color
	vigBottom rl.Color

	current  int
	previous int
	fadeMS   float32
	fadeLeft float32 // Remaining cross-fade time; 0 when settled
}

// NewBackgroundRenderer creates a background renderer for the given textures.
func NewBackgroundRenderer(cfg *config.BackgroundConfig, textures *TextureSet, screenW, screenH float32) *BackgroundRenderer {
	return &BackgroundRenderer{
		textures:  textures,
		view:      viewport.Viewport{W: screenW, H: screenH},
		baseColor: rl.Color{R: cfg.BaseColor[0], G: cfg.BaseColor[1], B: cfg.BaseColor[2], A: 255},
		vigTop:    shade(1 - cfg.VignetteTop),
		vigBottom: shade(1 - cfg.VignetteBottom),
		previous:  -1,
		fadeMS:    float32(cfg.CrossfadeMS),
	}
}

// shade returns an opaque gray that scales colors by f under multiplied blending.
func shade(f float64) rl.Color {
	v := uint8(min(max(f, 0), 1) * 255)
	return rl.Color{R: v, G: v, B: v, A: 255}
}

// Resize updates the viewport.
func (b *BackgroundRenderer) Resize(w, h float32) {
	b.view = viewport.Viewport{W: w, H: h}
}

// SetIndex switches to background i, cross-fading from the current one.
func (b *BackgroundRenderer) SetIndex(i int) {
	if i == b.current {
		return
	}
	b.previous = b.current
	b.current = i
	b.fadeLeft = b.fadeMS
}

// Update advances the cross-fade by dtMS wall-clock milliseconds.
func (b *BackgroundRenderer) Update(dtMS float32) {
	if b.fadeLeft <= 0 {
		return
	}
	b.fadeLeft -= dtMS
	if b.fadeLeft <= 0 {
		b.fadeLeft = 0
		b.previous = -1
	}
}

// Progress returns the cross-fade progress in [0, 1]; 1 when settled.
func (b *BackgroundRenderer) Progress() float32 {
	if b.fadeLeft <= 0 || b.fadeMS <= 0 {
		return 1
	}
	return 1 - b.fadeLeft/b.fadeMS
}

// Draw paints the full background stack. Never fails; missing textures
// leave only the base fill and vignette.
func (b *BackgroundRenderer) Draw() {
	rl.ClearBackground(b.baseColor)

	progress := b.Progress()
	if progress < 1 {
		if tex, ok := b.textures.Get(b.previous); ok {
			b.drawImage(tex, 1)
		}
	}
	if tex, ok := b.textures.Get(b.current); ok {
		b.drawImage(tex, progress)
	}

	rl.BeginBlendMode(rl.BlendMultiplied)
	rl.DrawRectangleGradientV(0, 0, int32(b.view.W), int32(b.view.H), b.vigTop, b.vigBottom)
	rl.EndBlendMode()
}

func (b *BackgroundRenderer) drawImage(tex rl.Texture2D, alpha float32) {
	r := viewport.CoverFit(b.view, float32(tex.Width), float32(tex.Height))
	drawTexture(tex, rl.Rectangle{X: r.X, Y: r.Y, Width: r.W, Height: r.H}, alpha)
}
