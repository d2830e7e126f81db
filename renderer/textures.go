package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/assets"
)

// TextureSet holds the uploaded background images in load order.
type TextureSet struct {
	textures []rl.Texture2D
}

// UploadTextures converts decoded images into GPU textures.
// Must run on the main goroutine after the window is created.
func UploadTextures(decoded []assets.Decoded) *TextureSet {
	ts := &TextureSet{textures: make([]rl.Texture2D, 0, len(decoded))}
	for _, d := range decoded {
		img := rl.NewImageFromImage(d.Image)
		tex := rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)

		rl.SetTextureFilter(tex, rl.FilterBilinear)
		ts.textures = append(ts.textures, tex)
	}
	return ts
}

// Len returns the number of textures. Safe on a nil set.
func (ts *TextureSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.textures)
}

// Get returns the texture at i.
func (ts *TextureSet) Get(i int) (rl.Texture2D, bool) {
	if i < 0 || i >= ts.Len() {
		return rl.Texture2D{}, false
	}
	return ts.textures[i], true
}

// Unload frees every texture.
func (ts *TextureSet) Unload() {
	if ts == nil {
		return
	}
	for _, tex := range ts.textures {
		rl.UnloadTexture(tex)
	}
	ts.textures = nil
}

// drawTexture draws tex stretched into dst, tinted by alpha.
func drawTexture(tex rl.Texture2D, dst rl.Rectangle, alpha float32) {
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(tex.Width), Height: float32(tex.Height)}
	rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.Fade(rl.White, alpha))
}
