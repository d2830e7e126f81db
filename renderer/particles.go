package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ashfall/components"
	"github.com/pthm-cable/ashfall/systems"
)

// Preview size for carriers with a linked image.
const (
	previewW = 48
	previewH = 30
)

var (
	ambientColor = rl.Color{R: 220, G: 220, B: 220, A: 255}
	sparkCore    = rl.Color{R: 255, G: 200, B: 80, A: 255}
	sparkEdge    = rl.Color{R: 255, G: 70, B: 20, A: 255}
	wispColor    = rl.Color{R: 150, G: 200, B: 255, A: 255}
	runeColor    = rl.Color{R: 200, G: 160, B: 255, A: 255}
)

type preview struct {
	x, y  float32
	alpha float32
	image int32
}

// ParticleRenderer renders the entity population.
type ParticleRenderer struct {
	textures *TextureSet
	previews []preview // Reused between frames
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(textures *TextureSet) *ParticleRenderer {
	return &ParticleRenderer{textures: textures}
}

// Draw renders all entities with additive blending, then the linked-image
// previews with normal alpha blending on top.
func (r *ParticleRenderer) Draw(pop *systems.Population) {
	r.previews = r.previews[:0]

	rl.BeginBlendMode(rl.BlendAdditive)
	pop.Each(func(pos *components.Position, _ *components.Velocity, p *components.Particle) {
		alpha := clamp01(p.Alpha)
		x, y := int32(pos.X), int32(pos.Y)

		switch p.Kind {
		case components.KindAmbient:
			rl.DrawCircleV(rl.Vector2{X: pos.X, Y: pos.Y}, max(p.Size, 0.5), fade(ambientColor, alpha))
			if alpha > 0.3 && p.HasImage() {
				r.previews = append(r.previews, preview{x: pos.X, y: pos.Y, alpha: alpha, image: p.Image})
			}
		case components.KindSpark:
			rl.DrawCircleGradient(x, y, p.Size*6, fade(sparkEdge, alpha*0.8), fade(sparkEdge, 0))
			rl.DrawCircleGradient(x, y, p.Size*2, fade(sparkCore, alpha), fade(sparkEdge, 0))
		case components.KindWisp:
			rl.DrawCircleGradient(x, y, p.Size*14, fade(wispColor, alpha*0.95), fade(wispColor, 0))
		case components.KindRune:
			rl.DrawCircleV(rl.Vector2{X: pos.X, Y: pos.Y}, p.Size*3, fade(runeColor, alpha*0.8))
		}
	})
	rl.EndBlendMode()

	for _, pv := range r.previews {
		tex, ok := r.textures.Get(int(pv.image))
		if !ok {
			continue
		}
		dst := rl.Rectangle{X: pv.x - previewW/2, Y: pv.y - previewH/2, Width: previewW, Height: previewH}
		drawTexture(tex, dst, pv.alpha)
	}
}

func fade(c rl.Color, alpha float32) rl.Color {
	c.A = uint8(clamp01(alpha) * 255)
	return c
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
