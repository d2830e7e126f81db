package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	loreWidth      = 420
	loreTextHeight = 120
	loreImageH     = 200
)

// LorePanel shows a revealed quote with an optional background preview.
type LorePanel struct {
	renderer *Renderer
	bounds   rl.Rectangle // Last drawn; empty while hidden
}

// NewLorePanel creates a lore panel.
func NewLorePanel() *LorePanel {
	return &LorePanel{renderer: NewRenderer()}
}

// Hide forgets the panel bounds so Contains stops matching.
func (l *LorePanel) Hide() {
	l.bounds = rl.Rectangle{}
}

// Contains reports whether (x, y) falls on the panel as last drawn.
func (l *LorePanel) Contains(x, y float32) bool {
	return l.bounds.Width > 0 && rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, l.bounds)
}

// Draw renders the panel centered on screen. image may be nil. Returns
// true when the user closes the panel.
func (l *LorePanel) Draw(quote string, image *rl.Texture2D, screenW, screenH float32) bool {
	r := l.renderer
	pad := float32(r.Theme.Padding)

	height := float32(loreTextHeight)
	if image != nil {
		height += loreImageH + pad
	}
	x, y := AnchorCenter.Place(screenW, screenH, loreWidth, height, 0)

	l.bounds = rl.Rectangle{X: x, Y: y, Width: loreWidth, Height: height}
	closed := gui.WindowBox(l.bounds, "Fragment")

	textY := y + 24 + pad
	if image != nil {
		dst := rl.Rectangle{X: x + pad, Y: textY, Width: loreWidth - 2*pad, Height: loreImageH}
		src := rl.Rectangle{Width: float32(image.Width), Height: float32(image.Height)}
		rl.DrawTexturePro(*image, src, dst, rl.Vector2{}, 0, rl.White)
		textY += loreImageH + pad
	}
	r.DrawWrapped(int32(x+pad), int32(textY), quote, r.Theme.QuoteFontSize, int32(loreWidth-2*pad), rl.DarkGray)

	return closed
}
