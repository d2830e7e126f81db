// Package viewport holds viewport metrics, culling bounds and cover-fit geometry.
package viewport

// Viewport is the visible area in logical window units.
type Viewport struct {
	W, H float32
}

// Margins expand the viewport into the culling box.
type Margins struct {
	Left, Right, Top, Bottom float32
}

// Contains reports whether (x, y) lies inside the viewport expanded by m.
// Points exactly on the edge are inside.
func (v Viewport) Contains(m Margins, x, y float32) bool {
	return x >= -m.Left && x <= v.W+m.Right && y >= -m.Top && y <= v.H+m.Bottom
}

// Center returns the viewport midpoint.
func (v Viewport) Center() (float32, float32) {
	return v.W / 2, v.H / 2
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float32
}

// CoverFit scales an image uniformly so it covers the viewport and centers it.
// Returns the zero Rect for degenerate image sizes.
func CoverFit(v Viewport, imgW, imgH float32) Rect {
	if imgW <= 0 || imgH <= 0 {
		return Rect{}
	}
	scale := v.W / imgW
	if s := v.H / imgH; s > scale {
		scale = s
	}
	w := imgW * scale
	h := imgH * scale
	return Rect{
		X: (v.W - w) / 2,
		Y: (v.H - h) / 2,
		W: w,
		H: h,
	}
}
