// Package ui draws the control panel, lore panel and HUD over the animation.
// Widgets report user intent back to the caller; they never touch the
// simulation directly.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// PanelAnchor specifies where a panel is anchored on screen.
type PanelAnchor int

const (
	AnchorTopLeft PanelAnchor = iota
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
	AnchorCenter
)

// Place returns the top-left corner of a w x h panel anchored inside the
// screen with the given margin.
func (a PanelAnchor) Place(screenW, screenH, w, h, margin float32) (x, y float32) {
	switch a {
	case AnchorTopRight:
		return screenW - w - margin, margin
	case AnchorBottomLeft:
		return margin, screenH - h - margin
	case AnchorBottomRight:
		return screenW - w - margin, screenH - h - margin
	case AnchorCenter:
		return (screenW - w) / 2, (screenH - h) / 2
	default:
		return margin, margin
	}
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	HintColor     rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	BarFillHigh   rl.Color
	Padding       int32
	LineHeight    int32
	LabelWidth    int32
	BarHeight     int32
	FontSize      int32
	QuoteFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 12, G: 12, B: 16, A: 200},
		PanelBorder:   rl.Color{R: 60, G: 60, B: 72, A: 255},
		SectionHeader: rl.Color{R: 230, G: 190, B: 120, A: 255},
		LabelColor:    rl.LightGray,
		ValueColor:    rl.RayWhite,
		HintColor:     rl.Color{R: 140, G: 140, B: 150, A: 255},
		BarBg:         rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:       rl.Color{R: 255, G: 170, B: 70, A: 255},
		BarFillHigh:   rl.Color{R: 255, G: 90, B: 40, A: 255},
		Padding:       10,
		LineHeight:    16,
		LabelWidth:    70,
		BarHeight:     10,
		FontSize:      12,
		QuoteFontSize: 18,
	}
}
