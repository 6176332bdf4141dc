package scene

import (
	"image/color"

	"golang.org/x/image/font"
)

// Stroke and shape constants in model units.
const (
	CornerRadius  = 10.0
	BorderWidth   = 2.0
	HoverWidth    = 4.0
	SelectedWidth = 5.0
	LineWidth     = 2.0

	// SelectorPad is the gap between a selected drawable and its highlight.
	SelectorPad = 6.0
	// PortraitSize is the edge length of a node portrait.
	PortraitSize = 44.0
	textPad      = 8.0
)

// ExDash is the dash pattern of former-partner lines.
var ExDash = []float64{8, 6}

// Style holds the colors and font faces a scene paints with. A nil face
// leaves the surface's current face in place.
type Style struct {
	Background color.Color
	NodeFill   color.Color
	Border     color.Color
	Focal      color.Color
	Hover      color.Color
	Selected   color.Color
	Line       color.Color
	Text       color.Color
	Muted      color.Color
	Selector   color.Color

	Face      font.Face
	SmallFace font.Face
}

func rgb(hex uint32) color.RGBA {
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

// DefaultStyle returns the light theme.
func DefaultStyle() Style {
	return Style{
		Background: rgb(0xf7f5f0),
		NodeFill:   rgb(0xffffff),
		Border:     rgb(0x8a8f98),
		Focal:      rgb(0xd9822b),
		Hover:      rgb(0x4a90d9),
		Selected:   rgb(0x2b6cb0),
		Line:       rgb(0x6b7280),
		Text:       rgb(0x1f2933),
		Muted:      rgb(0x7b8794),
		Selector:   rgb(0x2b6cb0),
	}
}

// DarkStyle returns the dark theme.
func DarkStyle() Style {
	return Style{
		Background: rgb(0x1b1f24),
		NodeFill:   rgb(0x2a2f36),
		Border:     rgb(0x5c6570),
		Focal:      rgb(0xf0a04b),
		Hover:      rgb(0x7fb3ea),
		Selected:   rgb(0x9cc7f5),
		Line:       rgb(0x8a939e),
		Text:       rgb(0xe8eaed),
		Muted:      rgb(0x9aa3ad),
		Selector:   rgb(0x9cc7f5),
	}
}

// Themes lists the named styles.
var Themes = map[string]func() Style{
	"light": DefaultStyle,
	"dark":  DarkStyle,
}

// ThemeStyle returns the named style. The empty name is the light theme.
func ThemeStyle(name string) (Style, bool) {
	if name == "" {
		return DefaultStyle(), true
	}
	fn, ok := Themes[name]
	if !ok {
		return Style{}, false
	}
	return fn(), true
}
