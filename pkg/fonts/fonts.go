// Package fonts provides the label typefaces for raster rendering.
//
// The Go fonts are compiled into the binary (golang.org/x/image/font/gofont),
// so rendering never depends on fonts installed on the host. Faces are built
// with freetype's truetype rasterizer, which is what [gg.Context] expects.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Label and detail sizes in points at 72 DPI, i.e. in model units.
const (
	LabelSize  = 14.0
	DetailSize = 11.0
)

// FontFamily is the CSS font-family used in SVG exports.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers without the Go fonts.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// Parsed fonts (computed once on first access).
var (
	regular, bold *truetype.Font
	parseOnce     sync.Once
	parseErr      error
)

func parse() error {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			return
		}
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
	return parseErr
}

// Regular returns the regular Go face at size points.
func Regular(size float64) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	return newFace(regular, size), nil
}

// Bold returns the bold Go face at size points.
func Bold(size float64) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	return newFace(bold, size), nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Faces returns the node label and detail faces.
func Faces() (label, detail font.Face, err error) {
	if label, err = Bold(LabelSize); err != nil {
		return nil, nil, err
	}
	if detail, err = Regular(DetailSize); err != nil {
		return nil, nil, err
	}
	return label, detail, nil
}
