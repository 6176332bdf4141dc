package geom

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
)

// Recorder is a [Surface] that records every call as a string instead of
// drawing. It exists for tests that assert paint order and style scoping.
type Recorder struct {
	Ops   []string
	depth int
	// CharWidth is the advance used by MeasureString (default 7).
	CharWidth float64
}

var _ Surface = (*Recorder)(nil)

func (r *Recorder) op(format string, args ...any) {
	r.Ops = append(r.Ops, fmt.Sprintf(format, args...))
}

// Depth returns the current Push/Pop nesting level.
func (r *Recorder) Depth() int { return r.depth }

// Reset discards recorded operations.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

func (r *Recorder) Push() { r.depth++; r.op("push") }
func (r *Recorder) Pop()  { r.depth--; r.op("pop") }

func (r *Recorder) Translate(x, y float64) { r.op("translate %.1f,%.1f", x, y) }
func (r *Recorder) Scale(sx, sy float64)   { r.op("scale %.3f,%.3f", sx, sy) }
func (r *Recorder) Clear()                 { r.op("clear-surface") }

func (r *Recorder) MoveTo(x, y float64) { r.op("move %.1f,%.1f", x, y) }
func (r *Recorder) LineTo(x, y float64) { r.op("line %.1f,%.1f", x, y) }
func (r *Recorder) DrawArc(x, y, rad, a1, a2 float64) {
	r.op("arc %.1f,%.1f r=%.1f", x, y, rad)
}
func (r *Recorder) ClosePath() { r.op("close") }
func (r *Recorder) ClearPath() { r.op("clear") }

func (r *Recorder) SetColor(c color.Color) {
	cr, cg, cb, ca := c.RGBA()
	r.op("color %02x%02x%02x%02x", cr>>8, cg>>8, cb>>8, ca>>8)
}
func (r *Recorder) SetLineWidth(w float64)     { r.op("width %.1f", w) }
func (r *Recorder) SetDash(dashes ...float64)  { r.op("dash %v", dashes) }
func (r *Recorder) SetFontFace(face font.Face) { r.op("font") }

func (r *Recorder) Fill()         { r.op("fill") }
func (r *Recorder) FillPreserve() { r.op("fill-preserve") }
func (r *Recorder) Stroke()       { r.op("stroke") }

func (r *Recorder) MeasureString(s string) (float64, float64) {
	cw := r.CharWidth
	if cw == 0 {
		cw = 7
	}
	return float64(len([]rune(s))) * cw, 13
}

func (r *Recorder) DrawStringAnchored(s string, x, y, ax, ay float64) {
	r.op("text %q %.1f,%.1f", s, x, y)
}

func (r *Recorder) DrawImageAnchored(im image.Image, x, y int, ax, ay float64) {
	b := im.Bounds()
	r.op("image %dx%d %d,%d", b.Dx(), b.Dy(), x, y)
}
