package geom

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Surface is the 2D drawing surface the renderer paints on.
type Surface interface {
	Push()
	Pop()
	Translate(x, y float64)
	Scale(sx, sy float64)
	Clear()

	MoveTo(x, y float64)
	LineTo(x, y float64)
	DrawArc(x, y, r, angle1, angle2 float64)
	ClosePath()
	ClearPath()

	SetColor(c color.Color)
	SetLineWidth(w float64)
	SetDash(dashes ...float64)
	SetFontFace(face font.Face)

	Fill()
	FillPreserve()
	Stroke()

	MeasureString(s string) (w, h float64)
	DrawStringAnchored(s string, x, y, ax, ay float64)
	DrawImageAnchored(im image.Image, x, y int, ax, ay float64)
}

var _ Surface = (*gg.Context)(nil)

// BoxStyle configures [DrawRoundedRect]. A nil Fill or Border skips that pass.
type BoxStyle struct {
	Fill        color.Color
	Border      color.Color
	BorderWidth float64
	Radius      float64
}

// DrawRoundedRect draws a rounded rectangle anchored at its left edge and
// vertical center: x is the left edge, cy the vertical center. The path is
// straight edges joined by quarter arcs, closed, then filled and stroked.
func DrawRoundedRect(s Surface, x, cy, w, h float64, st BoxStyle) {
	r := max(0, min(st.Radius, w/2, h/2))
	top, bottom, right := cy-h/2, cy+h/2, x+w

	s.Push()
	defer s.Pop()

	s.MoveTo(x+r, top)
	s.LineTo(right-r, top)
	s.DrawArc(right-r, top+r, r, -math.Pi/2, 0)
	s.LineTo(right, bottom-r)
	s.DrawArc(right-r, bottom-r, r, 0, math.Pi/2)
	s.LineTo(x+r, bottom)
	s.DrawArc(x+r, bottom-r, r, math.Pi/2, math.Pi)
	s.LineTo(x, top+r)
	s.DrawArc(x+r, top+r, r, math.Pi, 3*math.Pi/2)
	s.ClosePath()

	switch {
	case st.Fill != nil && st.Border != nil:
		s.SetColor(st.Fill)
		s.FillPreserve()
		s.SetColor(st.Border)
		s.SetLineWidth(st.BorderWidth)
		s.Stroke()
	case st.Fill != nil:
		s.SetColor(st.Fill)
		s.Fill()
	case st.Border != nil:
		s.SetColor(st.Border)
		s.SetLineWidth(st.BorderWidth)
		s.Stroke()
	default:
		s.ClearPath()
	}
}

// LineStyle configures [DrawLine]. An empty Dash draws a solid line.
type LineStyle struct {
	Color color.Color
	Width float64
	Dash  []float64
}

// DrawLine strokes a straight line between two absolute points.
func DrawLine(s Surface, from, to Point, st LineStyle) {
	s.Push()
	defer s.Pop()

	s.SetColor(st.Color)
	s.SetLineWidth(st.Width)
	s.SetDash(st.Dash...)
	s.MoveTo(from.X, from.Y)
	s.LineTo(to.X, to.Y)
	s.Stroke()
}
