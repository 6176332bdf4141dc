package view

import "github.com/matzehuels/kintree/pkg/geom"

// ZoomStep is the scale factor of one wheel notch.
const ZoomStep = 1.1

// Camera maps model space to screen space: screen = model*Scale + Offset.
type Camera struct {
	Offset geom.Point
	Scale  float64
}

// NewCamera returns the identity camera.
func NewCamera() Camera { return Camera{Scale: 1} }

// ToScreen maps a model-space point to screen space.
func (c Camera) ToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*c.Scale + c.Offset.X, Y: p.Y*c.Scale + c.Offset.Y}
}

// ToModel maps a screen-space point to model space.
func (c Camera) ToModel(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - c.Offset.X) / c.Scale, Y: (p.Y - c.Offset.Y) / c.Scale}
}

// Pan moves the camera by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.Offset = c.Offset.Add(dx, dy)
}

// ZoomAt multiplies the scale by factor while keeping the model point under
// the screen point at fixed. Non-positive factors are ignored.
func (c *Camera) ZoomAt(at geom.Point, factor float64) {
	if factor <= 0 {
		return
	}
	c.Offset = geom.Point{
		X: at.X - (at.X-c.Offset.X)*factor,
		Y: at.Y - (at.Y-c.Offset.Y)*factor,
	}
	c.Scale *= factor
}

// CenterOn pans so that model point p sits at screen point at.
func (c *Camera) CenterOn(p, at geom.Point) {
	c.Offset = geom.Point{X: at.X - p.X*c.Scale, Y: at.Y - p.Y*c.Scale}
}
