package view

import "github.com/matzehuels/kintree/pkg/geom"

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

type pointerState struct {
	down    bool
	panning bool
	dragID  string
	last    geom.Point
	// wasDragged suppresses the click that follows a drag.
	wasDragged bool
}

func (c *Controller) hit(p geom.Point) (id string, ok bool) {
	d := c.scene.HitTest(c.cam.ToModel(p))
	if d == nil {
		return "", false
	}
	return d.ID(), true
}

// PointerDown starts a camera drag (pan and home tools) or, with the select
// tool, a drag of the selected drawable if p is over it.
func (c *Controller) PointerDown(p geom.Point, b Button) {
	if b != ButtonLeft {
		return
	}
	c.pointer = pointerState{down: true, last: p}
	switch c.tool {
	case ToolPan, ToolHome:
		c.pointer.panning = true
	case ToolSelect:
		if sel := c.Selection(); !sel.Empty() {
			if id, ok := c.hit(p); ok && id == sel.ID {
				c.pointer.dragID = id
			}
		}
	}
}

// PointerMove continues a drag, or updates hover with the select tool.
func (c *Controller) PointerMove(p geom.Point) {
	d := p.Sub(c.pointer.last)
	c.pointer.last = p

	if c.pointer.down {
		if d.X != 0 || d.Y != 0 {
			c.pointer.wasDragged = true
		}
		switch {
		case c.pointer.panning:
			c.cam.Pan(d.X, d.Y)
			c.changed()
		case c.pointer.dragID != "":
			c.scene.Move(c.pointer.dragID, d.X/c.cam.Scale, d.Y/c.cam.Scale)
		}
		return
	}

	if c.tool == ToolSelect {
		id, _ := c.hit(p)
		c.scene.SetHover(id)
	}
}

// Dragged reports whether the pointer moved while pressed since the last
// [Controller.PointerDown], until a [Controller.Click] consumes it.
func (c *Controller) Dragged() bool { return c.pointer.wasDragged }

// PointerUp ends a drag.
func (c *Controller) PointerUp(p geom.Point) {
	c.pointer.down = false
	c.pointer.panning = false
	c.pointer.dragID = ""
}

// PointerLeave ends a drag and drops hover when the pointer leaves the
// surface.
func (c *Controller) PointerLeave() {
	c.PointerUp(c.pointer.last)
	if c.tool != ToolJumpTo {
		c.scene.SetHover("")
	}
}

// Click selects the drawable under p with the select tool, or clears the
// selection on empty canvas. A click ending a drag is ignored.
func (c *Controller) Click(p geom.Point) {
	if c.pointer.wasDragged {
		c.pointer.wasDragged = false
		return
	}
	if c.tool != ToolSelect {
		return
	}
	id, _ := c.hit(p)
	c.selectID(id)
}

// DoubleClick on a person asks the host to re-center on them.
func (c *Controller) DoubleClick(p geom.Point) {
	if c.pointer.wasDragged {
		return
	}
	id, ok := c.hit(p)
	if !ok {
		return
	}
	if _, isNode := c.scene.Node(id); isNode && c.hooks.OnRecenter != nil {
		c.hooks.OnRecenter(id)
	}
}

// ContextMenu resolves what lies under p and asks the host for a menu. With
// the select tool the target becomes the selection first.
func (c *Controller) ContextMenu(p geom.Point) {
	req := ContextMenuRequest{Point: p, Model: c.cam.ToModel(p), Kind: "canvas"}
	if d := c.scene.HitTest(req.Model); d != nil {
		req.Kind, req.ID = d.Kind().String(), d.ID()
	}
	if c.tool == ToolSelect {
		c.selectID(req.ID)
	}
	if c.hooks.OnContextMenu != nil {
		c.hooks.OnContextMenu(req)
	}
}

// Wheel zooms one step around p: in for negative dy, out for positive.
func (c *Controller) Wheel(p geom.Point, dy float64) {
	switch {
	case dy < 0:
		c.Zoom(p, ZoomStep)
	case dy > 0:
		c.Zoom(p, 1/ZoomStep)
	}
}

// Zoom scales by factor around the screen point p.
func (c *Controller) Zoom(p geom.Point, factor float64) {
	c.cam.ZoomAt(p, factor)
	c.changed()
}

// Pan moves the camera by a screen-space delta.
func (c *Controller) Pan(dx, dy float64) {
	c.cam.Pan(dx, dy)
	c.changed()
}
