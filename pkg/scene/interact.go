package scene

import (
	"image"
	"slices"

	"github.com/matzehuels/kintree/pkg/geom"
)

// HitTest returns the topmost drawable containing the model-space point p,
// or nil.
func (s *Scene) HitTest(p geom.Point) Drawable {
	for i := len(s.items) - 1; i >= 0; i-- {
		d := s.items[i]
		if d.Kind() != KindSelector && d.Contains(p) {
			return d
		}
	}
	return nil
}

// Move translates the drawable id by (dx, dy) and cascades the move to the
// lines attached to it. Moving the selection box or an unknown id does
// nothing.
func (s *Scene) Move(id string, dx, dy float64) {
	switch d := s.byID[id].(type) {
	case *Node:
		d.X += dx
		d.Y += dy
		for _, rid := range d.StartRels {
			s.moveEndpoint(rid, false, dx, dy)
		}
		for _, rid := range d.EndRels {
			s.moveEndpoint(rid, true, dx, dy)
		}
	case *Relationship:
		d.Start = d.Start.Add(dx, dy)
		d.End = d.End.Add(dx, dy)
		s.reattach(d)
	default:
		return
	}
	s.refreshSelector()
	s.changed(s.byID[id])
}

func (s *Scene) moveEndpoint(id string, isEnd bool, dx, dy float64) {
	r, ok := s.byID[id].(*Relationship)
	if !ok {
		return
	}
	if isEnd {
		r.End = r.End.Add(dx, dy)
	} else {
		r.Start = r.Start.Add(dx, dy)
	}
	s.reattach(r)
}

// reattach puts the origins of r's attached connectors back at their
// fractional positions along r.
func (s *Scene) reattach(r *Relationship) {
	for _, a := range r.Attached {
		if c, ok := s.byID[a.RelID].(*Relationship); ok {
			c.Start = geom.Lerp(r.Start, r.End, a.T)
		}
	}
}

// Hovered returns the identifier of the hovered drawable, or "".
func (s *Scene) Hovered() string { return s.hovered }

// SetHover moves the hover highlight to id; "" clears it. The selected
// drawable never shows hover. It reports whether anything changed.
func (s *Scene) SetHover(id string) bool {
	if id == s.selected || id == SelectorID {
		id = ""
	}
	if _, ok := s.byID[id]; !ok {
		id = ""
	}
	if id == s.hovered {
		return false
	}
	if prev := s.byID[s.hovered]; prev != nil {
		setHovered(prev, false)
		s.changed(prev)
	}
	s.hovered = id
	if d := s.byID[id]; d != nil {
		setHovered(d, true)
		s.changed(d)
	}
	return true
}

func setHovered(d Drawable, on bool) {
	switch d := d.(type) {
	case *Node:
		d.hovered = on
	case *Relationship:
		d.hovered = on
	}
}

func setSelected(d Drawable, on bool) {
	switch d := d.(type) {
	case *Node:
		d.selected = on
	case *Relationship:
		d.selected = on
	}
}

// Selected returns the selected drawable, or nil.
func (s *Scene) Selected() Drawable { return s.byID[s.selected] }

// Select makes id the selection; "" or an unknown id clears it. A selected
// node moves to the end of the node run so it paints and hit-tests on top.
func (s *Scene) Select(id string) {
	if id == SelectorID {
		id = ""
	}
	if _, ok := s.byID[id]; !ok {
		id = ""
	}
	if id == s.selected {
		return
	}
	if prev := s.byID[s.selected]; prev != nil {
		setSelected(prev, false)
	}
	s.selected = id

	d := s.byID[id]
	if d != nil {
		if id == s.hovered {
			setHovered(d, false)
			s.hovered = ""
		}
		setSelected(d, true)
		if _, ok := d.(*Node); ok {
			s.raise(d)
		}
	}
	s.refreshSelector()
	s.changed(s.selector)
}

// raise moves d to just before the selection box.
func (s *Scene) raise(d Drawable) {
	i := slices.Index(s.items, d)
	if i < 0 {
		return
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.items = slices.Insert(s.items, len(s.items)-1, d)
}

func (s *Scene) refreshSelector() {
	if s.selector == nil {
		return
	}
	if d := s.byID[s.selected]; d != nil {
		s.selector.set(d.Bounds())
	} else {
		s.selector.clear()
	}
}

// Insert adds an unconnected node without laying out again. It reports false
// if the identifier is already taken or the scene is empty.
func (s *Scene) Insert(n *Node) bool {
	if s.selector == nil || n.id == "" {
		return false
	}
	if _, ok := s.byID[n.id]; ok {
		return false
	}
	s.items = slices.Insert(s.items, len(s.items)-1, Drawable(n))
	s.byID[n.id] = n
	s.changed(n)
	return true
}

// SetImage attaches a decoded portrait to node id.
func (s *Scene) SetImage(id string, img image.Image) {
	n, ok := s.byID[id].(*Node)
	if !ok {
		return
	}
	n.Image = img
	s.changed(n)
}

// ImageURLs maps node identifiers to their portrait URLs.
func (s *Scene) ImageURLs() map[string]string {
	out := map[string]string{}
	for _, n := range s.Nodes() {
		if n.ImageURL != "" {
			out[n.id] = n.ImageURL
		}
	}
	return out
}
