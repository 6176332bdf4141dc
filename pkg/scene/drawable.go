package scene

import (
	"image"
	"image/color"

	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/snapshot"
	"github.com/matzehuels/kintree/pkg/tree"
)

// SelectorID is the reserved identifier of the selection box.
const SelectorID = "selector"

// Kind classifies drawables.
type Kind int

const (
	KindNode Kind = iota
	KindRelationship
	KindSelector
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindRelationship:
		return "relationship"
	case KindSelector:
		return "selector"
	default:
		return "unknown"
	}
}

// Drawable is one entry of the render list.
type Drawable interface {
	ID() string
	Kind() Kind
	// Bounds returns the model-space extent, empty when nothing is drawn.
	Bounds() geom.Rect
	// Contains reports whether p hits the drawable.
	Contains(p geom.Point) bool
	Paint(s geom.Surface, st *Style)
}

// Node is the drawable twin of a tree node. X is the left edge of the box and
// Y its vertical center.
type Node struct {
	id string

	X, Y, W, H float64

	Label    string
	Subtitle string
	Kinship  string
	InLaw    string
	ImageURL string
	Gender   snapshot.Gender
	Focal    bool
	Image    image.Image

	// StartRels and EndRels are identifiers of the relationships whose start
	// or end point sits on this node.
	StartRels []string
	EndRels   []string

	hovered  bool
	selected bool
}

func newNode(n *tree.Node, box geom.Rect) *Node {
	return &Node{
		id:       n.ID,
		X:        box.X,
		Y:        box.Y + box.H/2,
		W:        box.W,
		H:        box.H,
		Label:    n.Label,
		Subtitle: n.Subtitle,
		Kinship:  n.Kinship,
		InLaw:    n.InLaw,
		ImageURL: n.ImageURL,
		Gender:   n.Gender,
		Focal:    n.IsFocal,
	}
}

// NewNode returns an unconnected node drawable for p centered on center.
func NewNode(p snapshot.Person, center geom.Point) *Node {
	w := tree.DefaultWidth - 2*tree.NodeInset
	return &Node{
		id:       p.ID,
		X:        center.X - w/2,
		Y:        center.Y,
		W:        w,
		H:        tree.NodeHeight,
		Label:    p.DisplayName(),
		Subtitle: p.Years(),
		ImageURL: p.ImageURL,
		Gender:   p.Sex(),
	}
}

// ID returns the person identifier.
func (n *Node) ID() string { return n.id }

// Kind returns [KindNode].
func (n *Node) Kind() Kind { return KindNode }

// Hovered reports whether the pointer is over the node.
func (n *Node) Hovered() bool { return n.hovered }

// Selected reports whether the node is selected.
func (n *Node) Selected() bool { return n.selected }

// Relation returns the kinship term joined with the in-law term, as in
// "wife / daughter-in-law". Either part may be missing.
func (n *Node) Relation() string {
	switch {
	case n.InLaw == "":
		return n.Kinship
	case n.Kinship == "":
		return n.InLaw
	}
	return n.Kinship + " / " + n.InLaw
}

// Bounds returns the box of the node.
func (n *Node) Bounds() geom.Rect {
	return geom.Rect{X: n.X, Y: n.Y - n.H/2, W: n.W, H: n.H}
}

// TopCenter is where incoming parent lines land.
func (n *Node) TopCenter() geom.Point { return geom.Point{X: n.X + n.W/2, Y: n.Y - n.H/2} }

// Contains reports whether p lies inside the box.
func (n *Node) Contains(p geom.Point) bool { return n.Bounds().Contains(p) }

// BorderWidth returns the stroke width for the current state.
func (n *Node) BorderWidth() float64 {
	switch {
	case n.selected:
		return SelectedWidth
	case n.hovered:
		return HoverWidth
	default:
		return BorderWidth
	}
}

func (n *Node) borderColor(st *Style) color.Color {
	switch {
	case n.selected:
		return st.Selected
	case n.hovered:
		return st.Hover
	case n.Focal:
		return st.Focal
	default:
		return st.Border
	}
}

// Paint draws the box, the portrait, the name and the sub-line.
func (n *Node) Paint(s geom.Surface, st *Style) {
	geom.DrawRoundedRect(s, n.X, n.Y, n.W, n.H, geom.BoxStyle{
		Fill:        st.NodeFill,
		Border:      n.borderColor(st),
		BorderWidth: n.BorderWidth(),
		Radius:      CornerRadius,
	})

	textX := n.X + textPad
	if n.ImageURL != "" {
		if n.Image != nil {
			s.DrawImageAnchored(n.Image, int(textX+PortraitSize/2), int(n.Y), 0.5, 0.5)
		}
		textX += PortraitSize + textPad
	}
	avail := n.X + n.W - textPad - textX

	s.Push()
	defer s.Pop()
	if st.Face != nil {
		s.SetFontFace(st.Face)
	}
	s.SetColor(st.Text)
	label := fit(s, n.Label, avail)
	rel := n.Relation()
	if n.Subtitle == "" && rel == "" {
		s.DrawStringAnchored(label, textX, n.Y, 0, 0.5)
		return
	}
	s.DrawStringAnchored(label, textX, n.Y-n.H/6, 0, 0.5)

	if st.SmallFace != nil {
		s.SetFontFace(st.SmallFace)
	}
	s.SetColor(st.Muted)
	sub := n.Subtitle
	if rel != "" {
		if sub != "" {
			sub = rel + " · " + sub
		} else {
			sub = rel
		}
	}
	s.DrawStringAnchored(fit(s, sub, avail), textX, n.Y+n.H/5, 0, 0.5)
}

// fit truncates text with an ellipsis until it measures at most w.
func fit(s geom.Surface, text string, w float64) string {
	if tw, _ := s.MeasureString(text); tw <= w {
		return text
	}
	r := []rune(text)
	for len(r) > 0 {
		r = r[:len(r)-1]
		t := string(r) + "…"
		if tw, _ := s.MeasureString(t); tw <= w {
			return t
		}
	}
	return ""
}

// Attachment records where a connector meets a partner line: T is the
// fraction of the way from the line's start to its end.
type Attachment struct {
	RelID string  `json:"rel_id"`
	T     float64 `json:"t"`
}

// Relationship is the drawable twin of a tree relationship.
type Relationship struct {
	id string

	RelKind    tree.Kind
	Label      string
	Ex         bool
	Start, End geom.Point

	// Attached lists connectors glued to this line (partner lines only).
	Attached []Attachment

	hovered  bool
	selected bool
}

// ID returns the relationship identifier.
func (r *Relationship) ID() string { return r.id }

// Kind returns [KindRelationship].
func (r *Relationship) Kind() Kind { return KindRelationship }

// Hovered reports whether the pointer is over the line.
func (r *Relationship) Hovered() bool { return r.hovered }

// Selected reports whether the line is selected.
func (r *Relationship) Selected() bool { return r.selected }

// IsPartner reports whether the relationship is a partner line.
func (r *Relationship) IsPartner() bool { return r.RelKind == tree.KindPartner }

// Bounds returns the box around the line, widened by half its stroke.
func (r *Relationship) Bounds() geom.Rect {
	return geom.BoundsOf(r.Start, r.End).Inset(-r.LineWidth() / 2)
}

// LineWidth returns the stroke width for the current state. It doubles as the
// hit-test tolerance.
func (r *Relationship) LineWidth() float64 {
	switch {
	case r.selected:
		return SelectedWidth
	case r.hovered:
		return HoverWidth
	default:
		return LineWidth
	}
}

// Contains reports whether p lies within the stroke width of the line.
func (r *Relationship) Contains(p geom.Point) bool {
	return geom.DistanceToSegment(p, r.Start, r.End) <= r.LineWidth()
}

// Paint strokes the line, dashed for former partners.
func (r *Relationship) Paint(s geom.Surface, st *Style) {
	c := st.Line
	switch {
	case r.selected:
		c = st.Selected
	case r.hovered:
		c = st.Hover
	}
	var dash []float64
	if r.Ex {
		dash = ExDash
	}
	geom.DrawLine(s, r.Start, r.End, geom.LineStyle{Color: c, Width: r.LineWidth(), Dash: dash})
}

// attachmentT returns the fraction along the line start→end at which x
// falls, or 0.5 when the line has no horizontal extent.
func attachmentT(start, end geom.Point, x float64) float64 {
	den := end.X - start.X
	if den > -1e-9 && den < 1e-9 {
		return 0.5
	}
	return (x - start.X) / den
}

// SelectionBox outlines the selected drawable. It is never hit and never moves
// on its own.
type SelectionBox struct {
	target geom.Rect
	active bool
}

// ID returns [SelectorID].
func (b *SelectionBox) ID() string { return SelectorID }

// Kind returns [KindSelector].
func (b *SelectionBox) Kind() Kind { return KindSelector }

// Contains is always false.
func (b *SelectionBox) Contains(p geom.Point) bool { return false }

// Active reports whether something is selected.
func (b *SelectionBox) Active() bool { return b.active }

// Bounds returns the outline box, or the zero box when nothing is selected.
func (b *SelectionBox) Bounds() geom.Rect {
	if !b.active {
		return geom.Rect{}
	}
	return b.target.Inset(-SelectorPad)
}

func (b *SelectionBox) set(r geom.Rect) { b.target, b.active = r, true }
func (b *SelectionBox) clear()          { b.target, b.active = geom.Rect{}, false }

// Paint outlines the target when active.
func (b *SelectionBox) Paint(s geom.Surface, st *Style) {
	if !b.active {
		return
	}
	r := b.Bounds()
	geom.DrawRoundedRect(s, r.X, r.Y+r.H/2, r.W, r.H, geom.BoxStyle{
		Border:      st.Selector,
		BorderWidth: BorderWidth,
		Radius:      CornerRadius + SelectorPad,
	})
}
