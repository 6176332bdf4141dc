package tree

import "github.com/matzehuels/kintree/pkg/geom"

// Placement is the absolute position of one visited node or relationship.
// Exactly one of Node and Rel is set.
type Placement struct {
	Node *Node
	Rel  *Relationship

	// Slot is the horizontal band reserved for the entity: a node's own
	// width, or a partner relationship's width. It is empty for vertical
	// relationships.
	Slot geom.Rect
	// Box is the drawn rectangle of a node.
	Box geom.Rect
	// Start and End are the endpoints of a relationship line.
	Start, End geom.Point
}

// Layout places the tree rooted at root. origin is the left edge and
// vertical center of the root's slot. Placements are returned in visitation
// order: a node, its own children, then its partner relationship, partner and
// the couple's children. A nil root yields no placements.
func Layout(root *Node, origin geom.Point) []Placement {
	if root == nil {
		return nil
	}
	var l layouter
	l.place(root, origin.X, origin.Y)
	return l.out
}

type layouter struct {
	out []Placement
}

// boxOf returns the drawn box of a node whose slot starts at x, centered at y.
func boxOf(n *Node, x, y float64) geom.Rect {
	w := n.Width()
	return geom.Rect{
		X: x + (w-DefaultWidth)/2 + NodeInset,
		Y: y - NodeHeight/2,
		W: DefaultWidth - 2*NodeInset,
		H: NodeHeight,
	}
}

// placeBelow places n so that its box's top center lands on top.
func (l *layouter) placeBelow(n *Node, top geom.Point) {
	l.place(n, top.X-n.Width()/2, top.Y+NodeHeight/2)
}

func (l *layouter) place(n *Node, x, y float64) {
	w := n.Width()
	box := boxOf(n, x, y)
	l.out = append(l.out, Placement{
		Node: n,
		Slot: geom.Rect{X: x, Y: box.Y, W: w, H: NodeHeight},
		Box:  box,
	})

	childTop := y + NodeHeight/2 + RowGap
	from := geom.Point{X: box.X + box.W/2, Y: box.Y + box.H}
	cursor := x
	for _, r := range n.Children {
		top := geom.Point{X: cursor + r.To.Width()/2, Y: childTop}
		l.out = append(l.out, Placement{Rel: r, Start: from, End: top})
		l.placeBelow(r.To, top)
		cursor += SpacerWidth + r.To.UnitWidth()
	}

	if !n.leadsCouple() {
		return
	}
	p := n.Partner
	pw := p.Width()
	partnerX := x + w + pw
	partnerBox := boxOf(p.To, partnerX, y)
	start := geom.Point{X: box.X + box.W, Y: y}
	end := geom.Point{X: partnerBox.X, Y: y}
	l.out = append(l.out, Placement{
		Rel:   p,
		Slot:  geom.Rect{X: x + w, Y: box.Y, W: pw, H: NodeHeight},
		Start: start,
		End:   end,
	})
	l.place(p.To, partnerX, y)

	cursor = x + w + 0.5*DefaultWidth
	for _, c := range p.Children {
		top := geom.Point{X: cursor + c.To.Width()/2, Y: childTop}
		l.out = append(l.out, Placement{Rel: c, Start: geom.Point{X: top.X, Y: y}, End: top})
		l.placeBelow(c.To, top)
		cursor += 0.5*DefaultWidth + c.To.UnitWidth()
	}
}
