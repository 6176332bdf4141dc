package scene

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/tree"
)

// Option configures [Build].
type Option func(*Scene)

// WithOnChange registers the function called after a drawable's visual state
// changes. It runs synchronously on the caller's goroutine.
func WithOnChange(fn func(Drawable)) Option { return func(s *Scene) { s.onChange = fn } }

// WithStyle sets the paint style. The default is [DefaultStyle].
func WithStyle(st Style) Option { return func(s *Scene) { s.style = st } }

// Scene owns a render list. It is not safe for concurrent use.
type Scene struct {
	items    []Drawable
	byID     map[string]Drawable
	selector *SelectionBox
	focal    *Node
	style    Style
	onChange func(Drawable)

	hovered  string
	selected string
}

// Build lays out root with its slot's left-center at origin and returns the
// resulting scene. A nil root yields an empty scene.
func Build(root *tree.Node, origin geom.Point, opts ...Option) *Scene {
	s := &Scene{byID: map[string]Drawable{}, style: DefaultStyle()}
	for _, opt := range opts {
		opt(s)
	}
	if root == nil {
		return s
	}

	placed := tree.Layout(root, origin)
	nodes := map[*tree.Node]*Node{}
	for _, p := range placed {
		if p.Node == nil {
			continue
		}
		d := newNode(p.Node, p.Box)
		nodes[p.Node] = d
		if d.Focal {
			s.focal = d
		}
		s.add(d)
	}

	rels := map[*tree.Relationship]*Relationship{}
	for _, p := range placed {
		if p.Rel == nil {
			continue
		}
		r := &Relationship{
			id:      p.Rel.ID,
			RelKind: p.Rel.Kind,
			Label:   p.Rel.Label,
			Ex:      p.Rel.Ex,
			Start:   p.Start,
			End:     p.End,
		}
		rels[p.Rel] = r
		s.add(r)

		// Couple connectors start on the partner line, not on a node.
		if p.Rel.Kind != tree.KindParents {
			from := nodes[p.Rel.From]
			from.StartRels = append(from.StartRels, r.id)
		}
		to := nodes[p.Rel.To]
		to.EndRels = append(to.EndRels, r.id)
	}

	s.sortItems()

	for tr, r := range rels {
		if tr.Kind != tree.KindPartner {
			continue
		}
		for _, c := range tr.Children {
			conn := rels[c]
			r.Attached = append(r.Attached, Attachment{
				RelID: conn.id,
				T:     attachmentT(r.Start, r.End, conn.Start.X),
			})
		}
	}

	s.selector = &SelectionBox{}
	s.add(s.selector)
	return s
}

func (s *Scene) add(d Drawable) {
	s.items = append(s.items, d)
	s.byID[d.ID()] = d
}

func paintRank(d Drawable) int {
	switch d := d.(type) {
	case *Relationship:
		if d.IsPartner() {
			return 1
		}
		return 0
	case *Node:
		return 2
	default:
		return 3
	}
}

func (s *Scene) sortItems() {
	slices.SortStableFunc(s.items, func(a, b Drawable) int {
		return paintRank(a) - paintRank(b)
	})
}

// Items returns the render list in paint order. The slice is owned by the
// scene and must not be modified.
func (s *Scene) Items() []Drawable { return s.items }

// Len returns the number of drawables, including the selection box.
func (s *Scene) Len() int { return len(s.items) }

// Empty reports whether the scene has nothing to draw.
func (s *Scene) Empty() bool { return len(s.items) == 0 }

// Get returns the drawable with the given identifier.
func (s *Scene) Get(id string) (Drawable, bool) {
	d, ok := s.byID[id]
	return d, ok
}

// Node returns the node drawable with the given identifier.
func (s *Scene) Node(id string) (*Node, bool) {
	n, ok := s.byID[id].(*Node)
	return n, ok
}

// Relationship returns the relationship drawable with the given identifier.
func (s *Scene) Relationship(id string) (*Relationship, bool) {
	r, ok := s.byID[id].(*Relationship)
	return r, ok
}

// Nodes returns the node drawables in paint order.
func (s *Scene) Nodes() []*Node {
	var out []*Node
	for _, d := range s.items {
		if n, ok := d.(*Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// Focal returns the focal person's node, or nil.
func (s *Scene) Focal() *Node { return s.focal }

// Selector returns the selection box, or nil for an empty scene.
func (s *Scene) Selector() *SelectionBox { return s.selector }

// Style returns the paint style.
func (s *Scene) Style() *Style { return &s.style }

// Bounds returns the union of all drawables' extents.
func (s *Scene) Bounds() geom.Rect {
	var r geom.Rect
	for _, d := range s.items {
		r = r.Union(d.Bounds())
	}
	return r
}

// Paint paints the render list in order.
func (s *Scene) Paint(surf geom.Surface) {
	for _, d := range s.items {
		d.Paint(surf, &s.style)
	}
}

func (s *Scene) changed(d Drawable) {
	if s.onChange != nil {
		s.onChange(d)
	}
}
