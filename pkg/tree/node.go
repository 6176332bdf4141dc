package tree

import "github.com/matzehuels/kintree/pkg/snapshot"

// Layout constants in model units.
const (
	DefaultWidth = 160.0
	NodeHeight   = 64.0
	SpacerWidth  = 40.0
	RowGap       = 80.0
	// NodeInset is the gap between a node's drawn box and its slot edges.
	NodeInset = 10.0
)

// Node is one person slot in the diagram.
type Node struct {
	ID       string
	Label    string
	Subtitle string
	// Kinship is the relation to the focal person ("" for the focal itself).
	Kinship string
	// InLaw is the relation to the focal person's parents, set only for the
	// focal partner when parents are known.
	InLaw    string
	ImageURL string
	Gender   snapshot.Gender

	IsPartner bool
	IsFocal   bool

	Children []*Relationship
	Parents  []*Relationship
	Partner  *Relationship
}

// NewNode returns a node for p.
func NewNode(p *snapshot.Person) *Node {
	return &Node{
		ID:       p.ID,
		Label:    p.DisplayName(),
		Subtitle: p.Years(),
		ImageURL: p.ImageURL,
		Gender:   p.Sex(),
	}
}

// Width returns the width of the node's slot.
func (n *Node) Width() float64 {
	if len(n.Children) == 0 {
		return DefaultWidth
	}
	w := float64(len(n.Children)-1) * SpacerWidth
	for _, r := range n.Children {
		w += r.To.UnitWidth()
	}
	return w
}

// UnitWidth returns the width of the node's whole footprint: its own slot
// plus, when it leads a couple, the partner relationship and the partner.
func (n *Node) UnitWidth() float64 {
	if !n.leadsCouple() {
		return n.Width()
	}
	return n.Partner.Width() + n.Width() + n.Partner.To.Width()
}

func (n *Node) leadsCouple() bool {
	return n.Partner != nil && !n.IsPartner
}

// AddChild links child below n with a single-parent relationship.
func (n *Node) AddChild(child *Node) *Relationship {
	r := &Relationship{
		ID:    "parent:" + n.ID + ":" + child.ID,
		Kind:  KindParent,
		Label: ChildTerm(child.Gender),
		From:  n,
		To:    child,
	}
	n.Children = append(n.Children, r)
	child.Parents = append(child.Parents, r)
	return r
}

// Couple places partner to the right of n and returns the partner
// relationship. A node leads at most one couple; a second call replaces it.
func (n *Node) Couple(partner *Node, ex bool) *Relationship {
	partner.IsPartner = true
	r := &Relationship{
		ID:    "partner:" + n.ID + ":" + partner.ID,
		Kind:  KindPartner,
		Label: PartnerLinkTerm(ex),
		From:  n,
		To:    partner,
		Ex:    ex,
	}
	n.Partner = r
	return r
}

// Kind discriminates relationship variants.
type Kind int

const (
	KindParent Kind = iota
	KindParents
	KindPartner
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindParent:
		return "parent"
	case KindParents:
		return "parents"
	case KindPartner:
		return "partner"
	default:
		return "unknown"
	}
}

// Relationship links person slots.
//
// For KindParent, From is the parent and To the child. For KindParents, From
// and With are the couple and To the child. For KindPartner, From is the
// leading partner and To the partner placed on its right.
type Relationship struct {
	ID    string
	Kind  Kind
	Label string
	From  *Node
	With  *Node
	To    *Node
	Ex    bool

	// Children holds the couple's KindParents relationships (KindPartner only).
	Children []*Relationship
}

// Horizontal reports whether the relationship is drawn as a horizontal line.
func (r *Relationship) Horizontal() bool { return r.Kind == KindPartner }

// Width returns the horizontal extent the relationship reserves. Only partner
// relationships with children reserve any.
func (r *Relationship) Width() float64 {
	if r.Kind != KindPartner || len(r.Children) == 0 {
		return 0
	}
	w := float64(len(r.Children)+1) * 0.5 * DefaultWidth
	for _, c := range r.Children {
		w += c.To.UnitWidth()
	}
	return w
}

// AddChild links child below the couple r.
func (r *Relationship) AddChild(child *Node) *Relationship {
	c := &Relationship{
		ID:    "parents:" + r.From.ID + ":" + r.To.ID + ":" + child.ID,
		Kind:  KindParents,
		Label: ChildTerm(child.Gender),
		From:  r.From,
		With:  r.To,
		To:    child,
	}
	r.Children = append(r.Children, c)
	child.Parents = append(child.Parents, c)
	return c
}

// Walk calls fn for every node reachable from root in visitation order.
func Walk(root *Node, fn func(*Node)) {
	if root == nil {
		return
	}
	fn(root)
	for _, r := range root.Children {
		Walk(r.To, fn)
	}
	if root.leadsCouple() {
		Walk(root.Partner.To, fn)
		for _, c := range root.Partner.Children {
			Walk(c.To, fn)
		}
	}
}

// Find returns the node with the given id, or nil.
func Find(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}
