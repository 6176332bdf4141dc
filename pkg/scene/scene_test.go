package scene

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/snapshot"
	"github.com/matzehuels/kintree/pkg/tree"
)

func coupleScene(t *testing.T, opts ...Option) *Scene {
	t.Helper()
	root, err := tree.FromSnapshot(&snapshot.Snapshot{
		Focal:           &snapshot.Person{ID: "A"},
		Partner:         &snapshot.Person{ID: "B"},
		PartnerChildren: []snapshot.Person{{ID: "C"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return Build(root, geom.Point{}, opts...)
}

func ids(s *Scene) []string {
	out := make([]string, 0, s.Len())
	for _, d := range s.Items() {
		out = append(out, d.ID())
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func near(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestBuildCoupleScenario(t *testing.T) {
	s := coupleScene(t)

	want := []string{"parents:A:B:C", "partner:A:B", "A", "B", "C", SelectorID}
	if got := ids(s); !sameIDs(got, want) {
		t.Fatalf("render list = %v, want %v", got, want)
	}

	link, _ := s.Relationship("parents:A:B:C")
	if link.Label != "child" {
		t.Errorf("child link label = %q, want child", link.Label)
	}
	partner, _ := s.Relationship("partner:A:B")
	if len(partner.Attached) != 1 || partner.Attached[0].RelID != link.ID() {
		t.Fatalf("attachments = %+v", partner.Attached)
	}
	if got := partner.Attached[0].T; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("attachment T = %v, want 0.5", got)
	}
	if s.Focal() == nil || s.Focal().ID() != "A" {
		t.Errorf("focal = %v", s.Focal())
	}

	a, _ := s.Node("A")
	b, _ := s.Node("B")
	c, _ := s.Node("C")
	if !sameIDs(a.StartRels, []string{"partner:A:B"}) || len(a.EndRels) != 0 {
		t.Errorf("A rels = %v / %v", a.StartRels, a.EndRels)
	}
	if !sameIDs(b.EndRels, []string{"partner:A:B"}) {
		t.Errorf("B end rels = %v", b.EndRels)
	}
	if !sameIDs(c.EndRels, []string{"parents:A:B:C"}) || len(c.StartRels) != 0 {
		t.Errorf("C rels = %v / %v", c.StartRels, c.EndRels)
	}
}

func TestBuildNil(t *testing.T) {
	s := Build(nil, geom.Point{})
	if !s.Empty() || s.Selector() != nil {
		t.Fatalf("nil root built %d drawables", s.Len())
	}
	if s.HitTest(geom.Point{}) != nil {
		t.Error("empty scene hit something")
	}
	var r geom.Recorder
	s.Paint(&r)
	if len(r.Ops) != 0 {
		t.Errorf("empty scene painted %v", r.Ops)
	}
	s.Move("x", 1, 1)
	s.Select("x")
	if s.Insert(NewNode(snapshot.Person{ID: "n"}, geom.Point{})) {
		t.Error("insert into empty scene succeeded")
	}
}

func family(depth, arity int, seq *int) *tree.Node {
	*seq++
	n := &tree.Node{ID: fmt.Sprint("n", *seq)}
	if depth == 0 {
		return n
	}
	for i := range arity {
		c := family(depth-1, arity, seq)
		if i%2 == 0 {
			n.AddChild(c)
			continue
		}
		if n.Partner == nil {
			*seq++
			n.Couple(&tree.Node{ID: fmt.Sprint("p", *seq)}, false)
		}
		n.Partner.AddChild(c)
	}
	return n
}

func TestPaintOrderContract(t *testing.T) {
	for arity := 1; arity <= 4; arity++ {
		for depth := 1; depth <= 3; depth++ {
			var seq int
			s := Build(family(depth, arity, &seq), geom.Point{})
			items := s.Items()
			if items[len(items)-1].Kind() != KindSelector {
				t.Fatalf("arity %d depth %d: selection box not last", arity, depth)
			}
			lastPlain, firstPartner, lastPartner, firstNode := -1, len(items), -1, len(items)
			for i, d := range items {
				switch d := d.(type) {
				case *Relationship:
					if d.IsPartner() {
						firstPartner = min(firstPartner, i)
						lastPartner = i
					} else {
						lastPlain = i
					}
				case *Node:
					firstNode = min(firstNode, i)
				}
			}
			if lastPlain > firstPartner || lastPartner > firstNode {
				t.Errorf("arity %d depth %d: order violated: %v", arity, depth, ids(s))
			}
		}
	}
}

func TestHitTestNode(t *testing.T) {
	s := coupleScene(t)
	c, _ := s.Node("C")
	b := c.Bounds()
	tests := []struct {
		name string
		p    geom.Point
		want bool
	}{
		{"left edge center", geom.Point{X: c.X, Y: c.Y}, true},
		{"right edge", geom.Point{X: b.X + b.W, Y: c.Y}, true},
		{"bottom edge", geom.Point{X: c.X + 1, Y: b.Y + b.H}, true},
		{"left outside", geom.Point{X: c.X - 1, Y: c.Y}, false},
		{"right outside", geom.Point{X: b.X + b.W + 1, Y: c.Y}, false},
		{"below", geom.Point{X: c.X + 1, Y: b.Y + b.H + 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestHitTestLine(t *testing.T) {
	s := coupleScene(t)
	r, _ := s.Relationship("partner:A:B")
	mid := geom.Lerp(r.Start, r.End, 0.25)
	if !r.Contains(mid) {
		t.Error("point on segment missed")
	}
	if !r.Contains(mid.Add(0, r.LineWidth())) {
		t.Error("point at tolerance missed")
	}
	if r.Contains(mid.Add(0, 2*r.LineWidth())) {
		t.Error("point at twice the line width hit")
	}
	s.Select(r.ID())
	if !r.Contains(mid.Add(0, 2*LineWidth)) {
		t.Error("selected line tolerance did not widen")
	}
}

func TestHitTestTopmost(t *testing.T) {
	s := coupleScene(t)
	a, _ := s.Node("A")
	partner, _ := s.Relationship("partner:A:B")

	// The partner line starts on A's right edge; the node paints on top.
	if got := s.HitTest(partner.Start); got == nil || got.ID() != "A" {
		t.Errorf("HitTest(line start) = %v, want A", got)
	}
	if got := s.HitTest(geom.Lerp(partner.Start, partner.End, 0.25)); got == nil || got.ID() != partner.ID() {
		t.Errorf("HitTest(line) = %v, want partner line", got)
	}
	if got := s.HitTest(geom.Point{X: -500, Y: -500}); got != nil {
		t.Errorf("HitTest(empty space) = %v", got.ID())
	}

	// Drag B over A; once selected, B wins the overlap.
	b, _ := s.Node("B")
	s.Move("B", a.X-b.X, 0)
	if got := s.HitTest(geom.Point{X: a.X + 1, Y: a.Y}); got.ID() != "B" {
		t.Fatalf("later node should win, got %s", got.ID())
	}
	s.Select("A")
	if got := s.HitTest(geom.Point{X: a.X + 1, Y: a.Y}); got.ID() != "A" {
		t.Errorf("selected node should win, got %s", got.ID())
	}
	items := s.Items()
	if items[len(items)-2].ID() != "A" {
		t.Errorf("selected node not raised: %v", ids(s))
	}
}

func TestMoveAttachmentRoundTrip(t *testing.T) {
	s := coupleScene(t)
	partner, _ := s.Relationship("partner:A:B")
	link, _ := s.Relationship("parents:A:B:C")
	start, end := link.Start, link.End

	s.Move(partner.ID(), 37.5, -12.25)
	if !near(link.Start, start.Add(37.5, -12.25)) {
		t.Errorf("connector origin did not follow: %v", link.Start)
	}
	if link.End != end {
		t.Errorf("connector end moved: %v", link.End)
	}
	s.Move(partner.ID(), -37.5, 12.25)
	if !near(link.Start, start) || !near(link.End, end) {
		t.Errorf("round trip: %v-%v, want %v-%v", link.Start, link.End, start, end)
	}
}

func TestMoveNodeCascade(t *testing.T) {
	s := coupleScene(t)
	partner, _ := s.Relationship("partner:A:B")
	link, _ := s.Relationship("parents:A:B:C")
	pStart, pEnd, cEnd := partner.Start, partner.End, link.End

	// Moving B stretches the partner line; the connector keeps its fraction.
	s.Move("B", 100, 0)
	if partner.Start != pStart || !near(partner.End, pEnd.Add(100, 0)) {
		t.Fatalf("partner line = %v-%v", partner.Start, partner.End)
	}
	if want := geom.Lerp(partner.Start, partner.End, 0.5); !near(link.Start, want) {
		t.Errorf("connector origin = %v, want %v", link.Start, want)
	}

	s.Move("A", 0, 10)
	if !near(partner.Start, pStart.Add(0, 10)) {
		t.Errorf("partner start = %v", partner.Start)
	}

	s.Move("C", 5, 5)
	if !near(link.End, cEnd.Add(5, 5)) {
		t.Errorf("connector end = %v", link.End)
	}

	before := ids(s)
	s.Move(SelectorID, 10, 10)
	s.Move("missing", 10, 10)
	if !sameIDs(ids(s), before) {
		t.Error("no-op moves changed the list")
	}
}

func TestHoverAndSelect(t *testing.T) {
	var changes []string
	s := coupleScene(t, WithOnChange(func(d Drawable) { changes = append(changes, d.ID()) }))
	a, _ := s.Node("A")

	if !s.SetHover("A") || !a.Hovered() || a.BorderWidth() != HoverWidth {
		t.Fatal("hover not applied")
	}
	if s.SetHover("A") {
		t.Error("repeated hover reported a change")
	}
	if !sameIDs(changes, []string{"A"}) {
		t.Errorf("changes = %v", changes)
	}

	s.Select("A")
	if a.Hovered() || !a.Selected() || a.BorderWidth() != SelectedWidth || s.Hovered() != "" {
		t.Error("selection should replace hover")
	}
	if !s.Selector().Active() || s.Selector().Bounds() != a.Bounds().Inset(-SelectorPad) {
		t.Errorf("selector bounds = %+v", s.Selector().Bounds())
	}
	if s.SetHover("A") {
		t.Error("selected drawable took hover")
	}

	s.Move("A", 10, 0)
	if s.Selector().Bounds() != a.Bounds().Inset(-SelectorPad) {
		t.Error("selector did not follow the moved selection")
	}

	s.SetHover(SelectorID)
	if s.Hovered() != "" {
		t.Error("selector took hover")
	}

	s.Select("")
	if s.Selected() != nil || s.Selector().Active() || a.Selected() {
		t.Error("selection not cleared")
	}
}

func TestInsert(t *testing.T) {
	s := coupleScene(t)
	n := NewNode(snapshot.Person{ID: "N", FirstName: "New"}, geom.Point{X: 1000, Y: 1000})
	if !s.Insert(n) {
		t.Fatal("insert failed")
	}
	if s.Insert(n) {
		t.Error("duplicate insert succeeded")
	}
	items := s.Items()
	if items[len(items)-2] != Drawable(n) || items[len(items)-1].Kind() != KindSelector {
		t.Errorf("inserted node misplaced: %v", ids(s))
	}
	if got := s.HitTest(geom.Point{X: 1000, Y: 1000}); got == nil || got.ID() != "N" {
		t.Errorf("inserted node not hit-testable")
	}
}
