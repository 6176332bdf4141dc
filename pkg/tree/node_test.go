package tree

import (
	"testing"

	"github.com/matzehuels/kintree/pkg/snapshot"
)

func leaf(id string) *Node { return &Node{ID: id, Label: id} }

func TestNodeWidth(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Node
		want  float64
	}{
		{
			name:  "leaf",
			build: func() *Node { return leaf("a") },
			want:  DefaultWidth,
		},
		{
			name: "three leaves",
			build: func() *Node {
				n := leaf("p")
				for _, id := range []string{"a", "b", "c"} {
					n.AddChild(leaf(id))
				}
				return n
			},
			want: 3*DefaultWidth + 2*SpacerWidth,
		},
		{
			name: "child with childless partner",
			build: func() *Node {
				n := leaf("p")
				c := leaf("c")
				c.Couple(leaf("cp"), false)
				n.AddChild(c)
				return n
			},
			want: 2 * DefaultWidth,
		},
		{
			name: "nested",
			build: func() *Node {
				n := leaf("p")
				c := leaf("c")
				c.AddChild(leaf("g1"))
				c.AddChild(leaf("g2"))
				n.AddChild(c)
				n.AddChild(leaf("d"))
				return n
			},
			want: (2*DefaultWidth + SpacerWidth) + SpacerWidth + DefaultWidth,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build().Width(); got != tt.want {
				t.Errorf("Width() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartnerWidth(t *testing.T) {
	a, b := leaf("a"), leaf("b")
	r := a.Couple(b, false)
	if got := r.Width(); got != 0 {
		t.Errorf("childless partner width = %v, want 0", got)
	}
	if got := a.UnitWidth(); got != 2*DefaultWidth {
		t.Errorf("childless couple unit = %v, want %v", got, 2*DefaultWidth)
	}

	r.AddChild(leaf("c"))
	want := DefaultWidth + 2*0.5*DefaultWidth
	if got := r.Width(); got != want {
		t.Errorf("partner width = %v, want %v", got, want)
	}
	if got := a.UnitWidth(); got != want+2*DefaultWidth {
		t.Errorf("couple unit = %v, want %v", got, want+2*DefaultWidth)
	}
	if got := b.UnitWidth(); got != DefaultWidth {
		t.Errorf("partner node unit = %v, want own width", got)
	}
}

func TestRelationshipVariants(t *testing.T) {
	a, b := leaf("a"), leaf("b")
	c := &Node{ID: "c", Gender: snapshot.GenderFemale}
	couple := a.Couple(b, true)
	link := couple.AddChild(c)
	solo := a.AddChild(&Node{ID: "d", Gender: snapshot.GenderMale})

	if !couple.Horizontal() || link.Horizontal() || solo.Horizontal() {
		t.Error("only partner relationships are horizontal")
	}
	if couple.Label != "ex-partner" || !couple.Ex {
		t.Errorf("couple label = %q ex=%v", couple.Label, couple.Ex)
	}
	if link.Label != "daughter" || solo.Label != "son" {
		t.Errorf("labels = %q, %q", link.Label, solo.Label)
	}
	if link.From != a || link.With != b || link.To != c {
		t.Error("couple child endpoints wrong")
	}
	if link.ID != "parents:a:b:c" || solo.ID != "parent:a:d" || couple.ID != "partner:a:b" {
		t.Errorf("ids = %q %q %q", link.ID, solo.ID, couple.ID)
	}
	if len(c.Parents) != 1 || c.Parents[0] != link {
		t.Error("child does not reference its incoming relationship")
	}
	if !b.IsPartner {
		t.Error("partner node not flagged")
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{KindParent: "parent", KindParents: "parents", KindPartner: "partner", Kind(9): "unknown"} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestWalkAndFind(t *testing.T) {
	a := leaf("a")
	a.AddChild(leaf("s"))
	r := a.Couple(leaf("b"), false)
	r.AddChild(leaf("c"))

	var ids []string
	Walk(a, func(n *Node) { ids = append(ids, n.ID) })
	want := []string{"a", "s", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("Walk = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Walk = %v, want %v", ids, want)
		}
	}
	if Find(a, "c") == nil || Find(a, "zz") != nil || Find(nil, "a") != nil {
		t.Error("Find mismatch")
	}
}
