package tree

import (
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

func person(id, gender string) snapshot.Person {
	return snapshot.Person{ID: id, FirstName: id, Gender: gender}
}

func ptr(p snapshot.Person) *snapshot.Person { return &p }

func childIDs(rels []*Relationship) []string {
	ids := make([]string, len(rels))
	for i, r := range rels {
		ids[i] = r.To.ID
	}
	return ids
}

func equal(a, b []string) bool {
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

func TestFromSnapshotInvalid(t *testing.T) {
	for _, s := range []*snapshot.Snapshot{nil, {}, {Focal: &snapshot.Person{}}} {
		root, err := FromSnapshot(s)
		if root != nil {
			t.Error("invalid snapshot produced a root")
		}
		if errors.GetCode(err) != errors.ErrCodeInvalidSnapshot {
			t.Errorf("code = %q, want INVALID_SNAPSHOT", errors.GetCode(err))
		}
	}
}

func TestFromSnapshotFocalOnly(t *testing.T) {
	s := &snapshot.Snapshot{
		Focal:        ptr(person("a", "")),
		Partner:      ptr(person("b", "female")),
		PartnerEx:    true,
		Siblings:     []snapshot.Person{person("s", "male")},
		SoloChildren: []snapshot.Person{person("d", "male"), {FirstName: "no id"}},
	}
	root, err := FromSnapshot(s)
	if err != nil {
		t.Fatal(err)
	}
	if root.ID != "a" || !root.IsFocal || root.Kinship != "" {
		t.Fatalf("root = %+v", root)
	}
	if root.Partner == nil || !root.Partner.Ex || root.Partner.To.Kinship != "ex-wife" {
		t.Fatalf("partner = %+v", root.Partner)
	}
	if root.Partner.To.InLaw != "" {
		t.Errorf("in-law set without parents: %q", root.Partner.To.InLaw)
	}
	if got := childIDs(root.Children); !equal(got, []string{"d"}) {
		t.Errorf("solo children = %v", got)
	}
	if Find(root, "s") != nil {
		t.Error("siblings need a parent to hang from")
	}
}

func TestFromSnapshotBothParents(t *testing.T) {
	s := &snapshot.Snapshot{
		Focal:           ptr(person("f", "male")),
		Partner:         ptr(person("w", "female")),
		Parent1:         ptr(person("p1", "male")),
		Parent2:         ptr(person("p2", "female")),
		ParentsEx:       true,
		Siblings:        []snapshot.Person{person("s1", "female"), person("s2", "")},
		HalfSiblings:    []snapshot.Person{person("h", "male")},
		PartnerChildren: []snapshot.Person{person("k1", "female"), person("k2", "male")},
		SoloChildren:    []snapshot.Person{person("k3", "")},
	}
	root, err := FromSnapshot(s)
	if err != nil {
		t.Fatal(err)
	}
	if root.ID != "p1" || root.Kinship != "father" {
		t.Fatalf("root = %s (%s)", root.ID, root.Kinship)
	}
	parents := root.Partner
	if parents == nil || parents.To.ID != "p2" || parents.To.Kinship != "mother" || !parents.Ex {
		t.Fatalf("parents couple = %+v", parents)
	}
	if got := childIDs(parents.Children); !equal(got, []string{"f", "s1", "s2"}) {
		t.Errorf("couple children = %v", got)
	}
	if got := childIDs(root.Children); !equal(got, []string{"h"}) {
		t.Errorf("parent1 solo children = %v", got)
	}

	kin := map[string]string{}
	Walk(root, func(n *Node) { kin[n.ID] = n.Kinship })
	want := map[string]string{
		"p1": "father", "p2": "mother", "f": "", "w": "wife",
		"s1": "sister", "s2": "sibling", "h": "half-brother",
		"k1": "daughter", "k2": "son", "k3": "child",
	}
	for id, w := range want {
		if kin[id] != w {
			t.Errorf("kinship[%s] = %q, want %q", id, kin[id], w)
		}
	}
	if got := Find(root, "w").InLaw; got != "daughter-in-law" {
		t.Errorf("in-law = %q", got)
	}
	if got := Find(root, "f").Parents[0].Label; got != "son" {
		t.Errorf("focal link label = %q", got)
	}
}

func TestFromSnapshotSingleParent(t *testing.T) {
	s := &snapshot.Snapshot{
		Focal:        ptr(person("f", "")),
		Parent2:      ptr(person("m", "female")),
		Siblings:     []snapshot.Person{person("s", "")},
		HalfSiblings: []snapshot.Person{person("h", "")},
	}
	root, err := FromSnapshot(s)
	if err != nil {
		t.Fatal(err)
	}
	if root.ID != "m" || root.Partner != nil {
		t.Fatalf("root = %+v", root)
	}
	if got := childIDs(root.Children); !equal(got, []string{"f", "s", "h"}) {
		t.Errorf("children = %v", got)
	}
}
