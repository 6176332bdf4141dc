package tree

import "github.com/matzehuels/kintree/pkg/snapshot"

// FromSnapshot builds the layout model for s and returns its root.
//
// With both parents known the root is parent1, coupled with parent2; the
// focal person and siblings hang off that couple and half siblings hang off
// parent1 alone. With one parent known every child hangs off that parent.
// Without parents the focal person is the root and siblings are not shown.
//
// Persons without an identifier are skipped, as are the relationships that
// would have reached them. An invalid snapshot yields a nil root and the
// validation error.
func FromSnapshot(s *snapshot.Snapshot) (*Node, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	focal := NewNode(s.Focal)
	focal.IsFocal = true

	var partner *Node
	if ok(s.Partner) {
		partner = NewNode(s.Partner)
		partner.Kinship = PartnerTerm(partner.Gender, s.PartnerEx)
		couple := focal.Couple(partner, s.PartnerEx)
		for i := range s.PartnerChildren {
			if c := kin(&s.PartnerChildren[i], ChildTerm); c != nil {
				couple.AddChild(c)
			}
		}
	}
	for i := range s.SoloChildren {
		if c := kin(&s.SoloChildren[i], ChildTerm); c != nil {
			focal.AddChild(c)
		}
	}

	p1 := kin(s.Parent1, ParentTerm)
	p2 := kin(s.Parent2, ParentTerm)
	if p1 == nil {
		p1, p2 = p2, nil
	}
	if p1 == nil {
		return focal, nil
	}
	if partner != nil {
		partner.InLaw = InLawTerm(ChildTerm(partner.Gender))
	}

	siblings := make([]*Node, 0, len(s.Siblings))
	for i := range s.Siblings {
		if n := kin(&s.Siblings[i], siblingKinship); n != nil {
			siblings = append(siblings, n)
		}
	}

	if p2 == nil {
		p1.AddChild(focal)
		for _, n := range siblings {
			p1.AddChild(n)
		}
	} else {
		couple := p1.Couple(p2, s.ParentsEx)
		couple.AddChild(focal)
		for _, n := range siblings {
			couple.AddChild(n)
		}
	}
	for i := range s.HalfSiblings {
		if n := kin(&s.HalfSiblings[i], halfSiblingKinship); n != nil {
			p1.AddChild(n)
		}
	}
	return p1, nil
}

func ok(p *snapshot.Person) bool { return p != nil && p.ID != "" }

func kin(p *snapshot.Person, term func(snapshot.Gender) string) *Node {
	if !ok(p) {
		return nil
	}
	n := NewNode(p)
	n.Kinship = term(n.Gender)
	return n
}

func siblingKinship(g snapshot.Gender) string { return SiblingTerm(g, false) }

func halfSiblingKinship(g snapshot.Gender) string { return SiblingTerm(g, true) }
