package tree

import "github.com/matzehuels/kintree/pkg/snapshot"

func gendered(g snapshot.Gender, male, female, neutral string) string {
	switch g {
	case snapshot.GenderMale:
		return male
	case snapshot.GenderFemale:
		return female
	default:
		return neutral
	}
}

// ChildTerm returns "son", "daughter" or "child".
func ChildTerm(g snapshot.Gender) string { return gendered(g, "son", "daughter", "child") }

// ParentTerm returns "father", "mother" or "parent".
func ParentTerm(g snapshot.Gender) string { return gendered(g, "father", "mother", "parent") }

// SiblingTerm returns the sibling word, prefixed with "half-" for half siblings.
func SiblingTerm(g snapshot.Gender, half bool) string {
	t := gendered(g, "brother", "sister", "sibling")
	if half {
		return "half-" + t
	}
	return t
}

// PartnerTerm returns "husband", "wife" or "partner", prefixed with "ex-"
// for former partners.
func PartnerTerm(g snapshot.Gender, ex bool) string {
	t := gendered(g, "husband", "wife", "partner")
	if ex {
		return "ex-" + t
	}
	return t
}

// PartnerLinkTerm labels a partner relationship line.
func PartnerLinkTerm(ex bool) string {
	if ex {
		return "ex-partner"
	}
	return "partner"
}

// InLawTerm composes an in-law label from a kinship term, as in
// "daughter-in-law".
func InLawTerm(term string) string { return term + "-in-law" }
