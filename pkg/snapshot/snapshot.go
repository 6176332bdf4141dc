package snapshot

import (
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
)

// Gender affects relationship wording only.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// ParseGender normalizes the spellings data sources use for gender.
// Anything unrecognised maps to [GenderUnknown].
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "man":
		return GenderMale
	case "f", "female", "woman":
		return GenderFemale
	}
	return GenderUnknown
}

// Tree holds metadata about the tree a snapshot was taken from.
type Tree struct {
	ID   string `json:"id" bson:"id" mapstructure:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty" mapstructure:"name"`
}

// Person is a flat person record as supplied by a data source.
type Person struct {
	ID         string `json:"id" bson:"id" mapstructure:"id"`
	FirstName  string `json:"first_name,omitempty" bson:"first_name,omitempty" mapstructure:"first_name"`
	MiddleName string `json:"middle_name,omitempty" bson:"middle_name,omitempty" mapstructure:"middle_name"`
	LastName   string `json:"last_name,omitempty" bson:"last_name,omitempty" mapstructure:"last_name"`
	Gender     string `json:"gender,omitempty" bson:"gender,omitempty" mapstructure:"gender"`
	Location   string `json:"location,omitempty" bson:"location,omitempty" mapstructure:"location"`
	BirthDate  string `json:"birth_date,omitempty" bson:"birth_date,omitempty" mapstructure:"birth_date"`
	DeathDate  string `json:"death_date,omitempty" bson:"death_date,omitempty" mapstructure:"death_date"`
	ImageURL   string `json:"image_url,omitempty" bson:"image_url,omitempty" mapstructure:"image_url"`
}

// DisplayName joins the name parts, falling back to the identifier.
func (p Person) DisplayName() string {
	var parts []string
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return p.ID
	}
	return strings.Join(parts, " ")
}

// Years returns the lifespan sub-line, e.g. "1950 - 2010" or "b. 1950".
// Dates are ISO-8601 (or a bare year); only the year part is used.
func (p Person) Years() string {
	born, died := year(p.BirthDate), year(p.DeathDate)
	switch {
	case born != "" && died != "":
		return born + " - " + died
	case born != "":
		return "b. " + born
	case died != "":
		return "d. " + died
	}
	return ""
}

// Sex returns the normalized gender.
func (p Person) Sex() Gender { return ParseGender(p.Gender) }

// year returns the leading run of ASCII digits of date, at most four, or ""
// when date does not start with one.
func year(date string) string {
	date = strings.TrimSpace(date)
	n := 0
	for n < len(date) && n < 4 && date[n] >= '0' && date[n] <= '9' {
		n++
	}
	return date[:n]
}

// Snapshot is the sparse, slot-based view of a tree around one focal person.
type Snapshot struct {
	Tree Tree `json:"tree" bson:"tree"`

	Focal     *Person `json:"focal" bson:"focal"`
	Partner   *Person `json:"partner,omitempty" bson:"partner,omitempty"`
	PartnerEx bool    `json:"partner_ex,omitempty" bson:"partner_ex,omitempty"`

	Parent1   *Person `json:"parent1,omitempty" bson:"parent1,omitempty"`
	Parent2   *Person `json:"parent2,omitempty" bson:"parent2,omitempty"`
	ParentsEx bool    `json:"parents_ex,omitempty" bson:"parents_ex,omitempty"`

	Siblings     []Person `json:"siblings,omitempty" bson:"siblings,omitempty"`
	HalfSiblings []Person `json:"half_siblings,omitempty" bson:"half_siblings,omitempty"`

	PartnerChildren []Person `json:"partner_children,omitempty" bson:"partner_children,omitempty"`
	SoloChildren    []Person `json:"solo_children,omitempty" bson:"solo_children,omitempty"`
}

// Validate checks the preconditions the engine relies on: a focal person
// with an identifier. It deliberately does not look for cycles or
// duplicate identifiers.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot is nil")
	}
	if s.Focal == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot has no focal person")
	}
	if s.Focal.ID == "" {
		return errors.New(errors.ErrCodeInvalidSnapshot, "focal person has no id")
	}
	return nil
}

// People returns every person present in the snapshot, focal first, in slot
// order. Persons without an identifier are skipped.
func (s *Snapshot) People() []Person {
	var out []Person
	add := func(p *Person) {
		if p != nil && p.ID != "" {
			out = append(out, *p)
		}
	}
	add(s.Focal)
	add(s.Partner)
	add(s.Parent1)
	add(s.Parent2)
	for _, list := range [][]Person{s.Siblings, s.HalfSiblings, s.PartnerChildren, s.SoloChildren} {
		for i := range list {
			add(&list[i])
		}
	}
	return out
}

// Person looks up a person in the snapshot by identifier.
func (s *Snapshot) Person(id string) (Person, bool) {
	for _, p := range s.People() {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}
