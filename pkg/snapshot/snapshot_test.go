package snapshot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
)

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"male", GenderMale},
		{"M", GenderMale},
		{" Female ", GenderFemale},
		{"f", GenderFemale},
		{"", GenderUnknown},
		{"nonbinary", GenderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseGender(tt.in); got != tt.want {
				t.Errorf("ParseGender(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		p    Person
		want string
	}{
		{"all parts", Person{ID: "1", FirstName: "Ada", MiddleName: "King", LastName: "Lovelace"}, "Ada King Lovelace"},
		{"no middle", Person{ID: "1", FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"blank parts trimmed", Person{ID: "1", FirstName: " Ada ", MiddleName: "  "}, "Ada"},
		{"falls back to id", Person{ID: "p-17"}, "p-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestYears(t *testing.T) {
	tests := []struct {
		name string
		p    Person
		want string
	}{
		{"both", Person{BirthDate: "1815-12-10", DeathDate: "1852-11-27"}, "1815 - 1852"},
		{"birth only", Person{BirthDate: "1990"}, "b. 1990"},
		{"death only", Person{DeathDate: "1901-01-22"}, "d. 1901"},
		{"none", Person{}, ""},
		{"free form", Person{BirthDate: "c. 1900"}, ""},
		{"full-width digits", Person{BirthDate: "１９００年"}, ""},
		{"short year", Person{BirthDate: "812"}, "b. 812"},
		{"free form death", Person{BirthDate: "1850", DeathDate: "unknown"}, "b. 1850"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Years(); got != tt.want {
				t.Errorf("Years() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       *Snapshot
		wantErr bool
	}{
		{"nil snapshot", nil, true},
		{"missing focal", &Snapshot{}, true},
		{"focal without id", &Snapshot{Focal: &Person{FirstName: "Ada"}}, true},
		{"focal only", &Snapshot{Focal: &Person{ID: "a"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidSnapshot)
			}
		})
	}
}

func TestPeople(t *testing.T) {
	s := &Snapshot{
		Focal:           &Person{ID: "f"},
		Partner:         &Person{ID: "p"},
		Parent1:         &Person{ID: "m"},
		Siblings:        []Person{{ID: "s1"}, {ID: ""}},
		PartnerChildren: []Person{{ID: "c1"}},
		SoloChildren:    []Person{{ID: "c2"}},
	}

	var ids []string
	for _, p := range s.People() {
		ids = append(ids, p.ID)
	}
	if got, want := strings.Join(ids, ","), "f,p,m,s1,c1,c2"; got != want {
		t.Errorf("People() ids = %s, want %s", got, want)
	}

	if p, ok := s.Person("c2"); !ok || p.ID != "c2" {
		t.Errorf("Person(c2) = %+v, %v", p, ok)
	}
	if _, ok := s.Person("missing"); ok {
		t.Error("Person(missing) found, want not found")
	}
}

func TestReadJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		in := `{"tree":{"id":"t"},"focal":{"id":"a","gender":"F"},"partner":{"id":"b"},"partner_ex":true}`
		s, err := ReadJSON(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if s.Focal.Sex() != GenderFemale {
			t.Errorf("focal gender = %q, want female", s.Focal.Sex())
		}
		if !s.PartnerEx || s.Partner.ID != "b" {
			t.Errorf("partner = %+v ex=%v", s.Partner, s.PartnerEx)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ReadJSON(strings.NewReader(`{"focal":`))
		if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
			t.Errorf("ReadJSON error = %v, want INVALID_SNAPSHOT", err)
		}
	})

	t.Run("missing focal", func(t *testing.T) {
		_, err := ReadJSON(strings.NewReader(`{"tree":{"id":"t"}}`))
		if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
			t.Errorf("ReadJSON error = %v, want INVALID_SNAPSHOT", err)
		}
	})
}

func TestWriteJSONRoundTrip(t *testing.T) {
	in := &Snapshot{
		Tree:         Tree{ID: "t", Name: "Test"},
		Focal:        &Person{ID: "a", FirstName: "Ada"},
		Parent1:      &Person{ID: "m", Gender: "female"},
		HalfSiblings: []Person{{ID: "h"}},
	}

	var buf bytes.Buffer
	if err := WriteJSON(in, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if out.Tree != in.Tree || out.Focal.FirstName != "Ada" || out.Parent1.ID != "m" || len(out.HalfSiblings) != 1 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(t.TempDir() + "/missing.json")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportJSON error = %v, want FILE_NOT_FOUND", err)
	}
}
