package scene

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/kintree/pkg/geom"
)

// Document is the JSON form of a render list.
type Document struct {
	Bounds geom.Rect `json:"bounds"`
	Focal  string    `json:"focal,omitempty"`
	Items  []Item    `json:"items"`
}

// Item is one exported drawable. Geometry fields depend on Kind.
type Item struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	Label    string  `json:"label,omitempty"`
	Subtitle string  `json:"subtitle,omitempty"`
	Kinship  string  `json:"kinship,omitempty"`
	InLaw    string  `json:"in_law,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`

	Relation string       `json:"relation,omitempty"`
	Ex       bool         `json:"ex,omitempty"`
	Start    *geom.Point  `json:"start,omitempty"`
	End      *geom.Point  `json:"end,omitempty"`
	Attached []Attachment `json:"attached,omitempty"`

	Selected bool `json:"selected,omitempty"`
}

// Export converts the render list to its JSON form, in paint order.
// The selection box is exported only while something is selected.
func (s *Scene) Export() Document {
	doc := Document{Bounds: s.Bounds(), Items: []Item{}}
	if s.focal != nil {
		doc.Focal = s.focal.id
	}
	for _, d := range s.items {
		it := Item{ID: d.ID(), Kind: d.Kind().String()}
		switch d := d.(type) {
		case *Node:
			it.Label, it.Subtitle, it.Kinship, it.InLaw = d.Label, d.Subtitle, d.Kinship, d.InLaw
			it.ImageURL = d.ImageURL
			it.X, it.Y, it.Width, it.Height = d.X, d.Y, d.W, d.H
			it.Selected = d.selected
		case *Relationship:
			start, end := d.Start, d.End
			it.Label, it.Relation, it.Ex = d.Label, d.RelKind.String(), d.Ex
			it.Start, it.End = &start, &end
			it.Attached = d.Attached
			it.Selected = d.selected
		case *SelectionBox:
			if !d.active {
				continue
			}
			b := d.Bounds()
			it.X, it.Y, it.Width, it.Height = b.X, b.Y+b.H/2, b.W, b.H
		}
		doc.Items = append(doc.Items, it)
	}
	return doc
}

// WriteJSON writes the exported render list as indented JSON.
func (s *Scene) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Export())
}
