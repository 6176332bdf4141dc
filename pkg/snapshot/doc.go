// Package snapshot defines the tree snapshot consumed by the layout engine.
//
// A [Snapshot] is the sparse, slot-based record a data source returns for one
// view of a family tree: the focal person, an optional partner, up to two
// parents, siblings, half-siblings and the focal person's children (with the
// partner, or solo). Each slot holds a flat [Person] record.
//
// The package performs only the validation the engine needs (a focal person
// with an identifier). Cycles and duplicate identifiers are not detected; the
// data source is responsible for supplying a well-formed tree.
//
// Snapshots are exchanged as JSON:
//
//	{
//	  "tree": {"id": "smith", "name": "Smith family"},
//	  "focal": {"id": "p1", "first_name": "Ada", "gender": "female"},
//	  "partner": {"id": "p2", "first_name": "Ben"},
//	  "partner_children": [{"id": "p3", "first_name": "Cy"}]
//	}
package snapshot
