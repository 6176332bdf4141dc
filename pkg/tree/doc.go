// Package tree is the layout model of a rendered family tree.
//
// A [Node] is one person slot; a [Relationship] is a typed link between
// slots. Relationships are a tagged variant discriminated by [Kind]:
//
//   - [KindParent]: one parent to one child (vertical).
//   - [KindParents]: a couple to one child (vertical, hangs off the couple's
//     partner line).
//   - [KindPartner]: two partners side by side (horizontal). Only partner
//     relationships own child relationships of their own.
//
// # Widths
//
// Widths are recomputed from the current model on every call; nothing is
// memoized. A childless node is [DefaultWidth] wide. A node with children is
// as wide as its children's unit widths plus [SpacerWidth] between siblings.
// A partner relationship without children is zero wide; with children it is
// their unit widths plus half a [DefaultWidth] around and between them. The
// unit width of a node with a partner is the whole couple footprint.
//
// # Placement
//
// [Layout] walks the model once, depth first and left to right, and returns a
// [Placement] per visited node and relationship in visitation order. Sibling
// order is the order children were added; nothing is sorted.
//
// # Limitations
//
// The model must be a tree. Cyclic input is undefined behavior and is not
// detected. Duplicate identifiers are not detected either.
package tree
