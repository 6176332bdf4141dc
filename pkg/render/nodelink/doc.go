// Package nodelink renders family trees as Graphviz node-link diagrams.
//
// # Overview
//
// This is the alternative to the hand-placed raster layout: Graphviz decides
// the positions, which is handy for quick exports and for checking the
// family model against an independent layout engine.
//
// # Usage
//
// Convert a layout model to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// Persons are rounded boxes. A couple is joined through a point-shaped
// junction placed on the partners' rank, and the couple's children hang from
// that junction. Ex partnerships are drawn dashed, and the focal person is
// filled with the accent color.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering,
// so no Graphviz installation is required.
package nodelink
