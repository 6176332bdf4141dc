// Package render groups the output sinks of kintree.
//
// # Overview
//
// Two renderers turn a family tree into files:
//
//   - [raster] paints the hand-placed layout (the same scene the interactive
//     viewer shows) with gg and encodes it as PNG.
//   - [nodelink] hands the family model to Graphviz for a DOT or SVG export.
//
// The scene export (JSON) lives with the scene itself, see
// [github.com/matzehuels/kintree/pkg/scene.Scene.WriteJSON].
//
//	png, err := raster.RenderPNG(ctx, snap, raster.WithDPR(2))
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(root, nodelink.Options{}))
//
// [raster]: github.com/matzehuels/kintree/pkg/render/raster
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package render
