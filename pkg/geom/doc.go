// Package geom provides the geometry and drawing primitives used by the
// family tree renderer.
//
// # Geometry
//
// [Point] and [Rect] carry model-space coordinates. [DistanceToSegment] and
// [Lerp] back the relationship hit-test and the partner-line attachment math.
//
// # Drawing
//
// [Surface] is the subset of a 2D raster context the renderer paints on.
// *gg.Context from github.com/fogleman/gg satisfies it, so production code
// paints straight into a gg image while tests use a [Recorder].
//
// [DrawRoundedRect] and [DrawLine] are the only primitives. Both save and
// restore the surface state around their work, so consecutive draws cannot
// leak pen or fill state onto each other. A nil surface is a caller bug and
// is not checked.
package geom
