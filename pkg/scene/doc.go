// Package scene is the drawable projection of a laid-out family tree.
//
// [Build] runs the layout pass over a [tree.Node] and returns a [Scene]: a
// flat render list of [Drawable] values with absolute model-space geometry,
// plus the bookkeeping needed to edit that list without laying out again.
//
// # Render list
//
// The list is a paint-order contract. Parent and couple-child connectors come
// first, then partner lines, then nodes, and the [SelectionBox] (identifier
// [SelectorID]) is always last. Painting in list order puts nodes over lines
// and the selection highlight over everything. Selecting a node moves it to
// the end of the node run so it paints over its neighbours.
//
// # Hit-testing
//
// [Scene.HitTest] walks the list from the end, so the topmost drawable wins:
// the most recently selected node, then other nodes, then partner lines, then
// connectors. Nodes test their box with edges included; lines test the
// distance to their segment against their current line width, so a hovered or
// selected line is easier to pick again.
//
// # Moves
//
// Nodes keep the identifiers of the relationships starting and ending at them;
// partner lines keep the identifiers of the connectors attached to them with
// a fractional position along the line. [Scene.Move] cascades through those
// links: moving a node drags its line endpoints, and moving either end of a
// partner line re-derives attached connector origins from their fractions.
//
// # Change notification
//
// Visual state changes (hover, selection, moves, images) are reported through
// the function given to [WithOnChange]. The owner decides when to repaint.
package scene
