// Package view is the interaction controller for a rendered family tree.
//
// A [Controller] owns one [scene.Scene] at a time together with the camera
// (pan offset and zoom scale), the active [Tool], the pointer state machine
// and the jump-to search. Hosts feed it pointer, wheel, keyboard and resize
// events in screen coordinates and repaint when the OnChange hook fires.
//
// # Tools
//
//   - [ToolPan]: dragging moves the camera.
//   - [ToolSelect]: hovering highlights, clicking selects, dragging the
//     selected drawable moves it (and whatever is attached to it).
//   - [ToolJumpTo]: typing filters persons; Tab and Shift-Tab walk the
//     suggestions, wrapping at both ends; Enter asks the host to re-center.
//   - [ToolHome]: rebuilds the scene from the current snapshot and centers
//     the focal person. Pointer input behaves as in [ToolPan].
//
// # Threading
//
// The controller is single-threaded: every method must be called from the
// host's event loop. Portrait loads run on background goroutines and hand
// their results back through the post function given to [WithPost], which
// must run the function on the event loop. Results for a replaced scene are
// dropped.
package view
