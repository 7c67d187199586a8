// Package transform maps sensor-space points onto display space.
//
// A frame delivered by the camera has its own width, height and orientation.
// The viewport it is shown in usually has a different aspect ratio and may be
// rotated relative to the sensor. Mapping a point takes three steps:
//
//  1. Layout: for some (platform, orientation) pairs the viewport's axes are
//     swapped before anything else, because the frame is reported pre-rotated.
//  2. Scale: the resize mode (cover, contain, stretch) fits the frame into
//     the adjusted viewport, centring any overflow or letterbox.
//  3. Axis: an AxisTransform looked up by (platform, orientation) mirrors
//     and/or swaps the scaled point so it lines up with the display.
//
// A caller-supplied PointMapper replaces steps 2 and 3 entirely.
//
// Both lookups are plain tables (AxisTable, LayoutTable) so they can be
// audited, unit-tested and overridden from configuration without touching
// code. All work that depends only on the frame is resolved once by New; the
// per-point Apply is a handful of multiplications and has no side effects.
package transform
