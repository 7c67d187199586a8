// Package render draws display-space highlights over a camera frame image.
//
// It is a debugging aid, not the application's renderer: given the frame a
// set of highlights came from, it reproduces what the display would show by
// fitting the frame into the viewport with the same resize mode and axis
// transform the engine used, then stroking every outline on top. If the
// outlines do not sit on the barcodes in the output, the orientation tables
// or resize settings are wrong.
//
// # Fitting
//
// The frame is resized into the layout-adjusted viewport (cover fills and
// crops, contain letterboxes, stretch distorts), then flipped and transposed
// according to the AxisTransform:
//
//   - MirrorX -> horizontal flip
//   - MirrorY -> vertical flip
//   - SwapXY  -> transpose
//
// The result always has the viewport's dimensions.
//
// # Output
//
// Images are returned as base64-encoded PNG, like every other image result
// the server produces.
package render
