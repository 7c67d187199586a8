// Package highlight turns a frame's detections into display-ready highlights.
//
// A Detection is what the barcode detector reports for one code in one frame:
// its decoded value (if any), symbology, sensor-space outline and an opaque
// native payload. A Highlight is the same record with its outline and
// bounding box moved into display space and a key for the render pass.
//
// # Keys
//
// Keys are "<value>.<index>" where index is the detection's position in the
// frame's input and a missing value is spelled "unknown". They are stable for
// one render pass only; the same code seen in the next frame is a new
// highlight and nothing is tracked or merged across frames.
//
// # Degraded Input
//
// The builder never fails because of what the detector reported. Detections
// with fewer than three corners or non-finite coordinates are dropped, and an
// orientation missing from the axis table falls back to identity. Each case
// is returned as a Warning and logged. Errors are reserved for callers that
// pass invalid sizes or an unknown resize mode.
package highlight
