// Package geometry provides the 2D primitives shared by the highlight engine.
//
// Points, sizes and bounding boxes carry no notion of which coordinate space
// they live in. Callers keep sensor-space and display-space values apart and
// only cross between them through the transform package.
//
// # Coordinate System
//
// Both spaces use the image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Vector math is delegated to github.com/golang/geo/r2; the types here add
// JSON tags and the validation rules the engine depends on.
package geometry
