// Package hittest resolves a tap to the highlight it was aimed at.
//
// Every highlight is evaluated independently:
//
//  1. Bounds check: the polygon's bounding box, grown by the fuzzy distance,
//     is tested first. A tap outside it can neither be inside the polygon nor
//     within the fuzzy distance of an edge, so the polygon is skipped.
//  2. Point in polygon: parity ray casting over the edges (p[i], p[i-1]).
//     Simple polygons are classified correctly whatever their winding.
//  3. Nearest edge: the distance from the tap to each edge segment, with the
//     projection clamped to the segment.
//
// Selection prefers polygons that contain the tap, nearest edge first, so a
// tap inside nested outlines picks the innermost one. When no polygon
// contains the tap, polygons whose nearest edge is closer than the fuzzy
// distance compete the same way. A fuzzy distance of zero only accepts taps
// that land inside a polygon.
//
// Ties go to the highlight that appears first.
package hittest
