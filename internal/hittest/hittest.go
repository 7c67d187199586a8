package hittest

import (
	"math"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/highlight"
)

// DefaultFuzzyDistance is the near-miss tolerance in display units used when
// none is configured.
const DefaultFuzzyDistance = 15.0

// Intersection is the outcome of testing a tap against one polygon.
type Intersection struct {
	// Evaluated is false when the bounds check ruled the polygon out.
	Evaluated bool `json:"evaluated"`

	// Inside reports whether the tap lies inside the polygon.
	Inside bool `json:"inside"`

	// Distance is the distance from the tap to the nearest edge. It is +Inf
	// when the polygon was not evaluated.
	Distance float64 `json:"distance"`
}

// Evaluate tests tap against a closed polygon. Polygons with fewer than three
// points are never hit.
func Evaluate(tap geometry.Point, polygon []geometry.Point, fuzzy float64) Intersection {
	miss := Intersection{Distance: math.Inf(1)}
	if len(polygon) < highlight.MinCornerPoints {
		return miss
	}
	fuzzy = sanitize(fuzzy)

	box, _ := geometry.BoundingBoxOf(polygon)
	if !box.Expanded(fuzzy).Contains(tap) {
		return miss
	}

	res := Intersection{Evaluated: true, Distance: math.Inf(1)}
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		a, b := polygon[i], polygon[j]

		if d := geometry.SegmentDistance(tap, a, b); d < res.Distance {
			res.Distance = d
		}

		// Count crossings of a ray running from tap towards +X.
		if (a.Y > tap.Y) != (b.Y > tap.Y) &&
			tap.X < (b.X-a.X)*(tap.Y-a.Y)/(b.Y-a.Y)+a.X {
			res.Inside = !res.Inside
		}
	}
	return res
}

// Hit is a resolved tap.
type Hit struct {
	Highlight highlight.Highlight `json:"highlight"`
	// Index is the highlight's position in the slice passed to Resolve.
	Index    int     `json:"index"`
	Inside   bool    `json:"inside"`
	Distance float64 `json:"distance"`
}

// Resolve picks the highlight a tap selects, if any. See the package
// documentation for the ranking rules.
func Resolve(tap geometry.Point, highlights []highlight.Highlight, fuzzy float64) (Hit, bool) {
	fuzzy = sanitize(fuzzy)

	bestInside, bestNear := -1, -1
	var insideDist, nearDist float64

	for i := range highlights {
		in := Evaluate(tap, highlights[i].CornerPoints, fuzzy)
		if !in.Evaluated {
			continue
		}
		switch {
		case in.Inside:
			if bestInside < 0 || in.Distance < insideDist {
				bestInside, insideDist = i, in.Distance
			}
		case in.Distance < fuzzy:
			if bestNear < 0 || in.Distance < nearDist {
				bestNear, nearDist = i, in.Distance
			}
		}
	}

	switch {
	case bestInside >= 0:
		return Hit{Highlight: highlights[bestInside], Index: bestInside, Inside: true, Distance: insideDist}, true
	case bestNear >= 0:
		return Hit{Highlight: highlights[bestNear], Index: bestNear, Distance: nearDist}, true
	}
	return Hit{}, false
}

// HitTest returns the highlight selected by tap.
func HitTest(tap geometry.Point, highlights []highlight.Highlight, fuzzy float64) (highlight.Highlight, bool) {
	hit, ok := Resolve(tap, highlights, fuzzy)
	return hit.Highlight, ok
}

// sanitize treats negative and NaN tolerances as disabled.
func sanitize(fuzzy float64) float64 {
	if math.IsNaN(fuzzy) || fuzzy < 0 {
		return 0
	}
	return fuzzy
}
