package geometry

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrNoPoints is returned when a bounding box is requested for no points.
var ErrNoPoints = errors.New("no points")

// BoundingBox is an axis-aligned rectangle anchored at its top-left corner.
type BoundingBox struct {
	Origin Point   `json:"origin"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoundingBoxOf returns the smallest box enclosing every point. A single
// point yields a zero-area box at that point.
func BoundingBoxOf(points []Point) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, ErrNoPoints
	}

	rect := r2.RectFromPoints(points[0].R2())
	for _, p := range points[1:] {
		rect = rect.AddPoint(p.R2())
	}
	return boxFromRect(rect), nil
}

func boxFromRect(r r2.Rect) BoundingBox {
	return BoundingBox{
		Origin: fromR2(r.Lo()),
		Width:  extent(r.X),
		Height: extent(r.Y),
	}
}

// extent returns the smallest length w with Lo+w >= Hi. Hi-Lo alone can
// round so that Lo+w lands an ulp short of Hi.
func extent(i r1.Interval) float64 {
	w := i.Hi - i.Lo
	for i.Lo+w < i.Hi {
		w = math.Nextafter(w, math.Inf(1))
	}
	return w
}

// Min returns the top-left corner.
func (b BoundingBox) Min() Point {
	return b.Origin
}

// Max returns the bottom-right corner.
func (b BoundingBox) Max() Point {
	return Point{X: b.Origin.X + b.Width, Y: b.Origin.Y + b.Height}
}

// Rect converts the box to an r2.Rect.
func (b BoundingBox) Rect() r2.Rect {
	hi := b.Max()
	return r2.Rect{
		X: r1.Interval{Lo: b.Origin.X, Hi: hi.X},
		Y: r1.Interval{Lo: b.Origin.Y, Hi: hi.Y},
	}
}

// Contains reports whether p lies inside or on the edge of the box.
func (b BoundingBox) Contains(p Point) bool {
	return b.Rect().ContainsPoint(p.R2())
}

// Expanded grows the box by margin on every side.
func (b BoundingBox) Expanded(margin float64) BoundingBox {
	return boxFromRect(b.Rect().ExpandedByMargin(margin))
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Point {
	return fromR2(b.Rect().Center())
}
