package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrInvalidSize is returned when a dimension is negative, NaN or infinite.
var ErrInvalidSize = errors.New("invalid size")

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func fromR2(p r2.Point) Point {
	return Point{X: p.X, Y: p.Y}
}

// R2 converts p to an r2.Point.
func (p Point) R2() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return fromR2(p.R2().Sub(q.R2()))
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return fromR2(p.R2().Add(q.R2()))
}

// Mul scales p by m.
func (p Point) Mul(m float64) Point {
	return fromR2(p.R2().Mul(m))
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.R2().Dot(q.R2())
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return p.R2().Sub(q.R2()).Norm()
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Size is a width/height pair. Both dimensions must be finite and >= 0.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate rejects negative, NaN and infinite dimensions. NaNs would poison
// every comparison downstream, so they are refused up front.
func (s Size) Validate() error {
	if !isFinite(s.Width) || !isFinite(s.Height) || s.Width < 0 || s.Height < 0 {
		return errors.Wrapf(ErrInvalidSize, "%gx%g", s.Width, s.Height)
	}
	return nil
}

// IsZero reports whether either dimension is zero, i.e. nothing can be laid out.
func (s Size) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}

// Swapped returns the size with width and height exchanged.
func (s Size) Swapped() Size {
	return Size{Width: s.Height, Height: s.Width}
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// SegmentDistance returns the shortest distance from p to the segment a-b.
//
// The projection of p is clamped to the segment, so taps beyond either end
// measure to the nearest endpoint. A zero-length segment degrades to the
// distance to a.
func SegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	lengthSq := ab.Dot(ab)
	if lengthSq == 0 {
		return p.Distance(a)
	}

	t := p.Sub(a).Dot(ab) / lengthSq
	switch {
	case t < 0:
		return p.Distance(a)
	case t > 1:
		return p.Distance(b)
	}
	return p.Distance(a.Add(ab.Mul(t)))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
