package highlight

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/transform"
)

// MinCornerPoints is the fewest corners that still describe a polygon.
const MinCornerPoints = 3

// FrameInfo describes the camera frame the detections came from.
type FrameInfo struct {
	Width       float64               `json:"width"`
	Height      float64               `json:"height"`
	Orientation transform.Orientation `json:"orientation"`
}

// Size returns the frame dimensions.
func (f FrameInfo) Size() geometry.Size {
	return geometry.Size{Width: f.Width, Height: f.Height}
}

// WarningKind classifies a recoverable problem found while building.
type WarningKind string

const (
	WarnTooFewCorners      WarningKind = "too_few_corners"
	WarnNonFinitePoint     WarningKind = "non_finite_point"
	WarnUnknownOrientation WarningKind = "unknown_orientation"
)

// Warning describes input the builder worked around.
type Warning struct {
	Kind WarningKind `json:"kind"`
	// Index is the detection's input position, or -1 for frame-level warnings.
	Index  int    `json:"index"`
	Detail string `json:"detail"`
}

// Result is the output of one build.
type Result struct {
	Highlights []Highlight `json:"highlights"`
	Warnings   []Warning   `json:"warnings,omitempty"`
}

// Builder converts detections to highlights. The zero value uses the default
// platform, cover scaling and the built-in orientation tables. A Builder holds
// no per-frame state and may be shared between goroutines.
type Builder struct {
	Platform    transform.Platform
	ResizeMode  transform.ResizeMode
	Mapper      transform.PointMapper
	AxisTable   transform.AxisTable
	LayoutTable transform.LayoutTable
	Logger      *zap.SugaredLogger
}

func (b *Builder) logger() *zap.SugaredLogger {
	if b.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return b.Logger
}

func (b *Builder) platform() transform.Platform {
	if b.Platform == "" {
		return transform.DefaultPlatform
	}
	return b.Platform
}

// Build maps every usable detection into display space, preserving input
// order.
//
// A viewport with a zero dimension has not been laid out yet; Build returns
// an empty result without error. Negative or NaN sizes are rejected, even
// when the viewport is zero.
func (b *Builder) Build(detections []Detection, frame FrameInfo, viewport geometry.Size) (Result, error) {
	logger := b.logger()

	if err := viewport.Validate(); err != nil {
		return Result{}, errors.Wrap(err, "viewport")
	}
	if err := frame.Size().Validate(); err != nil {
		return Result{}, errors.Wrap(err, "frame")
	}
	if viewport.IsZero() {
		logger.Debugw("viewport not measured yet, skipping frame", "viewport", viewport.String(), "detections", len(detections))
		return Result{Highlights: []Highlight{}}, nil
	}

	opts := []transform.Option{
		transform.WithAxisTable(b.AxisTable),
		transform.WithLayoutTable(b.LayoutTable),
	}
	if b.Mapper != nil {
		opts = append(opts, transform.WithPointMapper(b.Mapper))
	}
	tr, err := transform.New(frame.Size(), viewport, b.ResizeMode, b.platform(), frame.Orientation, opts...)
	if err != nil {
		return Result{}, err
	}

	res := Result{Highlights: make([]Highlight, 0, len(detections))}
	if w := tr.Warning(); w != nil {
		res.warn(logger, WarnUnknownOrientation, -1, w.Error())
	}

	for i, d := range detections {
		if len(d.CornerPoints) < MinCornerPoints {
			res.warn(logger, WarnTooFewCorners, i, fmt.Sprintf("detection %d has %d corner points", i, len(d.CornerPoints)))
			continue
		}
		if !allFinite(d.CornerPoints) {
			res.warn(logger, WarnNonFinitePoint, i, fmt.Sprintf("detection %d has a non-finite corner point", i))
			continue
		}

		corners := tr.ApplyAll(d.CornerPoints)
		// cannot fail: corners has at least MinCornerPoints entries
		box, _ := geometry.BoundingBoxOf(corners)

		res.Highlights = append(res.Highlights, Highlight{
			Detection:    d,
			Key:          d.DisplayValue() + "." + strconv.Itoa(i),
			CornerPoints: corners,
			BoundingBox:  box,
		})
	}

	return res, nil
}

func (r *Result) warn(logger *zap.SugaredLogger, kind WarningKind, index int, detail string) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Index: index, Detail: detail})
	logger.Warnw(detail, "kind", string(kind), "index", index)
}

func allFinite(points []geometry.Point) bool {
	for _, p := range points {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// BuildHighlights builds one frame's highlights with the default platform and
// tables, dropping the warnings. Use a Builder to observe them.
func BuildHighlights(detections []Detection, frame FrameInfo, viewport geometry.Size, mode transform.ResizeMode, mapper transform.PointMapper) ([]Highlight, error) {
	b := Builder{ResizeMode: mode, Mapper: mapper}
	res, err := b.Build(detections, frame, viewport)
	if err != nil {
		return nil, err
	}
	return res.Highlights, nil
}
