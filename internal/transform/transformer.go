package transform

import (
	"github.com/pkg/errors"

	"github.com/ironsheep/scan-highlights/internal/geometry"
)

// PointMapper converts a sensor-space point to display space on its own,
// replacing the built-in scale and axis steps. It receives the unadjusted
// viewport and the frame orientation and must not retain state between calls.
type PointMapper interface {
	MapPoint(p geometry.Point, viewport geometry.Size, o Orientation) geometry.Point
}

// PointMapperFunc adapts a plain function to PointMapper.
type PointMapperFunc func(p geometry.Point, viewport geometry.Size, o Orientation) geometry.Point

// MapPoint calls f.
func (f PointMapperFunc) MapPoint(p geometry.Point, viewport geometry.Size, o Orientation) geometry.Point {
	return f(p, viewport, o)
}

// Option customises a Transformer.
type Option func(*options)

type options struct {
	mapper PointMapper
	axis   AxisTable
	layout LayoutTable
}

// WithPointMapper installs a custom mapper. A nil mapper is ignored.
func WithPointMapper(m PointMapper) Option {
	return func(o *options) {
		o.mapper = m
	}
}

// WithAxisTable replaces the default axis table.
func WithAxisTable(t AxisTable) Option {
	return func(o *options) {
		if t != nil {
			o.axis = t
		}
	}
}

// WithLayoutTable replaces the default layout table.
func WithLayoutTable(t LayoutTable) Option {
	return func(o *options) {
		if t != nil {
			o.layout = t
		}
	}
}

var (
	defaultAxisTable   = DefaultAxisTable()
	defaultLayoutTable = DefaultLayoutTable()
)

// Transformer maps points for one frame. It is immutable once built and safe
// for concurrent use.
type Transformer struct {
	viewport    geometry.Size
	space       geometry.Size
	orientation Orientation
	scale       Scale
	axis        AxisTransform
	mapper      PointMapper
	warning     error
}

// New resolves the layout, scale and axis transform for a frame.
//
// Frame and viewport must both be valid and non-zero; callers are expected to
// skip frames whose viewport has not been measured yet. An orientation
// without an axis table entry does not fail: the identity mapping is used and
// the problem is reported by Warning.
func New(frame, viewport geometry.Size, mode ResizeMode, platform Platform, o Orientation, opts ...Option) (*Transformer, error) {
	if err := frame.Validate(); err != nil {
		return nil, errors.Wrap(err, "frame")
	}
	if err := viewport.Validate(); err != nil {
		return nil, errors.Wrap(err, "viewport")
	}
	if frame.IsZero() {
		return nil, errors.Wrapf(geometry.ErrInvalidSize, "frame %v has a zero dimension", frame)
	}
	if viewport.IsZero() {
		return nil, errors.Wrapf(geometry.ErrInvalidSize, "viewport %v has a zero dimension", viewport)
	}

	cfg := options{axis: defaultAxisTable, layout: defaultLayoutTable}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Transformer{
		viewport:    viewport,
		orientation: o,
		mapper:      cfg.mapper,
	}
	if t.mapper != nil {
		return t, nil
	}

	t.space = cfg.layout.Adjust(platform, o, viewport)
	scale, err := mode.Scale(frame, t.space)
	if err != nil {
		return nil, err
	}
	t.scale = scale
	t.axis, t.warning = cfg.axis.Lookup(platform, o)
	return t, nil
}

// Apply maps a sensor-space point to display space.
func (t *Transformer) Apply(p geometry.Point) geometry.Point {
	if t.mapper != nil {
		return t.mapper.MapPoint(p, t.viewport, t.orientation)
	}
	return t.axis.Apply(t.scale.Apply(p), t.space)
}

// ApplyAll maps every point into a new slice.
func (t *Transformer) ApplyAll(points []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}

// Scale returns the resolved scale. It is zero when a custom mapper is set.
func (t *Transformer) Scale() Scale {
	return t.scale
}

// Axis returns the resolved axis transform.
func (t *Transformer) Axis() AxisTransform {
	return t.axis
}

// Space returns the viewport after the layout swap, i.e. the space the frame
// is scaled into.
func (t *Transformer) Space() geometry.Size {
	return t.space
}

// Warning returns the recoverable problem found while resolving the frame, if
// any. It wraps ErrNoAxisMapping.
func (t *Transformer) Warning() error {
	return t.warning
}

// Transform maps a single point. It is a convenience for one-off calls;
// per-frame work should build a Transformer once with New.
func Transform(p geometry.Point, frame, viewport geometry.Size, mode ResizeMode, platform Platform, o Orientation, mapper PointMapper) (geometry.Point, error) {
	t, err := New(frame, viewport, mode, platform, o, WithPointMapper(mapper))
	if err != nil {
		return geometry.Point{}, err
	}
	return t.Apply(p), nil
}
