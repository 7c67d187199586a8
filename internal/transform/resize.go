package transform

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ironsheep/scan-highlights/internal/geometry"
)

// ErrUnknownResizeMode is returned for resize modes other than cover, contain
// and stretch.
var ErrUnknownResizeMode = errors.New("unknown resize mode")

// ResizeMode is the policy for fitting a frame into a viewport of a different
// aspect ratio.
type ResizeMode string

const (
	// Cover scales uniformly until the viewport is filled; the overflow is
	// cropped evenly on both sides.
	Cover ResizeMode = "cover"
	// Contain scales uniformly until the frame fits; the remainder is
	// letterboxed evenly on both sides.
	Contain ResizeMode = "contain"
	// Stretch scales each axis independently.
	Stretch ResizeMode = "stretch"
)

// DefaultResizeMode is used when no mode is configured.
const DefaultResizeMode = Cover

// ParseResizeMode parses a mode name. The empty string means DefaultResizeMode.
func ParseResizeMode(s string) (ResizeMode, error) {
	switch m := ResizeMode(s); m {
	case "":
		return DefaultResizeMode, nil
	case Cover, Contain, Stretch:
		return m, nil
	default:
		return "", errors.Wrapf(ErrUnknownResizeMode, "%q", s)
	}
}

// Scale holds per-axis scale factors and the offsets added after scaling.
type Scale struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Apply scales p and shifts it by the offsets.
func (s Scale) Apply(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: p.X*s.X + s.OffsetX,
		Y: p.Y*s.Y + s.OffsetY,
	}
}

// Scale computes the frame-to-viewport scale for the mode. Both sizes must
// have non-zero dimensions.
func (m ResizeMode) Scale(frame, viewport geometry.Size) (Scale, error) {
	sx := viewport.Width / frame.Width
	sy := viewport.Height / frame.Height

	switch m {
	case Stretch:
		return Scale{X: sx, Y: sy}, nil
	case Cover, "":
		// The scaled frame overflows the viewport; the overflow is trimmed
		// equally from both sides.
		s := math.Max(sx, sy)
		return Scale{
			X:       s,
			Y:       s,
			OffsetX: -(frame.Width*s - viewport.Width) / 2,
			OffsetY: -(frame.Height*s - viewport.Height) / 2,
		}, nil
	case Contain:
		s := math.Min(sx, sy)
		return Scale{
			X:       s,
			Y:       s,
			OffsetX: (viewport.Width - frame.Width*s) / 2,
			OffsetY: (viewport.Height - frame.Height*s) / 2,
		}, nil
	default:
		return Scale{}, errors.Wrapf(ErrUnknownResizeMode, "%q", string(m))
	}
}
