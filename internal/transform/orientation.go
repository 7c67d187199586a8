package transform

import (
	"github.com/pkg/errors"

	"github.com/ironsheep/scan-highlights/internal/geometry"
)

// ErrUnknownPlatform is returned when parsing an unsupported platform name.
var ErrUnknownPlatform = errors.New("unknown platform")

// ErrNoAxisMapping marks a (platform, orientation) pair missing from the axis
// table. It is recoverable: the identity mapping is used instead.
var ErrNoAxisMapping = errors.New("no axis mapping")

// Platform names the device family whose camera conventions apply.
type Platform string

const (
	IOS     Platform = "ios"
	Android Platform = "android"
)

// DefaultPlatform is used when no platform is configured.
const DefaultPlatform = Android

// ParsePlatform parses a platform name. The empty string means DefaultPlatform.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case "":
		return DefaultPlatform, nil
	case IOS, Android:
		return p, nil
	default:
		return "", errors.Wrapf(ErrUnknownPlatform, "%q", s)
	}
}

// Orientation is the device orientation reported with a frame.
type Orientation string

const (
	Portrait           Orientation = "portrait"
	PortraitUpsideDown Orientation = "portrait-upside-down"
	LandscapeLeft      Orientation = "landscape-left"
	LandscapeRight     Orientation = "landscape-right"
)

// Orientations lists every known orientation.
var Orientations = []Orientation{Portrait, PortraitUpsideDown, LandscapeLeft, LandscapeRight}

// Known reports whether o is one of Orientations.
func (o Orientation) Known() bool {
	for _, k := range Orientations {
		if o == k {
			return true
		}
	}
	return false
}

// AxisTransform mirrors and/or swaps a point inside the space it was scaled
// into. Mirroring happens first, then the swap.
type AxisTransform struct {
	SwapXY  bool `json:"swapXY"`
	MirrorX bool `json:"mirrorX"`
	MirrorY bool `json:"mirrorY"`
}

// Identity leaves points untouched.
var Identity = AxisTransform{}

// Apply maps p within a space of the given size.
func (a AxisTransform) Apply(p geometry.Point, space geometry.Size) geometry.Point {
	if a.MirrorX {
		p.X = space.Width - p.X
	}
	if a.MirrorY {
		p.Y = space.Height - p.Y
	}
	if a.SwapXY {
		p.X, p.Y = p.Y, p.X
	}
	return p
}

// TableKey indexes the orientation tables.
type TableKey struct {
	Platform    Platform
	Orientation Orientation
}

// AxisTable maps (platform, orientation) to the axis transform applied after
// scaling.
type AxisTable map[TableKey]AxisTransform

// DefaultAxisTable returns a fresh copy of the built-in axis table.
//
// On iOS the sensor is mounted landscape-right, so an upright phone needs a
// swap and the landscape cases each mirror one axis. The landscape sign
// convention has only been checked on a few devices; override it through
// configuration if outlines come out reflected. Android frames arrive
// upright and need no correction.
func DefaultAxisTable() AxisTable {
	return AxisTable{
		{IOS, Portrait}:           {SwapXY: true},
		{IOS, LandscapeLeft}:      {MirrorY: true},
		{IOS, LandscapeRight}:     {MirrorX: true},
		{IOS, PortraitUpsideDown}: {SwapXY: true, MirrorX: true, MirrorY: true},

		{Android, Portrait}:           Identity,
		{Android, LandscapeLeft}:      Identity,
		{Android, LandscapeRight}:     Identity,
		{Android, PortraitUpsideDown}: Identity,
	}
}

// Lookup returns the transform for the pair. A missing entry yields Identity
// and an ErrNoAxisMapping error the caller may log and otherwise ignore.
func (t AxisTable) Lookup(platform Platform, o Orientation) (AxisTransform, error) {
	a, ok := t[TableKey{platform, o}]
	if !ok {
		return Identity, errors.Wrapf(ErrNoAxisMapping, "platform %q orientation %q", platform, o)
	}
	return a, nil
}

// Clone returns a copy that can be modified without affecting t.
func (t AxisTable) Clone() AxisTable {
	out := make(AxisTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// LayoutTable lists the (platform, orientation) pairs whose viewport width and
// height must be swapped before scaling. Missing entries mean no swap.
type LayoutTable map[TableKey]bool

// DefaultLayoutTable returns a fresh copy of the built-in layout table. iOS
// reports frames in sensor orientation, so portrait viewports are treated as
// landscape until the axis transform turns the points back.
func DefaultLayoutTable() LayoutTable {
	return LayoutTable{
		{IOS, Portrait}:           true,
		{IOS, PortraitUpsideDown}: true,
	}
}

// Adjust returns the viewport as seen by the scaling step.
func (t LayoutTable) Adjust(platform Platform, o Orientation, viewport geometry.Size) geometry.Size {
	if t[TableKey{platform, o}] {
		return viewport.Swapped()
	}
	return viewport
}

// Clone returns a copy that can be modified without affecting t.
func (t LayoutTable) Clone() LayoutTable {
	out := make(LayoutTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
