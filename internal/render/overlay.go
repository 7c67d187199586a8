package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/highlight"
	"github.com/ironsheep/scan-highlights/internal/transform"
)

// DefaultStrokeWidth matches the outline width of the reference scanner UI.
const DefaultStrokeWidth = 4.0

// OverlayOptions controls how an overlay is produced.
type OverlayOptions struct {
	// Viewport, ResizeMode, Platform and Orientation must match the values
	// the highlights were built with.
	Viewport    geometry.Size
	ResizeMode  transform.ResizeMode
	Platform    transform.Platform
	Orientation transform.Orientation
	AxisTable   transform.AxisTable
	LayoutTable transform.LayoutTable

	// StrokeColor is a "#RRGGBB" colour for every outline. Empty gives each
	// highlight its own colour.
	StrokeColor string
	StrokeWidth float64

	// Dim darkens the frame under the outlines, 0 (none) to 1 (black).
	Dim float64

	// Labels draws each highlight's value at its centre.
	Labels bool

	// Tap, when set, marks a tap with a circle of radius FuzzyDistance.
	Tap           *geometry.Point
	FuzzyDistance float64

	// GridSpacing, when positive, draws a display-space grid.
	GridSpacing int
}

// OverlayResult is the rendered overlay.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Highlights  int    `json:"highlights"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

var (
	tapColor  = color.NRGBA{R: 173, G: 216, B: 230, A: 160}
	gridColor = color.NRGBA{R: 255, G: 0, B: 0, A: 96}
	textColor = color.NRGBA{R: 255, G: 105, B: 180, A: 255}
)

// Overlay fits frame into the viewport and strokes every highlight on top.
func Overlay(frame image.Image, highlights []highlight.Highlight, opts OverlayOptions) (*OverlayResult, error) {
	if opts.Viewport.IsZero() {
		return nil, errors.Wrapf(geometry.ErrInvalidSize, "viewport %v has a zero dimension", opts.Viewport)
	}
	if opts.Dim < 0 || opts.Dim > 1 {
		return nil, errors.Errorf("dim must be within [0,1], got %g", opts.Dim)
	}

	b := frame.Bounds()
	frameSize := geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	platform := opts.Platform
	if platform == "" {
		platform = transform.DefaultPlatform
	}
	tr, err := transform.New(frameSize, opts.Viewport, opts.ResizeMode, platform, opts.Orientation,
		transform.WithAxisTable(opts.AxisTable), transform.WithLayoutTable(opts.LayoutTable))
	if err != nil {
		return nil, err
	}

	var fixed *colorful.Color
	if opts.StrokeColor != "" {
		c, err := colorful.Hex(opts.StrokeColor)
		if err != nil {
			return nil, errors.Wrapf(err, "stroke color %q", opts.StrokeColor)
		}
		fixed = &c
	}

	var base image.Image = FitFrame(frame, tr.Space(), opts.ResizeMode, tr.Axis())
	if opts.Dim > 0 {
		base = adjust.Brightness(base, -opts.Dim)
	}

	dc := gg.NewContextForImage(base)

	if opts.GridSpacing > 0 {
		drawGrid(dc, opts.GridSpacing)
	}

	width := opts.StrokeWidth
	if width <= 0 {
		width = DefaultStrokeWidth
	}
	dc.SetLineWidth(width)
	dc.SetLineJoin(gg.LineJoinRound)

	palette := Palette(len(highlights))
	for i, h := range highlights {
		if len(h.CornerPoints) == 0 {
			continue
		}
		stroke := palette[i]
		if fixed != nil {
			stroke = *fixed
		}

		dc.NewSubPath()
		for _, p := range h.CornerPoints {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		dc.SetColor(stroke)
		dc.Stroke()

		if opts.Labels {
			label := "???"
			if h.Value != nil {
				label = *h.Value
			}
			c := h.BoundingBox.Center()
			dc.SetColor(textColor)
			dc.DrawStringAnchored(label, c.X, c.Y, 0.5, 0.5)
		}
	}

	if opts.Tap != nil {
		r := math.Max(opts.FuzzyDistance, 2)
		dc.DrawCircle(opts.Tap.X, opts.Tap.Y, r)
		dc.SetColor(tapColor)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode overlay")
	}

	return &OverlayResult{
		Width:       dc.Width(),
		Height:      dc.Height(),
		Highlights:  len(highlights),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Palette returns n well separated, deterministic outline colours. Hues step
// by the golden angle so neighbouring highlights never look alike.
func Palette(n int) []colorful.Color {
	out := make([]colorful.Color, n)
	for i := range out {
		hue := math.Mod(120+float64(i)*137.508, 360)
		out[i] = colorful.Hcl(hue, 0.6, 0.75).Clamped()
	}
	return out
}

func drawGrid(dc *gg.Context, spacing int) {
	w, h := float64(dc.Width()), float64(dc.Height())
	dc.SetLineWidth(1)
	dc.SetColor(gridColor)
	for x := float64(spacing); x < w; x += float64(spacing) {
		dc.DrawLine(x, 0, x, h)
	}
	for y := float64(spacing); y < h; y += float64(spacing) {
		dc.DrawLine(0, y, w, y)
	}
	dc.Stroke()
}
