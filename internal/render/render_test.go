package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/highlight"
	"github.com/ironsheep/scan-highlights/internal/transform"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// splitFrame is 200x100, red on the left half and blue on the right.
func splitFrame() *image.NRGBA {
	img := imaging.New(200, 100, red)
	return imaging.Paste(img, imaging.New(100, 100, blue), image.Pt(100, 0))
}

func assertColor(t *testing.T, img image.Image, x, y int, want color.NRGBA) {
	t.Helper()
	r, g, b, _ := img.At(x, y).RGBA()
	got := color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
	diff := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	if diff(got.R, want.R) > 40 || diff(got.G, want.G) > 40 || diff(got.B, want.B) > 40 {
		t.Errorf("pixel (%d,%d): got %v, want %v", x, y, got, want)
	}
}

func TestFitFrame(t *testing.T) {
	space := geometry.Size{Width: 100, Height: 100}

	t.Run("cover", func(t *testing.T) {
		out := FitFrame(splitFrame(), space, transform.Cover, transform.Identity)
		if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
			t.Fatalf("size: got %v", out.Bounds())
		}
		assertColor(t, out, 25, 50, red)
		assertColor(t, out, 75, 50, blue)
	})

	t.Run("contain", func(t *testing.T) {
		out := FitFrame(splitFrame(), space, transform.Contain, transform.Identity)
		assertColor(t, out, 50, 10, color.NRGBA{A: 255})
		assertColor(t, out, 50, 90, color.NRGBA{A: 255})
		assertColor(t, out, 25, 50, red)
		assertColor(t, out, 75, 50, blue)
	})

	t.Run("stretch", func(t *testing.T) {
		out := FitFrame(splitFrame(), space, transform.Stretch, transform.Identity)
		assertColor(t, out, 10, 10, red)
		assertColor(t, out, 90, 90, blue)
	})

	t.Run("mirror x", func(t *testing.T) {
		out := FitFrame(splitFrame(), space, transform.Stretch, transform.AxisTransform{MirrorX: true})
		assertColor(t, out, 10, 50, blue)
		assertColor(t, out, 90, 50, red)
	})

	t.Run("swap", func(t *testing.T) {
		out := FitFrame(splitFrame(), geometry.Size{Width: 100, Height: 50}, transform.Stretch, transform.AxisTransform{SwapXY: true})
		if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 100 {
			t.Fatalf("size: got %v", out.Bounds())
		}
		// red was on the left, after transposing it is on top
		assertColor(t, out, 25, 10, red)
		assertColor(t, out, 25, 90, blue)
	})
}

func decodeResult(t *testing.T, res *OverlayResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	return img
}

func TestOverlay_StrokesHighlights(t *testing.T) {
	frame := imaging.New(200, 100, color.Black)
	detections := []highlight.Detection{{
		Value:        highlight.StringPtr("abc"),
		CornerPoints: []geometry.Point{{X: 60, Y: 10}, {X: 140, Y: 10}, {X: 140, Y: 90}, {X: 60, Y: 90}},
	}}
	info := highlight.FrameInfo{Width: 200, Height: 100, Orientation: transform.Portrait}
	viewport := geometry.Size{Width: 100, Height: 100}

	hs, err := highlight.BuildHighlights(detections, info, viewport, transform.Cover, nil)
	if err != nil {
		t.Fatalf("BuildHighlights failed: %v", err)
	}

	tap := geometry.Pt(50, 50)
	res, err := Overlay(frame, hs, OverlayOptions{
		Viewport:      viewport,
		ResizeMode:    transform.Cover,
		Orientation:   transform.Portrait,
		StrokeColor:   "#00ff00",
		Labels:        true,
		Tap:           &tap,
		FuzzyDistance: 5,
		GridSpacing:   25,
	})
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if res.Width != 100 || res.Height != 100 || res.Highlights != 1 || res.MimeType != "image/png" {
		t.Fatalf("unexpected result: %+v", res)
	}

	img := decodeResult(t, res)
	// cover crops 50px from each side, so the outline's left edge sits at x=10
	assertColor(t, img, 10, 70, color.NRGBA{G: 255, A: 255})
	assertColor(t, img, 90, 70, color.NRGBA{G: 255, A: 255})
	assertColor(t, img, 3, 3, color.NRGBA{A: 255})
}

func TestOverlay_Dim(t *testing.T) {
	frame := imaging.New(10, 10, color.White)
	res, err := Overlay(frame, nil, OverlayOptions{
		Viewport:   geometry.Size{Width: 10, Height: 10},
		ResizeMode: transform.Stretch,
		Dim:        0.5,
	})
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	r, _, _, _ := decodeResult(t, res).At(5, 5).RGBA()
	if r>>8 > 200 {
		t.Errorf("expected a dimmed frame, got red=%d", r>>8)
	}
}

func TestOverlay_InvalidOptions(t *testing.T) {
	frame := imaging.New(10, 10, color.White)

	tests := []struct {
		name string
		opts OverlayOptions
	}{
		{"zero viewport", OverlayOptions{}},
		{"bad colour", OverlayOptions{Viewport: geometry.Size{Width: 10, Height: 10}, StrokeColor: "limegreen"}},
		{"dim out of range", OverlayOptions{Viewport: geometry.Size{Width: 10, Height: 10}, Dim: 2}},
		{"bad mode", OverlayOptions{Viewport: geometry.Size{Width: 10, Height: 10}, ResizeMode: "zoom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Overlay(frame, nil, tt.opts); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPalette(t *testing.T) {
	p := Palette(6)
	if len(p) != 6 {
		t.Fatalf("got %d colours", len(p))
	}
	for i := 1; i < len(p); i++ {
		if p[i].DistanceLab(p[i-1]) < 0.1 {
			t.Errorf("colours %d and %d are too similar", i-1, i)
		}
	}
	if again := Palette(6); again[3] != p[3] {
		t.Error("palette is not deterministic")
	}
}

func TestFrameCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	if err := imaging.Save(splitFrame(), path); err != nil {
		t.Fatalf("save frame: %v", err)
	}

	cache := NewFrameCache()
	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("width: got %d", img.Bounds().Dx())
	}

	// served from cache once the file is gone
	os.Remove(path)
	if _, err := cache.Load(path); err != nil {
		t.Errorf("cached Load failed: %v", err)
	}

	cache.Evict(path)
	if cache.Len() != 0 {
		t.Errorf("Len after Evict: got %d", cache.Len())
	}
	if _, err := cache.Load(path); err == nil {
		t.Error("expected error after eviction of a deleted file")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d", cache.Len())
	}
}
