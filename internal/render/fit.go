package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/transform"
)

// FitFrame places img into space using mode, then applies axis. The result
// is space-sized, or space swapped when axis.SwapXY is set.
func FitFrame(img image.Image, space geometry.Size, mode transform.ResizeMode, axis transform.AxisTransform) *image.NRGBA {
	w, h := pixels(space.Width), pixels(space.Height)

	var fitted *image.NRGBA
	switch mode {
	case transform.Stretch:
		fitted = imaging.Resize(img, w, h, imaging.Lanczos)
	case transform.Contain:
		b := img.Bounds()
		s := math.Min(space.Width/float64(b.Dx()), space.Height/float64(b.Dy()))
		scaled := imaging.Resize(img, pixels(float64(b.Dx())*s), pixels(float64(b.Dy())*s), imaging.Lanczos)
		fitted = imaging.PasteCenter(imaging.New(w, h, color.Black), scaled)
	default:
		fitted = imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	}

	if axis.MirrorX {
		fitted = imaging.FlipH(fitted)
	}
	if axis.MirrorY {
		fitted = imaging.FlipV(fitted)
	}
	if axis.SwapXY {
		fitted = imaging.Transpose(fitted)
	}
	return fitted
}

func pixels(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}
