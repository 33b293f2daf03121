package manipulator

import (
	"image"
	"math"
	"strings"

	"github.com/pkg/errors"
)

type CropPosition struct {
	Vertical   string
	Horizontal string
}

var (
	vertical   = map[string]bool{"top": true, "center": true, "bottom": true}
	horizontal = map[string]bool{"left": true, "center": true, "right": true}
)

// Center is the default position of ScaleAndCrop
var Center = CropPosition{Vertical: "center", Horizontal: "center"}

// ParseCropPosition accepts "<vertical>-<horizontal>", e.g. "top-left" or "center-center"
func ParseCropPosition(v string) (CropPosition, error) {
	if v == "" {
		return Center, nil
	}

	parts := strings.Split(strings.ToLower(v), "-")
	if len(parts) != 2 || !vertical[parts[0]] || !horizontal[parts[1]] {
		return CropPosition{}, errors.Wrapf(ErrBadTransformationRequest, "invalid crop position %q", v)
	}

	return CropPosition{Vertical: parts[0], Horizontal: parts[1]}, nil
}

func (p CropPosition) String() string {
	if p.Vertical == "" || p.Horizontal == "" {
		return Center.String()
	}

	return p.Vertical + "-" + p.Horizontal
}

func (p CropPosition) IsCenter() bool {
	return p.String() == Center.String()
}

// fitDimensions scales a w x h image down (or up) so it fits inside the target box
func fitDimensions(w, h int, target Dimensions) Dimensions {
	factor := math.Max(float64(w)/float64(target.Width), float64(h)/float64(target.Height))
	return scaledBy(w, h, factor)
}

// coverDimensions scales a w x h image so it covers the whole target box
func coverDimensions(w, h int, target Dimensions) Dimensions {
	factor := math.Min(float64(w)/float64(target.Width), float64(h)/float64(target.Height))
	return scaledBy(w, h, factor)
}

func scaledBy(w, h int, factor float64) Dimensions {
	d := Dimensions{
		Width:  int(math.Round(float64(w) / factor)),
		Height: int(math.Round(float64(h) / factor)),
	}

	if d.Width < 1 {
		d.Width = 1
	}

	if d.Height < 1 {
		d.Height = 1
	}

	return d
}

func exceeds(w, h int, target Dimensions) bool {
	return w > target.Width || h > target.Height
}

// planFit resolves the target and tells the size to resample to so the image fits inside it
func planFit(w, h int, target Size, scaleIfSmaller bool) (Dimensions, bool, error) {
	d, err := Resolve(target, w, h)
	if err != nil {
		return Dimensions{}, false, err
	}

	if !scaleIfSmaller && !exceeds(w, h, d) {
		return Dimensions{Width: w, Height: h}, false, nil
	}

	return fitDimensions(w, h, d), true, nil
}

// planCover resolves the target, tells the size to resample to so the image covers it
// and the rectangle to crop out of the resampled image
func planCover(w, h int, target Size, scaleIfSmaller bool, p CropPosition) (Dimensions, bool, image.Rectangle, error) {
	d, err := Resolve(target, w, h)
	if err != nil {
		return Dimensions{}, false, image.Rectangle{}, err
	}

	if !scaleIfSmaller && !exceeds(w, h, d) {
		return Dimensions{Width: w, Height: h}, false, cropRect(w, h, d, p), nil
	}

	// an image larger on one side only is scaled by the cover factor too, never above 1
	scaled := coverDimensions(w, h, d)
	if !scaleIfSmaller && (scaled.Width > w || scaled.Height > h) {
		return Dimensions{Width: w, Height: h}, false, cropRect(w, h, d, p), nil
	}

	return scaled, true, cropRect(scaled.Width, scaled.Height, d, p), nil
}

// cropRect places a box of size target inside a w x h image according to the position.
// The box is shrunk to the image when the image is smaller.
func cropRect(w, h int, target Dimensions, p CropPosition) image.Rectangle {
	cw := min(w, target.Width)
	ch := min(h, target.Height)

	var x0, y0 int
	switch p.Horizontal {
	case "left":
		x0 = 0
	case "right":
		x0 = w - cw
	default:
		x0 = (w - cw) / 2
	}

	switch p.Vertical {
	case "top":
		y0 = 0
	case "bottom":
		y0 = h - ch
	default:
		y0 = (h - ch) / 2
	}

	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// checkCrop validates the x1, x2, y1, y2 coordinates against the image bounds
func checkCrop(bounds image.Rectangle, x1, x2, y1, y2 int) (image.Rectangle, error) {
	r := image.Rect(x1, y1, x2, y2).Add(bounds.Min)
	if x2 <= x1 || y2 <= y1 || !r.In(bounds) {
		return image.Rectangle{}, errors.Wrapf(
			ErrInvalidDimension,
			"crop [%d,%d]x[%d,%d] is outside of image %dx%d",
			x1, x2, y1, y2, bounds.Dx(), bounds.Dy())
	}

	return r, nil
}

// autoQuality picks a JPEG quality by the number of pixels, bigger images compress harder
func autoQuality(w, h int) int {
	pixels := w * h
	switch {
	case pixels <= 500*500:
		return 90
	case pixels <= 1000*1000:
		return 85
	case pixels <= 2000*2000:
		return 80
	default:
		return 75
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}
