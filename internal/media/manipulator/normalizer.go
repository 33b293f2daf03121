package manipulator

import (
	"math"

	"github.com/denismitr/imagine/internal/media"
	"github.com/pkg/errors"
)

type normalizer struct {
	cfg *Config
}

func newNormalizer(cfg *Config) *normalizer {
	return &normalizer{cfg: cfg}
}

// normalize snaps the requested sides to the configured steps and resolves
// the requested size against the original slice of the image
func (n *normalizer) normalize(t *Transformation, img *media.Image) error {
	originalWidth, originalHeight := img.SourceDimensions()

	switch t.Size.Kind() {
	case WidthOnly:
		t.Size = Width(calculateNearestPixels(n.cfg.SizeDiscreteStep, originalWidth, t.Size.Width(), n.cfg.AllowUpscale))
	case HeightOnly:
		t.Size = Height(calculateNearestPixels(n.cfg.SizeDiscreteStep, originalHeight, t.Size.Height(), n.cfg.AllowUpscale))
	case ExplicitSize:
		t.Size = Exact(
			calculateNearestPixels(n.cfg.SizeDiscreteStep, originalWidth, t.Size.Width(), n.cfg.AllowUpscale),
			calculateNearestPixels(n.cfg.SizeDiscreteStep, originalHeight, t.Size.Height(), n.cfg.AllowUpscale),
		)
	}

	target, err := Resolve(t.Size, originalWidth, originalHeight)
	if err != nil {
		return errors.Wrapf(err, "image %s", img.ID)
	}

	t.Target = target

	if t.Quality != 0 {
		t.Quality = Percent(calculatePercent(n.cfg.QualityDiscreteStep, maxPercent, int(t.Quality), false))
	}

	if t.Extension == "" {
		ext, err := media.NormalizeExtension(img.OriginalExt)
		if err != nil {
			return errors.Wrap(ErrBadTransformationRequest, err.Error())
		}

		t.Extension = ext
	}

	t.Mime = t.GetMime()

	return nil
}

// calculateNearestPixels rounds desired pixels to the nearest step,
// never below one step and never above the original unless upscale is allowed
func calculateNearestPixels(step, originalPixels, desiredPixels int, upscale bool) int {
	return nearest(step, originalPixels, desiredPixels, upscale)
}

func calculatePercent(step, originalPercent, desiredPercent int, upscale bool) int {
	return nearest(step, originalPercent, desiredPercent, upscale)
}

func nearest(step, original, desired int, upscale bool) int {
	if desired <= 0 {
		return desired
	}

	v := desired
	if step > 0 {
		v = int(math.Round(float64(desired)/float64(step))) * step
		if v < step {
			v = step
		}

		// the original itself is always a valid stop
		if original > 0 && abs(original-desired) < abs(v-desired) {
			v = original
		}
	}

	if !upscale && original > 0 && v > original {
		return original
	}

	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
