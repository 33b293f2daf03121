package manipulator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/denismitr/imagine/internal/media"
	"github.com/denismitr/imagine/internal/validation"
	"github.com/pkg/errors"
)

const (
	minPixels  = 1
	maxPixels  = 10000
	minPercent = 1
	maxPercent = 100
)

// request accumulates segments before they become a Transformation
type request struct {
	width     *int
	height    *int
	shorthand *Size
	t         *Transformation
}

type segmentCheck struct {
	name  string
	rx    *regexp.Regexp
	apply func(match []string, r *request) error
}

type paramConverter struct {
	checks          []segmentCheck
	validExtensions []string
}

func newParamConverter(cfg *Config) *paramConverter {
	checks := []segmentCheck{
		{
			name: "width",
			rx:   regexp.MustCompile(`^w(\d{1,5})$`),
			apply: func(m []string, r *request) error {
				v, err := matchInteger(m[1], minPixels, maxPixels)
				if err != nil {
					return err
				}

				if r.width != nil {
					return errors.Wrap(ErrBadTransformationRequest, "width is given more than once")
				}

				r.width = &v
				return nil
			},
		},
		{
			name: "height",
			rx:   regexp.MustCompile(`^h(\d{1,5})$`),
			apply: func(m []string, r *request) error {
				v, err := matchInteger(m[1], minPixels, maxPixels)
				if err != nil {
					return err
				}

				if r.height != nil {
					return errors.Wrap(ErrBadTransformationRequest, "height is given more than once")
				}

				r.height = &v
				return nil
			},
		},
		{
			name: "size",
			rx:   regexp.MustCompile(`^(\d{1,5}|AUTO)x(\d{1,5}|AUTO)$`),
			apply: func(m []string, r *request) error {
				s, err := ParseSize(m[0], "")
				if err != nil {
					return err
				}

				// a 0 side is derived like AUTO, ParseSize has already dropped it
				var sides []int
				switch s.Kind() {
				case WidthOnly:
					sides = []int{s.Width()}
				case HeightOnly:
					sides = []int{s.Height()}
				case ExplicitSize:
					sides = []int{s.Width(), s.Height()}
				}

				for _, v := range sides {
					if v < minPixels || v > maxPixels {
						return errors.Wrapf(ErrBadTransformationRequest, "size %s must be between %d and %d", m[0], minPixels, maxPixels)
					}
				}

				r.shorthand = &s
				return nil
			},
		},
		{
			name: "quality",
			rx:   regexp.MustCompile(`^q(\d{1,3})$`),
			apply: func(m []string, r *request) error {
				v, err := matchInteger(m[1], minPercent, maxPercent)
				if err != nil {
					return err
				}

				r.t.Quality = Percent(v)
				return nil
			},
		},
		{
			name: "rotation",
			rx:   regexp.MustCompile(`^r(90|180|270)$`),
			apply: func(m []string, r *request) error {
				v, _ := strconv.Atoi(m[1])
				r.t.Rotation = Degrees(v)
				return nil
			},
		},
		{
			name: "mode",
			rx:   regexp.MustCompile(`^(fit|crop)$`),
			apply: func(m []string, r *request) error {
				r.t.Mode = Mode(m[1])
				return nil
			},
		},
		{
			name: "position",
			rx:   regexp.MustCompile(`^p-([a-z]+-[a-z]+)$`),
			apply: func(m []string, r *request) error {
				p, err := ParseCropPosition(m[1])
				if err != nil {
					return err
				}

				r.t.Position = p
				return nil
			},
		},
		{
			name: "flip",
			rx:   regexp.MustCompile(`^f(h|v)$`),
			apply: func(m []string, r *request) error {
				if m[1] == "h" {
					r.t.Flip.Horizontal = true
				} else {
					r.t.Flip.Vertical = true
				}
				return nil
			},
		},
	}

	return &paramConverter{
		checks:          checks,
		validExtensions: cfg.extensions(),
	}
}

// convertTo parses "_" separated segments such as "w300_crop_p-top-left_q80"
func (pc *paramConverter) convertTo(
	t *Transformation,
	requestedTransformations,
	requestedExtension string,
) error {
	segments := strings.Split(strings.Trim(requestedTransformations, "/ "), "_")

	vErr := validation.New()
	if len(segments) == 0 || (len(segments) == 1 && segments[0] == "") {
		vErr.Add("segments", "no segments provided")
		return vErr
	}

	if !pc.isValidExtension(requestedExtension) {
		vErr.Add("extension", fmt.Sprintf("unsupported extension %s", requestedExtension))
		return vErr
	}

	r := &request{t: t}
	t.Mode = ModeResize
	t.Position = Center

	for _, s := range segments {
		if s == "original" {
			continue
		}

		matched := false
		for _, check := range pc.checks {
			m := check.rx.FindStringSubmatch(s)
			if m == nil {
				continue
			}

			matched = true
			if err := check.apply(m, r); err != nil {
				vErr.Add(check.name, err.Error())
			}

			break
		}

		if !matched {
			vErr.Add("segments", fmt.Sprintf("unknown segment %s", s))
		}
	}

	if r.shorthand != nil && (r.width != nil || r.height != nil) {
		vErr.Add("size", "size shorthand cannot be combined with width or height")
	}

	if !vErr.Empty() {
		return vErr
	}

	if r.shorthand != nil {
		t.Size = *r.shorthand
	} else {
		t.Size = withSides(r.width, r.height)
	}

	ext, err := media.NormalizeExtension(requestedExtension)
	if err != nil {
		vErr.Add("extension", err.Error())
		return vErr
	}

	t.Extension = ext
	t.Mime = t.GetMime()

	return nil
}

func matchInteger(input string, min, max int) (int, error) {
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrBadTransformationRequest, "invalid value %s", err.Error())
	}

	if value < min || value > max {
		return 0, errors.Wrapf(ErrBadTransformationRequest, "int value of %s must be between %d and %d", input, min, max)
	}

	return value, nil
}

func (pc *paramConverter) isValidExtension(ext string) bool {
	for _, vExt := range pc.validExtensions {
		if ext == vExt {
			return true
		}
	}

	return false
}
