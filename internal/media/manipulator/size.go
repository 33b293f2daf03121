package manipulator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// AutoMarker leaves a side of a size to be derived from the source aspect ratio
const AutoMarker = "AUTO"

var (
	rxShorthand = regexp.MustCompile(`^(\d+|AUTO)x(\d+|AUTO)`)
	rxDigits    = regexp.MustCompile(`^\d+$`)
)

type SizeKind uint8

const (
	// AutoSize keeps the source dimensions
	AutoSize SizeKind = iota
	WidthOnly
	HeightOnly
	ExplicitSize
)

func (k SizeKind) String() string {
	switch k {
	case AutoSize:
		return "auto"
	case WidthOnly:
		return "width"
	case HeightOnly:
		return "height"
	case ExplicitSize:
		return "explicit"
	default:
		return fmt.Sprintf("SizeKind(%d)", k)
	}
}

// Size is a requested target size, only the sides its kind names are meaningful.
// The zero value is AutoSize.
type Size struct {
	kind   SizeKind
	width  int
	height int
}

func Auto() Size {
	return Size{kind: AutoSize}
}

func Width(w int) Size {
	return Size{kind: WidthOnly, width: w}
}

func Height(h int) Size {
	return Size{kind: HeightOnly, height: h}
}

func Exact(w, h int) Size {
	return Size{kind: ExplicitSize, width: w, height: h}
}

func (s Size) Kind() SizeKind {
	return s.kind
}

// Width requested, zero when the width is automatic
func (s Size) Width() int {
	if s.kind == WidthOnly || s.kind == ExplicitSize {
		return s.width
	}

	return 0
}

// Height requested, zero when the height is automatic
func (s Size) Height() int {
	if s.kind == HeightOnly || s.kind == ExplicitSize {
		return s.height
	}

	return 0
}

func (s Size) String() string {
	side := func(v int, set bool) string {
		if !set {
			return AutoMarker
		}

		return strconv.Itoa(v)
	}

	return side(s.width, s.kind == WidthOnly || s.kind == ExplicitSize) +
		"x" +
		side(s.height, s.kind == HeightOnly || s.kind == ExplicitSize)
}

// withSides builds a size of the right kind out of optional sides.
// A zero side next to a non-zero one is derived, same as an absent side.
func withSides(w, h *int) Size {
	if w != nil && *w == 0 && h != nil && *h != 0 {
		w = nil
	}

	if h != nil && *h == 0 && w != nil && *w != 0 {
		h = nil
	}

	switch {
	case w != nil && h != nil:
		return Exact(*w, *h)
	case w != nil:
		return Width(*w)
	case h != nil:
		return Height(*h)
	default:
		return Auto()
	}
}

// ParseSize turns the user facing width and height arguments into a Size.
// Each argument is empty, AUTO or digits. A width in the "<W>x<H>" shorthand
// (each side digits or AUTO) overrides both arguments.
func ParseSize(width, height string) (Size, error) {
	if m := rxShorthand.FindStringSubmatch(width); m != nil {
		w, err := parseSide("width", m[1])
		if err != nil {
			return Size{}, err
		}

		h, err := parseSide("height", m[2])
		if err != nil {
			return Size{}, err
		}

		return withSides(w, h), nil
	}

	w, err := parseSide("width", width)
	if err != nil {
		return Size{}, err
	}

	h, err := parseSide("height", height)
	if err != nil {
		return Size{}, err
	}

	return withSides(w, h), nil
}

func parseSide(name, v string) (*int, error) {
	if v == "" || v == AutoMarker {
		return nil, nil
	}

	if !rxDigits.MatchString(v) {
		return nil, errors.Wrapf(ErrInvalidDimension, "%s %q is not a number or %s", name, v, AutoMarker)
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidDimension, "%s %q is out of range", name, v)
	}

	return &n, nil
}

type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Size returns the dimensions as an explicit size
func (d Dimensions) Size() Size {
	return Exact(d.Width, d.Height)
}

// Resolve computes concrete dimensions for the requested size of a source image.
// A missing or zero side is derived from the source aspect ratio and rounded half up,
// when both sides are zero the size is invalid.
func Resolve(s Size, sourceWidth, sourceHeight int) (Dimensions, error) {
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return Dimensions{}, errors.Wrapf(
			ErrInvalidDimension,
			"source dimensions %dx%d must be positive", sourceWidth, sourceHeight)
	}

	var d Dimensions
	switch s.kind {
	case AutoSize:
		d = Dimensions{Width: sourceWidth, Height: sourceHeight}
	case WidthOnly:
		d = Dimensions{Width: s.width, Height: proportional(sourceHeight, s.width, sourceWidth)}
	case HeightOnly:
		d = Dimensions{Width: proportional(sourceWidth, s.height, sourceHeight), Height: s.height}
	case ExplicitSize:
		switch {
		case s.width == 0 && s.height > 0:
			d = Dimensions{Width: proportional(sourceWidth, s.height, sourceHeight), Height: s.height}
		case s.height == 0 && s.width > 0:
			d = Dimensions{Width: s.width, Height: proportional(sourceHeight, s.width, sourceWidth)}
		default:
			d = Dimensions{Width: s.width, Height: s.height}
		}
	default:
		return Dimensions{}, errors.Wrapf(ErrInvalidDimension, "unknown size kind %s", s.kind)
	}

	if d.Width <= 0 || d.Height <= 0 {
		return Dimensions{}, errors.Wrapf(
			ErrInvalidDimension,
			"size %s resolves to %s for source %dx%d", s, d, sourceWidth, sourceHeight)
	}

	return d, nil
}

// proportional returns round(a * b / c), c is positive
func proportional(a, b, c int) int {
	return int(math.Round(float64(a) * float64(b) / float64(c)))
}
