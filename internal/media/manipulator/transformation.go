package manipulator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/denismitr/imagine/internal/media"
)

const (
	Rotate90  Degrees = 90
	Rotate180 Degrees = 180
	Rotate270 Degrees = 270
)

type Percent uint16
type Degrees int64

// Mode picks which Image operation applies the requested size
type Mode string

const (
	ModeResize Mode = "resize"
	ModeFit    Mode = "fit"
	ModeCrop   Mode = "crop"
)

type Flip struct {
	Horizontal bool
	Vertical   bool
}

func (f Flip) None() bool {
	return !f.Vertical && !f.Horizontal
}

// orienter is implemented by backends able to rotate and flip
type orienter interface {
	Rotate(degrees Degrees) error
	Flip(f Flip) error
}

type Transformation struct {
	Size      Size
	Mode      Mode
	Position  CropPosition
	Quality   Percent
	Rotation  Degrees
	Flip      Flip
	Extension media.Extension
	Mime      string

	// Target is Size resolved against the original image
	Target Dimensions
}

func (t *Transformation) RequiresResize() bool {
	return t.Size.Kind() != AutoSize
}

func (t *Transformation) RequiresCrop() bool {
	return t.RequiresResize() && t.Mode == ModeCrop
}

func (t *Transformation) None() bool {
	return !t.RequiresResize() &&
		t.Flip.None() &&
		t.Rotation == 0 &&
		(t.Quality == 0 || t.Quality == DefaultQuality)
}

func (t *Transformation) GetMime() string {
	if t.Mime != "" {
		return t.Mime
	}

	mime, err := media.GuessMimeFromExtension(string(t.Extension))
	if err != nil {
		return "application/octet-stream"
	}

	return mime
}

// Filename is the canonical name of the transformation result,
// equal transformations always produce equal filenames
func (t *Transformation) Filename() string {
	var segments []string

	if w := t.Size.Width(); w != 0 {
		segments = append(segments, fmt.Sprintf("w%d", w))
	}

	if h := t.Size.Height(); h != 0 {
		segments = append(segments, fmt.Sprintf("h%d", h))
	}

	if t.RequiresResize() && t.Mode != "" && t.Mode != ModeResize {
		segments = append(segments, string(t.Mode))
	}

	if t.RequiresCrop() && !t.Position.IsCenter() {
		segments = append(segments, "p-"+t.Position.String())
	}

	if t.Quality != 0 && t.Quality != DefaultQuality {
		segments = append(segments, fmt.Sprintf("q%d", t.Quality))
	}

	if t.Rotation != 0 {
		segments = append(segments, fmt.Sprintf("r%d", t.Rotation))
	}

	if t.Flip.Horizontal {
		segments = append(segments, "fh")
	}

	if t.Flip.Vertical {
		segments = append(segments, "fv")
	}

	if len(segments) == 0 {
		segments = append(segments, "original")
	}

	sort.Strings(segments)

	return strings.ToLower(strings.Join(segments, "_") + "." + string(t.Extension))
}
