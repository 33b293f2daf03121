package manipulator

import (
	"bytes"
	"io"
	"time"

	"github.com/denismitr/imagine/internal/media"
	"github.com/pkg/errors"
)

type Manipulator struct {
	cfg            *Config
	paramConverter *paramConverter
	normalizer     *normalizer
}

func New(cfg *Config) *Manipulator {
	return &Manipulator{
		cfg:            cfg,
		normalizer:     newNormalizer(cfg),
		paramConverter: newParamConverter(cfg),
	}
}

// Convert - converts transformation request into transformation object
func (m *Manipulator) Convert(transformationRequest, requestedExtension string) (*Transformation, error) {
	t := new(Transformation)

	actions := m.cfg.Presets.Expand(transformationRequest)
	if err := m.paramConverter.convertTo(t, actions, requestedExtension); err != nil {
		return nil, err
	}

	return t, nil
}

// CheckPresets converts every configured preset so a broken one fails at startup
func (m *Manipulator) CheckPresets() error {
	for _, name := range m.cfg.Presets.Names() {
		if _, err := m.Convert(name, m.cfg.extensions()[0]); err != nil {
			return errors.Wrapf(ErrBadTransformationRequest, "preset %s: %v", name, err)
		}
	}

	return nil
}

// Normalize applies the image specific constraints to the transformation
func (m *Manipulator) Normalize(t *Transformation, img *media.Image) error {
	return m.normalizer.normalize(t, img)
}

// Transform decodes the source, applies the transformation and writes the encoded result to dst
func (m *Manipulator) Transform(
	source io.Reader,
	dst io.Writer,
	rootImage *media.Image,
	t *Transformation,
) (*media.Slice, error) {
	img, err := m.load(source)
	if err != nil {
		return nil, err
	}

	if err := m.apply(img, t); err != nil {
		return nil, err
	}

	ext := t.Extension
	if ext == "" {
		ext = img.Extension()
	}

	return m.encode(img, dst, rootImage, ext, int(t.Quality), t.Filename(), t.RequiresCrop())
}

// CreateOriginalSlice re-encodes an uploaded file in its own format, upright
func (m *Manipulator) CreateOriginalSlice(source io.Reader, dst io.Writer, rootImage *media.Image) (*media.Slice, error) {
	img, err := m.load(source)
	if err != nil {
		return nil, err
	}

	t := &Transformation{Extension: img.Extension()}

	slice, err := m.encode(img, dst, rootImage, img.Extension(), DefaultQuality, t.Filename(), false)
	if err != nil {
		return nil, err
	}

	slice.IsValid = true
	slice.IsOriginal = true

	return slice, nil
}

func (m *Manipulator) load(source io.Reader) (Image, error) {
	img, err := NewImage(m.cfg.Backend)
	if err != nil {
		return nil, err
	}

	if err := img.Decode(source); err != nil {
		return nil, err
	}

	return img, nil
}

func (m *Manipulator) apply(img Image, t *Transformation) error {
	if t.RequiresResize() {
		var err error
		switch t.Mode {
		case ModeFit:
			err = img.ScaleToFit(t.Size, m.cfg.AllowUpscale)
		case ModeCrop:
			err = img.ScaleAndCrop(t.Size, m.cfg.AllowUpscale, t.Position)
		default:
			err = img.Resize(t.Size)
		}

		if err != nil {
			return errors.Wrapf(err, "could not apply %s of %s", t.Mode, t.Size)
		}
	}

	if t.Rotation == 0 && t.Flip.None() {
		return nil
	}

	o, ok := img.(orienter)
	if !ok {
		return errors.Wrapf(ErrTransformationFailed, "backend %s cannot rotate or flip", m.cfg.Backend)
	}

	if err := o.Rotate(t.Rotation); err != nil {
		return err
	}

	return o.Flip(t.Flip)
}

func (m *Manipulator) encode(
	img Image,
	dst io.Writer,
	rootImage *media.Image,
	ext media.Extension,
	quality int,
	filename string,
	cropped bool,
) (*media.Slice, error) {
	buf := &bytes.Buffer{}
	if err := img.Encode(buf, ext, quality); err != nil {
		return nil, err
	}

	n, err := io.Copy(dst, buf)
	if err != nil {
		return nil, errors.Wrapf(ErrTransformationFailed, "could not copy bytes to dst; %v", err)
	}

	if quality <= 0 {
		quality = DefaultQuality
	}

	return rootImage.CreateSlice(
		ext,
		filename,
		img.Width(),
		img.Height(),
		int(n),
		quality,
		cropped,
		time.Now(),
	)
}
