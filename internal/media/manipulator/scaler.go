package manipulator

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/denismitr/imagine/internal/media"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/tiff"
)

// Scaler is an Image backed by golang.org/x/image/draw, it never reads EXIF metadata
type Scaler struct {
	img       *image.NRGBA
	extension media.Extension
	kernel    draw.Interpolator
}

func NewScaler() *Scaler {
	return &Scaler{kernel: draw.CatmullRom}
}

func (s *Scaler) Width() int {
	if s.img == nil {
		return 0
	}

	return s.img.Bounds().Dx()
}

func (s *Scaler) Height() int {
	if s.img == nil {
		return 0
	}

	return s.img.Bounds().Dy()
}

func (s *Scaler) Extension() media.Extension {
	return s.extension
}

func (s *Scaler) LoadImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrImageLoadFailure, "could not open %s: %v", path, err)
	}
	defer f.Close()

	return s.Decode(f)
}

func (s *Scaler) Decode(r io.Reader) error {
	src, format, err := image.Decode(r)
	if err != nil {
		return errors.Wrap(ErrImageLoadFailure, err.Error())
	}

	ext, err := media.NormalizeExtension(format)
	if err != nil {
		return errors.Wrap(ErrImageLoadFailure, err.Error())
	}

	dst := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)

	s.img = dst
	s.extension = ext

	return nil
}

func (s *Scaler) resample(d Dimensions) {
	dst := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	s.kernel.Scale(dst, dst.Bounds(), s.img, s.img.Bounds(), draw.Src, nil)
	s.img = dst
}

func (s *Scaler) crop(rect image.Rectangle) {
	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), s.img, rect.Min, draw.Src)
	s.img = dst
}

func (s *Scaler) Crop(x1, x2, y1, y2 int) error {
	if s.img == nil {
		return ErrImageNotLoaded
	}

	rect, err := checkCrop(s.img.Bounds(), x1, x2, y1, y2)
	if err != nil {
		return err
	}

	s.crop(rect)

	return nil
}

func (s *Scaler) ScaleToFit(target Size, scaleIfSmaller bool) error {
	if s.img == nil {
		return ErrImageNotLoaded
	}

	d, scale, err := planFit(s.Width(), s.Height(), target, scaleIfSmaller)
	if err != nil {
		return err
	}

	if scale {
		s.resample(d)
	}

	return nil
}

func (s *Scaler) ScaleAndCrop(target Size, scaleIfSmaller bool, position CropPosition) error {
	if s.img == nil {
		return ErrImageNotLoaded
	}

	d, scale, rect, err := planCover(s.Width(), s.Height(), target, scaleIfSmaller, position)
	if err != nil {
		return err
	}

	if scale {
		s.resample(d)
	}

	s.crop(rect)

	return nil
}

func (s *Scaler) Resize(target Size) error {
	if s.img == nil {
		return ErrImageNotLoaded
	}

	d, err := Resolve(target, s.Width(), s.Height())
	if err != nil {
		return err
	}

	s.resample(d)

	return nil
}

// Rotate by a multiple of 90 degrees counter-clockwise
func (s *Scaler) Rotate(degrees Degrees) error {
	if s.img == nil {
		return ErrImageNotLoaded
	}

	w, h := float64(s.Width()), float64(s.Height())

	switch degrees {
	case 0:
		return nil
	case Rotate90:
		s.transform(s.Height(), s.Width(), f64.Aff3{0, 1, 0, -1, 0, w})
	case Rotate180:
		s.transform(s.Width(), s.Height(), f64.Aff3{-1, 0, w, 0, -1, h})
	case Rotate270:
		s.transform(s.Height(), s.Width(), f64.Aff3{0, -1, h, 1, 0, 0})
	default:
		return errors.Wrapf(ErrBadTransformationRequest, "unsupported rotation %d", degrees)
	}

	return nil
}

func (s *Scaler) Flip(f Flip) error {
	if s.img == nil {
		return ErrImageNotLoaded
	}

	if f.None() {
		return nil
	}

	m := f64.Aff3{1, 0, 0, 0, 1, 0}
	if f.Horizontal {
		m[0], m[2] = -1, float64(s.Width())
	}

	if f.Vertical {
		m[4], m[5] = -1, float64(s.Height())
	}

	s.transform(s.Width(), s.Height(), m)

	return nil
}

// transform maps the image into a w x h canvas, s2d takes source to destination coordinates.
// Nearest neighbor keeps pixels exact for the axis aligned maps used here.
func (s *Scaler) transform(w, h int, s2d f64.Aff3) {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Transform(dst, s2d, s.img, s.img.Bounds(), draw.Src, nil)
	s.img = dst
}

func (s *Scaler) SaveAs(path string, auto bool) error {
	if s.img == nil {
		return ErrImageNotLoaded
	}

	ext, err := media.ExtensionFromPath(path)
	if err != nil {
		return errors.Wrapf(ErrTransformationFailed, "could not save %s: %v", path, err)
	}

	quality := DefaultQuality
	if auto {
		quality = autoQuality(s.Width(), s.Height())
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(ErrTransformationFailed, "could not create %s: %v", path, err)
	}

	if err := s.Encode(f, ext, quality); err != nil {
		_ = f.Close()
		return err
	}

	return errors.Wrapf(f.Close(), "could not close %s", path)
}

func (s *Scaler) Encode(w io.Writer, ext media.Extension, quality int) error {
	if s.img == nil {
		return ErrImageNotLoaded
	}

	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var err error
	switch ext {
	case media.JPEG:
		err = jpeg.Encode(w, s.img, &jpeg.Options{Quality: quality})
	case media.PNG:
		err = png.Encode(w, s.img)
	case media.GIF:
		err = gif.Encode(w, s.img, nil)
	case media.BMP:
		err = bmp.Encode(w, s.img)
	case media.TIFF:
		err = tiff.Encode(w, s.img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.Wrapf(ErrTransformationFailed, "unsupported target extension %s", ext)
	}

	if err != nil {
		return errors.Wrapf(ErrTransformationFailed, "could not encode image to %s: %v", ext, err)
	}

	return nil
}

func (s *Scaler) IsTransparent() bool {
	if s.img == nil {
		return false
	}

	return isTransparent(s.img)
}
