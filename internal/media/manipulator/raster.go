package manipulator

import (
	"bytes"
	"image"
	"io"
	"io/ioutil"
	"os"

	"github.com/denismitr/imagine/internal/media"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
)

// maximum distance into image to look for EXIF tags
const maxExifSize = 1 << 20

const DefaultQuality = 100

var imagingFormats = map[media.Extension]imaging.Format{
	media.JPEG: imaging.JPEG,
	media.PNG:  imaging.PNG,
	media.GIF:  imaging.GIF,
	media.TIFF: imaging.TIFF,
	media.BMP:  imaging.BMP,
}

// Raster is an Image backed by disintegration/imaging
type Raster struct {
	img       image.Image
	extension media.Extension
}

func NewRaster() *Raster {
	return &Raster{}
}

func (r *Raster) Width() int {
	if r.img == nil {
		return 0
	}

	return r.img.Bounds().Dx()
}

func (r *Raster) Height() int {
	if r.img == nil {
		return 0
	}

	return r.img.Bounds().Dy()
}

func (r *Raster) Extension() media.Extension {
	return r.extension
}

func (r *Raster) LoadImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrImageLoadFailure, "could not open %s: %v", path, err)
	}
	defer f.Close()

	return r.Decode(f)
}

func (r *Raster) Decode(source io.Reader) error {
	b, err := ioutil.ReadAll(source)
	if err != nil {
		return errors.Wrapf(ErrImageLoadFailure, "could not read image: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(ErrImageLoadFailure, err.Error())
	}

	ext, err := media.NormalizeExtension(format)
	if err != nil {
		return errors.Wrap(ErrImageLoadFailure, err.Error())
	}

	if ext == media.JPEG || ext == media.TIFF {
		img = orient(img, computeExifOrientation(io.LimitReader(bytes.NewReader(b), maxExifSize)))
	}

	r.img = img
	r.extension = ext

	return nil
}

func (r *Raster) Crop(x1, x2, y1, y2 int) error {
	if r.img == nil {
		return ErrImageNotLoaded
	}

	rect, err := checkCrop(r.img.Bounds(), x1, x2, y1, y2)
	if err != nil {
		return err
	}

	r.img = imaging.Crop(r.img, rect)

	return nil
}

func (r *Raster) ScaleToFit(target Size, scaleIfSmaller bool) error {
	if r.img == nil {
		return ErrImageNotLoaded
	}

	d, scale, err := planFit(r.Width(), r.Height(), target, scaleIfSmaller)
	if err != nil {
		return err
	}

	if scale {
		r.img = imaging.Resize(r.img, d.Width, d.Height, imaging.Lanczos)
	}

	return nil
}

func (r *Raster) ScaleAndCrop(target Size, scaleIfSmaller bool, position CropPosition) error {
	if r.img == nil {
		return ErrImageNotLoaded
	}

	d, scale, rect, err := planCover(r.Width(), r.Height(), target, scaleIfSmaller, position)
	if err != nil {
		return err
	}

	if scale {
		r.img = imaging.Resize(r.img, d.Width, d.Height, imaging.Lanczos)
	}

	r.img = imaging.Crop(r.img, rect)

	return nil
}

func (r *Raster) Resize(target Size) error {
	if r.img == nil {
		return ErrImageNotLoaded
	}

	d, err := Resolve(target, r.Width(), r.Height())
	if err != nil {
		return err
	}

	r.img = imaging.Resize(r.img, d.Width, d.Height, imaging.Lanczos)

	return nil
}

// Rotate by a multiple of 90 degrees counter-clockwise
func (r *Raster) Rotate(degrees Degrees) error {
	if r.img == nil {
		return ErrImageNotLoaded
	}

	switch degrees {
	case 0:
	case Rotate90:
		r.img = imaging.Rotate90(r.img)
	case Rotate180:
		r.img = imaging.Rotate180(r.img)
	case Rotate270:
		r.img = imaging.Rotate270(r.img)
	default:
		return errors.Wrapf(ErrBadTransformationRequest, "unsupported rotation %d", degrees)
	}

	return nil
}

func (r *Raster) Flip(f Flip) error {
	if r.img == nil {
		return ErrImageNotLoaded
	}

	if f.Horizontal {
		r.img = imaging.FlipH(r.img)
	}

	if f.Vertical {
		r.img = imaging.FlipV(r.img)
	}

	return nil
}

func (r *Raster) SaveAs(path string, auto bool) error {
	if r.img == nil {
		return ErrImageNotLoaded
	}

	ext, err := media.ExtensionFromPath(path)
	if err != nil {
		return errors.Wrapf(ErrTransformationFailed, "could not save %s: %v", path, err)
	}

	quality := DefaultQuality
	if auto {
		quality = autoQuality(r.Width(), r.Height())
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(ErrTransformationFailed, "could not create %s: %v", path, err)
	}

	if err := r.Encode(f, ext, quality); err != nil {
		_ = f.Close()
		return err
	}

	return errors.Wrapf(f.Close(), "could not close %s", path)
}

func (r *Raster) Encode(w io.Writer, ext media.Extension, quality int) error {
	if r.img == nil {
		return ErrImageNotLoaded
	}

	format, ok := imagingFormats[ext]
	if !ok {
		return errors.Wrapf(ErrTransformationFailed, "unsupported target extension %s", ext)
	}

	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	if err := imaging.Encode(w, r.img, format, imaging.JPEGQuality(quality)); err != nil {
		return errors.Wrapf(ErrTransformationFailed, "could not encode image to %s: %v", ext, err)
	}

	return nil
}

func (r *Raster) IsTransparent() bool {
	return isTransparent(r.img)
}

type opaquer interface {
	Opaque() bool
}

func isTransparent(img image.Image) bool {
	if img == nil {
		return false
	}

	if o, ok := img.(opaquer); ok {
		return !o.Opaque()
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}

	return false
}

// Exif Orientation Tag values
// http://sylvana.net/jpegcrop/exif_orientation.html
const (
	topLeftSide     = 1
	topRightSide    = 2
	bottomRightSide = 3
	bottomLeftSide  = 4
	leftSideTop     = 5
	rightSideTop    = 6
	rightSideBottom = 7
	leftSideBottom  = 8
)

func computeExifOrientation(r io.Reader) int {
	exf, err := exif.Decode(r)
	if err != nil {
		return topLeftSide
	}

	tag, err := exf.Get(exif.Orientation)
	if err != nil {
		return topLeftSide
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return topLeftSide
	}

	return orientation
}

func orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case topRightSide:
		return imaging.FlipH(img)
	case bottomRightSide:
		return imaging.Rotate180(img)
	case bottomLeftSide:
		return imaging.FlipV(img)
	case leftSideTop:
		return imaging.Transpose(img)
	case rightSideTop:
		return imaging.Rotate270(img)
	case rightSideBottom:
		return imaging.Transverse(img)
	case leftSideBottom:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
