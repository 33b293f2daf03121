package manipulator

import (
	"io"

	"github.com/denismitr/imagine/internal/media"
	"github.com/pkg/errors"
)

// Image is the set of operations every image backend provides.
// Resize, ScaleToFit and ScaleAndCrop resolve the target size against
// the loaded image before touching any pixels.
type Image interface {
	Width() int
	Height() int
	Extension() media.Extension

	LoadImage(path string) error
	Decode(r io.Reader) error

	Crop(x1, x2, y1, y2 int) error
	ScaleToFit(target Size, scaleIfSmaller bool) error
	ScaleAndCrop(target Size, scaleIfSmaller bool, position CropPosition) error
	Resize(target Size) error

	SaveAs(path string, autoQuality bool) error
	Encode(w io.Writer, ext media.Extension, quality int) error

	IsTransparent() bool
}

// Backend names an Image implementation
type Backend string

const (
	RasterBackend Backend = "raster"
	ScalerBackend Backend = "scaler"
)

func NewImage(backend Backend) (Image, error) {
	switch backend {
	case RasterBackend, "":
		return NewRaster(), nil
	case ScalerBackend:
		return NewScaler(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", backend)
	}
}
