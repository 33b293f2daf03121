package media

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidExtension = errors.New("invalid extension")

type Extension string

const (
	JPEG Extension = "jpg"
	PNG  Extension = "png"
	GIF  Extension = "gif"
	TIFF Extension = "tiff"
	BMP  Extension = "bmp"
)

var extensions = map[string]Extension{
	"png":  PNG,
	"jpg":  JPEG,
	"jpeg": JPEG,
	"gif":  GIF,
	"tif":  TIFF,
	"tiff": TIFF,
	"bmp":  BMP,
}

var mimes = map[Extension]string{
	PNG:  "image/png",
	JPEG: "image/jpeg",
	GIF:  "image/gif",
	TIFF: "image/tiff",
	BMP:  "image/bmp",
}

func (e Extension) String() string {
	return string(e)
}

// SupportsAlpha tells whether an encoder for the extension keeps transparency
func (e Extension) SupportsAlpha() bool {
	return e == PNG || e == GIF || e == TIFF
}

func GuessMimeFromExtension(ext string) (string, error) {
	e, err := NormalizeExtension(ext)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidExtension, "mime type unsupported for %s", ext)
	}

	return mimes[e], nil
}

// NormalizeExtension accepts extensions and decoder format names ("jpeg", "png") alike
func NormalizeExtension(ext string) (Extension, error) {
	if e, ok := extensions[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return e, nil
	}

	return "", errors.Wrapf(ErrInvalidExtension, "extension unsupported: %s", ext)
}

func ExtensionFromPath(path string) (Extension, error) {
	return NormalizeExtension(filepath.Ext(path))
}
