package registry

import (
	"context"

	"github.com/denismitr/imagine/internal/content"
	"github.com/denismitr/imagine/internal/media"
	"github.com/pkg/errors"
)

var (
	ErrCouldNotOpenTx        = errors.New("could not open tx")
	ErrRegistryReadFailed    = errors.New("registry read error")
	ErrRegistryWriteFailed   = errors.New("registry write error")
	ErrEntityNotFound        = errors.New("entity not found")
	ErrEntityAlreadyExists   = errors.New("entity already exists")
	ErrInvalidID             = errors.New("invalid ID")
	ErrBadRegistryRequest    = errors.New("bad registry request")
	ErrInternalRegistryError = errors.New("internal registry error")
)

type Images interface {
	GenerateID() media.ID
	CreateImageWithOriginalSlice(ctx context.Context, image *media.Image, slice *media.Slice) error
	GetImageByID(ctx context.Context, ID media.ID, onlyPublished bool) (*media.Image, error)
	GetImageWithSlicesByID(ctx context.Context, ID media.ID, onlyPublished bool) (*media.Image, error)
	GetSliceByImageIDAndFilename(ctx context.Context, imageID media.ID, filename string) (*media.Slice, error)
	GetImages(ctx context.Context, filter media.ImageFilter) (*media.ImageCollection, error)
	CreateSlice(ctx context.Context, slice *media.Slice) error
	RemoveImageWithAllSlices(ctx context.Context, ID media.ID) error
}

type GlobalSets interface {
	CreateGlobalSet(ctx context.Context, gs *content.GlobalSet) error
	GetGlobalSetByHandle(ctx context.Context, handle string) (*content.GlobalSet, error)
	GetGlobalSets(ctx context.Context) ([]content.GlobalSet, error)
	UpdateGlobalSet(ctx context.Context, handle string, gs *content.GlobalSet) error
	RemoveGlobalSetByHandle(ctx context.Context, handle string) error
}

type Registry interface {
	Images
	GlobalSets
}
