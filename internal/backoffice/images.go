package backoffice

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/denismitr/imagine/internal/media"
	"github.com/denismitr/imagine/internal/media/manipulator"
	"github.com/denismitr/imagine/internal/registry"
	"github.com/denismitr/imagine/internal/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrBackOfficeError = errors.New("back office error")
var ErrResourceNotFound = errors.New("resource not found")
var ErrBadRequest = errors.New("bad request")
var ErrUploadTooLarge = errors.New("upload is too large")

// ImageService is a collection of use cases specific to the back office
// handling business logic for processing images
type ImageService struct {
	registry    registry.Images
	storage     storage.Storage
	manipulator *manipulator.Manipulator
	logger      *logrus.Logger
}

func NewImageService(
	r registry.Images,
	s storage.Storage,
	m *manipulator.Manipulator,
	l *logrus.Logger,
) *ImageService {
	return &ImageService{
		registry:    r,
		storage:     s,
		manipulator: m,
		logger:      l,
	}
}

type originalSlice struct {
	slice   *media.Slice
	content *bytes.Reader
}

func (is *ImageService) getImages(ctx context.Context, filter media.ImageFilter) (*media.ImageCollection, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection, err := is.registry.GetImages(ctx, filter)
	if err != nil {
		return nil, err
	}

	return collection, nil
}

func (is *ImageService) createOriginalSlice(source io.Reader, newImage *media.Image, errCh chan<- error) <-chan *originalSlice {
	resultCh := make(chan *originalSlice, 1)

	go func() {
		defer close(resultCh)

		b := &bytes.Buffer{}
		slice, err := is.manipulator.CreateOriginalSlice(source, b, newImage)
		if err != nil {
			errCh <- err
			return
		}

		resultCh <- &originalSlice{
			slice:   slice,
			content: bytes.NewReader(b.Bytes()),
		}
	}()

	return resultCh
}

func (is *ImageService) saveOriginalSliceToStorage(
	ctx context.Context,
	img *media.Image,
	originalSliceCh <-chan *originalSlice,
	errCh chan<- error,
) <-chan *media.Image {
	resultCh := make(chan *media.Image, 1)

	go func() {
		defer close(resultCh)

		os := <-originalSliceCh
		if os == nil {
			return
		}

		img.OriginalSlice = os.slice

		item, err := is.storage.Put(ctx, img.OriginalSlice.Namespace, img.OriginalSlice.Filename, os.content)
		if err != nil {
			errCh <- errors.Wrapf(ErrBackOfficeError, "could not persist image: %v", err)
			return
		}

		img.OriginalSlice.Path = item.Path

		resultCh <- img
	}()

	return resultCh
}

func (is *ImageService) saveNewImageToRegistry(
	ctx context.Context,
	imageCh <-chan *media.Image,
	errCh chan<- error,
) <-chan *media.Image {
	doneCh := make(chan *media.Image, 1)

	go func() {
		defer close(doneCh)

		img, ok := <-imageCh
		if img == nil || !ok {
			return
		}

		img.OriginalSlice.Activate(is.registry.GenerateID())

		if err := is.registry.CreateImageWithOriginalSlice(ctx, img, img.OriginalSlice); err != nil {
			if rmErr := is.storage.Remove(ctx, img.OriginalSlice.Namespace, img.OriginalSlice.Filename); rmErr != nil {
				is.logger.WithField("slice", img.OriginalSlice.Filename).Errorln(rmErr)
			}

			errCh <- errors.Wrapf(ErrBackOfficeError, "could not create image in registry: %v", err)
			return
		}

		doneCh <- img
	}()

	return doneCh
}

func (is *ImageService) createNewImage(ctx context.Context, dto *createImageDTO) (*media.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, 25*time.Second)
	defer cancel()

	img := makeNewImage(is.registry.GenerateID(), dto, time.Now())

	errCh := make(chan error, 3)

	originalSliceCh := is.createOriginalSlice(dto.source, img, errCh)
	imageCh := is.saveOriginalSliceToStorage(ctx, img, originalSliceCh, errCh)
	doneCh := is.saveNewImageToRegistry(ctx, imageCh, errCh)

	for {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "could not create new image")
		case err := <-errCh:
			return nil, err
		case img, ok := <-doneCh:
			if img == nil || !ok {
				// a stage failed, its error is already buffered
				return nil, <-errCh
			}

			is.logger.WithFields(logrus.Fields{"image": img.ID, "slice": img.OriginalSlice.Filename}).Infoln("image created")

			return img, nil
		}
	}
}

func makeNewImage(id media.ID, dto *createImageDTO, now time.Time) *media.Image {
	var img media.Image
	img.ID = id
	img.Name = createURLFriendlyName(dto)
	img.OriginalName = dto.originalName
	img.OriginalSize = int(dto.originalSize)
	img.OriginalExt = dto.originalExt
	img.CreatedAt = now
	img.UpdatedAt = now
	img.Namespace = dto.namespace

	if dto.publish {
		img.PublishAt = &now
	}

	return &img
}

func (is *ImageService) getImage(ctx context.Context, id string) (*media.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	img, err := is.registry.GetImageWithSlicesByID(ctx, media.ID(id), false)
	if err != nil {
		if errors.Is(err, registry.ErrEntityNotFound) {
			return nil, errors.Wrapf(ErrResourceNotFound, "%s", err.Error())
		}

		return nil, err
	}

	return img, nil
}

func (is *ImageService) removeImage(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	img, err := is.getImage(ctx, id)
	if err != nil {
		return err
	}

	errCh := make(chan error, len(img.Slices))
	doneRemoveFromStorage := is.removeFromStorage(ctx, img.Slices, errCh)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-doneRemoveFromStorage:
	}

	close(errCh)
	for err := range errCh {
		// orphaned files are logged, the image is removed anyway
		is.logger.WithField("image", id).Errorln(err)
	}

	if err := is.registry.RemoveImageWithAllSlices(ctx, media.ID(id)); err != nil {
		if errors.Is(err, registry.ErrEntityNotFound) {
			return errors.Wrapf(ErrResourceNotFound, "%s", err.Error())
		}

		return err
	}

	return nil
}

func (is *ImageService) removeFromStorage(
	ctx context.Context,
	slices media.Slices,
	errCh chan<- error,
) <-chan struct{} {
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)

		var wg sync.WaitGroup
		for _, slice := range slices {
			wg.Add(1)
			go func(namespace, filename string) {
				defer wg.Done()

				if err := is.storage.Remove(ctx, namespace, filename); err != nil {
					errCh <- err
				}
			}(slice.Namespace, slice.Filename)
		}

		wg.Wait()
	}()

	return doneCh
}
