package proxy

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

var ErrResourceNotFound = errors.New("requested resource not found")
var ErrInternalError = errors.New("image proxy error")
var ErrBadInput = errors.New("bad user input")

// Request is an image request resolved against the registry
type Request struct {
	Transformation *manipulator.Transformation
	Image          *media.Image

	// Match is the stored slice of exactly this transformation, nil when it has to be produced
	Match *media.Slice
}

type ImageProxy interface {
	Prepare(ctx context.Context, ID, requestedTransformations, ext string) (*Request, error)
	Proxy(ctx context.Context, dst io.Writer, req *Request) (*media.Slice, error)
}

// OnTheFlyPersistingImageProxy transforms the original on a cache miss,
// streams the result and persists it for the next request in the background
type OnTheFlyPersistingImageProxy struct {
	registry    registry.Images
	storage     storage.Storage
	manipulator *manipulator.Manipulator
	logger      *logrus.Logger
	saveTimeout time.Duration
	saving      sync.WaitGroup
}

func NewOnTheFlyPersistingImageProxy(
	l *logrus.Logger,
	r registry.Images,
	s storage.Storage,
	m *manipulator.Manipulator,
) *OnTheFlyPersistingImageProxy {
	return &OnTheFlyPersistingImageProxy{
		registry:    r,
		storage:     s,
		manipulator: m,
		logger:      l,
		saveTimeout: 5 * time.Second,
	}
}

func (p *OnTheFlyPersistingImageProxy) Prepare(ctx context.Context, ID, requestedTransformations, ext string) (*Request, error) {
	transformation, err := p.manipulator.Convert(requestedTransformations, ext)
	if err != nil {
		return nil, err
	}

	img, err := p.registry.GetImageByID(ctx, media.ID(ID), true)
	if err != nil {
		return nil, registryError(err, "image "+ID)
	}

	if err := p.manipulator.Normalize(transformation, img); err != nil {
		return nil, err
	}

	req := &Request{Transformation: transformation, Image: img}

	match, err := p.registry.GetSliceByImageIDAndFilename(ctx, img.ID, transformation.Filename())
	switch {
	case err == nil:
		req.Match = match
	case !errors.Is(err, registry.ErrEntityNotFound):
		return nil, registryError(err, "slice "+transformation.Filename())
	}

	return req, nil
}

func (p *OnTheFlyPersistingImageProxy) Proxy(ctx context.Context, dst io.Writer, req *Request) (*media.Slice, error) {
	if req.Match != nil {
		if err := p.storage.Download(ctx, dst, req.Match.Namespace, req.Match.Filename); err != nil {
			return nil, errors.Wrap(ErrInternalError, err.Error())
		}

		return req.Match, nil
	}

	original := req.Image.OriginalSlice
	if original == nil {
		return nil, errors.Wrapf(ErrResourceNotFound, "image %s has no original", req.Image.ID)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(p.storage.Download(ctx, pw, original.Namespace, original.Filename))
	}()

	buf := &bytes.Buffer{}
	slice, err := p.manipulator.Transform(pr, buf, req.Image, req.Transformation)
	_ = pr.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "could not transform image %s to %s", req.Image.ID, req.Transformation.Filename())
	}

	contents := buf.Bytes()
	if _, err := dst.Write(contents); err != nil {
		return nil, errors.Wrap(err, "could not write transformed image")
	}

	saved := *slice
	p.saving.Add(1)
	go func() {
		defer p.saving.Done()
		p.saveTransformedSlice(&saved, contents)
	}()

	return slice, nil
}

// Wait blocks until every transformed slice is persisted or failed
func (p *OnTheFlyPersistingImageProxy) Wait() {
	p.saving.Wait()
}

func (p *OnTheFlyPersistingImageProxy) saveTransformedSlice(slice *media.Slice, contents []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
	defer cancel()

	slice.Activate(p.registry.GenerateID())

	item, err := p.storage.Put(ctx, slice.Namespace, slice.Filename, bytes.NewReader(contents))
	if err != nil {
		p.logger.WithField("slice", slice.Filename).Errorln(err)
		return
	}

	slice.Path = item.Path

	if err := p.registry.CreateSlice(ctx, slice); err != nil {
		if errors.Is(err, registry.ErrEntityAlreadyExists) {
			p.logger.WithField("slice", slice.Filename).Debugln("slice saved by a concurrent request")
			return
		}

		p.logger.WithField("slice", slice.Filename).Errorln(err)

		if rmErr := p.storage.Remove(ctx, slice.Namespace, slice.Filename); rmErr != nil {
			p.logger.WithField("slice", slice.Filename).Errorln(rmErr)
		}
	}
}

func registryError(err error, what string) error {
	switch {
	case errors.Is(err, registry.ErrEntityNotFound):
		return errors.Wrapf(ErrResourceNotFound, "%s not found: %v", what, err)
	case errors.Is(err, registry.ErrInvalidID):
		return errors.Wrap(ErrBadInput, err.Error())
	default:
		return errors.Wrap(ErrInternalError, err.Error())
	}
}
