package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

var ErrStorageFailed = errors.New("storage failed")
var ErrInvalidKey = errors.New("invalid storage key")

type Item struct {
	Path string
	URL  string
}

type Storage interface {
	Put(ctx context.Context, namespace, filename string, source io.Reader) (*Item, error)
	Download(ctx context.Context, dst io.Writer, namespace, filename string) error
	Remove(ctx context.Context, namespace, filename string) error
}
