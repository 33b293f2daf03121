package memstorage

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"sync"

	"github.com/denismitr/imagine/internal/storage"
	"github.com/pkg/errors"
)

// MemoryStorage keeps files in process memory, for local runs and tests
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ storage.Storage = (*MemoryStorage)(nil)

func New() *MemoryStorage {
	return &MemoryStorage{files: make(map[string][]byte)}
}

func key(namespace, filename string) string {
	return namespace + "/" + filename
}

func (s *MemoryStorage) Put(ctx context.Context, namespace, filename string, source io.Reader) (*storage.Item, error) {
	b, err := ioutil.ReadAll(source)
	if err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not read %s: %v", filename, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(storage.ErrStorageFailed, "could not put %s: %v", filename, err)
	}

	s.mu.Lock()
	s.files[key(namespace, filename)] = b
	s.mu.Unlock()

	return &storage.Item{
		Path: key(namespace, filename),
		URL:  "mem://" + key(namespace, filename),
	}, nil
}

func (s *MemoryStorage) Download(ctx context.Context, dst io.Writer, namespace, filename string) error {
	s.mu.RLock()
	b, ok := s.files[key(namespace, filename)]
	s.mu.RUnlock()

	if !ok {
		return errors.Wrapf(storage.ErrStorageFailed, "file %s not found in namespace %s", filename, namespace)
	}

	if _, err := io.Copy(dst, bytes.NewReader(b)); err != nil {
		return errors.Wrapf(storage.ErrStorageFailed, "could not copy %s: %v", filename, err)
	}

	return nil
}

func (s *MemoryStorage) Remove(_ context.Context, namespace, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[key(namespace, filename)]; !ok {
		return errors.Wrapf(storage.ErrStorageFailed, "file %s not found in namespace %s", filename, namespace)
	}

	delete(s.files, key(namespace, filename))

	return nil
}

// Has tells whether the file is stored
func (s *MemoryStorage) Has(namespace, filename string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.files[key(namespace, filename)]
	return ok
}
