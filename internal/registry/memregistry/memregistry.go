package memregistry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/denismitr/imagine/internal/content"
	"github.com/denismitr/imagine/internal/media"
	"github.com/denismitr/imagine/internal/registry"
	"github.com/pkg/errors"
)

// MemoryRegistry keeps everything in process memory, for local runs and tests
type MemoryRegistry struct {
	mu         sync.RWMutex
	seq        uint64
	images     map[media.ID]media.Image
	slices     map[media.ID][]media.Slice
	globalSets map[string]content.GlobalSet
	now        func() time.Time
}

var _ registry.Registry = (*MemoryRegistry)(nil)

func New() *MemoryRegistry {
	return &MemoryRegistry{
		images:     make(map[media.ID]media.Image),
		slices:     make(map[media.ID][]media.Slice),
		globalSets: make(map[string]content.GlobalSet),
		now:        time.Now,
	}
}

// GenerateID returns 24 hex characters like a mongo object id
func (r *MemoryRegistry) GenerateID() media.ID {
	return media.ID(fmt.Sprintf("%024x", atomic.AddUint64(&r.seq, 1)))
}

func (r *MemoryRegistry) CreateImageWithOriginalSlice(_ context.Context, image *media.Image, slice *media.Slice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if image.ID.None() || slice.ID.None() {
		return errors.Wrap(registry.ErrInvalidID, "image and slice need IDs")
	}

	if _, ok := r.images[image.ID]; ok {
		return errors.Wrapf(registry.ErrEntityAlreadyExists, "image %s", image.ID)
	}

	img := *image
	img.OriginalSlice = nil
	img.Slices = nil

	r.images[image.ID] = img
	r.slices[image.ID] = append(r.slices[image.ID], *slice)

	return nil
}

func (r *MemoryRegistry) GetImageByID(_ context.Context, ID media.ID, onlyPublished bool) (*media.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, err := r.image(ID, onlyPublished)
	if err != nil {
		return nil, err
	}

	original := r.original(ID)
	if original == nil {
		return nil, errors.Wrapf(registry.ErrEntityNotFound, "original slice of image %s", ID)
	}

	img.OriginalSlice = original

	return img, nil
}

func (r *MemoryRegistry) GetImageWithSlicesByID(_ context.Context, ID media.ID, onlyPublished bool) (*media.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, err := r.image(ID, onlyPublished)
	if err != nil {
		return nil, err
	}

	img.OriginalSlice = r.original(ID)
	img.Slices = append(make(media.Slices, 0, len(r.slices[ID])), r.slices[ID]...)

	return img, nil
}

func (r *MemoryRegistry) GetSliceByImageIDAndFilename(_ context.Context, imageID media.ID, filename string) (*media.Slice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	full := media.ComputeSliceFilename(imageID, filename)
	for _, s := range r.slices[imageID] {
		if s.Filename == full && s.IsActive() {
			found := s
			return &found, nil
		}
	}

	return nil, errors.Wrapf(registry.ErrEntityNotFound, "slice %s", full)
}

func (r *MemoryRegistry) GetImages(_ context.Context, filter media.ImageFilter) (*media.ImageCollection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matching []media.Image
	for _, img := range r.images {
		if filter.Namespace != "" && img.Namespace != filter.Namespace {
			continue
		}

		if filter.OnlyPublished && !r.published(img) {
			continue
		}

		matching = append(matching, img)
	}

	sort.Slice(matching, func(i, j int) bool {
		if filter.Sort.Asc {
			return matching[i].CreatedAt.Before(matching[j].CreatedAt)
		}

		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	collection := &media.ImageCollection{
		Images: make([]media.Image, 0),
		Meta: media.Meta{
			Total:   uint(len(matching)),
			Page:    filter.Page,
			PerPage: filter.Limit(),
		},
	}

	offset := filter.Offset()
	for i := offset; i < uint(len(matching)) && i < offset+filter.Limit(); i++ {
		collection.Images = append(collection.Images, matching[i])
	}

	return collection, nil
}

func (r *MemoryRegistry) CreateSlice(_ context.Context, slice *media.Slice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[slice.ImageID]; !ok {
		return errors.Wrapf(registry.ErrEntityNotFound, "image %s", slice.ImageID)
	}

	for _, s := range r.slices[slice.ImageID] {
		if s.Filename == slice.Filename {
			return errors.Wrapf(registry.ErrEntityAlreadyExists, "slice %s", slice.Filename)
		}
	}

	if slice.ID.None() {
		slice.ID = media.ID(fmt.Sprintf("%024x", atomic.AddUint64(&r.seq, 1)))
	}

	r.slices[slice.ImageID] = append(r.slices[slice.ImageID], *slice)

	return nil
}

func (r *MemoryRegistry) RemoveImageWithAllSlices(_ context.Context, ID media.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[ID]; !ok {
		return errors.Wrapf(registry.ErrEntityNotFound, "image %s", ID)
	}

	delete(r.images, ID)
	delete(r.slices, ID)

	return nil
}

func (r *MemoryRegistry) CreateGlobalSet(_ context.Context, gs *content.GlobalSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.globalSets[gs.Handle]; ok {
		return errors.Wrapf(registry.ErrEntityAlreadyExists, "global set with handle %s", gs.Handle)
	}

	if gs.ID == "" {
		gs.ID = content.ID(fmt.Sprintf("%024x", atomic.AddUint64(&r.seq, 1)))
	}

	r.globalSets[gs.Handle] = *gs

	return nil
}

func (r *MemoryRegistry) GetGlobalSetByHandle(_ context.Context, handle string) (*content.GlobalSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gs, ok := r.globalSets[handle]
	if !ok {
		return nil, errors.Wrapf(registry.ErrEntityNotFound, "global set with handle %s", handle)
	}

	return &gs, nil
}

func (r *MemoryRegistry) GetGlobalSets(_ context.Context) ([]content.GlobalSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sets := make([]content.GlobalSet, 0, len(r.globalSets))
	for _, gs := range r.globalSets {
		sets = append(sets, gs)
	}

	sort.Slice(sets, func(i, j int) bool {
		return strings.ToLower(sets[i].Name) < strings.ToLower(sets[j].Name)
	})

	return sets, nil
}

func (r *MemoryRegistry) UpdateGlobalSet(_ context.Context, handle string, gs *content.GlobalSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.globalSets[handle]
	if !ok {
		return errors.Wrapf(registry.ErrEntityNotFound, "global set with handle %s", handle)
	}

	if gs.Handle != handle {
		if _, taken := r.globalSets[gs.Handle]; taken {
			return errors.Wrapf(registry.ErrEntityAlreadyExists, "global set with handle %s", gs.Handle)
		}
	}

	gs.ID = existing.ID
	gs.CreatedAt = existing.CreatedAt

	delete(r.globalSets, handle)
	r.globalSets[gs.Handle] = *gs

	return nil
}

func (r *MemoryRegistry) RemoveGlobalSetByHandle(_ context.Context, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.globalSets[handle]; !ok {
		return errors.Wrapf(registry.ErrEntityNotFound, "global set with handle %s", handle)
	}

	delete(r.globalSets, handle)

	return nil
}

func (r *MemoryRegistry) image(ID media.ID, onlyPublished bool) (*media.Image, error) {
	img, ok := r.images[ID]
	if !ok || (onlyPublished && !r.published(img)) {
		return nil, errors.Wrapf(registry.ErrEntityNotFound, "image %s", ID)
	}

	return &img, nil
}

func (r *MemoryRegistry) original(ID media.ID) *media.Slice {
	for _, s := range r.slices[ID] {
		if s.IsOriginal && s.IsActive() {
			found := s
			return &found
		}
	}

	return nil
}

func (r *MemoryRegistry) published(img media.Image) bool {
	return img.PublishAt != nil && !img.PublishAt.After(r.now())
}
