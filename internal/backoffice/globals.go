package backoffice

import (
	"context"
	"strings"
	"time"

	"github.com/denismitr/imagine/internal/content"
	"github.com/denismitr/imagine/internal/registry"
	"github.com/denismitr/imagine/internal/validation"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GlobalSetService manages global sets of the control panel
type GlobalSetService struct {
	registry registry.GlobalSets
	logger   *logrus.Logger
	now      func() time.Time
}

func NewGlobalSetService(r registry.GlobalSets, l *logrus.Logger) *GlobalSetService {
	return &GlobalSetService{registry: r, logger: l, now: time.Now}
}

func (gss *GlobalSetService) createGlobalSet(ctx context.Context, req *globalSetRequest) (*content.GlobalSet, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := gss.now()
	gs := content.GlobalSet{
		Name:          strings.TrimSpace(req.Name),
		Handle:        strings.TrimSpace(req.Handle),
		FieldLayoutID: req.FieldLayoutID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if gs.Handle == "" {
		gs.Handle = content.MakeHandle(gs.Name)
	}

	if err := gs.Validate().OrNil(); err != nil {
		return nil, err
	}

	if err := gss.registry.CreateGlobalSet(ctx, &gs); err != nil {
		return nil, globalSetError(err, gs.Handle)
	}

	gss.logger.WithFields(logrus.Fields{"globalSet": gs.ID, "handle": gs.Handle}).Infoln("global set created")

	return &gs, nil
}

func (gss *GlobalSetService) updateGlobalSet(ctx context.Context, handle string, req *globalSetRequest) (*content.GlobalSet, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	existing, err := gss.registry.GetGlobalSetByHandle(ctx, handle)
	if err != nil {
		return nil, globalSetError(err, handle)
	}

	gs := *existing
	gs.Name = strings.TrimSpace(req.Name)
	gs.FieldLayoutID = req.FieldLayoutID
	gs.UpdatedAt = gss.now()

	if h := strings.TrimSpace(req.Handle); h != "" {
		gs.Handle = h
	}

	if err := gs.Validate().OrNil(); err != nil {
		return nil, err
	}

	if err := gss.registry.UpdateGlobalSet(ctx, handle, &gs); err != nil {
		return nil, globalSetError(err, gs.Handle)
	}

	return &gs, nil
}

func (gss *GlobalSetService) getGlobalSet(ctx context.Context, handle string) (*content.GlobalSet, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	gs, err := gss.registry.GetGlobalSetByHandle(ctx, handle)
	if err != nil {
		return nil, globalSetError(err, handle)
	}

	return gs, nil
}

func (gss *GlobalSetService) getGlobalSets(ctx context.Context) ([]content.GlobalSet, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return gss.registry.GetGlobalSets(ctx)
}

func (gss *GlobalSetService) removeGlobalSet(ctx context.Context, handle string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := gss.registry.RemoveGlobalSetByHandle(ctx, handle); err != nil {
		return globalSetError(err, handle)
	}

	gss.logger.WithField("handle", handle).Infoln("global set removed")

	return nil
}

func globalSetError(err error, handle string) error {
	switch {
	case errors.Is(err, registry.ErrEntityNotFound):
		return errors.Wrapf(ErrResourceNotFound, "global set %s", handle)
	case errors.Is(err, registry.ErrEntityAlreadyExists):
		vErr := validation.New()
		vErr.Add("handle", "handle \""+handle+"\" has already been taken")
		return vErr
	default:
		return err
	}
}
