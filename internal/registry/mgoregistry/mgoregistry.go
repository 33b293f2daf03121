package mgoregistry

import (
	"context"
	"time"

	"github.com/denismitr/imagine/internal/content"
	"github.com/denismitr/imagine/internal/media"
	"github.com/denismitr/imagine/internal/registry"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type Config struct {
	DB                   string
	ImagesCollection     string
	SlicesCollection     string
	GlobalSetsCollection string
}

type MongoRegistry struct {
	client     *mongo.Client
	db         *mongo.Database
	images     *mongo.Collection
	slices     *mongo.Collection
	globalSets *mongo.Collection
}

var _ registry.Registry = (*MongoRegistry)(nil)

func New(client *mongo.Client, cfg Config) *MongoRegistry {
	r := MongoRegistry{
		client: client,
		db:     client.Database(cfg.DB),
	}

	r.images = r.db.Collection(cfg.ImagesCollection)
	r.slices = r.db.Collection(cfg.SlicesCollection)
	r.globalSets = r.db.Collection(cfg.GlobalSetsCollection)

	return &r
}

func (r *MongoRegistry) GenerateID() media.ID {
	return media.ID(primitive.NewObjectID().Hex())
}

func (r *MongoRegistry) Migrate(ctx context.Context) error {
	_, err := r.slices.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "imageId", Value: 1}, {Key: "filename", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)

	if err != nil {
		return errors.Wrap(err, "could not create index on slices collection")
	}

	_, err = r.globalSets.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.M{"handle": 1},
			Options: options.Index().SetUnique(true),
		},
	)

	if err != nil {
		return errors.Wrap(err, "could not create index on global sets collection")
	}

	return nil
}

func (r *MongoRegistry) CreateImageWithOriginalSlice(ctx context.Context, image *media.Image, slice *media.Slice) error {
	ir, err := mapImageToMongoRecord(image)
	if err != nil {
		return err
	}

	sr, err := mapSliceToMongoRecord(slice)
	if err != nil {
		return err
	}

	txErr := r.transaction(ctx, 3*time.Second, func(sessCtx mongo.SessionContext) error {
		if err := r.createImage(sessCtx, ir); err != nil {
			return err
		}

		return r.createSlice(sessCtx, sr)
	})

	if txErr != nil {
		return errors.Wrap(txErr, "could not create image and slice in one tx")
	}

	return nil
}

func (r *MongoRegistry) GetImageByID(ctx context.Context, ID media.ID, onlyPublished bool) (*media.Image, error) {
	var img *media.Image

	imageID, err := primitive.ObjectIDFromHex(ID.String())
	if err != nil {
		return nil, registry.ErrInvalidID
	}

	txErr := r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		ir, err := r.getImageByID(sessCtx, imageID, onlyPublished)
		if err != nil {
			return err
		}

		sr, err := r.getOriginalSliceByImageID(sessCtx, ir.ID)
		if err != nil {
			return errors.Wrapf(err, "could not find original slice for image ID [%s]", ir.ID.Hex())
		}

		img = mapMongoRecordToImage(ir)
		img.OriginalSlice = mapMongoRecordToSlice(sr)

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	return img, nil
}

// GetImageWithSlicesByID - get image and all of it's slices including the original by image ID
func (r *MongoRegistry) GetImageWithSlicesByID(ctx context.Context, ID media.ID, onlyPublished bool) (*media.Image, error) {
	var img *media.Image

	imageID, err := primitive.ObjectIDFromHex(ID.String())
	if err != nil {
		return nil, registry.ErrInvalidID
	}

	txErr := r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		ir, err := r.getImageByID(sessCtx, imageID, onlyPublished)
		if err != nil {
			return err
		}

		records, err := r.getAllSlicesByImageID(sessCtx, ir.ID)
		if err != nil {
			return err
		}

		img = mapMongoRecordToImage(ir)
		img.Slices = make(media.Slices, 0, len(records))
		for i := range records {
			s := mapMongoRecordToSlice(&records[i])
			if s.IsOriginal {
				img.OriginalSlice = s
			}

			img.Slices = append(img.Slices, *s)
		}

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	return img, nil
}

// GetSliceByImageIDAndFilename finds an active slice, filename is relative to the image
func (r *MongoRegistry) GetSliceByImageIDAndFilename(
	ctx context.Context,
	imageID media.ID,
	filename string,
) (*media.Slice, error) {
	var slice *media.Slice

	ID, err := primitive.ObjectIDFromHex(imageID.String())
	if err != nil {
		return nil, errors.Wrapf(registry.ErrInvalidID, "image ID [%s]: %v", imageID.String(), err)
	}

	txErr := r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		sr, err := r.getSliceByImageIDAndFilename(sessCtx, ID, media.ComputeSliceFilename(imageID, filename))
		if err != nil {
			return err
		}

		slice = mapMongoRecordToSlice(sr)

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	return slice, nil
}

func (r *MongoRegistry) GetImages(ctx context.Context, filter media.ImageFilter) (*media.ImageCollection, error) {
	collection := new(media.ImageCollection)

	txErr := r.transaction(ctx, 3*time.Second, func(sessCtx mongo.SessionContext) error {
		records, total, err := r.getImages(sessCtx, filter)
		if err != nil {
			return err
		}

		collection.Images = make([]media.Image, 0, len(records))
		for i := range records {
			collection.Images = append(collection.Images, *mapMongoRecordToImage(&records[i]))
		}

		collection.Meta.Total = uint(total)
		collection.Meta.PerPage = filter.Limit()
		collection.Meta.Page = filter.Page

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	return collection, nil
}

func (r *MongoRegistry) CreateSlice(ctx context.Context, slice *media.Slice) error {
	if slice.ID.None() {
		slice.ID = r.GenerateID()
	}

	sr, err := mapSliceToMongoRecord(slice)
	if err != nil {
		return err
	}

	return r.transaction(ctx, 3*time.Second, func(sessCtx mongo.SessionContext) error {
		return r.createSlice(sessCtx, sr)
	})
}

func (r *MongoRegistry) RemoveImageWithAllSlices(ctx context.Context, ID media.ID) error {
	imageID, err := primitive.ObjectIDFromHex(ID.String())
	if err != nil {
		return errors.Wrapf(registry.ErrInvalidID, "image ID [%s]: %v", ID.String(), err)
	}

	return r.transaction(ctx, 3*time.Second, func(sessCtx mongo.SessionContext) error {
		if err := r.removeAllSlicesByImageID(sessCtx, imageID); err != nil {
			return errors.Wrap(err, "could not remove image with all slices")
		}

		if err := r.removeImage(sessCtx, imageID); err != nil {
			return errors.Wrap(err, "could not remove image with all slices")
		}

		return nil
	})
}

func (r *MongoRegistry) CreateGlobalSet(ctx context.Context, gs *content.GlobalSet) error {
	if gs.ID == "" {
		gs.ID = content.ID(primitive.NewObjectID().Hex())
	}

	record, err := mapGlobalSetToMongoRecord(gs)
	if err != nil {
		return err
	}

	return r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		return r.createGlobalSet(sessCtx, record)
	})
}

func (r *MongoRegistry) GetGlobalSetByHandle(ctx context.Context, handle string) (*content.GlobalSet, error) {
	var gs *content.GlobalSet

	txErr := r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		record, err := r.getGlobalSetByHandle(sessCtx, handle)
		if err != nil {
			return err
		}

		gs = mapMongoRecordToGlobalSet(record)

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	return gs, nil
}

func (r *MongoRegistry) GetGlobalSets(ctx context.Context) ([]content.GlobalSet, error) {
	var sets []content.GlobalSet

	txErr := r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		records, err := r.getGlobalSets(sessCtx)
		if err != nil {
			return err
		}

		sets = make([]content.GlobalSet, 0, len(records))
		for i := range records {
			sets = append(sets, *mapMongoRecordToGlobalSet(&records[i]))
		}

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	return sets, nil
}

// UpdateGlobalSet replaces name, handle and field layout of the set stored under handle
func (r *MongoRegistry) UpdateGlobalSet(ctx context.Context, handle string, gs *content.GlobalSet) error {
	return r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		existing, err := r.getGlobalSetByHandle(sessCtx, handle)
		if err != nil {
			return err
		}

		if gs.Handle != handle {
			if _, err := r.getGlobalSetByHandle(sessCtx, gs.Handle); err == nil {
				return errors.Wrapf(registry.ErrEntityAlreadyExists, "global set with handle %s already exists", gs.Handle)
			} else if !errors.Is(err, registry.ErrEntityNotFound) {
				return err
			}
		}

		if err := r.updateGlobalSet(sessCtx, existing.ID, gs); err != nil {
			return err
		}

		gs.ID = content.ID(existing.ID.Hex())
		gs.CreatedAt = existing.CreatedAt

		return nil
	})
}

func (r *MongoRegistry) RemoveGlobalSetByHandle(ctx context.Context, handle string) error {
	return r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		return r.removeGlobalSetByHandle(sessCtx, handle)
	})
}

func (r *MongoRegistry) transaction(ctx context.Context, commitTime time.Duration, f func(sessCtx mongo.SessionContext) error) error {
	wc := writeconcern.New(writeconcern.WMajority())
	rc := readconcern.Snapshot()

	txnOpts := options.Transaction().
		SetWriteConcern(wc).
		SetReadConcern(rc).
		SetMaxCommitTime(&commitTime)

	sess, err := r.client.StartSession()
	if err != nil {
		return errors.Wrapf(registry.ErrCouldNotOpenTx, "mongo db session failed %v", err)
	}

	defer sess.EndSession(ctx)

	_, txErr := sess.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, f(sessCtx)
	}, txnOpts)

	return txErr
}
