package mgoregistry

import (
	"time"

	"github.com/denismitr/imagine/internal/content"
	"github.com/denismitr/imagine/internal/media"
	"github.com/denismitr/imagine/internal/registry"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func imagesFilter(imageFilter media.ImageFilter) bson.M {
	filter := bson.M{}
	if imageFilter.Namespace != "" {
		filter["namespace"] = imageFilter.Namespace
	}

	if imageFilter.OnlyPublished {
		filter["publishAt"] = bson.M{"$lte": time.Now()}
	}

	return filter
}

func (r *MongoRegistry) getImages(ctx mongo.SessionContext, imageFilter media.ImageFilter) ([]imageRecord, int64, error) {
	var records []imageRecord

	filter := imagesFilter(imageFilter)

	opts := options.Find()
	opts.SetSkip(int64(imageFilter.Offset()))
	opts.SetLimit(int64(imageFilter.Limit()))

	if imageFilter.Sort.By != "" {
		direction := -1
		if imageFilter.Sort.Asc {
			direction = 1
		}

		opts.SetSort(bson.D{{Key: imageFilter.Sort.By, Value: direction}})
	}

	cursor, err := r.images.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not find images by filter %v: %v", filter, err)
	}

	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not decode images: %v", err)
	}

	total, err := r.images.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not count images: %v", err)
	}

	return records, total, nil
}

func (r *MongoRegistry) getImageByID(ctx mongo.SessionContext, ID primitive.ObjectID, onlyPublished bool) (*imageRecord, error) {
	filter := bson.M{"_id": ID}
	if onlyPublished {
		filter["publishAt"] = bson.M{"$lte": time.Now()}
	}

	var record imageRecord
	if err := r.images.FindOne(ctx, filter).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(registry.ErrEntityNotFound, "image with id %s", ID.Hex())
		}

		return nil, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not get image with id %s: %v", ID.Hex(), err)
	}

	return &record, nil
}

func (r *MongoRegistry) createImage(ctx mongo.SessionContext, ir *imageRecord) error {
	result, err := r.images.InsertOne(ctx, ir)
	if err != nil || result == nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not insert image into MongoDB collection %v", err)
	}

	return nil
}

func (r *MongoRegistry) removeImage(ctx mongo.SessionContext, ID primitive.ObjectID) error {
	result, err := r.images.DeleteOne(ctx, bson.M{"_id": ID})
	if err != nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not remove image %s: %v", ID.Hex(), err)
	}

	if result.DeletedCount == 0 {
		return errors.Wrapf(registry.ErrEntityNotFound, "image with id %s", ID.Hex())
	}

	return nil
}

func (r *MongoRegistry) createSlice(ctx mongo.SessionContext, sr *sliceRecord) error {
	_, err := r.getSliceByImageIDAndFilename(ctx, sr.ImageID, sr.Filename)
	if err == nil {
		return errors.Wrapf(
			registry.ErrEntityAlreadyExists,
			"slice with image ID #[%s] and filename %s already exist",
			sr.ImageID.Hex(), sr.Filename)
	}

	if !errors.Is(err, registry.ErrEntityNotFound) {
		return err
	}

	result, err := r.slices.InsertOne(ctx, sr)
	if err != nil || result == nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not insert slice into MongoDB collection %v", err)
	}

	return nil
}

func (r *MongoRegistry) getSliceByImageIDAndFilename(
	ctx mongo.SessionContext,
	imageID primitive.ObjectID,
	filename string,
) (*sliceRecord, error) {
	var record sliceRecord
	if err := r.slices.FindOne(ctx, bson.M{
		"imageId":  imageID,
		"filename": filename,
		"status":   string(media.Active),
	}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(
				registry.ErrEntityNotFound,
				"slice with image ID #[%s] and filename %s not found",
				imageID.Hex(), filename)
		}

		return nil, errors.Wrapf(
			registry.ErrRegistryReadFailed,
			"mongodb could not get slice with image ID [%s] and filename %s: %v",
			imageID.Hex(), filename, err)
	}

	return &record, nil
}

func (r *MongoRegistry) getOriginalSliceByImageID(ctx mongo.SessionContext, imageID primitive.ObjectID) (*sliceRecord, error) {
	var record sliceRecord
	if err := r.slices.FindOne(ctx, bson.M{
		"imageId":    imageID,
		"isOriginal": true,
		"status":     string(media.Active),
	}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(registry.ErrEntityNotFound, "original slice of image %s", imageID.Hex())
		}

		return nil, errors.Wrapf(
			registry.ErrRegistryReadFailed,
			"mongodb could not get slice with image ID [%s]: %v",
			imageID.Hex(), err)
	}

	return &record, nil
}

func (r *MongoRegistry) getAllSlicesByImageID(ctx mongo.SessionContext, imageID primitive.ObjectID) ([]sliceRecord, error) {
	var records []sliceRecord

	cursor, err := r.slices.Find(ctx, bson.M{"imageId": imageID})
	if err != nil {
		return nil, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not find slices of image %s: %v", imageID.Hex(), err)
	}

	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not decode slices: %v", err)
	}

	return records, nil
}

func (r *MongoRegistry) removeAllSlicesByImageID(ctx mongo.SessionContext, imageID primitive.ObjectID) error {
	if _, err := r.slices.DeleteMany(ctx, bson.M{"imageId": imageID}); err != nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not remove slices of image %s: %v", imageID.Hex(), err)
	}

	return nil
}

func (r *MongoRegistry) createGlobalSet(ctx mongo.SessionContext, record *globalSetRecord) error {
	_, err := r.getGlobalSetByHandle(ctx, record.Handle)
	if err == nil {
		return errors.Wrapf(registry.ErrEntityAlreadyExists, "global set with handle %s already exists", record.Handle)
	}

	if !errors.Is(err, registry.ErrEntityNotFound) {
		return err
	}

	if _, err := r.globalSets.InsertOne(ctx, record); err != nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not insert global set %s: %v", record.Handle, err)
	}

	return nil
}

func (r *MongoRegistry) getGlobalSetByHandle(ctx mongo.SessionContext, handle string) (*globalSetRecord, error) {
	var record globalSetRecord
	if err := r.globalSets.FindOne(ctx, bson.M{"handle": handle}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(registry.ErrEntityNotFound, "global set with handle %s", handle)
		}

		return nil, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not get global set %s: %v", handle, err)
	}

	return &record, nil
}

func (r *MongoRegistry) getGlobalSets(ctx mongo.SessionContext) ([]globalSetRecord, error) {
	var records []globalSetRecord

	cursor, err := r.globalSets.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not find global sets: %v", err)
	}

	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not decode global sets: %v", err)
	}

	return records, nil
}

func (r *MongoRegistry) updateGlobalSet(ctx mongo.SessionContext, ID primitive.ObjectID, gs *content.GlobalSet) error {
	_, err := r.globalSets.UpdateOne(ctx, bson.M{"_id": ID}, bson.M{
		"$set": bson.M{
			"name":          gs.Name,
			"handle":        gs.Handle,
			"fieldLayoutId": gs.FieldLayoutID,
			"updatedAt":     gs.UpdatedAt,
		},
	})

	if err != nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not update global set %s: %v", ID.Hex(), err)
	}

	return nil
}

func (r *MongoRegistry) removeGlobalSetByHandle(ctx mongo.SessionContext, handle string) error {
	result, err := r.globalSets.DeleteOne(ctx, bson.M{"handle": handle})
	if err != nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not remove global set %s: %v", handle, err)
	}

	if result.DeletedCount == 0 {
		return errors.Wrapf(registry.ErrEntityNotFound, "global set with handle %s", handle)
	}

	return nil
}
