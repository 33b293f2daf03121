package mgoregistry

import (
	"time"

	"github.com/denismitr/imagine/internal/content"
	"github.com/denismitr/imagine/internal/media"
	"github.com/denismitr/imagine/internal/registry"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type imageRecord struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	OriginalName string             `bson:"originalName"`
	OriginalSize int                `bson:"originalSize"`
	OriginalExt  string             `bson:"originalExt"`
	PublishAt    *time.Time         `bson:"publishAt"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	Namespace    string             `bson:"namespace"`
}

type sliceRecord struct {
	ID         primitive.ObjectID `bson:"_id"`
	ImageID    primitive.ObjectID `bson:"imageId"`
	Filename   string             `bson:"filename"`
	Namespace  string             `bson:"namespace"`
	Extension  string             `bson:"extension"`
	Cropped    bool               `bson:"cropped"`
	Path       string             `bson:"path"`
	Width      int                `bson:"width"`
	Height     int                `bson:"height"`
	Size       int                `bson:"size"`
	Quality    int                `bson:"quality"`
	Mime       string             `bson:"mime"`
	CreatedAt  time.Time          `bson:"createdAt"`
	IsValid    bool               `bson:"isValid"`
	IsOriginal bool               `bson:"isOriginal"`
	Status     string             `bson:"status"`
}

type globalSetRecord struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Handle        string             `bson:"handle"`
	FieldLayoutID int                `bson:"fieldLayoutId"`
	ElementType   string             `bson:"elementType"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func objectID(kind, ID string) (primitive.ObjectID, error) {
	if ID == "" {
		return primitive.NilObjectID, errors.Wrapf(registry.ErrInvalidID, "%s ID is empty", kind)
	}

	oid, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(registry.ErrInvalidID, "%s ID [%s]", kind, ID)
	}

	return oid, nil
}

func mapSliceToMongoRecord(slice *media.Slice) (*sliceRecord, error) {
	sliceID, err := objectID("slice", slice.ID.String())
	if err != nil {
		return nil, err
	}

	imgID, err := objectID("slice image", slice.ImageID.String())
	if err != nil {
		return nil, err
	}

	return &sliceRecord{
		ID:         sliceID,
		ImageID:    imgID,
		Filename:   slice.Filename,
		Namespace:  slice.Namespace,
		Cropped:    slice.Cropped,
		Path:       slice.Path,
		Width:      slice.Width,
		Height:     slice.Height,
		Quality:    slice.Quality,
		Mime:       slice.Mime,
		Extension:  slice.Extension.String(),
		CreatedAt:  slice.CreatedAt,
		Size:       slice.Size,
		IsOriginal: slice.IsOriginal,
		IsValid:    slice.IsValid,
		Status:     string(slice.Status),
	}, nil
}

func mapMongoRecordToSlice(sr *sliceRecord) *media.Slice {
	return &media.Slice{
		ID:         media.ID(sr.ID.Hex()),
		ImageID:    media.ID(sr.ImageID.Hex()),
		Filename:   sr.Filename,
		Extension:  media.Extension(sr.Extension),
		Namespace:  sr.Namespace,
		Cropped:    sr.Cropped,
		Width:      sr.Width,
		Height:     sr.Height,
		Quality:    sr.Quality,
		Mime:       sr.Mime,
		Path:       sr.Path,
		CreatedAt:  sr.CreatedAt,
		IsValid:    sr.IsValid,
		IsOriginal: sr.IsOriginal,
		Size:       sr.Size,
		Status:     media.Status(sr.Status),
	}
}

func mapMongoRecordToImage(ir *imageRecord) *media.Image {
	return &media.Image{
		ID:           media.ID(ir.ID.Hex()),
		Name:         ir.Name,
		OriginalName: ir.OriginalName,
		OriginalExt:  ir.OriginalExt,
		OriginalSize: ir.OriginalSize,
		Namespace:    ir.Namespace,
		CreatedAt:    ir.CreatedAt,
		UpdatedAt:    ir.UpdatedAt,
		PublishAt:    ir.PublishAt,
	}
}

func mapImageToMongoRecord(img *media.Image) (*imageRecord, error) {
	imgID, err := objectID("image", img.ID.String())
	if err != nil {
		return nil, err
	}

	return &imageRecord{
		ID:           imgID,
		Name:         img.Name,
		OriginalName: img.OriginalName,
		OriginalSize: img.OriginalSize,
		OriginalExt:  img.OriginalExt,
		Namespace:    img.Namespace,
		CreatedAt:    img.CreatedAt,
		UpdatedAt:    img.UpdatedAt,
		PublishAt:    img.PublishAt,
	}, nil
}

func mapGlobalSetToMongoRecord(gs *content.GlobalSet) (*globalSetRecord, error) {
	ID, err := objectID("global set", gs.ID.String())
	if err != nil {
		return nil, err
	}

	return &globalSetRecord{
		ID:            ID,
		Name:          gs.Name,
		Handle:        gs.Handle,
		FieldLayoutID: gs.FieldLayoutID,
		ElementType:   gs.ElementType(),
		CreatedAt:     gs.CreatedAt,
		UpdatedAt:     gs.UpdatedAt,
	}, nil
}

func mapMongoRecordToGlobalSet(record *globalSetRecord) *content.GlobalSet {
	return &content.GlobalSet{
		ID:            content.ID(record.ID.Hex()),
		Name:          record.Name,
		Handle:        record.Handle,
		FieldLayoutID: record.FieldLayoutID,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}
