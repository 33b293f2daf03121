package manipulator

import "github.com/pkg/errors"

var (
	ErrInvalidDimension         = errors.New("manipulator invalid dimension")
	ErrImageNotLoaded           = errors.Wrap(ErrInvalidDimension, "image is not loaded")
	ErrImageLoadFailure         = errors.New("manipulator could not load image")
	ErrBadTransformationRequest = errors.New("manipulator bad transformation request")
	ErrTransformationFailed     = errors.New("manipulator transformation failed")
	ErrUnknownBackend           = errors.New("manipulator unknown image backend")
)
