package backoffice

import (
	"net/http"

	"github.com/denismitr/imagine/internal/content"
	"github.com/denismitr/imagine/internal/media/manipulator"
	"github.com/denismitr/imagine/internal/registry"
	"github.com/denismitr/imagine/internal/validation"
	"github.com/pkg/errors"
)

type errorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type globalSetResponse struct {
	content.GlobalSet
	ElementType string `json:"elementType"`
	CPEditURL   string `json:"cpEditUrl"`
}

func newGlobalSetResponse(gs content.GlobalSet, cpBaseURL string) globalSetResponse {
	return globalSetResponse{
		GlobalSet:   gs,
		ElementType: gs.ElementType(),
		CPEditURL:   gs.CPEditURL(cpBaseURL),
	}
}

func internalError(err error) (int, errorResponse) {
	return http.StatusInternalServerError, errorResponse{Message: err.Error()}
}

func badRequest(err error) (int, errorResponse) {
	return http.StatusBadRequest, errorResponse{Message: err.Error()}
}

func unprocessableEntity(err error) (int, errorResponse) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return http.StatusUnprocessableEntity, errorResponse{Message: "The given data was invalid", Details: vErr.Errors()}
	}

	return http.StatusUnprocessableEntity, errorResponse{Message: err.Error()}
}

// errorToResponse maps service errors to a status code and body
func errorToResponse(err error) (int, errorResponse) {
	var vErr *validation.Error

	switch {
	case errors.As(err, &vErr):
		return unprocessableEntity(err)
	case errors.Is(err, ErrResourceNotFound):
		return http.StatusNotFound, errorResponse{Message: err.Error()}
	case errors.Is(err, ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge, errorResponse{Message: err.Error()}
	case errors.Is(err, registry.ErrInvalidID), errors.Is(err, ErrBadRequest):
		return badRequest(err)
	case errors.Is(err, manipulator.ErrImageLoadFailure),
		errors.Is(err, manipulator.ErrInvalidDimension),
		errors.Is(err, manipulator.ErrBadTransformationRequest):
		return unprocessableEntity(err)
	default:
		return internalError(err)
	}
}
