package proxy

import (
	"context"
	"net/http"
	"testing"

	"github.com/denismitr/imagine/internal/media/manipulator"
	"github.com/denismitr/imagine/internal/validation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_toHTTPError(t *testing.T) {
	vErr := validation.New()
	vErr.Add("width", "must be positive")

	tt := []struct {
		name   string
		err    error
		status int
	}{
		{name: "http error", err: &httpError{statusCode: http.StatusTeapot, message: "teapot"}, status: http.StatusTeapot},
		{name: "validation", err: vErr, status: http.StatusUnprocessableEntity},
		{name: "not found", err: errors.Wrap(ErrResourceNotFound, "image"), status: http.StatusNotFound},
		{name: "bad input", err: errors.Wrap(ErrBadInput, "id"), status: http.StatusBadRequest},
		{name: "invalid dimension", err: errors.Wrap(manipulator.ErrInvalidDimension, "w1"), status: http.StatusBadRequest},
		{name: "bad transformation", err: manipulator.ErrBadTransformationRequest, status: http.StatusBadRequest},
		{name: "deadline", err: errors.Wrap(context.DeadlineExceeded, "download"), status: http.StatusGatewayTimeout},
		{name: "anything else", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, toHTTPError(tc.err).statusCode)
		})
	}
}

func Test_httpErrorString(t *testing.T) {
	e := httpError{
		statusCode: http.StatusUnprocessableEntity,
		message:    "The given data was invalid",
		details:    map[string]string{"width": "too big", "extension": "unsupported"},
	}

	assert.Equal(t, "The given data was invalid\nextension: unsupported\nwidth: too big", e.String())
	assert.Equal(t, "[422] The given data was invalid", e.Error())
	assert.Equal(t, "plain", httpError{message: "plain"}.String())
}
