package proxy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/denismitr/imagine/internal/media/manipulator"
	"github.com/denismitr/imagine/internal/validation"
	"github.com/pkg/errors"
)

type handler func(*requestContext) error
type errorHandler func(*requestContext)

func makeErrorHandler(err error) errorHandler {
	return func(rCtx *requestContext) {
		httpErr := toHTTPError(err)

		if httpErr.statusCode >= http.StatusInternalServerError {
			rCtx.logger.Errorln(httpErr.ErrorWithDetails())
		} else {
			rCtx.logger.Debugln(httpErr.ErrorWithDetails())
		}

		rCtx.fail(httpErr)
	}
}

func toHTTPError(err error) *httpError {
	var vErr *validation.Error
	var hErr *httpError

	switch {
	case errors.As(err, &hErr):
		return hErr
	case errors.As(err, &vErr):
		return &httpError{
			statusCode: http.StatusUnprocessableEntity,
			message:    "The given data was invalid",
			details:    vErr.Errors(),
		}
	case errors.Is(err, ErrResourceNotFound):
		return &httpError{statusCode: http.StatusNotFound, message: err.Error()}
	case errors.Is(err, ErrBadInput),
		errors.Is(err, manipulator.ErrInvalidDimension),
		errors.Is(err, manipulator.ErrBadTransformationRequest):
		return &httpError{statusCode: http.StatusBadRequest, message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return &httpError{statusCode: http.StatusGatewayTimeout, message: err.Error()}
	default:
		return &httpError{statusCode: http.StatusInternalServerError, message: err.Error()}
	}
}

func healthHandler(rCtx *requestContext) error {
	rCtx.resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := rCtx.resp.Write([]byte("ok"))
	return err
}

func makeProxyHandler(cfg Config, imageProxy ImageProxy) handler {
	return func(rCtx *requestContext) error {
		id := rCtx.params[0]
		resizeActions := rCtx.params[1]
		extension := rCtx.params[2]

		ctx, cancel := context.WithTimeout(rCtx.req.Context(), cfg.requestTimeout())
		defer cancel()

		req, err := imageProxy.Prepare(ctx, id, resizeActions, extension)
		if err != nil {
			return err
		}

		rCtx.prepareDownloadHeaders(resizeActions, extension, req.Transformation)

		slice, err := imageProxy.Proxy(ctx, rCtx.resp, req)
		if err != nil {
			return err
		}

		rCtx.logger.WithField("slice", slice.Filename).Debugln("served")

		return nil
	}
}

func (c *requestContext) prepareDownloadHeaders(
	resizeActions string,
	extension string,
	transformation *manipulator.Transformation,
) {
	// Enable CORS for 3rd party applications
	c.resp.Header().Set("Access-Control-Allow-Origin", "*")

	// Add a Content-Security-Policy to prevent stored-XSS attacks via SVG files
	c.resp.Header().Set("Content-Security-Policy", "script-src 'none'")

	// Disable Content-Type sniffing
	c.resp.Header().Set("X-Content-Type-Options", "nosniff")

	// slices never change once stored
	c.resp.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	c.resp.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.%s", resizeActions, extension))
	c.resp.Header().Set("Content-Type", transformation.GetMime())
}
