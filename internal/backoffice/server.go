package backoffice

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/denismitr/imagine/internal/media"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultMaxUploadSize = 10 << 20

type Config struct {
	Port string

	// CPBaseURL is the control panel root, edit links of elements are built on it
	CPBaseURL string

	// Namespace images are uploaded to when the request names none
	Namespace     string
	MaxUploadSize int64
}

func (cfg Config) maxUploadSize() int64 {
	if cfg.MaxUploadSize <= 0 {
		return defaultMaxUploadSize
	}

	return cfg.MaxUploadSize
}

type Server struct {
	cfg     Config
	e       *echo.Echo
	images  *ImageService
	globals *GlobalSetService
	logger  *logrus.Logger
}

func NewServer(
	e *echo.Echo,
	cfg Config,
	images *ImageService,
	globals *GlobalSetService,
	logger *logrus.Logger,
) *Server {
	e.HideBanner = true
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	s := &Server{cfg: cfg, e: e, images: images, globals: globals, logger: logger}

	e.GET("/health", s.health)

	e.GET("/api/v1/images", s.getImages)
	e.POST("/api/v1/images", s.createNewImage)
	e.GET("/api/v1/images/:id", s.getImage)
	e.DELETE("/api/v1/images/:id", s.removeImage)

	e.GET("/api/v1/globals", s.getGlobalSets)
	e.POST("/api/v1/globals", s.createGlobalSet)
	e.GET("/api/v1/globals/:handle", s.getGlobalSet)
	e.PUT("/api/v1/globals/:handle", s.updateGlobalSet)
	e.DELETE("/api/v1/globals/:handle", s.removeGlobalSet)

	return s
}

// Run the server
func (s *Server) Run(stopCh <-chan os.Signal, shutDownTime time.Duration) error {
	s.logger.Println("Backoffice server : Starting")

	serverError := make(chan error, 1)
	go func() {
		if err := s.e.Start(s.cfg.Port); err != nil && err != http.ErrServerClosed {
			serverError <- errors.Wrap(err, "backoffice server error")
		}
	}()

	s.logger.Printf("Backoffice server : Listening on %s", s.cfg.Port)

	select {
	case err := <-serverError:
		return err
	case <-stopCh:
		s.logger.Println("Backoffice server : Received stop signal")

		ctx, cancel := context.WithTimeout(context.Background(), shutDownTime)
		defer cancel()

		if err := s.e.Shutdown(ctx); err != nil {
			if closeErr := s.e.Close(); closeErr != nil {
				return errors.Wrapf(err, "could not close server: %v", closeErr)
			}

			return errors.Wrap(err, "could not shut down gracefully")
		}

		return nil
	}
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) getImages(c echo.Context) error {
	page, err := intFromQueryStringOrDefault(c.QueryParam("page"), 1)
	if err != nil || page < 1 {
		return c.JSON(badRequest(errors.Errorf("page %q must be a positive integer", c.QueryParam("page"))))
	}

	perPage, err := intFromQueryStringOrDefault(c.QueryParam("perPage"), media.DefaultPerPage)
	if err != nil || perPage < 1 || perPage > 100 {
		return c.JSON(badRequest(errors.Errorf("perPage %q must be between 1 and 100", c.QueryParam("perPage"))))
	}

	filter := media.ImageFilter{
		Namespace:     c.QueryParam("namespace"),
		OnlyPublished: isTruthy(c.QueryParam("published")),
		Sort:          media.Sort{By: "createdAt", Asc: c.QueryParam("order") == "asc"},
		Pagination:    media.Pagination{Page: uint(page), PerPage: uint(perPage)},
	}

	collection, err := s.images.getImages(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(errorToResponse(err))
	}

	return c.JSON(http.StatusOK, collection)
}

func (s *Server) createNewImage(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(badRequest(errors.Wrap(ErrBadRequest, "file is required")))
	}

	if file.Size > s.cfg.maxUploadSize() {
		return c.JSON(errorToResponse(errors.Wrapf(ErrUploadTooLarge, "%d bytes exceed the limit of %d", file.Size, s.cfg.maxUploadSize())))
	}

	ext := extractExtension(file.Filename)
	if _, err := media.NormalizeExtension(ext); err != nil {
		return c.JSON(unprocessableEntity(errors.Errorf("file %q has an unsupported extension", file.Filename)))
	}

	source, err := file.Open()
	if err != nil {
		return c.JSON(internalError(err))
	}
	defer source.Close()

	namespace := c.FormValue("namespace")
	if namespace == "" {
		namespace = s.cfg.Namespace
	}

	dto := createImageDTO{
		name:         c.FormValue("name"),
		originalName: file.Filename,
		originalSize: file.Size,
		originalExt:  ext,
		publish:      isTruthy(c.FormValue("publish")),
		namespace:    namespace,
		source:       source,
	}

	img, err := s.images.createNewImage(c.Request().Context(), &dto)
	if err != nil {
		return c.JSON(errorToResponse(err))
	}

	return c.JSON(http.StatusCreated, img)
}

func (s *Server) getImage(c echo.Context) error {
	img, err := s.images.getImage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(errorToResponse(err))
	}

	return c.JSON(http.StatusOK, img)
}

func (s *Server) removeImage(c echo.Context) error {
	if err := s.images.removeImage(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(errorToResponse(err))
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getGlobalSets(c echo.Context) error {
	sets, err := s.globals.getGlobalSets(c.Request().Context())
	if err != nil {
		return c.JSON(errorToResponse(err))
	}

	resp := make([]globalSetResponse, 0, len(sets))
	for _, gs := range sets {
		resp = append(resp, newGlobalSetResponse(gs, s.cfg.CPBaseURL))
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) createGlobalSet(c echo.Context) error {
	var req globalSetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(badRequest(err))
	}

	gs, err := s.globals.createGlobalSet(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(errorToResponse(err))
	}

	return c.JSON(http.StatusCreated, newGlobalSetResponse(*gs, s.cfg.CPBaseURL))
}

func (s *Server) getGlobalSet(c echo.Context) error {
	gs, err := s.globals.getGlobalSet(c.Request().Context(), c.Param("handle"))
	if err != nil {
		return c.JSON(errorToResponse(err))
	}

	return c.JSON(http.StatusOK, newGlobalSetResponse(*gs, s.cfg.CPBaseURL))
}

func (s *Server) updateGlobalSet(c echo.Context) error {
	var req globalSetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(badRequest(err))
	}

	gs, err := s.globals.updateGlobalSet(c.Request().Context(), c.Param("handle"), &req)
	if err != nil {
		return c.JSON(errorToResponse(err))
	}

	return c.JSON(http.StatusOK, newGlobalSetResponse(*gs, s.cfg.CPBaseURL))
}

func (s *Server) removeGlobalSet(c echo.Context) error {
	if err := s.globals.removeGlobalSet(c.Request().Context(), c.Param("handle")); err != nil {
		return c.JSON(errorToResponse(err))
	}

	return c.NoContent(http.StatusNoContent)
}

func requestLogger(lg *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			lg.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Request().URL.Path,
				"status":  c.Response().Status,
				"latency": time.Since(start).String(),
			}).Infoln("request")

			return nil
		}
	}
}

func isTruthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
