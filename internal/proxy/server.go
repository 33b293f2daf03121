package proxy

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultRequestTimeout = 5 * time.Second

type Config struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

func (cfg Config) requestTimeout() time.Duration {
	if cfg.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}

	return cfg.RequestTimeout
}

// waiter is implemented by proxies finishing work in the background
type waiter interface {
	Wait()
}

type Server struct {
	cfg        Config
	logger     *logrus.Logger
	httpServer *http.Server
	mux        *httpMux
	proxy      ImageProxy
}

func NewServer(cfg Config, logger *logrus.Logger, proxy ImageProxy) *Server {
	mux := newMux(cfg, proxy, logger)

	return &Server{
		cfg:    cfg,
		logger: logger,
		mux:    mux,
		proxy:  proxy,
		httpServer: &http.Server{
			Addr:              cfg.Port,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			Handler:           mux,
			ReadHeaderTimeout: 2 * time.Second,
		},
	}
}

// Run the server
func (s *Server) Run(stopCh <-chan os.Signal, shutDownTime time.Duration) error {
	s.logger.Println("Proxy server : Starting")

	serverError := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- errors.Wrap(err, "http server error")
		}
	}()

	s.logger.Printf("Proxy server : Listening on %s", s.cfg.Port)

	select {
	case err := <-serverError:
		return err
	case <-stopCh:
		s.logger.Println("Proxy server : Received stop signal")

		ctx, cancel := context.WithTimeout(context.Background(), shutDownTime)
		defer cancel()

		s.mux.stop()
		if stopErr := s.httpServer.Shutdown(ctx); stopErr != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				return errors.Wrapf(stopErr, "could not close server: %v", closeErr)
			}

			return errors.Wrap(stopErr, "could not shut down gracefully")
		}

		if w, ok := s.proxy.(waiter); ok {
			s.logger.Println("Proxy server : Waiting for slices to be saved")
			w.Wait()
		}

		return nil
	}
}
