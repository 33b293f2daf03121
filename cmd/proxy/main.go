package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denismitr/imagine/cmd/initialize"
	"github.com/denismitr/imagine/internal/proxy"
)

func main() {
	initialize.DotEnv()

	log := initialize.Logger()

	registry, closeRegistry := initialize.Registry(log, 30*time.Second, false)
	defer closeRegistry()

	storage := initialize.Storage(log)
	m := initialize.ManipulatorFromEnv()

	imageProxy := proxy.NewOnTheFlyPersistingImageProxy(log, registry, storage, m)
	server := proxy.NewServer(proxy.Config{
		Port:           initialize.StringOrDefault("PROXY_PORT", ":3333"),
		ReadTimeout:    initialize.DurationOrDefault("PROXY_READ_TIMEOUT", 5*time.Second),
		WriteTimeout:   initialize.DurationOrDefault("PROXY_WRITE_TIMEOUT", 10*time.Second),
		RequestTimeout: initialize.DurationOrDefault("PROXY_REQUEST_TIMEOUT", 5*time.Second),
	}, log, imageProxy)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGTERM, syscall.SIGINT)

	if err := server.Run(stopCh, 10*time.Second); err != nil {
		log.Fatalln(err)
	}
}
