package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denismitr/goenv"
	"github.com/denismitr/imagine/cmd/initialize"
	"github.com/denismitr/imagine/internal/backoffice"
	"github.com/labstack/echo/v4"
)

var (
	migrate = flag.Bool("migrate", false, "Run the migrations?")
)

func main() {
	flag.Parse()

	initialize.DotEnv()

	log := initialize.Logger()

	registry, closeRegistry := initialize.Registry(log, 10*time.Second, *migrate)
	defer closeRegistry()

	storage := initialize.Storage(log)

	images := backoffice.NewImageService(registry, storage, initialize.ManipulatorFromEnv(), log)
	globals := backoffice.NewGlobalSetService(registry, log)

	server := backoffice.NewServer(echo.New(), backoffice.Config{
		Port:          goenv.MustString("BACKOFFICE_PORT"),
		CPBaseURL:     goenv.MustString("CP_BASE_URL"),
		Namespace:     initialize.StringOrDefault("DEFAULT_NAMESPACE", "images"),
		MaxUploadSize: initialize.MaxUploadSize(),
	}, images, globals, log)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGTERM, syscall.SIGINT)

	if err := server.Run(stopCh, 10*time.Second); err != nil {
		log.Fatalln(err)
	}
}
