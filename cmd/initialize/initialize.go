package initialize

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/denismitr/goenv"
	"github.com/denismitr/imagine/internal/media/manipulator"
	"github.com/denismitr/imagine/internal/registry"
	"github.com/denismitr/imagine/internal/registry/memregistry"
	"github.com/denismitr/imagine/internal/registry/mgoregistry"
	"github.com/denismitr/imagine/internal/storage"
	"github.com/denismitr/imagine/internal/storage/memstorage"
	"github.com/denismitr/imagine/internal/storage/s3storage"
	units "github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	memoryDriver = "memory"
	mongoDriver  = "mongo"
	s3Driver     = "s3"
)

// DotEnv loads the given env files (.env by default), a missing file is not an error
func DotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		panic("Error loading .env file: " + err.Error())
	}
}

func Logger() *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		TimestampFormat: time.StampMilli,
		FullTimestamp:   true,
	}

	level, err := logrus.ParseLevel(StringOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		panic(err)
	}

	log.SetLevel(level)

	return log
}

// Registry picks the registry driver named by REGISTRY_DRIVER, mongo unless told otherwise
func Registry(lg *logrus.Logger, connectionTimeout time.Duration, migrate bool) (registry.Registry, func()) {
	switch driver := StringOrDefault("REGISTRY_DRIVER", mongoDriver); driver {
	case mongoDriver:
		return MongoRegistry(connectionTimeout, migrate)
	case memoryDriver:
		lg.Warnln("using in memory registry, nothing will survive a restart")
		return memregistry.New(), func() {}
	default:
		panic("unknown registry driver " + driver)
	}
}

// Storage picks the storage driver named by STORAGE_DRIVER, s3 unless told otherwise
func Storage(lg *logrus.Logger) storage.Storage {
	switch driver := StringOrDefault("STORAGE_DRIVER", s3Driver); driver {
	case s3Driver:
		return S3StorageFromEnv()
	case memoryDriver:
		lg.Warnln("using in memory storage, nothing will survive a restart")
		return memstorage.New()
	default:
		panic("unknown storage driver " + driver)
	}
}

func S3StorageFromEnv() *s3storage.RemoteStorage {
	cfg := s3storage.Config{
		AccessKey:        goenv.MustString("S3_ACCESS_KEY_ID"),
		AccessSecret:     goenv.MustString("S3_SECRET_ACCESS_KEY"),
		AccessToken:      "",
		Region:           goenv.MustString("S3_REGION"),
		Endpoint:         goenv.MustString("S3_ENDPOINT"),
		S3ForcePathStyle: goenv.IsTruthy("S3_FORCE_PATH_STYLE"),
		EnableSSL:        goenv.IsTruthy("S3_SSL"),
	}

	s, err := s3storage.New(cfg)
	if err != nil {
		panic(err)
	}

	return s
}

func MongoRegistry(connectionTimeout time.Duration, migrate bool) (*mgoregistry.MongoRegistry, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(goenv.MustString("MONGODB_URL")))
	if err != nil {
		panic(err)
	}

	r := mgoregistry.New(client, mgoregistry.Config{
		DB:                   goenv.MustString("MONGODB_DATABASE"),
		ImagesCollection:     "images",
		SlicesCollection:     "slices",
		GlobalSetsCollection: "globalsets",
	})

	if migrate {
		if err := r.Migrate(ctx); err != nil {
			panic(err)
		}
	}

	return r, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			panic(err)
		}
	}
}

// ManipulatorFromEnv builds the manipulator, presets come from the yaml file named by PRESETS_FILE
func ManipulatorFromEnv() *manipulator.Manipulator {
	cfg := &manipulator.Config{
		AllowUpscale:        goenv.IsTruthy("ALLOW_UPSCALE"),
		SizeDiscreteStep:    IntOrDefault("SIZE_DISCRETE_STEP", 0),
		QualityDiscreteStep: IntOrDefault("QUALITY_DISCRETE_STEP", 0),
		Backend:             manipulator.Backend(StringOrDefault("IMAGE_BACKEND", string(manipulator.RasterBackend))),
	}

	if exts := StringOrDefault("VALID_EXTENSIONS", ""); exts != "" {
		cfg.ValidExtensions = strings.Split(exts, ",")
	}

	if path := StringOrDefault("PRESETS_FILE", ""); path != "" {
		f, err := os.Open(path)
		if err != nil {
			panic(err)
		}
		defer f.Close()

		presets, err := manipulator.LoadPresets(f)
		if err != nil {
			panic(err)
		}

		cfg.Presets = presets
	}

	if _, err := manipulator.NewImage(cfg.Backend); err != nil {
		panic(err)
	}

	m := manipulator.New(cfg)
	if err := m.CheckPresets(); err != nil {
		panic(err)
	}

	return m
}

// MaxUploadSize reads a human readable size like "10MB" from MAX_UPLOAD_SIZE
func MaxUploadSize() int64 {
	size, err := units.FromHumanSize(StringOrDefault("MAX_UPLOAD_SIZE", "10MB"))
	if err != nil {
		panic(err)
	}

	return size
}

func StringOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return def
}

func IntOrDefault(key string, def int) int {
	v := StringOrDefault(key, "")
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		panic(key + " must be an integer: " + err.Error())
	}

	return n
}

func DurationOrDefault(key string, def time.Duration) time.Duration {
	v := StringOrDefault(key, "")
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		panic(key + " must be a duration: " + err.Error())
	}

	return d
}
