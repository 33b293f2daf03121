package initialize

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setenv(t *testing.T, key, value string) {
	t.Helper()

	old, had := os.LookupEnv(key)
	os.Setenv(key, value)

	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestOrDefault(t *testing.T) {
	setenv(t, "IMAGINE_TEST_STRING", "value")
	setenv(t, "IMAGINE_TEST_INT", "42")
	setenv(t, "IMAGINE_TEST_DURATION", "1500ms")
	setenv(t, "IMAGINE_TEST_EMPTY", "")

	assert.Equal(t, "value", StringOrDefault("IMAGINE_TEST_STRING", "def"))
	assert.Equal(t, "def", StringOrDefault("IMAGINE_TEST_EMPTY", "def"))
	assert.Equal(t, "def", StringOrDefault("IMAGINE_TEST_MISSING", "def"))

	assert.Equal(t, 42, IntOrDefault("IMAGINE_TEST_INT", 1))
	assert.Equal(t, 1, IntOrDefault("IMAGINE_TEST_MISSING", 1))
	assert.Panics(t, func() { IntOrDefault("IMAGINE_TEST_STRING", 1) })

	assert.Equal(t, 1500*time.Millisecond, DurationOrDefault("IMAGINE_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, DurationOrDefault("IMAGINE_TEST_MISSING", time.Second))
}

func TestMaxUploadSize(t *testing.T) {
	setenv(t, "MAX_UPLOAD_SIZE", "")
	assert.Equal(t, int64(10000000), MaxUploadSize())

	setenv(t, "MAX_UPLOAD_SIZE", "512kb")
	assert.Equal(t, int64(512000), MaxUploadSize())

	setenv(t, "MAX_UPLOAD_SIZE", "lots")
	assert.Panics(t, func() { MaxUploadSize() })
}

func TestDotEnv_MissingFileIsTolerated(t *testing.T) {
	assert.NotPanics(t, func() { DotEnv("does-not-exist.env") })
}

func TestManipulatorFromEnv(t *testing.T) {
	setenv(t, "IMAGE_BACKEND", "scaler")
	setenv(t, "VALID_EXTENSIONS", "png,gif")

	m := ManipulatorFromEnv()

	tr, err := m.Convert("w100", "gif")
	assert.NoError(t, err)
	assert.NotNil(t, tr)

	setenv(t, "IMAGE_BACKEND", "magick")
	assert.Panics(t, func() { ManipulatorFromEnv() })
}
