package backoffice

import (
	"fmt"
	"testing"
	"time"

	"github.com/denismitr/imagine/internal/media"
	"github.com/stretchr/testify/assert"
)

func Test_makeNewImage(t *testing.T) {
	id := media.ID("6028336099d807ec425eeed2")
	now := time.Now()

	t.Run("it can create image without immediate publication", func(t *testing.T) {
		createImage := createImageDTO{
			name:         "foo",
			originalName: "foo_original.png",
			originalExt:  "png",
			originalSize: 5600,
			namespace:    "bucketFoo",
		}

		img := makeNewImage(id, &createImage, now)

		assert.Equal(t, id, img.ID)
		assert.Equal(t, createImage.namespace, img.Namespace)
		assert.Equal(t, "foo.png", img.Name)
		assert.Equal(t, createImage.originalName, img.OriginalName)
		assert.Equal(t, createImage.originalExt, img.OriginalExt)
		assert.Equal(t, int(createImage.originalSize), img.OriginalSize)
		assert.Equal(t, now, img.CreatedAt)
		assert.Equal(t, now, img.UpdatedAt)

		assert.Nil(t, img.PublishAt)
	})

	t.Run("it can create image with immediate publication", func(t *testing.T) {
		createImage := createImageDTO{
			name:         "foo",
			originalName: "foo_original.png",
			originalExt:  "png",
			originalSize: 5600,
			publish:      true,
			namespace:    "bucketFoo",
		}

		img := makeNewImage(id, &createImage, now)

		assert.Equal(t, createImage.namespace, img.Namespace)
		assert.Equal(t, now, img.CreatedAt)
		assert.Equal(t, &now, img.PublishAt)
	})
}

func Test_createURLFriendlyName(t *testing.T) {
	tt := []struct {
		name         string
		originalExt  string
		originalName string
		expected     string
	}{
		{name: "", originalExt: "jpg", originalName: "foo bar baz.jpg", expected: "foo-bar-baz.jpg"},
		{name: "", originalExt: "png", originalName: "Screenshot 2020-12-17 at 14.07.18.png", expected: "screenshot-2020-12-17-at-14-07-18.png"},
		{name: "foo_bar", originalExt: "png", originalName: "foo bar baz.jpg", expected: "foo_bar.png"},
		{name: "Site Logo", originalExt: "gif", originalName: "logo.gif", expected: "site-logo.gif"},
	}

	for i, tc := range tt {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			result := createURLFriendlyName(&createImageDTO{
				name:         tc.name,
				originalExt:  tc.originalExt,
				originalName: tc.originalName,
			})

			assert.Equal(t, tc.expected, result)
		})
	}
}

func Test_extractExtension(t *testing.T) {
	assert.Equal(t, "png", extractExtension("foo.bar.PNG"))
	assert.Equal(t, "jpg", extractExtension(" photo.jpg "))
	assert.Equal(t, "", extractExtension("README"))
}
