package manipulator

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCropPosition(t *testing.T) {
	valid := map[string]CropPosition{
		"":              Center,
		"center-center": Center,
		"top-left":      {Vertical: "top", Horizontal: "left"},
		"BOTTOM-RIGHT":  {Vertical: "bottom", Horizontal: "right"},
		"center-left":   {Vertical: "center", Horizontal: "left"},
	}

	for input, expected := range valid {
		t.Run(input, func(t *testing.T) {
			p, err := ParseCropPosition(input)
			require.NoError(t, err)
			assert.Equal(t, expected, p)
		})
	}

	for _, input := range []string{"top", "left-top", "top-left-right", "middle-center"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCropPosition(input)
			assert.True(t, errors.Is(err, ErrBadTransformationRequest))
		})
	}

	assert.True(t, CropPosition{}.IsCenter())
	assert.Equal(t, "top-left", CropPosition{Vertical: "top", Horizontal: "left"}.String())
}

func Test_planFit(t *testing.T) {
	tt := []struct {
		name           string
		w, h           int
		target         Size
		scaleIfSmaller bool
		expected       Dimensions
		scale          bool
	}{
		{name: "landscape into square", w: 1000, h: 500, target: Exact(200, 200), expected: Dimensions{200, 100}, scale: true},
		{name: "portrait into square", w: 500, h: 1000, target: Exact(200, 200), expected: Dimensions{100, 200}, scale: true},
		{name: "smaller image untouched", w: 100, h: 50, target: Exact(200, 200), expected: Dimensions{100, 50}},
		{name: "smaller image scaled up", w: 100, h: 50, target: Exact(200, 200), scaleIfSmaller: true, expected: Dimensions{200, 100}, scale: true},
		{name: "width only", w: 1000, h: 500, target: Width(300), expected: Dimensions{300, 150}, scale: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			d, scale, err := planFit(tc.w, tc.h, tc.target, tc.scaleIfSmaller)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
			assert.Equal(t, tc.scale, scale)
		})
	}

	_, _, err := planFit(100, 50, Width(0), false)
	assert.True(t, errors.Is(err, ErrInvalidDimension))
}

func Test_planCover(t *testing.T) {
	tt := []struct {
		name     string
		w, h     int
		target   Size
		position CropPosition
		expected Dimensions
		scale    bool
		rect     image.Rectangle
	}{
		{
			name: "landscape centered", w: 1000, h: 500, target: Exact(200, 200), position: Center,
			expected: Dimensions{400, 200}, scale: true, rect: image.Rect(100, 0, 300, 200),
		},
		{
			name: "landscape top left", w: 1000, h: 500, target: Exact(200, 200),
			position: CropPosition{Vertical: "top", Horizontal: "left"},
			expected: Dimensions{400, 200}, scale: true, rect: image.Rect(0, 0, 200, 200),
		},
		{
			name: "landscape bottom right", w: 1000, h: 500, target: Exact(200, 200),
			position: CropPosition{Vertical: "bottom", Horizontal: "right"},
			expected: Dimensions{400, 200}, scale: true, rect: image.Rect(200, 0, 400, 200),
		},
		{
			name: "larger on one side only is cropped without scaling", w: 300, h: 100, target: Exact(200, 200), position: Center,
			expected: Dimensions{300, 100}, rect: image.Rect(50, 0, 250, 100),
		},
		{
			name: "smaller image is kept", w: 100, h: 80, target: Exact(200, 200), position: Center,
			expected: Dimensions{100, 80}, rect: image.Rect(0, 0, 100, 80),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			d, scale, rect, err := planCover(tc.w, tc.h, tc.target, false, tc.position)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
			assert.Equal(t, tc.scale, scale)
			assert.Equal(t, tc.rect, rect)
		})
	}
}

func Test_checkCrop(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	r, err := checkCrop(bounds, 10, 50, 20, 60)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 20, 50, 60), r)

	for _, c := range [][4]int{{50, 10, 0, 10}, {0, 10, 10, 10}, {0, 101, 0, 10}, {-1, 10, 0, 10}} {
		_, err := checkCrop(bounds, c[0], c[1], c[2], c[3])
		assert.True(t, errors.Is(err, ErrInvalidDimension), "crop %v", c)
	}
}

func Test_autoQuality(t *testing.T) {
	assert.Equal(t, 90, autoQuality(400, 400))
	assert.Equal(t, 85, autoQuality(1000, 800))
	assert.Equal(t, 80, autoQuality(1920, 1080))
	assert.Equal(t, 75, autoQuality(3000, 3000))
}
