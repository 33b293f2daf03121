package manipulator

import (
	"fmt"
	"testing"

	"github.com/denismitr/imagine/internal/media"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_calculateNearestPixels(t *testing.T) {
	tt := []struct {
		original int
		desired  int
		upscale  bool
		step     int
		expected int
	}{
		{original: 530, desired: 523, step: 20, expected: 520},
		{original: 530, desired: 1, step: 20, expected: 20},
		{original: 530, desired: 123, step: 25, expected: 125},
		{original: 530, desired: 11, step: 20, expected: 20},
		{original: 90, desired: 27, step: 15, expected: 30},
		{original: 90, desired: 53, step: 26, expected: 52},
		{original: 530, desired: 10, step: 20, expected: 20},
		{original: 530, desired: 0, step: 20, expected: 0},
		{original: 530, desired: 700, step: 20, expected: 530},
		{original: 530, desired: 527, step: 20, expected: 530},
		{original: 530, desired: 700, upscale: true, step: 20, expected: 700},
		{original: 530, desired: 377, step: 0, expected: 377},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("%d of %d step %d upscale %v", tc.desired, tc.original, tc.step, tc.upscale), func(t *testing.T) {
			result := calculateNearestPixels(tc.step, tc.original, tc.desired, tc.upscale)

			assert.Equal(t, tc.expected, result)
		})
	}
}

func Test_calculateNearestPercent(t *testing.T) {
	tt := []struct {
		original int
		desired  int
		upscale  bool
		step     int
		expected int
	}{
		{original: 100, desired: 90, step: 10, expected: 90},
		{original: 100, desired: 1, step: 20, expected: 20},
		{original: 100, desired: 99, step: 15, expected: 100},
		{original: 75, desired: 99, step: 15, expected: 75},
		{original: 75, desired: 44, step: 20, expected: 40},
		{original: 100, desired: 44, step: 18, expected: 36},
		{original: 100, desired: 52, step: 18, expected: 54},
		{original: 100, desired: 109, upscale: true, step: 15, expected: 105},
		{original: 100, desired: 113, upscale: true, step: 15, expected: 120},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("%d of %d step %d upscale %v", tc.desired, tc.original, tc.step, tc.upscale), func(t *testing.T) {
			result := calculatePercent(tc.step, tc.original, tc.desired, tc.upscale)

			assert.Equal(t, tc.expected, result)
		})
	}
}

func originalOf(width, height int, ext string) *media.Image {
	return &media.Image{
		ID:            "6028336099d807ec425eeed2",
		OriginalExt:   ext,
		OriginalSlice: &media.Slice{Width: width, Height: height},
	}
}

func TestCreateTransformation_DefaultCfg(t *testing.T) {
	tt := []struct {
		requestedTransformations string
		extension                string
		img                      *media.Image
		expected                 *Transformation
		filename                 string
	}{
		{
			requestedTransformations: "h200",
			extension:                "jpg",
			img:                      originalOf(500, 400, "jpg"),
			expected: &Transformation{
				Size:      Height(200),
				Mode:      ModeResize,
				Position:  Center,
				Extension: media.JPEG,
				Mime:      "image/jpeg",
				Target:    Dimensions{Width: 250, Height: 200},
			},
			filename: "h200.jpg",
		},
		{
			requestedTransformations: "h200_w400",
			extension:                "png",
			img:                      originalOf(500, 300, "jpg"),
			expected: &Transformation{
				Size:      Exact(400, 200),
				Mode:      ModeResize,
				Position:  Center,
				Extension: media.PNG,
				Mime:      "image/png",
				Target:    Dimensions{Width: 400, Height: 200},
			},
			filename: "h200_w400.png",
		},
		{
			requestedTransformations: "h200_w400_q80",
			extension:                "png",
			img:                      originalOf(500, 900, "png"),
			expected: &Transformation{
				Size:      Exact(400, 200),
				Mode:      ModeResize,
				Position:  Center,
				Quality:   80,
				Extension: media.PNG,
				Mime:      "image/png",
				Target:    Dimensions{Width: 400, Height: 200},
			},
			filename: "h200_q80_w400.png",
		},
		{
			requestedTransformations: "300xAUTO_crop_p-top-left",
			extension:                "jpg",
			img:                      originalOf(600, 400, "jpg"),
			expected: &Transformation{
				Size:      Width(300),
				Mode:      ModeCrop,
				Position:  CropPosition{Vertical: "top", Horizontal: "left"},
				Extension: media.JPEG,
				Mime:      "image/jpeg",
				Target:    Dimensions{Width: 300, Height: 200},
			},
			filename: "crop_p-top-left_w300.jpg",
		},
		{
			requestedTransformations: "w2000_fit_r90",
			extension:                "jpg",
			img:                      originalOf(1000, 800, "jpg"),
			expected: &Transformation{
				Size:      Width(1000),
				Mode:      ModeFit,
				Position:  Center,
				Rotation:  Rotate90,
				Extension: media.JPEG,
				Mime:      "image/jpeg",
				Target:    Dimensions{Width: 1000, Height: 800},
			},
			filename: "fit_r90_w1000.jpg",
		},
		{
			requestedTransformations: "original",
			extension:                "png",
			img:                      originalOf(640, 480, "png"),
			expected: &Transformation{
				Size:      Auto(),
				Mode:      ModeResize,
				Position:  Center,
				Extension: media.PNG,
				Mime:      "image/png",
				Target:    Dimensions{Width: 640, Height: 480},
			},
			filename: "original.png",
		},
	}

	m := New(&Config{})

	for _, tc := range tt {
		t.Run(fmt.Sprintf("%s-%s", tc.requestedTransformations, tc.extension), func(t *testing.T) {
			transformation, err := m.Convert(tc.requestedTransformations, tc.extension)
			require.NoError(t, err)

			err = m.Normalize(transformation, tc.img)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, transformation)
			assert.Equal(t, tc.filename, transformation.Filename())
		})
	}
}

func TestCreateTransformation_DiscreteSteps(t *testing.T) {
	m := New(&Config{SizeDiscreteStep: 50, QualityDiscreteStep: 10, AllowUpscale: true})

	transformation, err := m.Convert("w523_q83", "jpg")
	require.NoError(t, err)

	require.NoError(t, m.Normalize(transformation, originalOf(1000, 800, "jpg")))

	assert.Equal(t, Width(500), transformation.Size)
	assert.Equal(t, Dimensions{Width: 500, Height: 400}, transformation.Target)
	assert.Equal(t, Percent(80), transformation.Quality)
	assert.Equal(t, "q80_w500.jpg", transformation.Filename())
}

func TestNormalize_InvalidDimension(t *testing.T) {
	m := New(&Config{})

	t.Run("unknown original", func(t *testing.T) {
		transformation, err := m.Convert("w300", "jpg")
		require.NoError(t, err)

		err = m.Normalize(transformation, &media.Image{ID: "6028336099d807ec425eeed2"})
		assert.True(t, errors.Is(err, ErrInvalidDimension))
	})

	t.Run("derived side rounds to zero", func(t *testing.T) {
		transformation, err := m.Convert("w1", "jpg")
		require.NoError(t, err)

		err = m.Normalize(transformation, originalOf(5000, 2, "jpg"))
		assert.True(t, errors.Is(err, ErrInvalidDimension))
	})
}
