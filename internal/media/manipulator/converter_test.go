package manipulator

import (
	"testing"

	"github.com/denismitr/imagine/internal/media"
	"github.com/denismitr/imagine/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Segments(t *testing.T) {
	m := New(&Config{})

	t.Run("flips and rotation", func(t *testing.T) {
		tr, err := m.Convert("fh_fv_r270_w300", "png")
		require.NoError(t, err)

		assert.Equal(t, Flip{Horizontal: true, Vertical: true}, tr.Flip)
		assert.Equal(t, Rotate270, tr.Rotation)
		assert.Equal(t, Width(300), tr.Size)
		assert.Equal(t, media.PNG, tr.Extension)
		assert.Equal(t, "image/png", tr.Mime)
	})

	t.Run("shorthand with both sides", func(t *testing.T) {
		tr, err := m.Convert("300x200_fit", "jpeg")
		require.NoError(t, err)

		assert.Equal(t, Exact(300, 200), tr.Size)
		assert.Equal(t, ModeFit, tr.Mode)
		assert.Equal(t, media.JPEG, tr.Extension)
	})

	t.Run("shorthand with auto height", func(t *testing.T) {
		tr, err := m.Convert("AUTOx150", "jpg")
		require.NoError(t, err)

		assert.Equal(t, Height(150), tr.Size)
	})

	t.Run("shorthand with a zero side derives it", func(t *testing.T) {
		tr, err := m.Convert("0x200_fit", "jpg")
		require.NoError(t, err)
		assert.Equal(t, Height(200), tr.Size)

		tr, err = m.Convert("300x0", "jpg")
		require.NoError(t, err)
		assert.Equal(t, Width(300), tr.Size)
	})

	t.Run("defaults", func(t *testing.T) {
		tr, err := m.Convert("q75", "jpg")
		require.NoError(t, err)

		assert.Equal(t, ModeResize, tr.Mode)
		assert.Equal(t, Center, tr.Position)
		assert.Equal(t, Auto(), tr.Size)
		assert.Equal(t, Percent(75), tr.Quality)
	})
}

func TestConvert_ValidationErrors(t *testing.T) {
	tt := []struct {
		name      string
		request   string
		extension string
		field     string
	}{
		{name: "empty request", request: "", extension: "jpg", field: "segments"},
		{name: "zero width", request: "w0", extension: "jpg", field: "width"},
		{name: "width too big", request: "w10001", extension: "jpg", field: "width"},
		{name: "width twice", request: "w300_w400", extension: "jpg", field: "width"},
		{name: "height twice", request: "h300_h400", extension: "jpg", field: "height"},
		{name: "quality zero", request: "w300_q0", extension: "jpg", field: "quality"},
		{name: "quality too high", request: "q101", extension: "jpg", field: "quality"},
		{name: "unknown segment", request: "w300_blur", extension: "jpg", field: "segments"},
		{name: "unsupported rotation", request: "r45", extension: "jpg", field: "segments"},
		{name: "invalid position", request: "w300_crop_p-middle-left", extension: "jpg", field: "position"},
		{name: "shorthand combined with width", request: "w300_300x200", extension: "jpg", field: "size"},
		{name: "shorthand out of range", request: "20000xAUTO", extension: "jpg", field: "size"},
		{name: "shorthand with both sides zero", request: "0x0", extension: "jpg", field: "size"},
		{name: "shorthand zero and auto", request: "0xAUTO", extension: "jpg", field: "size"},
		{name: "unsupported extension", request: "w300", extension: "webp", field: "extension"},
	}

	m := New(&Config{})

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := m.Convert(tc.request, tc.extension)
			require.Error(t, err)
			assert.Nil(t, tr)

			vErr, ok := err.(*validation.Error)
			require.True(t, ok, "expected validation error, got %T", err)
			assert.True(t, vErr.Has(tc.field), "expected %s in %v", tc.field, vErr.Errors())
		})
	}
}

func TestConvert_ConfiguredExtensions(t *testing.T) {
	m := New(&Config{ValidExtensions: []string{"png", "gif"}})

	_, err := m.Convert("w300", "jpg")
	assert.Error(t, err)

	tr, err := m.Convert("w300", "gif")
	require.NoError(t, err)
	assert.Equal(t, media.GIF, tr.Extension)
}

func Test_matchInteger(t *testing.T) {
	v, err := matchInteger("250", 1, 300)
	require.NoError(t, err)
	assert.Equal(t, 250, v)

	_, err = matchInteger("301", 1, 300)
	assert.Error(t, err)

	_, err = matchInteger("abc", 1, 300)
	assert.Error(t, err)
}
