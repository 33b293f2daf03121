package manipulator

import (
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tt := []struct {
		width    string
		height   string
		expected Size
	}{
		{width: "300xAUTO", expected: Width(300)},
		{width: "AUTOx200", expected: Height(200)},
		{width: "300x200", expected: Exact(300, 200)},
		{width: "AUTOxAUTO", expected: Auto()},
		{width: "300x200", height: "999", expected: Exact(300, 200)},
		{width: "300x200_fit", expected: Exact(300, 200)},
		{width: "300", expected: Width(300)},
		{height: "200", expected: Height(200)},
		{width: "300", height: "AUTO", expected: Width(300)},
		{width: "AUTO", height: "200", expected: Height(200)},
		{width: "300", height: "200", expected: Exact(300, 200)},
		{width: "0", expected: Width(0)},
		{width: "0x200", expected: Height(200)},
		{width: "300x0", expected: Width(300)},
		{width: "0", height: "200", expected: Height(200)},
		{width: "300", height: "0", expected: Width(300)},
		{width: "0x0", expected: Exact(0, 0)},
		{width: "0xAUTO", expected: Width(0)},
		{expected: Auto()},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("%q,%q", tc.width, tc.height), func(t *testing.T) {
			s, err := ParseSize(tc.width, tc.height)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}

	invalid := [][2]string{
		{"auto", ""},
		{"300xauto", ""},
		{"wide", ""},
		{"300", "tall"},
		{"-300", ""},
		{"99999999999999999999x1", ""},
	}

	for _, tc := range invalid {
		t.Run(fmt.Sprintf("invalid %q,%q", tc[0], tc[1]), func(t *testing.T) {
			_, err := ParseSize(tc[0], tc[1])
			assert.True(t, errors.Is(err, ErrInvalidDimension))
		})
	}
}

func TestResolve(t *testing.T) {
	tt := []struct {
		width, height string
		sw, sh        int
		expected      Dimensions
	}{
		{width: "300xAUTO", sw: 600, sh: 400, expected: Dimensions{300, 200}},
		{width: "AUTOx200", sw: 600, sh: 400, expected: Dimensions{300, 200}},
		{width: "300x200", sw: 600, sh: 400, expected: Dimensions{300, 200}},
		{width: "300x500", sw: 600, sh: 400, expected: Dimensions{300, 500}},
		{width: "AUTOxAUTO", sw: 600, sh: 400, expected: Dimensions{600, 400}},
		{width: "100", sw: 3, sh: 2, expected: Dimensions{100, 67}},
		{width: "101", sw: 2, sh: 1, expected: Dimensions{101, 51}},
		{height: "5", sw: 1, sh: 2, expected: Dimensions{3, 5}},
		{height: "1000", sw: 1920, sh: 1080, expected: Dimensions{1778, 1000}},
		{width: "0x200", sw: 600, sh: 400, expected: Dimensions{300, 200}},
		{width: "300x0", sw: 600, sh: 400, expected: Dimensions{300, 200}},
		{width: "0", height: "200", sw: 600, sh: 400, expected: Dimensions{300, 200}},
		{width: "300", height: "0", sw: 600, sh: 400, expected: Dimensions{300, 200}},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("%q,%q on %dx%d", tc.width, tc.height, tc.sw, tc.sh), func(t *testing.T) {
			s, err := ParseSize(tc.width, tc.height)
			require.NoError(t, err)

			d, err := Resolve(s, tc.sw, tc.sh)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestResolve_Proportional(t *testing.T) {
	sources := [][2]int{{600, 400}, {1920, 1080}, {3, 7}, {1024, 1024}, {4000, 3}}

	for _, src := range sources {
		sw, sh := src[0], src[1]
		for _, v := range []int{1, 17, 250, 1000, 4321} {
			t.Run(fmt.Sprintf("%d on %dx%d", v, sw, sh), func(t *testing.T) {
				expectedHeight := int(math.Round(float64(sh) * float64(v) / float64(sw)))
				if expectedHeight > 0 {
					d, err := Resolve(Width(v), sw, sh)
					require.NoError(t, err)
					assert.Equal(t, Dimensions{v, expectedHeight}, d)
				}

				expectedWidth := int(math.Round(float64(sw) * float64(v) / float64(sh)))
				if expectedWidth > 0 {
					d, err := Resolve(Height(v), sw, sh)
					require.NoError(t, err)
					assert.Equal(t, Dimensions{expectedWidth, v}, d)
				}

				d, err := Resolve(Exact(v, v+1), sw, sh)
				require.NoError(t, err)
				assert.Equal(t, Dimensions{v, v + 1}, d)
			})
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	for _, s := range []Size{Width(300), Height(123), Exact(40, 50), Auto()} {
		t.Run(s.String(), func(t *testing.T) {
			first, err := Resolve(s, 640, 480)
			require.NoError(t, err)

			second, err := Resolve(first.Size(), 640, 480)
			require.NoError(t, err)

			assert.Equal(t, first, second)
		})
	}
}

func TestResolve_InvalidDimension(t *testing.T) {
	tt := []struct {
		name   string
		size   Size
		sw, sh int
	}{
		{name: "zero width", size: Width(0), sw: 600, sh: 400},
		{name: "zero height", size: Height(0), sw: 600, sh: 400},
		{name: "negative width", size: Width(-10), sw: 600, sh: 400},
		{name: "explicit zero sides", size: Exact(0, 0), sw: 600, sh: 400},
		{name: "explicit zero and negative side", size: Exact(0, -5), sw: 600, sh: 400},
		{name: "derived side rounds to zero", size: Width(1), sw: 1000, sh: 1},
		{name: "zero source width", size: Width(300), sw: 0, sh: 400},
		{name: "negative source height", size: Height(300), sw: 600, sh: -1},
		{name: "unloaded source", size: Auto(), sw: 0, sh: 0},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.size, tc.sw, tc.sh)
			assert.True(t, errors.Is(err, ErrInvalidDimension), "got %v", err)
		})
	}

	t.Run("both zero from user input", func(t *testing.T) {
		for _, in := range [][2]string{{"0x0", ""}, {"0", "0"}, {"0xAUTO", ""}, {"0", "AUTO"}} {
			s, err := ParseSize(in[0], in[1])
			require.NoError(t, err)

			_, err = Resolve(s, 600, 400)
			assert.True(t, errors.Is(err, ErrInvalidDimension), "%q,%q", in[0], in[1])
		}
	})

	t.Run("zero from user input", func(t *testing.T) {
		s, err := ParseSize("0", "")
		require.NoError(t, err)

		_, err = Resolve(s, 600, 400)
		assert.True(t, errors.Is(err, ErrInvalidDimension))
	})
}

func TestResolve_ExplicitZeroSideIsDerived(t *testing.T) {
	d, err := Resolve(Exact(300, 0), 600, 400)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{300, 200}, d)

	d, err = Resolve(Exact(0, 200), 600, 400)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{300, 200}, d)
}

func TestSize_Accessors(t *testing.T) {
	assert.Equal(t, "300xAUTO", Width(300).String())
	assert.Equal(t, "AUTOx200", Height(200).String())
	assert.Equal(t, "300x200", Exact(300, 200).String())
	assert.Equal(t, "AUTOxAUTO", Size{}.String())

	assert.Equal(t, 0, Height(200).Width())
	assert.Equal(t, 0, Width(300).Height())
	assert.Equal(t, AutoSize, Size{}.Kind())
	assert.Equal(t, "explicit", ExplicitSize.String())
}
