package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
)

func TestPaeth(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  uint8
		expected uint8
	}{
		{"all zero", 0, 0, 0, 0},
		{"prefers left on tie", 10, 10, 10, 10},
		{"left closest", 10, 20, 30, 10},
		{"above closest", 100, 101, 50, 101},
		{"upper left closest", 5, 250, 128, 128},
		{"gradient continues", 20, 30, 10, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paeth(tt.a, tt.b, tt.c)
			assert.Equal(t, tt.expected, got)

			// The predictor always returns one of its inputs
			assert.Contains(t, []uint8{tt.a, tt.b, tt.c}, got)
		})
	}
}

func TestApply_GoldenRows(t *testing.T) {
	tests := []struct {
		name     string
		ft       format.FilterType
		cur      []byte
		prev     []byte
		bpp      int
		expected []byte
	}{
		{
			name:     "none copies row",
			ft:       format.FilterNone,
			cur:      []byte{1, 2, 3, 4},
			bpp:      1,
			expected: []byte{1, 2, 3, 4},
		},
		{
			name:     "sub bpp1 linear ramp",
			ft:       format.FilterSub,
			cur:      []byte{1, 2, 3, 4},
			bpp:      1,
			expected: []byte{1, 1, 1, 1},
		},
		{
			name:     "sub bpp3 rgb pixels",
			ft:       format.FilterSub,
			cur:      []byte{10, 20, 30, 13, 25, 37},
			bpp:      3,
			expected: []byte{10, 20, 30, 3, 5, 7},
		},
		{
			name:     "sub wraps modulo 256",
			ft:       format.FilterSub,
			cur:      []byte{200, 100},
			bpp:      1,
			expected: []byte{200, 156},
		},
		{
			name:     "up against previous row",
			ft:       format.FilterUp,
			cur:      []byte{2, 3, 4},
			prev:     []byte{1, 1, 1},
			bpp:      1,
			expected: []byte{1, 2, 3},
		},
		{
			name:     "up first row acts like none",
			ft:       format.FilterUp,
			cur:      []byte{7, 8, 9},
			bpp:      1,
			expected: []byte{7, 8, 9},
		},
		{
			name:     "average of left and above",
			ft:       format.FilterAverage,
			cur:      []byte{3, 6, 9},
			prev:     []byte{2, 4, 6},
			bpp:      1,
			expected: []byte{2, 3, 3},
		},
		{
			name:     "average first row halves left only",
			ft:       format.FilterAverage,
			cur:      []byte{100, 100},
			bpp:      1,
			expected: []byte{100, 50},
		},
		{
			name:     "paeth against gradient",
			ft:       format.FilterPaeth,
			cur:      []byte{15, 25, 35},
			prev:     []byte{10, 20, 30},
			bpp:      1,
			expected: []byte{5, 5, 5},
		},
		{
			name:     "paeth first row falls back to left",
			ft:       format.FilterPaeth,
			cur:      []byte{10, 11, 12},
			bpp:      1,
			expected: []byte{10, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, len(tt.cur))
			err := Apply(tt.ft, dst, tt.cur, tt.prev, tt.bpp)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dst)
		})
	}
}

func TestApply_Validation(t *testing.T) {
	t.Run("rejects unknown filter type", func(t *testing.T) {
		err := Apply(format.FilterType(9), make([]byte, 4), make([]byte, 4), nil, 1)
		require.ErrorIs(t, err, errs.ErrInvalidFilterType)
	})

	t.Run("rejects dst length mismatch", func(t *testing.T) {
		err := Apply(format.FilterSub, make([]byte, 3), make([]byte, 4), nil, 1)
		require.ErrorIs(t, err, errs.ErrRowLengthMismatch)
		require.ErrorIs(t, err, errs.ErrConfig)
	})

	t.Run("rejects prev length mismatch", func(t *testing.T) {
		err := Apply(format.FilterUp, make([]byte, 4), make([]byte, 4), make([]byte, 3), 1)
		require.ErrorIs(t, err, errs.ErrRowLengthMismatch)
	})
}

func TestUnfilter_InvertsApply(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	filterTypes := []format.FilterType{
		format.FilterNone,
		format.FilterSub,
		format.FilterUp,
		format.FilterAverage,
		format.FilterPaeth,
	}

	for _, ft := range filterTypes {
		t.Run(ft.String(), func(t *testing.T) {
			for _, bpp := range []int{1, 3, 4, 8} {
				const rowBytes = 96

				cur := make([]byte, rowBytes)
				prev := make([]byte, rowBytes)
				for i := range cur {
					cur[i] = byte(rng.Intn(256))
					prev[i] = byte(rng.Intn(256))
				}

				dst := make([]byte, rowBytes)
				require.NoError(t, Apply(ft, dst, cur, prev, bpp))
				require.NoError(t, Unfilter(ft, dst, prev, bpp))
				assert.Equal(t, cur, dst, "bpp %d", bpp)

				// First row of the image: nil prev on both sides
				require.NoError(t, Apply(ft, dst, cur, nil, bpp))
				require.NoError(t, Unfilter(ft, dst, nil, bpp))
				assert.Equal(t, cur, dst, "bpp %d nil prev", bpp)
			}
		})
	}
}

func TestUnfilter_Validation(t *testing.T) {
	err := Unfilter(format.FilterType(7), make([]byte, 4), nil, 1)
	require.ErrorIs(t, err, errs.ErrInvalidFilterType)

	err = Unfilter(format.FilterUp, make([]byte, 4), make([]byte, 2), 1)
	require.ErrorIs(t, err, errs.ErrRowLengthMismatch)
}
