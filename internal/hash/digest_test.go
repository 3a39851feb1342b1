package hash

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum64(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		digest uint64
	}{
		{"empty buffer", nil, 0xef46db3751d8e999},
		{"short buffer", []byte("test"), 0x4fdcca5ddb678139},
		{"long buffer", []byte("this is a longer test string to hash"), 0x69275f7f7ee59dbd},
		{"another buffer", []byte("another test string"), 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.digest, Sum64(tt.data))
		})
	}
}

func TestRows_MatchesSum64(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	pixels := make([]byte, 4096)
	_, _ = rng.Read(pixels)

	whole := Sum64(pixels)

	for _, rowLen := range []int{1, 16, 64, 1000, 4096} {
		var rows [][]byte
		for off := 0; off < len(pixels); off += rowLen {
			end := off + rowLen
			if end > len(pixels) {
				end = len(pixels)
			}
			rows = append(rows, pixels[off:end])
		}

		require.Equal(t, whole, Rows(rows), "rowLen=%d", rowLen)
	}
}

func TestRows_Empty(t *testing.T) {
	assert.Equal(t, Sum64(nil), Rows(nil))
}

func BenchmarkSum64(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	pixels := make([]byte, 64*1024)
	_, _ = rng.Read(pixels)
	b.SetBytes(int64(len(pixels)))
	b.ResetTimer()
	for b.Loop() {
		Sum64(pixels)
	}
}
