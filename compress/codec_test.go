package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
)

// MockCodec implements the Codec interface for testing purposes.
type MockCodec struct {
	compressFunc   func([]byte, bool) ([]byte, error)
	decompressFunc func([]byte) ([]byte, error)
}

// NewMockCodec creates a mock codec that passes data through unchanged.
func NewMockCodec() *MockCodec {
	return &MockCodec{
		compressFunc: func(data []byte, last bool) ([]byte, error) {
			// Simple mock: just return the input data (no actual compression)
			return data, nil
		},
		decompressFunc: func(data []byte) ([]byte, error) {
			return data, nil
		},
	}
}

func (m *MockCodec) CompressPack(data []byte, last bool) ([]byte, error) {
	return m.compressFunc(data, last)
}

func (m *MockCodec) Decompress(data []byte) ([]byte, error) {
	return m.decompressFunc(data)
}

// Test Codec interface implementation
func TestCodec_Interface(t *testing.T) {
	codec := NewMockCodec()

	require.Implements(t, (*Compressor)(nil), codec)
	require.Implements(t, (*Decompressor)(nil), codec)
	require.Implements(t, (*Codec)(nil), codec)

	testData := []byte("pack payload for codec testing")
	compressed, err := codec.CompressPack(testData, true)
	require.NoError(t, err)

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, testData, decompressed)
}

// Test CreateCodec factory function
func TestCreateCodec(t *testing.T) {
	tests := []struct {
		name    string
		level   format.CompressionLevel
		wantErr bool
	}{
		{name: "fast level", level: format.LevelFast, wantErr: false},
		{name: "default level", level: format.LevelDefault, wantErr: false},
		{name: "high level", level: format.LevelHigh, wantErr: false},
		{name: "unknown level", level: format.CompressionLevel(0xFF), wantErr: true},
		{name: "zero level", level: format.CompressionLevel(0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := CreateCodec(tt.level)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrInvalidCompressionLevel)
				require.ErrorIs(t, err, errs.ErrConfig)
				require.Nil(t, codec)
			} else {
				require.NoError(t, err)
				require.NotNil(t, codec)
			}
		})
	}
}

func TestFlateCodec_RoundTrip(t *testing.T) {
	levels := []format.CompressionLevel{format.LevelFast, format.LevelDefault, format.LevelHigh}

	for _, level := range levels {
		t.Run(level.String(), func(t *testing.T) {
			codec, err := NewFlateCodec(level)
			require.NoError(t, err)

			data := bytes.Repeat([]byte("filtered scanline bytes "), 500)

			fragment, err := codec.CompressPack(data, true)
			require.NoError(t, err)
			require.NotEmpty(t, fragment)
			assert.Less(t, len(fragment), len(data), "repetitive data should compress")

			decompressed, err := codec.Decompress(fragment)
			require.NoError(t, err)
			require.Equal(t, data, decompressed)
		})
	}
}

func TestFlateCodec_FragmentConcatenation(t *testing.T) {
	codec, err := NewFlateCodec(format.LevelDefault)
	require.NoError(t, err)

	parts := [][]byte{
		bytes.Repeat([]byte{0x01, 0x02, 0x03}, 1000),
		bytes.Repeat([]byte{0xAA}, 2048),
		[]byte("short trailing pack"),
	}

	var stream bytes.Buffer
	var whole bytes.Buffer
	for i, part := range parts {
		last := i == len(parts)-1
		fragment, err := codec.CompressPack(part, last)
		require.NoError(t, err)
		stream.Write(fragment)
		whole.Write(part)
	}

	// Concatenated fragments form one valid deflate stream
	decompressed, err := codec.Decompress(stream.Bytes())
	require.NoError(t, err)
	require.Equal(t, whole.Bytes(), decompressed)
}

func TestFlateCodec_SyncFlushMarker(t *testing.T) {
	codec, err := NewFlateCodec(format.LevelDefault)
	require.NoError(t, err)

	fragment, err := codec.CompressPack([]byte("non-final pack"), false)
	require.NoError(t, err)

	// A sync flush ends with an empty stored block: LEN=0x0000 NLEN=0xFFFF
	require.GreaterOrEqual(t, len(fragment), 4)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0xFF}, fragment[len(fragment)-4:])
}

func TestFlateCodec_EmptyPack(t *testing.T) {
	codec, err := NewFlateCodec(format.LevelDefault)
	require.NoError(t, err)

	t.Run("empty final pack closes the stream", func(t *testing.T) {
		fragment, err := codec.CompressPack(nil, true)
		require.NoError(t, err)
		require.NotEmpty(t, fragment, "final block marker must be present")

		decompressed, err := codec.Decompress(fragment)
		require.NoError(t, err)
		require.Empty(t, decompressed)
	})

	t.Run("empty non-final pack emits flush marker only", func(t *testing.T) {
		mid, err := codec.CompressPack(nil, false)
		require.NoError(t, err)
		require.NotEmpty(t, mid)

		closing, err := codec.CompressPack(nil, true)
		require.NoError(t, err)

		decompressed, err := codec.Decompress(append(append([]byte{}, mid...), closing...))
		require.NoError(t, err)
		require.Empty(t, decompressed)
	})
}

func TestFlateCodec_WindowReset(t *testing.T) {
	// Compressing pack B must produce identical bytes whether or not another
	// pack went through the codec first: no state crosses pack boundaries.
	packA := bytes.Repeat([]byte("alpha beta gamma "), 300)
	packB := bytes.Repeat([]byte("delta epsilon zeta "), 300)

	warm, err := NewFlateCodec(format.LevelDefault)
	require.NoError(t, err)
	_, err = warm.CompressPack(packA, false)
	require.NoError(t, err)
	warmB, err := warm.CompressPack(packB, true)
	require.NoError(t, err)

	cold, err := NewFlateCodec(format.LevelDefault)
	require.NoError(t, err)
	coldB, err := cold.CompressPack(packB, true)
	require.NoError(t, err)

	require.Equal(t, coldB, warmB, "fragment must not depend on prior packs")
}

func TestFlateCodec_DecompressRejectsTruncated(t *testing.T) {
	codec, err := NewFlateCodec(format.LevelDefault)
	require.NoError(t, err)

	fragment, err := codec.CompressPack(bytes.Repeat([]byte{0x7F}, 4096), true)
	require.NoError(t, err)

	_, err = codec.Decompress(fragment[:len(fragment)/2])
	require.ErrorIs(t, err, errs.ErrCompression)
}

// Test CompressionStats calculation methods
func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name            string
		stats           CompressionStats
		expectedRatio   float64
		expectedSavings float64
	}{
		{
			name: "good compression",
			stats: CompressionStats{
				Level:          format.LevelHigh,
				OriginalSize:   1000,
				CompressedSize: 300,
			},
			expectedRatio:   0.3,
			expectedSavings: 70.0,
		},
		{
			name: "no compression benefit",
			stats: CompressionStats{
				Level:          format.LevelFast,
				OriginalSize:   500,
				CompressedSize: 500,
			},
			expectedRatio:   1.0,
			expectedSavings: 0.0,
		},
		{
			name: "zero original size",
			stats: CompressionStats{
				Level:          format.LevelDefault,
				OriginalSize:   0,
				CompressedSize: 0,
			},
			expectedRatio:   0.0,
			expectedSavings: 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.expectedRatio, tt.stats.CompressionRatio(), 0.0001)
			require.InDelta(t, tt.expectedSavings, tt.stats.SpaceSavings(), 0.0001)
		})
	}
}
