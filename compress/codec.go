package compress

import (
	"fmt"

	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
)

// Compressor turns one pack's filtered bytes into a deflate stream fragment.
//
// Each call starts from a fresh encoding window: no dictionary or entropy
// state carries over from previous packs. That makes pack compression
// embarrassingly parallel at the cost of a small ratio penalty (redundancy
// across pack boundaries is not exploited).
//
// Fragments concatenate into a single valid deflate stream when emitted in
// sequence order: every non-final fragment ends with a sync flush on a byte
// boundary, and the final fragment ends with the stream's final block.
type Compressor interface {
	// CompressPack compresses data into a self-contained fragment.
	//
	// When last is true the fragment terminates the deflate stream; exactly
	// one fragment per stream may have last set. data may be empty, which
	// still produces a valid (marker-only) fragment.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	CompressPack(data []byte, last bool) ([]byte, error)
}

// Decompressor inflates a complete deflate stream back into its original
// bytes. The encoder itself never inflates; this exists for verification and
// tests.
type Decompressor interface {
	// Decompress inflates data, which must be a complete deflate stream
	// (a final block must be present).
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
//
// Codec instances own reusable writer state and are NOT safe for concurrent
// use; create one per worker goroutine via CreateCodec.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec for the specified
// compression level.
//
// Parameters:
//   - level: Fast, Default or High (format.CompressionLevel)
//
// Returns:
//   - Codec: deflate codec for the level
//   - error: errs.ErrInvalidCompressionLevel for unknown levels
func CreateCodec(level format.CompressionLevel) (Codec, error) {
	switch level {
	case format.LevelFast, format.LevelDefault, format.LevelHigh:
		return NewFlateCodec(level)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompressionLevel, level)
	}
}

// CompressionStats summarizes one encode session's compression outcome.
type CompressionStats struct {
	// Level identifies the compression level used
	Level format.CompressionLevel

	// OriginalSize is the total filtered byte count before compression
	OriginalSize int64

	// CompressedSize is the total fragment byte count after compression
	CompressedSize int64

	// Packs is the number of independently compressed packs
	Packs int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Values greater than 1.0 indicate compression overhead (incompressible data).
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
//
// Higher values indicate better compression.
//
// Returns:
//   - float64: Space savings percentage (0-100)
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}
