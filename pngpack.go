// Package pngpack provides a multithreaded, streaming PNG encoder.
//
// Pngpack splits an image into independent packs of rows, filters and
// compresses the packs on parallel workers, and reassembles the results in
// order into a single standards-compliant zlib stream. Every stage is
// deterministic, so the output bytes are identical regardless of how many
// workers run. It is optimized for large images where filtering and deflate
// dominate encode time.
//
// # Core Features
//
//   - Parallel filtering and compression across a configurable worker count
//   - Deterministic output: identical bytes for any thread count
//   - Streaming row input with bounded memory (no whole-image buffering)
//   - Adaptive per-row filter selection or one fixed filter for all rows
//   - Grayscale, truecolor, indexed, and alpha color types up to 16-bit depth
//   - Palette and transparency metadata for indexed and keyed images
//   - Per-session compression statistics
//
// # Basic Usage
//
// Encoding an image row by row:
//
//	import "github.com/arloliu/pngpack"
//
//	f, _ := os.Create("out.png")
//	defer f.Close()
//
//	encoder, _ := pngpack.NewEncoder(f)
//
//	header := pngpack.NewHeader(width, height, 8, format.ColorTruecolorAlpha)
//	_ = encoder.WriteHeader(header)
//	for y := 0; y < height; y++ {
//	    _ = encoder.WriteRow(rows[y])
//	}
//	_ = encoder.Finish()
//
// Encoding a whole image in one call:
//
//	stats, err := pngpack.EncodeImage(f, header, pixels)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("compressed %d -> %d bytes\n", stats.OriginalSize, stats.CompressedSize)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the pipeline
// package, simplifying the most common use cases. For advanced usage and
// fine-grained control, use the pipeline package directly.
package pngpack

import (
	"io"

	"github.com/arloliu/pngpack/chunk"
	"github.com/arloliu/pngpack/compress"
	"github.com/arloliu/pngpack/format"
	"github.com/arloliu/pngpack/internal/hash"
	"github.com/arloliu/pngpack/pipeline"
)

var fastOptions = []pipeline.EncoderOption{
	pipeline.WithCompressionLevel(format.LevelFast),
	pipeline.WithFilterMode(format.FilterModeAdaptive),
}

var highOptions = []pipeline.EncoderOption{
	pipeline.WithCompressionLevel(format.LevelHigh),
	pipeline.WithFilterMode(format.FilterModeAdaptive),
}

// NewEncoder creates a streaming PNG encoder with custom options.
//
// This is the most flexible factory function, allowing full control over
// parallelism, filtering, and compression through options. Use this when you
// need a specific worker count, filter strategy, or output chunk sizing.
//
// Parameters:
//   - w: Destination for the encoded PNG stream
//   - opts: Optional configuration functions (see pipeline.EncoderOption)
//
// Returns:
//   - *pipeline.Encoder: The created encoder.
//   - error: An error if the configuration is invalid.
//
// Available options:
//   - pipeline.WithThreadCount(n)
//   - pipeline.WithPackSizeRows(n)
//   - pipeline.WithCompressionLevel(format.LevelFast|LevelDefault|LevelHigh)
//   - pipeline.WithFilterMode(format.FilterModeAdaptive|FilterModeFixed)
//   - pipeline.WithFixedFilter(format.FilterNone|Sub|Up|Average|Paeth)
//   - pipeline.WithMaxChunkPayloadLen(n)
//   - pipeline.WithInFlightMultiplier(n)
//
// Example:
//
//	encoder, err := pngpack.NewEncoder(w,
//	    pipeline.WithThreadCount(8),
//	    pipeline.WithCompressionLevel(format.LevelHigh),
//	)
func NewEncoder(w io.Writer, opts ...pipeline.EncoderOption) (*pipeline.Encoder, error) {
	return pipeline.NewEncoder(w, opts...)
}

// NewFastEncoder creates an encoder tuned for throughput.
//
// It trades some compression ratio for encode speed. Configuration:
//   - Fast compression level (greedy deflate matching)
//   - Adaptive per-row filter selection
//
// Use this for interactive workloads, thumbnailing, or any pipeline where
// encode latency matters more than output size.
//
// Returns:
//   - *pipeline.Encoder: The created encoder.
//   - error: An error if the writer session cannot be created.
func NewFastEncoder(w io.Writer) (*pipeline.Encoder, error) {
	return pipeline.NewEncoder(w, fastOptions...)
}

// NewHighEncoder creates an encoder tuned for compression ratio.
//
// It spends extra CPU time to shrink the output. Configuration:
//   - High compression level (exhaustive deflate matching)
//   - Adaptive per-row filter selection
//
// Use this for archival output or bandwidth-constrained delivery where
// encode time is cheap relative to storage and transfer.
//
// Returns:
//   - *pipeline.Encoder: The created encoder.
//   - error: An error if the writer session cannot be created.
func NewHighEncoder(w io.Writer) (*pipeline.Encoder, error) {
	return pipeline.NewEncoder(w, highOptions...)
}

// EncodeImage encodes a complete image in a single call.
//
// The pixel buffer must hold exactly h.Height rows of h.RowBytes() bytes,
// laid out top to bottom with no padding between rows. The encoder still
// streams internally, so memory stays bounded even for large images.
//
// Parameters:
//   - w: Destination for the encoded PNG stream
//   - h: Image header describing geometry and pixel format
//   - pixels: Raw pixel data for the whole image
//   - opts: Optional configuration functions (see pipeline.EncoderOption)
//
// Returns:
//   - compress.CompressionStats: Statistics for the completed session.
//   - error: An error if configuration, input, compression, or the sink fails.
//
// Example:
//
//	stats, err := pngpack.EncodeImage(f, header, pixels,
//	    pipeline.WithCompressionLevel(format.LevelFast),
//	)
func EncodeImage(w io.Writer, h *chunk.Header, pixels []byte, opts ...pipeline.EncoderOption) (compress.CompressionStats, error) {
	enc, err := pipeline.NewEncoder(w, opts...)
	if err != nil {
		return compress.CompressionStats{}, err
	}

	if err := enc.WriteHeader(h); err != nil {
		return compress.CompressionStats{}, err
	}

	if err := enc.WriteImage(pixels); err != nil {
		_ = enc.Finish()
		return compress.CompressionStats{}, err
	}

	if err := enc.Finish(); err != nil {
		return compress.CompressionStats{}, err
	}

	return enc.Stats(), nil
}

// EncodeIndexedImage encodes a complete palette-indexed image in a single call.
//
// The palette holds packed RGB triplets (3 bytes per entry), and each pixel
// byte in the image selects a palette entry. See EncodeImage for the pixel
// buffer layout.
//
// Parameters:
//   - w: Destination for the encoded PNG stream
//   - h: Image header; its color type must be format.ColorIndexed
//   - palette: Packed RGB palette entries, 3 bytes each
//   - pixels: Raw palette indices for the whole image
//   - opts: Optional configuration functions (see pipeline.EncoderOption)
//
// Returns:
//   - compress.CompressionStats: Statistics for the completed session.
//   - error: An error if configuration, input, compression, or the sink fails.
func EncodeIndexedImage(w io.Writer, h *chunk.Header, palette []byte, pixels []byte, opts ...pipeline.EncoderOption) (compress.CompressionStats, error) {
	enc, err := pipeline.NewEncoder(w, opts...)
	if err != nil {
		return compress.CompressionStats{}, err
	}

	if err := enc.WriteHeader(h); err != nil {
		return compress.CompressionStats{}, err
	}

	if err := enc.WritePalette(palette); err != nil {
		_ = enc.Finish()
		return compress.CompressionStats{}, err
	}

	if err := enc.WriteImage(pixels); err != nil {
		_ = enc.Finish()
		return compress.CompressionStats{}, err
	}

	if err := enc.Finish(); err != nil {
		return compress.CompressionStats{}, err
	}

	return enc.Stats(), nil
}

// NewHeader builds an image header describing geometry and pixel format.
//
// The header is validated when passed to the encoder's WriteHeader, not here,
// so it can be constructed and adjusted freely beforehand.
//
// Parameters:
//   - width: Image width in pixels (must be > 0 at WriteHeader time)
//   - height: Image height in pixels (must be > 0 at WriteHeader time)
//   - bitDepth: Bits per sample, or per palette index (1, 2, 4, 8, or 16)
//   - colorType: One of the format.Color* constants
//
// Returns:
//   - *chunk.Header: The constructed header.
//
// Example:
//
//	h := pngpack.NewHeader(1920, 1080, 8, format.ColorTruecolor)
func NewHeader(width, height uint32, bitDepth uint8, colorType format.ColorType) *chunk.Header {
	return chunk.NewHeader(width, height, bitDepth, colorType)
}

// PixelDigest computes a 64-bit content digest of raw pixel data.
//
// Pngpack uses xxHash64 for cheap pixel content identity:
//   - Verifying that decode/re-encode round trips preserve pixel data
//   - Keying encode caches or deduplication maps by image content
//   - Change detection between image revisions without byte comparison
//
// Characteristics:
//   - Fast: hashes several gigabytes per second on modern hardware
//   - Deterministic: the same pixels always produce the same digest
//   - Not cryptographic: unsuitable for integrity against adversaries
//
// Example:
//
//	before := pngpack.PixelDigest(pixels)
//	// ... encode, then decode elsewhere ...
//	if pngpack.PixelDigest(decoded) != before {
//	    log.Fatal("round trip changed pixel data")
//	}
func PixelDigest(pixels []byte) uint64 {
	return hash.Sum64(pixels)
}
