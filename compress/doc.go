// Package compress provides the deflate codec that turns filtered row packs
// into fragments of one continuous zlib stream.
//
// PNG stores all image data as a single RFC 1950 zlib stream inside the data
// chunks. To compress packs on parallel workers while still emitting one
// valid stream, each pack is deflated independently with a reset history
// window, and the fragments are concatenated in pack order by the pipeline.
//
// # Overview
//
// The pipeline applies a two-stage transformation to every pack:
//
//  1. **Filtering**: Predictive per-row transforms expose inter-pixel
//     redundancy (see the filter package)
//  2. **Compression**: Filtered bytes are deflated into a stream fragment
//
// The compress package implements the second stage. Because each worker owns
// its codec and every pack starts from a reset dictionary, a fragment depends
// only on its own pack's bytes and on whether it is the last pack. The same
// input always produces the same fragment, which is what keeps the final
// stream byte-identical across thread counts.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    CompressPack(data []byte, last bool) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Non-final fragments end with a sync flush so they terminate on a byte
// boundary and can be concatenated; the final fragment closes the deflate
// stream. The zlib wrapper (header and adler32 trailer) is supplied by the
// chunk package, not by the codec.
//
// # Compression Levels
//
// FlateCodec maps the three public levels onto klauspost/compress/flate:
//
//	codec, _ := compress.CreateCodec(format.LevelDefault)
//	fragment, _ := codec.CompressPack(filtered, false)
//
// | Level        | Strategy             | Use when                          |
// |--------------|----------------------|-----------------------------------|
// | LevelFast    | Greedy matching      | Interactive or latency-sensitive  |
// | LevelDefault | Balanced             | General purpose                   |
// | LevelHigh    | Exhaustive matching  | Archival, bandwidth-constrained   |
//
// Levels shape the emitted bytes, so the pipeline also derives the zlib
// header's compression-level hint from the same value.
//
// # Thread Safety
//
// FlateCodec is NOT thread-safe: it reuses one flate writer and one scratch
// buffer across calls. The pipeline creates one codec per worker; do the same
// when driving codecs directly.
//
// # Integration with the Pipeline
//
// The pipeline package uses this package internally. Configure the level via
// encoder options:
//
//	encoder, _ := pngpack.NewEncoder(w,
//	    pipeline.WithCompressionLevel(format.LevelHigh),
//	)
//
// Decompress exists for verification paths and tests; it inflates a complete
// raw deflate stream assembled from one or more fragments.
package compress
