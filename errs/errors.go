// Package errs defines the sentinel errors returned by pngpack.
//
// Errors fall into four categories, each with a root sentinel: ErrConfig
// (rejected before any work starts), ErrCompression (a pack's codec failed),
// ErrSink (the output destination rejected a write) and ErrSequence (the
// reassembly invariant was broken, which indicates a bug rather than a
// recoverable condition). Fine-grained sentinels wrap their category root, so
// errors.Is matches both:
//
//	if errors.Is(err, errs.ErrInvalidPackSize) { ... } // specific
//	if errors.Is(err, errs.ErrConfig) { ... }          // category
package errs

import (
	"errors"
	"fmt"
)

// Category roots.
var (
	// ErrConfig is the root of all option and header validation errors.
	ErrConfig = errors.New("invalid configuration")

	// ErrCompression is the root of codec failures. Compression of a pack is
	// deterministic for a given input, so these are never retried.
	ErrCompression = errors.New("compression failed")

	// ErrSink is the root of output write failures.
	ErrSink = errors.New("sink write failed")

	// ErrSequence reports a broken reassembly invariant: a pack arrived with
	// a sequence id below the watermark or one that was already emitted.
	ErrSequence = errors.New("sequence invariant violated")
)

// Configuration errors.
var (
	ErrInvalidPackSize         = fmt.Errorf("%w: pack size must be positive", ErrConfig)
	ErrInvalidThreadCount      = fmt.Errorf("%w: thread count must be positive", ErrConfig)
	ErrInvalidInFlightLimit    = fmt.Errorf("%w: in-flight multiplier must be positive", ErrConfig)
	ErrInvalidChunkPayloadLen  = fmt.Errorf("%w: chunk payload length out of range", ErrConfig)
	ErrInvalidCompressionLevel = fmt.Errorf("%w: unknown compression level", ErrConfig)
	ErrInvalidFilterType       = fmt.Errorf("%w: unknown filter type", ErrConfig)
	ErrInvalidFilterMode       = fmt.Errorf("%w: unknown filter mode", ErrConfig)
	ErrInvalidDimensions       = fmt.Errorf("%w: image dimensions must be positive", ErrConfig)
	ErrInvalidColorType        = fmt.Errorf("%w: unknown color type", ErrConfig)
	ErrInvalidBitDepth         = fmt.Errorf("%w: bit depth not valid for color type", ErrConfig)
	ErrInvalidPalette          = fmt.Errorf("%w: palette invalid for color type", ErrConfig)
	ErrRowLengthMismatch       = fmt.Errorf("%w: row length mismatch", ErrConfig)
	ErrTooManyRows             = fmt.Errorf("%w: more rows than the header height", ErrConfig)
	ErrMissingRows             = fmt.Errorf("%w: fewer rows than the header height", ErrConfig)
)

// Encoder lifecycle errors.
var (
	// ErrHeaderNotWritten is returned when rows are written before WriteHeader.
	ErrHeaderNotWritten = errors.New("header not written")

	// ErrHeaderAlreadyWritten is returned when WriteHeader is called twice.
	ErrHeaderAlreadyWritten = errors.New("header already written")

	// ErrRowsStarted is returned when a palette or transparency table is
	// written after the first row.
	ErrRowsStarted = errors.New("row data already started")

	// ErrEncoderFinished is returned when an encoder is used after Finish.
	ErrEncoderFinished = errors.New("encoder already finished")
)
