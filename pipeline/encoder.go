package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/pngpack/chunk"
	"github.com/arloliu/pngpack/compress"
	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
	"github.com/arloliu/pngpack/internal/options"
)

// encoderPhase tracks the session lifecycle from the caller's side.
type encoderPhase uint8

const (
	phaseCreated encoderPhase = iota
	phaseHeaderWritten
	phaseRows
	phaseFinished
)

// Encoder is one streaming encode session: header first, then rows in order,
// then Finish. Rows are filtered and compressed by a parallel worker pool
// while the caller keeps submitting; submission blocks only when the
// in-flight pack cap is reached, so the whole image is never resident at
// once.
//
// Note: The Encoder is NOT thread-safe. Each session must be driven by a
// single goroutine.
//
// Note: The Encoder is NOT reusable. After Finish, create a new encoder for
// the next image.
//
// Note: Finish must always be called, even after an error, to stop the
// session's worker goroutines.
type Encoder struct {
	*EncoderConfig

	cw      *chunk.Writer
	header  *chunk.Header
	chunker *chunker
	sched   *scheduler

	paletteWritten bool
	paletteEntries int

	phase   encoderPhase
	failErr error
	stats   compress.CompressionStats
}

// NewEncoder creates an encode session writing to w.
//
// Parameters:
//   - w: Output sink for the complete image stream
//   - opts: Optional settings (thread count, pack size, compression level,
//     filter policy, chunk payload cap)
//
// Returns:
//   - *Encoder: Session ready for WriteHeader
//   - error: Configuration error if an option carries an invalid value
func NewEncoder(w io.Writer, opts ...EncoderOption) (*Encoder, error) {
	cfg := NewEncoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Encoder{
		EncoderConfig: cfg,
		cw:            chunk.NewWriter(w),
	}, nil
}

// WriteHeader validates the image header, writes the stream signature and
// header chunk, and starts the worker pool sized for the image geometry. It
// must be called exactly once, before any row.
//
// Returns:
//   - error: Validation failure, errs.ErrHeaderAlreadyWritten on a second
//     call, or a sink write failure
func (e *Encoder) WriteHeader(h *chunk.Header) error {
	if e.failErr != nil {
		return e.failErr
	}

	switch e.phase {
	case phaseFinished:
		return errs.ErrEncoderFinished
	case phaseHeaderWritten, phaseRows:
		return errs.ErrHeaderAlreadyWritten
	case phaseCreated:
	}

	if err := h.Validate(); err != nil {
		return err
	}

	if err := e.cw.WriteSignature(); err != nil {
		e.failErr = err
		return err
	}
	if err := e.cw.WriteHeader(h); err != nil {
		e.failErr = err
		return err
	}

	hdr := *h
	e.header = &hdr

	rowBytes := hdr.RowBytes()
	e.chunker = newChunker(e.packSizeRows, rowBytes, int(hdr.Height))

	reasm := newReassembler(e.cw, e.engine, e.level, e.maxChunkPayload)
	e.sched = newScheduler(e.EncoderConfig, rowBytes, hdr.BytesPerPixel(), reasm)
	e.sched.start()

	e.phase = phaseHeaderWritten

	return nil
}

// WritePalette writes the palette chunk. Indexed color requires it before
// the first row; truecolor images may carry it as a suggested palette.
//
// Returns:
//   - error: errs.ErrInvalidPalette for a malformed palette or a color type
//     that takes none, errs.ErrRowsStarted once row data began
func (e *Encoder) WritePalette(palette []byte) error {
	if err := e.checkPreRowPhase(); err != nil {
		return err
	}

	switch e.header.ColorType {
	case format.ColorIndexed, format.ColorTruecolor, format.ColorTruecolorAlpha:
	default:
		return fmt.Errorf("%w: color type %s does not take a palette", errs.ErrInvalidPalette, e.header.ColorType)
	}

	if e.header.ColorType == format.ColorIndexed {
		maxEntries := 1 << e.header.BitDepth
		if len(palette)/3 > maxEntries {
			return fmt.Errorf("%w: %d entries exceed bit depth %d", errs.ErrInvalidPalette, len(palette)/3, e.header.BitDepth)
		}
	}

	if err := e.cw.WritePalette(palette); err != nil {
		return e.recordSinkFailure(err)
	}

	e.paletteWritten = true
	e.paletteEntries = len(palette) / 3

	return nil
}

// WriteTransparency writes the transparency chunk: per-entry alpha for
// indexed color (after the palette), or the single transparent sample value
// for grayscale and truecolor. Color types with an alpha channel take none.
func (e *Encoder) WriteTransparency(alpha []byte) error {
	if err := e.checkPreRowPhase(); err != nil {
		return err
	}

	switch e.header.ColorType {
	case format.ColorIndexed:
		if !e.paletteWritten {
			return fmt.Errorf("%w: transparency requires the palette first", errs.ErrInvalidPalette)
		}
		if len(alpha) == 0 || len(alpha) > e.paletteEntries {
			return fmt.Errorf("%w: %d alpha entries for %d palette entries", errs.ErrInvalidPalette, len(alpha), e.paletteEntries)
		}
	case format.ColorGrayscale:
		if len(alpha) != 2 {
			return fmt.Errorf("%w: grayscale transparency is one 16-bit sample", errs.ErrConfig)
		}
	case format.ColorTruecolor:
		if len(alpha) != 6 {
			return fmt.Errorf("%w: truecolor transparency is one 16-bit sample per channel", errs.ErrConfig)
		}
	default:
		return fmt.Errorf("%w: color type %s carries alpha already", errs.ErrConfig, e.header.ColorType)
	}

	if err := e.cw.WriteTransparency(alpha); err != nil {
		return e.recordSinkFailure(err)
	}

	return nil
}

// WriteRow submits one raw scanline. Rows arrive in top-to-bottom order and
// must all have the row length implied by the header. The call blocks while
// the in-flight pack cap is reached.
//
// Returns:
//   - error: errs.ErrRowLengthMismatch or errs.ErrTooManyRows for a bad row
//     (the row is rejected, the session continues), or the session's first
//     pipeline error, after which the session is dead
func (e *Encoder) WriteRow(row []byte) error {
	if e.failErr != nil {
		return e.failErr
	}

	switch e.phase {
	case phaseCreated:
		return errs.ErrHeaderNotWritten
	case phaseFinished:
		return errs.ErrEncoderFinished
	case phaseHeaderWritten:
		if e.header.ColorType == format.ColorIndexed && !e.paletteWritten {
			return fmt.Errorf("%w: indexed color requires a palette before rows", errs.ErrInvalidPalette)
		}
		e.phase = phaseRows
	case phaseRows:
	}

	p, err := e.chunker.submit(row)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	if err := e.sched.dispatch(p); err != nil {
		return e.fail(err)
	}

	return nil
}

// WriteRows submits multiple scanlines in order. Equivalent to calling
// WriteRow for each.
func (e *Encoder) WriteRows(rows [][]byte) error {
	for _, row := range rows {
		if err := e.WriteRow(row); err != nil {
			return err
		}
	}

	return nil
}

// WriteImage submits an entire image held as one contiguous buffer of
// back-to-back rows.
//
// Parameters:
//   - pixels: height*rowBytes raw bytes, rows top to bottom
func (e *Encoder) WriteImage(pixels []byte) error {
	if e.failErr != nil {
		return e.failErr
	}

	switch e.phase {
	case phaseCreated:
		return errs.ErrHeaderNotWritten
	case phaseFinished:
		return errs.ErrEncoderFinished
	case phaseHeaderWritten, phaseRows:
	}

	rowBytes := e.header.RowBytes()
	if len(pixels)%rowBytes != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole number of %d-byte rows", errs.ErrRowLengthMismatch, len(pixels), rowBytes)
	}

	for off := 0; off < len(pixels); off += rowBytes {
		if err := e.WriteRow(pixels[off : off+rowBytes]); err != nil {
			return err
		}
	}

	return nil
}

// Finish completes the session: drains the worker pool, emits the final
// data chunk with the stream trailer, and writes the terminator chunk. After
// Finish the encoder cannot be reused.
//
// Returns:
//   - error: The session's first error, errs.ErrMissingRows when fewer rows
//     arrived than the header promised, or errs.ErrEncoderFinished on a
//     second call
func (e *Encoder) Finish() error {
	if e.phase == phaseFinished {
		return errs.ErrEncoderFinished
	}

	phaseBefore := e.phase
	e.phase = phaseFinished
	defer e.cw.Close()

	if e.sched == nil {
		if e.failErr != nil {
			return e.failErr
		}

		return errs.ErrHeaderNotWritten
	}

	if e.failErr != nil {
		// Recorded by a path that did not drain the pool (a metadata sink
		// failure); the workers are still parked.
		_ = e.sched.settle()
		return e.failErr
	}

	if phaseBefore == phaseHeaderWritten && e.header.ColorType == format.ColorIndexed && !e.paletteWritten {
		_ = e.sched.settle()
		e.failErr = fmt.Errorf("%w: indexed color requires a palette before rows", errs.ErrInvalidPalette)

		return e.failErr
	}

	p, chunkErr := e.chunker.finish()

	var dispatchErr error
	if chunkErr == nil && p != nil {
		dispatchErr = e.sched.dispatch(p)
	}

	settleErr := e.sched.settle()

	switch {
	case chunkErr != nil:
		e.failErr = chunkErr
	case settleErr != nil:
		e.failErr = settleErr
	case dispatchErr != nil:
		e.failErr = dispatchErr
	}
	if e.failErr != nil {
		return e.failErr
	}

	e.stats = e.sched.reasm.stats

	if err := e.cw.WriteEnd(); err != nil {
		e.failErr = err
		return err
	}

	return nil
}

// Stats returns the compression summary for the session. Populated by a
// successful Finish.
func (e *Encoder) Stats() compress.CompressionStats {
	return e.stats
}

// Header returns the image header the session was started with, nil before
// WriteHeader.
func (e *Encoder) Header() *chunk.Header {
	return e.header
}

// checkPreRowPhase gates the metadata chunks to the window between
// WriteHeader and the first row.
func (e *Encoder) checkPreRowPhase() error {
	if e.failErr != nil {
		return e.failErr
	}

	switch e.phase {
	case phaseCreated:
		return errs.ErrHeaderNotWritten
	case phaseFinished:
		return errs.ErrEncoderFinished
	case phaseRows:
		return errs.ErrRowsStarted
	case phaseHeaderWritten:
	}

	return nil
}

// recordSinkFailure marks the session dead when a metadata write reached the
// sink and failed; validation rejections leave the session usable.
func (e *Encoder) recordSinkFailure(err error) error {
	if errors.Is(err, errs.ErrSink) {
		e.failErr = err
	}

	return err
}

// fail drains the pipeline after a dispatch failure and records the first
// error it finds as the session's fate.
func (e *Encoder) fail(cause error) error {
	if err := e.sched.settle(); err != nil {
		cause = err
	}
	e.failErr = cause

	return cause
}
