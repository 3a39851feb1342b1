package chunk

import (
	"fmt"
	"hash/crc32"
	"io"

	"github.com/arloliu/pngpack/endian"
	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/internal/pool"
)

// Writer frames chunks onto an output sink.
//
// Each chunk is assembled into a pooled scratch buffer and handed to the sink
// with a single Write call, so a sink write either covers a whole chunk or
// fails it. The Writer is not safe for concurrent use; in the encoder
// pipeline only the reassembler touches it.
type Writer struct {
	w      io.Writer
	engine endian.EndianEngine
	buf    *pool.ByteBuffer
}

// NewWriter creates a chunk Writer over the sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:      w,
		engine: endian.GetBigEndianEngine(),
		buf:    pool.GetChunkBuffer(),
	}
}

// WriteSignature writes the 8-byte file signature. It must be the first
// write of the stream.
func (cw *Writer) WriteSignature() error {
	if _, err := cw.w.Write([]byte(Signature)); err != nil {
		return fmt.Errorf("%w: signature: %v", errs.ErrSink, err)
	}

	return nil
}

// WriteHeader validates h and writes the IHDR chunk.
func (cw *Writer) WriteHeader(h *Header) error {
	if err := h.Validate(); err != nil {
		return err
	}

	return cw.WriteChunk(TypeIHDR, h.Bytes(cw.engine))
}

// WritePalette writes the PLTE chunk. palette holds packed RGB triples,
// between 1 and 256 entries.
func (cw *Writer) WritePalette(palette []byte) error {
	if len(palette) == 0 || len(palette)%3 != 0 || len(palette) > MaxPaletteSize {
		return fmt.Errorf("%w: %d palette bytes", errs.ErrInvalidPalette, len(palette))
	}

	return cw.WriteChunk(TypePLTE, palette)
}

// WriteTransparency writes the tRNS chunk: one alpha byte per palette entry,
// at most MaxPaletteEntries.
func (cw *Writer) WriteTransparency(alpha []byte) error {
	if len(alpha) == 0 || len(alpha) > MaxPaletteEntries {
		return fmt.Errorf("%w: %d transparency entries", errs.ErrInvalidPalette, len(alpha))
	}

	return cw.WriteChunk(TypeTRNS, alpha)
}

// WriteData writes one IDAT chunk carrying payload. Splitting oversized
// payloads across chunks is the caller's concern; payload here must already
// be within the format ceiling.
func (cw *Writer) WriteData(payload []byte) error {
	return cw.WriteChunk(TypeIDAT, payload)
}

// WriteEnd writes the empty IEND chunk that terminates the stream.
func (cw *Writer) WriteEnd() error {
	return cw.WriteChunk(TypeIEND, nil)
}

// WriteChunk frames a single chunk: big-endian payload length, 4-byte tag,
// payload, then CRC-32 over tag and payload.
func (cw *Writer) WriteChunk(tag string, payload []byte) error {
	if len(tag) != TagSize {
		return fmt.Errorf("%w: chunk tag %q must be %d bytes", errs.ErrConfig, tag, TagSize)
	}
	if len(payload) > MaxPayloadLen {
		return fmt.Errorf("%w: %d byte payload", errs.ErrInvalidChunkPayloadLen, len(payload))
	}

	crc := crc32.Update(0, crc32.IEEETable, []byte(tag))
	crc = crc32.Update(crc, crc32.IEEETable, payload)

	cw.buf.Reset()
	cw.buf.Grow(len(payload) + Overhead)
	cw.buf.B = cw.engine.AppendUint32(cw.buf.B, uint32(len(payload)))
	cw.buf.MustWrite([]byte(tag))
	cw.buf.MustWrite(payload)
	cw.buf.B = cw.engine.AppendUint32(cw.buf.B, crc)

	if _, err := cw.buf.WriteTo(cw.w); err != nil {
		return fmt.Errorf("%w: %s chunk: %v", errs.ErrSink, tag, err)
	}

	return nil
}

// Close releases the Writer's scratch buffer. The Writer must not be used
// afterwards.
func (cw *Writer) Close() {
	pool.PutChunkBuffer(cw.buf)
	cw.buf = nil
}
