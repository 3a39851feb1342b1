package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
)

// FlateCodec compresses packs with DEFLATE (RFC 1951), the only entropy
// coding PNG permits inside IDAT. The writer is reused across packs via
// Reset, which clears the window and entropy state, so every fragment is
// history-free.
type FlateCodec struct {
	level int
	w     *flate.Writer
	buf   bytes.Buffer
}

var _ Codec = (*FlateCodec)(nil)

// NewFlateCodec creates a new deflate codec for the given level.
func NewFlateCodec(level format.CompressionLevel) (*FlateCodec, error) {
	flateLevel, err := toFlateLevel(level)
	if err != nil {
		return nil, err
	}

	w, err := flate.NewWriter(io.Discard, flateLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCompression, err)
	}

	return &FlateCodec{level: flateLevel, w: w}, nil
}

// CompressPack compresses one pack's filtered bytes into a deflate fragment.
//
// A non-final fragment ends with a sync flush (an empty stored block aligning
// the stream to a byte boundary) so the next fragment can start cleanly. The
// final fragment ends with the deflate final block instead.
func (c *FlateCodec) CompressPack(data []byte, last bool) ([]byte, error) {
	c.buf.Reset()
	c.w.Reset(&c.buf)

	if len(data) > 0 {
		if _, err := c.w.Write(data); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCompression, err)
		}
	}

	if last {
		if err := c.w.Close(); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCompression, err)
		}
	} else {
		if err := c.w.Flush(); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCompression, err)
		}
	}

	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())

	return out, nil
}

// Decompress inflates a complete deflate stream.
func (c *FlateCodec) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCompression, err)
	}

	return out, nil
}

// toFlateLevel maps the public level enum onto klauspost flate levels.
func toFlateLevel(level format.CompressionLevel) (int, error) {
	switch level {
	case format.LevelFast:
		return flate.BestSpeed, nil
	case format.LevelDefault:
		return flate.DefaultCompression, nil
	case format.LevelHigh:
		return flate.BestCompression, nil
	default:
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidCompressionLevel, level)
	}
}
