package chunk

import (
	"fmt"

	"github.com/arloliu/pngpack/endian"
	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
)

// Header describes the image being encoded and serializes to the 13-byte
// IHDR payload. The compression method, filter method and interlace bytes
// are always zero: deflate, adaptive filtering, no interlacing.
type Header struct {
	// Width is the image width in pixels.
	Width uint32 // byte offset 0-3
	// Height is the image height in pixels.
	Height uint32 // byte offset 4-7
	// BitDepth is the bits per sample (1, 2, 4, 8 or 16 depending on color type).
	BitDepth uint8 // byte offset 8
	// ColorType selects the pixel layout.
	ColorType format.ColorType // byte offset 9
	// bytes 10-12 are the fixed compression/filter/interlace methods, all zero
}

// NewHeader creates a Header for the given geometry.
func NewHeader(width, height uint32, bitDepth uint8, colorType format.ColorType) *Header {
	return &Header{
		Width:     width,
		Height:    height,
		BitDepth:  bitDepth,
		ColorType: colorType,
	}
}

// Validate checks the header against the format's rules.
//
// Returns:
//   - error: ErrInvalidDimensions, ErrInvalidColorType or ErrInvalidBitDepth
func (h *Header) Validate() error {
	if h.Width == 0 || h.Height == 0 || h.Width > MaxDimension || h.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", errs.ErrInvalidDimensions, h.Width, h.Height)
	}
	if !h.ColorType.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidColorType, h.ColorType)
	}
	if !h.ColorType.SupportsBitDepth(h.BitDepth) {
		return fmt.Errorf("%w: depth %d with %s", errs.ErrInvalidBitDepth, h.BitDepth, h.ColorType)
	}

	return nil
}

// RowBytes returns the raw scanline length in bytes, rounding sub-byte
// depths up to whole bytes.
func (h *Header) RowBytes() int {
	bits := int(h.Width) * h.ColorType.Channels() * int(h.BitDepth)
	return (bits + 7) / 8
}

// BytesPerPixel returns the filter delta in bytes: the size of one complete
// pixel, or 1 when a pixel occupies less than a byte.
func (h *Header) BytesPerPixel() int {
	bpp := h.ColorType.Channels() * int(h.BitDepth) / 8
	if bpp < 1 {
		bpp = 1
	}

	return bpp
}

// Bytes serializes the Header into the 13-byte IHDR payload.
func (h *Header) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, HeaderPayloadSize)

	engine.PutUint32(b[0:4], h.Width)
	engine.PutUint32(b[4:8], h.Height)
	b[8] = h.BitDepth
	b[9] = uint8(h.ColorType)
	b[10] = 0 // compression method: deflate
	b[11] = 0 // filter method: adaptive with five basic types
	b[12] = 0 // interlace method: none

	return b
}

// ParseHeader parses an IHDR payload back into a Header.
//
// Parameters:
//   - data: Byte slice containing the payload (must be exactly 13 bytes)
//
// Returns:
//   - Header: Parsed header struct
//   - error: errs.ErrConfig for a wrong-size payload, or Validate errors
func ParseHeader(data []byte) (Header, error) {
	if len(data) != HeaderPayloadSize {
		return Header{}, fmt.Errorf("%w: IHDR payload is %d bytes, want %d", errs.ErrConfig, len(data), HeaderPayloadSize)
	}

	engine := endian.GetBigEndianEngine()
	h := Header{
		Width:     engine.Uint32(data[0:4]),
		Height:    engine.Uint32(data[4:8]),
		BitDepth:  data[8],
		ColorType: format.ColorType(data[9]),
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}

	return h, nil
}
