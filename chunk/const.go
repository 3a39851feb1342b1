package chunk

// Signature is the 8-byte PNG file signature.
const Signature = "\x89PNG\r\n\x1a\n"

// Chunk type tags. Each tag is exactly 4 ASCII bytes; case encodes the
// ancillary/private/copy bits defined by the format.
const (
	TypeIHDR = "IHDR" // image header, always first
	TypePLTE = "PLTE" // palette, required for indexed color
	TypeTRNS = "tRNS" // palette transparency
	TypeIDAT = "IDAT" // compressed pixel data
	TypeIEND = "IEND" // stream terminator, always last, empty payload
)

// sizes and limits of the chunk envelope
const (
	TagSize           = 4               // chunk type tag size in bytes
	Overhead          = 12              // per-chunk envelope bytes: 4 length + 4 tag + 4 CRC
	HeaderPayloadSize = 13              // IHDR payload size in bytes
	MaxPayloadLen     = 1<<31 - 1       // format ceiling on a single chunk payload
	MaxPaletteEntries = 256             // PLTE entry limit
	MaxPaletteSize    = 3 * 256         // PLTE payload limit in bytes (RGB triples)
	MaxDimension      = uint32(1)<<31 - 1 // width/height ceiling
)
