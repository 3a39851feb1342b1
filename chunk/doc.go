// Package chunk implements the PNG container framing around the compressed
// pixel stream: the file signature, the length/tag/CRC chunk envelope, the
// IHDR image header, PLTE and tRNS for indexed images, IDAT payload chunks
// and the IEND terminator, plus the zlib stream header and adler32 combine
// arithmetic the parallel encoder needs to checksum packs out of band.
//
// All multi-byte fields are big-endian, per the PNG specification. Every
// chunk carries a CRC-32 (IEEE) over its tag and payload bytes; the CRC is
// computed at emission time so it always reflects emission order.
package chunk
