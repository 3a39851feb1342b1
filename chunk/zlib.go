package chunk

import (
	"github.com/arloliu/pngpack/format"
)

// adlerBase is the modulus of the adler32 checksum.
const adlerBase = 65521

// ZlibHeader returns the 2-byte zlib stream header for the given compression
// level: CMF 0x78 (deflate, 32KiB window) and FLG carrying the level hint
// plus the check bits that make the pair a multiple of 31.
func ZlibHeader(level format.CompressionLevel) [2]byte {
	const cmf = 0x78

	var flevel byte
	switch level {
	case format.LevelFast:
		flevel = 0 // fastest
	case format.LevelHigh:
		flevel = 3 // maximum
	default:
		flevel = 2 // default
	}

	flg := flevel << 6
	flg += 31 - byte((uint16(cmf)<<8|uint16(flg))%31)

	return [2]byte{cmf, flg}
}

// CombineAdler32 merges two adler32 checksums: given a over some bytes and b
// over the bytes that follow them, it returns the checksum of the
// concatenation. lenB is the byte count behind b.
//
// This lets each worker checksum its own pack and the reassembler fold the
// results in sequence order without re-reading pack bytes.
func CombineAdler32(a, b uint32, lenB int) uint32 {
	rem := uint64(lenB) % adlerBase

	sum1 := uint64(a) & 0xffff
	sum2 := (rem * sum1) % adlerBase
	sum1 += uint64(b)&0xffff + adlerBase - 1
	sum2 += (uint64(a) >> 16 & 0xffff) + (uint64(b) >> 16 & 0xffff) + adlerBase - rem

	if sum1 >= adlerBase {
		sum1 -= adlerBase
	}
	if sum1 >= adlerBase {
		sum1 -= adlerBase
	}
	if sum2 >= adlerBase<<1 {
		sum2 -= adlerBase << 1
	}
	if sum2 >= adlerBase {
		sum2 -= adlerBase
	}

	return uint32(sum2<<16 | sum1)
}
