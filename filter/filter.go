package filter

import (
	"fmt"

	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
)

// paeth returns the Paeth predictor for neighbors a (left), b (above) and
// c (upper left): the neighbor closest to a+b-c, preferring a, then b, then c
// on ties.
func paeth(a, b, c uint8) uint8 {
	pa := int(b) - int(c)
	pb := int(a) - int(c)
	pc := pa + pb
	if pa < 0 {
		pa = -pa
	}
	if pb < 0 {
		pb = -pb
	}
	if pc < 0 {
		pc = -pc
	}
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}

	return c
}

// Apply writes the filtered form of cur into dst using the given filter type.
//
// cur and dst must have the same length and must not overlap. prev is the raw
// previous scanline; nil means an all-zero previous row. bpp is the filter
// delta in bytes, at least 1 (whole bytes per pixel, or 1 for sub-byte
// depths).
func Apply(ft format.FilterType, dst, cur, prev []byte, bpp int) error {
	if !ft.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidFilterType, ft)
	}
	if len(dst) != len(cur) {
		return fmt.Errorf("%w: dst %d bytes, cur %d bytes", errs.ErrRowLengthMismatch, len(dst), len(cur))
	}
	if prev != nil && len(prev) != len(cur) {
		return fmt.Errorf("%w: prev %d bytes, cur %d bytes", errs.ErrRowLengthMismatch, len(prev), len(cur))
	}

	switch ft {
	case format.FilterNone:
		copy(dst, cur)
	case format.FilterSub:
		applySub(dst, cur, bpp)
	case format.FilterUp:
		applyUp(dst, cur, prev)
	case format.FilterAverage:
		applyAverage(dst, cur, prev, bpp)
	case format.FilterPaeth:
		applyPaeth(dst, cur, prev, bpp)
	}

	return nil
}

func applySub(dst, cur []byte, bpp int) {
	n := min(len(cur), bpp)
	copy(dst[:n], cur[:n])
	for i := bpp; i < len(cur); i++ {
		dst[i] = cur[i] - cur[i-bpp]
	}
}

func applyUp(dst, cur, prev []byte) {
	if prev == nil {
		copy(dst, cur)
		return
	}
	for i := range cur {
		dst[i] = cur[i] - prev[i]
	}
}

func applyAverage(dst, cur, prev []byte, bpp int) {
	for i := range cur {
		var left, above int
		if i >= bpp {
			left = int(cur[i-bpp])
		}
		if prev != nil {
			above = int(prev[i])
		}
		dst[i] = cur[i] - uint8((left+above)/2)
	}
}

func applyPaeth(dst, cur, prev []byte, bpp int) {
	for i := range cur {
		var left, above, upperLeft uint8
		if i >= bpp {
			left = cur[i-bpp]
		}
		if prev != nil {
			above = prev[i]
			if i >= bpp {
				upperLeft = prev[i-bpp]
			}
		}
		dst[i] = cur[i] - paeth(left, above, upperLeft)
	}
}

// Unfilter reconstructs the raw scanline from a filtered one, in place.
// row holds the residual bytes on entry and the raw bytes on return. prev is
// the raw previous scanline (nil for the first row).
func Unfilter(ft format.FilterType, row, prev []byte, bpp int) error {
	if !ft.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidFilterType, ft)
	}
	if prev != nil && len(prev) != len(row) {
		return fmt.Errorf("%w: prev %d bytes, row %d bytes", errs.ErrRowLengthMismatch, len(prev), len(row))
	}

	switch ft {
	case format.FilterNone:
		// Raw already.
	case format.FilterSub:
		for i := bpp; i < len(row); i++ {
			row[i] += row[i-bpp]
		}
	case format.FilterUp:
		if prev != nil {
			for i := range row {
				row[i] += prev[i]
			}
		}
	case format.FilterAverage:
		for i := range row {
			var left, above int
			if i >= bpp {
				left = int(row[i-bpp])
			}
			if prev != nil {
				above = int(prev[i])
			}
			row[i] += uint8((left + above) / 2)
		}
	case format.FilterPaeth:
		for i := range row {
			var left, above, upperLeft uint8
			if i >= bpp {
				left = row[i-bpp]
			}
			if prev != nil {
				above = prev[i]
				if i >= bpp {
					upperLeft = prev[i-bpp]
				}
			}
			row[i] += paeth(left, above, upperLeft)
		}
	}

	return nil
}
