package filter

import (
	"github.com/arloliu/pngpack/format"
)

// candidateOrder is the tie-break priority for equal-cost filters.
// The first candidate at the minimum cost wins, so earlier entries are
// preferred.
var candidateOrder = [5]format.FilterType{
	format.FilterNone,
	format.FilterSub,
	format.FilterUp,
	format.FilterAverage,
	format.FilterPaeth,
}

// Selector picks a filter per scanline using the minimum sum of absolute
// differences heuristic. It owns scratch buffers for the candidate rows, so
// one Selector serves one goroutine at a time.
type Selector struct {
	rowBytes int
	bpp      int
	scratch  [5][]byte
}

// NewSelector creates a Selector for scanlines of rowBytes bytes with the
// given filter delta bpp.
func NewSelector(rowBytes, bpp int) *Selector {
	s := &Selector{rowBytes: rowBytes, bpp: bpp}
	for i := range s.scratch {
		s.scratch[i] = make([]byte, rowBytes)
	}

	return s
}

// Choose filters cur under all five candidates and returns the winning type
// together with its residual bytes.
//
// The returned slice aliases the Selector's scratch (or cur itself when None
// wins) and is only valid until the next Choose call; callers copy it into
// their own storage. prev is the raw previous scanline, nil for the first row
// of the image.
func (s *Selector) Choose(cur, prev []byte) (format.FilterType, []byte) {
	best := format.FilterNone
	bestRow := cur
	bestCost := sumAbsSigned(cur)

	for _, ft := range candidateOrder[1:] {
		dst := s.scratch[ft]
		switch ft {
		case format.FilterSub:
			applySub(dst, cur, s.bpp)
		case format.FilterUp:
			applyUp(dst, cur, prev)
		case format.FilterAverage:
			applyAverage(dst, cur, prev, s.bpp)
		case format.FilterPaeth:
			applyPaeth(dst, cur, prev, s.bpp)
		}

		// Strict less keeps the earliest candidate on ties.
		if cost := sumAbsSigned(dst); cost < bestCost {
			best = ft
			bestRow = dst
			bestCost = cost
		}
	}

	return best, bestRow
}

// sumAbsSigned scores a residual row: each byte is interpreted as a signed
// 8-bit value and its magnitude accumulated. Rows whose residuals cluster
// near zero compress better under deflate.
func sumAbsSigned(row []byte) int {
	cost := 0
	for _, b := range row {
		if b < 128 {
			cost += int(b)
		} else {
			cost += 256 - int(b)
		}
	}

	return cost
}
