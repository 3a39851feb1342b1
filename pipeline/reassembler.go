package pipeline

import (
	"fmt"

	"github.com/arloliu/pngpack/chunk"
	"github.com/arloliu/pngpack/compress"
	"github.com/arloliu/pngpack/endian"
	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
	"github.com/arloliu/pngpack/internal/pool"
)

// packResult is a worker's output for one pack: the deflate fragment plus the
// checksum and length of the filtered bytes that produced it. The raw and
// filtered buffers are already released by the time a result exists.
type packResult struct {
	seq      uint64
	fragment []byte
	adler    uint32
	flen     int
	last     bool
}

// reassembler restores sequence order over results completing in arbitrary
// order and emits the compressed stream as size-bounded data chunks.
//
// Ordering uses an explicit watermark plus pending map: next is the id of the
// pack that may be emitted now, pending holds completed packs with higher
// ids. No id below the watermark is ever stored; such an arrival, or a
// duplicate, is a sequence invariant violation.
//
// Emission accumulates the stream in a staging buffer: the 2-byte stream
// header before the first fragment, each fragment in watermark order, and the
// combined checksum trailer after the last. Full chunks of maxChunk bytes are
// cut as the buffer fills; the remainder stays staged so split points lose
// nothing and duplicate nothing. The running checksum combine also happens
// here, in emission order only, because completion order must never be
// observable in output.
type reassembler struct {
	cw       *chunk.Writer
	engine   endian.EndianEngine
	level    format.CompressionLevel
	maxChunk int

	next    uint64
	pending map[uint64]packResult

	payload  *pool.ByteBuffer
	adler    uint32
	started  bool
	finished bool

	stats compress.CompressionStats
}

func newReassembler(cw *chunk.Writer, engine endian.EndianEngine, level format.CompressionLevel, maxChunk int) *reassembler {
	return &reassembler{
		cw:       cw,
		engine:   engine,
		level:    level,
		maxChunk: maxChunk,
		pending:  make(map[uint64]packResult),
		payload:  pool.GetChunkBuffer(),
		adler:    1, // adler32 of the empty stream
		stats:    compress.CompressionStats{Level: level},
	}
}

// accept hands one completed pack to the reassembler. A result at the
// watermark is emitted immediately, then the pending map is drained for any
// contiguous successors; a result above the watermark is stored. The returned
// count is the number of packs this call consumed (emitted, or dead after a
// failure) so the scheduler can retire their in-flight slots.
//
// A result below the watermark or a duplicate id fails with
// errs.ErrSequence: both indicate a scheduler defect, not a recoverable
// condition.
func (r *reassembler) accept(res packResult) (int, error) {
	if res.seq < r.next {
		return 0, fmt.Errorf("%w: pack %d arrived after watermark %d", errs.ErrSequence, res.seq, r.next)
	}

	if _, dup := r.pending[res.seq]; dup {
		return 0, fmt.Errorf("%w: duplicate pack %d", errs.ErrSequence, res.seq)
	}

	if res.seq > r.next {
		r.pending[res.seq] = res
		return 0, nil
	}

	retired := 0
	for {
		retired++
		if err := r.emit(res); err != nil {
			return retired, err
		}
		r.next++

		succ, ok := r.pending[r.next]
		if !ok {
			return retired, nil
		}
		delete(r.pending, r.next)
		res = succ
	}
}

// emit appends one pack's fragment to the staged stream and flushes whatever
// full chunks that produced. The final pack also appends the stream trailer
// and flushes everything left.
func (r *reassembler) emit(res packResult) error {
	if !r.started {
		hdr := chunk.ZlibHeader(r.level)
		r.payload.MustWrite(hdr[:])
		r.started = true
	}

	r.payload.MustWrite(res.fragment)
	r.adler = chunk.CombineAdler32(r.adler, res.adler, res.flen)

	r.stats.OriginalSize += int64(res.flen)
	r.stats.Packs++

	if res.last {
		trailer := r.payload.ExtendOrGrow(4)
		r.engine.PutUint32(trailer, r.adler)
		r.finished = true
	}

	return r.flush(res.last)
}

// flush cuts full maxChunk-sized chunks out of the staged stream, plus the
// final partial chunk when the stream is complete, and shifts any remainder
// to the front of the staging buffer.
func (r *reassembler) flush(final bool) error {
	data := r.payload.Bytes()
	off := 0

	for len(data)-off >= r.maxChunk {
		if err := r.writeChunk(data[off : off+r.maxChunk]); err != nil {
			return err
		}
		off += r.maxChunk
	}

	if final && off < len(data) {
		if err := r.writeChunk(data[off:]); err != nil {
			return err
		}
		off = len(data)
	}

	if off > 0 {
		rest := data[off:]
		r.payload.Reset()
		r.payload.MustWrite(rest)
	}

	return nil
}

func (r *reassembler) writeChunk(payload []byte) error {
	r.stats.CompressedSize += int64(len(payload))

	return r.cw.WriteData(payload)
}

// discardPending drops every stored result and returns how many there were.
// Called once the pipeline has failed and the stream will not be completed.
func (r *reassembler) discardPending() int {
	n := len(r.pending)
	clear(r.pending)

	return n
}

// close releases the staging buffer. The reassembler is unusable afterwards.
func (r *reassembler) close() {
	if r.payload != nil {
		pool.PutChunkBuffer(r.payload)
		r.payload = nil
	}
}
