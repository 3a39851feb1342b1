package pipeline

import (
	"fmt"

	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/internal/pool"
)

// pack is one row-group travelling through the pipeline.
//
// A pack is exclusively owned by one stage at a time: the chunker fills it,
// exactly one worker task filters and compresses it, and the worker releases
// its raw buffer once the compressed result is handed to the reassembler.
type pack struct {
	seq  uint64
	rows int
	last bool

	// raw holds the pack's scanlines back to back, rows*rowBytes in total.
	raw *pool.ByteBuffer

	// boundary is a read-only snapshot of the previous pack's final raw row,
	// nil for the first pack. It is never written after creation, so the
	// previous pack's task and this one never synchronize.
	boundary []byte
}

// release returns the raw buffer to the pack pool. Safe to call twice.
func (p *pack) release() {
	if p.raw != nil {
		pool.PutPackBuffer(p.raw)
		p.raw = nil
	}
}

// chunker partitions the incoming row stream into packs of packRows rows,
// assigning sequence ids from 0. The total row count is fixed up front, so
// the pack containing the final row is marked last as soon as that row
// arrives; only a zero-row stream needs an explicit empty final pack from
// finish to terminate the compressed stream.
type chunker struct {
	packRows  int
	rowBytes  int
	totalRows int

	seq      uint64
	received int
	curRows  int
	cur      *pool.ByteBuffer
	boundary []byte
	done     bool
}

func newChunker(packRows, rowBytes, totalRows int) *chunker {
	return &chunker{
		packRows:  packRows,
		rowBytes:  rowBytes,
		totalRows: totalRows,
		cur:       pool.GetPackBuffer(),
	}
}

// submit appends one raw row and returns the completed pack when the row
// fills the pack quota or is the stream's final row, nil otherwise.
func (c *chunker) submit(row []byte) (*pack, error) {
	if len(row) != c.rowBytes {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrRowLengthMismatch, len(row), c.rowBytes)
	}

	if c.received >= c.totalRows {
		return nil, fmt.Errorf("%w: height is %d", errs.ErrTooManyRows, c.totalRows)
	}

	c.cur.MustWrite(row)
	c.curRows++
	c.received++

	if c.curRows < c.packRows && c.received < c.totalRows {
		return nil, nil
	}

	return c.seal(), nil
}

// seal closes the accumulating pack and prepares the next one. The boundary
// row handed forward is a fresh copy: the sealed pack's raw buffer goes to a
// worker and returns to the pool, so the snapshot must not alias it.
func (c *chunker) seal() *pack {
	last := c.received == c.totalRows

	p := &pack{
		seq:      c.seq,
		rows:     c.curRows,
		last:     last,
		raw:      c.cur,
		boundary: c.boundary,
	}

	if last {
		c.done = true
		c.cur = nil
		c.boundary = nil
	} else {
		raw := c.cur.Bytes()
		c.boundary = append([]byte(nil), raw[len(raw)-c.rowBytes:]...)
		c.cur = pool.GetPackBuffer()
	}

	c.seq++
	c.curRows = 0

	return p
}

// finish reports end of input. For a zero-row stream it produces a single
// empty final pack so the compressed stream still terminates; otherwise the
// final pack was already sealed by submit and finish returns nil. Fails when
// rows are still outstanding.
func (c *chunker) finish() (*pack, error) {
	if c.done {
		return nil, nil
	}

	if c.received < c.totalRows {
		pool.PutPackBuffer(c.cur)
		c.cur = nil

		return nil, fmt.Errorf("%w: received %d of %d rows", errs.ErrMissingRows, c.received, c.totalRows)
	}

	c.done = true
	p := &pack{seq: c.seq, rows: 0, last: true, raw: c.cur, boundary: c.boundary}
	c.seq++
	c.cur = nil
	c.boundary = nil

	return p, nil
}
