package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/pngpack/errs"
)

// row returns a rowBytes-long row filled with the row's index value.
func row(index, rowBytes int) []byte {
	r := make([]byte, rowBytes)
	for i := range r {
		r[i] = byte(index)
	}

	return r
}

func TestChunker_PackBoundaries(t *testing.T) {
	c := newChunker(4, 3, 10)

	var packs []*pack
	for i := 0; i < 10; i++ {
		p, err := c.submit(row(i, 3))
		require.NoError(t, err)
		if p != nil {
			packs = append(packs, p)
		}
	}

	require.Len(t, packs, 3)

	assert.Equal(t, uint64(0), packs[0].seq)
	assert.Equal(t, 4, packs[0].rows)
	assert.False(t, packs[0].last)
	assert.Nil(t, packs[0].boundary, "first pack has no previous row")

	assert.Equal(t, uint64(1), packs[1].seq)
	assert.Equal(t, 4, packs[1].rows)
	assert.False(t, packs[1].last)
	assert.Equal(t, row(3, 3), packs[1].boundary)

	// the short final pack is marked last as soon as the final row arrives
	assert.Equal(t, uint64(2), packs[2].seq)
	assert.Equal(t, 2, packs[2].rows)
	assert.True(t, packs[2].last)
	assert.Equal(t, row(7, 3), packs[2].boundary)

	p, err := c.finish()
	require.NoError(t, err)
	assert.Nil(t, p, "final pack was already sealed")
}

func TestChunker_ExactPackMultiple(t *testing.T) {
	c := newChunker(4, 2, 8)

	var packs []*pack
	for i := 0; i < 8; i++ {
		p, err := c.submit(row(i, 2))
		require.NoError(t, err)
		if p != nil {
			packs = append(packs, p)
		}
	}

	require.Len(t, packs, 2)
	assert.False(t, packs[0].last)
	assert.True(t, packs[1].last, "a full pack holding the final row is the last pack")

	p, err := c.finish()
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestChunker_OversizedPackFallsBackToOne(t *testing.T) {
	c := newChunker(100, 2, 5)

	var sealed *pack
	for i := 0; i < 5; i++ {
		p, err := c.submit(row(i, 2))
		require.NoError(t, err)
		if p != nil {
			require.Nil(t, sealed, "expected a single pack")
			sealed = p
		}
	}

	require.NotNil(t, sealed)
	assert.Equal(t, uint64(0), sealed.seq)
	assert.Equal(t, 5, sealed.rows)
	assert.True(t, sealed.last)
}

func TestChunker_PackRawLayout(t *testing.T) {
	c := newChunker(3, 2, 3)

	var sealed *pack
	for i := 0; i < 3; i++ {
		p, err := c.submit([]byte{byte(i), byte(i * 10)})
		require.NoError(t, err)
		if p != nil {
			sealed = p
		}
	}

	require.NotNil(t, sealed)
	assert.Equal(t, []byte{0, 0, 1, 10, 2, 20}, sealed.raw.Bytes(), "rows are stored back to back")
}

func TestChunker_BoundaryIsSnapshot(t *testing.T) {
	c := newChunker(2, 2, 4)

	mutable := []byte{1, 2}
	_, err := c.submit([]byte{0, 0})
	require.NoError(t, err)
	p0, err := c.submit(mutable)
	require.NoError(t, err)
	require.NotNil(t, p0)

	// callers may reuse their row buffer after submit returns
	mutable[0] = 99
	mutable[1] = 99
	p0.release()

	mid, err := c.submit([]byte{3, 3})
	require.NoError(t, err)
	require.Nil(t, mid)
	p1, err := c.submit([]byte{4, 4})
	require.NoError(t, err)
	require.NotNil(t, p1)

	assert.Equal(t, []byte{1, 2}, p1.boundary)
}

func TestChunker_RowLengthMismatch(t *testing.T) {
	c := newChunker(2, 3, 4)

	_, err := c.submit([]byte{1, 2})
	require.ErrorIs(t, err, errs.ErrRowLengthMismatch)
	require.ErrorIs(t, err, errs.ErrConfig)

	// the bad row was rejected without consuming a slot
	p, err := c.submit(row(0, 3))
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestChunker_TooManyRows(t *testing.T) {
	c := newChunker(2, 1, 2)

	_, err := c.submit(row(0, 1))
	require.NoError(t, err)
	p, err := c.submit(row(1, 1))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.last)

	_, err = c.submit(row(2, 1))
	require.ErrorIs(t, err, errs.ErrTooManyRows)
}

func TestChunker_MissingRows(t *testing.T) {
	c := newChunker(4, 1, 10)

	for i := 0; i < 3; i++ {
		_, err := c.submit(row(i, 1))
		require.NoError(t, err)
	}

	_, err := c.finish()
	require.ErrorIs(t, err, errs.ErrMissingRows)
}

func TestChunker_ZeroRows(t *testing.T) {
	c := newChunker(4, 3, 0)

	p, err := c.finish()
	require.NoError(t, err)
	require.NotNil(t, p, "a zero-row stream still needs one final pack")
	assert.Equal(t, uint64(0), p.seq)
	assert.Zero(t, p.rows)
	assert.True(t, p.last)
	assert.Zero(t, p.raw.Len())
}

func TestPack_ReleaseIsIdempotent(t *testing.T) {
	c := newChunker(1, 1, 1)

	p, err := c.submit(row(0, 1))
	require.NoError(t, err)
	require.NotNil(t, p)

	p.release()
	assert.Nil(t, p.raw)
	p.release()
}
