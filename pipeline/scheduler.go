package pipeline

import (
	"context"
	"fmt"
	"hash/adler32"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/arloliu/pngpack/compress"
	"github.com/arloliu/pngpack/filter"
	"github.com/arloliu/pngpack/format"
	"github.com/arloliu/pngpack/internal/pool"
)

// schedState tracks the scheduler lifecycle. Draining is entered on end of
// input or on failure, and never returns to Running.
type schedState uint8

const (
	schedIdle schedState = iota
	schedRunning
	schedDraining
	schedFinished
)

// scheduler runs the bounded worker pool between the chunker and the
// reassembler.
//
// Every in-flight pack holds one slot of the semaphore-backed cap
// C = threadCount * inFlightMultiplier, acquired at dispatch and released
// when the reassembler retires the pack. dispatch therefore blocks the
// producer once C packs are outstanding, and a slow sink backpressures the
// whole pipeline. Workers filter and compress one pack per task with private
// per-worker filter and codec state; a single collector goroutine owns the
// reassembler and the sink.
//
// On the first failure the shared context is canceled: the producer stops
// dispatching, workers drain remaining queued packs without processing them,
// and completed results past the failure point are discarded. settle reports
// the first error once everything has stopped.
type scheduler struct {
	cfg      *EncoderConfig
	rowBytes int
	bpp      int

	inflight *semaphore.Weighted
	jobs     chan *pack
	results  chan packResult

	g      *errgroup.Group
	gctx   context.Context
	cancel context.CancelFunc

	reasm         *reassembler
	collectorDone chan struct{}
	collectorErr  error

	state      schedState
	settleOnce bool
	settleErr  error
}

func newScheduler(cfg *EncoderConfig, rowBytes, bpp int, reasm *reassembler) *scheduler {
	capC := cfg.threadCount * cfg.inflightMult

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	return &scheduler{
		cfg:      cfg,
		rowBytes: rowBytes,
		bpp:      bpp,
		inflight: semaphore.NewWeighted(int64(capC)),
		jobs:     make(chan *pack, capC),
		results:  make(chan packResult, capC),
		g:        g,
		gctx:     gctx,
		cancel:   cancel,
		reasm:    reasm,

		collectorDone: make(chan struct{}),
	}
}

// start launches the worker pool and the collector.
func (s *scheduler) start() {
	s.state = schedRunning

	for i := 0; i < s.cfg.threadCount; i++ {
		s.g.Go(s.workerLoop)
	}

	go s.collectorLoop()
}

// dispatch hands one pack to the pool, blocking while the in-flight cap is
// reached. It fails once the pipeline has been canceled; the pack is released
// and will never be emitted.
func (s *scheduler) dispatch(p *pack) error {
	if err := s.inflight.Acquire(s.gctx, 1); err != nil {
		p.release()
		return err
	}

	// Every in-flight pack holds a slot and jobs is sized to the cap, so
	// this send never blocks.
	s.jobs <- p

	return nil
}

// settle ends the stream: no further dispatch is permitted. It waits for the
// workers and the collector to stop and returns the first error the pipeline
// encountered, nil on a clean drain. Idempotent.
func (s *scheduler) settle() error {
	if s.settleOnce {
		return s.settleErr
	}
	s.settleOnce = true
	s.state = schedDraining

	close(s.jobs)
	workerErr := s.g.Wait()
	close(s.results)
	<-s.collectorDone
	s.cancel()

	s.state = schedFinished

	s.settleErr = workerErr
	if s.settleErr == nil {
		s.settleErr = s.collectorErr
	}

	return s.settleErr
}

// workerLoop filters and compresses packs until the jobs channel closes.
// After a pipeline failure it keeps draining the channel, releasing each
// pack's buffers and in-flight slot without processing it.
func (s *scheduler) workerLoop() error {
	codec, err := s.cfg.newCodec()
	if err != nil {
		return err
	}

	sel := filter.NewSelector(s.rowBytes, s.bpp)

	for p := range s.jobs {
		if s.gctx.Err() != nil {
			p.release()
			s.inflight.Release(1)

			continue
		}

		res, err := s.process(p, sel, codec)
		if err != nil {
			s.inflight.Release(1)
			return fmt.Errorf("pack %d: %w", p.seq, err)
		}

		// results is sized to the in-flight cap, so this send never blocks.
		s.results <- res
	}

	return nil
}

// process runs the per-pack task: filter every row, checksum the filtered
// bytes, compress them into a self-contained fragment. The pack's raw buffer
// and the filtered staging buffer are released before returning; only the
// fragment travels on.
func (s *scheduler) process(p *pack, sel *filter.Selector, codec compress.Codec) (packResult, error) {
	defer p.release()

	filtered := pool.GetPackBuffer()
	defer pool.PutPackBuffer(filtered)

	raw := p.raw.Bytes()
	prev := p.boundary

	for i := 0; i < p.rows; i++ {
		cur := raw[i*s.rowBytes : (i+1)*s.rowBytes]
		dst := filtered.ExtendOrGrow(1 + s.rowBytes)

		if s.cfg.filterMode == format.FilterModeFixed {
			dst[0] = byte(s.cfg.fixedFilter)
			if err := filter.Apply(s.cfg.fixedFilter, dst[1:], cur, prev, s.bpp); err != nil {
				return packResult{}, err
			}
		} else {
			ft, row := sel.Choose(cur, prev)
			dst[0] = byte(ft)
			copy(dst[1:], row)
		}

		prev = cur
	}

	fragment, err := codec.CompressPack(filtered.Bytes(), p.last)
	if err != nil {
		return packResult{}, err
	}

	return packResult{
		seq:      p.seq,
		fragment: fragment,
		adler:    adler32.Checksum(filtered.Bytes()),
		flen:     filtered.Len(),
		last:     p.last,
	}, nil
}

// collectorLoop is the single goroutine that touches the reassembler and,
// through it, the sink. It runs until the results channel closes, retiring
// one in-flight slot per consumed pack. After its own failure (sink write or
// sequence violation) it cancels the pipeline and discards every further
// result.
func (s *scheduler) collectorLoop() {
	defer close(s.collectorDone)
	defer s.reasm.close()

	var sticky error

	for res := range s.results {
		if sticky != nil {
			s.inflight.Release(1)
			continue
		}

		retired, err := s.reasm.accept(res)
		if retired > 0 {
			s.inflight.Release(int64(retired))
		}

		if err != nil {
			sticky = err
			s.cancel()

			if n := s.reasm.discardPending(); n > 0 {
				s.inflight.Release(int64(n))
			}
		}
	}

	// A worker failure leaves a sequence gap: whatever was waiting for the
	// missing pack is dead now.
	if n := s.reasm.discardPending(); n > 0 {
		s.inflight.Release(int64(n))
	}

	s.collectorErr = sticky
}
