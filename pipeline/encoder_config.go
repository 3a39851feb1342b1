package pipeline

import (
	"fmt"
	"runtime"

	"github.com/arloliu/pngpack/chunk"
	"github.com/arloliu/pngpack/compress"
	"github.com/arloliu/pngpack/endian"
	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
	"github.com/arloliu/pngpack/internal/options"
)

const (
	// DefaultPackSizeRows is the default number of rows per pack. Large
	// enough that per-pack window resets cost little ratio, small enough to
	// spread typical images across all workers.
	DefaultPackSizeRows = 64

	// DefaultMaxChunkPayloadLen is the default ceiling for one data chunk's
	// payload.
	DefaultMaxChunkPayloadLen = 512 * 1024

	// defaultInFlightMultiplier scales the thread count into the in-flight
	// pack cap. Keeps every worker busy while bounding resident pack memory.
	defaultInFlightMultiplier = 4
)

// EncoderConfig holds one encode session's settings. It is immutable once
// the session starts; every option is validated when applied.
type EncoderConfig struct {
	packSizeRows    int
	threadCount     int
	level           format.CompressionLevel
	filterMode      format.FilterMode
	fixedFilter     format.FilterType
	maxChunkPayload int
	inflightMult    int
	engine          endian.EndianEngine

	// newCodec builds one codec per worker. Tests swap it to inject codec
	// failures; everyone else gets the deflate codec for the configured level.
	newCodec func() (compress.Codec, error)
}

// NewEncoderConfig creates a configuration with the default settings:
// adaptive filtering, default compression level, one worker per available
// CPU.
func NewEncoderConfig() *EncoderConfig {
	cfg := &EncoderConfig{
		packSizeRows:    DefaultPackSizeRows,
		threadCount:     runtime.GOMAXPROCS(0),
		level:           format.LevelDefault,
		filterMode:      format.FilterModeAdaptive,
		fixedFilter:     format.FilterNone,
		maxChunkPayload: DefaultMaxChunkPayloadLen,
		inflightMult:    defaultInFlightMultiplier,
		engine:          endian.GetBigEndianEngine(),
	}

	cfg.newCodec = func() (compress.Codec, error) {
		return compress.CreateCodec(cfg.level)
	}

	return cfg
}

// Configuration setter methods, one per option.

func (c *EncoderConfig) setPackSizeRows(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidPackSize, n)
	}
	c.packSizeRows = n

	return nil
}

func (c *EncoderConfig) setThreadCount(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidThreadCount, n)
	}
	c.threadCount = n

	return nil
}

func (c *EncoderConfig) setCompressionLevel(level format.CompressionLevel) error {
	if !level.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidCompressionLevel, level)
	}
	c.level = level

	return nil
}

func (c *EncoderConfig) setFilterMode(mode format.FilterMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidFilterMode, mode)
	}
	c.filterMode = mode

	return nil
}

func (c *EncoderConfig) setFixedFilter(ft format.FilterType) error {
	if !ft.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidFilterType, ft)
	}
	c.filterMode = format.FilterModeFixed
	c.fixedFilter = ft

	return nil
}

func (c *EncoderConfig) setMaxChunkPayloadLen(n int) error {
	if n <= 0 || n > chunk.MaxPayloadLen {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidChunkPayloadLen, n)
	}
	c.maxChunkPayload = n

	return nil
}

func (c *EncoderConfig) setInFlightMultiplier(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidInFlightLimit, n)
	}
	c.inflightMult = n

	return nil
}

// EncoderOption represents a functional option for configuring an encode
// session. It is a type alias for the generic Option interface specialized
// for EncoderConfig.
type EncoderOption = options.Option[*EncoderConfig]

// WithPackSizeRows sets how many rows each pack holds. Larger packs compress
// slightly better; smaller packs parallelize finer.
func WithPackSizeRows(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setPackSizeRows(n)
	})
}

// WithThreadCount sets the number of worker goroutines. The default is the
// available parallelism.
func WithThreadCount(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setThreadCount(n)
	})
}

// WithCompressionLevel sets the deflate effort level.
func WithCompressionLevel(level format.CompressionLevel) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setCompressionLevel(level)
	})
}

// WithFilterMode selects between adaptive per-row filter choice and a fixed
// filter. It is the default option with FilterModeAdaptive.
func WithFilterMode(mode format.FilterMode) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setFilterMode(mode)
	})
}

// WithFixedFilter applies one filter type to every row, implying fixed
// filter mode.
func WithFixedFilter(ft format.FilterType) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setFixedFilter(ft)
	})
}

// WithMaxChunkPayloadLen caps a single data chunk's payload size. Compressed
// output larger than the cap is split across consecutive chunks.
func WithMaxChunkPayloadLen(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setMaxChunkPayloadLen(n)
	})
}

// WithInFlightMultiplier scales the thread count into the in-flight pack cap
// that backpressures row submission. It rarely needs tuning.
func WithInFlightMultiplier(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setInFlightMultiplier(n)
	})
}
