package pipeline

import (
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pngpack/chunk"
	"github.com/arloliu/pngpack/errs"
	"github.com/arloliu/pngpack/format"
)

func TestNewEncoderConfig_Defaults(t *testing.T) {
	cfg := NewEncoderConfig()

	require.Equal(t, DefaultPackSizeRows, cfg.packSizeRows)
	require.Equal(t, runtime.GOMAXPROCS(0), cfg.threadCount)
	require.Equal(t, format.LevelDefault, cfg.level)
	require.Equal(t, format.FilterModeAdaptive, cfg.filterMode)
	require.Equal(t, format.FilterNone, cfg.fixedFilter)
	require.Equal(t, DefaultMaxChunkPayloadLen, cfg.maxChunkPayload)
	require.Equal(t, defaultInFlightMultiplier, cfg.inflightMult)
	require.NotNil(t, cfg.engine)
	require.NotNil(t, cfg.newCodec)

	codec, err := cfg.newCodec()
	require.NoError(t, err)
	require.NotNil(t, codec)
}

func TestEncoderConfig_CodecFollowsLevel(t *testing.T) {
	cfg := NewEncoderConfig()
	require.NoError(t, cfg.setCompressionLevel(format.LevelHigh))

	// the factory reads the level at build time, not at config time
	codec, err := cfg.newCodec()
	require.NoError(t, err)
	require.NotNil(t, codec)
}

func TestEncoderOptions_Valid(t *testing.T) {
	enc, err := NewEncoder(io.Discard,
		WithPackSizeRows(16),
		WithThreadCount(3),
		WithCompressionLevel(format.LevelHigh),
		WithMaxChunkPayloadLen(1024),
		WithInFlightMultiplier(2),
	)
	require.NoError(t, err)

	require.Equal(t, 16, enc.packSizeRows)
	require.Equal(t, 3, enc.threadCount)
	require.Equal(t, format.LevelHigh, enc.level)
	require.Equal(t, 1024, enc.maxChunkPayload)
	require.Equal(t, 2, enc.inflightMult)
}

func TestEncoderOptions_FixedFilterImpliesFixedMode(t *testing.T) {
	enc, err := NewEncoder(io.Discard, WithFixedFilter(format.FilterPaeth))
	require.NoError(t, err)

	require.Equal(t, format.FilterModeFixed, enc.filterMode)
	require.Equal(t, format.FilterPaeth, enc.fixedFilter)

	enc, err = NewEncoder(io.Discard, WithFilterMode(format.FilterModeAdaptive))
	require.NoError(t, err)
	require.Equal(t, format.FilterModeAdaptive, enc.filterMode)
}

func TestEncoderOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		opt     EncoderOption
		wantErr error
	}{
		{
			name:    "ZeroPackSize",
			opt:     WithPackSizeRows(0),
			wantErr: errs.ErrInvalidPackSize,
		},
		{
			name:    "NegativePackSize",
			opt:     WithPackSizeRows(-4),
			wantErr: errs.ErrInvalidPackSize,
		},
		{
			name:    "ZeroThreadCount",
			opt:     WithThreadCount(0),
			wantErr: errs.ErrInvalidThreadCount,
		},
		{
			name:    "UnknownCompressionLevel",
			opt:     WithCompressionLevel(format.CompressionLevel(0x7f)),
			wantErr: errs.ErrInvalidCompressionLevel,
		},
		{
			name:    "UnknownFilterMode",
			opt:     WithFilterMode(format.FilterMode(9)),
			wantErr: errs.ErrInvalidFilterMode,
		},
		{
			name:    "UnknownFilterType",
			opt:     WithFixedFilter(format.FilterType(7)),
			wantErr: errs.ErrInvalidFilterType,
		},
		{
			name:    "ZeroChunkPayloadLen",
			opt:     WithMaxChunkPayloadLen(0),
			wantErr: errs.ErrInvalidChunkPayloadLen,
		},
		{
			name:    "OversizedChunkPayloadLen",
			opt:     WithMaxChunkPayloadLen(chunk.MaxPayloadLen + 1),
			wantErr: errs.ErrInvalidChunkPayloadLen,
		},
		{
			name:    "ZeroInFlightMultiplier",
			opt:     WithInFlightMultiplier(0),
			wantErr: errs.ErrInvalidInFlightLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncoder(io.Discard, tt.opt)
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, errs.ErrConfig)
			require.Nil(t, enc)
		})
	}
}
