package resampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fifo-resampler/internal/pcm"
	"github.com/tphakala/go-fifo-resampler/internal/testutil"
)

func TestResampleSamples_Counts(t *testing.T) {
	tests := []struct {
		name          string
		interpolation int
		decimation    int
		taps          []float64
		inputLen      int
		wantLen       int
	}{
		{"Identity", 1, 1, []float64{1}, 3000, 3000},
		{"Decimate by 2", 1, 2, []float64{1}, 4096, 2048},
		{"Decimate by 3, ragged", 1, 3, []float64{1}, 1000, 334},
		{"Interpolate by 2", 2, 1, []float64{1, 1}, 1500, 3000},
		{"Rational 3/2", 3, 2, []float64{1, 1, 1}, 4096, 6144},
		{"Rational 2/3", 2, 3, []float64{1, 1}, 3000, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Interpolation: tt.interpolation,
				Decimation:    tt.decimation,
				Taps:          tt.taps,
			}
			out, err := ResampleSamples(cfg, testutil.Ramp(tt.inputLen))
			require.NoError(t, err)
			assert.Len(t, out, tt.wantLen)
		})
	}
}

func TestResampleSamples_MatchesStream(t *testing.T) {
	// Decimation drains every block, so a stream loses nothing at end of input.
	input := testutil.Ramp(8192)
	cfg := &Config{Interpolation: 1, Decimation: 4, Taps: []float64{0.25, 0.25, 0.25, 0.25}}

	batch, err := ResampleSamples(cfg, input)
	require.NoError(t, err)

	streamed, _ := runStream(t, cfg, input)
	assert.Equal(t, batch, streamed)
}

func TestResampleSamples_DCBlocker(t *testing.T) {
	cfg := &Config{Interpolation: 1, Decimation: 1, Taps: []float64{1}, DCBlocker: true, BlockSamples: 100}

	out, err := ResampleSamples(cfg, testutil.Constant(5000, -2000))
	require.NoError(t, err)

	require.Len(t, out, 5000)
	assert.Equal(t, int16(-2000), out[0])
	testutil.AssertDecaysToward(t, out)
}

func TestResampleSamples_Empty(t *testing.T) {
	out, err := ResampleSamples(&Config{Interpolation: 1, Decimation: 1, Taps: []float64{1}}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestResampleSamples_InvalidConfig(t *testing.T) {
	_, err := ResampleSamples(&Config{Interpolation: 1, Decimation: 0, Taps: []float64{1}}, []int16{1})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResampleBytes(t *testing.T) {
	input := testutil.Ramp(256)
	cfg := &Config{Interpolation: 1, Decimation: 1, Taps: []float64{1}}

	out, err := ResampleBytes(cfg, pcm.Encode(input))
	require.NoError(t, err)
	assert.Equal(t, pcm.Encode(input), out)

	_, err = ResampleBytes(cfg, []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvariant)
}
