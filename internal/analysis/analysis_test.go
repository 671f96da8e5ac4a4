package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fifo-resampler/internal/fixedpoint"
	"github.com/tphakala/go-fifo-resampler/internal/testutil"
)

func TestAnalyze_Identity(t *testing.T) {
	r, err := Analyze([]float64{1.0}, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, r.Taps)
	assert.Equal(t, []int32{32768}, r.Quantized)
	assert.Equal(t, []float64{1.0}, r.PhaseGains)
	assert.InDelta(t, 1.0, r.DCGain, 0)
	assert.InDelta(t, 0.0, r.MaxQuantError, 0)
	assert.False(t, r.ClippedGain)
}

func TestAnalyze_PhaseGains(t *testing.T) {
	// Branch 0: 0.5 + 0.5, branch 1: 0.25 + 0.75.
	taps := []float64{0.5, 0.25, 0.5, 0.75}

	r, err := Analyze(taps, 2)
	require.NoError(t, err)

	require.Len(t, r.PhaseGains, 2)
	assert.InDelta(t, 1.0, r.PhaseGains[0], 0)
	assert.InDelta(t, 1.0, r.PhaseGains[1], 0)
	assert.InDelta(t, 1.0, r.DCGain, 0)
	assert.False(t, r.ClippedGain)
}

func TestAnalyze_QuantizationError(t *testing.T) {
	taps := []float64{0.3, -0.3, 0.123456}

	r, err := Analyze(taps, 1)
	require.NoError(t, err)

	lsb := 1 / fixedpoint.Scale(fixedpoint.Q15)
	assert.Positive(t, r.MaxQuantError)
	assert.Less(t, r.MaxQuantError, lsb)
	testutil.AssertInRange(t, r.DCGain, 0.123456-3*lsb, 0.123456+3*lsb)
}

func TestAnalyze_ClippedGain(t *testing.T) {
	r, err := Analyze([]float64{0.75, 0.5}, 1)
	require.NoError(t, err)
	assert.True(t, r.ClippedGain)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := Analyze(nil, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Analyze([]float64{1}, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Analyze([]float64{1e6}, 1)
	require.ErrorIs(t, err, fixedpoint.ErrOutOfRange)
}

func TestMagnitudeResponse_MovingAverage(t *testing.T) {
	// Two-tap average: unity at DC, a null at half the sample rate.
	resp, err := MagnitudeResponse([]float64{0.5, 0.5}, 0, 1)
	require.NoError(t, err)

	require.Len(t, resp.Freqs, minFFTSize/2+1)
	assert.InDelta(t, 0.0, resp.Freqs[0], 0)
	assert.InDelta(t, 0.5, resp.Freqs[len(resp.Freqs)-1], 1e-12)

	assert.InDelta(t, 0.0, resp.At(0), 1e-9)
	assert.InDelta(t, -3.0103, resp.At(0.25), 1e-3)
	assert.Less(t, resp.At(0.5), -200.0)

	testutil.AssertNoNaNOrInf(t, resp.DB)
	testutil.AssertMonotonic(t, reversed(resp.DB))
}

func TestMagnitudeResponse_Scale(t *testing.T) {
	// A hold filter for interpolation by two has DC gain 2.
	resp, err := MagnitudeResponse([]float64{1, 1}, 1024, 2)
	require.NoError(t, err)

	assert.Len(t, resp.Freqs, 1024/2+1)
	assert.InDelta(t, 0.0, resp.At(0), 1e-9)
}

func TestMagnitudeResponse_Errors(t *testing.T) {
	_, err := MagnitudeResponse(nil, 0, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = MagnitudeResponse([]float64{1}, 0, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func reversed(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
