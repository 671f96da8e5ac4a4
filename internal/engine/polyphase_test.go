package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fifo-resampler/internal/fixedpoint"
	"github.com/tphakala/go-fifo-resampler/internal/pipeline"
	"github.com/tphakala/go-fifo-resampler/internal/testutil"
)

const testBlock = 1024

func q15(t *testing.T, taps ...float64) []int32 {
	t.Helper()
	fixed, err := fixedpoint.Convert(taps, fixedpoint.Q15)
	require.NoError(t, err)
	return fixed
}

func newPool(t *testing.T) *pipeline.BufferPool {
	t.Helper()
	pool, err := pipeline.NewBufferPool(testBlock*2, 0)
	require.NoError(t, err)
	return pool
}

func push(t *testing.T, r *Resampler, pool *pipeline.BufferPool, samples []int16) {
	t.Helper()
	buf, err := pool.Allocate()
	require.NoError(t, err)
	require.NoError(t, buf.CopyFrom(samples))
	require.NoError(t, r.Push(buf))
}

// run pushes input block by block and drains output after every push.
func run(t *testing.T, r *Resampler, pool *pipeline.BufferPool, input []int16) []int16 {
	t.Helper()
	var output []int16
	out := make([]int16, testBlock)

	for start := 0; start < len(input); start += testBlock {
		end := min(start+testBlock, len(input))
		push(t, r, pool, input[start:end])
		for {
			n, err := r.Process(out)
			require.NoError(t, err)
			output = append(output, out[:n]...)
			if n < len(out) {
				break
			}
		}
	}
	return output
}

func TestNew_Validation(t *testing.T) {
	unit := q15(t, 1.0)

	tests := []struct {
		name          string
		taps          []int32
		interpolation int
		decimation    int
		wantErr       error
	}{
		{"Zero decimation", unit, 1, 0, ErrInvalidFactor},
		{"Negative decimation", unit, 1, -2, ErrInvalidFactor},
		{"Zero interpolation", unit, 0, 1, ErrInvalidFactor},
		{"No taps", nil, 1, 1, ErrInvalidTaps},
		{"Tap too large", []int32{maxTapMagnitude + 1}, 1, 1, ErrInvalidTaps},
		{"Too many taps", make([]int32, MaxTaps+1), 1, 1, ErrInvalidTaps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.taps, tt.interpolation, tt.decimation)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_Decomposition(t *testing.T) {
	taps := []int32{1, 2, 3, 4, 5}
	r, err := New(taps, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, r.TapsPerPhase())
	assert.Equal(t, 2, r.Latency())
	// Phase 0 holds h[0], h[2], h[4]; phase 1 holds h[1], h[3] plus padding.
	// Both are stored reversed.
	assert.Equal(t, []float64{5, 3, 1}, r.phases[0])
	assert.Equal(t, []float64{0, 4, 2}, r.phases[1])

	in, dec := r.Ratio()
	assert.Equal(t, 2, in)
	assert.Equal(t, 1, dec)
}

func TestProcess_IdentityUnitRatio(t *testing.T) {
	r, err := New(q15(t, 1.0), 1, 1)
	require.NoError(t, err)
	pool := newPool(t)

	input := testutil.Ramp(3000)
	output := run(t, r, pool, input)

	assert.Equal(t, input, output)
	assert.Equal(t, 0, pool.Outstanding(), "drained buffers must be released")
}

func TestProcess_DecimateByTwo(t *testing.T) {
	r, err := New(q15(t, 1.0), 1, 2)
	require.NoError(t, err)
	pool := newPool(t)

	input := testutil.Ramp(4096)
	output := run(t, r, pool, input)

	require.Len(t, output, 2048)
	for m, y := range output {
		require.Equal(t, input[2*m], y, "output %d", m)
	}
}

func TestProcess_DecimateByThreeAcrossBlocks(t *testing.T) {
	r, err := New(q15(t, 1.0), 1, 3)
	require.NoError(t, err)

	input := testutil.Ramp(3 * testBlock)
	output := run(t, r, newPool(t), input)

	require.Len(t, output, testBlock)
	for m, y := range output {
		require.Equal(t, input[3*m], y, "output %d", m)
	}
}

func TestProcess_InterpolateHold(t *testing.T) {
	// Two unit taps at the doubled rate form a zero-order hold.
	r, err := New(q15(t, 1.0, 1.0), 2, 1)
	require.NoError(t, err)

	input := testutil.Ramp(2 * testBlock)
	output := run(t, r, newPool(t), input)

	require.Len(t, output, 4*testBlock)
	for m, y := range output {
		require.Equal(t, input[m/2], y, "output %d", m)
	}
}

func TestProcess_RationalCount(t *testing.T) {
	r, err := New(q15(t, 1.0, 1.0, 1.0), 3, 2)
	require.NoError(t, err)

	output := run(t, r, newPool(t), testutil.Ramp(4096))
	// Outputs exist for every m with floor(2m/3) <= 4095.
	assert.Len(t, output, 6144)
}

func TestProcess_FixedPointFloor(t *testing.T) {
	r, err := New(q15(t, 0.5, 0.5), 1, 1)
	require.NoError(t, err)
	pool := newPool(t)

	push(t, r, pool, []int16{10, 20, -5, -6})
	out := make([]int16, 8)
	n, err := r.Process(out)
	require.NoError(t, err)

	// (x[n] + x[n-1]) / 2 rounded toward negative infinity.
	assert.Equal(t, []int16{5, 15, 7, -6}, out[:n])
}

func TestProcess_Saturates(t *testing.T) {
	r, err := New(q15(t, 2.0), 1, 1)
	require.NoError(t, err)
	pool := newPool(t)

	push(t, r, pool, []int16{20000, -20000, 100})
	out := make([]int16, 3)
	n, err := r.Process(out)
	require.NoError(t, err)

	assert.Equal(t, []int16{32767, -32768, 200}, out[:n])
}

func TestProcess_StopsWhenQueueDry(t *testing.T) {
	r, err := New(q15(t, 1.0), 1, 1)
	require.NoError(t, err)

	out := make([]int16, 16)
	n, err := r.Process(out)
	require.NoError(t, err)
	assert.Zero(t, n, "no input means no output")

	push(t, r, newPool(t), []int16{1, 2, 3})
	n, err = r.Process(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	in, produced := r.Stats()
	assert.Equal(t, int64(3), in)
	assert.Equal(t, int64(3), produced)
}

func TestFull_HighWater(t *testing.T) {
	r, err := New(q15(t, 1.0, 1.0, 1.0, 1.0), 4, 1, WithHighWater(testBlock))
	require.NoError(t, err)
	pool := newPool(t)
	out := make([]int16, testBlock)

	assert.False(t, r.Full())
	push(t, r, pool, testutil.Ramp(testBlock))
	assert.True(t, r.Full())

	// x4 interpolation consumes a quarter block per output block.
	n, err := r.Process(out)
	require.NoError(t, err)
	assert.Equal(t, testBlock, n)
	assert.Equal(t, testBlock-testBlock/4, r.Pending())
	assert.False(t, r.Full())
}

func TestClose_ReleasesQueue(t *testing.T) {
	r, err := New(q15(t, 1.0), 1, 1)
	require.NoError(t, err)
	pool := newPool(t)

	push(t, r, pool, testutil.Ramp(100))
	push(t, r, pool, testutil.Ramp(100))
	assert.Equal(t, 2, pool.Outstanding())

	require.NoError(t, r.Close())
	assert.Equal(t, 0, pool.Outstanding())
	require.NoError(t, r.Close(), "close is idempotent")

	_, err = r.Process(make([]int16, 4))
	require.ErrorIs(t, err, ErrClosed)

	buf, err := pool.Allocate()
	require.NoError(t, err)
	require.ErrorIs(t, r.Push(buf), ErrClosed)
	assert.Equal(t, 0, pool.Outstanding(), "rejected buffer is released")
}

func TestPush_Nil(t *testing.T) {
	r, err := New(q15(t, 1.0), 1, 1)
	require.NoError(t, err)
	require.ErrorIs(t, r.Push(nil), pipeline.ErrInvariant)
}

func TestReset(t *testing.T) {
	r, err := New(q15(t, 0.5, 0.5), 1, 1)
	require.NoError(t, err)
	pool := newPool(t)
	input := testutil.Ramp(500)

	first := run(t, r, pool, input)
	push(t, r, pool, testutil.Ramp(10))
	r.Reset()
	assert.Equal(t, 0, pool.Outstanding())
	assert.Zero(t, r.Pending())

	second := run(t, r, pool, input)
	assert.Equal(t, first, second)
}
