// Package engine implements a fixed-point rational polyphase FIR resampler
// that satisfies the pipeline's Resampler contract.
//
// A prototype filter h of N Q15 taps, designed at the interpolated rate, is
// split into L phases. Output sample m is taken at input index floor(m*D/L)
// using phase (m*D) mod L:
//
//	y[m] = (sum_k h[p + k*L] * x[i-k]) >> 15
//
// saturated to int16. Samples before the start of the stream count as zero,
// so output begins with the first input sample.
package engine

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-fifo-resampler/internal/fixedpoint"
	"github.com/tphakala/go-fifo-resampler/internal/pipeline"
	"github.com/tphakala/go-fifo-resampler/internal/simdops"
)

var (
	// ErrInvalidFactor indicates a zero or negative interpolation or decimation factor.
	ErrInvalidFactor = errors.New("engine: invalid resampling factor")

	// ErrInvalidTaps indicates an empty, oversized or out-of-range tap set.
	ErrInvalidTaps = errors.New("engine: invalid tap set")

	// ErrClosed is returned by operations on a closed resampler.
	ErrClosed = errors.New("engine: resampler closed")
)

// Resampler is a fixed-point polyphase FIR resampler.
// It is not safe for concurrent use.
type Resampler struct {
	interpolation int
	decimation    int
	taps          []int32

	// phases[p] holds h[p + (K-1-j)*L] at j, i.e. phase p reversed and zero
	// padded to tapsPerPhase, so it lines up with the delay line window.
	phases       [][]float64
	tapsPerPhase int

	// Delay line of 2*tapsPerPhase entries; every sample is written twice so
	// the newest tapsPerPhase samples are always contiguous.
	line []float64
	pos  int

	phase int // phase of the next output
	need  int // input samples to shift in before the next output

	queue     []*pipeline.SampleBuffer
	head      int // samples consumed from queue[0]
	pending   int // queued samples not yet consumed
	highWater int

	ops *simdops.Ops

	samplesIn  int64
	samplesOut int64
	closed     bool
}

// New builds a resampler from Q15 taps with the given interpolation and
// decimation factors. The taps are copied.
func New(taps []int32, interpolation, decimation int, opts ...Option) (*Resampler, error) {
	if decimation <= 0 {
		return nil, fmt.Errorf("%w: decimation factor must be positive, got %d", ErrInvalidFactor, decimation)
	}
	if interpolation <= 0 {
		return nil, fmt.Errorf("%w: interpolation factor must be positive, got %d", ErrInvalidFactor, interpolation)
	}
	if err := validateTaps(taps); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	tapsPerPhase := (len(taps) + interpolation - 1) / interpolation

	r := &Resampler{
		interpolation: interpolation,
		decimation:    decimation,
		taps:          append([]int32(nil), taps...),
		phases:        decompose(taps, interpolation, tapsPerPhase),
		tapsPerPhase:  tapsPerPhase,
		line:          make([]float64, delayLineFactor*tapsPerPhase),
		highWater:     cfg.highWater,
		queue:         make([]*pipeline.SampleBuffer, 0, initialQueueCapacity),
		ops:           simdops.Float64Ops(),
	}
	r.resetState()

	return r, nil
}

func validateTaps(taps []int32) error {
	if len(taps) == 0 {
		return fmt.Errorf("%w: no taps", ErrInvalidTaps)
	}
	if len(taps) > MaxTaps {
		return fmt.Errorf("%w: %d taps (max %d)", ErrInvalidTaps, len(taps), MaxTaps)
	}
	for i, t := range taps {
		if t > maxTapMagnitude || t < -maxTapMagnitude {
			return fmt.Errorf("%w: tap %d magnitude %d exceeds %d", ErrInvalidTaps, i, t, maxTapMagnitude)
		}
	}
	return nil
}

// decompose splits the prototype into reversed, zero padded phases.
func decompose(taps []int32, interpolation, tapsPerPhase int) [][]float64 {
	phases := make([][]float64, interpolation)
	for p := range interpolation {
		phase := make([]float64, tapsPerPhase)
		for k := range tapsPerPhase {
			idx := p + k*interpolation
			if idx < len(taps) {
				phase[tapsPerPhase-1-k] = float64(taps[idx])
			}
		}
		phases[p] = phase
	}
	return phases
}

// Full reports whether the queued, unconsumed input has reached the high
// water mark.
func (r *Resampler) Full() bool {
	return r.pending >= r.highWater
}

// Push queues buf for processing and takes ownership of it. On error the
// buffer is released.
func (r *Resampler) Push(buf *pipeline.SampleBuffer) error {
	if buf == nil {
		return fmt.Errorf("%w: nil sample buffer", pipeline.ErrInvariant)
	}
	if r.closed {
		buf.Release()
		return ErrClosed
	}

	r.queue = append(r.queue, buf)
	r.pending += buf.SampleCount()
	r.samplesIn += int64(buf.SampleCount())

	return nil
}

// Process produces up to len(out) samples from the queued input and returns
// how many were written. It stops early when the queue runs dry.
func (r *Resampler) Process(out []int16) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}

	n := 0
	for n < len(out) {
		for r.need > 0 {
			x, ok := r.next()
			if !ok {
				r.samplesOut += int64(n)
				return n, nil
			}
			r.shift(float64(x))
			r.need--
		}

		window := r.line[r.pos+1 : r.pos+1+r.tapsPerPhase]
		acc := r.ops.DotProductUnsafe(window, r.phases[r.phase])
		out[n] = saturate(int64(acc) >> fixedpoint.Q15)
		n++

		r.phase += r.decimation
		r.need += r.phase / r.interpolation
		r.phase %= r.interpolation
	}

	r.samplesOut += int64(n)
	return n, nil
}

// next pops one queued sample, releasing buffers as they are drained.
func (r *Resampler) next() (int16, bool) {
	for len(r.queue) > 0 {
		buf := r.queue[0]
		samples := buf.Samples()
		if r.head < len(samples) {
			x := samples[r.head]
			r.head++
			r.pending--
			if r.head == len(samples) {
				r.dropHead()
			}
			return x, true
		}
		r.dropHead()
	}
	return 0, false
}

// dropHead releases queue[0] and shifts the queue down in place.
func (r *Resampler) dropHead() {
	r.queue[0].Release()
	copy(r.queue, r.queue[1:])
	r.queue[len(r.queue)-1] = nil
	r.queue = r.queue[:len(r.queue)-1]
	r.head = 0
}

// shift appends x to the delay line.
func (r *Resampler) shift(x float64) {
	r.pos++
	if r.pos == r.tapsPerPhase {
		r.pos = 0
	}
	r.line[r.pos] = x
	r.line[r.pos+r.tapsPerPhase] = x
}

func saturate(v int64) int16 {
	switch {
	case v > maxInt16:
		return maxInt16
	case v < minInt16:
		return minInt16
	default:
		return int16(v)
	}
}

// Reset drops queued input and filter history. Queued buffers are released.
func (r *Resampler) Reset() {
	r.releaseQueue()
	r.resetState()
	r.samplesIn = 0
	r.samplesOut = 0
}

func (r *Resampler) resetState() {
	clear(r.line)
	r.pos = r.tapsPerPhase - 1
	r.phase = 0
	r.need = 1
}

func (r *Resampler) releaseQueue() {
	for i, buf := range r.queue {
		buf.Release()
		r.queue[i] = nil
	}
	r.queue = r.queue[:0]
	r.head = 0
	r.pending = 0
}

// Close releases every queued buffer. Unconsumed input is discarded.
func (r *Resampler) Close() error {
	if r.closed {
		return nil
	}
	r.releaseQueue()
	r.closed = true
	return nil
}

// Ratio returns the interpolation and decimation factors.
func (r *Resampler) Ratio() (interpolation, decimation int) {
	return r.interpolation, r.decimation
}

// TapsPerPhase returns the padded length of each phase.
func (r *Resampler) TapsPerPhase() int {
	return r.tapsPerPhase
}

// Latency returns the filter history length in input samples.
func (r *Resampler) Latency() int {
	return r.tapsPerPhase - 1
}

// Pending returns the number of queued input samples not yet consumed.
func (r *Resampler) Pending() int {
	return r.pending
}

// Stats returns the number of samples pushed and produced.
func (r *Resampler) Stats() (samplesIn, samplesOut int64) {
	return r.samplesIn, r.samplesOut
}

var _ pipeline.Resampler = (*Resampler)(nil)
