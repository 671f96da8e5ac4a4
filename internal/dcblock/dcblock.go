// Package dcblock implements a fixed-point DC blocking filter.
//
// The filter is a differentiator followed by a leaky integrator:
//
//	y[n] = x[n] - x[n-1] + (1 - p/2^15) * y[n-1]
//
// evaluated in Q15 with the fractional part of the output retained in the
// accumulator between samples, so that truncating to the integer output does
// not bias the result.
package dcblock

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-fifo-resampler/internal/fixedpoint"
)

// DefaultLeak is the integrator leak constant. The resulting pole sits at
// roughly 0.99991, which removes slow drift and passes audio-band content.
const DefaultLeak = 0.9999

// ErrInvalidInput is returned for a nil filter, an empty sample block or a
// leak constant the filter cannot run with.
var ErrInvalidInput = errors.New("dcblock: invalid input")

// Blocker holds the filter state for one sample stream.
// It is not safe for concurrent use.
type Blocker struct {
	// p is the pole term in Q15: round((1 - leak) * 2^15).
	p int64

	// xPrev is the previous input sample in Q15, x[n-1].
	xPrev int64

	// yPrev is the previous output sample, y[n-1].
	yPrev int64

	// f is the noise shaper value (Q30). Carried with the state but not part
	// of the current transfer function.
	f int64

	// acc is wider than the 16x15 bit product so pathological inputs
	// cannot overflow it in practice.
	acc int64
}

// New returns a zeroed blocker using DefaultLeak.
func New() *Blocker {
	return &Blocker{p: pole(DefaultLeak)}
}

// NewWithLeak returns a zeroed blocker with the given leak constant. leak
// must lie in (0, 1) and be far enough from 1 that the pole term is nonzero
// in Q15.
func NewWithLeak(leak float64) (*Blocker, error) {
	if math.IsNaN(leak) || leak <= 0 || leak >= 1 {
		return nil, fmt.Errorf("%w: leak %g outside (0, 1)", ErrInvalidInput, leak)
	}
	p := pole(leak)
	if p < 1 {
		return nil, fmt.Errorf("%w: leak %g rounds to a zero pole term", ErrInvalidInput, leak)
	}
	return &Blocker{p: p}, nil
}

// pole returns round((1 - leak) * 2^15).
func pole(leak float64) int64 {
	return int64(math.Round((1.0 - leak) * fixedpoint.Scale(fixedpoint.Q15)))
}

// Pole returns the quantized pole term p.
func (b *Blocker) Pole() int64 {
	return b.p
}

// Apply filters samples in place, continuing from the current state.
func (b *Blocker) Apply(samples []int16) error {
	if b == nil {
		return fmt.Errorf("%w: nil blocker", ErrInvalidInput)
	}
	if len(samples) == 0 {
		return fmt.Errorf("%w: empty sample block", ErrInvalidInput)
	}

	for i, s := range samples {
		b.acc -= b.xPrev
		b.xPrev = int64(s) << fixedpoint.Q15
		b.acc += b.xPrev - b.p*b.yPrev
		b.yPrev = b.acc >> fixedpoint.Q15
		samples[i] = int16(b.yPrev)
	}

	return nil
}

// Reset clears the filter history, keeping the pole.
func (b *Blocker) Reset() {
	b.xPrev = 0
	b.yPrev = 0
	b.f = 0
	b.acc = 0
}
