// Package fixedpoint converts floating-point filter taps to the Q-format
// integers consumed by the fixed-point resampling engine.
//
// Conversion truncates toward zero (multiply, then integer cast). Every
// coefficient is therefore biased slightly toward zero; this matches the
// response of existing deployments bit for bit and must not be changed to
// rounding without a compatibility decision.
package fixedpoint

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSizeMismatch indicates the destination cannot hold the converted taps.
	ErrSizeMismatch = errors.New("fixedpoint: size mismatch")

	// ErrOutOfRange indicates a tap that cannot be represented in the target format.
	ErrOutOfRange = errors.New("fixedpoint: value out of range")
)

// Scale returns 2^q as a float64.
func Scale(q uint) float64 {
	return float64(uint64(1) << q)
}

// Convert quantizes taps to signed Q-format integers with q fractional bits.
func Convert(taps []float64, q uint) ([]int32, error) {
	out := make([]int32, len(taps))
	if err := ConvertInto(out, taps, q); err != nil {
		return nil, err
	}
	return out, nil
}

// ConvertInto quantizes taps into dst, which must have exactly len(taps) elements.
func ConvertInto(dst []int32, taps []float64, q uint) error {
	if len(dst) != len(taps) {
		return fmt.Errorf("%w: have %d slots for %d taps", ErrSizeMismatch, len(dst), len(taps))
	}
	if q > maxFracBits {
		return fmt.Errorf("%w: %d fractional bits (max %d)", ErrOutOfRange, q, maxFracBits)
	}

	scale := Scale(q)
	for i, t := range taps {
		v := t * scale
		if math.IsNaN(v) || v >= maxScaled || v <= minScaled {
			return fmt.Errorf("%w: tap %d = %g", ErrOutOfRange, i, t)
		}
		dst[i] = int32(v)
	}

	return nil
}

// ToFloat maps a Q-format integer back to its real value.
func ToFloat(v int32, q uint) float64 {
	return float64(v) / Scale(q)
}

// ToFloats maps a whole tap set back to real values.
func ToFloats(taps []int32, q uint) []float64 {
	out := make([]float64, len(taps))
	for i, v := range taps {
		out[i] = ToFloat(v, q)
	}
	return out
}
