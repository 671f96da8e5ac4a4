// Package testutil provides reusable test helpers for the resampling stage.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Ramp returns n deterministic samples covering most of the int16 range.
func Ramp(n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16((i*131)%60000 - 30000)
	}
	return s
}

// Constant returns n copies of v.
func Constant(n int, v int16) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertMonotonic verifies that a slice is monotonically increasing.
func AssertMonotonic(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%f < s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// AssertDecaysToward verifies that samples never cross zero and that their
// magnitude never grows, as expected of a DC blocker's step response.
func AssertDecaysToward(t *testing.T, samples []int16, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(samples); i++ {
		prev, cur := abs(samples[i-1]), abs(samples[i])
		if cur > prev {
			return assert.Fail(t, "magnitude grew",
				"|s[%d]|=%d > |s[%d]|=%d", i, cur, i-1, prev)
		}
		if (samples[i] < 0 && samples[0] > 0) || (samples[i] > 0 && samples[0] < 0) {
			return assert.Fail(t, "sign changed", "s[%d]=%d, s[0]=%d", i, samples[i], samples[0])
		}
	}
	return true
}

func abs(v int16) int {
	if v < 0 {
		return -int(v)
	}
	return int(v)
}
