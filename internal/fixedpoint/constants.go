package fixedpoint

import "math"

// Q15 is the fractional bit count used for filter taps and the DC blocker.
const Q15 = 15

const (
	// maxFracBits keeps Scale exact and leaves headroom for the integer part.
	maxFracBits = 30

	// Exclusive bounds for a scaled tap before the int32 cast.
	maxScaled = float64(math.MaxInt32) + 1
	minScaled = float64(math.MinInt32) - 1
)
