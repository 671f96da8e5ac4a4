package engine

// Tap set limits. With |tap| <= 2^20 and at most 2^16 taps, every partial
// sum of tap x int16 products stays below 2^51, inside float64's exact
// integer range.
const (
	// MaxTaps is the largest accepted prototype filter.
	MaxTaps = 1 << 16

	// maxTapMagnitude bounds a Q15 tap to |32.0|.
	maxTapMagnitude = 1 << 20
)

// Output saturation bounds
const (
	maxInt16 = 1<<15 - 1
	minInt16 = -1 << 15
)

const (
	// delayLineFactor doubles the delay line so the window never wraps.
	delayLineFactor = 2

	// initialQueueCapacity covers the queue depth backpressure allows.
	initialQueueCapacity = 4

	// DefaultHighWater is the queued-sample count at which Full reports true.
	DefaultHighWater = 1024
)
