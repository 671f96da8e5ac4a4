package analysis

const (
	// minFFTSize is the smallest response grid.
	minFFTSize = 512

	// magnitudeFloor keeps the dB scale finite at exact zeros (-300 dB).
	magnitudeFloor = 1e-15
)
