// Package analysis reports how a prototype filter survives Q15 quantization
// and how it will behave once split into polyphase branches.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-fifo-resampler/internal/fixedpoint"
	"github.com/tphakala/go-fifo-resampler/internal/simdops"
)

// ErrInvalidInput indicates an empty tap set or a bad interpolation factor.
var ErrInvalidInput = errors.New("analysis: invalid input")

// Report summarizes a quantized tap set.
type Report struct {
	// Taps is the prototype length.
	Taps int

	// Interpolation is the number of polyphase branches analysed.
	Interpolation int

	// Quantized holds the Q15 taps the engine will run with.
	Quantized []int32

	// PhaseGains is the DC gain of each branch after quantization. A
	// prototype designed for interpolation by L has gains near 1 per branch.
	PhaseGains []float64

	// DCGain is the sum of all quantized taps divided by Interpolation.
	DCGain float64

	// MaxQuantError is the largest absolute difference between a tap and
	// its quantized value.
	MaxQuantError float64

	// ClippedGain reports whether any branch gain exceeds 1, so a full scale
	// input can saturate the output.
	ClippedGain bool
}

// Analyze quantizes taps to Q15 and measures the result for the given
// interpolation factor.
func Analyze(taps []float64, interpolation int) (*Report, error) {
	if len(taps) == 0 {
		return nil, fmt.Errorf("%w: no taps", ErrInvalidInput)
	}
	if interpolation <= 0 {
		return nil, fmt.Errorf("%w: interpolation factor must be positive, got %d", ErrInvalidInput, interpolation)
	}

	quantized, err := fixedpoint.Convert(taps, fixedpoint.Q15)
	if err != nil {
		return nil, err
	}
	restored := Dequantize(quantized)

	diff := make([]float64, len(taps))
	floats.SubTo(diff, taps, restored)

	ops := simdops.Float64Ops()
	gains := make([]float64, interpolation)
	branch := make([]float64, 0, (len(taps)+interpolation-1)/interpolation)
	for p := range interpolation {
		branch = branch[:0]
		for i := p; i < len(restored); i += interpolation {
			branch = append(branch, restored[i])
		}
		gains[p] = ops.Sum(branch)
	}

	return &Report{
		Taps:          len(taps),
		Interpolation: interpolation,
		Quantized:     quantized,
		PhaseGains:    gains,
		DCGain:        floats.Sum(restored) / float64(interpolation),
		MaxQuantError: floats.Norm(diff, math.Inf(1)),
		ClippedGain:   floats.Max(gains) > 1,
	}, nil
}

// Dequantize returns Q15 taps as the real values they represent.
func Dequantize(taps []int32) []float64 {
	return fixedpoint.ToFloats(taps, fixedpoint.Q15)
}

// Response is a sampled magnitude response.
type Response struct {
	// Freqs are normalized frequencies in cycles per sample, 0 to 0.5.
	Freqs []float64

	// DB holds the magnitude at each frequency in decibels.
	DB []float64
}

// MagnitudeResponse evaluates taps on an FFT grid of at least size points,
// rounded up to a power of two no shorter than the tap set. Gain is scaled
// so a filter with a DC gain of scale reads 0 dB at DC.
func MagnitudeResponse(taps []float64, size int, scale float64) (*Response, error) {
	if len(taps) == 0 {
		return nil, fmt.Errorf("%w: no taps", ErrInvalidInput)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%w: scale must be positive, got %g", ErrInvalidInput, scale)
	}

	n := minFFTSize
	for n < size || n < len(taps) {
		n *= 2
	}

	padded := make([]float64, n)
	copy(padded, taps)
	floats.Scale(1/scale, padded)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, padded)

	resp := &Response{
		Freqs: make([]float64, len(coeffs)),
		DB:    make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		resp.Freqs[i] = fft.Freq(i)
		mag := math.Hypot(real(c), imag(c))
		resp.DB[i] = 20 * math.Log10(math.Max(mag, magnitudeFloor))
	}

	return resp, nil
}

// At returns the response at the grid point nearest to freq.
func (r *Response) At(freq float64) float64 {
	if len(r.Freqs) == 0 {
		return math.Inf(-1)
	}
	last := len(r.Freqs) - 1
	step := r.Freqs[last] / float64(last)
	idx := int(math.Round(freq / step))
	idx = max(0, min(idx, last))
	return r.DB[idx]
}
