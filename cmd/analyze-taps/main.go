// Command analyze-taps reports how a prototype filter behaves once quantized
// to Q15 and split into polyphase branches.
//
// Usage:
//
//	analyze-taps -F lpf.json -I 3
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tphakala/go-fifo-resampler/internal/analysis"
	"github.com/tphakala/go-fifo-resampler/internal/coeffs"
)

const (
	defaultInterpolation = 1
	defaultFFTSize       = 4096

	// Display limits
	maxTapsToShow   = 8
	maxPhasesToShow = 8
)

// probeFrequencies are normalized to the interpolated rate (cycles/sample).
var probeFrequencies = []float64{0, 0.05, 0.1, 0.2, 0.25, 0.3, 0.4, 0.5}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("analyze-taps", flag.ContinueOnError)
	filterFile := fs.String("F", "", "Filter coefficient document (JSON or YAML)")
	field := fs.String("field", coeffs.DefaultField, "Coefficient array field")
	interpolation := fs.Int("I", defaultInterpolation, "Interpolation factor the filter is designed for")
	fftSize := fs.Int("fft", defaultFFTSize, "Frequency response grid size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filterFile == "" {
		fs.Usage()
		return fmt.Errorf("need a filter file (-F)")
	}

	taps, err := coeffs.Load(*filterFile, *field)
	if err != nil {
		return err
	}

	return analyze(w, taps, *interpolation, *fftSize)
}

// analyze prints the quantization report and the magnitude response.
func analyze(w io.Writer, taps []float64, interpolation, fftSize int) error {
	report, err := analysis.Analyze(taps, interpolation)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== Filter Quantization (Q15) ===\n")
	fmt.Fprintf(w, "  Taps: %d\n", report.Taps)
	fmt.Fprintf(w, "  Interpolation: %d\n", report.Interpolation)
	fmt.Fprintf(w, "  Taps per phase: %d\n", (report.Taps+interpolation-1)/interpolation)
	fmt.Fprintf(w, "  Max quantization error: %.3e\n", report.MaxQuantError)
	fmt.Fprintf(w, "  DC gain (per branch average): %.10f\n\n", report.DCGain)

	fmt.Fprintln(w, "First taps:")
	for i := range min(maxTapsToShow, report.Taps) {
		fmt.Fprintf(w, "  h[%d] = %+.8f -> %d\n", i, taps[i], report.Quantized[i])
	}
	if report.Taps > maxTapsToShow {
		fmt.Fprintf(w, "  ... (%d more taps)\n", report.Taps-maxTapsToShow)
	}

	fmt.Fprintln(w, "\nDC gain per phase:")
	for p := range min(maxPhasesToShow, len(report.PhaseGains)) {
		fmt.Fprintf(w, "  Phase %2d: %.10f\n", p, report.PhaseGains[p])
	}
	if len(report.PhaseGains) > maxPhasesToShow {
		fmt.Fprintf(w, "  ... (%d more phases)\n", len(report.PhaseGains)-maxPhasesToShow)
	}
	if report.ClippedGain {
		fmt.Fprintln(w, "  WARNING: a branch gain exceeds 1; full scale input will saturate")
	}

	response, err := analysis.MagnitudeResponse(analysis.Dequantize(report.Quantized), fftSize, float64(interpolation))
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "\nMagnitude response (quantized, normalized to the interpolated rate):")
	for _, f := range probeFrequencies {
		fmt.Fprintf(w, "  f = %.3f: %8.2f dB\n", f, response.At(f))
	}

	return nil
}
