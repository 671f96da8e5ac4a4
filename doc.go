// Package resampler provides a streaming fixed-point rational resampling
// stage in pure Go.
//
// A stage reads raw signed 16-bit little-endian samples from a blocking byte
// stream (typically a named pipe), converts the rate by L/D with a polyphase
// FIR filter running on Q15 taps, optionally removes DC bias, and writes the
// result to another byte stream. It is meant to run under a supervisor that
// restarts it: every failure, end of input included, stops the stage.
//
// # Features
//
//   - Rational L/D conversion with any prototype low-pass filter
//   - Q15 coefficient quantization by truncation, bit-exact with the
//     reference fixed-point implementation
//   - First-order fixed-point DC blocking filter
//   - Pooled input buffers and a single reused output block
//   - Backpressure: input is read only while the resampler has room
//   - SIMD dot products via github.com/tphakala/simd with exact integer results
//
// # Quick Start
//
// Stream a FIFO through a 3/2 rational converter:
//
//	taps, err := resampler.LoadTaps("lpf.json", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	config := &resampler.Config{
//	    Interpolation:   3,
//	    Decimation:      2,
//	    InputSampleRate: 32000,
//	    Taps:            taps,
//	    DCBlocker:       true,
//	}
//	s, err := resampler.New(config, in, out)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = s.Run(ctx) // nil on cancellation
//
// For in-memory data use [ResampleSamples] or [ResampleBytes], which drain
// the filter at the end of input instead of failing.
//
// # Filter Design
//
// Taps are supplied by the caller and designed at the interpolated rate
// InputSampleRate*L. A filter for interpolation by L needs a DC gain of L
// (each polyphase branch summing to about 1) to preserve level. The stage
// does not design filters; cmd/analyze-taps reports how a tap set behaves
// after quantization.
//
// # Cancellation
//
// [Stream.Run] observes its context between iterations only. A read or
// write blocked on a stalled peer is not interrupted.
//
// # Thread Safety
//
// A [Stream] runs on a single goroutine and must not be shared.
package resampler
