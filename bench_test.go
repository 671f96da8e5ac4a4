package resampler

import (
	"bytes"
	"context"
	"testing"

	"github.com/tphakala/go-fifo-resampler/internal/pcm"
	"github.com/tphakala/go-fifo-resampler/internal/testutil"
)

// BenchmarkStream_Decimate benchmarks a 64-tap decimate-by-two stream.
func BenchmarkStream_Decimate(b *testing.B) {
	benchmarkStream(b, 1, 2, 64, false)
}

// BenchmarkStream_Rational benchmarks a 96-tap 3/2 stream with DC blocking.
func BenchmarkStream_Rational(b *testing.B) {
	benchmarkStream(b, 3, 2, 96, true)
}

func benchmarkStream(b *testing.B, interpolation, decimation, numTaps int, dcBlocker bool) {
	b.Helper()

	const numSamples = 48000 // 1 second at 48 kHz

	taps := make([]float64, numTaps)
	for i := range taps {
		taps[i] = float64(interpolation) / float64(numTaps)
	}
	config := &Config{
		Interpolation: interpolation,
		Decimation:    decimation,
		Taps:          taps,
		DCBlocker:     dcBlocker,
	}
	raw := pcm.Encode(testutil.Ramp(numSamples))
	var out bytes.Buffer

	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		out.Reset()
		s, err := New(config, bytes.NewReader(raw), &out)
		if err != nil {
			b.Fatalf("Failed to create stream: %v", err)
		}
		// The stream always ends with an end-of-input error.
		_ = s.Run(context.Background())
	}
}
