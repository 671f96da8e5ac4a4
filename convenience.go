package resampler

import (
	"fmt"

	"github.com/tphakala/go-fifo-resampler/internal/dcblock"
	"github.com/tphakala/go-fifo-resampler/internal/pcm"
	"github.com/tphakala/go-fifo-resampler/internal/pipeline"
)

// ResampleSamples runs samples through a fresh resampler and returns every
// output sample the input supports. Unlike a Stream, the end of input is
// not an error and the queued tail is drained.
func ResampleSamples(cfg *Config, samples []int16) ([]int16, error) {
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = eng.Close() }()

	blockSamples := cfg.blockSamples()
	pool, err := pipeline.NewBufferPool(blockSamples*bytesPerSample, cfg.MaxOutstanding)
	if err != nil {
		return nil, err
	}

	var blocker *dcblock.Blocker
	if cfg.DCBlocker {
		blocker = dcblock.New()
	}

	estimate := len(samples)*cfg.Interpolation/cfg.Decimation + 1
	output := make([]int16, 0, estimate)
	block := make([]int16, blockSamples)

	for start := 0; start < len(samples); start += blockSamples {
		end := min(start+blockSamples, len(samples))

		buf, err := pool.Allocate()
		if err != nil {
			return nil, err
		}
		if err := buf.CopyFrom(samples[start:end]); err != nil {
			buf.Release()
			return nil, err
		}
		if err := eng.Push(buf); err != nil {
			return nil, err
		}

		for {
			n, err := eng.Process(block)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				break
			}
			if blocker != nil {
				if err := blocker.Apply(block[:n]); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
				}
			}
			output = append(output, block[:n]...)
		}
	}

	return output, nil
}

// ResampleBytes is ResampleSamples for the raw little-endian wire format.
// raw must hold a whole number of samples.
func ResampleBytes(cfg *Config, raw []byte) ([]byte, error) {
	samples, err := pcm.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
	}

	out, err := ResampleSamples(cfg, samples)
	if err != nil {
		return nil, err
	}
	return pcm.Encode(out), nil
}
