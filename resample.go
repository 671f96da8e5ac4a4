package resampler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tphakala/go-fifo-resampler/internal/coeffs"
	"github.com/tphakala/go-fifo-resampler/internal/engine"
	"github.com/tphakala/go-fifo-resampler/internal/fixedpoint"
	"github.com/tphakala/go-fifo-resampler/internal/pipeline"
	"github.com/tphakala/go-fifo-resampler/internal/simdops"
)

// Config holds the stage configuration. It is passed explicitly to New; the
// stage reads nothing from global state.
type Config struct {
	// Interpolation is the upsampling factor L.
	Interpolation int

	// Decimation is the downsampling factor D.
	Decimation int

	// InputSampleRate is the input rate in Hz. It is only reported, never
	// used in processing. Zero means unknown.
	InputSampleRate float64

	// Taps is the prototype low-pass filter, designed at the interpolated
	// rate. It is quantized to Q15 by truncation.
	Taps []float64

	// DCBlocker enables the DC blocking filter on the output.
	DCBlocker bool

	// BlockSamples is the read size, the output block size and the resampler
	// high-water mark. Zero means DefaultBlockSamples.
	BlockSamples int

	// MaxOutstanding bounds live input buffers. Zero means the pool default.
	MaxOutstanding int

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Common errors returned by the stage.
var (
	// ErrConfiguration indicates a missing or malformed coefficient document.
	ErrConfiguration = coeffs.ErrConfiguration

	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = pipeline.ErrInvalidConfig

	// ErrIO indicates a failed read or write. End of input is an ErrIO.
	ErrIO = pipeline.ErrIO

	// ErrInvariant indicates an internal invariant was broken.
	ErrInvariant = pipeline.ErrInvariant

	// ErrOutOfMemory indicates a sample buffer could not be allocated.
	ErrOutOfMemory = pipeline.ErrOutOfMemory

	// ErrStopped is returned when running a stream that already stopped.
	ErrStopped = pipeline.ErrStopped

	// ErrSizeMismatch indicates mismatched tap and destination lengths.
	ErrSizeMismatch = fixedpoint.ErrSizeMismatch

	// ErrOutOfRange indicates a tap that cannot be represented in Q15.
	ErrOutOfRange = fixedpoint.ErrOutOfRange

	// ErrClosed is returned by a resampler used after Close.
	ErrClosed = engine.ErrClosed
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Decimation <= 0 {
		return fmt.Errorf("%w: decimation factor must be positive, got %d", ErrInvalidConfig, c.Decimation)
	}
	if c.Interpolation <= 0 {
		return fmt.Errorf("%w: interpolation factor must be positive, got %d", ErrInvalidConfig, c.Interpolation)
	}
	if len(c.Taps) == 0 {
		return fmt.Errorf("%w: no filter taps", ErrInvalidConfig)
	}
	if len(c.Taps) > engine.MaxTaps {
		return fmt.Errorf("%w: %d filter taps (max %d)", ErrInvalidConfig, len(c.Taps), engine.MaxTaps)
	}
	if c.BlockSamples < 0 || c.BlockSamples > MaxBlockSamples {
		return fmt.Errorf("%w: block size must be 0-%d samples, got %d", ErrInvalidConfig, MaxBlockSamples, c.BlockSamples)
	}
	// Every full read must leave enough input for at least one output.
	if c.Decimation > c.blockSamples() {
		return fmt.Errorf("%w: decimation factor %d exceeds block of %d samples",
			ErrInvalidConfig, c.Decimation, c.blockSamples())
	}
	if c.InputSampleRate < 0 {
		return fmt.Errorf("%w: sample rate must not be negative", ErrInvalidConfig)
	}
	if c.MaxOutstanding < 0 {
		return fmt.Errorf("%w: buffer limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// OutputSampleRate returns InputSampleRate * L / D.
func (c *Config) OutputSampleRate() float64 {
	if c.Decimation <= 0 {
		return 0
	}
	return c.InputSampleRate * float64(c.Interpolation) / float64(c.Decimation)
}

func (c *Config) blockSamples() int {
	if c.BlockSamples == 0 {
		return DefaultBlockSamples
	}
	return c.BlockSamples
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// newEngine validates cfg, quantizes its taps and builds the polyphase engine.
func newEngine(cfg *Config) (*engine.Resampler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	taps, err := fixedpoint.Convert(cfg.Taps, fixedpoint.Q15)
	if err != nil {
		return nil, fmt.Errorf("failed to quantize filter taps: %w", err)
	}

	eng, err := engine.New(taps, cfg.Interpolation, cfg.Decimation,
		engine.WithHighWater(cfg.blockSamples()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return eng, nil
}

// State is the lifecycle state of a Stream.
type State = pipeline.State

// Stream states.
const (
	StateRunning = pipeline.StateRunning
	StateStopped = pipeline.StateStopped
)

// Stats counts stream activity.
type Stats = pipeline.Stats

// Stream couples a blocking byte-stream source and sink through the
// resampler. A Stream runs once; it is not safe for concurrent use.
type Stream struct {
	cfg    Config
	engine *engine.Resampler
	pipe   *pipeline.Pipeline
}

// New builds a stream reading raw little-endian int16 samples from in and
// writing resampled samples to out.
func New(cfg *Config, in io.Reader, out io.Writer) (*Stream, error) {
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger()
	blockSamples := cfg.blockSamples()

	pool, err := pipeline.NewBufferPool(blockSamples*bytesPerSample, cfg.MaxOutstanding)
	if err != nil {
		_ = eng.Close()
		return nil, err
	}

	pipe, err := pipeline.New(pipeline.Config{
		Resampler:    eng,
		Input:        in,
		Output:       out,
		BlockSamples: blockSamples,
		DCBlocker:    cfg.DCBlocker,
		Pool:         pool,
		Logger:       logger,
	})
	if err != nil {
		_ = eng.Close()
		return nil, err
	}

	s := &Stream{
		cfg:    *cfg,
		engine: eng,
		pipe:   pipe,
	}
	logger.Debug("stream ready",
		"interpolation", cfg.Interpolation,
		"decimation", cfg.Decimation,
		"taps", len(cfg.Taps),
		"taps_per_phase", eng.TapsPerPhase(),
		"block_samples", blockSamples)

	return s, nil
}

// Run streams until ctx is cancelled or a fatal error occurs. Cancellation
// returns nil; end of input returns an error matching both ErrIO and io.EOF.
// The stream is stopped and its resampler destroyed when Run returns.
func (s *Stream) Run(ctx context.Context) error {
	return s.pipe.Run(ctx)
}

// Close stops the stream without running it. It is safe to call more than once.
func (s *Stream) Close() error {
	return s.pipe.Close()
}

// State returns the lifecycle state.
func (s *Stream) State() State {
	return s.pipe.State()
}

// Stats returns a snapshot of the activity counters.
func (s *Stream) Stats() Stats {
	return s.pipe.Stats()
}

// Info returns information about the stream's resampler.
func (s *Stream) Info() Info {
	return Info{
		Interpolation:    s.cfg.Interpolation,
		Decimation:       s.cfg.Decimation,
		FilterLength:     len(s.cfg.Taps),
		TapsPerPhase:     s.engine.TapsPerPhase(),
		Latency:          s.engine.Latency(),
		InputSampleRate:  s.cfg.InputSampleRate,
		OutputSampleRate: s.cfg.OutputSampleRate(),
		BlockSamples:     s.cfg.blockSamples(),
		DCBlocker:        s.cfg.DCBlocker,
		SIMDType:         simdops.Info(),
	}
}

// Info describes a configured stream.
type Info struct {
	Interpolation int
	Decimation    int

	// FilterLength is the number of prototype taps.
	FilterLength int

	// TapsPerPhase is the padded length of each polyphase branch.
	TapsPerPhase int

	// Latency is the filter history in input samples.
	Latency int

	InputSampleRate  float64
	OutputSampleRate float64
	BlockSamples     int
	DCBlocker        bool

	// SIMDType describes the instruction set the dot products dispatch to.
	SIMDType string
}

// DefaultTapsField is the coefficient document field read when none is given.
const DefaultTapsField = coeffs.DefaultField

// LoadTaps reads a JSON or YAML coefficient document and returns the numeric
// array under field. An empty field means DefaultTapsField.
func LoadTaps(path, field string) ([]float64, error) {
	return coeffs.Load(path, field)
}
