// Package pipeline implements the streaming stage that couples a blocking
// byte-stream source and sink to a fixed-point resampling engine.
//
// One goroutine drives the loop: read a block when the engine is not full,
// push it, pull one output block, optionally DC-block it in place, and write
// it out. Every failure is fatal; the loop never retries.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tphakala/go-fifo-resampler/internal/dcblock"
	"github.com/tphakala/go-fifo-resampler/internal/pcm"
)

// State is the lifecycle state of a Pipeline.
type State int

const (
	// StateRunning is the initial state; the loop may be started.
	StateRunning State = iota

	// StateStopped is terminal, reached on cancellation or a fatal error.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config is the context a Pipeline is built from. Nothing is read from
// global state.
type Config struct {
	// Resampler is the engine the pipeline owns and closes on exit.
	Resampler Resampler

	// Input and Output are the byte-stream endpoints.
	Input  io.Reader
	Output io.Writer

	// BlockSamples is both the read size and the output block size.
	// Zero means DefaultBlockSamples.
	BlockSamples int

	// DCBlocker enables the DC blocking filter on every output block.
	DCBlocker bool

	// Pool supplies input buffers. Nil creates a pool sized to BlockSamples.
	Pool *BufferPool

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Stats counts pipeline activity.
type Stats struct {
	Iterations   int64
	Reads        int64
	SkippedReads int64 // reads deferred by backpressure
	BytesRead    int64
	SamplesIn    int64
	SamplesOut   int64
	BytesWritten int64
}

// Pipeline is a single-goroutine streaming resampling stage.
type Pipeline struct {
	resampler Resampler
	in        io.Reader
	out       io.Writer
	pool      *BufferPool
	blocker   *dcblock.Blocker
	logger    *slog.Logger

	// Output block reused by every iteration. Valid only because one
	// goroutine writes and drains it before the next iteration starts.
	block      []int16
	blockBytes []byte

	state  State
	closed bool
	stats  Stats
}

// New validates cfg and returns a pipeline in StateRunning.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Resampler == nil {
		return nil, fmt.Errorf("%w: resampler is nil", ErrInvalidConfig)
	}
	if cfg.Input == nil || cfg.Output == nil {
		return nil, fmt.Errorf("%w: input and output are required", ErrInvalidConfig)
	}

	blockSamples := cfg.BlockSamples
	if blockSamples == 0 {
		blockSamples = DefaultBlockSamples
	}
	width := SampleInt16.Width()
	if blockSamples < 0 || blockSamples*width > MaxBufferBytes {
		return nil, fmt.Errorf("%w: block size %d samples out of range", ErrInvalidConfig, blockSamples)
	}

	pool := cfg.Pool
	if pool == nil {
		var err error
		pool, err = NewBufferPool(blockSamples*width, DefaultMaxOutstanding)
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Pipeline{
		resampler:  cfg.Resampler,
		in:         cfg.Input,
		out:        cfg.Output,
		pool:       pool,
		logger:     logger,
		block:      make([]int16, blockSamples),
		blockBytes: make([]byte, blockSamples*width),
		state:      StateRunning,
	}
	if cfg.DCBlocker {
		p.blocker = dcblock.New()
	}

	return p, nil
}

// Run drives the loop until ctx is cancelled or a fatal error occurs, and
// always leaves the pipeline stopped with its resampler closed.
//
// Cancellation is observed only between iterations. A Read or Write that
// blocks on a stalled peer is not interrupted, so shutdown can be delayed
// for as long as the peer stalls.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	if p.state == StateStopped {
		return ErrStopped
	}
	defer func() {
		p.state = StateStopped
		if closeErr := p.Close(); err == nil {
			err = closeErr
		}
	}()

	for {
		if err := p.iterate(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline cancelled", "iterations", p.stats.Iterations)
			return nil
		default:
		}
	}
}

// iterate runs one read/process/write cycle.
func (p *Pipeline) iterate() error {
	p.stats.Iterations++

	if p.resampler.Full() {
		p.stats.SkippedReads++
	} else if err := p.readBlock(); err != nil {
		return err
	}

	produced, err := p.resampler.Process(p.block)
	if err != nil {
		return fmt.Errorf("resampler process: %w", err)
	}
	if produced <= 0 {
		p.logger.Error("resampler made no progress", "code", "NO-OUTPUT")
		return fmt.Errorf("%w: resampler produced no samples", ErrInvariant)
	}
	samples := p.block[:produced]

	if p.blocker != nil {
		if err := p.blocker.Apply(samples); err != nil {
			return fmt.Errorf("%w: %w", ErrInvariant, err)
		}
	}

	return p.writeBlock(samples)
}

// readBlock performs one blocking read into a fresh buffer and hands it to
// the resampler.
func (p *Pipeline) readBlock() error {
	buf, err := p.pool.Allocate()
	if err != nil {
		return err
	}

	n, readErr := p.in.Read(buf.Bytes())
	if n <= 0 {
		buf.Release()
		if readErr == nil {
			readErr = io.ErrNoProgress
		}
		p.logger.Error("failed to read from input", "code", "READ-FIFO-FAIL", "error", readErr)
		return fmt.Errorf("%w: read returned %d bytes: %w", ErrIO, n, readErr)
	}
	p.logger.Debug("read from input", "bytes", n)

	if err := buf.Fill(n); err != nil {
		buf.Release()
		return err
	}

	p.stats.Reads++
	p.stats.BytesRead += int64(n)
	p.stats.SamplesIn += int64(buf.SampleCount())

	if err := p.resampler.Push(buf); err != nil {
		return fmt.Errorf("resampler push: %w", err)
	}

	return nil
}

// writeBlock encodes samples and performs one blocking write. The returned
// byte count is not compared with the request.
func (p *Pipeline) writeBlock(samples []int16) error {
	raw := p.blockBytes[:pcm.EncodeInto(p.blockBytes, samples)]

	n, err := p.out.Write(raw)
	if err != nil {
		p.logger.Error("failed to write to output", "code", "WRITE-FIFO-FAIL", "error", err)
		return fmt.Errorf("%w: write: %w", ErrIO, err)
	}
	p.logger.Debug("wrote to output", "bytes", n)

	p.stats.SamplesOut += int64(len(samples))
	p.stats.BytesWritten += int64(n)

	return nil
}

// Close stops the pipeline and destroys the resampler. It is safe to call
// more than once.
func (p *Pipeline) Close() error {
	p.state = StateStopped
	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.resampler.Close(); err != nil {
		return fmt.Errorf("resampler close: %w", err)
	}
	return nil
}

// State returns the lifecycle state.
func (p *Pipeline) State() State {
	return p.state
}

// Stats returns a snapshot of the activity counters.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Pool returns the buffer pool feeding the resampler.
func (p *Pipeline) Pool() *BufferPool {
	return p.pool
}
