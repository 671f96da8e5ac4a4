// Command resampler streams raw 16-bit little-endian samples from one byte
// stream to another through a fixed-point L/D polyphase resampler.
//
// Usage:
//
//	resampler -I 3 -D 2 -S 32000 -F lpf.json in.fifo out.fifo
//	resampler -I 1 -D 4 -F lpf.yaml -b -log-level debug in.fifo out.fifo
//
// Both endpoints are usually named pipes. The process exits 0 when stopped by
// SIGINT or SIGTERM and 1 on any failure, end of input included, so it is
// meant to run under a supervisor that restarts it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	resampling "github.com/tphakala/go-fifo-resampler"
	"github.com/tphakala/go-fifo-resampler/internal/analysis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the parsed command line.
type options struct {
	interpolation int
	decimation    int
	sampleRate    uint
	filterFile    string
	field         string
	dcBlocker     bool
	logLevel      string
	blockSamples  int
	input         string
	output        string

	usage func()
}

// parseOptions parses args. It returns flag.ErrHelp when usage was requested.
func parseOptions(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("resampler", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.interpolation, "I", defaultInterpolation, "Interpolation factor L")
	fs.IntVar(&opts.decimation, "D", defaultDecimation, "Decimation factor D")
	fs.UintVar(&opts.sampleRate, "S", 0, "Input sample rate in Hz (reporting only)")
	fs.StringVar(&opts.filterFile, "F", "", "Filter coefficient document (JSON or YAML)")
	fs.StringVar(&opts.field, "field", resampling.DefaultTapsField, "Coefficient array field in the filter document")
	fs.BoolVar(&opts.dcBlocker, "b", false, "Enable the DC blocking filter")
	fs.StringVar(&opts.logLevel, "log-level", defaultLogLevel, "Log level: debug, info, warn, error")
	fs.IntVar(&opts.blockSamples, "block", resampling.DefaultBlockSamples, "Samples per read and per output block")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s -I <interp> -D <decim> -S <rate> -F <filter> [-b] in out\n\n", fs.Name())
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}
	opts.usage = fs.Usage

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != requiredArgs {
		fs.Usage()
		return nil, fmt.Errorf("%w: need input and output paths, got %d arguments",
			resampling.ErrInvalidConfig, fs.NArg())
	}
	opts.input = fs.Arg(0)
	opts.output = fs.Arg(1)

	return opts, nil
}

// validate checks the options in the order the stage reports them.
func (o *options) validate(logger *slog.Logger) error {
	if o.decimation <= 0 {
		logger.Error("Decimation factor must be a positive integer", "code", "BAD-DECIMATION", "value", o.decimation)
		return fmt.Errorf("%w: decimation factor %d", resampling.ErrInvalidConfig, o.decimation)
	}
	block := o.blockSamples
	if block == 0 {
		block = resampling.DefaultBlockSamples
	}
	if o.decimation > block {
		logger.Error("Decimation factor must not exceed the block size",
			"code", "BAD-DECIMATION", "value", o.decimation, "block_samples", block)
		return fmt.Errorf("%w: decimation factor %d exceeds block of %d samples",
			resampling.ErrInvalidConfig, o.decimation, block)
	}
	if o.interpolation <= 0 {
		logger.Error("Interpolation factor must be a positive integer", "code", "BAD-INTERPOLATION", "value", o.interpolation)
		return fmt.Errorf("%w: interpolation factor %d", resampling.ErrInvalidConfig, o.interpolation)
	}
	if o.filterFile == "" {
		logger.Error("Need to specify a filter file", "code", "BAD-FILTER-FILE")
		return fmt.Errorf("%w: no filter file", resampling.ErrInvalidConfig)
	}
	return nil
}

// run executes the stage and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "resampler: %v\n", err)
		return exitFailure
	}

	logger, err := newLogger(stderr, opts.logLevel, uuid.New().String())
	if err != nil {
		fmt.Fprintf(stderr, "resampler: %v\n", err)
		return exitFailure
	}

	if err := stream(ctx, opts, logger); err != nil {
		logger.Error("resampler stopped", "error", err)
		if errors.Is(err, resampling.ErrInvalidConfig) {
			opts.usage()
		}
		return exitFailure
	}
	return exitOK
}

// stream loads the filter, opens both endpoints and runs until cancelled or
// a fatal error.
func stream(ctx context.Context, opts *options, logger *slog.Logger) error {
	if err := opts.validate(logger); err != nil {
		return err
	}

	config := &resampling.Config{
		Interpolation:   opts.interpolation,
		Decimation:      opts.decimation,
		InputSampleRate: float64(opts.sampleRate),
		DCBlocker:       opts.dcBlocker,
		BlockSamples:    opts.blockSamples,
		Logger:          logger,
	}

	logger.Info(fmt.Sprintf("Resampling: %d/%d from %d to %f",
		opts.interpolation, opts.decimation, opts.sampleRate, config.OutputSampleRate()),
		"code", "CONFIG")
	logger.Info(fmt.Sprintf("Loading filter coefficients from '%s'", opts.filterFile), "code", "CONFIG")

	taps, err := resampling.LoadTaps(opts.filterFile, opts.field)
	if err != nil {
		logger.Error("Configuration file cannot be processed, aborting",
			"code", "BAD-CONFIG", "file", opts.filterFile, "error", err)
		return err
	}
	config.Taps = taps

	report, err := analysis.Analyze(taps, opts.interpolation)
	if err != nil {
		logger.Error("Filter coefficients cannot be quantized", "code", "BAD-CONFIG", "error", err)
		return err
	}
	logger.Info("Quantized filter",
		"code", "CONFIG",
		"taps", report.Taps,
		"dc_gain", report.DCGain,
		"max_quant_error", report.MaxQuantError,
		"dc_blocker", opts.dcBlocker)
	if report.ClippedGain {
		logger.Warn("A polyphase branch has gain above unity; full scale input will saturate", "code", "CONFIG")
	}

	in, err := os.OpenFile(opts.input, os.O_RDONLY, 0)
	if err != nil {
		logger.Error(fmt.Sprintf("Bad input - cannot open %s", opts.input), "code", "BAD-INPUT")
		return fmt.Errorf("%w: %w", resampling.ErrInvalidConfig, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(opts.output, os.O_WRONLY, 0)
	if err != nil {
		logger.Error(fmt.Sprintf("Bad output - cannot open %s", opts.output), "code", "BAD-OUTPUT")
		return fmt.Errorf("%w: %w", resampling.ErrInvalidConfig, err)
	}
	defer func() { _ = out.Close() }()

	s, err := resampling.New(config, in, out)
	if err != nil {
		return err
	}

	info := s.Info()
	logger.Info("Stream ready",
		"taps_per_phase", info.TapsPerPhase,
		"latency", info.Latency,
		"block_samples", info.BlockSamples,
		"simd", info.SIMDType)

	err = s.Run(ctx)
	stats := s.Stats()
	logger.Info("Stream finished",
		"iterations", stats.Iterations,
		"samples_in", stats.SamplesIn,
		"samples_out", stats.SamplesOut,
		"skipped_reads", stats.SkippedReads)

	return err
}
