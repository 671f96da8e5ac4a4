package pipeline

import "errors"

// Error classes surfaced by the pipeline. None of them is retried.
var (
	// ErrInvalidConfig indicates invalid construction parameters.
	ErrInvalidConfig = errors.New("invalid pipeline configuration")

	// ErrIO indicates a failed or non-positive read, or a failed write.
	// End of input is reported the same way as any other read failure.
	ErrIO = errors.New("stream i/o failure")

	// ErrInvariant indicates an internal invariant was broken: a read that is
	// not a whole number of samples, a resampler that made no progress, or
	// invalid input to a filter stage.
	ErrInvariant = errors.New("invariant violation")

	// ErrOutOfMemory indicates a buffer could not be allocated.
	ErrOutOfMemory = errors.New("sample buffer allocation failed")

	// ErrStopped is returned by Run on a pipeline that already stopped.
	ErrStopped = errors.New("pipeline stopped")
)
