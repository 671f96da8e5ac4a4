package pipeline

// Resampler is the contract the pipeline drives against the polyphase
// resampling engine. Implementations are created from a fixed-point tap set
// and interpolation/decimation factors; creation fails for a zero
// decimation factor.
type Resampler interface {
	// Full reports whether enough input is queued that pushing more before
	// the next Process would be wasted. The pipeline skips its read while
	// Full holds.
	Full() bool

	// Push transfers buf into the engine's input queue. The engine becomes
	// responsible for releasing it.
	Push(buf *SampleBuffer) error

	// Process writes up to len(out) output samples and returns the count.
	// Once input has been pushed the engine must make progress; a zero
	// count is treated by the pipeline as an invariant violation.
	Process(out []int16) (int, error)

	// Close releases all engine resources, including queued buffers.
	Close() error
}
