package pipeline

// Sample format sizes
const (
	bytesPerInt16 = 2
)

// Block and pool sizing
const (
	// DefaultBlockSamples is the number of samples read per input buffer and
	// the size of the reused output block.
	DefaultBlockSamples = 1024

	// DefaultMaxOutstanding bounds live buffers per pool. Backpressure keeps
	// the resampler queue at one or two blocks, so this is never reached by a
	// healthy pipeline.
	DefaultMaxOutstanding = 64

	// MaxBufferBytes is the largest buffer a pool will hand out (1 MiB).
	MaxBufferBytes = 1 << 20
)
