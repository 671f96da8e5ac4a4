package pipeline

import (
	"fmt"
	"sync"

	"github.com/tphakala/go-fifo-resampler/internal/pcm"
)

// SampleKind identifies the element format of a SampleBuffer.
type SampleKind int

const (
	// SampleInt16 is a signed 16-bit little-endian sample.
	SampleInt16 SampleKind = iota
)

// Width returns the size of one sample in bytes.
func (k SampleKind) Width() int {
	switch k {
	case SampleInt16:
		return bytesPerInt16
	default:
		return 0
	}
}

// String returns the sample kind name.
func (k SampleKind) String() string {
	switch k {
	case SampleInt16:
		return "int16"
	default:
		return fmt.Sprintf("SampleKind(%d)", int(k))
	}
}

// SampleBuffer is a fixed-capacity block of fixed-point samples.
//
// The raw wire bytes and the decoded samples share the same capacity;
// SampleCount()*Kind().Width() never exceeds CapacityBytes().
// A buffer is not safe for concurrent use.
type SampleBuffer struct {
	data    []byte
	samples []int16
	count   int
	kind    SampleKind

	refs     int
	released bool
	release  func(*SampleBuffer)

	// store is the pooled backing memory; nil for unpooled buffers.
	store *bufferStore

	// Priv is reserved for the resampler's bookkeeping while it owns the buffer.
	Priv any
}

// bufferStore is the memory behind a SampleBuffer. Only the store is
// recycled; every allocation gets a fresh SampleBuffer, so a stale handle
// stays released and a second Release on it always panics.
type bufferStore struct {
	data    []byte
	samples []int16
}

func newBufferStore(capacityBytes int, kind SampleKind) *bufferStore {
	return &bufferStore{
		data:    make([]byte, capacityBytes),
		samples: make([]int16, capacityBytes/kind.Width()),
	}
}

func newSampleBuffer(capacityBytes int, kind SampleKind) *SampleBuffer {
	st := newBufferStore(capacityBytes, kind)
	return &SampleBuffer{
		data:    st.data,
		samples: st.samples,
		kind:    kind,
	}
}

// Bytes returns the full-capacity raw byte area used for reads. A released
// pooled buffer has no byte area.
func (b *SampleBuffer) Bytes() []byte {
	return b.data
}

// CapacityBytes returns the fixed capacity in bytes.
func (b *SampleBuffer) CapacityBytes() int {
	return len(b.data)
}

// Kind returns the sample format.
func (b *SampleBuffer) Kind() SampleKind {
	return b.kind
}

// SampleCount returns the number of valid samples.
func (b *SampleBuffer) SampleCount() int {
	return b.count
}

// Samples returns the valid decoded samples.
func (b *SampleBuffer) Samples() []int16 {
	return b.samples[:b.count]
}

// Fill decodes the first n raw bytes and sets the sample count from them.
// n must be a whole number of samples within capacity.
func (b *SampleBuffer) Fill(n int) error {
	width := b.kind.Width()
	if n < 0 || n > len(b.data) {
		return fmt.Errorf("%w: %d bytes exceeds buffer capacity %d", ErrInvariant, n, len(b.data))
	}
	if n%width != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole number of %s samples", ErrInvariant, n, b.kind)
	}

	count, err := pcm.DecodeInto(b.samples, b.data[:n])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	b.count = count

	return nil
}

// CopyFrom replaces the buffer contents with samples.
func (b *SampleBuffer) CopyFrom(samples []int16) error {
	if len(samples) > len(b.samples) {
		return fmt.Errorf("%w: %d samples exceeds buffer capacity %d",
			ErrInvariant, len(samples), len(b.samples))
	}

	copy(b.samples, samples)
	pcm.EncodeInto(b.data, samples)
	b.count = len(samples)

	return nil
}

// Retain records an additional holder. Each Retain must be matched by a Release.
func (b *SampleBuffer) Retain() {
	if b.released {
		panic("pipeline: retain of released sample buffer")
	}
	b.refs++
}

// RefCount returns the number of additional holders.
func (b *SampleBuffer) RefCount() int {
	return b.refs
}

// Release drops one reference. When no additional holder remains the
// release hook runs exactly once and the buffer must not be used again.
// Releasing a nil or already released buffer panics.
func (b *SampleBuffer) Release() {
	if b == nil {
		panic("pipeline: release of nil sample buffer")
	}
	if b.released {
		panic("pipeline: sample buffer released twice")
	}
	if b.refs > 0 {
		b.refs--
		return
	}

	b.released = true
	if b.release != nil {
		b.release(b)
	}
}

// BufferPool hands out SampleBuffers of one fixed capacity and recycles
// them when released.
type BufferPool struct {
	capacityBytes  int
	kind           SampleKind
	maxOutstanding int

	mu          sync.Mutex
	outstanding int

	pool sync.Pool
}

// NewBufferPool returns a pool of int16 buffers holding capacityBytes each.
// maxOutstanding bounds the number of live buffers; zero or less means
// DefaultMaxOutstanding.
func NewBufferPool(capacityBytes, maxOutstanding int) (*BufferPool, error) {
	kind := SampleInt16
	if capacityBytes <= 0 || capacityBytes > MaxBufferBytes {
		return nil, fmt.Errorf("%w: buffer capacity %d bytes out of range (1-%d)",
			ErrInvalidConfig, capacityBytes, MaxBufferBytes)
	}
	if capacityBytes%kind.Width() != 0 {
		return nil, fmt.Errorf("%w: buffer capacity %d bytes is not a whole number of samples",
			ErrInvalidConfig, capacityBytes)
	}
	if maxOutstanding <= 0 {
		maxOutstanding = DefaultMaxOutstanding
	}

	p := &BufferPool{
		capacityBytes:  capacityBytes,
		kind:           kind,
		maxOutstanding: maxOutstanding,
	}
	p.pool.New = func() any {
		return newBufferStore(p.capacityBytes, p.kind)
	}

	return p, nil
}

// Allocate returns an empty, zeroed buffer with no additional references.
// It fails with ErrOutOfMemory when maxOutstanding buffers are already live.
func (p *BufferPool) Allocate() (*SampleBuffer, error) {
	p.mu.Lock()
	if p.outstanding >= p.maxOutstanding {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %d buffers outstanding", ErrOutOfMemory, p.maxOutstanding)
	}
	p.outstanding++
	p.mu.Unlock()

	st, ok := p.pool.Get().(*bufferStore)
	if !ok {
		panic("pipeline: buffer pool holds a foreign type")
	}
	clear(st.data)
	clear(st.samples)

	return &SampleBuffer{
		data:    st.data,
		samples: st.samples,
		kind:    p.kind,
		release: p.recycle,
		store:   st,
	}, nil
}

// Release invokes the buffer's release hook. See SampleBuffer.Release.
func (p *BufferPool) Release(b *SampleBuffer) {
	b.Release()
}

// CapacityBytes returns the capacity of every buffer in the pool.
func (p *BufferPool) CapacityBytes() int {
	return p.capacityBytes
}

// Outstanding returns the number of allocated, unreleased buffers.
func (p *BufferPool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

func (p *BufferPool) recycle(b *SampleBuffer) {
	p.mu.Lock()
	p.outstanding--
	p.mu.Unlock()

	st := b.store
	b.data, b.samples, b.count, b.store, b.Priv = nil, nil, 0, nil, nil
	if st != nil {
		p.pool.Put(st)
	}
}
