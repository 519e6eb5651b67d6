package resource

import "fmt"

// DataSource is one pending payload for GPU memory: either bytes the
// caller already has, or a computation that can produce them on demand.
// Sources are consumed at flush time; Bytes may be called more than
// once and must be stable.
type DataSource interface {
	// ByteLen returns the payload length without materializing it.
	ByteLen() int

	// Bytes materializes the payload. The returned slice is read by the
	// store and must not be mutated until the next flush.
	Bytes() []byte
}

// bytesSource wraps caller-owned bytes.
type bytesSource struct {
	data []byte
}

func (s bytesSource) ByteLen() int  { return len(s.data) }
func (s bytesSource) Bytes() []byte { return s.data }

// FromBytes wraps data as a DataSource. The store does not copy; the
// caller must keep data unchanged until the descriptor is next flushed.
func FromBytes(data []byte) DataSource {
	return bytesSource{data: data}
}

// deferredSource produces its payload through a Regenerator. It records
// the size the payload must have; a mismatch is a programmer error.
type deferredSource struct {
	size       int
	regenerate Regenerator
}

func (s *deferredSource) ByteLen() int { return s.size }

func (s *deferredSource) Bytes() []byte {
	src := s.regenerate()
	if src == nil {
		panic("resource: regenerator returned nil source")
	}
	// A regenerator that hands back another callback-backed source would
	// defer forever; the restoration policy is broken.
	if _, ok := src.(*deferredSource); ok {
		panic("resource: regenerator returned a callback-backed source")
	}
	data := src.Bytes()
	if len(data) != s.size {
		panic(fmt.Sprintf("resource: regenerator produced %d bytes, want %d", len(data), s.size))
	}
	return data
}

// Deferred wraps a regeneration callback as a DataSource of a known
// size. Used by the Restorable memory policy; also usable directly for
// uploads whose bytes are expensive to keep around.
func Deferred(size int, regenerate Regenerator) DataSource {
	if regenerate == nil {
		panic("resource: Deferred requires a non-nil regenerator")
	}
	if size < 0 {
		panic("resource: Deferred size must be non-negative")
	}
	return &deferredSource{size: size, regenerate: regenerate}
}
