package resource

import (
	"fmt"
	"math"
	"sync"
)

// maxByteLen is the largest byte length a queue accepts. WebGL-class
// contexts reject buffers at or beyond 2^31 bytes; exceeding it here is
// a construction-time programmer error, never a silent clamp.
const maxByteLen = math.MaxInt32

// uploadItem is one pending write: a payload and its destination byte
// offset within the resource.
type uploadItem struct {
	src    DataSource
	offset int
}

// end returns the exclusive end offset of the write.
func (it uploadItem) end() int { return it.offset + it.src.ByteLen() }

// uploadQueue accumulates pending writes for one buffer descriptor.
// Items are applied in insertion order at flush time. The queue tracks
// the maximum end offset seen, which decides whether the native object
// must be grown before flushing.
//
// The queue is the one component allowed to touch the GPU outside a
// flush: a write growing past the tracked length snapshots current GPU
// contents first, so bytes uploaded but not re-queued are not lost.
type uploadQueue struct {
	mu     sync.Mutex
	items  []uploadItem
	maxLen int

	// snapshot reads back the first size bytes of current GPU contents.
	// Installed by the store while a runtime exists; nil otherwise.
	snapshot func(size int) ([]byte, bool)
}

// Replace drops all queued items and enqueues src as a full rewrite at
// offset 0. The tracked length becomes exactly len(src); a larger prior
// allocation is shrunk on next flush.
func (q *uploadQueue) Replace(src DataSource) {
	n := src.ByteLen()
	checkLen(n)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = q.items[:0]
	q.items = append(q.items, uploadItem{src: src, offset: 0})
	q.maxLen = n
}

// WriteAt enqueues a write of src at the given byte offset.
//
// A write at offset 0 covering the whole tracked length behaves as
// Replace: everything queued before it is moot. A write inside the
// tracked length simply appends. A write past the tracked length is the
// growth case: current GPU contents (if any) are read back synchronously
// and prepended as a full rewrite, then the new write is appended.
func (q *uploadQueue) WriteAt(src DataSource, offset int) {
	if offset < 0 {
		panic(fmt.Sprintf("resource: negative write offset %d", offset))
	}
	n := src.ByteLen()
	checkLen(n)
	if offset > maxByteLen-n {
		panic(fmt.Sprintf("resource: write range [%d, %d+%d) exceeds platform limit", offset, offset, n))
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	end := offset + n
	switch {
	case offset == 0 && end >= q.maxLen:
		// Full overwrite: prior items are moot.
		q.items = q.items[:0]
		q.items = append(q.items, uploadItem{src: src, offset: 0})
		q.maxLen = n

	case end <= q.maxLen:
		// In-range partial write; the eventual allocation covers it.
		q.items = append(q.items, uploadItem{src: src, offset: offset})

	default:
		// Growth past the tracked length. Snapshot what the GPU holds
		// now, or previously flushed bytes would be lost when the store
		// reallocates at the new size.
		if q.snapshot != nil {
			if data, ok := q.snapshot(q.maxLen); ok {
				q.items = append([]uploadItem{{src: FromBytes(data), offset: 0}}, q.items...)
			}
		}
		q.items = append(q.items, uploadItem{src: src, offset: offset})
		q.maxLen = end
	}
}

// Drain returns all queued items in insertion order and clears the
// queue. The tracked length is kept: it still describes the required
// allocation size.
func (q *uploadQueue) Drain() []uploadItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// Restore clears the queue and installs src as the sole item, keeping
// the tracked length in sync. Used by eviction policies.
func (q *uploadQueue) Restore(src DataSource) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = q.items[:0]
	q.items = append(q.items, uploadItem{src: src, offset: 0})
	q.maxLen = src.ByteLen()
}

// Len returns the number of queued items.
func (q *uploadQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// MaxLen returns the tracked required byte length.
func (q *uploadQueue) MaxLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxLen
}

// setSnapshot installs or clears the GPU read-back hook.
func (q *uploadQueue) setSnapshot(fn func(size int) ([]byte, bool)) {
	q.mu.Lock()
	q.snapshot = fn
	q.mu.Unlock()
}

// checkLen panics when a payload length is outside platform limits.
func checkLen(n int) {
	if n < 0 || n > maxByteLen {
		panic(fmt.Sprintf("resource: byte length %d exceeds platform limit", n))
	}
}
