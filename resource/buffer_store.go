package resource

import (
	"fmt"
	"sync"

	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/glcore/internal/cache"
)

// StoreConfig holds configuration shared by the resource stores.
type StoreConfig struct {
	// BudgetBytes caps the native memory a store keeps allocated.
	// 0 means unlimited. Eviction frees least-recently-used unbound
	// resources until the store fits the budget again.
	BudgetBytes uint64
}

// bufferRuntime is the live native buffer and its GPU-visible metadata.
// A runtime exists iff its descriptor id is in the store's registry with
// a materialized handle, and it is in the LRU chain for exactly as long.
type bufferRuntime struct {
	handle driver.Buffer
	size   int

	// bindings tracks which buffer targets currently reference the
	// runtime; uboPoints tracks indexed uniform-buffer mount points.
	// A runtime referenced by either set is pinned against eviction.
	bindings  map[driver.BufferTarget]struct{}
	uboPoints map[int]struct{}

	node *cache.Node[uint64]
}

// bound reports whether the runtime is referenced anywhere.
func (rt *bufferRuntime) bound() bool {
	return len(rt.bindings) > 0 || len(rt.uboPoints) > 0
}

// BufferStore owns every native buffer object behind its registered
// descriptors: it materializes them lazily, flushes queued uploads,
// tracks bindings, and evicts least-recently-used unbound buffers when
// over budget.
//
// BufferStore is safe for concurrent use, but the driver context under
// it is single-threaded; all store calls must come from the goroutine
// driving the frame.
type BufferStore struct {
	mu  sync.Mutex
	ctx driver.Context

	budget uint64
	used   uint64

	descriptors map[uint64]*BufferDescriptor
	runtimes    map[uint64]*bufferRuntime

	// lru orders runtimes by recency of use; tail is the next eviction
	// candidate.
	lru *cache.LRU[uint64]

	evictions uint64
	closed    bool
}

// NewBufferStore creates a buffer store over the given context.
func NewBufferStore(ctx driver.Context, cfg StoreConfig) *BufferStore {
	return &BufferStore{
		ctx:         ctx,
		budget:      cfg.BudgetBytes,
		descriptors: make(map[uint64]*BufferDescriptor),
		runtimes:    make(map[uint64]*bufferRuntime),
		lru:         cache.NewLRU[uint64](),
	}
}

// Register begins tracking a descriptor. No native allocation happens.
// Registering an already-registered descriptor is a no-op; registering
// a descriptor owned by a different store fails with
// ErrSharedAcrossStores.
func (s *BufferStore) Register(d *BufferDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(d)
}

func (s *BufferStore) registerLocked(d *BufferDescriptor) error {
	if s.closed {
		return ErrStoreClosed
	}
	if d.released.Load() {
		return ErrDescriptorReleased
	}
	if owner := d.ownerStore(); owner != nil {
		if owner != s {
			return fmt.Errorf("%w: buffer %q (id %d)", ErrSharedAcrossStores, d.name, d.id)
		}
		return nil
	}
	s.descriptors[d.id] = d
	d.setOwnerStore(s)
	return nil
}

// Resolve is the hot path: it materializes the native buffer if needed,
// flushes queued uploads (growing the allocation first when required),
// marks the runtime most recently used, evicts over-budget idle
// buffers, binds the handle to target, and returns it.
func (s *BufferStore) Resolve(d *BufferDescriptor, target driver.BufferTarget) (driver.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, err := s.resolveLocked(d)
	if err != nil {
		return driver.Buffer{}, err
	}

	s.ctx.BindBuffer(target, rt.handle)
	rt.bindings[target] = struct{}{}
	s.evictLocked()
	return rt.handle, nil
}

// BindUniformBase resolves the descriptor and mounts it at an indexed
// uniform-buffer binding point. The mount survives until
// ReleaseUniformBase and pins the runtime against eviction; a later
// growth reallocation remounts the point onto the new native handle.
func (s *BufferStore) BindUniformBase(d *BufferDescriptor, point int) (driver.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, err := s.resolveLocked(d)
	if err != nil {
		return driver.Buffer{}, err
	}

	s.ctx.BindBufferBase(point, rt.handle)
	rt.uboPoints[point] = struct{}{}
	s.evictLocked()
	return rt.handle, nil
}

// resolveLocked implements steps 1-4 of the resolve contract, leaving
// the caller to bind. Eviction runs after the caller records its
// binding, so the freshly resolved runtime is pinned and can never be
// reclaimed by its own resolve.
func (s *BufferStore) resolveLocked(d *BufferDescriptor) (*bufferRuntime, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	if err := s.registerLocked(d); err != nil {
		return nil, err
	}

	rt, err := s.materializeLocked(d)
	if err != nil {
		return nil, err
	}
	if err := s.flushLocked(d, rt); err != nil {
		return nil, err
	}

	s.lru.MoveToFront(rt.node)
	return rt, nil
}

// materializeLocked creates the native buffer on first use, sized by
// the queue's tracked length.
func (s *BufferStore) materializeLocked(d *BufferDescriptor) (*bufferRuntime, error) {
	if rt, ok := s.runtimes[d.id]; ok {
		return rt, nil
	}

	size := d.queue.MaxLen()
	handle, err := s.ctx.CreateBuffer(size, d.usage)
	if err != nil {
		return nil, fmt.Errorf("resource: create buffer %q (%d bytes): %w", d.name, size, err)
	}

	rt := &bufferRuntime{
		handle:    handle,
		size:      size,
		bindings:  make(map[driver.BufferTarget]struct{}),
		uboPoints: make(map[int]struct{}),
	}
	rt.node = s.lru.PushFront(d.id)
	s.runtimes[d.id] = rt
	s.used += uint64(size)

	// Growth writes snapshot current GPU bytes through this hook. It
	// reads the runtime fields directly: the context is single-threaded,
	// and the runtime pointer stays valid across growth reallocations.
	ctx := s.ctx
	d.queue.setSnapshot(func(size int) ([]byte, bool) {
		if rt.handle.IsZero() {
			return nil, false
		}
		n := size
		if rt.size < n {
			n = rt.size
		}
		buf := make([]byte, size)
		if err := ctx.ReadBufferData(rt.handle, 0, buf[:n]); err != nil {
			slogger().Warn("buffer growth read-back failed",
				"buffer", d.name, "id", d.id, "error", err)
			return nil, false
		}
		return buf, true
	})

	slogger().Debug("buffer materialized",
		"buffer", d.name, "id", d.id, "bytes", size)
	return rt, nil
}

// flushLocked drains the upload queue into the runtime, reallocating
// first when the required size differs from the current allocation.
func (s *BufferStore) flushLocked(d *BufferDescriptor, rt *bufferRuntime) error {
	if d.queue.Len() == 0 {
		return nil
	}
	items := d.queue.Drain()
	required := d.queue.MaxLen()

	switch {
	case required > rt.size:
		// Grow: allocate, device-copy old contents, remount every
		// referencing binding point onto the new handle, and only then
		// delete the old object. Draw state referencing the old handle
		// must never observe a deleted buffer.
		if err := s.reallocLocked(d, rt, required, true); err != nil {
			return err
		}

	case required < rt.size && len(items) == 1 && items[0].offset == 0 && items[0].end() == required:
		// Full replace with less data: reinitialize at the smaller size.
		// No copy needed, the single item overwrites everything.
		if err := s.reallocLocked(d, rt, required, false); err != nil {
			return err
		}
	}

	for _, it := range items {
		if err := s.ctx.BufferSubData(rt.handle, it.offset, it.src.Bytes()); err != nil {
			return fmt.Errorf("resource: flush buffer %q at offset %d: %w", d.name, it.offset, err)
		}
	}
	return nil
}

// reallocLocked replaces the runtime's native object with one of
// newSize bytes, optionally copying old contents device-side, and
// rebinds every tracked target and uniform-buffer mount point.
func (s *BufferStore) reallocLocked(d *BufferDescriptor, rt *bufferRuntime, newSize int, copyOld bool) error {
	newHandle, err := s.ctx.CreateBuffer(newSize, d.usage)
	if err != nil {
		return fmt.Errorf("resource: grow buffer %q to %d bytes: %w", d.name, newSize, err)
	}

	if copyOld && rt.size > 0 {
		if err := s.ctx.CopyBufferSubData(rt.handle, newHandle, 0, 0, rt.size); err != nil {
			s.ctx.DeleteBuffer(newHandle)
			return fmt.Errorf("resource: copy buffer %q contents on grow: %w", d.name, err)
		}
	}

	// Remount before deleting the old handle.
	for point := range rt.uboPoints {
		s.ctx.BindBufferBase(point, newHandle)
	}
	for target := range rt.bindings {
		s.ctx.BindBuffer(target, newHandle)
	}
	s.ctx.DeleteBuffer(rt.handle)

	s.used += uint64(newSize)
	s.used -= uint64(rt.size)
	slogger().Debug("buffer reallocated",
		"buffer", d.name, "id", d.id, "from", rt.size, "to", newSize)

	rt.handle = newHandle
	rt.size = newSize
	return nil
}

// Release clears one binding record. The native object stays alive; the
// runtime merely becomes an eviction candidate once nothing references it.
func (s *BufferStore) Release(d *BufferDescriptor, target driver.BufferTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rt, ok := s.runtimes[d.id]; ok {
		delete(rt.bindings, target)
	}
}

// ReleaseUniformBase unmounts an indexed uniform-buffer binding point.
func (s *BufferStore) ReleaseUniformBase(d *BufferDescriptor, point int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.runtimes[d.id]
	if !ok {
		return
	}
	if _, mounted := rt.uboPoints[point]; !mounted {
		return
	}
	delete(rt.uboPoints, point)
	s.ctx.BindBufferBase(point, driver.Buffer{})
}

// Unregister stops tracking the descriptor and destroys its native
// object immediately, regardless of budget. Called automatically when
// the last descriptor reference is dropped.
func (s *BufferStore) Unregister(d *BufferDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.descriptors[d.id]; !ok {
		return
	}
	delete(s.descriptors, d.id)
	d.setOwnerStore(nil)

	if rt, ok := s.runtimes[d.id]; ok {
		s.destroyRuntimeLocked(d, rt)
	}
}

// destroyRuntimeLocked deletes the native object and removes the
// runtime from registry and LRU atomically with respect to the store
// lock.
func (s *BufferStore) destroyRuntimeLocked(d *BufferDescriptor, rt *bufferRuntime) {
	d.queue.setSnapshot(nil)
	s.ctx.DeleteBuffer(rt.handle)
	rt.handle = driver.Buffer{}
	s.lru.Remove(rt.node)
	delete(s.runtimes, d.id)
	s.used -= uint64(rt.size)
}

// EvictIfOverBudget frees least-recently-used unbound buffers until the
// store fits its budget. Resolve calls this automatically; it is
// exported for callers that want to reclaim between frames.
func (s *BufferStore) EvictIfOverBudget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
}

func (s *BufferStore) evictLocked() {
	if s.budget == 0 {
		return
	}

	for s.used > s.budget {
		evicted := false
		for _, id := range s.lru.Keys() {
			d := s.descriptors[id]
			rt := s.runtimes[id]
			if d == nil || rt == nil {
				continue
			}
			if rt.bound() || d.policy.Kind() == KindUnfree {
				continue
			}
			s.evictOneLocked(d, rt)
			evicted = true
			break
		}
		if !evicted {
			// Everything left is pinned or bound. Not fatal: report and
			// keep operating over budget.
			slogger().Warn("buffer eviction shortfall",
				"used", s.used, "budget", s.budget)
			return
		}
	}
}

// evictOneLocked applies the descriptor's memory policy, then destroys
// the native object.
func (s *BufferStore) evictOneLocked(d *BufferDescriptor, rt *bufferRuntime) {
	switch d.policy.Kind() {
	case KindReadBack:
		data := make([]byte, rt.size)
		if err := s.ctx.ReadBufferData(rt.handle, 0, data); err != nil {
			slogger().Warn("eviction read-back failed, content lost",
				"buffer", d.name, "id", d.id, "error", err)
		}
		d.queue.Restore(FromBytes(data))

	case KindRestorable:
		d.queue.Restore(Deferred(rt.size, d.policy.regenerate))
	}

	size := rt.size
	s.destroyRuntimeLocked(d, rt)
	s.evictions++

	slogger().Debug("buffer evicted",
		"buffer", d.name, "id", d.id, "bytes", size, "policy", d.policy.Kind())
}

// SetBudget updates the byte budget and evicts immediately if the store
// no longer fits.
func (s *BufferStore) SetBudget(bytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = bytes
	s.evictLocked()
}

// Stats returns current memory usage statistics.
func (s *BufferStore) Stats() MemoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var utilization float64
	if s.budget > 0 {
		utilization = float64(s.used) / float64(s.budget)
	}
	return MemoryStats{
		BudgetBytes:     s.budget,
		UsedBytes:       s.used,
		ResourceCount:   len(s.runtimes),
		RegisteredCount: len(s.descriptors),
		EvictionCount:   s.evictions,
		Utilization:     utilization,
	}
}

// Close destroys every native object and rejects further use.
func (s *BufferStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for id, rt := range s.runtimes {
		if d := s.descriptors[id]; d != nil {
			d.queue.setSnapshot(nil)
		}
		s.ctx.DeleteBuffer(rt.handle)
	}
	for _, d := range s.descriptors {
		d.setOwnerStore(nil)
	}
	s.descriptors = nil
	s.runtimes = nil
	s.lru.Clear()
	s.used = 0
	s.closed = true
}
