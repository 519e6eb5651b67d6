package resource

import (
	"fmt"
	"sync"

	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/glcore/internal/cache"
)

// textureRuntime is the live native texture, its sampler, and tracked
// texture-unit bindings. Texture storage is immutable: the handle is
// created once at the descriptor's fixed size and never reallocated.
type textureRuntime struct {
	handle  driver.Texture
	sampler driver.Sampler
	size    int

	// units tracks which texture units the runtime is bound to. A bound
	// runtime is pinned against eviction.
	units map[int]struct{}

	node *cache.Node[uint64]
}

func (rt *textureRuntime) bound() bool { return len(rt.units) > 0 }

// TextureStore owns every native texture behind its registered
// descriptors. It follows the same materialize/flush/touch/evict
// contract as BufferStore, specialized for immutable storage: no grow
// path exists, and a size change requires a new descriptor.
//
// Binding tracks texture units: binding a texture to a unit already
// occupied by a different texture fails with ErrTargetOccupied instead
// of silently overwriting.
type TextureStore struct {
	mu  sync.Mutex
	ctx driver.Context

	budget uint64
	used   uint64

	descriptors map[uint64]*TextureDescriptor
	runtimes    map[uint64]*textureRuntime

	// unitOwner maps texture unit -> descriptor id currently bound there.
	unitOwner map[int]uint64

	lru *cache.LRU[uint64]

	evictions uint64
	closed    bool
}

// NewTextureStore creates a texture store over the given context.
func NewTextureStore(ctx driver.Context, cfg StoreConfig) *TextureStore {
	return &TextureStore{
		ctx:         ctx,
		budget:      cfg.BudgetBytes,
		descriptors: make(map[uint64]*TextureDescriptor),
		runtimes:    make(map[uint64]*textureRuntime),
		unitOwner:   make(map[int]uint64),
		lru:         cache.NewLRU[uint64](),
	}
}

// Register begins tracking a descriptor; idempotent for descriptors
// this store already owns, ErrSharedAcrossStores for foreign ones.
func (s *TextureStore) Register(d *TextureDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(d)
}

func (s *TextureStore) registerLocked(d *TextureDescriptor) error {
	if s.closed {
		return ErrStoreClosed
	}
	if d.released.Load() {
		return ErrDescriptorReleased
	}
	if owner := d.ownerStore(); owner != nil {
		if owner != s {
			return fmt.Errorf("%w: texture %q (id %d)", ErrSharedAcrossStores, d.name, d.id)
		}
		return nil
	}
	s.descriptors[d.id] = d
	d.setOwnerStore(s)
	return nil
}

// Resolve materializes the texture if needed, flushes queued image
// writes (generating mipmaps after the base upload), touches the LRU
// chain, evicts over budget, and binds texture and sampler to the unit.
//
// Binding to a unit occupied by a different texture fails with
// ErrTargetOccupied; the previous binding is left untouched.
func (s *TextureStore) Resolve(d *TextureDescriptor, unit int) (driver.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return driver.Texture{}, ErrStoreClosed
	}
	if err := s.registerLocked(d); err != nil {
		return driver.Texture{}, err
	}
	if owner, ok := s.unitOwner[unit]; ok && owner != d.id {
		return driver.Texture{}, fmt.Errorf("%w: unit %d held by texture id %d",
			ErrTargetOccupied, unit, owner)
	}

	rt, err := s.materializeLocked(d)
	if err != nil {
		return driver.Texture{}, err
	}
	if err := s.flushLocked(d, rt); err != nil {
		return driver.Texture{}, err
	}

	s.lru.MoveToFront(rt.node)

	s.ctx.BindTexture(unit, rt.handle)
	s.ctx.BindSampler(unit, rt.sampler)
	rt.units[unit] = struct{}{}
	s.unitOwner[unit] = d.id

	// Evict only after the unit binding pins the runtime, so a resolve
	// under a tight budget can never reclaim its own texture.
	s.evictLocked()
	return rt.handle, nil
}

// materializeLocked creates the immutable-storage texture and its
// sampler on first use.
func (s *TextureStore) materializeLocked(d *TextureDescriptor) (*textureRuntime, error) {
	if rt, ok := s.runtimes[d.id]; ok {
		return rt, nil
	}

	handle, err := s.ctx.CreateTexture(d.format, d.width, d.height, d.levels)
	if err != nil {
		return nil, fmt.Errorf("resource: create texture %q (%dx%d %v): %w",
			d.name, d.width, d.height, d.format, err)
	}
	sampler, err := s.ctx.CreateSampler(d.sampler)
	if err != nil {
		s.ctx.DeleteTexture(handle)
		return nil, fmt.Errorf("resource: create sampler for texture %q: %w", d.name, err)
	}

	rt := &textureRuntime{
		handle:  handle,
		sampler: sampler,
		size:    d.byteSize(),
		units:   make(map[int]struct{}),
	}
	rt.node = s.lru.PushFront(d.id)
	s.runtimes[d.id] = rt
	s.used += uint64(rt.size)

	slogger().Debug("texture materialized",
		"texture", d.name, "id", d.id, "bytes", rt.size)
	return rt, nil
}

// flushLocked applies queued image writes in insertion order. The base
// upload (full level-0 coverage) triggers mipmap generation immediately
// after it lands, before any sub-region writes.
func (s *TextureStore) flushLocked(d *TextureDescriptor, rt *textureRuntime) error {
	items := d.drainImages()
	for _, it := range items {
		if err := s.ctx.TexSubImage2D(rt.handle, it.level, it.x, it.y, it.w, it.h, it.src.Bytes()); err != nil {
			return fmt.Errorf("resource: flush texture %q level %d: %w", d.name, it.level, err)
		}
		if d.levels > 1 && it.base(d.width, d.height) {
			if err := s.ctx.GenerateMipmap(rt.handle); err != nil {
				return fmt.Errorf("resource: generate mipmaps for texture %q: %w", d.name, err)
			}
		}
	}
	return nil
}

// Release clears the binding record for one unit. The native object
// stays alive.
func (s *TextureStore) Release(d *TextureDescriptor, unit int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.unitOwner[unit]; !ok || owner != d.id {
		return
	}
	delete(s.unitOwner, unit)
	if rt, ok := s.runtimes[d.id]; ok {
		delete(rt.units, unit)
	}
}

// Unregister stops tracking the descriptor and destroys its native
// objects immediately. Called automatically on last reference drop.
func (s *TextureStore) Unregister(d *TextureDescriptor) {
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

func (s *TextureStore) destroyRuntimeLocked(d *TextureDescriptor, rt *textureRuntime) {
	for unit := range rt.units {
		delete(s.unitOwner, unit)
	}
	s.ctx.DeleteTexture(rt.handle)
	s.ctx.DeleteSampler(rt.sampler)
	rt.handle = driver.Texture{}
	rt.sampler = driver.Sampler{}
	s.lru.Remove(rt.node)
	delete(s.runtimes, d.id)
	s.used -= uint64(rt.size)
}

// EvictIfOverBudget frees least-recently-used unbound textures until
// the store fits its budget.
func (s *TextureStore) EvictIfOverBudget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
}

func (s *TextureStore) evictLocked() {
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
			slogger().Warn("texture eviction shortfall",
				"used", s.used, "budget", s.budget)
			return
		}
	}
}

func (s *TextureStore) evictOneLocked(d *TextureDescriptor, rt *textureRuntime) {
	switch d.policy.Kind() {
	case KindReadBack:
		// Every level is read out, not just the base: sub-level writes
		// made after mipmap generation must survive the round trip.
		srcs := make([]DataSource, d.levels)
		for level := 0; level < d.levels; level++ {
			data := make([]byte, d.levelByteSize(level))
			if err := s.ctx.ReadTexturePixels(rt.handle, level, data); err != nil {
				slogger().Warn("eviction read-back failed, content lost",
					"texture", d.name, "id", d.id, "level", level, "error", err)
			}
			srcs[level] = FromBytes(data)
		}
		d.restoreLevels(srcs)

	case KindRestorable:
		// The regenerator owes base content only; mips rebuild on flush.
		d.restoreImage(Deferred(d.levelByteSize(0), d.policy.regenerate))
	}

	size := rt.size
	s.destroyRuntimeLocked(d, rt)
	s.evictions++

	slogger().Debug("texture evicted",
		"texture", d.name, "id", d.id, "bytes", size, "policy", d.policy.Kind())
}

// SetBudget updates the byte budget and evicts immediately if needed.
func (s *TextureStore) SetBudget(bytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = bytes
	s.evictLocked()
}

// Stats returns current memory usage statistics.
func (s *TextureStore) Stats() MemoryStats {
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
func (s *TextureStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for _, rt := range s.runtimes {
		s.ctx.DeleteTexture(rt.handle)
		s.ctx.DeleteSampler(rt.sampler)
	}
	for _, d := range s.descriptors {
		d.setOwnerStore(nil)
	}
	s.descriptors = nil
	s.runtimes = nil
	s.unitOwner = nil
	s.lru.Clear()
	s.used = 0
	s.closed = true
}
