package resource

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/gputypes"
)

// nextDescriptorID mints process-unique descriptor identities.
var nextDescriptorID atomic.Uint64

// BufferDescriptor is the logical identity of a GPU buffer. It can be
// shared across any number of holders via Retain/Release; the native
// object lives and dies independently inside a BufferStore.
//
// All mutation methods are queue-only: they are safe to call any number
// of times between flushes and never touch the GPU, except for the
// documented growth read-back in WriteAt.
type BufferDescriptor struct {
	id     uint64
	name   string
	usage  driver.UsageHint
	policy MemoryPolicy

	refs     atomic.Int32
	released atomic.Bool

	queue uploadQueue

	// store is the owning store once registered. Guarded by storeMu so a
	// concurrent last-release and register do not race.
	storeMu sync.Mutex
	store   *BufferStore
}

// NewBuffer creates a buffer descriptor with one reference held by the
// caller. No native allocation happens until a store resolves it.
func NewBuffer(usage driver.UsageHint, policy MemoryPolicy) *BufferDescriptor {
	d := &BufferDescriptor{
		id:     nextDescriptorID.Add(1),
		usage:  usage,
		policy: policy,
	}
	d.refs.Store(1)
	return d
}

// ID returns the descriptor's unique identity.
func (d *BufferDescriptor) ID() uint64 { return d.id }

// Name returns the optional human-readable name.
func (d *BufferDescriptor) Name() string { return d.name }

// SetName sets a debug name used in logs.
func (d *BufferDescriptor) SetName(name string) *BufferDescriptor {
	d.name = name
	return d
}

// Usage returns the usage hint the native buffer is allocated with.
func (d *BufferDescriptor) Usage() driver.UsageHint { return d.usage }

// Policy returns the descriptor's memory policy.
func (d *BufferDescriptor) Policy() MemoryPolicy { return d.policy }

// Retain adds a reference and returns d for chaining.
func (d *BufferDescriptor) Retain() *BufferDescriptor {
	if d.released.Load() {
		panic("resource: Retain on released buffer descriptor")
	}
	d.refs.Add(1)
	return d
}

// Release drops one reference. Dropping the last reference unregisters
// the descriptor from its store and destroys the native object
// immediately, regardless of budget; the descriptor is dead afterwards.
func (d *BufferDescriptor) Release() {
	n := d.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic("resource: Release of buffer descriptor past zero references")
	}
	d.released.Store(true)

	d.storeMu.Lock()
	s := d.store
	d.storeMu.Unlock()
	if s != nil {
		s.Unregister(d)
	}
}

// SetData replaces the buffer's entire content with src on next flush.
func (d *BufferDescriptor) SetData(src DataSource) {
	d.queue.Replace(src)
}

// WriteAt queues a write of src at a byte offset. Writes growing the
// buffer past its tracked length synchronously read back current GPU
// contents first (see package docs).
func (d *BufferDescriptor) WriteAt(src DataSource, offset int) {
	d.queue.WriteAt(src, offset)
}

// ByteLen returns the tracked required byte length.
func (d *BufferDescriptor) ByteLen() int { return d.queue.MaxLen() }

// ownerStore returns the current owning store, if any.
func (d *BufferDescriptor) ownerStore() *BufferStore {
	d.storeMu.Lock()
	defer d.storeMu.Unlock()
	return d.store
}

// setOwnerStore records the owning store (nil to clear).
func (d *BufferDescriptor) setOwnerStore(s *BufferStore) {
	d.storeMu.Lock()
	d.store = s
	d.storeMu.Unlock()
}

// TextureConfig describes a texture descriptor at construction time.
// Width, Height, and Format are fixed for the descriptor's lifetime:
// texture storage is immutable, and a size change means a new descriptor.
type TextureConfig struct {
	// Width and Height are the level-0 dimensions in pixels.
	Width  int
	Height int

	// Format is the internal pixel format.
	Format gputypes.TextureFormat

	// Levels is the mip level count. 0 means 1 (no mipmaps).
	Levels int

	// Sampler is the fixed sampling state bound alongside the texture.
	Sampler driver.SamplerState

	// Policy is the eviction-recovery strategy. Zero value is ReadBack.
	Policy MemoryPolicy

	// Label is an optional debug name.
	Label string
}

// texImageItem is one pending texture write: a payload, its mip level,
// and the destination region within that level.
type texImageItem struct {
	src         DataSource
	level, x, y int
	w, h        int
}

// base reports whether the item fully covers level 0, making it the
// designated base upload that precedes mipmap generation.
func (it texImageItem) base(width, height int) bool {
	return it.level == 0 && it.x == 0 && it.y == 0 && it.w == width && it.h == height
}

// TextureDescriptor is the logical identity of a GPU texture with
// immutable storage. Like buffers, content mutations accumulate in a
// queue until a store flushes them; unlike buffers, the storage can
// never grow, so writes must stay inside the fixed extent.
type TextureDescriptor struct {
	id     uint64
	name   string
	width  int
	height int
	levels int
	format gputypes.TextureFormat

	sampler driver.SamplerState
	policy  MemoryPolicy

	refs     atomic.Int32
	released atomic.Bool

	mu    sync.Mutex
	items []texImageItem

	storeMu sync.Mutex
	store   *TextureStore
}

// NewTexture creates a texture descriptor with one reference held by
// the caller. Dimensions must be positive and within platform limits.
func NewTexture(cfg TextureConfig) (*TextureDescriptor, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("resource: invalid texture dimensions %dx%d", cfg.Width, cfg.Height)
	}
	levels := cfg.Levels
	if levels <= 0 {
		levels = 1
	}
	if !driver.FormatValid(cfg.Format) {
		return nil, fmt.Errorf("resource: texture format %v: %w", cfg.Format, driver.ErrUnsupportedFormat)
	}
	bpp := driver.FormatBytesPerPixel(cfg.Format)
	if cfg.Width > maxByteLen/bpp/cfg.Height {
		return nil, fmt.Errorf("resource: texture %dx%d exceeds platform size limit", cfg.Width, cfg.Height)
	}

	d := &TextureDescriptor{
		id:      nextDescriptorID.Add(1),
		name:    cfg.Label,
		width:   cfg.Width,
		height:  cfg.Height,
		levels:  levels,
		format:  cfg.Format,
		sampler: cfg.Sampler,
		policy:  cfg.Policy,
	}
	d.refs.Store(1)
	return d, nil
}

// ID returns the descriptor's unique identity.
func (d *TextureDescriptor) ID() uint64 { return d.id }

// Name returns the optional human-readable name.
func (d *TextureDescriptor) Name() string { return d.name }

// Size returns the level-0 dimensions.
func (d *TextureDescriptor) Size() (width, height int) { return d.width, d.height }

// Format returns the internal pixel format.
func (d *TextureDescriptor) Format() gputypes.TextureFormat { return d.format }

// Levels returns the mip level count.
func (d *TextureDescriptor) Levels() int { return d.levels }

// Policy returns the descriptor's memory policy.
func (d *TextureDescriptor) Policy() MemoryPolicy { return d.policy }

// Retain adds a reference and returns d for chaining.
func (d *TextureDescriptor) Retain() *TextureDescriptor {
	if d.released.Load() {
		panic("resource: Retain on released texture descriptor")
	}
	d.refs.Add(1)
	return d
}

// Release drops one reference; the last one unregisters the descriptor
// and destroys the native texture immediately.
func (d *TextureDescriptor) Release() {
	n := d.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic("resource: Release of texture descriptor past zero references")
	}
	d.released.Store(true)

	d.storeMu.Lock()
	s := d.store
	d.storeMu.Unlock()
	if s != nil {
		s.Unregister(d)
	}
}

// TexImage queues a write of src into a region of one mip level. The
// region must lie inside the level's extent: texture storage is
// immutable and cannot grow, so an out-of-range region is a programmer
// error and panics.
//
// A write covering all of level 0 supersedes everything queued before
// it and becomes the base upload that precedes mipmap generation.
func (d *TextureDescriptor) TexImage(src DataSource, level, x, y, w, h int) {
	lw, lh := mipExtent(d.width, d.height, level)
	if level < 0 || level >= d.levels {
		panic(fmt.Sprintf("resource: mip level %d out of range [0, %d)", level, d.levels))
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > lw || y+h > lh {
		panic(fmt.Sprintf("resource: region (%d,%d %dx%d) outside level %d extent %dx%d",
			x, y, w, h, level, lw, lh))
	}
	want := w * h * driver.FormatBytesPerPixel(d.format)
	if src.ByteLen() != want {
		panic(fmt.Sprintf("resource: payload is %d bytes, region needs %d", src.ByteLen(), want))
	}

	it := texImageItem{src: src, level: level, x: x, y: y, w: w, h: h}

	d.mu.Lock()
	defer d.mu.Unlock()
	if it.base(d.width, d.height) {
		// Full level-0 overwrite: prior items are moot.
		d.items = d.items[:0]
	}
	d.items = append(d.items, it)
}

// SetImage queues a full level-0 upload, the common case.
func (d *TextureDescriptor) SetImage(src DataSource) {
	d.TexImage(src, 0, 0, 0, d.width, d.height)
}

// drainImages returns queued items in insertion order and clears them.
func (d *TextureDescriptor) drainImages() []texImageItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := d.items
	d.items = nil
	return items
}

// restoreImage clears the queue and installs src as the sole base item.
func (d *TextureDescriptor) restoreImage(src DataSource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = d.items[:0]
	d.items = append(d.items, texImageItem{src: src, level: 0, x: 0, y: 0, w: d.width, h: d.height})
}

// restoreLevels clears the queue and installs one full-extent item per
// mip level, base first. Replaying them re-generates mips after the
// base write and then overwrites each level with its saved bytes, so
// the chain comes back exactly as it was read.
func (d *TextureDescriptor) restoreLevels(srcs []DataSource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = d.items[:0]
	for level, src := range srcs {
		lw, lh := mipExtent(d.width, d.height, level)
		d.items = append(d.items, texImageItem{src: src, level: level, x: 0, y: 0, w: lw, h: lh})
	}
}

func (d *TextureDescriptor) pendingImages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

func (d *TextureDescriptor) ownerStore() *TextureStore {
	d.storeMu.Lock()
	defer d.storeMu.Unlock()
	return d.store
}

func (d *TextureDescriptor) setOwnerStore(s *TextureStore) {
	d.storeMu.Lock()
	d.store = s
	d.storeMu.Unlock()
}

// byteSize returns the storage size in bytes across the full mip
// chain; this is the value accounted against the store budget.
func (d *TextureDescriptor) byteSize() int {
	total := 0
	for level := 0; level < d.levels; level++ {
		total += d.levelByteSize(level)
	}
	return total
}

// levelByteSize returns the storage size of one mip level.
func (d *TextureDescriptor) levelByteSize(level int) int {
	lw, lh := mipExtent(d.width, d.height, level)
	return lw * lh * driver.FormatBytesPerPixel(d.format)
}

// mipExtent returns the dimensions of one mip level.
func mipExtent(w, h, level int) (int, int) {
	lw := w >> uint(level)
	lh := h >> uint(level)
	if lw < 1 {
		lw = 1
	}
	if lh < 1 {
		lh = 1
	}
	return lw, lh
}
