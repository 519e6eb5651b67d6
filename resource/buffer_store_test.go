package resource_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/glcore/driver/soft"
	"github.com/gogpu/glcore/resource"
)

func newBufferStore(t *testing.T, budget uint64) (*soft.Context, *resource.BufferStore) {
	t.Helper()
	ctx := soft.New(64, 64)
	s := resource.NewBufferStore(ctx, resource.StoreConfig{BudgetBytes: budget})
	t.Cleanup(s.Close)
	return ctx, s
}

func TestBufferResolveMaterializesLazily(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes([]byte{1, 2, 3, 4}))

	if err := s.Register(d); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ctx.LiveBuffers() != 0 {
		t.Fatal("Register allocated a native buffer")
	}

	h, err := s.Resolve(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ctx.LiveBuffers() != 1 {
		t.Fatalf("LiveBuffers = %d, want 1", ctx.LiveBuffers())
	}
	if got := ctx.BoundBuffer(driver.TargetArrayBuffer); got != h {
		t.Fatalf("bound = %v, want %v", got, h)
	}
	if got := ctx.BufferContents(h); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("contents = %v", got)
	}
}

func TestBufferResolveIdempotentWhenClean(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes([]byte{1, 2}))

	h1, err := s.Resolve(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	h2, err := s.Resolve(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("handles differ: %v vs %v", h1, h2)
	}
	if ctx.LiveBuffers() != 1 {
		t.Fatalf("LiveBuffers = %d, want 1", ctx.LiveBuffers())
	}
}

func TestBufferGrowthPreservesFlushedBytes(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	d := resource.NewBuffer(driver.UsageDynamicDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes([]byte{1, 2, 3, 4}))

	if _, err := s.Resolve(d, driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Write past the end: the store must keep the already-uploaded bytes
	// while growing the allocation.
	d.WriteAt(resource.FromBytes([]byte{5, 6}), 4)

	h, err := s.Resolve(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("Resolve after growth: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6}
	if got := ctx.BufferContents(h); !bytes.Equal(got, want) {
		t.Fatalf("contents = %v, want %v", got, want)
	}
	if ctx.LiveBuffers() != 1 {
		t.Fatalf("LiveBuffers = %d, want 1 after realloc", ctx.LiveBuffers())
	}
}

func TestBufferGrowthRemountsUniformBase(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	d := resource.NewBuffer(driver.UsageDynamicDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes(make([]byte, 16)))

	h1, err := s.BindUniformBase(d, 3)
	if err != nil {
		t.Fatalf("BindUniformBase: %v", err)
	}
	if got := ctx.UniformBase(3); got != h1 {
		t.Fatalf("mounted = %v, want %v", got, h1)
	}

	d.WriteAt(resource.FromBytes(make([]byte, 16)), 16)

	h2, err := s.BindUniformBase(d, 3)
	if err != nil {
		t.Fatalf("BindUniformBase after growth: %v", err)
	}
	if h2 == h1 {
		t.Fatal("growth did not reallocate the native buffer")
	}
	if got := ctx.UniformBase(3); got != h2 {
		t.Fatalf("mount point holds %v, want new handle %v", got, h2)
	}

	s.ReleaseUniformBase(d, 3)
	if got := ctx.UniformBase(3); !got.IsZero() {
		t.Fatalf("mount point still holds %v after release", got)
	}
}

func TestBufferShrinkOnFullReplace(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	d := resource.NewBuffer(driver.UsageDynamicDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes(make([]byte, 64)))

	if _, err := s.Resolve(d, driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := s.Stats().UsedBytes; got != 64 {
		t.Fatalf("UsedBytes = %d, want 64", got)
	}

	d.SetData(resource.FromBytes([]byte{1, 2, 3, 4}))
	h, err := s.Resolve(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("Resolve after shrink: %v", err)
	}
	if got := s.Stats().UsedBytes; got != 4 {
		t.Fatalf("UsedBytes = %d, want 4", got)
	}
	if got := ctx.BufferContents(h); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("contents = %v", got)
	}
}

func TestBufferEvictionReadBackRoundTrip(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	content := bytes.Repeat([]byte{0xAB}, 64)
	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes(content))

	if _, err := s.Resolve(d, driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	s.Release(d, driver.TargetArrayBuffer)

	s.SetBudget(32)
	if ctx.LiveBuffers() != 0 {
		t.Fatalf("LiveBuffers = %d, want 0 after eviction", ctx.LiveBuffers())
	}
	if got := s.Stats().EvictionCount; got != 1 {
		t.Fatalf("EvictionCount = %d, want 1", got)
	}

	s.SetBudget(0)
	h, err := s.Resolve(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("Resolve after eviction: %v", err)
	}
	if got := ctx.BufferContents(h); !bytes.Equal(got, content) {
		t.Fatal("contents not restored after read-back eviction")
	}
}

func TestBufferEvictionSkipsBoundAndUnfree(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	pinned := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer pinned.Release()
	pinned.SetData(resource.FromBytes(make([]byte, 32)))

	unfree := resource.NewBuffer(driver.UsageStaticDraw, resource.Unfree())
	defer unfree.Release()
	unfree.SetData(resource.FromBytes(make([]byte, 32)))

	if _, err := s.Resolve(pinned, driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve pinned: %v", err)
	}
	if _, err := s.Resolve(unfree, driver.TargetElementArrayBuffer); err != nil {
		t.Fatalf("Resolve unfree: %v", err)
	}
	s.Release(unfree, driver.TargetElementArrayBuffer)

	// pinned stays bound; unfree is idle but its policy forbids freeing.
	s.SetBudget(16)
	if ctx.LiveBuffers() != 2 {
		t.Fatalf("LiveBuffers = %d, want 2 (shortfall keeps both)", ctx.LiveBuffers())
	}
	if got := s.Stats().UsedBytes; got != 64 {
		t.Fatalf("UsedBytes = %d, want 64", got)
	}
}

func TestBufferResolveUnderImpossibleBudgetKeepsHandle(t *testing.T) {
	ctx, s := newBufferStore(t, 1)

	content := bytes.Repeat([]byte{0x5A}, 256)
	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes(content))

	// The budget can never hold this buffer, but the resolve binding
	// pins it: the caller must still get a live handle back.
	h, err := s.Resolve(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h.IsZero() {
		t.Fatal("Resolve returned a zero handle")
	}
	if ctx.LiveBuffers() != 1 {
		t.Fatalf("LiveBuffers = %d, want 1", ctx.LiveBuffers())
	}
	if got := ctx.BoundBuffer(driver.TargetArrayBuffer); got != h {
		t.Fatalf("bound = %v, want %v", got, h)
	}
	if got := ctx.BufferContents(h); !bytes.Equal(got, content) {
		t.Fatal("contents lost during resolve under budget pressure")
	}
}

func TestBufferUniformBaseUnderImpossibleBudgetKeepsHandle(t *testing.T) {
	ctx, s := newBufferStore(t, 1)

	d := resource.NewBuffer(driver.UsageDynamicDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes(make([]byte, 128)))

	h, err := s.BindUniformBase(d, 2)
	if err != nil {
		t.Fatalf("BindUniformBase: %v", err)
	}
	if h.IsZero() {
		t.Fatal("BindUniformBase returned a zero handle")
	}
	if got := ctx.UniformBase(2); got != h {
		t.Fatalf("uniform base 2 = %v, want %v", got, h)
	}
	if ctx.LiveBuffers() != 1 {
		t.Fatalf("LiveBuffers = %d, want 1", ctx.LiveBuffers())
	}
}

func TestBufferEvictionLRUOrder(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	var ds []*resource.BufferDescriptor
	for i := 0; i < 3; i++ {
		d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
		defer d.Release()
		d.SetData(resource.FromBytes(make([]byte, 32)))
		if _, err := s.Resolve(d, driver.TargetArrayBuffer); err != nil {
			t.Fatalf("Resolve %d: %v", i, err)
		}
		s.Release(d, driver.TargetArrayBuffer)
		ds = append(ds, d)
	}

	// Touch the oldest so the middle one becomes the LRU victim.
	if _, err := s.Resolve(ds[0], driver.TargetArrayBuffer); err != nil {
		t.Fatalf("touch: %v", err)
	}
	s.Release(ds[0], driver.TargetArrayBuffer)

	s.SetBudget(64)
	if ctx.LiveBuffers() != 2 {
		t.Fatalf("LiveBuffers = %d, want 2", ctx.LiveBuffers())
	}
	// ds[1] was least recently used; resolving it has to rematerialize.
	before := ctx.LiveBuffers()
	s.SetBudget(0)
	if _, err := s.Resolve(ds[1], driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve evicted: %v", err)
	}
	if ctx.LiveBuffers() != before+1 {
		t.Fatal("expected the evicted buffer to rematerialize")
	}
}

func TestBufferRestorableRegeneratesOnDemand(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	regenerated := make([]byte, 256)
	calls := 0
	d := resource.NewBuffer(driver.UsageStaticDraw, resource.Restorable(func() resource.DataSource {
		calls++
		return resource.FromBytes(regenerated)
	}))
	defer d.Release()
	d.SetData(resource.FromBytes(bytes.Repeat([]byte{0xFF}, 256)))

	if _, err := s.Resolve(d, driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	s.Release(d, driver.TargetArrayBuffer)

	s.SetBudget(1)
	if calls != 0 {
		t.Fatal("regenerator ran at eviction instead of on demand")
	}
	if ctx.LiveBuffers() != 0 {
		t.Fatalf("LiveBuffers = %d, want 0", ctx.LiveBuffers())
	}

	s.SetBudget(0)
	h, err := s.Resolve(d, driver.TargetArrayBuffer)
	if err != nil {
		t.Fatalf("Resolve after eviction: %v", err)
	}
	if calls != 1 {
		t.Fatalf("regenerator calls = %d, want 1", calls)
	}
	if got := ctx.BufferContents(h); !bytes.Equal(got, regenerated) {
		t.Fatal("contents are not the regenerated bytes")
	}
}

func TestBufferSharedAcrossStores(t *testing.T) {
	_, s1 := newBufferStore(t, 0)
	_, s2 := newBufferStore(t, 0)

	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer d.Release()

	if err := s1.Register(d); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s2.Register(d); !errors.Is(err, resource.ErrSharedAcrossStores) {
		t.Fatalf("Register in second store = %v, want ErrSharedAcrossStores", err)
	}
}

func TestBufferReleaseDestroysNative(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	d.SetData(resource.FromBytes([]byte{1}))
	if _, err := s.Resolve(d, driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	d.Release()
	if ctx.LiveBuffers() != 0 {
		t.Fatalf("LiveBuffers = %d, want 0 after last reference", ctx.LiveBuffers())
	}
	if got := s.Stats().RegisteredCount; got != 0 {
		t.Fatalf("RegisteredCount = %d, want 0", got)
	}
	if err := s.Register(d); !errors.Is(err, resource.ErrDescriptorReleased) {
		t.Fatalf("Register released = %v, want ErrDescriptorReleased", err)
	}
}

func TestBufferStoreClose(t *testing.T) {
	ctx, s := newBufferStore(t, 0)

	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes([]byte{1, 2}))
	if _, err := s.Resolve(d, driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	s.Close()
	if ctx.LiveBuffers() != 0 {
		t.Fatalf("LiveBuffers = %d, want 0 after Close", ctx.LiveBuffers())
	}
	if _, err := s.Resolve(d, driver.TargetArrayBuffer); !errors.Is(err, resource.ErrStoreClosed) {
		t.Fatalf("Resolve after Close = %v, want ErrStoreClosed", err)
	}
}

func TestBufferStats(t *testing.T) {
	_, s := newBufferStore(t, 128)

	d := resource.NewBuffer(driver.UsageStaticDraw, resource.ReadBack())
	defer d.Release()
	d.SetData(resource.FromBytes(make([]byte, 64)))
	if _, err := s.Resolve(d, driver.TargetArrayBuffer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	st := s.Stats()
	if st.BudgetBytes != 128 || st.UsedBytes != 64 || st.ResourceCount != 1 {
		t.Fatalf("Stats = %+v", st)
	}
	if st.Utilization != 0.5 {
		t.Fatalf("Utilization = %v, want 0.5", st.Utilization)
	}
}
