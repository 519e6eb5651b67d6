package glcore

import (
	"errors"
	"time"

	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/glcore/framebuffer"
	"github.com/gogpu/glcore/resource"
	"github.com/gogpu/glcore/shader"
)

// ErrFrameOpen is returned when an operation requires no frame in
// flight but BeginFrame has not been matched by EndFrame.
var ErrFrameOpen = errors.New("glcore: frame already open")

// ErrNoFrame is returned when an operation requires an open frame.
var ErrNoFrame = errors.New("glcore: no frame open")

// Config configures an Engine.
type Config struct {
	// BufferBudgetBytes caps native buffer memory. 0 means unlimited.
	BufferBudgetBytes uint64

	// TextureBudgetBytes caps native texture memory. 0 means unlimited.
	TextureBudgetBytes uint64

	// ShaderVariantLimit caps memoized shader variants per stage and
	// effect. 0 means a reasonable default.
	ShaderVariantLimit int
}

// Engine owns the stores over one driver context and runs the frame
// loop bookkeeping.
//
// Engine methods must be called from the goroutine driving the
// context. The stores it exposes tolerate concurrent callers, but the
// frame loop itself is single-threaded.
type Engine struct {
	ctx driver.Context

	// Buffers, Textures, and Shaders are the engine's stores, exposed
	// directly; Engine adds no indirection over their operations.
	Buffers  *resource.BufferStore
	Textures *resource.TextureStore
	Shaders  *shader.Store

	camera *resource.BufferDescriptor

	frame      uint64
	frameStart time.Time
	delta      time.Duration
	inFrame    bool
	closed     bool
}

// New creates an engine with freshly configured stores over ctx.
func New(ctx driver.Context, cfg Config) *Engine {
	e := &Engine{
		ctx:      ctx,
		Buffers:  resource.NewBufferStore(ctx, resource.StoreConfig{BudgetBytes: cfg.BufferBudgetBytes}),
		Textures: resource.NewTextureStore(ctx, resource.StoreConfig{BudgetBytes: cfg.TextureBudgetBytes}),
		Shaders:  shader.NewStore(ctx, shader.Config{VariantLimit: cfg.ShaderVariantLimit}),
	}
	e.camera = resource.NewBuffer(driver.UsageDynamicDraw, resource.Unfree()).
		SetName("glcore.camera")
	e.camera.SetData(resource.FromBytes(make([]byte, cameraBlockSize)))
	return e
}

// Context returns the driver context the engine runs on.
func (e *Engine) Context() driver.Context { return e.ctx }

// NewTarget creates a render target on the engine's context.
func (e *Engine) NewTarget(cfg framebuffer.Config) (*framebuffer.Target, error) {
	return framebuffer.New(e.ctx, cfg)
}

// Stats aggregates memory statistics across the engine's stores.
type Stats struct {
	Buffers  resource.MemoryStats
	Textures resource.MemoryStats
	Programs int
	Frame    uint64
}

// Stats returns a snapshot of engine-wide statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		Buffers:  e.Buffers.Stats(),
		Textures: e.Textures.Stats(),
		Programs: e.Shaders.ProgramCount(),
		Frame:    e.frame,
	}
}

// Close tears down every store. The engine is unusable afterwards.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.camera.Release()
	e.Shaders.Teardown()
	e.Textures.Close()
	e.Buffers.Close()
	e.closed = true
}
