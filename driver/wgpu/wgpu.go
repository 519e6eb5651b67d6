// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glcore/driver"
)

// Context implements driver.Context on a wgpu/hal device and queue.
// Like every driver.Context it expects single-goroutine use.
type Context struct {
	device hal.Device
	queue  hal.Queue

	nextID uint64

	buffers  map[uint64]hal.Buffer
	textures map[uint64]*textureMeta
	samplers map[uint64]driver.SamplerState
	shaders  map[uint64]*shaderMeta
	programs map[uint64]programMeta
	fences   map[uint64]uint64 // fence handle -> queue submission index
	fbos     map[uint64]*framebufferMeta

	boundBuffers map[driver.BufferTarget]driver.Buffer
	uniformBases map[int]driver.Buffer
	boundUnits   map[int]driver.Texture
	samplerUnits map[int]driver.Sampler
	current      driver.Program
	readBound    driver.Framebuffer
	drawBound    driver.Framebuffer

	drawingW int
	drawingH int
}

// New wraps the device behind a host-supplied provider, usually
// gogpu.App.GPUContextProvider(). The provider must additionally expose
// the underlying HAL objects through HalDevice() any and HalQueue() any.
func New(provider gpucontext.DeviceProvider, drawingW, drawingH int) (*Context, error) {
	if provider == nil {
		return nil, fmt.Errorf("wgpu: nil device provider")
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	return NewWithDevice(device, queue, drawingW, drawingH), nil
}

// NewWithDevice wraps an explicit device and queue.
func NewWithDevice(device hal.Device, queue hal.Queue, drawingW, drawingH int) *Context {
	return &Context{
		device:       device,
		queue:        queue,
		buffers:      make(map[uint64]hal.Buffer),
		textures:     make(map[uint64]*textureMeta),
		samplers:     make(map[uint64]driver.SamplerState),
		shaders:      make(map[uint64]*shaderMeta),
		programs:     make(map[uint64]programMeta),
		fences:       make(map[uint64]uint64),
		fbos:         make(map[uint64]*framebufferMeta),
		boundBuffers: make(map[driver.BufferTarget]driver.Buffer),
		uniformBases: make(map[int]driver.Buffer),
		boundUnits:   make(map[int]driver.Texture),
		samplerUnits: make(map[int]driver.Sampler),
		drawingW:     drawingW,
		drawingH:     drawingH,
	}
}

var _ driver.Context = (*Context)(nil)

func (c *Context) id() uint64 {
	c.nextID++
	return c.nextID
}

// Buffers.

func (c *Context) CreateBuffer(size int, usage driver.UsageHint) (driver.Buffer, error) {
	if size < 0 {
		return driver.Buffer{}, fmt.Errorf("%w: negative buffer size %d", driver.ErrRangeOutOfBounds, size)
	}
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glcore_buffer",
		Size:  uint64(size),
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst |
			gputypes.BufferUsageVertex | gputypes.BufferUsageUniform |
			gputypes.BufferUsageStorage,
	})
	if err != nil {
		return driver.Buffer{}, fmt.Errorf("%w: %v", driver.ErrOutOfDeviceMemory, err)
	}
	id := c.id()
	c.buffers[id] = buf
	return driver.Buffer{ID: id}, nil
}

func (c *Context) DeleteBuffer(buf driver.Buffer) {
	if buf.IsZero() {
		return
	}
	if b, ok := c.buffers[buf.ID]; ok {
		c.device.DestroyBuffer(b)
		delete(c.buffers, buf.ID)
	}
}

func (c *Context) halBuffer(buf driver.Buffer) (hal.Buffer, error) {
	b, ok := c.buffers[buf.ID]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", driver.ErrInvalidHandle, buf.ID)
	}
	return b, nil
}

func (c *Context) BufferSubData(buf driver.Buffer, offset int, data []byte) error {
	b, err := c.halBuffer(buf)
	if err != nil {
		return err
	}
	if err := c.queue.WriteBuffer(b, uint64(offset), data); err != nil {
		return fmt.Errorf("wgpu: write buffer: %w", err)
	}
	return nil
}

func (c *Context) CopyBufferSubData(src, dst driver.Buffer, srcOffset, dstOffset, size int) error {
	sb, err := c.halBuffer(src)
	if err != nil {
		return err
	}
	db, err := c.halBuffer(dst)
	if err != nil {
		return err
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glcore_buffer_copy",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("buffer_copy"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(sb, db, []hal.BufferCopy{{
		SrcOffset: uint64(srcOffset),
		DstOffset: uint64(dstOffset),
		Size:      uint64(size),
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	return c.submitAndWait([]hal.CommandBuffer{cmdBuf})
}

func (c *Context) ReadBufferData(buf driver.Buffer, offset int, dst []byte) error {
	b, err := c.halBuffer(buf)
	if err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	staging, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glcore_read_staging",
		Size:  uint64(len(dst)),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: staging: %v", driver.ErrOutOfDeviceMemory, err)
	}
	defer c.device.DestroyBuffer(staging)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glcore_buffer_read",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("buffer_read"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(b, staging, []hal.BufferCopy{{
		SrcOffset: uint64(offset),
		DstOffset: 0,
		Size:      uint64(len(dst)),
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	if err := c.submitAndWait([]hal.CommandBuffer{cmdBuf}); err != nil {
		return err
	}
	return c.readStaging(staging, dst)
}

// readStaging maps a MapRead staging buffer, copies its contents into
// dst, and unmaps. The GPU must be done with the buffer before calling.
func (c *Context) readStaging(staging hal.Buffer, dst []byte) error {
	mapping, err := c.device.MapBuffer(staging, 0, uint64(len(dst)))
	if err != nil {
		return fmt.Errorf("wgpu: map staging: %w", err)
	}
	copy(dst, unsafe.Slice((*byte)(mapping.Ptr), len(dst)))
	if err := c.device.UnmapBuffer(staging); err != nil {
		return fmt.Errorf("wgpu: unmap staging: %w", err)
	}
	return nil
}

func (c *Context) BindBuffer(target driver.BufferTarget, buf driver.Buffer) {
	if buf.IsZero() {
		delete(c.boundBuffers, target)
		return
	}
	c.boundBuffers[target] = buf
}

func (c *Context) BindBufferBase(point int, buf driver.Buffer) {
	if buf.IsZero() {
		delete(c.uniformBases, point)
		return
	}
	c.uniformBases[point] = buf
}

// BoundBuffer returns the buffer logically bound at target, for the
// render layer assembling bind groups.
func (c *Context) BoundBuffer(target driver.BufferTarget) driver.Buffer {
	return c.boundBuffers[target]
}

// UniformBase returns the buffer logically mounted at an indexed
// uniform binding point.
func (c *Context) UniformBase(point int) driver.Buffer {
	return c.uniformBases[point]
}

// HalBuffer exposes the native object behind a handle, for the render
// layer recording passes.
func (c *Context) HalBuffer(buf driver.Buffer) (hal.Buffer, bool) {
	b, ok := c.buffers[buf.ID]
	return b, ok
}

// Fences.
//
// hal queues report completion through monotonically increasing
// submission indexes rather than per-submit fence objects, so a fence
// here is an empty submission whose index we remember.

func (c *Context) FenceSync() (driver.Fence, error) {
	idx, err := c.queue.Submit(nil)
	if err != nil {
		return driver.Fence{}, fmt.Errorf("wgpu: submit fence: %w", err)
	}
	id := c.id()
	c.fences[id] = idx
	return driver.Fence{ID: id}, nil
}

func (c *Context) ClientWait(f driver.Fence, timeout time.Duration) (driver.FenceStatus, error) {
	idx, ok := c.fences[f.ID]
	if !ok {
		return driver.FenceTimeout, fmt.Errorf("%w: fence %d", driver.ErrInvalidHandle, f.ID)
	}
	deadline := time.Now().Add(timeout)
	for {
		if c.queue.PollCompleted() >= idx {
			return driver.FenceSignaled, nil
		}
		if !time.Now().Before(deadline) {
			return driver.FenceTimeout, nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (c *Context) DeleteFence(f driver.Fence) {
	if f.IsZero() {
		return
	}
	delete(c.fences, f.ID)
}

// submitAndWait submits command buffers and blocks until the device
// consumed them.
func (c *Context) submitAndWait(cmdBufs []hal.CommandBuffer) error {
	if _, err := c.queue.Submit(cmdBufs); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := c.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	return nil
}

// DrawingBufferSize returns the logical drawing buffer size set at
// construction or by Resize.
func (c *Context) DrawingBufferSize() (width, height int) {
	return c.drawingW, c.drawingH
}

// Resize updates the logical drawing buffer size, typically from a
// surface-configure callback.
func (c *Context) Resize(width, height int) {
	c.drawingW, c.drawingH = width, height
}
