package glcore

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/gogpu/glcore/resource"
)

// CameraBinding is the indexed uniform-buffer binding point the camera
// block is mounted at while a frame is open. Shaders reference it as
// layout(std140) binding 0.
const CameraBinding = 0

// cameraBlockSize is two column-major mat4s, std140-packed.
const cameraBlockSize = 2 * 16 * 4

// Camera is the per-frame camera uniform block: view and projection
// matrices in column-major order.
type Camera struct {
	View       [16]float32
	Projection [16]float32
}

// encode packs the block std140-style, little-endian.
func (c Camera) encode() []byte {
	buf := make([]byte, cameraBlockSize)
	for i, f := range c.View {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	for i, f := range c.Projection {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(f))
	}
	return buf
}

// Identity is a camera with identity view and projection.
var Identity = Camera{
	View:       mat4Identity,
	Projection: mat4Identity,
}

var mat4Identity = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// SetCamera queues new camera matrices. They reach the GPU on the next
// BeginFrame, or immediately if a frame is open.
func (e *Engine) SetCamera(c Camera) error {
	e.camera.SetData(resource.FromBytes(c.encode()))
	if !e.inFrame {
		return nil
	}
	_, err := e.Buffers.BindUniformBase(e.camera, CameraBinding)
	return err
}

// BeginFrame starts a frame: bumps the frame index, updates delta
// time, and mounts the camera block. Frames do not nest.
func (e *Engine) BeginFrame() error {
	if e.inFrame {
		return ErrFrameOpen
	}
	e.frame++
	now := time.Now()
	if !e.frameStart.IsZero() {
		e.delta = now.Sub(e.frameStart)
	}
	e.frameStart = now
	e.inFrame = true

	if _, err := e.Buffers.BindUniformBase(e.camera, CameraBinding); err != nil {
		e.inFrame = false
		return err
	}
	return nil
}

// EndFrame closes the frame: releases the camera mount and enforces
// memory budgets while the device is idle-ish between frames.
func (e *Engine) EndFrame() error {
	if !e.inFrame {
		return ErrNoFrame
	}
	e.Buffers.ReleaseUniformBase(e.camera, CameraBinding)
	e.Buffers.EvictIfOverBudget()
	e.Textures.EvictIfOverBudget()
	e.inFrame = false

	slogger().Debug("frame ended", "frame", e.frame, "delta", e.delta)
	return nil
}

// Frame returns the index of the current or most recent frame.
func (e *Engine) Frame() uint64 { return e.frame }

// Delta returns the wall time between the two most recent BeginFrame
// calls. Zero during the first frame.
func (e *Engine) Delta() time.Duration { return e.delta }
