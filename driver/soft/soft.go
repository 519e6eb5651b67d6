// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"
	"strings"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcore/driver"
)

type bufferObj struct {
	data  []byte
	usage driver.UsageHint
}

type textureObj struct {
	format gputypes.TextureFormat
	width  int
	height int
	levels [][]byte
}

type shaderObj struct {
	stage  driver.ShaderStage
	source string
}

type programObj struct {
	vertex   driver.Shader
	fragment driver.Shader
}

type attachment struct {
	tex   driver.Texture
	level int
	rb    driver.Renderbuffer
}

type framebufferObj struct {
	attachments map[driver.AttachmentPoint]attachment
}

type renderbufferObj struct {
	format gputypes.TextureFormat
	width  int
	height int
	data   []byte
}

// Context is an in-memory driver.Context. The zero value is not usable;
// call New.
//
// Like any Context it expects single-goroutine use.
type Context struct {
	nextID uint64

	buffers       map[uint64]*bufferObj
	textures      map[uint64]*textureObj
	samplers      map[uint64]driver.SamplerState
	shaders       map[uint64]shaderObj
	programs      map[uint64]programObj
	framebuffers  map[uint64]*framebufferObj
	renderbuffers map[uint64]*renderbufferObj
	fences        map[uint64]struct{}

	boundBuffers map[driver.BufferTarget]driver.Buffer
	uniformBases map[int]driver.Buffer
	boundUnits   map[int]driver.Texture
	samplerUnits map[int]driver.Sampler
	current      driver.Program
	readBound    driver.Framebuffer
	drawBound    driver.Framebuffer
	drawBuffers  []driver.AttachmentPoint

	drawingW int
	drawingH int
	// backing store for the default drawing buffer, RGBA8
	drawingBuf []byte

	compileCalls int
	linkCalls    int
}

// New creates a soft context with a drawing buffer of the given size.
func New(width, height int) *Context {
	c := &Context{
		buffers:       make(map[uint64]*bufferObj),
		textures:      make(map[uint64]*textureObj),
		samplers:      make(map[uint64]driver.SamplerState),
		shaders:       make(map[uint64]shaderObj),
		programs:      make(map[uint64]programObj),
		framebuffers:  make(map[uint64]*framebufferObj),
		renderbuffers: make(map[uint64]*renderbufferObj),
		fences:        make(map[uint64]struct{}),
		boundBuffers:  make(map[driver.BufferTarget]driver.Buffer),
		uniformBases:  make(map[int]driver.Buffer),
		boundUnits:    make(map[int]driver.Texture),
		samplerUnits:  make(map[int]driver.Sampler),
	}
	c.Resize(width, height)
	return c
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
	id := c.id()
	c.buffers[id] = &bufferObj{data: make([]byte, size), usage: usage}
	return driver.Buffer{ID: id}, nil
}

func (c *Context) DeleteBuffer(buf driver.Buffer) {
	if buf.IsZero() {
		return
	}
	delete(c.buffers, buf.ID)
}

func (c *Context) buffer(buf driver.Buffer) (*bufferObj, error) {
	b, ok := c.buffers[buf.ID]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", driver.ErrInvalidHandle, buf.ID)
	}
	return b, nil
}

func (c *Context) BufferSubData(buf driver.Buffer, offset int, data []byte) error {
	b, err := c.buffer(buf)
	if err != nil {
		return err
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("%w: write [%d, %d) into %d-byte buffer",
			driver.ErrRangeOutOfBounds, offset, offset+len(data), len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

func (c *Context) CopyBufferSubData(src, dst driver.Buffer, srcOffset, dstOffset, size int) error {
	sb, err := c.buffer(src)
	if err != nil {
		return err
	}
	db, err := c.buffer(dst)
	if err != nil {
		return err
	}
	if srcOffset < 0 || srcOffset+size > len(sb.data) || dstOffset < 0 || dstOffset+size > len(db.data) {
		return fmt.Errorf("%w: copy %d bytes src[%d:] dst[%d:]",
			driver.ErrRangeOutOfBounds, size, srcOffset, dstOffset)
	}
	copy(db.data[dstOffset:dstOffset+size], sb.data[srcOffset:])
	return nil
}

func (c *Context) ReadBufferData(buf driver.Buffer, offset int, dst []byte) error {
	b, err := c.buffer(buf)
	if err != nil {
		return err
	}
	if offset < 0 || offset+len(dst) > len(b.data) {
		return fmt.Errorf("%w: read [%d, %d) from %d-byte buffer",
			driver.ErrRangeOutOfBounds, offset, offset+len(dst), len(b.data))
	}
	copy(dst, b.data[offset:])
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

// Textures.

func (c *Context) CreateTexture(format gputypes.TextureFormat, width, height, levels int) (driver.Texture, error) {
	if width <= 0 || height <= 0 || levels <= 0 {
		return driver.Texture{}, fmt.Errorf("%w: texture extent %dx%d levels %d",
			driver.ErrRangeOutOfBounds, width, height, levels)
	}
	if !driver.FormatValid(format) {
		return driver.Texture{}, fmt.Errorf("%w: %v", driver.ErrUnsupportedFormat, format)
	}
	bpp := driver.FormatBytesPerPixel(format)
	t := &textureObj{format: format, width: width, height: height}
	for lv := 0; lv < levels; lv++ {
		lw, lh := mipExtent(width, height, lv)
		t.levels = append(t.levels, make([]byte, lw*lh*bpp))
	}
	id := c.id()
	c.textures[id] = t
	return driver.Texture{ID: id}, nil
}

func (c *Context) DeleteTexture(tex driver.Texture) {
	if tex.IsZero() {
		return
	}
	delete(c.textures, tex.ID)
}

func (c *Context) texture(tex driver.Texture) (*textureObj, error) {
	t, ok := c.textures[tex.ID]
	if !ok {
		return nil, fmt.Errorf("%w: texture %d", driver.ErrInvalidHandle, tex.ID)
	}
	return t, nil
}

func (c *Context) TexSubImage2D(tex driver.Texture, level, x, y, width, height int, data []byte) error {
	t, err := c.texture(tex)
	if err != nil {
		return err
	}
	if level < 0 || level >= len(t.levels) {
		return fmt.Errorf("%w: mip level %d of %d", driver.ErrRangeOutOfBounds, level, len(t.levels))
	}
	lw, lh := mipExtent(t.width, t.height, level)
	if x < 0 || y < 0 || x+width > lw || y+height > lh {
		return fmt.Errorf("%w: region %dx%d at (%d,%d) in %dx%d level",
			driver.ErrRangeOutOfBounds, width, height, x, y, lw, lh)
	}
	bpp := driver.FormatBytesPerPixel(t.format)
	if len(data) < width*height*bpp {
		return fmt.Errorf("%w: %d data bytes for %dx%d region",
			driver.ErrRangeOutOfBounds, len(data), width, height)
	}
	for row := 0; row < height; row++ {
		dstOff := ((y+row)*lw + x) * bpp
		srcOff := row * width * bpp
		copy(t.levels[level][dstOff:dstOff+width*bpp], data[srcOff:])
	}
	return nil
}

func (c *Context) ReadTexturePixels(tex driver.Texture, level int, dst []byte) error {
	t, err := c.texture(tex)
	if err != nil {
		return err
	}
	if level < 0 || level >= len(t.levels) {
		return fmt.Errorf("%w: mip level %d of %d", driver.ErrRangeOutOfBounds, level, len(t.levels))
	}
	if len(dst) < len(t.levels[level]) {
		return fmt.Errorf("%w: %d dst bytes for %d-byte level",
			driver.ErrRangeOutOfBounds, len(dst), len(t.levels[level]))
	}
	copy(dst, t.levels[level])
	return nil
}

// GenerateMipmap rebuilds levels 1..n-1 from level 0 with a 2x2 box
// filter applied per byte channel.
func (c *Context) GenerateMipmap(tex driver.Texture) error {
	t, err := c.texture(tex)
	if err != nil {
		return err
	}
	bpp := driver.FormatBytesPerPixel(t.format)
	for lv := 1; lv < len(t.levels); lv++ {
		sw, sh := mipExtent(t.width, t.height, lv-1)
		dw, dh := mipExtent(t.width, t.height, lv)
		src, dst := t.levels[lv-1], t.levels[lv]
		for y := 0; y < dh; y++ {
			for x := 0; x < dw; x++ {
				sx, sy := x*2, y*2
				sx1, sy1 := min(sx+1, sw-1), min(sy+1, sh-1)
				for ch := 0; ch < bpp; ch++ {
					sum := int(src[(sy*sw+sx)*bpp+ch]) +
						int(src[(sy*sw+sx1)*bpp+ch]) +
						int(src[(sy1*sw+sx)*bpp+ch]) +
						int(src[(sy1*sw+sx1)*bpp+ch])
					dst[(y*dw+x)*bpp+ch] = byte(sum / 4)
				}
			}
		}
	}
	return nil
}

func (c *Context) BindTexture(unit int, tex driver.Texture) {
	if tex.IsZero() {
		delete(c.boundUnits, unit)
		return
	}
	c.boundUnits[unit] = tex
}

// Samplers.

func (c *Context) CreateSampler(state driver.SamplerState) (driver.Sampler, error) {
	id := c.id()
	c.samplers[id] = state
	return driver.Sampler{ID: id}, nil
}

func (c *Context) DeleteSampler(s driver.Sampler) {
	if s.IsZero() {
		return
	}
	delete(c.samplers, s.ID)
}

func (c *Context) BindSampler(unit int, s driver.Sampler) {
	if s.IsZero() {
		delete(c.samplerUnits, unit)
		return
	}
	c.samplerUnits[unit] = s
}

// Shaders and programs.

// CompileShader accepts any source that does not contain an #error
// directive; a line starting with #error fails compilation with that
// line as the info log, which gives tests a way to exercise failures.
func (c *Context) CompileShader(stage driver.ShaderStage, source string) (driver.Shader, error) {
	c.compileCalls++
	for _, line := range strings.Split(source, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#error") {
			return driver.Shader{}, fmt.Errorf("%w: %s: %s",
				driver.ErrCompileFailed, stage, strings.TrimSpace(line))
		}
	}
	id := c.id()
	c.shaders[id] = shaderObj{stage: stage, source: source}
	return driver.Shader{ID: id}, nil
}

func (c *Context) DeleteShader(s driver.Shader) {
	if s.IsZero() {
		return
	}
	delete(c.shaders, s.ID)
}

func (c *Context) LinkProgram(vertex, fragment driver.Shader) (driver.Program, error) {
	c.linkCalls++
	vs, ok := c.shaders[vertex.ID]
	if !ok || vs.stage != driver.StageVertex {
		return driver.Program{}, fmt.Errorf("%w: invalid vertex stage object %d",
			driver.ErrLinkFailed, vertex.ID)
	}
	fs, ok := c.shaders[fragment.ID]
	if !ok || fs.stage != driver.StageFragment {
		return driver.Program{}, fmt.Errorf("%w: invalid fragment stage object %d",
			driver.ErrLinkFailed, fragment.ID)
	}
	id := c.id()
	c.programs[id] = programObj{vertex: vertex, fragment: fragment}
	return driver.Program{ID: id}, nil
}

func (c *Context) DeleteProgram(p driver.Program) {
	if p.IsZero() {
		return
	}
	delete(c.programs, p.ID)
}

func (c *Context) UseProgram(p driver.Program) {
	c.current = p
}

// Fences signal the moment they are created; there is no device queue
// to wait on.

func (c *Context) FenceSync() (driver.Fence, error) {
	id := c.id()
	c.fences[id] = struct{}{}
	return driver.Fence{ID: id}, nil
}

func (c *Context) ClientWait(f driver.Fence, timeout time.Duration) (driver.FenceStatus, error) {
	if _, ok := c.fences[f.ID]; !ok {
		return driver.FenceTimeout, fmt.Errorf("%w: fence %d", driver.ErrInvalidHandle, f.ID)
	}
	return driver.FenceSignaled, nil
}

func (c *Context) DeleteFence(f driver.Fence) {
	if f.IsZero() {
		return
	}
	delete(c.fences, f.ID)
}

func mipExtent(w, h, level int) (int, int) {
	for ; level > 0; level-- {
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
	}
	return w, h
}
