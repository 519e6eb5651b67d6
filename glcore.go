// Package glcore assembles the resource, shader, and framebuffer
// layers into an engine with a frame loop.
//
// An Engine owns one store of each kind over a single driver.Context
// and drives per-frame bookkeeping: frame counters, delta time, the
// camera uniform block, and between-frame budget enforcement. The
// heavy lifting lives in the subpackages; Engine is the wiring.
package glcore

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/glcore/framebuffer"
	"github.com/gogpu/glcore/resource"
	"github.com/gogpu/glcore/shader"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// SetLogger routes diagnostics from glcore and all its subpackages to
// l. Passing nil restores the default no-op logger.
func SetLogger(l *slog.Logger) {
	stored := l
	if stored == nil {
		stored = slog.New(nopHandler{})
	}
	logger.Store(stored)
	resource.SetLogger(l)
	shader.SetLogger(l)
	framebuffer.SetLogger(l)
}

func slogger() *slog.Logger { return logger.Load() }

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
