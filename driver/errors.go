// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "errors"

// Context errors. Object-creation failures wrap one of these so callers
// can distinguish device loss from plain exhaustion.
var (
	// ErrContextLost is returned when the native context is gone and no
	// object can be created or used.
	ErrContextLost = errors.New("driver: context lost")

	// ErrOutOfDeviceMemory is returned when the device cannot satisfy an
	// allocation.
	ErrOutOfDeviceMemory = errors.New("driver: out of device memory")

	// ErrInvalidHandle is returned when an operation names a handle the
	// context does not know.
	ErrInvalidHandle = errors.New("driver: invalid handle")

	// ErrRangeOutOfBounds is returned when a read or write range falls
	// outside the object's allocated storage.
	ErrRangeOutOfBounds = errors.New("driver: range out of bounds")

	// ErrCompileFailed is returned by CompileShader; the error text
	// includes the native info log.
	ErrCompileFailed = errors.New("driver: shader compile failed")

	// ErrLinkFailed is returned by LinkProgram; the error text includes
	// the native info log.
	ErrLinkFailed = errors.New("driver: program link failed")

	// ErrIncompleteFramebuffer is returned when a framebuffer's
	// attachment set does not form a renderable combination.
	ErrIncompleteFramebuffer = errors.New("driver: framebuffer incomplete")

	// ErrNotSupported is returned by contexts that do not implement an
	// optional operation.
	ErrNotSupported = errors.New("driver: operation not supported")

	// ErrUnsupportedFormat is returned when a pixel format has no
	// uncompressed per-pixel layout this package can address.
	ErrUnsupportedFormat = errors.New("driver: unsupported pixel format")
)
