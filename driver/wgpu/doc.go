// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu adapts a wgpu/hal device to the driver.Context contract.
//
// Buffer and texture traffic maps directly onto the HAL queue; shader
// sources are WGSL, compiled to SPIR-V through naga. State-machine
// operations that WebGL exposes globally (binding points, the current
// program) have no HAL equivalent and are tracked here as logical
// state for the render layer above to consume.
//
// A few framebuffer operations need a render pass to express on this
// backend and return driver.ErrNotSupported until one exists; see the
// individual methods.
package wgpu
