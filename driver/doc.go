// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver defines the narrow device contract that the glcore
// resource stores are written against.
//
// The contract models one WebGL2-style rendering context: stateful,
// handle-based, and expensive to talk to. Stores never assume anything
// about what stands behind a handle; they only rely on the ordering and
// error semantics documented on [Context].
//
// Two implementations ship with glcore:
//   - driver/soft: a headless in-memory context used by tests and as a
//     CPU fallback.
//   - driver/wgpu: a context mapped onto gogpu/wgpu's HAL.
//
// Handles returned by a Context are opaque non-zero identifiers. A zero
// handle is never valid and IsZero reports it as such.
package driver
