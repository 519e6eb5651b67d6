// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package soft provides an in-memory driver.Context with no GPU behind
// it. Buffers and texture levels are byte slices, fences signal
// immediately, and mipmaps are generated with a box filter.
//
// The package exists for tests and headless tools: it honors the full
// Context contract, including range and handle validation, so store
// logic exercised against it behaves the same as against a real device.
package soft
