//go:build !windows

// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU compiler backend built on WebGPU
// compute shaders. On this platform the native bindings are not wired
// up; IsAvailable reports false and Register fails.
package webgpu

import "errors"

// Name is the compiler's registered name.
const Name = "webgpu"

// IsAvailable reports whether a WebGPU adapter can be acquired on this
// system.
func IsAvailable() bool { return false }

// Register initializes the WebGPU device and registers the compiler
// under Name.
func Register() (release func(), err error) {
	return nil, errors.New("webgpu: not supported on this platform")
}
