//go:build windows

// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU compiler backend built on WebGPU
// compute shaders.
//
// Unlike the interpreter, it does not register itself: device
// initialization can fail and costs real resources, so registration is
// explicit. Typical use:
//
//	import "github.com/deft-ml/deft/backend/webgpu"
//
//	func main() {
//	    if webgpu.IsAvailable() {
//	        release, err := webgpu.Register()
//	        if err != nil {
//	            log.Fatal(err)
//	        }
//	        defer release()
//	    }
//	    // definitions can now opt in with WithCompiler(webgpu.Name)
//	}
package webgpu

import (
	"github.com/deft-ml/deft/backend"
	internalwebgpu "github.com/deft-ml/deft/internal/backend/webgpu"
)

// Name is the compiler's registered name.
const Name = internalwebgpu.Name

// Compiler compiles recorded graphs into WebGPU compute passes.
type Compiler = internalwebgpu.Compiler

// Compile-time check that Compiler implements backend.Compiler.
var _ backend.Compiler = (*Compiler)(nil)

// IsAvailable reports whether a WebGPU adapter can be acquired on this
// system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

// Register initializes the WebGPU device and registers the compiler
// under Name. The returned release function frees the device; the
// compiler must not be used afterwards.
func Register() (release func(), err error) {
	b, err := internalwebgpu.New()
	if err != nil {
		return nil, err
	}
	backend.Register(internalwebgpu.NewCompiler(b))
	return b.Release, nil
}
