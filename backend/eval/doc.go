// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package eval provides the built-in interpreter compiler.
//
// # Overview
//
// The interpreter walks a sealed graph node by node against in-memory
// tensors:
//   - Pure Go (no code generation, no hardware requirements)
//   - Every numeric element type; float16 and bfloat16 compute in
//     float32 lanes
//   - NumPy-compatible broadcasting
//   - Chunked multi-goroutine element loops
//
// # Basic Usage
//
// The package registers itself under the name "eval". Importing any
// package that dispatches definition calls is enough to have it
// available, and compiler resolution falls back to it when nothing else
// is configured. It can also be handed a graph directly:
//
//	import (
//	    "github.com/deft-ml/deft/backend/eval"
//	    "github.com/deft-ml/deft/graph"
//	    "github.com/deft-ml/deft/tensor"
//	)
//
//	func run(g *graph.Graph, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
//	    art, err := eval.New().Compile(g, nil)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return art.Execute(inputs)
//	}
//
// # Options
//
// One option is recognized: "parallel", with values "on" (the default)
// and "off". Any other key or value fails compilation with
// backend.ErrCompile.
//
// # Thread Safety
//
// Compiled artifacts are safe for concurrent Execute calls; each call
// evaluates into its own result tensors.
//
// For GPU execution, see the webgpu package.
package eval
