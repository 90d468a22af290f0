// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the concrete tensor values of the Deft framework.
//
// # Overview
//
// Tensors are the values that cross the compilation boundary: definitions
// receive them as arguments and produce them as results. This package
// provides:
//   - Runtime-typed tensors (shape, element type, reference-counted buffer)
//   - Generic constructors for compile-time element types
//   - Conversion between element types and from nested Go slices
//   - NumPy-style broadcasting rules
//
// The symbolic handles used inside graph-building definitions live in the
// graph package; they share this package's Shape and DataType.
//
// # Basic Usage
//
//	import "github.com/deft-ml/deft/tensor"
//
//	// Create tensors
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	z, _ := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float32)
//	k := tensor.Scalar(float32(2.5))
//
//	// Inspect structure, read data back
//	_ = x.Shape()     // {2 3}
//	_ = x.DType()     // float32
//	_ = x.AsFloat32() // the backing element slice
//
// # Data Types
//
// The element type is carried at runtime as a DataType:
//   - float32, float64 (floating-point)
//   - float16, bfloat16 (half-precision storage)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for images)
//   - bool (boolean masks)
//
// The generic constructors (FromSlice, Scalar) accept the Go element
// types of the DType constraint. Half-precision tensors are built through
// FromFloat64s, which narrows per element, or by CastTo from a wider
// tensor.
//
// # Nested Conversion
//
// FromNested builds a tensor from nested Go slices, inferring shape and
// element type:
//
//	m, _ := tensor.FromNested([][]float32{{1, 2, 3}, {4, 5, 6}}) // {2 3} float32
//
// Ragged nesting, mixed element types and empty sequences are rejected
// with ErrShapeOrDType.
//
// # Broadcasting
//
// Graph operators follow NumPy broadcasting rules. BroadcastShapes
// implements them over shapes and reports whether either side stretched:
//
//	out, _, _ := tensor.BroadcastShapes(tensor.Shape{3, 1}, tensor.Shape{3, 4}) // {3 4}
//
// # Memory Management
//
// Tensor buffers are reference-counted. Clone and View share storage;
// Release drops a reference. Element data is copied only when a
// conversion changes the element type.
package tensor
