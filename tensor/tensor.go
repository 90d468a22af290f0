// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/deft-ml/deft/internal/tensor"
)

// DType is a constraint for compile-time-typed tensor construction.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType identifies the element type of a tensor at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
	Int32    DataType = tensor.Int32
	Int64    DataType = tensor.Int64
	Uint8    DataType = tensor.Uint8
	Bool     DataType = tensor.Bool
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} is a 3D tensor with dimensions 2×3×4; Shape{}
// is a scalar.
type Shape = tensor.Shape

// Tensor is a concrete, runtime-typed tensor value.
//
// The element buffer is reference counted and may be shared by reshape
// views. Typed accessors (AsFloat32, AsInt64, ...) panic when the dtype
// does not match; Data exposes the raw bytes.
type Tensor = tensor.Tensor

// ErrShapeOrDType reports invalid shape/dtype combinations: arity or
// broadcast mismatches, ragged nested input, wrong element kinds.
var ErrShapeOrDType = tensor.ErrShapeOrDType

// New allocates a zero-filled tensor.
func New(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.New(shape, dtype)
}

// FromSlice builds a tensor from a typed slice in row-major order.
//
// Example:
//
//	m, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T DType](data []T, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromNested builds a tensor from a (possibly nested) Go sequence such as
// [][]float32{{1, 2}, {3, 4}}. The nesting must be rectangular and
// uniformly typed; violations fail with ErrShapeOrDType before any
// allocation. Plain int leaves become int64.
func FromNested(v any) (*Tensor, error) {
	return tensor.FromNested(v)
}

// Scalar builds a rank-0 tensor holding a single value.
func Scalar[T DType](v T) *Tensor {
	return tensor.Scalar(v)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.Zeros(shape, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.Ones(shape, dtype)
}

// Full creates a tensor filled with value, rounded per dtype.
func Full(shape Shape, value float64, dtype DataType) (*Tensor, error) {
	return tensor.Full(shape, value, dtype)
}

// CastTo converts a tensor to another element type, cloning when the
// dtype already matches. Int64 to Int32 and back are exact where the
// values fit; float conversions round.
func CastTo(t *Tensor, dtype DataType) (*Tensor, error) {
	return tensor.CastTo(t, dtype)
}

// ToFloat64s widens a numeric tensor's elements into a float64 slice in
// row-major order. Bool yields 0 and 1.
func ToFloat64s(t *Tensor) []float64 {
	return tensor.ToFloat64s(t)
}

// FromFloat64s builds a tensor of the given shape and dtype from widened
// values, narrowing per dtype.
func FromFloat64s(vals []float64, shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.FromFloat64s(vals, shape, dtype)
}

// Promote returns the common element type two operands promote to.
// Bool < Uint8 < Int32 < Int64 < BFloat16 < Float16 < Float32 < Float64;
// the mixed Float16/BFloat16 pair promotes to Float32.
func Promote(a, b DataType) DataType {
	return tensor.Promote(a, b)
}

// BroadcastShapes resolves two shapes under NumPy broadcasting rules. The
// second result reports whether any broadcasting took place.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
