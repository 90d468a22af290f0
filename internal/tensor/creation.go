package tensor

import (
	"fmt"
	"unsafe"
)

// FromSlice creates a tensor from a Go slice. The slice is copied into the
// tensor's memory.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
func FromSlice[T DType](data []T, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %s requires %d elements, but got %d",
			ErrShapeOrDType, shape, shape.NumElements(), len(data))
	}

	var dummy T
	t, err := New(shape, inferDataType(dummy))
	if err != nil {
		return nil, err
	}

	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation of the source slice
	src := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(dummy)))
	copy(t.buf.data, src)
	return t, nil
}

// Scalar creates a rank-0 tensor holding a single value.
//
// Example:
//
//	ten := tensor.Scalar(int32(10))
func Scalar[T DType](v T) *Tensor {
	t, err := FromSlice([]T{v}, Shape{})
	if err != nil {
		panic(err) // a scalar shape is always valid
	}
	return t
}

// Zeros creates a zero-filled tensor of the given runtime element type.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	return New(shape, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) (*Tensor, error) {
	return Full(shape, 1, dtype)
}

// Full creates a tensor filled with value, narrowed to dtype.
func Full(shape Shape, value float64, dtype DataType) (*Tensor, error) {
	vals := make([]float64, shape.NumElements())
	for i := range vals {
		vals[i] = value
	}
	return FromFloat64s(vals, shape, dtype)
}
