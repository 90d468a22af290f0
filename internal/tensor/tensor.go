package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/x448/float16"
)

// buffer is a reference-counted shared byte store. Sharing keeps reshape
// views free and lets evaluators detect when inplace writes are safe.
type buffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newBuffer creates a new reference-counted buffer with refCount = 1.
func newBuffer(size int) *buffer {
	buf := &buffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (for Clone and View operations).
func (b *buffer) addRef() {
	b.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (b *buffer) release() {
	if b.refCount.Add(-1) == 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.data = nil
	}
}

// isUnique returns true if this buffer has only one reference.
func (b *buffer) isUnique() bool {
	return b.refCount.Load() == 1
}

// Tensor is a concrete, materialized tensor value: contiguous row-major
// host memory with runtime type information. Symbolic handles used while
// recording a graph never carry one of these; only parameters bound at call
// time, injected constants, and results do.
type Tensor struct {
	buf    *buffer
	shape  Shape
	stride []int
	dtype  DataType
}

// New creates a zero-initialized tensor with the given shape and type.
func New(shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid shape: %v", ErrShapeOrDType, err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &Tensor{
		buf:    newBuffer(byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's row-major memory strides.
func (t *Tensor) Strides() []int {
	return t.stride
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (t *Tensor) ByteSize() int {
	return t.NumElements() * t.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (t *Tensor) Data() []byte {
	return t.buf.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (t *Tensor) AsFloat32() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", t.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&t.buf.data[0])), t.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (t *Tensor) AsFloat64() []float64 {
	if t.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", t.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&t.buf.data[0])), t.NumElements())
}

// AsFloat16 interprets the data as []float16.Float16 (IEEE 754 half).
// Panics if the tensor's dtype is not Float16.
func (t *Tensor) AsFloat16() []float16.Float16 {
	if t.dtype != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", t.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&t.buf.data[0])), t.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (t *Tensor) AsInt32() []int32 {
	if t.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", t.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&t.buf.data[0])), t.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (t *Tensor) AsInt64() []int64 {
	if t.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", t.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&t.buf.data[0])), t.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (t *Tensor) AsUint8() []uint8 {
	if t.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", t.dtype))
	}
	return t.buf.data // Already []byte = []uint8
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (t *Tensor) AsBool() []bool {
	if t.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", t.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*bool)(unsafe.Pointer(&t.buf.data[0])), t.NumElements())
}

// Clone creates a shallow copy sharing the buffer with reference counting.
func (t *Tensor) Clone() *Tensor {
	t.buf.addRef()
	return &Tensor{
		buf:    t.buf,
		shape:  t.shape.Clone(),
		stride: append([]int(nil), t.stride...),
		dtype:  t.dtype,
	}
}

// View returns a tensor of a different shape sharing this tensor's buffer.
// The element count must match; the view is contiguous row-major over the
// same bytes. This is what makes reshape free.
func (t *Tensor) View(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid shape: %v", ErrShapeOrDType, err)
	}
	if shape.NumElements() != t.NumElements() {
		return nil, fmt.Errorf("%w: cannot view %s as %s: element counts differ",
			ErrShapeOrDType, t.shape, shape)
	}
	t.buf.addRef()
	return &Tensor{
		buf:    t.buf,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  t.dtype,
	}, nil
}

// SharesBufferWith reports whether two tensors alias the same storage.
func (t *Tensor) SharesBufferWith(o *Tensor) bool {
	return t.buf == o.buf
}

// Release decrements the reference count and deallocates if it reaches 0.
func (t *Tensor) Release() {
	t.buf.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (t *Tensor) IsUnique() bool {
	return t.buf.isUnique()
}

// Equal reports exact equality: same shape, same dtype, same bytes.
// Use floating-point tolerance comparisons in tests where rounding applies.
func (t *Tensor) Equal(o *Tensor) bool {
	if o == nil || !t.shape.Equal(o.shape) || t.dtype != o.dtype {
		return false
	}
	a, b := t.buf.data, o.buf.data
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders a short description like "float32{2 3}".
func (t *Tensor) String() string {
	return fmt.Sprintf("%s%s", t.dtype, t.shape)
}
