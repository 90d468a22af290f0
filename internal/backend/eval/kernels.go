package eval

import (
	"fmt"
	"math"

	bfloat16 "github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"

	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/parallel"
	"github.com/deft-ml/deft/internal/tensor"
)

// laneNumeric covers the element types kernels compute on directly.
// Half-precision tensors are widened to float32 lanes first.
type laneNumeric interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// f32Lanes widens a floating tensor's elements to float32 lanes.
// Float32 tensors expose their buffer directly; half-precision tensors
// decode into a fresh slice.
func f32Lanes(t *tensor.Tensor) []float32 {
	switch t.DType() {
	case tensor.Float32:
		return t.AsFloat32()
	case tensor.Float16:
		src := t.AsFloat16()
		out := make([]float32, len(src))
		for i, h := range src {
			out[i] = h.Float32()
		}
		return out
	case tensor.BFloat16:
		return bfloat16.DecodeFloat32(t.Data())
	default:
		panic("eval: f32Lanes on " + t.DType().String())
	}
}

// storeF32 narrows computed float32 lanes into a half-precision
// destination. Float32 destinations are written in place and never pass
// through here.
func storeF32(dst *tensor.Tensor, vals []float32) {
	switch dst.DType() {
	case tensor.Float16:
		out := dst.AsFloat16()
		for i, v := range vals {
			out[i] = float16.Fromfloat32(v)
		}
	case tensor.BFloat16:
		copy(dst.Data(), bfloat16.EncodeFloat32(vals))
	default:
		panic("eval: storeF32 on " + dst.DType().String())
	}
}

// broadcastStrides computes strides for broadcasting a shape to outShape.
// Dimensions of size 1, and dimensions the input lacks on the left, get
// stride 0 so every output coordinate maps back into the input.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim

	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// flatIndex maps an output flat index to the source flat index under
// broadcast-adjusted strides.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	idx := 0
	for i := 0; i < len(outStrides); i++ {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		idx += coord * inStrides[i]
	}
	return idx
}

// floatOp returns the elementwise implementation of a binary operator
// over float lanes.
func floatOp[T ~float32 | ~float64](kind expr.OpKind) func(a, b T) T {
	switch kind {
	case expr.OpAdd:
		return func(a, b T) T { return a + b }
	case expr.OpSub:
		return func(a, b T) T { return a - b }
	case expr.OpMul:
		return func(a, b T) T { return a * b }
	case expr.OpDiv:
		return func(a, b T) T { return a / b }
	case expr.OpPow:
		return func(a, b T) T { return T(math.Pow(float64(a), float64(b))) }
	case expr.OpMinimum:
		return func(a, b T) T {
			if a < b {
				return a
			}
			return b
		}
	case expr.OpMaximum:
		return func(a, b T) T {
			if a > b {
				return a
			}
			return b
		}
	}
	return nil
}

// intOp returns the elementwise implementation of a binary operator over
// integer lanes. Division truncates; negative powers panic (caught at the
// Execute boundary).
func intOp[T ~int32 | ~int64 | ~uint8](kind expr.OpKind) func(a, b T) T {
	switch kind {
	case expr.OpAdd:
		return func(a, b T) T { return a + b }
	case expr.OpSub:
		return func(a, b T) T { return a - b }
	case expr.OpMul:
		return func(a, b T) T { return a * b }
	case expr.OpDiv:
		return func(a, b T) T { return a / b }
	case expr.OpPow:
		return intPow[T]
	case expr.OpMinimum:
		return func(a, b T) T {
			if a < b {
				return a
			}
			return b
		}
	case expr.OpMaximum:
		return func(a, b T) T {
			if a > b {
				return a
			}
			return b
		}
	}
	return nil
}

// intPow raises a to a non-negative power by squaring.
func intPow[T ~int32 | ~int64 | ~uint8](a, b T) T {
	e := int64(b)
	if e < 0 {
		panic("integer tensors cannot be raised to negative powers")
	}
	result := T(1)
	base := a
	for e > 0 {
		if e&1 == 1 {
			result *= base
		}
		base *= base
		e >>= 1
	}
	return result
}

// floatUnary returns the elementwise implementation of a unary operator
// over float lanes.
func floatUnary[T ~float32 | ~float64](kind expr.OpKind) func(T) T {
	switch kind {
	case expr.OpNeg:
		return func(v T) T { return -v }
	case expr.OpAbs:
		return func(v T) T { return T(math.Abs(float64(v))) }
	case expr.OpExp:
		return func(v T) T { return T(math.Exp(float64(v))) }
	case expr.OpLog:
		return func(v T) T { return T(math.Log(float64(v))) }
	case expr.OpSqrt:
		return func(v T) T { return T(math.Sqrt(float64(v))) }
	case expr.OpTanh:
		return func(v T) T { return T(math.Tanh(float64(v))) }
	}
	return nil
}

// intUnary returns Neg or Abs over integer lanes; the transcendental
// operators require floats and are rejected at node creation.
func intUnary[T ~int32 | ~int64 | ~uint8](kind expr.OpKind) func(T) T {
	switch kind {
	case expr.OpNeg:
		return func(v T) T { return -v }
	case expr.OpAbs:
		return func(v T) T {
			if v < 0 {
				return -v
			}
			return v
		}
	}
	return nil
}

func binarySame[T laneNumeric](dst, a, b []T, op func(T, T) T, cfg parallel.Config) {
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = op(a[i], b[i])
		}
	}, cfg)
}

func binaryBroadcast[T laneNumeric](dst, a, b []T, aShape, bShape, outShape tensor.Shape, op func(T, T) T, cfg parallel.Config) {
	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)

	parallel.ForChunks(outShape.NumElements(), func(start, end int) {
		for i := start; i < end; i++ {
			aIdx := flatIndex(i, outStrides, aStrides)
			bIdx := flatIndex(i, outStrides, bStrides)
			dst[i] = op(a[aIdx], b[bIdx])
		}
	}, cfg)
}

// runBinary picks the same-shape fast path or the broadcast-stride path.
func runBinary[T laneNumeric](dst, a, b []T, aShape, bShape, outShape tensor.Shape, op func(T, T) T, cfg parallel.Config) {
	if aShape.Equal(bShape) {
		binarySame(dst, a, b, op, cfg)
		return
	}
	binaryBroadcast(dst, a, b, aShape, bShape, outShape, op, cfg)
}

func unaryApply[T laneNumeric](dst, src []T, op func(T) T, cfg parallel.Config) {
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = op(src[i])
		}
	}, cfg)
}

func (p *program) evalBinary(n *expr.Node, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.New(n.Shape(), n.DType())
	if err != nil {
		return nil, err
	}
	kind := n.Kind()
	switch n.DType() {
	case tensor.Float32, tensor.Float16, tensor.BFloat16:
		la, lb := f32Lanes(a), f32Lanes(b)
		var dst []float32
		if n.DType() == tensor.Float32 {
			dst = out.AsFloat32()
		} else {
			dst = make([]float32, n.Shape().NumElements())
		}
		runBinary(dst, la, lb, a.Shape(), b.Shape(), n.Shape(), floatOp[float32](kind), p.par)
		if n.DType() != tensor.Float32 {
			storeF32(out, dst)
		}
	case tensor.Float64:
		runBinary(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), n.Shape(), floatOp[float64](kind), p.par)
	case tensor.Int32:
		runBinary(out.AsInt32(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), n.Shape(), intOp[int32](kind), p.par)
	case tensor.Int64:
		runBinary(out.AsInt64(), a.AsInt64(), b.AsInt64(), a.Shape(), b.Shape(), n.Shape(), intOp[int64](kind), p.par)
	case tensor.Uint8:
		runBinary(out.AsUint8(), a.AsUint8(), b.AsUint8(), a.Shape(), b.Shape(), n.Shape(), intOp[uint8](kind), p.par)
	default:
		return nil, fmt.Errorf("%s is not defined for %s tensors", kind, n.DType())
	}
	return out, nil
}

func (p *program) evalUnary(n *expr.Node, a *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.New(n.Shape(), n.DType())
	if err != nil {
		return nil, err
	}
	kind := n.Kind()
	switch n.DType() {
	case tensor.Float32, tensor.Float16, tensor.BFloat16:
		src := f32Lanes(a)
		var dst []float32
		if n.DType() == tensor.Float32 {
			dst = out.AsFloat32()
		} else {
			dst = make([]float32, n.Shape().NumElements())
		}
		unaryApply(dst, src, floatUnary[float32](kind), p.par)
		if n.DType() != tensor.Float32 {
			storeF32(out, dst)
		}
	case tensor.Float64:
		unaryApply(out.AsFloat64(), a.AsFloat64(), floatUnary[float64](kind), p.par)
	case tensor.Int32:
		unaryApply(out.AsInt32(), a.AsInt32(), intUnary[int32](kind), p.par)
	case tensor.Int64:
		unaryApply(out.AsInt64(), a.AsInt64(), intUnary[int64](kind), p.par)
	case tensor.Uint8:
		unaryApply(out.AsUint8(), a.AsUint8(), intUnary[uint8](kind), p.par)
	default:
		return nil, fmt.Errorf("%s is not defined for %s tensors", kind, n.DType())
	}
	return out, nil
}

func (p *program) evalTranspose(n *expr.Node, a *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.New(n.Shape(), n.DType())
	if err != nil {
		return nil, err
	}
	perm := n.TransposePerm()
	elemSize := n.DType().Size()
	outStrides := n.Shape().ComputeStrides()
	inStrides := a.Shape().ComputeStrides()
	src, dst := a.Data(), out.Data()

	parallel.ForChunks(n.Shape().NumElements(), func(start, end int) {
		for i := start; i < end; i++ {
			rem := i
			srcIdx := 0
			for ax := 0; ax < len(perm); ax++ {
				coord := rem / outStrides[ax]
				rem %= outStrides[ax]
				srcIdx += coord * inStrides[perm[ax]]
			}
			copy(dst[i*elemSize:(i+1)*elemSize], src[srcIdx*elemSize:(srcIdx+1)*elemSize])
		}
	}, p.par)
	return out, nil
}

func (p *program) evalBroadcast(n *expr.Node, a *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.New(n.Shape(), n.DType())
	if err != nil {
		return nil, err
	}
	elemSize := n.DType().Size()
	outStrides := n.Shape().ComputeStrides()
	inStrides := broadcastStrides(a.Shape(), n.Shape())
	src, dst := a.Data(), out.Data()

	parallel.ForChunks(n.Shape().NumElements(), func(start, end int) {
		for i := start; i < end; i++ {
			srcIdx := flatIndex(i, outStrides, inStrides)
			copy(dst[i*elemSize:(i+1)*elemSize], src[srcIdx*elemSize:(srcIdx+1)*elemSize])
		}
	}, p.par)
	return out, nil
}
