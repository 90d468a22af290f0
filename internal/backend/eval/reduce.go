package eval

import (
	"fmt"

	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/tensor"
)

func (p *program) evalReduce(n *expr.Node, a *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.New(n.Shape(), n.DType())
	if err != nil {
		return nil, err
	}
	axes := n.ReduceAxes()
	mean := n.Kind() == expr.OpMean

	switch n.DType() {
	case tensor.Float32, tensor.Float16, tensor.BFloat16:
		src := f32Lanes(a)
		var dst []float32
		if n.DType() == tensor.Float32 {
			dst = out.AsFloat32()
		} else {
			dst = make([]float32, n.Shape().NumElements())
		}
		reduceLanes(dst, src, a.Shape(), axes, mean)
		if n.DType() != tensor.Float32 {
			storeF32(out, dst)
		}
	case tensor.Float64:
		reduceLanes(out.AsFloat64(), a.AsFloat64(), a.Shape(), axes, mean)
	case tensor.Int32:
		reduceLanes(out.AsInt32(), a.AsInt32(), a.Shape(), axes, mean)
	case tensor.Int64:
		reduceLanes(out.AsInt64(), a.AsInt64(), a.Shape(), axes, mean)
	case tensor.Uint8:
		reduceLanes(out.AsUint8(), a.AsUint8(), a.Shape(), axes, mean)
	default:
		return nil, fmt.Errorf("%s is not defined for %s tensors", n.Kind(), n.DType())
	}
	return out, nil
}

// reduceLanes accumulates src into dst over the reduced axes. dst holds
// one slot per kept coordinate in row-major order; mean divides by the
// reduced element count.
func reduceLanes[T laneNumeric](dst, src []T, srcShape tensor.Shape, axes []int, mean bool) {
	for i := range dst {
		dst[i] = 0
	}

	reduced := make([]bool, len(srcShape))
	count := 1
	for _, ax := range axes {
		reduced[ax] = true
		count *= srcShape[ax]
	}

	// Keeping reduced dimensions at size 1 makes the kept strides index
	// the compact output directly.
	keep := srcShape.Clone()
	for _, ax := range axes {
		keep[ax] = 1
	}
	keepStrides := keep.ComputeStrides()
	srcStrides := srcShape.ComputeStrides()

	n := srcShape.NumElements()
	for i := 0; i < n; i++ {
		rem := i
		outIdx := 0
		for d := 0; d < len(srcShape); d++ {
			coord := rem / srcStrides[d]
			rem %= srcStrides[d]
			if !reduced[d] {
				outIdx += coord * keepStrides[d]
			}
		}
		dst[outIdx] += src[i]
	}

	if mean && count > 0 {
		divisor := T(count)
		for i := range dst {
			dst[i] /= divisor
		}
	}
}
