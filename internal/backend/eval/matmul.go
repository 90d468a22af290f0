package eval

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/mat"

	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/parallel"
	"github.com/deft-ml/deft/internal/tensor"
)

func (p *program) evalMatMul(n *expr.Node, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	rows, inner, cols := a.Shape()[0], a.Shape()[1], b.Shape()[1]

	out, err := tensor.New(n.Shape(), n.DType())
	if err != nil {
		return nil, err
	}

	switch n.DType() {
	case tensor.Float32, tensor.Float16, tensor.BFloat16:
		la, lb := f32Lanes(a), f32Lanes(b)
		var dst []float32
		if n.DType() == tensor.Float32 {
			dst = out.AsFloat32()
		} else {
			dst = make([]float32, rows*cols)
		}
		gemmFloat32(dst, la, lb, rows, inner, cols)
		if n.DType() != tensor.Float32 {
			storeF32(out, dst)
		}
	case tensor.Float64:
		am := mat.NewDense(rows, inner, a.AsFloat64())
		bm := mat.NewDense(inner, cols, b.AsFloat64())
		var cm mat.Dense
		cm.Mul(am, bm)
		copy(out.AsFloat64(), cm.RawMatrix().Data)
	case tensor.Int32:
		matmulNaive(out.AsInt32(), a.AsInt32(), b.AsInt32(), rows, inner, cols, p.par)
	case tensor.Int64:
		matmulNaive(out.AsInt64(), a.AsInt64(), b.AsInt64(), rows, inner, cols, p.par)
	case tensor.Uint8:
		matmulNaive(out.AsUint8(), a.AsUint8(), b.AsUint8(), rows, inner, cols, p.par)
	default:
		return nil, fmt.Errorf("matmul is not defined for %s tensors", n.DType())
	}
	return out, nil
}

// gemmFloat32 computes dst = a @ b through BLAS.
func gemmFloat32(dst, a, b []float32, m, k, n int) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans,
		1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: dst},
	)
}

// matmulNaive is the integer fallback; rows split across workers.
func matmulNaive[T laneNumeric](dst, a, b []T, m, k, n int, cfg parallel.Config) {
	parallel.For(m, func(i int) {
		for j := 0; j < n; j++ {
			var sum T
			for kk := 0; kk < k; kk++ {
				sum += a[i*k+kk] * b[kk*n+j]
			}
			dst[i*n+j] = sum
		}
	}, cfg)
}
