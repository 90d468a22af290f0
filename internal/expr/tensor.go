package expr

import (
	"fmt"

	"github.com/deft-ml/deft/internal/tensor"
)

// Tensor is a symbolic handle to a node in a recording session's graph.
// It carries shape and dtype only; element values do not exist until the
// compiled artifact runs. Each operator method appends a node to the
// session and returns a fresh handle, so plain Go calls between handles
// compose into one graph.
type Tensor struct {
	node *Node
	sess *Session
}

// Shape returns the symbolic shape. The slice is shared; do not mutate.
func (t *Tensor) Shape() tensor.Shape { return t.node.shape }

// DType returns the symbolic element type.
func (t *Tensor) DType() tensor.DataType { return t.node.dtype }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.node.shape) }

// Node exposes the underlying graph node.
func (t *Tensor) Node() *Node { return t.node }

// Session returns the recording session that owns the handle.
func (t *Tensor) Session() *Session { return t.sess }

// Data is unavailable on symbolic handles. Element values exist only
// after execution, so reading them inside a graph-building definition is
// a restricted-syntax violation and unwinds the recording.
func (t *Tensor) Data() []byte {
	Abort(fmt.Errorf("%w: Data is unavailable on a symbolic tensor; values exist only after execution", ErrRestrictedSyntax))
	return nil
}

// Item is unavailable on symbolic handles for the same reason as Data.
func (t *Tensor) Item() float64 {
	Abort(fmt.Errorf("%w: Item is unavailable on a symbolic tensor; values exist only after execution", ErrRestrictedSyntax))
	return 0
}

func (t *Tensor) binary(kind OpKind, o *Tensor) *Tensor {
	an, bn, shape, dt := inferBinary(kind, t, o)
	return t.sess.newNode(kind, []*Node{an, bn}, shape, dt, nil)
}

func (t *Tensor) unary(kind OpKind) *Tensor {
	shape, dt := inferUnary(kind, t)
	return t.sess.newNode(kind, []*Node{t.node}, shape, dt, nil)
}

// Add returns t + o with NumPy-style broadcasting and dtype promotion.
func (t *Tensor) Add(o *Tensor) *Tensor { return t.binary(OpAdd, o) }

// Sub returns t - o.
func (t *Tensor) Sub(o *Tensor) *Tensor { return t.binary(OpSub, o) }

// Mul returns the elementwise product t * o.
func (t *Tensor) Mul(o *Tensor) *Tensor { return t.binary(OpMul, o) }

// Div returns the elementwise quotient t / o.
func (t *Tensor) Div(o *Tensor) *Tensor { return t.binary(OpDiv, o) }

// Pow returns t raised elementwise to o.
func (t *Tensor) Pow(o *Tensor) *Tensor { return t.binary(OpPow, o) }

// Minimum returns the elementwise minimum of t and o.
func (t *Tensor) Minimum(o *Tensor) *Tensor { return t.binary(OpMinimum, o) }

// Maximum returns the elementwise maximum of t and o.
func (t *Tensor) Maximum(o *Tensor) *Tensor { return t.binary(OpMaximum, o) }

// Neg returns -t.
func (t *Tensor) Neg() *Tensor { return t.unary(OpNeg) }

// Abs returns |t|.
func (t *Tensor) Abs() *Tensor { return t.unary(OpAbs) }

// Exp returns e**t. Requires a floating-point dtype.
func (t *Tensor) Exp() *Tensor { return t.unary(OpExp) }

// Log returns the natural logarithm of t. Requires a floating-point dtype.
func (t *Tensor) Log() *Tensor { return t.unary(OpLog) }

// Sqrt returns the elementwise square root. Requires a floating-point dtype.
func (t *Tensor) Sqrt() *Tensor { return t.unary(OpSqrt) }

// Tanh returns the elementwise hyperbolic tangent. Requires a
// floating-point dtype.
func (t *Tensor) Tanh() *Tensor { return t.unary(OpTanh) }

// MatMul returns the rank-2 matrix product of t and o.
func (t *Tensor) MatMul(o *Tensor) *Tensor {
	an, bn, shape, dt := inferMatMul(t, o)
	return t.sess.newNode(OpMatMul, []*Node{an, bn}, shape, dt, nil)
}

// Sum reduces over the given axes, dropping them from the shape. Negative
// axes count from the end; no axes reduces to a scalar.
func (t *Tensor) Sum(axes ...int) *Tensor {
	norm, shape, dt := inferReduce(OpSum, t, axes)
	return t.sess.newNode(OpSum, []*Node{t.node}, shape, dt, reduceAttr{axes: norm})
}

// Mean reduces over the given axes by arithmetic mean. Requires a
// floating-point dtype.
func (t *Tensor) Mean(axes ...int) *Tensor {
	norm, shape, dt := inferReduce(OpMean, t, axes)
	return t.sess.newNode(OpMean, []*Node{t.node}, shape, dt, reduceAttr{axes: norm})
}

// Reshape returns a handle with the same elements laid out as dims.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := inferReshape(t, dims)
	return t.sess.newNode(OpReshape, []*Node{t.node}, shape, t.node.dtype, nil)
}

// Transpose permutes the axes. With no arguments the axis order is
// reversed; otherwise perm must be a permutation of the operand's axes.
func (t *Tensor) Transpose(perm ...int) *Tensor {
	if len(perm) == 0 {
		perm = nil
	}
	norm, shape := inferTranspose(t, perm)
	return t.sess.newNode(OpTranspose, []*Node{t.node}, shape, t.node.dtype, transposeAttr{perm: norm})
}

// BroadcastTo expands the handle to the target shape.
func (t *Tensor) BroadcastTo(dims ...int) *Tensor {
	shape := inferBroadcastTo(t, dims)
	return t.sess.newNode(OpBroadcast, []*Node{t.node}, shape, t.node.dtype, nil)
}

// Cast converts the handle to dt. Casting to the current dtype is a no-op
// and returns the receiver.
func (t *Tensor) Cast(dt tensor.DataType) *Tensor {
	return castTo(t, dt)
}

// Scale multiplies by a host scalar, spliced in as a constant of the
// handle's dtype.
func (t *Tensor) Scale(v float64) *Tensor {
	c, err := tensor.FromFloat64s([]float64{v}, tensor.Shape{}, t.node.dtype)
	if err != nil {
		shapeErr("scale by %v: %v", v, err)
	}
	return t.binary(OpMul, t.sess.Constant(c))
}
