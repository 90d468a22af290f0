package expr

import (
	"fmt"

	"github.com/deft-ml/deft/internal/tensor"
)

// shapeErr unwinds the recording with a shape/dtype violation.
func shapeErr(format string, args ...any) {
	Abort(fmt.Errorf("%w: %s", tensor.ErrShapeOrDType, fmt.Sprintf(format, args...)))
}

// castTo inserts a cast node unless the handle already has the dtype.
func castTo(a *Tensor, dt tensor.DataType) *Tensor {
	if a.node.dtype == dt {
		return a
	}
	return a.sess.newNode(OpCast, []*Node{a.node}, a.node.shape.Clone(), dt, nil)
}

// inferBinary resolves the result shape and dtype of an elementwise binary
// operator, inserting cast nodes so both inputs carry the promoted dtype.
func inferBinary(kind OpKind, a, b *Tensor) (*Node, *Node, tensor.Shape, tensor.DataType) {
	if a.sess != b.sess {
		Abort(fmt.Errorf("%w: operands belong to different recording sessions", ErrRestrictedSyntax))
	}
	adt, bdt := a.node.dtype, b.node.dtype
	if adt == tensor.Bool || bdt == tensor.Bool {
		shapeErr("%s is not defined for bool tensors", kind)
	}
	dt := tensor.Promote(adt, bdt)
	shape, _, err := tensor.BroadcastShapes(a.node.shape, b.node.shape)
	if err != nil {
		shapeErr("%s: cannot broadcast %v with %v", kind, a.node.shape, b.node.shape)
	}
	a, b = castTo(a, dt), castTo(b, dt)
	return a.node, b.node, shape, dt
}

// inferUnary checks the operand dtype for an elementwise unary operator.
// Exp, Log, Sqrt and Tanh require a floating-point input; Neg and Abs
// accept any numeric dtype.
func inferUnary(kind OpKind, a *Tensor) (tensor.Shape, tensor.DataType) {
	dt := a.node.dtype
	switch kind {
	case OpExp, OpLog, OpSqrt, OpTanh:
		if !dt.IsFloat() {
			shapeErr("%s requires a floating-point tensor, got %s", kind, dt)
		}
	case OpNeg, OpAbs:
		if !dt.IsNumeric() {
			shapeErr("%s is not defined for %s tensors", kind, dt)
		}
	}
	return a.node.shape.Clone(), dt
}

// inferMatMul resolves the result of a rank-2 matrix product.
func inferMatMul(a, b *Tensor) (*Node, *Node, tensor.Shape, tensor.DataType) {
	if a.sess != b.sess {
		Abort(fmt.Errorf("%w: operands belong to different recording sessions", ErrRestrictedSyntax))
	}
	as, bs := a.node.shape, b.node.shape
	if len(as) != 2 || len(bs) != 2 {
		shapeErr("matmul requires rank-2 operands, got %v and %v", as, bs)
	}
	if as[1] != bs[0] {
		shapeErr("matmul inner dimensions do not match: %v x %v", as, bs)
	}
	adt, bdt := a.node.dtype, b.node.dtype
	if !adt.IsNumeric() || !bdt.IsNumeric() {
		shapeErr("matmul is not defined for bool tensors")
	}
	dt := tensor.Promote(adt, bdt)
	a, b = castTo(a, dt), castTo(b, dt)
	return a.node, b.node, tensor.Shape{as[0], bs[1]}, dt
}

// normalizeAxes resolves negative axes, checks bounds and rejects
// duplicates. A nil or empty slice selects every axis.
func normalizeAxes(axes []int, rank int) []int {
	if len(axes) == 0 {
		all := make([]int, rank)
		for i := range all {
			all[i] = i
		}
		return all
	}
	seen := make(map[int]bool, len(axes))
	out := make([]int, 0, len(axes))
	for _, ax := range axes {
		if ax < 0 {
			ax += rank
		}
		if ax < 0 || ax >= rank {
			shapeErr("reduction axis %d out of range for rank %d", ax, rank)
		}
		if seen[ax] {
			shapeErr("duplicate reduction axis %d", ax)
		}
		seen[ax] = true
		out = append(out, ax)
	}
	return out
}

// inferReduce resolves the result of Sum or Mean over the given axes.
// Reduced axes are dropped. Mean requires a floating-point input so the
// division is exact in the output dtype.
func inferReduce(kind OpKind, a *Tensor, axes []int) ([]int, tensor.Shape, tensor.DataType) {
	dt := a.node.dtype
	if !dt.IsNumeric() {
		shapeErr("%s is not defined for bool tensors", kind)
	}
	if kind == OpMean && !dt.IsFloat() {
		shapeErr("mean requires a floating-point tensor, got %s", dt)
	}
	norm := normalizeAxes(axes, len(a.node.shape))
	return norm, a.node.shape.ReduceShape(norm), dt
}

// inferReshape checks that dims preserves the element count.
func inferReshape(a *Tensor, dims []int) tensor.Shape {
	target := tensor.Shape(dims)
	if err := target.Validate(); err != nil {
		shapeErr("reshape target %v is not a valid shape", dims)
	}
	if target.NumElements() != a.node.shape.NumElements() {
		shapeErr("cannot reshape %v (%d elements) to %v (%d elements)",
			a.node.shape, a.node.shape.NumElements(), dims, target.NumElements())
	}
	return target.Clone()
}

// inferTranspose validates perm as a permutation of the operand's axes and
// returns the permuted shape. A nil perm reverses the axes.
func inferTranspose(a *Tensor, perm []int) ([]int, tensor.Shape) {
	rank := len(a.node.shape)
	if perm == nil {
		perm = make([]int, rank)
		for i := range perm {
			perm[i] = rank - 1 - i
		}
	}
	if len(perm) != rank {
		shapeErr("transpose permutation %v does not match rank %d", perm, rank)
	}
	seen := make([]bool, rank)
	shape := make(tensor.Shape, rank)
	for i, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			shapeErr("transpose permutation %v is not a permutation of %d axes", perm, rank)
		}
		seen[p] = true
		shape[i] = a.node.shape[p]
	}
	return perm, shape
}

// inferBroadcastTo checks the operand broadcasts to target.
func inferBroadcastTo(a *Tensor, target []int) tensor.Shape {
	ts := tensor.Shape(target)
	if err := ts.Validate(); err != nil {
		shapeErr("broadcast target %v is not a valid shape", target)
	}
	if !a.node.shape.BroadcastableTo(ts) {
		shapeErr("cannot broadcast %v to %v", a.node.shape, target)
	}
	return ts.Clone()
}
