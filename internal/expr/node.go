package expr

import (
	"github.com/deft-ml/deft/internal/tensor"
)

// Node is one operation in a recorded graph. Nodes are created through a
// Session and immutable afterwards; ids are dense and ascend in creation
// order, which makes the node list a valid topological order.
type Node struct {
	id     int
	kind   OpKind
	inputs []*Node
	shape  tensor.Shape
	dtype  tensor.DataType
	attr   any // per-kind payload, see the *Attr types below
}

// paramAttr carries the binding position and name of a declared input.
type paramAttr struct {
	index int
	name  string
}

// constAttr carries the injected concrete value of a Constant leaf.
// The value is owned by the graph once injected.
type constAttr struct {
	value *tensor.Tensor
}

// reduceAttr carries normalized reduction axes (ascending, unique).
type reduceAttr struct {
	axes []int
}

// transposeAttr carries the axis permutation.
type transposeAttr struct {
	perm []int
}

// ID returns the node's position in the graph's node list.
func (n *Node) ID() int { return n.id }

// Kind returns the operator kind.
func (n *Node) Kind() OpKind { return n.kind }

// Inputs returns the input nodes. The slice must not be mutated.
func (n *Node) Inputs() []*Node { return n.inputs }

// Shape returns the inferred result shape.
func (n *Node) Shape() tensor.Shape { return n.shape }

// DType returns the inferred result element type.
func (n *Node) DType() tensor.DataType { return n.dtype }

// ParamIndex returns the binding position of a Parameter leaf, or -1.
func (n *Node) ParamIndex() int {
	if a, ok := n.attr.(paramAttr); ok {
		return a.index
	}
	return -1
}

// ParamName returns the declared name of a Parameter leaf, or "".
func (n *Node) ParamName() string {
	if a, ok := n.attr.(paramAttr); ok {
		return a.name
	}
	return ""
}

// ConstValue returns the concrete value of a Constant leaf, or nil.
func (n *Node) ConstValue() *tensor.Tensor {
	if a, ok := n.attr.(constAttr); ok {
		return a.value
	}
	return nil
}

// ReduceAxes returns the normalized axes of a reduction node, or nil.
func (n *Node) ReduceAxes() []int {
	if a, ok := n.attr.(reduceAttr); ok {
		return a.axes
	}
	return nil
}

// TransposePerm returns the axis permutation of a Transpose node, or nil.
func (n *Node) TransposePerm() []int {
	if a, ok := n.attr.(transposeAttr); ok {
		return a.perm
	}
	return nil
}
