package expr

import (
	"fmt"

	"github.com/deft-ml/deft/internal/tensor"
)

// Graph is a sealed record of one recording session: a DAG whose leaves
// are declared parameters and injected constants, with declared outputs.
// Once sealed it is immutable and safe to share across goroutines, which
// is what lets compiled artifacts cache it.
type Graph struct {
	nodes   []*Node
	params  []*Node
	outputs []*Node
	sealed  bool
}

// Nodes returns all nodes in creation order. Creation order is a valid
// topological order: every input of a node appears earlier in the slice.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Parameters returns the declared inputs ordered by binding position.
func (g *Graph) Parameters() []*Node { return g.params }

// Outputs returns the declared outputs in return order.
func (g *Graph) Outputs() []*Node { return g.outputs }

// NumNodes returns the number of recorded nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// ParameterShapes returns the shapes of the declared inputs in binding
// order. Compilers use this as the input template.
func (g *Graph) ParameterShapes() []tensor.Shape {
	shapes := make([]tensor.Shape, len(g.params))
	for i, p := range g.params {
		shapes[i] = p.Shape()
	}
	return shapes
}

// ParameterDTypes returns the element types of the declared inputs in
// binding order.
func (g *Graph) ParameterDTypes() []tensor.DataType {
	dtypes := make([]tensor.DataType, len(g.params))
	for i, p := range g.params {
		dtypes[i] = p.DType()
	}
	return dtypes
}

// Signature renders the parameter shape/dtype template as a canonical
// string, e.g. "float32{3};int64{}". It is a component of artifact cache
// keys, so the format must stay stable.
func (g *Graph) Signature() string {
	sig := ""
	for i, p := range g.params {
		if i > 0 {
			sig += ";"
		}
		sig += p.DType().String() + p.Shape().String()
	}
	return sig
}

// Validate checks the sealed graph before it is handed to a compiler:
// recognized operator kinds only, inputs created earlier than their
// consumers (DAG by construction), dense parameter indices, and at least
// one output. Compilers may assume a validated graph.
func (g *Graph) Validate() error {
	if !g.sealed {
		return fmt.Errorf("%w: graph is not sealed", ErrRestrictedSyntax)
	}
	if len(g.outputs) == 0 {
		return fmt.Errorf("%w: graph has no outputs", ErrRestrictedSyntax)
	}
	for i, n := range g.nodes {
		if n.id != i {
			return fmt.Errorf("%w: node %d carries id %d", ErrRestrictedSyntax, i, n.id)
		}
		if !n.kind.Recognized() {
			return fmt.Errorf("%w: unrecognized operator kind %d", ErrRestrictedSyntax, n.kind)
		}
		for _, in := range n.inputs {
			if in.id >= n.id {
				return fmt.Errorf("%w: node %d (%s) consumes node %d created later",
					ErrRestrictedSyntax, n.id, n.kind, in.id)
			}
		}
		switch n.kind {
		case OpParameter:
			if n.ParamIndex() < 0 {
				return fmt.Errorf("%w: parameter node %d has no binding", ErrRestrictedSyntax, n.id)
			}
		case OpConstant:
			if n.ConstValue() == nil {
				return fmt.Errorf("%w: constant node %d has no value", ErrRestrictedSyntax, n.id)
			}
		}
	}
	for i, p := range g.params {
		if p.ParamIndex() != i {
			return fmt.Errorf("%w: parameter %d bound at position %d", ErrRestrictedSyntax, i, p.ParamIndex())
		}
	}
	for _, out := range g.outputs {
		if out.id < 0 || out.id >= len(g.nodes) || g.nodes[out.id] != out {
			return fmt.Errorf("%w: output node does not belong to this graph", ErrRestrictedSyntax)
		}
	}
	return nil
}
