package eval

import (
	"fmt"

	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/parallel"
	"github.com/deft-ml/deft/internal/tensor"
)

// program is the "artifact" the interpreter produces: the validated graph
// plus execution options. Execute walks the nodes in topological order,
// materializing one tensor per node.
type program struct {
	graph *expr.Graph
	par   parallel.Config
}

// Execute runs the graph with inputs bound to its parameters in
// declaration order. Outputs may share memory with inputs or graph
// constants when the graph only reshapes them.
func (p *program) Execute(inputs []*tensor.Tensor) (outs []*tensor.Tensor, err error) {
	params := p.graph.Parameters()
	if len(inputs) != len(params) {
		return nil, fmt.Errorf("%w: eval: %d inputs bound to %d parameters",
			tensor.ErrShapeOrDType, len(inputs), len(params))
	}
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("%w: eval: input %d is nil", tensor.ErrShapeOrDType, i)
		}
		if !in.Shape().Equal(params[i].Shape()) || in.DType() != params[i].DType() {
			return nil, fmt.Errorf("%w: eval: input %d is %s%v, parameter wants %s%v",
				tensor.ErrShapeOrDType, i, in.DType(), in.Shape(), params[i].DType(), params[i].Shape())
		}
	}

	// Kernels index raw slices; turn any slip into an error rather than
	// taking the process down.
	defer func() {
		if r := recover(); r != nil {
			outs, err = nil, fmt.Errorf("eval: execute: %v", r)
		}
	}()

	env := make([]*tensor.Tensor, p.graph.NumNodes())
	for _, param := range params {
		env[param.ID()] = inputs[param.ParamIndex()]
	}

	for _, n := range p.graph.Nodes() {
		if n.Kind() == expr.OpParameter {
			continue
		}
		v, err := p.evalNode(n, env)
		if err != nil {
			return nil, fmt.Errorf("eval: node %d (%s): %w", n.ID(), n.Kind(), err)
		}
		env[n.ID()] = v
	}

	outs = make([]*tensor.Tensor, len(p.graph.Outputs()))
	for i, o := range p.graph.Outputs() {
		outs[i] = env[o.ID()]
	}
	return outs, nil
}

func (p *program) evalNode(n *expr.Node, env []*tensor.Tensor) (*tensor.Tensor, error) {
	in := func(i int) *tensor.Tensor { return env[n.Inputs()[i].ID()] }

	switch kind := n.Kind(); {
	case kind == expr.OpConstant:
		return n.ConstValue(), nil

	case kind.IsBinary():
		return p.evalBinary(n, in(0), in(1))

	case kind.IsUnary():
		return p.evalUnary(n, in(0))

	case kind == expr.OpMatMul:
		return p.evalMatMul(n, in(0), in(1))

	case kind.IsReduction():
		return p.evalReduce(n, in(0))

	case kind == expr.OpReshape:
		return in(0).View(n.Shape())

	case kind == expr.OpTranspose:
		return p.evalTranspose(n, in(0))

	case kind == expr.OpBroadcast:
		return p.evalBroadcast(n, in(0))

	case kind == expr.OpCast:
		return tensor.CastTo(in(0), n.DType())

	default:
		return nil, fmt.Errorf("unsupported operator %s", kind)
	}
}
