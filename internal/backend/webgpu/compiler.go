//go:build windows

package webgpu

import (
	"fmt"
	"strings"

	"github.com/deft-ml/deft/backend"
	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/tensor"
)

// Name is the compiler's registered name.
const Name = "webgpu"

// Compiler compiles recorded graphs against one WebGPU device. Shaders
// and pipelines are cached on the backend, so repeat compilations of the
// same operators reuse GPU state.
type Compiler struct {
	b *Backend
}

var _ backend.Compiler = (*Compiler)(nil)

// NewCompiler wraps an initialized device.
func NewCompiler(b *Backend) *Compiler {
	return &Compiler{b: b}
}

// Name returns the registered compiler name.
func (c *Compiler) Name() string { return Name }

// Compile checks the graph against the GPU subset: float32 throughout,
// element-wise kinds with equal operand shapes, rank-2 matmul and
// transpose, reshape. Anything else fails here rather than mid-execution.
func (c *Compiler) Compile(g *expr.Graph, options map[string]string) (backend.Artifact, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrCompile, err)
	}
	for k := range options {
		return nil, fmt.Errorf("%w: webgpu: unknown option %q", backend.ErrCompile, k)
	}

	for _, n := range g.Nodes() {
		if n.DType() != tensor.Float32 {
			return nil, fmt.Errorf("%w: webgpu: only float32 is supported, got %s (node %d)",
				backend.ErrCompile, n.DType(), n.ID())
		}
		kind := n.Kind()
		switch {
		case kind == expr.OpParameter || kind == expr.OpConstant || kind == expr.OpReshape:
		case kind.IsBinary():
			if _, ok := binaryExprs[kind]; !ok {
				return nil, fmt.Errorf("%w: webgpu: operator %s not supported", backend.ErrCompile, kind)
			}
			a, b := n.Inputs()[0], n.Inputs()[1]
			if !a.Shape().Equal(b.Shape()) {
				return nil, fmt.Errorf("%w: webgpu: implicit broadcast %v vs %v not supported (node %d)",
					backend.ErrCompile, a.Shape(), b.Shape(), n.ID())
			}
		case kind.IsUnary():
			if _, ok := unaryExprs[kind]; !ok {
				return nil, fmt.Errorf("%w: webgpu: operator %s not supported", backend.ErrCompile, kind)
			}
		case kind == expr.OpMatMul:
		case kind == expr.OpTranspose:
			perm := n.TransposePerm()
			if len(perm) != 2 || perm[0] != 1 || perm[1] != 0 {
				return nil, fmt.Errorf("%w: webgpu: only rank-2 axis-swapping transpose is supported (node %d)",
					backend.ErrCompile, n.ID())
			}
		default:
			return nil, fmt.Errorf("%w: webgpu: operator %s not supported (use the eval compiler)",
				backend.ErrCompile, kind)
		}
	}

	return &program{b: c.b, graph: g}, nil
}

// program is a compiled artifact: the validated graph plus the device it
// dispatches to. Buffers are created per execution; shaders and pipelines
// come from the backend cache.
type program struct {
	b     *Backend
	graph *expr.Graph
}

var _ backend.Artifact = (*program)(nil)

func (p *program) Execute(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	params := p.graph.Parameters()
	if len(inputs) != len(params) {
		return nil, fmt.Errorf("%w: %d inputs for %d parameters",
			tensor.ErrShapeOrDType, len(inputs), len(params))
	}

	env := make(map[int][]byte, p.graph.NumNodes())
	for _, param := range params {
		in := inputs[param.ParamIndex()]
		if in == nil {
			return nil, fmt.Errorf("%w: input %d is nil", tensor.ErrShapeOrDType, param.ParamIndex())
		}
		if !in.Shape().Equal(param.Shape()) || in.DType() != param.DType() {
			return nil, fmt.Errorf("%w: input %d is %s%v, parameter wants %s%v",
				tensor.ErrShapeOrDType, param.ParamIndex(),
				in.DType(), in.Shape(), param.DType(), param.Shape())
		}
		env[param.ID()] = in.Data()
	}

	for _, n := range p.graph.Nodes() {
		if n.Kind() == expr.OpParameter {
			continue
		}
		data, err := p.evalNode(n, env)
		if err != nil {
			return nil, err
		}
		env[n.ID()] = data
	}

	outs := make([]*tensor.Tensor, len(p.graph.Outputs()))
	for i, o := range p.graph.Outputs() {
		t, err := tensor.New(o.Shape(), o.DType())
		if err != nil {
			return nil, err
		}
		copy(t.Data(), env[o.ID()])
		outs[i] = t
	}
	return outs, nil
}

func (p *program) evalNode(n *expr.Node, env map[int][]byte) ([]byte, error) {
	in := func(i int) []byte { return env[n.Inputs()[i].ID()] }

	kind := n.Kind()
	switch {
	case kind == expr.OpConstant:
		return n.ConstValue().Data(), nil
	case kind == expr.OpReshape:
		return in(0), nil
	case kind.IsBinary():
		code := strings.Replace(binaryShaderTemplate, "EXPR", binaryExprs[kind], 1)
		return p.b.runBinary(kind.String(), code, in(0), in(1), n.Shape().NumElements())
	case kind.IsUnary():
		code := strings.Replace(unaryShaderTemplate, "EXPR", unaryExprs[kind], 1)
		return p.b.runUnary(kind.String(), code, in(0), n.Shape().NumElements())
	case kind == expr.OpMatMul:
		aShape := n.Inputs()[0].Shape()
		m, k := aShape[0], aShape[1]
		cols := n.Shape()[1]
		return p.b.runMatMul(in(0), in(1), m, k, cols)
	case kind == expr.OpTranspose:
		inShape := n.Inputs()[0].Shape()
		return p.b.runTranspose(in(0), inShape[0], inShape[1])
	}
	return nil, fmt.Errorf("webgpu: unexpected operator %s at execution", kind)
}
