// Package eval interprets computation graphs node by node against
// concrete tensors. It is the built-in fallback compiler: always
// registered, total over the recorded operator set, and the correctness
// baseline other backends are compared against.
package eval

import (
	"fmt"

	"github.com/deft-ml/deft/backend"
	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/parallel"
)

// Name is the registry name of the interpreter.
const Name = "eval"

// Compiler implements backend.Compiler by interpretation. "Compiling"
// validates the graph and captures the execution options; the work
// happens at Execute time.
type Compiler struct{}

// New returns the interpreting compiler.
func New() *Compiler {
	return &Compiler{}
}

var _ backend.Compiler = (*Compiler)(nil)

func init() {
	backend.Register(New())
}

// Name implements backend.Compiler.
func (c *Compiler) Name() string { return Name }

// Compile implements backend.Compiler. The only recognized option is
// "parallel" ("on" or "off"), controlling chunked parallel kernels.
func (c *Compiler) Compile(g *expr.Graph, options map[string]string) (backend.Artifact, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: eval: %v", backend.ErrCompile, err)
	}
	cfg := parallel.DefaultConfig()
	for key, value := range options {
		switch key {
		case "parallel":
			switch value {
			case "on":
				cfg.Enabled = true
			case "off":
				cfg.Enabled = false
			default:
				return nil, fmt.Errorf("%w: eval: option parallel=%q (want on or off)", backend.ErrCompile, value)
			}
		default:
			return nil, fmt.Errorf("%w: eval: unknown option %q", backend.ErrCompile, key)
		}
	}
	return &program{graph: g, par: cfg}, nil
}
