package expr

import (
	"fmt"

	"github.com/deft-ml/deft/internal/tensor"
)

// Session accumulates graph nodes for one graph-building call. A session
// is single-goroutine and is threaded explicitly through the handles it
// creates; there is no ambient/global recording state, so concurrent
// top-level calls and nested child sessions never interfere.
type Session struct {
	graph *Graph
	done  bool
}

// NewSession opens a recording session with an empty graph.
func NewSession() *Session {
	return &Session{
		graph: &Graph{nodes: make([]*Node, 0, 64)},
	}
}

// Active reports whether the session still accepts nodes.
func (s *Session) Active() bool {
	return s != nil && !s.done
}

// newNode appends a node to the session's graph and returns its handle.
// All operator methods funnel through here.
func (s *Session) newNode(kind OpKind, inputs []*Node, shape tensor.Shape, dtype tensor.DataType, attr any) *Tensor {
	if !s.Active() {
		Abort(fmt.Errorf("%w: recording session is closed", ErrRestrictedSyntax))
	}
	n := &Node{
		id:     len(s.graph.nodes),
		kind:   kind,
		inputs: inputs,
		shape:  shape,
		dtype:  dtype,
		attr:   attr,
	}
	s.graph.nodes = append(s.graph.nodes, n)
	return &Tensor{node: n, sess: s}
}

// Parameter declares an input leaf at the next binding position.
func (s *Session) Parameter(name string, shape tensor.Shape, dtype tensor.DataType) *Tensor {
	h := s.newNode(OpParameter, nil, shape.Clone(), dtype, paramAttr{
		index: len(s.graph.params),
		name:  name,
	})
	s.graph.params = append(s.graph.params, h.node)
	return h
}

// Constant splices a concrete value into the graph as a leaf. The graph
// owns the value from here on; callers must not mutate it afterwards.
func (s *Session) Constant(v *tensor.Tensor) *Tensor {
	if v == nil {
		Abort(fmt.Errorf("%w: nil constant", ErrRestrictedSyntax))
	}
	return s.newNode(OpConstant, nil, v.Shape().Clone(), v.DType(), constAttr{value: v})
}

// Finish seals the session with the given outputs and returns the graph.
// The session accepts no further nodes afterwards.
func (s *Session) Finish(outputs ...*Tensor) (*Graph, error) {
	if !s.Active() {
		return nil, fmt.Errorf("%w: recording session is closed", ErrRestrictedSyntax)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: a graph-building definition must return at least one tensor", ErrRestrictedSyntax)
	}
	for _, out := range outputs {
		if out == nil {
			return nil, fmt.Errorf("%w: nil output handle", ErrRestrictedSyntax)
		}
		if out.sess != s {
			return nil, fmt.Errorf("%w: output handle belongs to a different recording session", ErrRestrictedSyntax)
		}
		s.graph.outputs = append(s.graph.outputs, out.node)
	}
	s.done = true
	s.graph.sealed = true
	return s.graph, nil
}

// abortError carries a host or graph-building error unwinding an open
// recording session. Operator methods cannot return errors (they return
// handles), so failures travel as panics and are converted back into
// returned errors at the call boundary.
type abortError struct {
	err error
}

// Abort unwinds the current recording with err. The partially built graph
// is abandoned; the caller's recover converts the panic into a returned
// error.
func Abort(err error) {
	panic(abortError{err: err})
}

// AsAbort reports whether a recovered panic value is a session abort and
// returns the carried error.
func AsAbort(r any) (error, bool) {
	if a, ok := r.(abortError); ok {
		return a.err, true
	}
	return nil, false
}
