package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/deft-ml/deft/internal/tensor"
)

// catchAbort runs fn and returns the error carried by a recording abort.
// It fails the test if fn completes without aborting.
func catchAbort(t *testing.T, fn func()) error {
	t.Helper()
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := AsAbort(r); ok {
					err = e
					return
				}
				panic(r)
			}
		}()
		fn()
	}()
	if err == nil {
		t.Fatal("expected the recording to abort")
	}
	return err
}

func TestSessionBuildsGraph(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{2, 3}, tensor.Float32)
	y := s.Parameter("y", tensor.Shape{2, 3}, tensor.Float32)
	z := x.Add(y).Scale(2)

	g, err := s.Finish(z)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// x, y, add, scale constant, mul
	if g.NumNodes() != 5 {
		t.Errorf("NumNodes = %d, want 5", g.NumNodes())
	}
	if len(g.Parameters()) != 2 {
		t.Fatalf("Parameters = %d, want 2", len(g.Parameters()))
	}
	if got := g.Parameters()[0].ParamName(); got != "x" {
		t.Errorf("param 0 name = %q, want x", got)
	}
	if got := g.Parameters()[1].ParamIndex(); got != 1 {
		t.Errorf("param 1 index = %d, want 1", got)
	}
	if diff := cmp.Diff(tensor.Shape{2, 3}, g.Outputs()[0].Shape()); diff != "" {
		t.Errorf("output shape mismatch (-want +got):\n%s", diff)
	}
	if got := g.Signature(); got != "float32{2 3};float32{2 3}" {
		t.Errorf("Signature = %q", got)
	}
}

func TestSignatureCanonical(t *testing.T) {
	s := NewSession()
	a := s.Parameter("a", tensor.Shape{3}, tensor.Float32)
	b := s.Parameter("b", tensor.Shape{}, tensor.Int64)
	g, err := s.Finish(a, b)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got := g.Signature(); got != "float32{3};int64{}" {
		t.Errorf("Signature = %q, want float32{3};int64{}", got)
	}
}

func TestFinishRequiresOutputs(t *testing.T) {
	s := NewSession()
	s.Parameter("x", tensor.Shape{2}, tensor.Float32)
	if _, err := s.Finish(); !errors.Is(err, ErrRestrictedSyntax) {
		t.Errorf("Finish() err = %v, want ErrRestrictedSyntax", err)
	}
}

func TestFinishRejectsForeignHandle(t *testing.T) {
	s1 := NewSession()
	s2 := NewSession()
	x := s1.Parameter("x", tensor.Shape{2}, tensor.Float32)
	if _, err := s2.Finish(x); !errors.Is(err, ErrRestrictedSyntax) {
		t.Errorf("Finish(foreign) err = %v, want ErrRestrictedSyntax", err)
	}
}

func TestClosedSessionRejectsNodes(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{2}, tensor.Float32)
	if _, err := s.Finish(x); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if s.Active() {
		t.Error("session still active after Finish")
	}
	err := catchAbort(t, func() {
		s.Parameter("late", tensor.Shape{1}, tensor.Float32)
	})
	if !errors.Is(err, ErrRestrictedSyntax) {
		t.Errorf("err = %v, want ErrRestrictedSyntax", err)
	}
}

func TestConstantLeaf(t *testing.T) {
	s := NewSession()
	v := tensor.Scalar[float32](4)
	c := s.Constant(v)
	if c.Node().Kind() != OpConstant {
		t.Fatalf("kind = %v, want constant", c.Node().Kind())
	}
	if c.Node().ConstValue() != v {
		t.Error("constant node does not carry the spliced value")
	}
	if c.DType() != tensor.Float32 || c.Rank() != 0 {
		t.Errorf("constant meta = %s rank %d", c.DType(), c.Rank())
	}
}

func TestValidateRejectsUnsealed(t *testing.T) {
	s := NewSession()
	s.Parameter("x", tensor.Shape{2}, tensor.Float32)
	if err := s.graph.Validate(); !errors.Is(err, ErrRestrictedSyntax) {
		t.Errorf("Validate(unsealed) = %v, want ErrRestrictedSyntax", err)
	}
}

func TestMultipleOutputs(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{4}, tensor.Float32)
	sum := x.Sum()
	mean := x.Mean()
	g, err := s.Finish(sum, mean)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(g.Outputs()) != 2 {
		t.Fatalf("Outputs = %d, want 2", len(g.Outputs()))
	}
	for i, out := range g.Outputs() {
		if out.Shape().NumElements() != 1 || len(out.Shape()) != 0 {
			t.Errorf("output %d shape = %v, want scalar", i, out.Shape())
		}
	}
}
