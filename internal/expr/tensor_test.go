package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/deft-ml/deft/internal/tensor"
)

func TestBinaryPromotionInsertsCast(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{3}, tensor.Float32)
	n := s.Parameter("n", tensor.Shape{3}, tensor.Int32)
	z := x.Add(n)

	if z.DType() != tensor.Float32 {
		t.Errorf("result dtype = %s, want float32", z.DType())
	}
	add := z.Node()
	if add.Kind() != OpAdd {
		t.Fatalf("kind = %v, want add", add.Kind())
	}
	// The int32 side must arrive through a cast node.
	if got := add.Inputs()[1].Kind(); got != OpCast {
		t.Errorf("right input kind = %v, want cast", got)
	}
	if got := add.Inputs()[1].DType(); got != tensor.Float32 {
		t.Errorf("cast dtype = %s, want float32", got)
	}
	// The float32 side is wired directly.
	if add.Inputs()[0] != x.Node() {
		t.Error("left input was rewritten despite matching dtype")
	}
}

func TestHalfPrecisionPairPromotesToFloat32(t *testing.T) {
	s := NewSession()
	a := s.Parameter("a", tensor.Shape{2}, tensor.Float16)
	b := s.Parameter("b", tensor.Shape{2}, tensor.BFloat16)
	if got := a.Mul(b).DType(); got != tensor.Float32 {
		t.Errorf("float16*bfloat16 dtype = %s, want float32", got)
	}
}

func TestBinaryBroadcast(t *testing.T) {
	tests := []struct {
		name     string
		a, b     tensor.Shape
		expected tensor.Shape
	}{
		{"matrix_row", tensor.Shape{2, 3}, tensor.Shape{3}, tensor.Shape{2, 3}},
		{"column_row", tensor.Shape{2, 1}, tensor.Shape{1, 5}, tensor.Shape{2, 5}},
		{"scalar", tensor.Shape{4, 4}, tensor.Shape{}, tensor.Shape{4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			a := s.Parameter("a", tt.a, tensor.Float32)
			b := s.Parameter("b", tt.b, tensor.Float32)
			if diff := cmp.Diff(tt.expected, a.Add(b).Shape()); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBinaryBroadcastMismatchAborts(t *testing.T) {
	s := NewSession()
	a := s.Parameter("a", tensor.Shape{2, 3}, tensor.Float32)
	b := s.Parameter("b", tensor.Shape{4}, tensor.Float32)
	err := catchAbort(t, func() { a.Add(b) })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("err = %v, want ErrShapeOrDType", err)
	}
}

func TestBoolArithmeticRejected(t *testing.T) {
	s := NewSession()
	a := s.Parameter("a", tensor.Shape{2}, tensor.Bool)
	b := s.Parameter("b", tensor.Shape{2}, tensor.Bool)
	err := catchAbort(t, func() { a.Add(b) })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("err = %v, want ErrShapeOrDType", err)
	}
}

func TestCrossSessionOperandsAbort(t *testing.T) {
	s1 := NewSession()
	s2 := NewSession()
	a := s1.Parameter("a", tensor.Shape{2}, tensor.Float32)
	b := s2.Parameter("b", tensor.Shape{2}, tensor.Float32)
	err := catchAbort(t, func() { a.Add(b) })
	if !errors.Is(err, ErrRestrictedSyntax) {
		t.Errorf("err = %v, want ErrRestrictedSyntax", err)
	}
}

func TestMatMul(t *testing.T) {
	t.Run("shapes", func(t *testing.T) {
		s := NewSession()
		a := s.Parameter("a", tensor.Shape{2, 3}, tensor.Float32)
		b := s.Parameter("b", tensor.Shape{3, 4}, tensor.Float32)
		if diff := cmp.Diff(tensor.Shape{2, 4}, a.MatMul(b).Shape()); diff != "" {
			t.Errorf("shape mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("inner_mismatch", func(t *testing.T) {
		s := NewSession()
		a := s.Parameter("a", tensor.Shape{2, 3}, tensor.Float32)
		b := s.Parameter("b", tensor.Shape{4, 2}, tensor.Float32)
		err := catchAbort(t, func() { a.MatMul(b) })
		if !errors.Is(err, tensor.ErrShapeOrDType) {
			t.Errorf("err = %v, want ErrShapeOrDType", err)
		}
	})
	t.Run("rank", func(t *testing.T) {
		s := NewSession()
		a := s.Parameter("a", tensor.Shape{6}, tensor.Float32)
		b := s.Parameter("b", tensor.Shape{6}, tensor.Float32)
		err := catchAbort(t, func() { a.MatMul(b) })
		if !errors.Is(err, tensor.ErrShapeOrDType) {
			t.Errorf("err = %v, want ErrShapeOrDType", err)
		}
	})
}

func TestReduceAxes(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{2, 3, 4}, tensor.Float32)

	if got := x.Sum().Shape(); len(got) != 0 {
		t.Errorf("Sum() shape = %v, want scalar", got)
	}
	if diff := cmp.Diff(tensor.Shape{3, 4}, x.Sum(0).Shape()); diff != "" {
		t.Errorf("Sum(0) shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tensor.Shape{2, 3}, x.Sum(-1).Shape()); diff != "" {
		t.Errorf("Sum(-1) shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, x.Sum(-1).Node().ReduceAxes()); diff != "" {
		t.Errorf("Sum(-1) axes mismatch (-want +got):\n%s", diff)
	}

	err := catchAbort(t, func() { x.Sum(1, -2) })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("duplicate axis err = %v, want ErrShapeOrDType", err)
	}
	err = catchAbort(t, func() { x.Sum(3) })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("out of range err = %v, want ErrShapeOrDType", err)
	}
}

func TestMeanRequiresFloat(t *testing.T) {
	s := NewSession()
	n := s.Parameter("n", tensor.Shape{4}, tensor.Int64)
	err := catchAbort(t, func() { n.Mean() })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("err = %v, want ErrShapeOrDType", err)
	}
	if got := n.Cast(tensor.Float32).Mean().DType(); got != tensor.Float32 {
		t.Errorf("cast-then-mean dtype = %s", got)
	}
}

func TestUnaryFloatOnly(t *testing.T) {
	s := NewSession()
	n := s.Parameter("n", tensor.Shape{4}, tensor.Int32)
	err := catchAbort(t, func() { n.Exp() })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("Exp(int32) err = %v, want ErrShapeOrDType", err)
	}
	if got := n.Neg().DType(); got != tensor.Int32 {
		t.Errorf("Neg(int32) dtype = %s, want int32", got)
	}
	if got := n.Abs().Shape(); got.NumElements() != 4 {
		t.Errorf("Abs shape = %v", got)
	}
}

func TestReshapeChecksElementCount(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{2, 3}, tensor.Float32)
	if diff := cmp.Diff(tensor.Shape{3, 2, 1}, x.Reshape(3, 2, 1).Shape()); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	err := catchAbort(t, func() { x.Reshape(4, 2) })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("err = %v, want ErrShapeOrDType", err)
	}
}

func TestTranspose(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{2, 3, 4}, tensor.Float32)
	if diff := cmp.Diff(tensor.Shape{4, 3, 2}, x.Transpose().Shape()); diff != "" {
		t.Errorf("default transpose mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tensor.Shape{3, 4, 2}, x.Transpose(1, 2, 0).Shape()); diff != "" {
		t.Errorf("permuted transpose mismatch (-want +got):\n%s", diff)
	}
	err := catchAbort(t, func() { x.Transpose(0, 0, 1) })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("err = %v, want ErrShapeOrDType", err)
	}
}

func TestBroadcastTo(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{1, 3}, tensor.Float32)
	if diff := cmp.Diff(tensor.Shape{4, 3}, x.BroadcastTo(4, 3).Shape()); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	err := catchAbort(t, func() { x.BroadcastTo(4, 5) })
	if !errors.Is(err, tensor.ErrShapeOrDType) {
		t.Errorf("err = %v, want ErrShapeOrDType", err)
	}
}

func TestCastToSameDTypeIsNoop(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{2}, tensor.Float32)
	before := s.graph.NumNodes()
	if got := x.Cast(tensor.Float32); got != x {
		t.Error("Cast to the current dtype returned a new handle")
	}
	if s.graph.NumNodes() != before {
		t.Error("Cast to the current dtype appended a node")
	}
}

func TestDataAndItemAreRestricted(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{2}, tensor.Float32)
	for _, tt := range []struct {
		name string
		fn   func()
	}{
		{"Data", func() { x.Data() }},
		{"Item", func() { x.Item() }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := catchAbort(t, tt.fn)
			if !errors.Is(err, ErrRestrictedSyntax) {
				t.Errorf("err = %v, want ErrRestrictedSyntax", err)
			}
		})
	}
}

func TestMetaView(t *testing.T) {
	s := NewSession()
	x := s.Parameter("x", tensor.Shape{2, 3}, tensor.Int64)
	m := MetaOf(x)
	if m.Rank() != 2 || m.Dim(0) != 2 || m.Dim(-1) != 3 {
		t.Errorf("meta dims = rank %d, dim0 %d, dim-1 %d", m.Rank(), m.Dim(0), m.Dim(-1))
	}
	if m.DType() != tensor.Int64 {
		t.Errorf("meta dtype = %s", m.DType())
	}
	if m.NumElements() != 6 {
		t.Errorf("meta elements = %d", m.NumElements())
	}
	// The view is a copy; mutating it must not touch the graph.
	m.Shape()[0] = 99
	if x.Shape()[0] != 2 {
		t.Error("meta shape aliases the node shape")
	}
}
