//go:build windows

package webgpu

import (
	"errors"
	"testing"

	"github.com/deft-ml/deft/backend"
	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/tensor"
)

func TestIsAvailable(t *testing.T) {
	t.Logf("WebGPU available: %v", IsAvailable())
	// Reports status only; absence of a GPU is not a failure.
}

// Compile is pure validation, so these run without a device.
func TestCompileValidatesGraphs(t *testing.T) {
	c := NewCompiler(nil)

	build := func(f func(s *expr.Session) *expr.Tensor) *expr.Graph {
		s := expr.NewSession()
		g, err := s.Finish(f(s))
		if err != nil {
			t.Fatalf("finish: %v", err)
		}
		return g
	}

	intGraph := build(func(s *expr.Session) *expr.Tensor {
		x := s.Parameter("x", tensor.Shape{2}, tensor.Int64)
		return x.Add(x)
	})
	if _, err := c.Compile(intGraph, nil); !errors.Is(err, backend.ErrCompile) {
		t.Fatalf("int64 graph: got %v, want ErrCompile", err)
	}

	reduceGraph := build(func(s *expr.Session) *expr.Tensor {
		x := s.Parameter("x", tensor.Shape{2, 3}, tensor.Float32)
		return x.Sum(1)
	})
	if _, err := c.Compile(reduceGraph, nil); !errors.Is(err, backend.ErrCompile) {
		t.Fatalf("reduction graph: got %v, want ErrCompile", err)
	}

	broadcastGraph := build(func(s *expr.Session) *expr.Tensor {
		x := s.Parameter("x", tensor.Shape{2, 3}, tensor.Float32)
		y := s.Parameter("y", tensor.Shape{3}, tensor.Float32)
		return x.Add(y)
	})
	if _, err := c.Compile(broadcastGraph, nil); !errors.Is(err, backend.ErrCompile) {
		t.Fatalf("broadcast graph: got %v, want ErrCompile", err)
	}

	okGraph := build(func(s *expr.Session) *expr.Tensor {
		x := s.Parameter("x", tensor.Shape{4}, tensor.Float32)
		return x.Mul(x).Sqrt()
	})
	if _, err := c.Compile(okGraph, map[string]string{"tile": "big"}); !errors.Is(err, backend.ErrCompile) {
		t.Fatalf("unknown option: got %v, want ErrCompile", err)
	}
	art, err := c.Compile(okGraph, nil)
	if err != nil {
		t.Fatalf("supported graph rejected: %v", err)
	}
	if art == nil {
		t.Fatal("nil artifact for supported graph")
	}
}

func newTestCompiler(t *testing.T) (*Compiler, func()) {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}
	b, err := New()
	if err != nil {
		t.Skipf("WebGPU not available on this system: %v", err)
	}
	return NewCompiler(b), b.Release
}

func TestExecuteElementwiseAndMatMul(t *testing.T) {
	comp, release := newTestCompiler(t)
	defer release()

	s := expr.NewSession()
	x := s.Parameter("x", tensor.Shape{2, 2}, tensor.Float32)
	y := s.Parameter("y", tensor.Shape{2, 2}, tensor.Float32)
	g, err := s.Finish(x.Add(y).MatMul(x.Transpose()))
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	art, err := comp.Compile(g, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	xv, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	yv, err := tensor.FromSlice([]float32{5, 6, 7, 8}, tensor.Shape{2, 2})
	if err != nil {
		t.Fatal(err)
	}

	outs, err := art.Execute([]*tensor.Tensor{xv, yv})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// (x+y) @ x^T:
	//   [ 6  8]   [1 3]   [22 50]
	//   [10 12] @ [2 4] = [34 78]
	want := []float32{22, 50, 34, 78}
	got := outs[0].AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExecuteUnaryChain(t *testing.T) {
	comp, release := newTestCompiler(t)
	defer release()

	s := expr.NewSession()
	x := s.Parameter("x", tensor.Shape{3}, tensor.Float32)
	g, err := s.Finish(x.Neg().Abs().Sqrt())
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	art, err := comp.Compile(g, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	xv, err := tensor.FromSlice([]float32{4, 9, 16}, tensor.Shape{3})
	if err != nil {
		t.Fatal(err)
	}
	outs, err := art.Execute([]*tensor.Tensor{xv})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := []float32{2, 3, 4}
	got := outs[0].AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
