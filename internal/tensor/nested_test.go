package tensor

import (
	"errors"
	"testing"
)

func TestFromNested(t *testing.T) {
	t.Run("matrix", func(t *testing.T) {
		ten, err := FromNested([][]float32{{1, 2, 3}, {4, 5, 6}})
		if err != nil {
			t.Fatalf("FromNested failed: %v", err)
		}
		if !ten.Shape().Equal(Shape{2, 3}) {
			t.Fatalf("shape = %v, want {2 3}", ten.Shape())
		}
		got := ten.AsFloat32()
		for i, want := range []float32{1, 2, 3, 4, 5, 6} {
			if got[i] != want {
				t.Errorf("element %d = %v, want %v", i, got[i], want)
			}
		}
	})

	t.Run("three levels", func(t *testing.T) {
		ten, err := FromNested([][][]int{{{1, 2, 3}, {4, 5, 6}}})
		if err != nil {
			t.Fatalf("FromNested failed: %v", err)
		}
		if !ten.Shape().Equal(Shape{1, 2, 3}) {
			t.Fatalf("shape = %v, want {1 2 3}", ten.Shape())
		}
		if ten.DType() != Int64 {
			t.Errorf("dtype = %s, want int64 (int maps to int64)", ten.DType())
		}
	})

	t.Run("scalar", func(t *testing.T) {
		ten, err := FromNested(2.5)
		if err != nil {
			t.Fatalf("FromNested failed: %v", err)
		}
		if ten.Rank() != 0 || ten.AsFloat64()[0] != 2.5 {
			t.Errorf("scalar = %v %v", ten.Shape(), ten.AsFloat64())
		}
	})

	t.Run("ragged rows rejected", func(t *testing.T) {
		_, err := FromNested([][]int{{1, 2}, {3, 4, 5}})
		if !errors.Is(err, ErrShapeOrDType) {
			t.Fatalf("expected ErrShapeOrDType, got %v", err)
		}
	})

	t.Run("ragged via any", func(t *testing.T) {
		_, err := FromNested([]any{[]any{1, 2}, []any{3, 4, 5}})
		if !errors.Is(err, ErrShapeOrDType) {
			t.Fatalf("expected ErrShapeOrDType, got %v", err)
		}
	})

	t.Run("mixed element types rejected", func(t *testing.T) {
		_, err := FromNested([]any{1, 2.5})
		if !errors.Is(err, ErrShapeOrDType) {
			t.Fatalf("expected ErrShapeOrDType, got %v", err)
		}
	})

	t.Run("empty sequence rejected", func(t *testing.T) {
		_, err := FromNested([][]float32{})
		if !errors.Is(err, ErrShapeOrDType) {
			t.Fatalf("expected ErrShapeOrDType, got %v", err)
		}
	})

	t.Run("unsupported leaf rejected", func(t *testing.T) {
		_, err := FromNested([]string{"a"})
		if !errors.Is(err, ErrShapeOrDType) {
			t.Fatalf("expected ErrShapeOrDType, got %v", err)
		}
	})
}
