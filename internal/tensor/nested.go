package tensor

import (
	"fmt"
	"reflect"
)

// FromNested converts a rectangular nested Go sequence into a tensor,
// inferring shape and element type. The input is validated in full before
// any tensor memory is allocated: ragged rows, empty sequences, and mixed
// element types fail first.
//
// Accepted leaves: float32, float64, int, int32, int64, uint8, bool.
// Plain scalars produce rank-0 tensors; `int` maps to Int64.
//
// Example:
//
//	t, err := tensor.FromNested([][]float32{{1, 2, 3}, {4, 5, 6}}) // {2 3}
func FromNested(v any) (*Tensor, error) {
	rv := reflect.ValueOf(v)
	shape, leafKind, err := nestedLayout(rv)
	if err != nil {
		return nil, err
	}
	if err := checkNested(rv, shape, leafKind, 0); err != nil {
		return nil, err
	}

	dtype := dtypeOfKind(leafKind)
	t, err := New(shape, dtype)
	if err != nil {
		return nil, err
	}
	idx := 0
	fillNested(rv, t, &idx)
	return t, nil
}

// nestedLayout walks the first spine of the value to propose shape and leaf
// kind. Rectangularity is verified separately by checkNested.
func nestedLayout(rv reflect.Value) (Shape, reflect.Kind, error) {
	shape := Shape{}
	for rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() == 0 {
			return nil, reflect.Invalid,
				fmt.Errorf("%w: empty sequence at depth %d", ErrShapeOrDType, len(shape))
		}
		shape = append(shape, rv.Len())
		rv = rv.Index(0)
		if rv.Kind() == reflect.Interface {
			rv = rv.Elem()
		}
	}
	kind := rv.Kind()
	if dtypeOfKind(kind) == -1 {
		return nil, reflect.Invalid,
			fmt.Errorf("%w: unsupported element type %s", ErrShapeOrDType, rv.Type())
	}
	return shape, kind, nil
}

// checkNested verifies every row length and leaf kind against the proposed
// layout. It allocates nothing, so failures precede any conversion.
func checkNested(rv reflect.Value, shape Shape, leafKind reflect.Kind, depth int) error {
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if depth == len(shape) {
		if rv.Kind() != leafKind {
			return fmt.Errorf("%w: mixed element types: %s vs %s",
				ErrShapeOrDType, rv.Kind(), leafKind)
		}
		return nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("%w: expected a sequence at depth %d, got %s",
			ErrShapeOrDType, depth, rv.Kind())
	}
	if rv.Len() != shape[depth] {
		return fmt.Errorf("%w: ragged nested sequence at depth %d: length %d, want %d",
			ErrShapeOrDType, depth, rv.Len(), shape[depth])
	}
	for i := 0; i < rv.Len(); i++ {
		if err := checkNested(rv.Index(i), shape, leafKind, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// fillNested writes leaves into t in row-major order. Layout was already
// validated, so the walk cannot fail.
func fillNested(rv reflect.Value, t *Tensor, idx *int) {
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			fillNested(rv.Index(i), t, idx)
		}
		return
	}
	i := *idx
	*idx = i + 1
	switch t.dtype {
	case Float32:
		t.AsFloat32()[i] = float32(rv.Float())
	case Float64:
		t.AsFloat64()[i] = rv.Float()
	case Int32:
		t.AsInt32()[i] = int32(rv.Int())
	case Int64:
		t.AsInt64()[i] = rv.Int()
	case Uint8:
		t.AsUint8()[i] = uint8(rv.Uint())
	case Bool:
		t.AsBool()[i] = rv.Bool()
	}
}

// dtypeOfKind maps supported Go leaf kinds to element types; -1 otherwise.
func dtypeOfKind(k reflect.Kind) DataType {
	switch k {
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Int, reflect.Int64:
		return Int64
	case reflect.Int32:
		return Int32
	case reflect.Uint8:
		return Uint8
	case reflect.Bool:
		return Bool
	default:
		return -1
	}
}
