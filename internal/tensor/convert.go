package tensor

import (
	"fmt"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// ToFloat64s widens any tensor into a fresh []float64 lane copy. Bool maps
// to 0/1. Int64 values beyond 2^53 lose precision; integer kernels that
// need exactness work on the typed accessors instead.
func ToFloat64s(t *Tensor) []float64 {
	n := t.NumElements()
	out := make([]float64, n)
	switch t.dtype {
	case Float32:
		for i, v := range t.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, t.AsFloat64())
	case Float16:
		for i, v := range t.AsFloat16() {
			out[i] = float64(v.Float32())
		}
	case BFloat16:
		for i, v := range bfloat16.DecodeFloat32(t.Data()) {
			out[i] = float64(v)
		}
	case Int32:
		for i, v := range t.AsInt32() {
			out[i] = float64(v)
		}
	case Int64:
		for i, v := range t.AsInt64() {
			out[i] = float64(v)
		}
	case Uint8:
		for i, v := range t.AsUint8() {
			out[i] = float64(v)
		}
	case Bool:
		for i, v := range t.AsBool() {
			if v {
				out[i] = 1
			}
		}
	default:
		panic(fmt.Sprintf("unknown data type %d", t.dtype))
	}
	return out
}

// FromFloat64s builds a tensor of the given dtype from widened lanes,
// narrowing per element type. Integer targets truncate toward zero; Bool
// maps non-zero to true.
func FromFloat64s(vals []float64, shape Shape, dtype DataType) (*Tensor, error) {
	if shape.NumElements() != len(vals) {
		return nil, fmt.Errorf("%w: shape %s requires %d elements, but got %d",
			ErrShapeOrDType, shape, shape.NumElements(), len(vals))
	}
	t, err := New(shape, dtype)
	if err != nil {
		return nil, err
	}
	switch dtype {
	case Float32:
		dst := t.AsFloat32()
		for i, v := range vals {
			dst[i] = float32(v)
		}
	case Float64:
		copy(t.AsFloat64(), vals)
	case Float16:
		dst := t.AsFloat16()
		for i, v := range vals {
			dst[i] = float16.Fromfloat32(float32(v))
		}
	case BFloat16:
		f32s := make([]float32, len(vals))
		for i, v := range vals {
			f32s[i] = float32(v)
		}
		copy(t.Data(), bfloat16.EncodeFloat32(f32s))
	case Int32:
		dst := t.AsInt32()
		for i, v := range vals {
			dst[i] = int32(v)
		}
	case Int64:
		dst := t.AsInt64()
		for i, v := range vals {
			dst[i] = int64(v)
		}
	case Uint8:
		dst := t.AsUint8()
		for i, v := range vals {
			dst[i] = uint8(v)
		}
	case Bool:
		dst := t.AsBool()
		for i, v := range vals {
			dst[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("unknown data type %d", dtype))
	}
	return t, nil
}

// CastTo returns a copy of t converted to dtype. Same dtype returns a
// buffer-sharing clone.
func CastTo(t *Tensor, dtype DataType) (*Tensor, error) {
	if t.dtype == dtype {
		return t.Clone(), nil
	}
	// Exact integer-to-integer path; the float64 lane would be lossy for
	// int64 values beyond 2^53.
	if t.dtype == Int64 && dtype == Int32 {
		out, err := New(t.shape, dtype)
		if err != nil {
			return nil, err
		}
		dst := out.AsInt32()
		for i, v := range t.AsInt64() {
			dst[i] = int32(v)
		}
		return out, nil
	}
	if t.dtype == Int32 && dtype == Int64 {
		out, err := New(t.shape, dtype)
		if err != nil {
			return nil, err
		}
		dst := out.AsInt64()
		for i, v := range t.AsInt32() {
			dst[i] = int64(v)
		}
		return out, nil
	}
	return FromFloat64s(ToFloat64s(t), t.shape, dtype)
}
