// Package tensor provides the concrete tensor values exchanged across the
// definition/compilation boundary: shapes, runtime element types, and
// reference-counted host buffers.
package tensor

// DType is a constraint for element types that have a native Go
// representation. Half-precision types (Float16, BFloat16) have no native
// counterpart and are handled through explicit conversion.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Float16
	BFloat16
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Float16, BFloat16:
		return 2
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the data type is a floating-point type.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float32, Float64, Float16, BFloat16:
		return true
	default:
		return false
	}
}

// IsInteger reports whether the data type is an integer type.
func (dt DataType) IsInteger() bool {
	switch dt {
	case Int32, Int64, Uint8:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether arithmetic is defined for the data type.
// Bool is a storage/comparison type; arithmetic on it requires a cast.
func (dt DataType) IsNumeric() bool {
	return dt.IsFloat() || dt.IsInteger()
}

// promotionRank orders types for binary-operator promotion. Any float
// outranks any integer, wider floats outrank narrower ones.
func (dt DataType) promotionRank() int {
	switch dt {
	case Bool:
		return 0
	case Uint8:
		return 1
	case Int32:
		return 2
	case Int64:
		return 3
	case BFloat16:
		return 4
	case Float16:
		return 5
	case Float32:
		return 6
	case Float64:
		return 7
	default:
		panic("unknown data type")
	}
}

// Promote returns the element type a mixed binary operation resolves to.
// The only non-ladder case is the Float16/BFloat16 pair: neither format can
// represent the other, so the result widens to Float32.
func Promote(a, b DataType) DataType {
	if a == b {
		return a
	}
	if (a == Float16 && b == BFloat16) || (a == BFloat16 && b == Float16) {
		return Float32
	}
	if a.promotionRank() >= b.promotionRank() {
		return a
	}
	return b
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
