// Package expr holds the deferred-computation IR: operator kinds, graph
// nodes, recording sessions, and the symbolic tensor handles whose
// operators append nodes instead of touching data.
package expr

// OpKind tags a graph node with its operator.
type OpKind uint8

// Recognized operator kinds. Anything else fails graph validation before
// any compilation or execution.
const (
	OpInvalid OpKind = iota

	// Leaves.
	OpParameter
	OpConstant

	// Element-wise binary operators with broadcasting.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpMinimum
	OpMaximum

	// Element-wise unary operators.
	OpNeg
	OpAbs
	OpExp
	OpLog
	OpSqrt
	OpTanh

	// Contractions and reductions.
	OpMatMul
	OpSum
	OpMean

	// Structure.
	OpReshape
	OpTranspose
	OpBroadcast
	OpCast

	opKindCount // must stay last
)

// String returns the lower-case operator name used in errors, cache keys
// and the CLI listing.
func (k OpKind) String() string {
	switch k {
	case OpParameter:
		return "parameter"
	case OpConstant:
		return "constant"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpPow:
		return "pow"
	case OpMinimum:
		return "minimum"
	case OpMaximum:
		return "maximum"
	case OpNeg:
		return "neg"
	case OpAbs:
		return "abs"
	case OpExp:
		return "exp"
	case OpLog:
		return "log"
	case OpSqrt:
		return "sqrt"
	case OpTanh:
		return "tanh"
	case OpMatMul:
		return "matmul"
	case OpSum:
		return "sum"
	case OpMean:
		return "mean"
	case OpReshape:
		return "reshape"
	case OpTranspose:
		return "transpose"
	case OpBroadcast:
		return "broadcast"
	case OpCast:
		return "cast"
	default:
		return "invalid"
	}
}

// Recognized reports whether k is part of the supported operator set.
func (k OpKind) Recognized() bool {
	return k > OpInvalid && k < opKindCount
}

// IsBinary reports whether k is an element-wise binary operator.
func (k OpKind) IsBinary() bool {
	switch k {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow, OpMinimum, OpMaximum:
		return true
	default:
		return false
	}
}

// IsUnary reports whether k is an element-wise unary operator.
func (k OpKind) IsUnary() bool {
	switch k {
	case OpNeg, OpAbs, OpExp, OpLog, OpSqrt, OpTanh:
		return true
	default:
		return false
	}
}

// IsReduction reports whether k reduces over axes.
func (k OpKind) IsReduction() bool {
	return k == OpSum || k == OpMean
}

// Kinds returns all recognized operator kinds in declaration order.
func Kinds() []OpKind {
	kinds := make([]OpKind, 0, int(opKindCount)-1)
	for k := OpParameter; k < opKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
