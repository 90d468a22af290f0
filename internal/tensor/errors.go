package tensor

import "errors"

// ErrShapeOrDType is the sentinel for every shape/element-type violation:
// ragged nested input, broadcast incompatibility, arity and argument kind
// mismatches. Callers wrap it with detail via fmt.Errorf("...: %w", ...).
var ErrShapeOrDType = errors.New("tensor: shape or dtype mismatch")
