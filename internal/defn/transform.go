package defn

import (
	"fmt"
	"reflect"

	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/tensor"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Apply suspends recording, runs the host function eagerly with the
// given arguments and resumes with its results. Symbolic handles
// downgrade to Meta views where the parameter accepts one; concrete
// tensor results re-enter the recording as constant nodes. A non-nil
// error result unwinds the recording.
func (tr *Transform) Apply(s *expr.Session, args ...any) any {
	if s == nil || !s.Active() {
		expr.Abort(fmt.Errorf("%w: transform %s applied outside an active recording session",
			expr.ErrRestrictedSyntax, tr.name))
	}
	in, err := tr.bind(args, true)
	if err != nil {
		expr.Abort(fmt.Errorf("transform %s: %w", tr.name, err))
	}

	results := tr.fn.Call(in)
	if tr.sig.hasError {
		last := results[len(results)-1]
		results = results[:len(results)-1]
		if !last.IsNil() {
			expr.Abort(fmt.Errorf("transform %s: %w", tr.name, last.Interface().(error)))
		}
	}
	return emitResults(s, results)
}

// Run executes the host function outside any recording session. The
// trailing error result, when declared, is split off and returned.
// Symbolic handles are rejected: there is no recording to rejoin.
func (tr *Transform) Run(args ...any) (any, error) {
	in, err := tr.bind(args, false)
	if err != nil {
		return nil, fmt.Errorf("deft: transform %s: %w", tr.name, err)
	}

	results := tr.fn.Call(in)
	if tr.sig.hasError {
		last := results[len(results)-1]
		results = results[:len(results)-1]
		if !last.IsNil() {
			return nil, fmt.Errorf("deft: transform %s: %w", tr.name, last.Interface().(error))
		}
	}
	return emitResults(nil, results), nil
}

// bind coerces call arguments to the host function's parameter types.
// Inside a session, handles flatten to Meta where the parameter is Meta
// or any; everywhere else a handle is a restricted-syntax violation,
// since the host body would be reading data that does not exist yet.
func (tr *Transform) bind(args []any, inSession bool) ([]reflect.Value, error) {
	ft := tr.fn.Type()
	fixed := ft.NumIn()
	if tr.sig.variadic {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: %d arguments for at least %d parameters",
				tensor.ErrShapeOrDType, len(args), fixed)
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: %d arguments for %d parameters",
			tensor.ErrShapeOrDType, len(args), fixed)
	}

	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		want := ft.In(min(i, fixed))
		if tr.sig.variadic && i >= fixed {
			want = want.Elem()
		}
		v, err := coerceArg(arg, want, i, inSession)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	return in, nil
}

func coerceArg(arg any, want reflect.Type, pos int, inSession bool) (reflect.Value, error) {
	if h, ok := arg.(*expr.Tensor); ok {
		if !inSession {
			return reflect.Value{}, fmt.Errorf("%w: argument %d is a symbolic handle outside a recording session",
				expr.ErrRestrictedSyntax, pos)
		}
		if want == metaType || want == anyType {
			return reflect.ValueOf(expr.MetaOf(h)), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: argument %d is a symbolic handle but parameter wants %s; handles carry no data during recording (accept a Meta instead)",
			expr.ErrRestrictedSyntax, pos, want)
	}
	if arg == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: argument %d is nil, parameter wants %s",
			tensor.ErrShapeOrDType, pos, want)
	}

	rv := reflect.ValueOf(arg)
	if rv.Type().AssignableTo(want) {
		return rv, nil
	}
	switch want.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64:
		if v, err := convertNumeric(arg, want, pos); err == nil {
			return v, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: argument %d has type %T, parameter wants %s",
		tensor.ErrShapeOrDType, pos, arg, want)
}

// emitResults maps host results back to the caller. Under a session,
// concrete tensors become constant handles so downstream ops can consume
// them; outside one they pass through untouched. One result returns
// bare, several return as a slice.
func emitResults(s *expr.Session, results []reflect.Value) any {
	vals := make([]any, len(results))
	for i, r := range results {
		v := r.Interface()
		if t, ok := v.(*tensor.Tensor); ok && s != nil {
			vals[i] = s.Constant(t)
			continue
		}
		vals[i] = v
	}
	switch len(vals) {
	case 0:
		return nil
	case 1:
		return vals[0]
	}
	return vals
}
