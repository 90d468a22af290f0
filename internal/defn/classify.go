package defn

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/deft-ml/deft/internal/expr"
)

// paramKind says how a definition parameter binds at trace time.
type paramKind uint8

const (
	paramTensor  paramKind = iota // *expr.Tensor handle, fed by a graph parameter
	paramNumeric                  // numeric primitive, passed straight to the body
)

type paramSpec struct {
	kind paramKind
	typ  reflect.Type
}

// defSignature is the trace-time contract a definition was classified
// into: which parameters bind handles, whether the body wants the session
// first, and how outputs come back.
type defSignature struct {
	takesSession bool
	params       []paramSpec
	numResults   int
	sliceResult  bool
}

// transformSignature records the calling convention of a transform: its
// result count and whether a trailing error is split off.
type transformSignature struct {
	numResults int
	hasError   bool
	variadic   bool
}

var (
	handleType      = reflect.TypeOf((*expr.Tensor)(nil))
	handleSliceType = reflect.TypeOf([]*expr.Tensor(nil))
	sessionType     = reflect.TypeOf((*expr.Session)(nil))
	metaType        = reflect.TypeOf(expr.Meta{})
	errorType       = reflect.TypeOf((*error)(nil)).Elem()
)

// Classification happens once per function type for the process lifetime.
// Signatures are a property of the type, so closures sharing a type share
// the cached result.
var (
	memoMu        sync.RWMutex
	defMemo       = map[reflect.Type]*defSignature{}
	transformMemo = map[reflect.Type]*transformSignature{}

	classifications atomic.Int64
)

func isNumericParamKind(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint8, reflect.Bool:
		return true
	}
	return false
}

// classifyDef checks fn against the graph-building subset: handle or
// numeric parameters (optionally a leading session), handle results, no
// variadics, no error returns. Violations fail here, before any call.
func classifyDef(fn any) (*defSignature, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: definition function is nil", expr.ErrRestrictedSyntax)
	}
	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: definition must be a function, got %s", expr.ErrRestrictedSyntax, t)
	}

	memoMu.RLock()
	sig, ok := defMemo[t]
	memoMu.RUnlock()
	if ok {
		return sig, nil
	}

	classifications.Add(1)

	if t.IsVariadic() {
		return nil, fmt.Errorf("%w: definition %s is variadic", expr.ErrRestrictedSyntax, t)
	}

	sig = &defSignature{}
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		switch {
		case in == sessionType:
			if i != 0 {
				return nil, fmt.Errorf("%w: definition %s takes a session after parameter 0", expr.ErrRestrictedSyntax, t)
			}
			sig.takesSession = true
		case in == handleType:
			sig.params = append(sig.params, paramSpec{kind: paramTensor, typ: in})
		case isNumericParamKind(in.Kind()):
			sig.params = append(sig.params, paramSpec{kind: paramNumeric, typ: in})
		default:
			return nil, fmt.Errorf("%w: definition %s parameter %d has type %s (want tensor handle or numeric primitive)",
				expr.ErrRestrictedSyntax, t, i, in)
		}
	}

	tensorParams := 0
	for _, p := range sig.params {
		if p.kind == paramTensor {
			tensorParams++
		}
	}
	if tensorParams == 0 && !sig.takesSession {
		return nil, fmt.Errorf("%w: definition %s has no tensor parameter and no session to build from",
			expr.ErrRestrictedSyntax, t)
	}

	switch {
	case t.NumOut() == 0:
		return nil, fmt.Errorf("%w: definition %s returns nothing (want one or more tensors)", expr.ErrRestrictedSyntax, t)
	case t.NumOut() == 1 && t.Out(0) == handleSliceType:
		sig.sliceResult = true
		sig.numResults = -1
	default:
		for i := 0; i < t.NumOut(); i++ {
			out := t.Out(i)
			if out == errorType {
				return nil, fmt.Errorf("%w: definition %s returns error; graph building reports failures by aborting the call",
					expr.ErrRestrictedSyntax, t)
			}
			if out != handleType {
				return nil, fmt.Errorf("%w: definition %s result %d has type %s (want tensor handle)",
					expr.ErrRestrictedSyntax, t, i, out)
			}
		}
		sig.numResults = t.NumOut()
	}

	memoMu.Lock()
	defMemo[t] = sig
	memoMu.Unlock()
	return sig, nil
}

// classifyTransform records a transform's calling convention. Any
// signature is accepted; only a non-trailing error result is rejected.
func classifyTransform(fn any) (*transformSignature, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: transform function is nil", expr.ErrRestrictedSyntax)
	}
	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: transform must be a function, got %s", expr.ErrRestrictedSyntax, t)
	}

	memoMu.RLock()
	sig, ok := transformMemo[t]
	memoMu.RUnlock()
	if ok {
		return sig, nil
	}

	classifications.Add(1)

	sig = &transformSignature{
		numResults: t.NumOut(),
		variadic:   t.IsVariadic(),
	}
	for i := 0; i < t.NumOut(); i++ {
		if t.Out(i) == errorType {
			if i != t.NumOut()-1 {
				return nil, fmt.Errorf("%w: transform %s returns error at position %d (error must be last)",
					expr.ErrRestrictedSyntax, t, i)
			}
			sig.hasError = true
			sig.numResults--
		}
	}

	memoMu.Lock()
	transformMemo[t] = sig
	memoMu.Unlock()
	return sig, nil
}
