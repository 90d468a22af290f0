package defn

import (
	"fmt"
	"reflect"

	"github.com/deft-ml/deft/backend"
	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/tensor"
)

// boundArgs is one call's arguments after validation: concrete tensors in
// graph parameter order plus the numeric values for the body.
type boundArgs struct {
	tensors []*tensor.Tensor
	values  []reflect.Value // indexed by parameter position; tensor slots empty
}

// Call traces the definition with the given arguments, compiles the
// recorded graph (or reuses a cached artifact) and executes it. Tensor
// parameters accept *tensor.Tensor values or nested Go sequences, which
// convert through FromNested; numeric parameters take matching
// primitives.
func (d *Def) Call(args ...any) ([]*tensor.Tensor, error) {
	return d.CallWith(CallConfig{}, args...)
}

// Call1 is Call for single-output definitions.
func (d *Def) Call1(args ...any) (*tensor.Tensor, error) {
	outs, err := d.Call(args...)
	return d.first(outs, err)
}

// CallWith is Call under call-site compiler configuration, the highest
// precedence level.
func (d *Def) CallWith(cfg CallConfig, args ...any) ([]*tensor.Tensor, error) {
	bound, err := d.bindArgs(args)
	if err != nil {
		return nil, fmt.Errorf("deft: call %s: %w", d.name, err)
	}
	g, err := d.trace(bound)
	if err != nil {
		return nil, fmt.Errorf("deft: call %s: %w", d.name, err)
	}

	resolved := resolveConfig(cfg, d.config, d.module)
	comp, err := backend.Get(resolved.Compiler)
	if err != nil {
		return nil, fmt.Errorf("deft: call %s: %w", d.name, err)
	}

	key := d.id.String() + "|" + resolved.Compiler + "|" + canonicalOptions(resolved.Options) + "|" + g.Fingerprint()
	art, err := d.cache.getOrCompile(key, func() (backend.Artifact, error) {
		return comp.Compile(g, resolved.Options)
	})
	if err != nil {
		return nil, fmt.Errorf("deft: call %s: %w", d.name, err)
	}

	outs, err := art.Execute(bound.tensors)
	if err != nil {
		return nil, fmt.Errorf("deft: call %s: %w", d.name, err)
	}
	return outs, nil
}

// CallWith1 is CallWith for single-output definitions.
func (d *Def) CallWith1(cfg CallConfig, args ...any) (*tensor.Tensor, error) {
	outs, err := d.CallWith(cfg, args...)
	return d.first(outs, err)
}

func (d *Def) first(outs []*tensor.Tensor, err error) (*tensor.Tensor, error) {
	if err != nil {
		return nil, err
	}
	if len(outs) != 1 {
		return nil, fmt.Errorf("deft: call %s: %d outputs where exactly one was requested", d.name, len(outs))
	}
	return outs[0], nil
}

// Trace builds and validates the graph for the given arguments without
// compiling or executing it.
func (d *Def) Trace(args ...any) (*expr.Graph, error) {
	bound, err := d.bindArgs(args)
	if err != nil {
		return nil, fmt.Errorf("deft: trace %s: %w", d.name, err)
	}
	g, err := d.trace(bound)
	if err != nil {
		return nil, fmt.Errorf("deft: trace %s: %w", d.name, err)
	}
	return g, nil
}

// bindArgs validates arity and converts each argument for its parameter.
func (d *Def) bindArgs(args []any) (*boundArgs, error) {
	if len(args) != len(d.sig.params) {
		return nil, fmt.Errorf("%w: %d arguments for %d parameters",
			tensor.ErrShapeOrDType, len(args), len(d.sig.params))
	}
	bound := &boundArgs{values: make([]reflect.Value, len(args))}
	for i, p := range d.sig.params {
		switch p.kind {
		case paramTensor:
			switch arg := args[i].(type) {
			case *expr.Tensor:
				return nil, fmt.Errorf("%w: argument %d is a symbolic handle; eager calls take concrete tensors (compose definitions with Inline instead)",
					expr.ErrRestrictedSyntax, i)
			case *tensor.Tensor:
				if arg == nil {
					return nil, fmt.Errorf("%w: argument %d is nil", tensor.ErrShapeOrDType, i)
				}
				bound.tensors = append(bound.tensors, arg)
			default:
				v, err := tensor.FromNested(args[i])
				if err != nil {
					return nil, fmt.Errorf("argument %d: %w", i, err)
				}
				bound.tensors = append(bound.tensors, v)
			}
		case paramNumeric:
			v, err := convertNumeric(args[i], p.typ, i)
			if err != nil {
				return nil, err
			}
			bound.values[i] = v
		}
	}
	return bound, nil
}

// convertNumeric widens compatible primitives: integer kinds convert to
// wider integer or float parameters, floats to float parameters. Bool is
// exact. Narrowing float to integer is rejected.
func convertNumeric(arg any, want reflect.Type, pos int) (reflect.Value, error) {
	if arg == nil {
		return reflect.Value{}, fmt.Errorf("%w: argument %d is nil, parameter wants %s", tensor.ErrShapeOrDType, pos, want)
	}
	rv := reflect.ValueOf(arg)
	if rv.Type() == want {
		return rv, nil
	}
	switch want.Kind() {
	case reflect.Float32, reflect.Float64:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint8:
			return rv.Convert(want), nil
		}
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint8:
		switch rv.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint8:
			return rv.Convert(want), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: argument %d has type %T, parameter wants %s",
		tensor.ErrShapeOrDType, pos, arg, want)
}

// trace opens a fresh recording session, runs the body against parameter
// handles and seals the graph. Aborts raised inside the body (restricted
// syntax, shape violations, transform host errors) surface as returned
// errors; foreign panics propagate.
func (d *Def) trace(bound *boundArgs) (g *expr.Graph, err error) {
	s := expr.NewSession()

	in := make([]reflect.Value, 0, len(d.sig.params)+1)
	if d.sig.takesSession {
		in = append(in, reflect.ValueOf(s))
	}
	ti := 0
	for i, p := range d.sig.params {
		if p.kind == paramTensor {
			v := bound.tensors[ti]
			h := s.Parameter(fmt.Sprintf("arg%d", i), v.Shape(), v.DType())
			in = append(in, reflect.ValueOf(h))
			ti++
		} else {
			in = append(in, bound.values[i])
		}
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := expr.AsAbort(r); ok {
				g, err = nil, e
				return
			}
			panic(r)
		}
	}()

	results := d.fn.Call(in)
	outs, err := collectOutputs(results, d.sig)
	if err != nil {
		return nil, err
	}
	g, err = s.Finish(outs...)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func collectOutputs(results []reflect.Value, sig *defSignature) ([]*expr.Tensor, error) {
	if sig.sliceResult {
		outs := results[0].Interface().([]*expr.Tensor)
		if len(outs) == 0 {
			return nil, fmt.Errorf("%w: definition returned an empty tensor slice", expr.ErrRestrictedSyntax)
		}
		for i, h := range outs {
			if h == nil {
				return nil, fmt.Errorf("%w: definition result %d is nil", expr.ErrRestrictedSyntax, i)
			}
		}
		return outs, nil
	}
	outs := make([]*expr.Tensor, len(results))
	for i, r := range results {
		h, _ := r.Interface().(*expr.Tensor)
		if h == nil {
			return nil, fmt.Errorf("%w: definition result %d is nil", expr.ErrRestrictedSyntax, i)
		}
		outs[i] = h
	}
	return outs, nil
}

// InlineAll re-traces the definition's body into the caller's open
// session and returns all outputs, composing graphs without a compile
// boundary. Tensor arguments must be handles owned by s. Misuse unwinds
// the recording.
func (d *Def) InlineAll(s *expr.Session, args ...any) []*expr.Tensor {
	if s == nil || !s.Active() {
		expr.Abort(fmt.Errorf("%w: inline %s outside an active recording session", expr.ErrRestrictedSyntax, d.name))
	}
	if len(args) != len(d.sig.params) {
		expr.Abort(fmt.Errorf("%w: inline %s: %d arguments for %d parameters",
			tensor.ErrShapeOrDType, d.name, len(args), len(d.sig.params)))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if d.sig.takesSession {
		in = append(in, reflect.ValueOf(s))
	}
	for i, p := range d.sig.params {
		switch p.kind {
		case paramTensor:
			h, ok := args[i].(*expr.Tensor)
			if !ok || h == nil {
				expr.Abort(fmt.Errorf("%w: inline %s: argument %d is %T, want a tensor handle",
					tensor.ErrShapeOrDType, d.name, i, args[i]))
			}
			if h.Session() != s {
				expr.Abort(fmt.Errorf("%w: inline %s: argument %d belongs to a different recording session",
					expr.ErrRestrictedSyntax, d.name, i))
			}
			in = append(in, reflect.ValueOf(h))
		case paramNumeric:
			v, err := convertNumeric(args[i], p.typ, i)
			if err != nil {
				expr.Abort(fmt.Errorf("inline %s: %w", d.name, err))
			}
			in = append(in, v)
		}
	}

	results := d.fn.Call(in)
	outs, err := collectOutputs(results, d.sig)
	if err != nil {
		expr.Abort(fmt.Errorf("inline %s: %w", d.name, err))
	}
	return outs
}

// Inline is InlineAll for single-output definitions.
func (d *Def) Inline(s *expr.Session, args ...any) *expr.Tensor {
	outs := d.InlineAll(s, args...)
	if len(outs) != 1 {
		expr.Abort(fmt.Errorf("%w: inline %s produced %d outputs where one was requested",
			expr.ErrRestrictedSyntax, d.name, len(outs)))
	}
	return outs[0]
}
