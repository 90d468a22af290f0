package defn

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// Def is a declared graph-building definition. Calling it traces the body
// against symbolic handles, dispatches the recorded graph to the resolved
// compiler and executes the artifact. A Def is safe for concurrent calls;
// every call records in its own session.
type Def struct {
	id      uuid.UUID
	name    string
	fn      reflect.Value
	sig     *defSignature
	module  *Module
	config  CallConfig
	private bool
	cache   *artifactCache
}

// New declares a graph-building definition. The function signature is
// classified here, once, before any call: handle or numeric parameters
// (optionally a leading *Session), one or more handle results or a single
// handle slice. Rejected signatures return ErrRestrictedSyntax.
func New(name string, fn any, opts ...Option) (*Def, error) {
	sig, err := classifyDef(fn)
	if err != nil {
		return nil, fmt.Errorf("deft: define %q: %w", name, err)
	}
	s := applyOptions(opts)
	d := &Def{
		id:      uuid.New(),
		name:    nameOrFunc(name, fn),
		fn:      reflect.ValueOf(fn),
		sig:     sig,
		module:  s.module,
		config:  CallConfig{Compiler: s.compiler, Options: s.options},
		private: s.private,
		cache:   newArtifactCache(),
	}
	if d.module != nil {
		d.module.addDef(d)
	}
	return d, nil
}

// MustNew is New, panicking on classification failure. Declarations are
// usually package-level vars, where a bad signature should stop the
// program immediately.
func MustNew(name string, fn any, opts ...Option) *Def {
	d, err := New(name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the declared name.
func (d *Def) Name() string { return d.name }

// ID returns the definition's unique identity, a component of artifact
// cache keys.
func (d *Def) ID() string { return d.id.String() }

// NumParams returns the number of bindable parameters (the optional
// leading session excluded).
func (d *Def) NumParams() int { return len(d.sig.params) }

// CompileCount reports how many distinct artifacts have been compiled for
// this definition so far.
func (d *Def) CompileCount() int64 { return d.cache.compileCount() }

// Transform is a declared host-side helper. Inside a recording it runs
// eagerly with structural views of symbolic arguments and its tensor
// results are spliced into the graph as constants; outside it is an
// ordinary call.
type Transform struct {
	id      uuid.UUID
	name    string
	fn      reflect.Value
	sig     *transformSignature
	module  *Module
	private bool
}

// NewTransform declares a transform. Almost any signature is accepted,
// variadics included; an optional trailing error result is split off and
// handled per call mode.
func NewTransform(name string, fn any, opts ...Option) (*Transform, error) {
	sig, err := classifyTransform(fn)
	if err != nil {
		return nil, fmt.Errorf("deft: define transform %q: %w", name, err)
	}
	s := applyOptions(opts)
	t := &Transform{
		id:      uuid.New(),
		name:    nameOrFunc(name, fn),
		fn:      reflect.ValueOf(fn),
		sig:     sig,
		module:  s.module,
		private: s.private,
	}
	if t.module != nil {
		t.module.addTransform(t)
	}
	return t, nil
}

// MustTransform is NewTransform, panicking on classification failure.
func MustTransform(name string, fn any, opts ...Option) *Transform {
	t, err := NewTransform(name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the declared name.
func (t *Transform) Name() string { return t.name }

// nameOrFunc falls back to the function's runtime name when the
// declaration did not provide one.
func nameOrFunc(name string, fn any) string {
	if name != "" {
		return name
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return "<invalid>"
	}
	full := runtime.FuncForPC(v.Pointer()).Name()
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		full = full[i+1:]
	}
	return full
}
