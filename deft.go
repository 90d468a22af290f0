// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package deft declares the boundary between graph-building numerical
// definitions and eager host transforms.
//
// A definition is an ordinary Go function over symbolic tensor handles.
// Declaring it classifies the signature once; calling it traces the body
// into a graph, compiles the graph with the resolved backend (artifacts
// are cached) and executes it on the concrete arguments:
//
//	var Scale = deft.MustNew("scale", func(x *deft.Tensor, k float64) *deft.Tensor {
//		return x.Scale(k)
//	})
//
//	out, err := Scale.Call1(input, 2.5)
//
// A transform is unrestricted host code. Inside a recording it runs
// eagerly, exchanging data with the graph through injected constants;
// symbolic arguments reach it only as Meta shape/dtype views:
//
//	var Load = deft.MustTransform("load", func(path string) (*tensor.Tensor, error) {
//		...
//	})
//
// Bodies report failure by unwinding the recording with Abort; Call
// returns the unwound error. ErrRestrictedSyntax marks constructs the
// graph-building subset forbids, such as reading data through a handle.
package deft

import (
	"github.com/deft-ml/deft/backend"
	"github.com/deft-ml/deft/internal/defn"
	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/tensor"
)

type (
	// Tensor is a symbolic handle recorded inside a definition. Operators
	// on it append graph nodes; it carries no data.
	Tensor = expr.Tensor

	// Session owns one recording. Definitions receive one implicitly; a
	// body that builds leaves itself declares *Session as its first
	// parameter.
	Session = expr.Session

	// Meta is the shape/dtype view of a handle that transforms may
	// inspect during recording.
	Meta = expr.Meta

	// Graph is a sealed recording, ready for a compiler.
	Graph = expr.Graph

	// Def is a declared graph-building definition.
	Def = defn.Def

	// Transform is a declared eager host helper.
	Transform = defn.Transform

	// Module groups declarations under shared compiler defaults.
	Module = defn.Module

	// CallConfig overrides compiler selection for a single call.
	CallConfig = defn.CallConfig

	// Option configures a declaration.
	Option = defn.Option
)

var (
	// ErrRestrictedSyntax marks a construct outside the graph-building
	// subset: wrong definition signatures, data reads through handles,
	// handles crossing sessions or escaping into eager calls.
	ErrRestrictedSyntax = expr.ErrRestrictedSyntax

	// ErrShapeOrDType marks arguments or operand shapes/dtypes that
	// cannot combine.
	ErrShapeOrDType = tensor.ErrShapeOrDType

	// ErrCompile marks a backend rejecting a recorded graph.
	ErrCompile = backend.ErrCompile

	// ErrUnknownCompiler marks configuration naming an unregistered
	// backend.
	ErrUnknownCompiler = backend.ErrUnknownCompiler
)

// New declares a graph-building definition. The function may take
// symbolic handles and numeric primitives (optionally a leading
// *Session) and must return handles; other signatures fail here with
// ErrRestrictedSyntax.
func New(name string, fn any, opts ...Option) (*Def, error) {
	return defn.New(name, fn, opts...)
}

// MustNew is New, panicking on a rejected signature.
func MustNew(name string, fn any, opts ...Option) *Def {
	return defn.MustNew(name, fn, opts...)
}

// NewTransform declares an eager host transform. Any signature is
// accepted; a trailing error result is split off per call mode.
func NewTransform(name string, fn any, opts ...Option) (*Transform, error) {
	return defn.NewTransform(name, fn, opts...)
}

// MustTransform is NewTransform, panicking on a rejected signature.
func MustTransform(name string, fn any, opts ...Option) *Transform {
	return defn.MustTransform(name, fn, opts...)
}

// NewModule creates a named declaration group whose WithCompiler and
// WithCompilerOptions become member defaults.
func NewModule(name string, opts ...Option) *Module {
	return defn.NewModule(name, opts...)
}

// NewSession opens a standalone recording, for building graphs by hand.
func NewSession() *Session { return expr.NewSession() }

// MetaOf returns the shape/dtype view of a handle.
func MetaOf(t *Tensor) Meta { return expr.MetaOf(t) }

// Abort unwinds the current recording with err. Call boundaries recover
// it and return the error; outside a recording the panic escapes.
func Abort(err error) { expr.Abort(err) }

// WithCompiler pins the compiler for a declaration or module.
func WithCompiler(name string) Option { return defn.WithCompiler(name) }

// WithCompilerOptions supplies backend options for a declaration or
// module. Options merge across configuration levels, nearest level
// winning per key.
func WithCompilerOptions(options map[string]string) Option {
	return defn.WithCompilerOptions(options)
}

// WithModule attaches a declaration to a module.
func WithModule(m *Module) Option { return defn.WithModule(m) }

// Private hides a declaration from module listings.
func Private() Option { return defn.Private() }

// SetDefaultCompiler sets the process-wide default compiler. An empty
// name falls back to DEFT_COMPILER and then the interpreter.
func SetDefaultCompiler(name string) { defn.SetDefaultCompiler(name) }

// DefaultCompiler reports the compiler used when no configuration level
// names one.
func DefaultCompiler() string { return defn.DefaultCompiler() }
