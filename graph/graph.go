// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph exposes the computation graphs recorded by graph-building
// definitions.
//
// Compiler implementations consume these types: a sealed, validated Graph
// of Nodes in topological order, with Parameter and Constant leaves and
// declared outputs. The symbolic Tensor handle and its Session are also
// exported so backends can be exercised against hand-built graphs.
package graph

import (
	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/tensor"
)

// Graph is a sealed DAG of operator nodes. Node order is a valid
// topological order; parameters carry dense binding positions.
type Graph = expr.Graph

// Node is one recorded operator with its inputs and inferred shape/dtype.
type Node = expr.Node

// Session accumulates nodes for one graph-building call.
type Session = expr.Session

// Tensor is the symbolic handle operators are recorded through. It
// carries shape and dtype only; reading data through it is a
// restricted-syntax violation.
type Tensor = expr.Tensor

// Meta is the structural view of a symbolic tensor handed to host-side
// transforms: shape and dtype, never values.
type Meta = expr.Meta

// OpKind identifies a recorded operator.
type OpKind = expr.OpKind

// Operator kinds.
const (
	OpInvalid   OpKind = expr.OpInvalid
	OpParameter OpKind = expr.OpParameter
	OpConstant  OpKind = expr.OpConstant
	OpAdd       OpKind = expr.OpAdd
	OpSub       OpKind = expr.OpSub
	OpMul       OpKind = expr.OpMul
	OpDiv       OpKind = expr.OpDiv
	OpPow       OpKind = expr.OpPow
	OpMinimum   OpKind = expr.OpMinimum
	OpMaximum   OpKind = expr.OpMaximum
	OpNeg       OpKind = expr.OpNeg
	OpAbs       OpKind = expr.OpAbs
	OpExp       OpKind = expr.OpExp
	OpLog       OpKind = expr.OpLog
	OpSqrt      OpKind = expr.OpSqrt
	OpTanh      OpKind = expr.OpTanh
	OpMatMul    OpKind = expr.OpMatMul
	OpSum       OpKind = expr.OpSum
	OpMean      OpKind = expr.OpMean
	OpReshape   OpKind = expr.OpReshape
	OpTranspose OpKind = expr.OpTranspose
	OpBroadcast OpKind = expr.OpBroadcast
	OpCast      OpKind = expr.OpCast
)

// ErrRestrictedSyntax reports a construct that is not allowed inside a
// graph-building definition.
var ErrRestrictedSyntax = expr.ErrRestrictedSyntax

// NewSession opens a recording session with an empty graph. Definitions
// open sessions automatically; direct use is for backend tests and tools.
func NewSession() *Session {
	return expr.NewSession()
}

// MetaFor builds a structural view from a shape and dtype.
func MetaFor(shape tensor.Shape, dtype tensor.DataType) Meta {
	return expr.MetaFor(shape, dtype)
}

// Kinds lists every recognized operator kind.
func Kinds() []OpKind {
	return expr.Kinds()
}
