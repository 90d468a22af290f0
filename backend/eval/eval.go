// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package eval

import (
	"github.com/deft-ml/deft/backend"
	internaleval "github.com/deft-ml/deft/internal/backend/eval"
)

// Name is the compiler's registered name and the final fallback of
// compiler resolution.
const Name = internaleval.Name

// Compiler is the built-in graph interpreter. It walks recorded nodes in
// topological order against in-memory tensors; no code generation, no
// hardware requirements. It registers itself, so importing any package
// that can dispatch a call is enough to have it available.
type Compiler = internaleval.Compiler

// Compile-time check that Compiler implements backend.Compiler.
var _ backend.Compiler = (*Compiler)(nil)

// New creates an interpreter instance.
//
// Example:
//
//	import (
//	    "github.com/deft-ml/deft/backend"
//	    "github.com/deft-ml/deft/backend/eval"
//	)
//
//	func main() {
//	    c, _ := backend.Get(eval.Name)
//	    _ = c // already registered; eval.New() builds a fresh instance
//	}
func New() *Compiler {
	return internaleval.New()
}
