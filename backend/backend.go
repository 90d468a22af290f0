// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend defines the compiler contract and the process-wide
// compiler registry.
//
// A Compiler lowers a sealed computation graph into an executable
// Artifact. Implementations register themselves by name, usually from an
// init function, and are selected through configuration (call site,
// definition, module, process default). The built-in "eval" interpreter
// is always registered and serves as the fallback.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/deft-ml/deft/graph"
	"github.com/deft-ml/deft/tensor"
)

// Compiler lowers sealed graphs into executable artifacts. Implementations
// must be safe for concurrent use; Compile may be called for different
// graphs from multiple goroutines.
type Compiler interface {
	// Name identifies the compiler in configuration and artifact cache
	// keys. It must be non-empty and stable for the process lifetime.
	Name() string

	// Compile lowers a sealed, validated graph under the given options.
	// Option interpretation is compiler-specific; unknown options are an
	// error. Failures must wrap ErrCompile.
	Compile(g *graph.Graph, options map[string]string) (Artifact, error)
}

// Artifact is a compiled graph ready to execute. Artifacts are cached and
// shared, so Execute must be safe for concurrent use.
type Artifact interface {
	// Execute binds inputs to the graph's parameters in declaration order
	// and returns the declared outputs in order. Inputs must match the
	// shapes and dtypes the graph was compiled for.
	Execute(inputs []*tensor.Tensor) ([]*tensor.Tensor, error)
}

// ErrUnknownCompiler reports a lookup for a name nothing registered.
var ErrUnknownCompiler = errors.New("backend: unknown compiler")

// ErrCompile reports a backend failing to lower a graph. Compilation
// failures are surfaced to the caller and never retried automatically.
var ErrCompile = errors.New("backend: compilation failed")

var (
	registryMu sync.RWMutex
	registry   = map[string]Compiler{}
)

// Register adds a compiler under its name. It panics when the name is
// empty or already taken; registration conflicts are programmer errors
// caught at process start, not runtime conditions.
func Register(c Compiler) {
	name := c.Name()
	if name == "" {
		panic("backend: Register with an empty compiler name")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("backend: compiler %q registered twice", name))
	}
	registry[name] = c
}

// Get returns the compiler registered under name.
func Get(name string) (Compiler, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownCompiler, name, names())
	}
	return c, nil
}

// Names lists the registered compiler names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return names()
}

func names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
