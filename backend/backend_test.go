// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deft-ml/deft/backend"
	"github.com/deft-ml/deft/graph"
	"github.com/deft-ml/deft/tensor"
)

type stubCompiler struct {
	name string
}

func (c *stubCompiler) Name() string { return c.name }

func (c *stubCompiler) Compile(g *graph.Graph, options map[string]string) (backend.Artifact, error) {
	return nil, backend.ErrCompile
}

var _ backend.Compiler = (*stubCompiler)(nil)

func TestRegisterAndGet(t *testing.T) {
	backend.Register(&stubCompiler{name: "stub-a"})
	backend.Register(&stubCompiler{name: "stub-b"})

	c, err := backend.Get("stub-a")
	require.NoError(t, err)
	assert.Equal(t, "stub-a", c.Name())

	names := backend.Names()
	assert.Contains(t, names, "stub-a")
	assert.Contains(t, names, "stub-b")
	assert.IsIncreasing(t, names, "Names must be sorted")
}

func TestGetUnknown(t *testing.T) {
	_, err := backend.Get("no-such-compiler")
	assert.ErrorIs(t, err, backend.ErrUnknownCompiler)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	backend.Register(&stubCompiler{name: "stub-dup"})
	assert.Panics(t, func() {
		backend.Register(&stubCompiler{name: "stub-dup"})
	})
}

func TestRegisterEmptyNamePanics(t *testing.T) {
	assert.Panics(t, func() {
		backend.Register(&stubCompiler{name: ""})
	})
}

// The facade types are interchangeable with the internal ones a compiler
// actually receives.
func TestFacadeTypesFlow(t *testing.T) {
	s := graph.NewSession()
	x := s.Parameter("x", tensor.Shape{2}, tensor.Float32)
	g, err := s.Finish(x.Neg())
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	assert.Equal(t, "float32{2}", g.Signature())
	assert.Equal(t, graph.OpNeg, g.Outputs()[0].Kind())
}
