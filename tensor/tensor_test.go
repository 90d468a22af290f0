// Copyright 2025 Deft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deft-ml/deft/tensor"
)

func TestPublicSurface(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())
	assert.Equal(t, 6, x.NumElements())

	v, err := x.View(tensor.Shape{3, 2})
	require.NoError(t, err)
	assert.True(t, v.SharesBufferWith(x), "reshape views share the buffer")

	_, err = tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2})
	assert.ErrorIs(t, err, tensor.ErrShapeOrDType)
}

func TestNestedConversion(t *testing.T) {
	x, err := tensor.FromNested([][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, tensor.Int64, x.DType())
	assert.Equal(t, tensor.Shape{2, 2}, x.Shape())

	_, err = tensor.FromNested([][]int{{1, 2}, {3, 4, 5}})
	assert.ErrorIs(t, err, tensor.ErrShapeOrDType)
}

func TestPromotionLadder(t *testing.T) {
	assert.Equal(t, tensor.Float32, tensor.Promote(tensor.Float32, tensor.Int32))
	assert.Equal(t, tensor.Float32, tensor.Promote(tensor.Float16, tensor.BFloat16))
	assert.Equal(t, tensor.Float64, tensor.Promote(tensor.Float64, tensor.Float16))
}

func TestCastRoundTrip(t *testing.T) {
	x := tensor.Scalar[int64](1 << 40)
	y, err := tensor.CastTo(x, tensor.Float64)
	require.NoError(t, err)
	back, err := tensor.CastTo(y, tensor.Int64)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), back.AsInt64()[0])

	if !errors.Is(func() error { _, err := tensor.New(tensor.Shape{-1}, tensor.Float32); return err }(), tensor.ErrShapeOrDType) {
		t.Error("negative dimension accepted")
	}
}
