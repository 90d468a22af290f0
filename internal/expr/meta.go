package expr

import "github.com/deft-ml/deft/internal/tensor"

// Meta is the view of a symbolic tensor handed to host-side helpers. It
// exposes structure only, never values, so helpers can compute shapes,
// counts and dtypes without touching the graph.
type Meta struct {
	shape tensor.Shape
	dtype tensor.DataType
}

// MetaOf captures the structural view of a handle.
func MetaOf(t *Tensor) Meta {
	return Meta{shape: t.node.shape.Clone(), dtype: t.node.dtype}
}

// MetaFor builds a structural view from a shape and dtype.
func MetaFor(shape tensor.Shape, dtype tensor.DataType) Meta {
	return Meta{shape: shape.Clone(), dtype: dtype}
}

// Shape returns a copy of the viewed shape.
func (m Meta) Shape() tensor.Shape { return m.shape.Clone() }

// DType returns the viewed element type.
func (m Meta) DType() tensor.DataType { return m.dtype }

// Rank returns the number of axes.
func (m Meta) Rank() int { return len(m.shape) }

// Dim returns the size of one axis. Negative axes count from the end.
func (m Meta) Dim(axis int) int {
	if axis < 0 {
		axis += len(m.shape)
	}
	if axis < 0 || axis >= len(m.shape) {
		return 0
	}
	return m.shape[axis]
}

// NumElements returns the element count of the viewed shape.
func (m Meta) NumElements() int { return m.shape.NumElements() }
