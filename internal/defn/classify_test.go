package defn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deft-ml/deft/internal/expr"
	"github.com/deft-ml/deft/internal/tensor"
)

func TestClassifyDef_Signatures(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		ok   bool
	}{
		{"single tensor", func(x *expr.Tensor) *expr.Tensor { return x }, true},
		{"tensor and numeric", func(x *expr.Tensor, alpha float64) *expr.Tensor { return x }, true},
		{"session only", func(s *expr.Session) *expr.Tensor { return nil }, true},
		{"session then params", func(s *expr.Session, x *expr.Tensor, n int) *expr.Tensor { return x }, true},
		{"slice result", func(x *expr.Tensor) []*expr.Tensor { return nil }, true},
		{"two results", func(x *expr.Tensor) (*expr.Tensor, *expr.Tensor) { return x, x }, true},
		{"bool param", func(x *expr.Tensor, fast bool) *expr.Tensor { return x }, true},
		{"string param", func(x *expr.Tensor, name string) *expr.Tensor { return x }, false},
		{"map param", func(x *expr.Tensor, m map[string]int) *expr.Tensor { return x }, false},
		{"concrete tensor param", func(x *tensor.Tensor) *expr.Tensor { return nil }, false},
		{"variadic", func(xs ...*expr.Tensor) *expr.Tensor { return nil }, false},
		{"error result", func(x *expr.Tensor) (*expr.Tensor, error) { return x, nil }, false},
		{"no result", func(x *expr.Tensor) {}, false},
		{"numeric only", func(alpha float64) *expr.Tensor { return nil }, false},
		{"session misplaced", func(x *expr.Tensor, s *expr.Session) *expr.Tensor { return x }, false},
		{"nil", nil, false},
		{"not a function", 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := classifyDef(tt.fn)
			if tt.ok {
				require.NoError(t, err)
				require.NotNil(t, sig)
			} else {
				require.ErrorIs(t, err, expr.ErrRestrictedSyntax)
			}
		})
	}
}

func TestClassifyDef_Details(t *testing.T) {
	sig, err := classifyDef(func(s *expr.Session, x *expr.Tensor, n int, f float32) (*expr.Tensor, *expr.Tensor) {
		return x, x
	})
	require.NoError(t, err)
	assert.True(t, sig.takesSession)
	require.Len(t, sig.params, 3)
	assert.Equal(t, paramTensor, sig.params[0].kind)
	assert.Equal(t, paramNumeric, sig.params[1].kind)
	assert.Equal(t, paramNumeric, sig.params[2].kind)
	assert.Equal(t, 2, sig.numResults)
	assert.False(t, sig.sliceResult)

	sig, err = classifyDef(func(x *expr.Tensor) []*expr.Tensor { return []*expr.Tensor{x} })
	require.NoError(t, err)
	assert.True(t, sig.sliceResult)
	assert.Equal(t, -1, sig.numResults)
}

func TestClassifyDef_MemoizesPerType(t *testing.T) {
	// Two closures sharing a function type must classify once.
	mk := func(k float64) any {
		return func(x *expr.Tensor) *expr.Tensor { return x.Scale(k) }
	}

	_, err := classifyDef(mk(2))
	require.NoError(t, err)
	after := classifications.Load()
	_, err = classifyDef(mk(3))
	require.NoError(t, err)
	assert.Equal(t, after, classifications.Load())
}

func TestClassifyTransform(t *testing.T) {
	tests := []struct {
		name     string
		fn       any
		ok       bool
		hasError bool
		variadic bool
		results  int
	}{
		{"plain host function", func(a, b string) string { return a + b }, true, false, false, 1},
		{"trailing error", func(v []float64) (*tensor.Tensor, error) { return nil, nil }, true, true, false, 1},
		{"error only", func() error { return nil }, true, true, false, 0},
		{"variadic", func(xs ...int) int { return len(xs) }, true, false, true, 1},
		{"no results", func(n int) {}, true, false, false, 0},
		{"two results", func(a, b int) (int, int) { return b, a }, true, false, false, 2},
		{"error not last", func() (error, int) { return nil, 0 }, false, false, false, 0},
		{"nil", nil, false, false, false, 0},
		{"not a function", "f", false, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := classifyTransform(tt.fn)
			if !tt.ok {
				require.ErrorIs(t, err, expr.ErrRestrictedSyntax)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hasError, sig.hasError)
			assert.Equal(t, tt.variadic, sig.variadic)
			assert.Equal(t, tt.results, sig.numResults)
		})
	}
}
