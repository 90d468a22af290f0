package deft_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deft-ml/deft"
	"github.com/deft-ml/deft/tensor"
)

func TestDefinitionMatchesEagerMath(t *testing.T) {
	softmaxFlat := deft.MustNew("softmax_flat", func(x *deft.Tensor) *deft.Tensor {
		e := x.Exp()
		return e.Div(e.Sum())
	})

	x, err := tensor.FromSlice([]float64{0, 1, 2}, tensor.Shape{3})
	require.NoError(t, err)

	out, err := softmaxFlat.Call1(x)
	require.NoError(t, err)

	// The compiled artifact must agree with plain host arithmetic.
	denom := math.Exp(0) + math.Exp(1) + math.Exp(2)
	want := []float64{math.Exp(0) / denom, math.Exp(1) / denom, math.Exp(2) / denom}
	assert.InDeltaSlice(t, want, out.AsFloat64(), 1e-12)
}

func TestTransformFeedsDefinition(t *testing.T) {
	loadWeights := deft.MustTransform("load_weights", func(rows [][]float32) (*tensor.Tensor, error) {
		return tensor.FromNested(rows)
	})
	apply := deft.MustNew("apply_weights", func(x *deft.Tensor) *deft.Tensor {
		s := x.Session()
		w := loadWeights.Apply(s, [][]float32{{1, 0}, {0, 1}, {1, 1}}).(*deft.Tensor)
		return x.MatMul(w)
	})

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	out, err := apply.Call1(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{4, 5, 10, 11}, out.AsFloat32())
}

func TestRaggedInputFailsBeforeCompile(t *testing.T) {
	lift := deft.MustTransform("lift_rows", func(rows [][]float64) (*tensor.Tensor, error) {
		return tensor.FromNested(rows)
	})
	sumAll := deft.MustNew("sum_all", func(s *deft.Session) *deft.Tensor {
		h := lift.Apply(s, [][]float64{{1, 2}, {3, 4, 5}}).(*deft.Tensor)
		return h.Sum()
	})

	_, err := sumAll.Call()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lift_rows")
}

func TestHandleDataReadIsRestricted(t *testing.T) {
	leak := deft.MustNew("leak", func(x *deft.Tensor) *deft.Tensor {
		_ = x.Data()
		return x
	})

	x, err := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)

	_, err = leak.Call(x)
	require.ErrorIs(t, err, deft.ErrRestrictedSyntax)
}

func TestAbortSurfacesCustomErrors(t *testing.T) {
	errBadScale := errors.New("scale must be positive")
	guarded := deft.MustNew("guarded_scale", func(x *deft.Tensor, k float64) *deft.Tensor {
		if k <= 0 {
			deft.Abort(errBadScale)
		}
		return x.Scale(k)
	})

	x, err := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)

	_, err = guarded.Call(x, -1.0)
	require.ErrorIs(t, err, errBadScale)

	out, err := guarded.Call1(x, 2.0)
	require.NoError(t, err)
	assert.Equal(t, []float32{2}, out.AsFloat32())
}

func TestModuleDefaultsApply(t *testing.T) {
	mod := deft.NewModule("signal",
		deft.WithCompiler("eval"),
		deft.WithCompilerOptions(map[string]string{"parallel": "off"}))

	energy := deft.MustNew("energy", func(x *deft.Tensor) *deft.Tensor {
		return x.Mul(x).Sum()
	}, deft.WithModule(mod))

	x, err := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2})
	require.NoError(t, err)

	out, err := energy.Call1(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{25}, out.AsFloat32())
	assert.Equal(t, []*deft.Def{energy}, mod.Defs())
}

func TestUnknownCompilerSurfaces(t *testing.T) {
	neg := deft.MustNew("neg_pub", func(x *deft.Tensor) *deft.Tensor { return x.Neg() })

	x, err := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)

	_, err = neg.CallWith(deft.CallConfig{Compiler: "missing"}, x)
	require.ErrorIs(t, err, deft.ErrUnknownCompiler)
}

func TestDefaultCompilerFallsBackToInterpreter(t *testing.T) {
	deft.SetDefaultCompiler("eval")
	t.Cleanup(func() { deft.SetDefaultCompiler("") })
	assert.Equal(t, "eval", deft.DefaultCompiler())
}
