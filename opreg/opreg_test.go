package opreg

import (
	"testing"

	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/digit"
	"github.com/nnvm-go/nnvm/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKnowsEveryCanonicalOperator(t *testing.T) {
	r := NewRegistry()
	names := []string{
		"embedding", "rms-norm", "layer-norm", "linear", "add", "add4d",
		"element-mul", "swiglu", "silu", "gelu", "split", "tile", "transpose",
		"concat", "merge", "conv", "mamba-causal-conv1d", "mamba-selective-scan",
		"attention", "rope", "mrope", "all-reduce",
	}
	for _, name := range names {
		_, err := r.Get(name)
		require.NoError(t, err, name)
	}
}

func TestRegistryGetUnknownOperator(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nonexistent")
	require.ErrorIs(t, err, ErrNotExist)
}

func TestEmbeddingTwoInputs(t *testing.T) {
	n, d := dim.Var("n"), dim.Var("d")
	wte := tensor.New(digit.F32, dim.Var("v"), d)
	tokens := tensor.New(digit.U32, n)

	out, err := Embedding{}.Infer([]tensor.Meta{wte, tokens}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Shape[0].Equal(n))
	assert.True(t, out[0].Shape[1].Equal(d))
}

func TestLinearNoResidualNoBias(t *testing.T) {
	m, k, n := dim.Var("m"), dim.Var("k"), dim.Var("n")
	x := tensor.New(digit.F32, m, k)
	w := tensor.New(digit.F32, n, k)

	residual := arg.Bool(false)
	out, err := Linear{}.Infer([]tensor.Meta{x, w}, &residual)
	require.NoError(t, err)
	assert.True(t, out[0].Shape[0].Equal(m))
	assert.True(t, out[0].Shape[1].Equal(n))
}

func TestLinearRejectsMismatchedContraction(t *testing.T) {
	x := tensor.New(digit.F32, dim.Const(4), dim.Const(8))
	w := tensor.New(digit.F32, dim.Const(16), dim.Const(9))
	residual := arg.Bool(false)
	_, err := Linear{}.Infer([]tensor.Meta{x, w}, &residual)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSplitEvenly(t *testing.T) {
	x := tensor.New(digit.F32, dim.Const(2), dim.Const(12))
	a := arg.Dict(map[string]arg.Arg{
		"axis":  arg.Int(1),
		"parts": arg.Arr(arg.Dim(dim.Const(1)), arg.Dim(dim.Const(2)), arg.Dim(dim.Const(1))),
	})
	out, err := Split{}.Infer([]tensor.Meta{x}, &a)
	require.NoError(t, err)
	require.Len(t, out, 3)
	v0, _ := out[0].Shape[1].ToUsize()
	v1, _ := out[1].Shape[1].ToUsize()
	v2, _ := out[2].Shape[1].ToUsize()
	assert.Equal(t, uint64(3), v0)
	assert.Equal(t, uint64(6), v1)
	assert.Equal(t, uint64(3), v2)
}

func TestSplitRejectsNonDivisor(t *testing.T) {
	x := tensor.New(digit.F32, dim.Const(2), dim.Const(10))
	a := arg.Dict(map[string]arg.Arg{
		"axis":  arg.Int(1),
		"parts": arg.Arr(arg.Dim(dim.Const(1)), arg.Dim(dim.Const(2)), arg.Dim(dim.Const(1))),
	})
	_, err := Split{}.Infer([]tensor.Meta{x}, &a)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestConcatSumsAxisAndUnifiesRest(t *testing.T) {
	n := dim.Var("n")
	a := tensor.New(digit.F32, n, dim.Const(3))
	b := tensor.New(digit.F32, n, dim.Const(5))
	axis := arg.Int(1)
	out, err := Concat{}.Infer([]tensor.Meta{a, b}, &axis)
	require.NoError(t, err)
	v, _ := out[0].Shape[1].ToUsize()
	assert.Equal(t, uint64(8), v)
}

func TestTransposePermutesShape(t *testing.T) {
	a1, d1 := dim.Const(2), dim.Const(3)
	x := tensor.New(digit.F32, a1, d1)
	permArg := arg.Dict(map[string]arg.Arg{
		"perm": arg.Arr(arg.Int(1), arg.Int(0)),
	})
	out, err := Transpose{}.Infer([]tensor.Meta{x}, &permArg)
	require.NoError(t, err)
	v0, _ := out[0].Shape[0].ToUsize()
	v1, _ := out[0].Shape[1].ToUsize()
	assert.Equal(t, uint64(3), v0)
	assert.Equal(t, uint64(2), v1)
}

func TestSwiGLUUnifiesGateAndUp(t *testing.T) {
	n, d := dim.Var("n"), dim.Var("d")
	gate := tensor.New(digit.F32, n, d)
	up := tensor.New(digit.F32, n, d)
	out, err := SwiGLU{}.Infer([]tensor.Meta{gate, up}, nil)
	require.NoError(t, err)
	assert.True(t, out[0].Shape[0].Equal(n))
}

func TestAllReduceRequiresOpArg(t *testing.T) {
	x := tensor.New(digit.F32, dim.Const(4))
	_, err := AllReduce{}.Infer([]tensor.Meta{x}, nil)
	require.ErrorIs(t, err, ErrArg)

	op := arg.Str("sum")
	out, err := AllReduce{}.Infer([]tensor.Meta{x}, &op)
	require.NoError(t, err)
	assert.Len(t, out[0].Shape, 1)
}
