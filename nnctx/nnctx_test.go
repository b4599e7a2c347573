package nnctx

import (
	"testing"

	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/digit"
	"github.com/nnvm-go/nnvm/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingThenRmsNormGraph(t *testing.T) {
	c := New()
	n, d, v := dim.Var("n"), dim.Const(16), dim.Var("v")

	// All global inputs (weights and runtime inputs alike) are declared
	// before the first Call, per AddGlobalInput's ordering precondition.
	wte := c.LoadExternal("wte", tensor.New(digit.F32, v, d))
	tokens := c.Input("tokens", tensor.New(digit.U32, n))
	scale := c.LoadExternal("norm.scale", tensor.New(digit.F32, d))

	embedOut, err := c.Call("embedding", nil, wte, tokens)
	require.NoError(t, err)
	require.Len(t, embedOut, 1)

	eps := arg.Float(1e-5)
	normOut, err := c.Call("rms-norm", &eps, embedOut[0], scale)
	require.NoError(t, err)

	g, err := c.Finish(normOut[0])
	require.NoError(t, err)
	assert.Equal(t, 3, g.Topo.NGlobalInputs, "wte, tokens, and norm.scale are all global inputs")
	assert.Len(t, g.Nodes, 2, "embedding and rms-norm each add one node")
}

// TestLoadExternalAfterCallPanics guards AddGlobalInput's ordering
// precondition: a weight declared after the graph already has a node would
// no longer land in the leading block of global-input edges.
func TestLoadExternalAfterCallPanics(t *testing.T) {
	c := New()
	x := c.Input("x", tensor.New(digit.F32, dim.Const(2), dim.Const(4)))
	_, err := c.Call("silu", nil, x)
	require.NoError(t, err)

	assert.Panics(t, func() {
		c.LoadExternal("late-weight", tensor.New(digit.F32, dim.Const(4)))
	})
}

func TestNamespaceUniquifiesRepeatedCalls(t *testing.T) {
	c := New()
	d := dim.Const(8)
	x1 := c.Input("x", tensor.New(digit.F32, dim.Const(2), d))

	var h1, h2 []Handle
	var err error
	c.Namespace("blk", func() {
		h1, err = c.Call("silu", nil, x1)
	})
	require.NoError(t, err)
	c.Namespace("blk", func() {
		h2, err = c.Call("silu", nil, x1)
	})
	require.NoError(t, err)

	assert.NotEqual(t, h1[0].Name(), h2[0].Name())
	assert.Equal(t, "blk.silu", h1[0].Name())
	assert.Equal(t, "blk-2.silu", h2[0].Name())
}

func TestCallWrapsShapeInferenceError(t *testing.T) {
	c := New()
	x := c.Input("x", tensor.New(digit.F32, dim.Const(4), dim.Const(8)))
	y := c.Input("y", tensor.New(digit.F32, dim.Const(4), dim.Const(9)))

	residual := arg.Bool(false)
	_, err := c.Call("linear", &residual, x, y)
	require.Error(t, err)
}
