package execpb

import (
	"testing"

	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/digit"
	"github.com/nnvm-go/nnvm/exec"
	"github.com/nnvm-go/nnvm/lower"
	"github.com/nnvm-go/nnvm/nnctx"
	"github.com/nnvm-go/nnvm/plan"
	"github.com/nnvm-go/nnvm/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalArgScalarKinds(t *testing.T) {
	cases := []arg.Arg{
		arg.Bool(true),
		arg.Bool(false),
		arg.Int(42),
		arg.Float(-1.5e-5),
		arg.Str("rms-norm"),
		arg.Dim(dim.Const(8)),
	}
	for _, in := range cases {
		b, err := marshalArg(in)
		require.NoError(t, err)
		out, err := unmarshalArg(b)
		require.NoError(t, err)
		assert.Equal(t, in.Kind(), out.Kind())
		switch in.Kind() {
		case arg.KindBool:
			iv, _ := in.AsBool()
			ov, _ := out.AsBool()
			assert.Equal(t, iv, ov)
		case arg.KindInt:
			iv, _ := in.AsInt()
			ov, _ := out.AsInt()
			assert.Equal(t, iv, ov)
		case arg.KindFloat:
			iv, _ := in.AsFloat()
			ov, _ := out.AsFloat()
			assert.Equal(t, iv, ov)
		case arg.KindStr:
			iv, _ := in.AsStr()
			ov, _ := out.AsStr()
			assert.Equal(t, iv, ov)
		case arg.KindDim:
			assert.Equal(t, in.ToUsize(), out.ToUsize())
		}
	}
}

func TestMarshalArgRejectsNonConstantDim(t *testing.T) {
	_, err := marshalArg(arg.Dim(dim.Var("n")))
	assert.Error(t, err)
}

func TestMarshalUnmarshalArgArrAndDict(t *testing.T) {
	in := arg.Dict(map[string]arg.Arg{
		"axis":  arg.Int(1),
		"parts": arg.Arr(arg.Dim(dim.Const(4)), arg.Dim(dim.Const(4))),
	})
	b, err := marshalArg(in)
	require.NoError(t, err)
	out, err := unmarshalArg(b)
	require.NoError(t, err)

	d, ok := out.AsDict()
	require.True(t, ok)
	axis, ok := d["axis"].AsInt()
	require.True(t, ok)
	assert.Equal(t, uint64(1), axis)

	parts, ok := d["parts"].AsArr()
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, uint64(4), parts[0].ToUsize())
	assert.Equal(t, uint64(4), parts[1].ToUsize())
}

// TestMarshalUnmarshalPlanRoundTrip drives a tiny embed -> rms-norm plan
// through the full compile pipeline, then checks that wire-encoding and
// decoding it reproduces every field Materialize resolved.
func TestMarshalUnmarshalPlanRoundTrip(t *testing.T) {
	ctx := nnctx.New()
	d := dim.Const(8)
	wte := ctx.LoadExternal("wte", tensor.New(digit.F32, dim.Const(100), d))
	scale := ctx.LoadExternal("norm.scale", tensor.New(digit.F32, d))
	n := dim.Var("n")
	tokens := ctx.Input("tokens", tensor.New(digit.U32, n))

	embedded, err := ctx.Call("embedding", nil, wte, tokens)
	require.NoError(t, err)
	eps := arg.Float(1e-5)
	normed, err := ctx.Call("rms-norm", &eps, embedded[0], scale)
	require.NoError(t, err)
	logical, err := ctx.Finish(normed[0])
	require.NoError(t, err)

	g, err := lower.Substitute(logical, map[string]uint64{"n": 3})
	require.NoError(t, err)
	result := plan.Compile(exec.LifetimeSpec(g), plan.WithAlignment(64))
	want, err := exec.Materialize(g, result)
	require.NoError(t, err)

	wire, err := MarshalPlan(want)
	require.NoError(t, err)
	require.NotEmpty(t, wire)

	got, err := UnmarshalPlan(wire)
	require.NoError(t, err)

	assert.Equal(t, want.WorkspaceSize, got.WorkspaceSize)
	require.Len(t, got.Steps, len(want.Steps))
	for i := range want.Steps {
		ws, gs := want.Steps[i], got.Steps[i]
		assert.Equal(t, ws.Name, gs.Name)
		assert.Equal(t, ws.Op, gs.Op)
		require.Len(t, gs.Inputs, len(ws.Inputs))
		for j := range ws.Inputs {
			wt, gt := ws.Inputs[j], gs.Inputs[j]
			assert.Equal(t, wt.Name, gt.Name)
			assert.Equal(t, wt.External, gt.External)
			assert.Equal(t, wt.Range, gt.Range)
			assert.Equal(t, wt.Layout.Shape, gt.Layout.Shape)
			assert.Equal(t, wt.Dt.NBytes(), gt.Dt.NBytes())
			assert.Equal(t, wt.Dt.GroupSize(), gt.Dt.GroupSize())
		}
	}

	normStep := got.Steps[1]
	require.NotNil(t, normStep.Arg)
	gotEps, ok := normStep.Arg.AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 1e-5, gotEps, 1e-12)
}
