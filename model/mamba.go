package model

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/nnctx"
)

// MambaBlk is one Mamba state-space layer: an input projection splits into
// the conv/scan branch and a gate branch, a depthwise causal convolution
// and SiLU precede the selective scan, and the gated result goes through an
// output projection that absorbs the block's residual.
type MambaBlk struct {
	Norm      Normalization
	InProj    Linear
	ConvW     nnctx.Handle
	ConvB     nnctx.Handle
	DeltaProj Linear
	BProj     Linear
	CProj     Linear
	A         nnctx.Handle
	D         nnctx.Handle
	OutProj   Linear
}

// Launch expects inputs = [x].
func (m MambaBlk) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x := inputs[0]
	residual := x

	var err error
	var normed []nnctx.Handle
	ctx.Namespace("norm", func() { normed, err = m.Norm.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}

	var proj []nnctx.Handle
	ctx.Namespace("in-proj", func() { proj, err = m.InProj.Launch(ctx, []nnctx.Handle{normed[0]}) })
	if err != nil {
		return nil, err
	}

	half := arg.Dict(map[string]arg.Arg{
		"axis":  arg.Int(1),
		"parts": arg.Arr(arg.Dim(dim.Const(1)), arg.Dim(dim.Const(1))),
	})
	halves, err := ctx.Call("split", &half, proj[0])
	if err != nil {
		return nil, err
	}
	xb, gate := halves[0], halves[1]

	convArgs := arg.Arr(arg.Dim(dim.Const(1)))
	conv, err := ctx.Call("mamba-causal-conv1d", &convArgs, xb, m.ConvW, m.ConvB)
	if err != nil {
		return nil, err
	}
	activated, err := ctx.Call("silu", nil, conv[0])
	if err != nil {
		return nil, err
	}

	var delta, bOut, cOut []nnctx.Handle
	ctx.Namespace("delta-proj", func() { delta, err = m.DeltaProj.Launch(ctx, []nnctx.Handle{activated[0]}) })
	if err != nil {
		return nil, err
	}
	ctx.Namespace("b-proj", func() { bOut, err = m.BProj.Launch(ctx, []nnctx.Handle{activated[0]}) })
	if err != nil {
		return nil, err
	}
	ctx.Namespace("c-proj", func() { cOut, err = m.CProj.Launch(ctx, []nnctx.Handle{activated[0]}) })
	if err != nil {
		return nil, err
	}

	scanned, err := ctx.Call("mamba-selective-scan", nil, activated[0], delta[0], m.A, bOut[0], cOut[0], m.D)
	if err != nil {
		return nil, err
	}

	gated, err := ctx.Call("element-mul", nil, scanned[0], gate)
	if err != nil {
		return nil, err
	}

	var out []nnctx.Handle
	ctx.Namespace("out-proj", func() { out, err = m.OutProj.Launch(ctx, []nnctx.Handle{gated[0], residual}) })
	return out, err
}
