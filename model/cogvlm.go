package model

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/nnctx"
)

// CogVLMMerger folds a 2x2 block of adjacent vision patch embeddings into a
// single token before handing off to an MLP projection into the language
// model's hidden size, the way a vision tower downsamples before entering a
// multimodal decoder.
type CogVLMMerger struct {
	Mlp Mlp
}

// Launch expects inputs = [x] where x is a sequence of vision patch
// embeddings whose length is a multiple of 4 (a 2x2 neighborhood flattened
// in row-major order).
func (m CogVLMMerger) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x := inputs[0]
	n := x.Meta().Shape[0]
	group := dim.Const(4)
	groups := n.DivU(4)

	tileArg := arg.Dict(map[string]arg.Arg{
		"axis": arg.Int(0),
		"tile": arg.Arr(arg.Dim(groups), arg.Dim(group)),
	})
	tiled, err := ctx.Call("tile", &tileArg, x)
	if err != nil {
		return nil, err
	}

	mergeArgs := arg.Dict(map[string]arg.Arg{
		"start": arg.Int(1),
		"len":   arg.Int(2),
	})
	merged, err := ctx.Call("merge", &mergeArgs, tiled[0])
	if err != nil {
		return nil, err
	}

	var out []nnctx.Handle
	ctx.Namespace("merger-mlp", func() { out, err = m.Mlp.Launch(ctx, []nnctx.Handle{merged[0]}) })
	return out, err
}
