package model

import "github.com/nnvm-go/nnvm/nnctx"

// TransformerBlk is one pre-norm transformer layer: attention over a
// residual stream, then a SwiGLU MLP over a second residual stream.
type TransformerBlk struct {
	AttnNorm Normalization
	Attn     Attention
	FfnNorm  Normalization
	Ffn      Mlp
}

// Launch expects inputs = [x, pos].
func (b TransformerBlk) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x, pos := inputs[0], inputs[1]
	residual := x

	var err error
	var normed []nnctx.Handle
	ctx.Namespace("attn-norm", func() { normed, err = b.AttnNorm.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}

	var attnOut []nnctx.Handle
	ctx.Namespace("attn", func() { attnOut, err = b.Attn.Launch(ctx, []nnctx.Handle{normed[0], pos, residual}) })
	if err != nil {
		return nil, err
	}

	residual = attnOut[0]
	var ffnNormed []nnctx.Handle
	ctx.Namespace("ffn-norm", func() { ffnNormed, err = b.FfnNorm.Launch(ctx, []nnctx.Handle{attnOut[0]}) })
	if err != nil {
		return nil, err
	}

	var out []nnctx.Handle
	ctx.Namespace("ffn", func() { out, err = b.Ffn.Launch(ctx, []nnctx.Handle{ffnNormed[0]}) })
	if err != nil {
		return nil, err
	}
	return ctx.Call("add", nil, out[0], residual)
}
