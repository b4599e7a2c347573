package model

import (
	"fmt"

	"github.com/nnvm-go/nnvm/nnctx"
)

// LLaMA is the canonical decoder-only transformer: token embedding, a stack
// of TransformerBlk layers, a final norm, and an LM head projection — after
// gathering only the output positions the caller actually wants logits for.
type LLaMA struct {
	Embedding Embedding
	Blocks    []TransformerBlk
	OutNorm   Normalization
	LMHead    Linear
}

// Launch expects inputs = [tokens, pos, outIdx].
func (l LLaMA) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	tokens, pos, outIdx := inputs[0], inputs[1], inputs[2]

	var err error
	var embedded []nnctx.Handle
	ctx.Namespace("embedding", func() { embedded, err = l.Embedding.Launch(ctx, []nnctx.Handle{tokens}) })
	if err != nil {
		return nil, err
	}
	x := embedded[0]

	for i, blk := range l.Blocks {
		var out []nnctx.Handle
		ctx.Namespace(fmt.Sprintf("blk%d", i), func() {
			out, err = blk.Launch(ctx, []nnctx.Handle{x, pos})
		})
		if err != nil {
			return nil, err
		}
		x = out[0]
	}

	gathered, err := ctx.Call("embedding", nil, x, outIdx)
	if err != nil {
		return nil, fmt.Errorf("model: out-gather: %w", err)
	}
	x = gathered[0]

	var normed []nnctx.Handle
	ctx.Namespace("out-norm", func() { normed, err = l.OutNorm.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}

	var logits []nnctx.Handle
	ctx.Namespace("lm-head", func() { logits, err = l.LMHead.Launch(ctx, []nnctx.Handle{normed[0]}) })
	return logits, err
}
