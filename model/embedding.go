package model

import (
	"github.com/nnvm-go/nnvm/nnctx"
)

// Embedding looks token ids up in a weight table, with an optional fused
// learned positional table. Wpe is nil when the model has no positional
// embedding (e.g. rotary-only architectures).
type Embedding struct {
	Wte nnctx.Handle
	Wpe *nnctx.Handle
}

// Launch expects inputs = [tokens] (Wpe unset) or [tokens, pos] (Wpe set).
func (e Embedding) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	tokens := inputs[0]
	if e.Wpe == nil {
		return ctx.Call("embedding", nil, e.Wte, tokens)
	}
	pos := inputs[1]
	return ctx.Call("embedding", nil, e.Wte, tokens, *e.Wpe, pos)
}
