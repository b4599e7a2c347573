package model

import "github.com/nnvm-go/nnvm/nnctx"

// ActKind selects which activation op an Activation module calls.
type ActKind int

const (
	SiLU ActKind = iota
	GeLU
	SwiGLU
)

// Activation wraps a pointwise or gated activation. SwiGLU expects two
// inputs (gate, up); SiLU and GeLU expect one.
type Activation struct {
	Kind ActKind
}

func (a Activation) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	switch a.Kind {
	case SiLU:
		return ctx.Call("silu", nil, inputs[0])
	case GeLU:
		return ctx.Call("gelu", nil, inputs[0])
	case SwiGLU:
		return ctx.Call("swiglu", nil, inputs[0], inputs[1])
	default:
		panic("model: unknown ActKind")
	}
}
