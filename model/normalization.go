package model

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/nnctx"
)

// NormKind selects which normalization op a Normalization module calls.
type NormKind int

const (
	RmsNorm NormKind = iota
	LayerNorm
)

// Normalization wraps either rms-norm (Scale only) or layer-norm (Scale and
// Bias), selected by Kind.
type Normalization struct {
	Kind    NormKind
	Scale   nnctx.Handle
	Bias    nnctx.Handle
	Epsilon float64
}

// Launch expects inputs = [x].
func (n Normalization) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x := inputs[0]
	eps := arg.Float(n.Epsilon)
	switch n.Kind {
	case RmsNorm:
		return ctx.Call("rms-norm", &eps, x, n.Scale)
	case LayerNorm:
		return ctx.Call("layer-norm", &eps, x, n.Scale, n.Bias)
	default:
		panic("model: unknown NormKind")
	}
}
