package model

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/nnctx"
)

// Linear is x @ w^T (+ b), with an optional residual input added to the
// projection's output — grouping "plain projection" and "projection with a skip
// connection" under one module, matching the fused op the registry exposes.
type Linear struct {
	Weight nnctx.Handle
	Bias   *nnctx.Handle
}

// Launch expects inputs = [x] or [x, residual].
func (l Linear) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	residual := len(inputs) == 2
	a := arg.Bool(residual)

	if !residual {
		if l.Bias == nil {
			return ctx.Call("linear", &a, inputs[0], l.Weight)
		}
		return ctx.Call("linear", &a, inputs[0], l.Weight, *l.Bias)
	}

	x, res := inputs[0], inputs[1]
	if l.Bias == nil {
		return ctx.Call("linear", &a, x, res, l.Weight)
	}
	return ctx.Call("linear", &a, x, res, l.Weight, *l.Bias)
}
