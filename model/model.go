// Package model is the declarative model tree: types whose Launch method
// drives a *nnctx.Context to build a logical graph, without ever touching
// element data itself. A model is reusable across launches (it is pure
// configuration plus weight handles); each Launch call produces one fresh
// subtree of the graph under construction.
package model

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/nnctx"
)

// Module is any declarative model node: Launch runs it against ctx, given
// its inputs, and returns its outputs. A parent module wraps each
// sub-module's Launch in ctx.Namespace so repeated instantiation (e.g. one
// TransformerBlk per layer) gets distinct, uniquified names automatically.
type Module interface {
	Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error)
}

// call1 is a tiny convenience wrapper around ctx.Call for the common
// single-output case, used throughout this package's modules.
func call1(ctx *nnctx.Context, op string, a *arg.Arg, inputs ...nnctx.Handle) (nnctx.Handle, error) {
	out, err := ctx.Call(op, a, inputs...)
	if err != nil {
		return nnctx.Handle{}, err
	}
	return out[0], nil
}
