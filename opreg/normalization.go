package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// RmsNorm normalizes the last axis of a rank-2 or rank-3 input by a
// per-channel scale. Its Arg carries epsilon (a float, otherwise unused by
// shape inference beyond requiring an Arg be present at all).
type RmsNorm struct{}

func (RmsNorm) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	if len(inputs) != 2 {
		return nil, ErrShape
	}
	x, scale := inputs[0], inputs[1]

	var xLast dim.Dim
	switch len(x.Shape) {
	case 2:
		xLast = x.Shape[1]
	case 3:
		xLast = x.Shape[2]
	default:
		return nil, ErrShape
	}
	sd, err := dims(scale, 1)
	if err != nil {
		return nil, err
	}
	if _, ok := dim.MakeEq([]dim.Dim{xLast, sd[0]}); !ok {
		return nil, ErrShapeMismatch
	}
	return []tensor.Meta{tensor.New(x.Dt, x.Shape...)}, nil
}

// LayerNorm normalizes a rank-2 input's last axis by a scale and bias.
type LayerNorm struct{}

func (LayerNorm) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	if len(inputs) != 3 {
		return nil, ErrShape
	}
	x, scale, bias := inputs[0], inputs[1], inputs[2]
	xd, err := dims(x, 2)
	if err != nil {
		return nil, err
	}
	sd, err := dims(scale, 1)
	if err != nil {
		return nil, err
	}
	bd, err := dims(bias, 1)
	if err != nil {
		return nil, err
	}
	d, ok := dim.MakeEq([]dim.Dim{xd[1], sd[0], bd[0]})
	if !ok {
		return nil, ErrShapeMismatch
	}
	return []tensor.Meta{tensor.New(x.Dt, xd[0], d)}, nil
}
