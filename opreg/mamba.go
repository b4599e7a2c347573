package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// CausalConv1d is Mamba's depthwise causal convolution over the sequence
// axis: inputs are [x: (l, d_in), w: (d_in, k), b: (d_in)]. Arg carries the
// kernel's static padding/dilation as an Arr, unused by shape inference
// beyond requiring its presence.
type CausalConv1d struct{}

func (CausalConv1d) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	if _, ok := a.AsArr(); !ok {
		return nil, ErrArg
	}
	if len(inputs) != 3 {
		return nil, ErrShape
	}
	x, w, b := inputs[0], inputs[1], inputs[2]
	xd, err := dims(x, 2)
	if err != nil {
		return nil, err
	}
	wd, err := dims(w, 2)
	if err != nil {
		return nil, err
	}
	bd, err := dims(b, 1)
	if err != nil {
		return nil, err
	}
	if _, ok := dim.MakeEq([]dim.Dim{xd[1], wd[0]}); !ok {
		return nil, ErrShapeMismatch
	}
	if _, ok := dim.MakeEq([]dim.Dim{xd[1], bd[0]}); !ok {
		return nil, ErrShapeMismatch
	}
	return []tensor.Meta{tensor.New(x.Dt, xd[0], xd[1])}, nil
}

// SelectiveScan is Mamba's selective state-space recurrence. Inputs are
// [x: (l, d_in), delta: (l, d_in), a: (d_in, d_state), b: (l, d_state),
// c: (l, d_state), d: (d_in)]; output matches x's shape.
type SelectiveScan struct{}

func (SelectiveScan) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 6 {
		return nil, ErrShape
	}
	x, delta, av, bv, cv, dv := inputs[0], inputs[1], inputs[2], inputs[3], inputs[4], inputs[5]

	xd, err := dims(x, 2)
	if err != nil {
		return nil, err
	}
	deltad, err := dims(delta, 2)
	if err != nil {
		return nil, err
	}
	ad, err := dims(av, 2)
	if err != nil {
		return nil, err
	}
	bd, err := dims(bv, 2)
	if err != nil {
		return nil, err
	}
	cd, err := dims(cv, 2)
	if err != nil {
		return nil, err
	}
	dd, err := dims(dv, 1)
	if err != nil {
		return nil, err
	}

	checks := [][2]dim.Dim{
		{xd[1], deltad[1]}, {xd[1], ad[0]}, {xd[1], dd[0]},
		{xd[0], deltad[0]}, {xd[0], bd[0]}, {xd[0], cd[0]},
		{ad[1], bd[1]}, {ad[1], cd[1]},
	}
	for _, pair := range checks {
		if _, ok := dim.MakeEq(pair[:]); !ok {
			return nil, ErrShapeMismatch
		}
	}
	return []tensor.Meta{tensor.New(x.Dt, xd[0], xd[1])}, nil
}
