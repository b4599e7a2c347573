package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// Add is elementwise addition of two tensors of equal rank; axis sizes are
// unified pairwise (allowing symbolic axes on either side to agree via a
// deferred constraint rather than requiring literal equality).
type Add struct{}

func (Add) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 2 {
		return nil, ErrShape
	}
	x, y := inputs[0], inputs[1]
	if len(x.Shape) != len(y.Shape) {
		return nil, ErrShapeMismatch
	}
	out := make([]dim.Dim, len(x.Shape))
	for i := range x.Shape {
		d, ok := dim.MakeEq([]dim.Dim{x.Shape[i], y.Shape[i]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		out[i] = d
	}
	return []tensor.Meta{tensor.New(x.Dt, out...)}, nil
}

// Add4d is Add specialized to exactly rank 4, matching the op the source
// exposes separately for four-dimensional attention/conv intermediates.
type Add4d struct{}

func (Add4d) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 2 {
		return nil, ErrShape
	}
	x, y := inputs[0], inputs[1]
	xd, err := dims(x, 4)
	if err != nil {
		return nil, err
	}
	yd, err := dims(y, 4)
	if err != nil {
		return nil, err
	}
	out := make([]dim.Dim, 4)
	for i := 0; i < 4; i++ {
		d, ok := dim.MakeEq([]dim.Dim{xd[i], yd[i]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		out[i] = d
	}
	return []tensor.Meta{tensor.New(x.Dt, out...)}, nil
}

// ElementMul is Hadamard (elementwise) product of two equal-rank tensors.
type ElementMul struct{}

func (ElementMul) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 2 {
		return nil, ErrShape
	}
	x, y := inputs[0], inputs[1]
	if len(x.Shape) != len(y.Shape) {
		return nil, ErrShapeMismatch
	}
	out := make([]dim.Dim, len(x.Shape))
	for i := range x.Shape {
		d, ok := dim.MakeEq([]dim.Dim{x.Shape[i], y.Shape[i]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		out[i] = d
	}
	return []tensor.Meta{tensor.New(x.Dt, out...)}, nil
}
