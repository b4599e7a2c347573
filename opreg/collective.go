package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/tensor"
)

// AllReduce is a tensor-parallel collective reduction: shape-preserving,
// parameterized by a reduction op name ("sum", "max", ...) carried as a
// string Arg that shape inference does not interpret.
type AllReduce struct{}

func (AllReduce) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	if _, ok := a.AsStr(); !ok {
		return nil, ErrArg
	}
	if len(inputs) != 1 {
		return nil, ErrShape
	}
	return []tensor.Meta{inputs[0].Clone()}, nil
}
