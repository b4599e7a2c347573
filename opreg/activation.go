package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// SwiGLU combines a gate and an up projection: silu(gate) * up, both
// rank-2 and the same shape.
type SwiGLU struct{}

func (SwiGLU) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 2 {
		return nil, ErrShape
	}
	gate, up := inputs[0], inputs[1]
	gd, err := dims(gate, 2)
	if err != nil {
		return nil, err
	}
	ud, err := dims(up, 2)
	if err != nil {
		return nil, err
	}
	n, ok := dim.MakeEq([]dim.Dim{gd[0], ud[0]})
	if !ok {
		return nil, ErrShapeMismatch
	}
	d, ok := dim.MakeEq([]dim.Dim{gd[1], ud[1]})
	if !ok {
		return nil, ErrShapeMismatch
	}
	return []tensor.Meta{tensor.New(gate.Dt, n, d)}, nil
}

// SiLU is x * sigmoid(x), shape-preserving on a rank-2 input.
type SiLU struct{}

func (SiLU) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 1 {
		return nil, ErrShape
	}
	if _, err := dims(inputs[0], 2); err != nil {
		return nil, err
	}
	return []tensor.Meta{inputs[0].Clone()}, nil
}

// GeLU is shape-preserving on a rank-2 input.
type GeLU struct{}

func (GeLU) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 1 {
		return nil, ErrShape
	}
	if _, err := dims(inputs[0], 2); err != nil {
		return nil, err
	}
	return []tensor.Meta{inputs[0].Clone()}, nil
}
