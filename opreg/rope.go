package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// Rope applies rotary position embedding given precomputed sin/cos tables
// indexed by position: inputs are [x: (n, d), pos: (n), sin: (ctx, dh/2),
// cos: (ctx, dh/2)]. Output matches x's shape.
type Rope struct{}

func (Rope) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 4 {
		return nil, ErrShape
	}
	x, pos, sin, cos := inputs[0], inputs[1], inputs[2], inputs[3]
	xd, err := dims(x, 2)
	if err != nil {
		return nil, err
	}
	posd, err := dims(pos, 1)
	if err != nil {
		return nil, err
	}
	sind, err := dims(sin, 2)
	if err != nil {
		return nil, err
	}
	cosd, err := dims(cos, 2)
	if err != nil {
		return nil, err
	}
	if !xd[0].Equal(posd[0]) {
		return nil, ErrShapeMismatch
	}
	if !sind[0].Equal(cosd[0]) {
		return nil, ErrShapeMismatch
	}
	if !sind[1].Equal(cosd[1]) {
		return nil, ErrShapeMismatch
	}
	return []tensor.Meta{x.Clone()}, nil
}

// Mrope is Rope generalized to a multi-section position id (used for
// interleaved text/vision position encoding): pos carries an extra axis of
// per-section ids instead of a single scalar per token.
type Mrope struct{}

func (Mrope) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	if len(inputs) != 4 {
		return nil, ErrShape
	}
	x, pos, sin, cos := inputs[0], inputs[1], inputs[2], inputs[3]
	xd, err := dims(x, 2)
	if err != nil {
		return nil, err
	}
	posd, err := dims(pos, 2)
	if err != nil {
		return nil, err
	}
	sind, err := dims(sin, 2)
	if err != nil {
		return nil, err
	}
	cosd, err := dims(cos, 2)
	if err != nil {
		return nil, err
	}
	if !sind[0].Equal(cosd[0]) {
		return nil, ErrShapeMismatch
	}
	if !sind[1].Equal(cosd[1]) {
		return nil, ErrShapeMismatch
	}
	n, ok := dim.MakeEq([]dim.Dim{xd[0], posd[0]})
	if !ok {
		return nil, ErrShapeMismatch
	}
	return []tensor.Meta{tensor.New(x.Dt, n, xd[1])}, nil
}
