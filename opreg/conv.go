package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// Conv is a 2-D "valid" convolution over an NCHW input with an MCHkWk
// kernel, output size height/width divided (exactly) by the kernel's.
// Arg is a bool: whether a per-output-channel bias is present.
type Conv struct{}

func (Conv) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	bias, ok := a.AsBool()
	if !ok {
		return nil, ErrArg
	}

	if !bias {
		if len(inputs) != 2 {
			return nil, ErrShape
		}
		x, w := inputs[0], inputs[1]
		xd, err := dims(x, 4)
		if err != nil {
			return nil, err
		}
		wd, err := dims(w, 4)
		if err != nil {
			return nil, err
		}
		if !xd[1].Equal(wd[1]) {
			return nil, ErrShapeMismatch
		}
		hy, ok := safeDiv(xd[2], wd[2])
		if !ok {
			return nil, ErrShapeMismatch
		}
		wy, ok := safeDiv(xd[3], wd[3])
		if !ok {
			return nil, ErrShapeMismatch
		}
		return []tensor.Meta{tensor.New(x.Dt, xd[0], wd[0], hy, wy)}, nil
	}

	if len(inputs) != 3 {
		return nil, ErrShape
	}
	x, w, b := inputs[0], inputs[1], inputs[2]
	xd, err := dims(x, 4)
	if err != nil {
		return nil, err
	}
	wd, err := dims(w, 4)
	if err != nil {
		return nil, err
	}
	bd, err := dims(b, 1)
	if err != nil {
		return nil, err
	}
	if !xd[1].Equal(wd[1]) {
		return nil, ErrShapeMismatch
	}
	m, ok := dim.MakeEq([]dim.Dim{wd[0], bd[0]})
	if !ok {
		return nil, ErrShapeMismatch
	}
	hy, ok := safeDiv(xd[2], wd[2])
	if !ok {
		return nil, ErrShapeMismatch
	}
	wy, ok := safeDiv(xd[3], wd[3])
	if !ok {
		return nil, ErrShapeMismatch
	}
	return []tensor.Meta{tensor.New(x.Dt, xd[0], m, hy, wy)}, nil
}
