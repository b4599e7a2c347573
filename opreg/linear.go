package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// Linear computes x @ w^T (+ b) (+ residual). Its Arg is a bool: whether a
// residual input is present. With residual=false it accepts [x, w] or
// [x, w, b]; with residual=true, [x, residual, w] or [x, residual, w, b].
type Linear struct{}

func (Linear) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	residual, ok := a.AsBool()
	if !ok {
		return nil, ErrArg
	}

	if !residual {
		switch len(inputs) {
		case 2:
			x, w := inputs[0], inputs[1]
			xd, err := dims(x, 2)
			if err != nil {
				return nil, err
			}
			wd, err := dims(w, 2)
			if err != nil {
				return nil, err
			}
			if !xd[1].Equal(wd[1]) {
				return nil, ErrShapeMismatch
			}
			return []tensor.Meta{tensor.New(x.Dt, xd[0], wd[0])}, nil
		case 3:
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
			if !xd[1].Equal(wd[1]) {
				return nil, ErrShapeMismatch
			}
			n, ok := dim.MakeEq([]dim.Dim{wd[0], bd[0]})
			if !ok {
				return nil, ErrShapeMismatch
			}
			return []tensor.Meta{tensor.New(x.Dt, xd[0], n)}, nil
		default:
			return nil, ErrShape
		}
	}

	switch len(inputs) {
	case 3:
		x, res, w := inputs[0], inputs[1], inputs[2]
		xd, err := dims(x, 2)
		if err != nil {
			return nil, err
		}
		wd, err := dims(w, 2)
		if err != nil {
			return nil, err
		}
		rd, err := dims(res, 2)
		if err != nil {
			return nil, err
		}
		if !xd[1].Equal(wd[1]) {
			return nil, ErrShapeMismatch
		}
		m, ok := dim.MakeEq([]dim.Dim{rd[0], xd[0]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		n, ok := dim.MakeEq([]dim.Dim{rd[1], wd[0]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		return []tensor.Meta{tensor.New(x.Dt, m, n)}, nil
	case 4:
		x, res, w, b := inputs[0], inputs[1], inputs[2], inputs[3]
		xd, err := dims(x, 2)
		if err != nil {
			return nil, err
		}
		wd, err := dims(w, 2)
		if err != nil {
			return nil, err
		}
		if _, err := dims(b, 1); err != nil {
			return nil, err
		}
		rd, err := dims(res, 2)
		if err != nil {
			return nil, err
		}
		if !xd[1].Equal(wd[1]) {
			return nil, ErrShapeMismatch
		}
		m, ok := dim.MakeEq([]dim.Dim{rd[0], xd[0]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		n, ok := dim.MakeEq([]dim.Dim{rd[1], wd[0]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		return []tensor.Meta{tensor.New(x.Dt, m, n)}, nil
	default:
		return nil, ErrShape
	}
}
