package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// Embedding looks up rows of a weight table by token id, with an optional
// fused positional-embedding table added in. It takes no Arg.
type Embedding struct{}

func (Embedding) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a != nil {
		return nil, ErrArg
	}
	switch len(inputs) {
	case 2:
		wte, tokens := inputs[0], inputs[1]
		wd, err := dims(wte, 2)
		if err != nil {
			return nil, err
		}
		td, err := dims(tokens, 1)
		if err != nil {
			return nil, err
		}
		return []tensor.Meta{tensor.New(wte.Dt, td[0], wd[1])}, nil
	case 4:
		wte, tokens, wpe, pos := inputs[0], inputs[1], inputs[2], inputs[3]
		wd, err := dims(wte, 2)
		if err != nil {
			return nil, err
		}
		td, err := dims(tokens, 1)
		if err != nil {
			return nil, err
		}
		wpd, err := dims(wpe, 2)
		if err != nil {
			return nil, err
		}
		pd, err := dims(pos, 1)
		if err != nil {
			return nil, err
		}
		d, ok := dim.MakeEq([]dim.Dim{wd[1], wpd[1]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		n, ok := dim.MakeEq([]dim.Dim{td[0], pd[0]})
		if !ok {
			return nil, ErrShapeMismatch
		}
		return []tensor.Meta{tensor.New(wte.Dt, n, d)}, nil
	default:
		return nil, ErrShape
	}
}
