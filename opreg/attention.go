package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/tensor"
)

// Attention computes scaled dot-product attention over [q, k, v], each of
// rank 2 with a shared batch/sequence axis n; their second axes (heads
// times dh) are not checked against each other. The output has q's shape.
// Arg is the head dimension dh as a Dim (unused for shape inference beyond
// its presence).
type Attention struct{}

func (Attention) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	if _, ok := a.AsDim(); !ok {
		return nil, ErrArg
	}
	if len(inputs) != 3 {
		return nil, ErrShape
	}
	q, k, v := inputs[0], inputs[1], inputs[2]
	qd, err := dims(q, 2)
	if err != nil {
		return nil, err
	}
	kd, err := dims(k, 2)
	if err != nil {
		return nil, err
	}
	vd, err := dims(v, 2)
	if err != nil {
		return nil, err
	}
	if !qd[0].Equal(kd[0]) || !kd[0].Equal(vd[0]) {
		return nil, ErrShapeMismatch
	}
	return []tensor.Meta{q.Clone()}, nil
}
