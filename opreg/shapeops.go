package opreg

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// safeDiv divides two Dims, converting the exact-division panic dim.Div can
// raise into (zero, false). Split sizes come from a model's own arguments,
// not from this package's callers, so an inexact division here is a
// malformed-model condition to report, not a programmer error to crash on.
func safeDiv(a, b dim.Dim) (result dim.Dim, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return a.Div(b), true
}

// Split breaks one axis into len(parts) adjacent output tensors. sum(parts)
// must divide the axis's current size; output i's size along that axis is
// parts[i] * (size / sum(parts)). Arg is {"axis": Int, "parts": Arr of Dim}.
type Split struct{}

func (Split) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	d, ok := a.AsDict()
	if !ok {
		return nil, ErrArg
	}
	axisArg, ok := d["axis"]
	if !ok {
		return nil, ErrArg
	}
	axis64, ok := axisArg.AsInt()
	if !ok {
		return nil, ErrArg
	}
	axis := int(axis64)

	partsArg, ok := d["parts"]
	if !ok {
		return nil, ErrArg
	}
	parts, ok := arg.DimsFrom(partsArg)
	if !ok {
		return nil, ErrArg
	}
	if len(inputs) != 1 {
		return nil, ErrShape
	}
	x := inputs[0]
	if axis < 0 || axis >= len(x.Shape) {
		return nil, ErrShape
	}

	sum := dim.SumAll(parts)
	c, ok := safeDiv(x.Shape[axis], sum)
	if !ok {
		return nil, ErrShapeMismatch
	}
	if !c.Mul(sum).Equal(x.Shape[axis]) {
		return nil, ErrShapeMismatch
	}

	out := make([]tensor.Meta, len(parts))
	for i, p := range parts {
		shape := append([]dim.Dim{}, x.Shape...)
		shape[axis] = p.Mul(c)
		out[i] = tensor.New(x.Dt, shape...)
	}
	return out, nil
}

// Tile expands one axis into len(tile) adjacent axes whose product equals
// the original axis size; it is Split's cousin for the "rearrange a single
// axis into several, in place" shape, used e.g. to expose head structure.
// Arg is {"axis": Int, "tile": Arr of Dim}.
type Tile struct{}

func (Tile) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	d, ok := a.AsDict()
	if !ok {
		return nil, ErrArg
	}
	axisArg, ok := d["axis"]
	if !ok {
		return nil, ErrArg
	}
	axis64, ok := axisArg.AsInt()
	if !ok {
		return nil, ErrArg
	}
	axis := int(axis64)

	tileArg, ok := d["tile"]
	if !ok {
		return nil, ErrArg
	}
	tile, ok := arg.DimsFrom(tileArg)
	if !ok {
		return nil, ErrArg
	}
	if len(inputs) != 1 {
		return nil, ErrShape
	}
	x := inputs[0]
	if axis < 0 || axis >= len(x.Shape) {
		return nil, ErrShape
	}

	product := dim.ProductAll(tile)
	if !product.Equal(x.Shape[axis]) {
		return nil, ErrShape
	}

	newShape := append([]dim.Dim{}, x.Shape[:axis]...)
	newShape = append(newShape, tile...)
	newShape = append(newShape, x.Shape[axis+1:]...)
	return []tensor.Meta{tensor.New(x.Dt, newShape...)}, nil
}

// Transpose permutes axes. Arg is {"perm": Arr of Int}.
type Transpose struct{}

func (Transpose) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	d, ok := a.AsDict()
	if !ok {
		return nil, ErrArg
	}
	permArg, ok := d["perm"]
	if !ok {
		return nil, ErrArg
	}
	permRaw, ok := permArg.AsArr()
	if !ok {
		return nil, ErrArg
	}
	perm := make([]int, len(permRaw))
	for i, p := range permRaw {
		v, ok := p.AsInt()
		if !ok {
			return nil, ErrArg
		}
		perm[i] = int(v)
	}

	if len(inputs) != 1 {
		return nil, ErrShape
	}
	x := inputs[0]
	if len(perm) != len(x.Shape) {
		return nil, ErrShape
	}
	newShape := make([]dim.Dim, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(x.Shape) {
			return nil, ErrShape
		}
		newShape[i] = x.Shape[p]
	}
	return []tensor.Meta{tensor.New(x.Dt, newShape...)}, nil
}

// Concat joins inputs along axis, which must be the only axis on which
// their shapes disagree. Arg is a bare Int: the axis.
type Concat struct{}

func (Concat) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	axis64, ok := a.AsInt()
	if !ok {
		return nil, ErrArg
	}
	axis := int(axis64)
	if len(inputs) == 0 {
		return nil, ErrShape
	}
	rank := len(inputs[0].Shape)
	if axis < 0 || axis >= rank {
		return nil, ErrShape
	}
	dt := inputs[0].Dt
	shape := make([]dim.Dim, rank)
	for i := 0; i < rank; i++ {
		if i == axis {
			col := make([]dim.Dim, len(inputs))
			for j, t := range inputs {
				if len(t.Shape) != rank {
					return nil, ErrShapeMismatch
				}
				col[j] = t.Shape[axis]
			}
			shape[i] = dim.SumAll(col)
			continue
		}
		col := make([]dim.Dim, len(inputs))
		for j, t := range inputs {
			col[j] = t.Shape[i]
		}
		d, ok := dim.MakeEq(col)
		if !ok {
			return nil, ErrShapeMismatch
		}
		shape[i] = d
	}
	return []tensor.Meta{tensor.New(dt, shape...)}, nil
}

// Merge collapses the axis range [start, start+len) into a single axis.
// Arg is {"start": Int, "len": Int}.
type Merge struct{}

func (Merge) Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	if a == nil {
		return nil, ErrArg
	}
	d, ok := a.AsDict()
	if !ok {
		return nil, ErrArg
	}
	startArg, ok := d["start"]
	if !ok {
		return nil, ErrArg
	}
	start64, ok := startArg.AsInt()
	if !ok {
		return nil, ErrArg
	}
	lenArg, ok := d["len"]
	if !ok {
		return nil, ErrArg
	}
	len64, ok := lenArg.AsInt()
	if !ok {
		return nil, ErrArg
	}
	start, length := int(start64), int(len64)
	end := start + length

	if len(inputs) != 1 {
		return nil, ErrShape
	}
	x := inputs[0]
	if end > len(x.Shape) || start < 0 {
		return nil, ErrShape
	}

	merged := dim.ProductAll(x.Shape[start:end])
	newShape := append([]dim.Dim{}, x.Shape[:start]...)
	newShape = append(newShape, merged)
	newShape = append(newShape, x.Shape[end:]...)
	return []tensor.Meta{tensor.New(x.Dt, newShape...)}, nil
}
