// Package arg implements Arg, the recursive attribute value used for
// operator and model configuration: dims, scalars, and nested arrays/dicts.
package arg

import (
	"fmt"

	"github.com/nnvm-go/nnvm/dim"
)

// Kind discriminates the Arg variants.
type Kind uint8

const (
	KindDim Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindArr
	KindDict
)

// Arg is a tagged union: exactly one of its fields is meaningful, selected
// by Kind. It is built with the constructor functions below, never by
// struct literal, so that Kind and payload never drift apart.
type Arg struct {
	kind Kind
	dim  dim.Dim
	b    bool
	i    uint64
	f    float64
	s    string
	arr  []Arg
	dict map[string]Arg
}

func Dim(d dim.Dim) Arg    { return Arg{kind: KindDim, dim: d} }
func Bool(v bool) Arg      { return Arg{kind: KindBool, b: v} }
func Int(v uint64) Arg     { return Arg{kind: KindInt, i: v} }
func Float(v float64) Arg  { return Arg{kind: KindFloat, f: v} }
func Str(v string) Arg     { return Arg{kind: KindStr, s: v} }
func Arr(vs ...Arg) Arg    { return Arg{kind: KindArr, arr: append([]Arg{}, vs...)} }
func Dict(m map[string]Arg) Arg {
	cp := make(map[string]Arg, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Arg{kind: KindDict, dict: cp}
}

func (a Arg) Kind() Kind { return a.kind }

// AsDim, AsBool, ... return the payload and whether Kind matched.
func (a Arg) AsDim() (dim.Dim, bool)   { return a.dim, a.kind == KindDim }
func (a Arg) AsBool() (bool, bool)     { return a.b, a.kind == KindBool }
func (a Arg) AsInt() (uint64, bool)    { return a.i, a.kind == KindInt }
func (a Arg) AsFloat() (float64, bool) { return a.f, a.kind == KindFloat }
func (a Arg) AsStr() (string, bool)    { return a.s, a.kind == KindStr }
func (a Arg) AsArr() ([]Arg, bool)     { return a.arr, a.kind == KindArr }
func (a Arg) AsDict() (map[string]Arg, bool) { return a.dict, a.kind == KindDict }

// ToUsize extracts a concrete size from either a constant Dim or an Int.
// It panics for any other Kind, or for a non-constant Dim — mirroring the
// source's Arg::to_usize, which is only ever called on args already known
// by the caller to carry a concrete size.
func (a Arg) ToUsize() uint64 {
	switch a.kind {
	case KindDim:
		v, err := a.dim.ToUsize()
		if err != nil {
			panic(fmt.Sprintf("arg: %v", err))
		}
		return v
	case KindInt:
		return a.i
	default:
		panic("arg: not a size-bearing Arg")
	}
}

// Substitute walks the structure, replacing every inner Dim with a concrete
// Int under binding. It returns an error if any Dim fails to substitute
// (missing variable) or has an unsatisfiable constraint.
func (a Arg) Substitute(binding map[string]uint64) (Arg, error) {
	switch a.kind {
	case KindDim:
		v, ok, err := a.dim.Substitute(binding)
		if err != nil {
			return Arg{}, err
		}
		if !ok {
			return Arg{}, fmt.Errorf("arg: dimension constraint unsatisfied by binding")
		}
		return Int(v), nil
	case KindArr:
		out := make([]Arg, len(a.arr))
		for i, v := range a.arr {
			sv, err := v.Substitute(binding)
			if err != nil {
				return Arg{}, err
			}
			out[i] = sv
		}
		return Arg{kind: KindArr, arr: out}, nil
	case KindDict:
		out := make(map[string]Arg, len(a.dict))
		for k, v := range a.dict {
			sv, err := v.Substitute(binding)
			if err != nil {
				return Arg{}, err
			}
			out[k] = sv
		}
		return Arg{kind: KindDict, dict: out}, nil
	default:
		return a, nil
	}
}

// DimsFrom converts an Arr of Dim-kind Args into a []dim.Dim, failing (ok =
// false) if any element is not a Dim.
func DimsFrom(a Arg) ([]dim.Dim, bool) {
	arr, ok := a.AsArr()
	if !ok {
		return nil, false
	}
	out := make([]dim.Dim, len(arr))
	for i, v := range arr {
		d, ok := v.AsDim()
		if !ok {
			return nil, false
		}
		out[i] = d
	}
	return out, true
}
