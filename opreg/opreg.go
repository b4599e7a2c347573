// Package opreg is the operator registry: shape-inference-only Operator
// implementations for every graph-layer op, keyed by name in a Registry.
// Operators never touch element data; Infer walks TensorMeta shapes and
// dict-of-Arg attributes and returns the output TensorMetas (or an error).
package opreg

import (
	"errors"
	"fmt"

	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/tensor"
)

// Sentinel errors, checked with errors.Is at call sites that care which
// failure mode occurred (e.g. nnctx distinguishing a caller bug in args from
// a genuine shape incompatibility in the model).
var (
	ErrNotExist         = errors.New("opreg: operator does not exist")
	ErrDataType         = errors.New("opreg: invalid data type")
	ErrDataTypeMismatch = errors.New("opreg: data type mismatch")
	ErrShape            = errors.New("opreg: invalid shape")
	ErrShapeMismatch    = errors.New("opreg: shape mismatch")
	ErrArg              = errors.New("opreg: invalid argument")
)

// Operator infers output TensorMetas from input TensorMetas and a single
// static Arg (nil if the operator takes none). Implementations are pure and
// stateless: same inputs and arg always produce the same result.
type Operator interface {
	Infer(inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error)
}

// Registry maps operator names to Operators.
type Registry struct {
	ops map[string]Operator
}

// NewRegistry returns a Registry pre-populated with every canonical operator
// this module understands.
func NewRegistry() *Registry {
	r := &Registry{ops: map[string]Operator{}}
	for name, op := range defaultOperators() {
		r.Register(name, op)
	}
	return r
}

// Register adds or replaces the Operator bound to name.
func (r *Registry) Register(name string, op Operator) {
	r.ops[name] = op
}

// Get looks up an Operator by name.
func (r *Registry) Get(name string) (Operator, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("opreg: %q: %w", name, ErrNotExist)
	}
	return op, nil
}

// Infer looks up name and runs its Infer.
func (r *Registry) Infer(name string, inputs []tensor.Meta, a *arg.Arg) ([]tensor.Meta, error) {
	op, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	out, err := op.Infer(inputs, a)
	if err != nil {
		return nil, fmt.Errorf("opreg: %s: %w", name, err)
	}
	return out, nil
}

func defaultOperators() map[string]Operator {
	return map[string]Operator{
		"embedding":             Embedding{},
		"rms-norm":              RmsNorm{},
		"layer-norm":            LayerNorm{},
		"linear":                Linear{},
		"add":                   Add{},
		"add4d":                 Add4d{},
		"element-mul":           ElementMul{},
		"swiglu":                SwiGLU{},
		"silu":                  SiLU{},
		"gelu":                  GeLU{},
		"split":                 Split{},
		"tile":                  Tile{},
		"transpose":             Transpose{},
		"concat":                Concat{},
		"merge":                 Merge{},
		"conv":                  Conv{},
		"mamba-causal-conv1d":   CausalConv1d{},
		"mamba-selective-scan":  SelectiveScan{},
		"attention":             Attention{},
		"rope":                  Rope{},
		"mrope":                 Mrope{},
		"all-reduce":            AllReduce{},
	}
}

// dims is a small helper used throughout this package: it returns m.Shape,
// erroring via ErrShape if its length isn't exactly want (mirroring the
// source's `dims!` destructuring macro, which rejects the wrong rank before
// naming each axis).
func dims(m tensor.Meta, want int) ([]dim.Dim, error) {
	if len(m.Shape) != want {
		return nil, fmt.Errorf("%w: expected rank %d, got %d", ErrShape, want, len(m.Shape))
	}
	return m.Shape, nil
}
