// Package tensor defines TensorMeta, the shape/dtype pair that flows along
// every edge of the logical graph. It carries no element data; it exists so
// operator shape inference (package opreg) and graph construction (package
// nnctx) can share one vocabulary without nnctx depending on opreg.
package tensor

import "github.com/nnvm-go/nnvm/dim"

// Layout is the element-type descriptor a TensorMeta carries. It is
// satisfied by digit.Layout; declared as an interface here so this package
// does not need to import digit, keeping the dependency graph a DAG rooted
// at dim and digit rather than a cycle between tensor and digit.
type Layout interface {
	NBytes() uint32
	GroupSize() uint32
}

// Meta pairs a dtype with a symbolic shape. Shape entries are Dims rather
// than plain integers because a logical-graph edge's size may still depend
// on unbound symbolic variables (batch size, sequence length, ...) until
// Layer D substitutes concrete values. Name is set only for a graph's global
// input edges (runtime inputs and weights), which have no producing node to
// carry a name of their own; it is empty on every node-produced edge, whose
// name lives on the producing NodeCall instead.
type Meta struct {
	Dt    Layout
	Shape []dim.Dim
	Name  string
}

// New constructs a Meta from a dtype and a variadic shape. For a grouped
// dtype (GroupSize() > 1, e.g. a quantized format storing one scale per
// group of elements), the last shape dimension is divided by the group
// size: that axis is declared in groups, not raw elements.
func New(dt Layout, shape ...dim.Dim) Meta {
	s := append([]dim.Dim{}, shape...)
	if g := dt.GroupSize(); g > 1 && len(s) > 0 {
		last := len(s) - 1
		s[last] = s[last].DivU(uint64(g))
	}
	return Meta{Dt: dt, Shape: s}
}

// Rank returns len(Shape).
func (m Meta) Rank() int { return len(m.Shape) }

// WithShape returns a copy of m with Shape replaced.
func (m Meta) WithShape(shape []dim.Dim) Meta {
	return Meta{Dt: m.Dt, Shape: append([]dim.Dim{}, shape...), Name: m.Name}
}

// WithName returns a copy of m with Name replaced.
func (m Meta) WithName(name string) Meta {
	return Meta{Dt: m.Dt, Shape: append([]dim.Dim{}, m.Shape...), Name: name}
}

// Clone returns a deep-enough copy (Shape slice duplicated; Dt is a value).
func (m Meta) Clone() Meta {
	return Meta{Dt: m.Dt, Shape: append([]dim.Dim{}, m.Shape...), Name: m.Name}
}
