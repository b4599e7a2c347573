// Package lower is Layer D: it substitutes a logical graph's symbolic Dim
// shapes for concrete sizes under a binding, builds a canonical row-major
// ArrayLayout per edge, and fuses the pure-view operators (split, tile,
// transpose, concat, merge) into stride-transform rewrites of their
// neighbors' layouts, erasing the view node itself to a no-op "empty". What
// is left is the storage graph: every remaining node is a real kernel call
// over edges that already carry their final memory layout.
package lower

import (
	"fmt"

	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/layout"
	"github.com/nnvm-go/nnvm/mem"
	"github.com/nnvm-go/nnvm/nnctx"
	"github.com/nnvm-go/nnvm/tensor"
	"github.com/nnvm-go/nnvm/topo"
)

// Node is the storage-graph's per-node payload: the same name/op/arg a
// logical node carried, except a fused view operator has its Op rewritten
// to "empty" and its Arg cleared.
type Node struct {
	Name string
	Op   string
	Arg  *arg.Arg
}

// Edge is the storage-graph's per-edge payload: a concrete memory layout,
// the element type it addresses, and the identity of the allocation it
// views. External edges (weights and top-level inputs) carry a nil
// Info and are addressed by Name instead, since their storage is supplied
// by the caller rather than planned by this compiler.
type Edge struct {
	Dt       tensor.Layout
	Layout   layout.ArrayLayout
	Info     *mem.Info
	External bool
	Name     string
}

// Graph is the finished storage graph.
type Graph = topo.Graph[Node, Edge]

// Substitute resolves every edge's symbolic tensor.Meta against binding,
// producing concrete ArrayLayouts and a freshly allocated mem.Info per
// distinct piece of storage, then fuses view operators over the result.
func Substitute(g nnctx.Graph, binding map[string]uint64) (Graph, error) {
	edges := make([]Edge, len(g.Edges))
	for i, m := range g.Edges {
		l, err := concreteLayout(m, binding)
		if err != nil {
			return Graph{}, fmt.Errorf("lower: edge %d: %w", i, err)
		}
		external := i < g.Topo.NGlobalInputs
		e := Edge{Dt: m.Dt, Layout: l, External: external, Name: m.Name}
		if !external {
			e.Info = mem.New(byteSize(m.Dt, l))
		}
		edges[i] = e
	}

	nodes := make([]Node, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = Node{Name: n.Name, Op: n.Op, Arg: n.Arg}
	}

	out := Graph{Topo: g.Topo, Nodes: nodes, Edges: edges}
	if err := fuseViews(&out); err != nil {
		return Graph{}, err
	}
	return out, nil
}

func byteSize(dt tensor.Layout, l layout.ArrayLayout) uint64 {
	// tensor.New already declares a grouped dtype's last axis in groups, so
	// each counted element here is one NBytes-sized group.
	return l.NumElements() * uint64(dt.NBytes())
}

func concreteLayout(m tensor.Meta, binding map[string]uint64) (layout.ArrayLayout, error) {
	shape := make([]uint64, len(m.Shape))
	for i, d := range m.Shape {
		v, ok, err := d.Substitute(binding)
		if err != nil {
			return layout.ArrayLayout{}, fmt.Errorf("axis %d: %w", i, err)
		}
		if !ok {
			return layout.ArrayLayout{}, fmt.Errorf("axis %d: binding violates a deferred shape constraint", i)
		}
		shape[i] = v
	}
	return layout.NewContiguous(shape), nil
}
