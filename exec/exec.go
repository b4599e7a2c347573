// Package exec materializes a finished storage graph (package lower) and a
// plan.Result into the flat step sequence an out-of-process executor
// consumes: one Step per storage-graph node, in already-valid topological
// order, each carrying its resolved input/output Tensors — a concrete byte
// Range within the shared workspace for internal tensors, or a Name for
// external ones (weights and runtime inputs), grounded on 3_exec/src/lib.rs's
// Graph::into_exec, which performs the identical node-by-edge zip. Unlike
// the Rust original this package also resolves Layer E's offsets, since this
// module folds the planner into the same compile pipeline rather than
// leaving it to a downstream crate.
package exec

import (
	"fmt"

	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/layout"
	"github.com/nnvm-go/nnvm/lower"
	"github.com/nnvm-go/nnvm/mem"
	"github.com/nnvm-go/nnvm/plan"
	"github.com/nnvm-go/nnvm/tensor"
)

// Tensor is one resolved operand: a dtype and a concrete ArrayLayout, plus
// either a workspace Range (internal) or a Name an executor resolves against
// its own weight/input table (External).
type Tensor struct {
	Dt       tensor.Layout
	Layout   layout.ArrayLayout
	External bool
	Name     string
	Range    mem.Range
}

// Step is one node of the finished plan: the operator to run and its
// resolved input/output Tensors, in the order the storage graph declared
// them. A Step whose Op is "empty" is a fused view eliminated by package
// lower; an executor may skip it, since its output already aliases its
// input's storage.
type Step struct {
	Name    string
	Op      string
	Arg     *arg.Arg
	Inputs  []Tensor
	Outputs []Tensor
}

// Plan is the fully materialized execution plan: every step plus the total
// workspace size the planner computed.
type Plan struct {
	Steps         []Step
	WorkspaceSize uint64
}

// LifetimeSpec adapts g into the plan.LifetimeSpec package plan's Analyze
// expects, so a caller can run Compile directly over a lower.Graph without
// hand-building one.
func LifetimeSpec(g lower.Graph) plan.LifetimeSpec {
	return plan.LifetimeSpec{
		NumNodes:      len(g.Nodes),
		GlobalInputs:  infosOf(g.GlobalInputs()),
		GlobalOutputs: infosOf(g.GlobalOutputs()),
		NodeInfos: func(node int) []*mem.Info {
			inputs, outputs := g.Topo.NodeConnections(node)
			infos := make([]*mem.Info, 0, len(inputs)+len(outputs))
			for _, e := range inputs {
				if info := g.Edges[e].Info; info != nil {
					infos = append(infos, info)
				}
			}
			for _, e := range outputs {
				if info := g.Edges[e].Info; info != nil {
					infos = append(infos, info)
				}
			}
			return infos
		},
	}
}

func infosOf(edges []lower.Edge) []*mem.Info {
	out := make([]*mem.Info, 0, len(edges))
	for _, e := range edges {
		if e.Info != nil {
			out = append(out, e.Info)
		}
	}
	return out
}

// Materialize zips g's nodes with result's offsets into a flat Plan. result
// must have been produced by plan.Compile over LifetimeSpec(g); an Info g
// references but result has no Range for is reported as an error rather
// than silently defaulting to the zero Range.
func Materialize(g lower.Graph, result plan.Result) (Plan, error) {
	steps := make([]Step, len(g.Nodes))
	for i, n := range g.Nodes {
		inputs, outputs := g.Topo.NodeConnections(i)
		in, err := tensorsOf(g, inputs, result)
		if err != nil {
			return Plan{}, fmt.Errorf("exec: node %q inputs: %w", n.Name, err)
		}
		out, err := tensorsOf(g, outputs, result)
		if err != nil {
			return Plan{}, fmt.Errorf("exec: node %q outputs: %w", n.Name, err)
		}
		steps[i] = Step{Name: n.Name, Op: n.Op, Arg: n.Arg, Inputs: in, Outputs: out}
	}
	return Plan{Steps: steps, WorkspaceSize: result.WorkspaceSize}, nil
}

func tensorsOf(g lower.Graph, idx []int, result plan.Result) ([]Tensor, error) {
	out := make([]Tensor, len(idx))
	for i, e := range idx {
		edge := g.Edges[e]
		t := Tensor{Dt: edge.Dt, Layout: edge.Layout, External: edge.External, Name: edge.Name}
		if !edge.External {
			r, ok := result.Ranges[edge.Info]
			if !ok {
				return nil, fmt.Errorf("edge %d has no planned range", e)
			}
			t.Range = r
		}
		out[i] = t
	}
	return out, nil
}
