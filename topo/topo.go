// Package topo defines GraphTopo, the compact topology shared by the
// logical graph, storage graph, and execution plan: a flat description of
// how many edges are global inputs/outputs and, per node in already-valid
// topological order, how many of its inputs and outputs are, answered
// purely by position in one flat connections array.
//
// GraphTopo deliberately carries no node or edge payload — NodeTopo only
// counts arities. Graph[N, E] pairs a GraphTopo with parallel Nodes/Edges
// slices for callers (nnctx, lower, plan) that need actual payloads.
package topo

import "fmt"

// NodeTopo records one node's arity within a GraphTopo: how many input and
// output edge slots it has.
type NodeTopo struct {
	NInputs  int
	NOutputs int
}

// GraphTopo is a graph's topology with all payload erased: just enough
// structure to walk nodes in order and know which edge index (into a flat,
// global edge numbering) each input/output slot refers to.
//
// Edges are numbered globally starting at 0: edges [0, NGlobalInputs) are
// the graph's own inputs, produced by no node. Then, visiting nodes in
// order, each node's NInputs are resolved against Connections (they must
// name edges that already exist), and only then do its NOutputs newly
// appear (added to the running edge count).
// GlobalOutputIdx names, by edge index, exactly which edges are exposed as
// the graph's outputs — not inferred from position, since the caller's
// declared output edges need not be the chronologically last ones produced.
//
// Connections is the flat concatenation, node by node, of that node's
// input edge indices followed by its output edge indices — exactly
// NInputs + NOutputs entries per node, in node order.
type GraphTopo struct {
	NGlobalInputs   int
	GlobalOutputIdx []int
	Nodes           []NodeTopo
	Connections     []int
}

// NumEdges returns the total number of distinct edges this topology
// describes: global inputs plus every node's outputs.
func (t GraphTopo) NumEdges() int {
	n := t.NGlobalInputs
	for _, nt := range t.Nodes {
		n += nt.NOutputs
	}
	return n
}

// NodeConnections returns the input and output edge indices for node i,
// slicing them out of Connections. It panics on an out-of-range i — a
// malformed GraphTopo (wrong Connections length for its Nodes) is a
// construction bug, not a data-dependent condition for a caller to recover
// from mid-walk.
func (t GraphTopo) NodeConnections(i int) (inputs, outputs []int) {
	off := 0
	for j := 0; j < i; j++ {
		off += t.Nodes[j].NInputs + t.Nodes[j].NOutputs
	}
	nt := t.Nodes[i]
	inputs = t.Connections[off : off+nt.NInputs]
	outputs = t.Connections[off+nt.NInputs : off+nt.NInputs+nt.NOutputs]
	return inputs, outputs
}

// GlobalOutputs returns the edge indices exposed as this graph's outputs,
// in the order the caller declared them.
func (t GraphTopo) GlobalOutputs() []int {
	return append([]int{}, t.GlobalOutputIdx...)
}

// Validate checks internal consistency: Connections has exactly the length
// implied by Nodes, and every input index refers to an edge already
// produced by an earlier node (or a global input) — i.e. the node order is
// a genuine topological order, not merely a list.
func (t GraphTopo) Validate() error {
	wantLen := 0
	for _, nt := range t.Nodes {
		wantLen += nt.NInputs + nt.NOutputs
	}
	if len(t.Connections) != wantLen {
		return fmt.Errorf("topo: connections has %d entries, nodes imply %d", len(t.Connections), wantLen)
	}

	produced := t.NGlobalInputs
	for i, nt := range t.Nodes {
		inputs, _ := t.NodeConnections(i)
		for _, e := range inputs {
			if e < 0 || e >= produced {
				return fmt.Errorf("topo: node %d reads edge %d before it is produced", i, e)
			}
		}
		produced += nt.NOutputs
	}
	for _, e := range t.GlobalOutputIdx {
		if e < 0 || e >= produced {
			return fmt.Errorf("topo: declared global output edge %d does not exist (only %d edges produced)", e, produced)
		}
	}
	return nil
}
