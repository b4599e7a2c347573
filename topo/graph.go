package topo

import "fmt"

// Graph pairs a GraphTopo with the actual per-node and per-edge payloads.
// N is a node's payload (an operator call, a storage-graph node, a planned
// action, depending on which layer constructs this Graph); E is an edge's
// payload (a TensorMeta, an ArrayLayout, ...). len(Nodes) must equal
// len(Topo.Nodes), and len(Edges) must equal Topo.NumEdges(); Builder
// enforces this at construction time.
type Graph[N any, E any] struct {
	Topo  GraphTopo
	Nodes []N
	Edges []E
}

// InputEdges returns the payloads of node i's input edges.
func (g Graph[N, E]) InputEdges(i int) []E {
	inputs, _ := g.Topo.NodeConnections(i)
	out := make([]E, len(inputs))
	for j, e := range inputs {
		out[j] = g.Edges[e]
	}
	return out
}

// OutputEdges returns the payloads of node i's output edges.
func (g Graph[N, E]) OutputEdges(i int) []E {
	_, outputs := g.Topo.NodeConnections(i)
	out := make([]E, len(outputs))
	for j, e := range outputs {
		out[j] = g.Edges[e]
	}
	return out
}

// GlobalInputs returns the payloads of the graph's global input edges.
func (g Graph[N, E]) GlobalInputs() []E {
	return g.Edges[:g.Topo.NGlobalInputs]
}

// GlobalOutputs returns the payloads of the graph's global output edges.
func (g Graph[N, E]) GlobalOutputs() []E {
	idx := g.Topo.GlobalOutputs()
	out := make([]E, len(idx))
	for i, e := range idx {
		out[i] = g.Edges[e]
	}
	return out
}

// Builder accumulates nodes and edges in topological order and produces a
// Graph. Global inputs must be declared first via AddGlobalInput; nodes are
// then added via AddNode with their already-resolved input edge indices,
// each returning the newly assigned output edge indices.
type Builder[N any, E any] struct {
	nGlobalInputs int
	nodes         []NodeTopo
	nodePayload   []N
	edges         []E
	connections   []int
}

// NewBuilder returns an empty Builder.
func NewBuilder[N any, E any]() *Builder[N, E] {
	return &Builder[N, E]{}
}

// AddGlobalInput declares one more global input edge, carrying payload e,
// and returns its global edge index. All global inputs must be added
// before the first AddNode call; AddGlobalInput panics otherwise, since a
// global input declared after a node exists can no longer occupy its
// required position in the leading [0, NGlobalInputs) block of edges.
func (b *Builder[N, E]) AddGlobalInput(e E) int {
	if len(b.nodes) > 0 {
		panic("topo: AddGlobalInput called after AddNode; all global inputs must be declared first")
	}
	idx := len(b.edges)
	b.edges = append(b.edges, e)
	b.nGlobalInputs++
	return idx
}

// AddNode appends a node whose inputs are the given (already-existing)
// global edge indices and whose outputs carry the given payloads. It
// returns the new outputs' global edge indices, in order.
func (b *Builder[N, E]) AddNode(payload N, inputs []int, outputs []E) []int {
	b.nodePayload = append(b.nodePayload, payload)
	b.connections = append(b.connections, inputs...)

	outIdx := make([]int, len(outputs))
	for i, e := range outputs {
		outIdx[i] = len(b.edges)
		b.edges = append(b.edges, e)
	}
	b.connections = append(b.connections, outIdx...)

	b.nodes = append(b.nodes, NodeTopo{
		NInputs:  len(inputs),
		NOutputs: len(outputs),
	})
	return outIdx
}

// Build finalizes the graph: outs names, by edge index, exactly which
// edges the caller wants exposed as the graph's declared outputs. It
// returns an error if any index in outs does not refer to an edge this
// Builder actually produced.
func (b *Builder[N, E]) Build(outs []int) (Graph[N, E], error) {
	for _, e := range outs {
		if e < 0 || e >= len(b.edges) {
			return Graph[N, E]{}, fmt.Errorf("topo: output edge %d out of range [0,%d)", e, len(b.edges))
		}
	}
	return Graph[N, E]{
		Topo: GraphTopo{
			NGlobalInputs:   b.nGlobalInputs,
			GlobalOutputIdx: append([]int{}, outs...),
			Nodes:           b.nodes,
			Connections:     b.connections,
		},
		Nodes: b.nodePayload,
		Edges: b.edges,
	}, nil
}
