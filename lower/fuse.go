package lower

import (
	"fmt"
)

// fuseViews walks g's nodes in topological order and, for every pure-view
// operator (split, tile, transpose, concat, merge), replaces the
// participating edges' layouts with a stride transform of the other side
// and erases the node to a no-op "empty" — the same move the original
// compiler makes for split and concat (2_mem/src/op.rs), generalized here to
// every view operator this compiler recognizes, since all of them describe
// a reinterpretation of existing memory rather than new data.
func fuseViews(g *Graph) error {
	for i := range g.Nodes {
		node := &g.Nodes[i]
		inputs, outputs := g.Topo.NodeConnections(i)

		var err error
		switch node.Op {
		case "split":
			err = fuseSplit(g, node, inputs, outputs)
		case "tile":
			err = fuseTile(g, node, inputs, outputs)
		case "transpose":
			err = fuseTranspose(g, node, inputs, outputs)
		case "merge":
			err = fuseMerge(g, node, inputs, outputs)
		case "concat":
			err = fuseConcat(g, node, inputs, outputs)
		}
		if err != nil {
			return fmt.Errorf("lower: fusing node %q: %w", node.Name, err)
		}
	}
	return nil
}

func eraseNode(node *Node) {
	node.Op = "empty"
	node.Arg = nil
}

func fuseSplit(g *Graph, node *Node, inputs, outputs []int) error {
	if len(inputs) != 1 {
		return fmt.Errorf("split must have exactly one input, got %d", len(inputs))
	}
	d, ok := node.Arg.AsDict()
	if !ok {
		return fmt.Errorf("split node missing its axis/parts argument")
	}
	axis64, ok := d["axis"].AsInt()
	if !ok {
		return fmt.Errorf("split node's axis argument is not an int")
	}
	axis := int(axis64)

	in := g.Edges[inputs[0]]
	if in.External {
		return fmt.Errorf("split input edge %d is external; view fusion requires an internal input", inputs[0])
	}
	start := uint64(0)
	for _, outIdx := range outputs {
		out := &g.Edges[outIdx]
		if out.External {
			return fmt.Errorf("split output edge %d is external; view fusion requires internal outputs", outIdx)
		}
		length := out.Layout.Shape[axis]
		sliced, err := in.Layout.Slice(axis, start, length)
		if err != nil {
			return err
		}
		out.Layout = sliced
		out.Info = in.Info
		start += length
	}
	eraseNode(node)
	return nil
}

func fuseConcat(g *Graph, node *Node, inputs, outputs []int) error {
	if len(outputs) != 1 {
		return fmt.Errorf("concat must have exactly one output, got %d", len(outputs))
	}
	axis64, ok := node.Arg.AsInt()
	if !ok {
		return fmt.Errorf("concat node's axis argument is not an int")
	}
	axis := int(axis64)

	out := g.Edges[outputs[0]]
	start := uint64(0)
	for _, inIdx := range inputs {
		in := &g.Edges[inIdx]
		if in.External {
			return fmt.Errorf("concat input edge %d is external; view fusion requires internal inputs", inIdx)
		}
		length := in.Layout.Shape[axis]
		sliced, err := out.Layout.Slice(axis, start, length)
		if err != nil {
			return err
		}
		in.Layout = sliced
		in.Info = out.Info
		start += length
	}
	eraseNode(node)
	return nil
}

func fuseTile(g *Graph, node *Node, inputs, outputs []int) error {
	if len(inputs) != 1 || len(outputs) != 1 {
		return fmt.Errorf("tile must have exactly one input and one output")
	}
	out := &g.Edges[outputs[0]]
	if out.External {
		return fmt.Errorf("tile output edge %d is external; view fusion requires an internal output", outputs[0])
	}
	in := g.Edges[inputs[0]]
	if in.External {
		return fmt.Errorf("tile input edge %d is external; view fusion requires an internal input", inputs[0])
	}

	d, ok := node.Arg.AsDict()
	if !ok {
		return fmt.Errorf("tile node missing its axis/tile argument")
	}
	axis64, ok := d["axis"].AsInt()
	if !ok {
		return fmt.Errorf("tile node's axis argument is not an int")
	}
	tileArg, ok := d["tile"]
	if !ok {
		return fmt.Errorf("tile node missing its tile argument")
	}
	parts, ok := tileArg.AsArr()
	if !ok {
		return fmt.Errorf("tile node's tile argument is not an array")
	}
	shapeParts := make([]uint64, len(parts))
	for i, p := range parts {
		shapeParts[i] = out.Layout.Shape[int(axis64)+i]
		_ = p
	}
	split, err := in.Layout.Split(int(axis64), shapeParts)
	if err != nil {
		return err
	}
	out.Layout = split
	out.Info = in.Info
	eraseNode(node)
	return nil
}

func fuseTranspose(g *Graph, node *Node, inputs, outputs []int) error {
	if len(inputs) != 1 || len(outputs) != 1 {
		return fmt.Errorf("transpose must have exactly one input and one output")
	}
	out := &g.Edges[outputs[0]]
	if out.External {
		return fmt.Errorf("transpose output edge %d is external; view fusion requires an internal output", outputs[0])
	}
	in := g.Edges[inputs[0]]
	if in.External {
		return fmt.Errorf("transpose input edge %d is external; view fusion requires an internal input", inputs[0])
	}

	d, ok := node.Arg.AsDict()
	if !ok {
		return fmt.Errorf("transpose node missing its perm argument")
	}
	permArg, ok := d["perm"]
	if !ok {
		return fmt.Errorf("transpose node missing its perm argument")
	}
	permRaw, ok := permArg.AsArr()
	if !ok {
		return fmt.Errorf("transpose node's perm argument is not an array")
	}
	perm := make([]int, len(permRaw))
	for i, p := range permRaw {
		v, ok := p.AsInt()
		if !ok {
			return fmt.Errorf("transpose node's perm entry %d is not an int", i)
		}
		perm[i] = int(v)
	}

	transposed, err := in.Layout.Transpose(perm)
	if err != nil {
		return err
	}
	out.Layout = transposed
	out.Info = in.Info
	eraseNode(node)
	return nil
}

func fuseMerge(g *Graph, node *Node, inputs, outputs []int) error {
	if len(inputs) != 1 || len(outputs) != 1 {
		return fmt.Errorf("merge must have exactly one input and one output")
	}
	out := &g.Edges[outputs[0]]
	if out.External {
		return fmt.Errorf("merge output edge %d is external; view fusion requires an internal output", outputs[0])
	}
	in := g.Edges[inputs[0]]
	if in.External {
		return fmt.Errorf("merge input edge %d is external; view fusion requires an internal input", inputs[0])
	}

	d, ok := node.Arg.AsDict()
	if !ok {
		return fmt.Errorf("merge node missing its start/len argument")
	}
	start64, ok := d["start"].AsInt()
	if !ok {
		return fmt.Errorf("merge node's start argument is not an int")
	}
	len64, ok := d["len"].AsInt()
	if !ok {
		return fmt.Errorf("merge node's len argument is not an int")
	}

	merged, err := in.Layout.Merge(int(start64), int(start64+len64)-1)
	if err != nil {
		return err
	}
	out.Layout = merged
	out.Info = in.Info
	eraseNode(node)
	return nil
}
