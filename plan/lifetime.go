package plan

import "github.com/nnvm-go/nnvm/mem"

// LifetimeSpec describes a storage graph abstractly enough for Analyze to
// compute lifetimes without depending on the lower package's concrete graph
// type: callers provide how many real nodes exist and a callback exposing
// the Infos each node's input and output edges resolve to.
type LifetimeSpec struct {
	NumNodes      int
	GlobalInputs  []*mem.Info
	GlobalOutputs []*mem.Info
	NodeInfos     func(node int) []*mem.Info
}

// Analyze walks a storage graph once and returns an Action stream already
// sorted by Order: one Alloc/Free pair per distinct Info encountered,
// first-touch and last-touch respectively. Global inputs are
// first-touched at node 0; global outputs are last-touched at NumNodes, so
// they survive to the very end of execution regardless of when the last
// node that happens to reference them runs.
func Analyze(spec LifetimeSpec) []Action {
	first := map[*mem.Info]int{}
	last := map[*mem.Info]int{}
	var order []*mem.Info

	touch := func(info *mem.Info, idx int) {
		if info == nil {
			return
		}
		if _, ok := first[info]; !ok {
			first[info] = idx
			order = append(order, info)
		} else if idx < first[info] {
			first[info] = idx
		}
		if idx > last[info] {
			last[info] = idx
		}
	}

	for _, info := range spec.GlobalInputs {
		touch(info, 0)
	}
	for i := 0; i < spec.NumNodes; i++ {
		for _, info := range spec.NodeInfos(i) {
			touch(info, i)
		}
	}
	for _, info := range spec.GlobalOutputs {
		touch(info, spec.NumNodes)
	}

	actions := make([]Action, 0, 2*len(order))
	for _, info := range order {
		actions = append(actions, Action{Node: first[info], Kind: Alloc, Info: info, seq: len(actions)})
		actions = append(actions, Action{Node: last[info], Kind: Free, Info: info, seq: len(actions)})
	}
	Order(actions)
	return actions
}
