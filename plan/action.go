package plan

import (
	"sort"

	"github.com/nnvm-go/nnvm/mem"
)

// Kind distinguishes the two action types in a lifetime action stream.
type Kind int

const (
	Alloc Kind = iota
	Free
)

func (k Kind) String() string {
	if k == Alloc {
		return "alloc"
	}
	return "free"
}

// Action is one point in an Info's lifetime: it becomes live (Alloc) at
// Node, or becomes dead (Free) at Node. Node is a position in the node
// sequence — node 0 is "before the first real node" (where global inputs
// become live), and NumNodes is "after the last real node" (where global
// outputs are kept alive through).
type Action struct {
	Node int
	Kind Kind
	Info *mem.Info
	seq  int
}

// Order sorts actions by (Node, Kind, seq): at equal Node, every Alloc
// sorts before every Free. This is a deliberate choice, not an
// optimization — it means a node's freshly-produced outputs are allocated
// before that same node's inputs are freed, so memory can grow rather than
// requiring maximal reuse; a planner that instead wants maximal overlap
// would sort Free before Alloc at equal Node. seq (original discovery
// order) breaks remaining ties so a re-run over identical input produces
// byte-identical output.
func Order(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		a, b := actions[i], actions[j]
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.seq < b.seq
	})
}
