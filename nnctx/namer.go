package nnctx

import (
	"strconv"
	"strings"
)

// namer implements hierarchical, uniquified naming: a stack of path
// segments (pushed/popped by Context.Namespace) plus, at each stack depth, a
// per-base-name reuse counter. The first use of a name at a given path is
// unadorned; the k-th reuse (k >= 2) gets a "-k" suffix, mirroring how a
// model instantiated twice under the same parent (e.g. two TransformerBlk
// layers) still gets two distinct node names.
type namer struct {
	path    []string
	tensor_ []map[string]int
	op      []map[string]int
	child   []map[string]int // per-depth counters for Namespace segment names themselves
}

func newNamer() *namer {
	return &namer{
		tensor_: []map[string]int{{}},
		op:      []map[string]int{{}},
		child:   []map[string]int{{}},
	}
}

// push enters a new Namespace. seg is uniquified against sibling namespaces
// already pushed at this same depth, so two calls with the same seg (e.g.
// two TransformerBlk layers both naming themselves "blk") get distinct
// subtrees with independently-fresh tensor/op counters, rather than sharing
// one counter map and only uniquifying the leaf names within it.
func (n *namer) push(seg string) {
	depth := len(n.child) - 1
	n.path = append(n.path, uniquify(n.child[depth], seg))
	n.tensor_ = append(n.tensor_, map[string]int{})
	n.op = append(n.op, map[string]int{})
	n.child = append(n.child, map[string]int{})
}

func (n *namer) pop() {
	n.path = n.path[:len(n.path)-1]
	n.tensor_ = n.tensor_[:len(n.tensor_)-1]
	n.op = n.op[:len(n.op)-1]
	n.child = n.child[:len(n.child)-1]
}

func (n *namer) prefix() string {
	if len(n.path) == 0 {
		return ""
	}
	return strings.Join(n.path, ".") + "."
}

func uniquify(counts map[string]int, base string) string {
	counts[base]++
	k := counts[base]
	if k == 1 {
		return base
	}
	return base + "-" + strconv.Itoa(k)
}

// tensor returns a uniquified, path-prefixed name for a tensor (an Input or
// LoadExternal), scoped to the innermost enclosing Namespace.
func (n *namer) tensor(base string) string {
	depth := len(n.tensor_) - 1
	return n.prefix() + uniquify(n.tensor_[depth], base)
}

// operator returns a uniquified, path-prefixed name for an operator call,
// scoped to the innermost enclosing Namespace.
func (n *namer) operator(base string) string {
	depth := len(n.op) - 1
	return n.prefix() + uniquify(n.op[depth], base)
}
