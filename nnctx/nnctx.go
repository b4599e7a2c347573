// Package nnctx is Layer C: the builder context a declarative model (package
// model) calls into while it executes, producing a logical graph node by
// node. It owns hierarchical naming (so two uses of the same sub-module get
// distinct, human-readable tensor names) and drives package opreg's shape
// inference at every call, so a model can never construct a graph with
// shapes that don't line up.
//
// Design contract:
//   - One orchestrator: a *Context is created by New, fed Inputs and
//     LoadExternal weights, driven through Call for every operator, and
//     finalized with Finish into a topo.Graph.
//   - Names are never reused silently: the same base name requested twice
//     within the same namespace keeps the bare name on its first use and
//     gets a "-k" suffix on its k-th use, k counting from 2.
//   - Safety: Call never panics on a malformed model; it returns a
//     sentinel-wrapped error from opreg, with the offending node's name
//     attached for diagnostics.
package nnctx

import (
	"fmt"

	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/internal/telemetry"
	"github.com/nnvm-go/nnvm/opreg"
	"github.com/nnvm-go/nnvm/tensor"
	"github.com/nnvm-go/nnvm/topo"
)

// NodeCall is the payload of one logical-graph node: the operator invoked
// and the static argument it was invoked with.
type NodeCall struct {
	Name string
	Op   string
	Arg  *arg.Arg
}

// Graph is the finished logical graph: a topology over NodeCall nodes and
// TensorMeta edges.
type Graph = topo.Graph[NodeCall, tensor.Meta]

// Handle is an opaque reference to one edge (tensor) of the graph under
// construction. It is only ever produced by Context methods and only ever
// consumed by them; a Handle from one Context must never be passed to
// another.
type Handle struct {
	edge int
	meta tensor.Meta
	name string
}

// Meta returns the TensorMeta the handle currently refers to.
func (h Handle) Meta() tensor.Meta { return h.meta }

// Name returns the handle's fully-qualified, uniquified name.
func (h Handle) Name() string { return h.name }

// Option configures a Context.
type Option func(*Context)

// WithRegistry overrides the operator registry Call resolves operator names
// against; the default is opreg.NewRegistry().
func WithRegistry(r *opreg.Registry) Option {
	return func(c *Context) { c.registry = r }
}

// Context accumulates a logical graph across a sequence of Input/Call/
// LoadExternal invocations, as a declarative model's launch walks its tree.
type Context struct {
	registry *opreg.Registry
	names    *namer
	builder  *topo.Builder[NodeCall, tensor.Meta]
}

// New returns an empty Context.
func New(opts ...Option) *Context {
	c := &Context{
		registry: opreg.NewRegistry(),
		names:    newNamer(),
		builder:  topo.NewBuilder[NodeCall, tensor.Meta](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input declares one global input edge named name (uniquified within the
// current namespace) carrying meta, returning a Handle to it.
func (c *Context) Input(name string, meta tensor.Meta) Handle {
	full := c.names.tensor(name)
	named := meta.WithName(full)
	edge := c.builder.AddGlobalInput(named)
	return Handle{edge: edge, meta: named, name: full}
}

// LoadExternal declares a handle to an externally-supplied tensor (a
// weight), identical in mechanics to Input — the distinction between
// "external input" and "runtime input" is meaningful to a model author but
// not to graph construction, which only cares that both are edges with no
// producing node.
func (c *Context) LoadExternal(name string, meta tensor.Meta) Handle {
	full := c.names.tensor(name)
	named := meta.WithName(full)
	edge := c.builder.AddGlobalInput(named)
	return Handle{edge: edge, meta: named, name: full}
}

// Namespace runs fn with name pushed onto the naming stack, so every
// tensor/operator/sub-module name fn declares is prefixed by name and
// uniquified against sibling calls at this level — the mechanism that lets
// the same sub-network (e.g. TransformerBlk) be instantiated many times
// without colliding names.
func (c *Context) Namespace(name string, fn func()) {
	c.names.push(name)
	defer c.names.pop()
	fn()
}

// Call invokes the operator named op with static argument a over inputs,
// infers its output shapes via the registry, appends one node to the graph
// under construction, and returns a Handle per output.
func (c *Context) Call(op string, a *arg.Arg, inputs ...Handle) ([]Handle, error) {
	name := c.names.operator(op)

	metas := make([]tensor.Meta, len(inputs))
	edgeIdx := make([]int, len(inputs))
	for i, h := range inputs {
		metas[i] = h.meta
		edgeIdx[i] = h.edge
	}

	outMetas, err := c.registry.Infer(op, metas, a)
	if err != nil {
		telemetry.Stage("nnctx").Error().Str("node", name).Err(err).Msg("operator shape inference failed")
		return nil, fmt.Errorf("nnctx: node %q: %w", name, err)
	}
	for i := range outMetas {
		outMetas[i].Name = ""
	}

	outIdx := c.builder.AddNode(NodeCall{Name: name, Op: op, Arg: a}, edgeIdx, outMetas)

	out := make([]Handle, len(outMetas))
	for i, m := range outMetas {
		outName := name
		if len(outMetas) > 1 {
			outName = fmt.Sprintf("%s.%d", name, i)
		}
		out[i] = Handle{edge: outIdx[i], meta: m, name: outName}
	}
	return out, nil
}

// Finish declares outs as the graph's global outputs and returns the
// finished logical graph. It must be the last call made on c.
func (c *Context) Finish(outs ...Handle) (Graph, error) {
	idx := make([]int, len(outs))
	for i, h := range outs {
		idx[i] = h.edge
	}
	g, err := c.builder.Build(idx)
	if err != nil {
		return Graph{}, fmt.Errorf("nnctx: %w", err)
	}
	if err := g.Topo.Validate(); err != nil {
		return Graph{}, fmt.Errorf("nnctx: finished graph is invalid: %w", err)
	}
	return g, nil
}
