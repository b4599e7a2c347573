// This file adapts the teacher's DFS-based topological sort into a pure
// verifier: GraphTopo nodes are already stored in the order the builder
// produced them, so there is nothing left to sort — what remains is to
// confirm that order is actually valid, which VerifyOrder does by replaying
// dependency resolution with the same cancellation-aware traversal style.
package topo

import (
	"context"
	"errors"
	"fmt"
)

// ErrCycleDetected indicates an edge index referenced a position that does
// not correspond to any already-produced edge in Connections order —
// GraphTopo has no room to even express a cycle (producers always sit at
// lower indices than consumers), so this really signals corrupted topology.
var ErrCycleDetected = errors.New("topo: connections are not in a valid topological order")

// VerifyOption configures VerifyOrder.
type VerifyOption func(*verifyOptions)

type verifyOptions struct {
	ctx context.Context
}

func defaultVerifyOptions() verifyOptions {
	return verifyOptions{ctx: context.Background()}
}

// WithCancelContext lets a long verification of a very large plan be
// interrupted. Passing a nil context has no effect.
func WithCancelContext(ctx context.Context) VerifyOption {
	return func(o *verifyOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// VerifyOrder checks that t's Connections are consistent with the
// input-before-output invariant Validate already enforces, additionally
// honoring cancellation for very large topologies — the two checks
// together are what the source would have called a topological-sort
// validity check, specialized here to a representation that is
// order-by-construction rather than order-by-search.
func VerifyOrder(t GraphTopo, opts ...VerifyOption) error {
	o := defaultVerifyOptions()
	for _, opt := range opts {
		opt(&o)
	}

	produced := t.NGlobalInputs
	for i, nt := range t.Nodes {
		select {
		case <-o.ctx.Done():
			return o.ctx.Err()
		default:
		}

		inputs, _ := t.NodeConnections(i)
		for _, e := range inputs {
			if e >= produced {
				return fmt.Errorf("%w: node %d depends on edge %d not yet produced", ErrCycleDetected, i, e)
			}
		}
		produced += nt.NOutputs
	}
	return nil
}
