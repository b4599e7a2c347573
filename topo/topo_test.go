package topo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRoundTrip(t *testing.T) {
	b := NewBuilder[string, int]()
	x := b.AddGlobalInput(0)
	y := b.AddGlobalInput(1)

	outs := b.AddNode("add", []int{x, y}, []int{2})
	require.Len(t, outs, 1)

	g, err := b.Build(outs)
	require.NoError(t, err)
	require.NoError(t, g.Topo.Validate())

	assert.Equal(t, []int{0, 1}, g.GlobalInputs())
	assert.Equal(t, []int{2}, g.GlobalOutputs())
	assert.Equal(t, []int{0, 1}, g.InputEdges(0))
	assert.Equal(t, []int{2}, g.OutputEdges(0))
}

func TestAddGlobalInputPanicsAfterAddNode(t *testing.T) {
	b := NewBuilder[string, int]()
	x := b.AddGlobalInput(0)
	b.AddNode("silu", []int{x}, []int{1})

	assert.Panics(t, func() {
		b.AddGlobalInput(2)
	})
}

func TestBuildRejectsOutOfRangeOutput(t *testing.T) {
	b := NewBuilder[string, int]()
	x := b.AddGlobalInput(0)
	b.AddNode("silu", []int{x}, []int{1})

	_, err := b.Build([]int{99})
	assert.Error(t, err)
}

// TestBuildHonorsDeclaredOutputsNotPosition checks that a node's output
// declared first, not the chronologically last edge produced, is exposed
// when the caller names it explicitly.
func TestBuildHonorsDeclaredOutputsNotPosition(t *testing.T) {
	b := NewBuilder[string, string]()
	in := b.AddGlobalInput("x")
	wanted := b.AddNode("silu", []int{in}, []string{"keep-me"})
	b.AddNode("silu", wanted, []string{"discard-me"})

	g, err := b.Build(wanted)
	require.NoError(t, err)
	require.NoError(t, g.Topo.Validate())
	assert.Equal(t, []string{"keep-me"}, g.GlobalOutputs())
}

func TestValidateRejectsForwardReference(t *testing.T) {
	bad := GraphTopo{
		NGlobalInputs: 1,
		Nodes:         []NodeTopo{{NInputs: 1, NOutputs: 1}},
		Connections:   []int{5, 1}, // edge 5 doesn't exist yet
	}
	assert.Error(t, bad.Validate())
}

func TestVerifyOrderDetectsForwardReference(t *testing.T) {
	bad := GraphTopo{
		NGlobalInputs: 1,
		Nodes:         []NodeTopo{{NInputs: 1, NOutputs: 1}},
		Connections:   []int{5, 1},
	}
	err := VerifyOrder(bad)
	require.ErrorIs(t, err, ErrCycleDetected)
}

func TestMultiNodeChain(t *testing.T) {
	b := NewBuilder[string, string]()
	in := b.AddGlobalInput("x")
	o1 := b.AddNode("silu", []int{in}, []string{"h1"})
	o2 := b.AddNode("silu", o1, []string{"h2"})

	g, err := b.Build(o2)
	require.NoError(t, err)
	require.NoError(t, g.Topo.Validate())
	require.NoError(t, VerifyOrder(g.Topo))
	assert.Equal(t, []string{"h2"}, g.GlobalOutputs())
}
