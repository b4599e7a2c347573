package plan

import (
	"math"
	"testing"

	"github.com/nnvm-go/nnvm/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorReusesFreedSpace(t *testing.T) {
	a := NewAllocator(1)
	r1 := a.Take(16)
	assert.Equal(t, uint64(0), r1.Off)
	a.Put(r1)

	r2 := a.Take(16)
	assert.Equal(t, uint64(0), r2.Off, "a freed region of exactly the right size must be reused")
	assert.Equal(t, uint64(16), a.Watermark())
}

func TestAllocatorCoalescesAdjacentFrees(t *testing.T) {
	a := NewAllocator(1)
	r1 := a.Take(8)
	r2 := a.Take(8)
	a.Put(r1)
	a.Put(r2)

	r3 := a.Take(16)
	assert.Equal(t, uint64(0), r3.Off, "adjacent frees should coalesce into one 16-byte region")
	assert.Equal(t, uint64(16), a.Watermark())
}

func TestAllocatorAlignsUp(t *testing.T) {
	a := NewAllocator(64)
	r := a.Take(1)
	assert.Equal(t, uint64(64), r.Len)
}

func TestAllocatorTakeZeroReturnsSentinelWithoutDisturbingState(t *testing.T) {
	a := NewAllocator(1)
	r1 := a.Take(16)
	a.Put(r1)

	sentinel := a.Take(0)
	assert.Equal(t, uint64(math.MaxUint64), sentinel.Off)
	assert.Equal(t, uint64(math.MaxUint64), sentinel.Len)
	assert.Equal(t, uint64(16), a.Watermark(), "a zero-sized take must not touch the watermark")

	r2 := a.Take(16)
	assert.Equal(t, uint64(0), r2.Off, "the freed region must still be available after a zero-sized take")
}

func TestAllocatorBestFitPicksSmallestSufficientHole(t *testing.T) {
	a := NewAllocator(1)
	small := a.Take(4)
	_ = a.Take(4) // spacer, keeps `small` from coalescing with the big region below
	big := a.Take(32)
	a.Put(small)
	a.Put(big)

	r := a.Take(8)
	assert.Equal(t, big.Off, r.Off, "8 bytes should land in the 32-byte hole, not force a new 8-byte hole plus leftover bookkeeping on the 4-byte one")
}

// TestYShapeLifetimeOverlap mirrors a Y-shaped dependency: one shared input
// feeds two independent branches that both stay live until a final join
// node. The branches' buffers must never be assigned overlapping ranges.
func TestYShapeLifetimeOverlap(t *testing.T) {
	shared := mem.New(8)
	branchA := mem.New(8)
	branchB := mem.New(8)
	joined := mem.New(8)

	spec := LifetimeSpec{
		NumNodes:     3, // 0: branch A, 1: branch B, 2: join
		GlobalInputs: []*mem.Info{shared},
		NodeInfos: func(node int) []*mem.Info {
			switch node {
			case 0:
				return []*mem.Info{shared, branchA}
			case 1:
				return []*mem.Info{shared, branchB}
			case 2:
				return []*mem.Info{branchA, branchB, joined}
			}
			return nil
		},
		GlobalOutputs: []*mem.Info{joined},
	}

	result := Compile(spec)
	rA, rB := result.Ranges[branchA], result.Ranges[branchB]
	require.False(t, rA.Overlaps(rB), "branch A and branch B are simultaneously live at the join node and must not share memory")
}

func TestCompileReleasesMemoryAfterLastUse(t *testing.T) {
	a := mem.New(8)
	b := mem.New(8)

	spec := LifetimeSpec{
		NumNodes: 2,
		NodeInfos: func(node int) []*mem.Info {
			if node == 0 {
				return []*mem.Info{a}
			}
			return []*mem.Info{b}
		},
	}

	result := Compile(spec)
	assert.Equal(t, uint64(8), result.WorkspaceSize, "a and b are never simultaneously live, so the workspace should reuse the same 8 bytes")
}
