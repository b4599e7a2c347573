package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContiguousStrides(t *testing.T) {
	l := NewContiguous([]uint64{2, 3, 4})
	assert.Equal(t, []int64{12, 4, 1}, l.Strides)
	assert.Equal(t, uint64(24), l.NumElements())
}

func TestIndexMatchesRowMajorArithmetic(t *testing.T) {
	l := NewContiguous([]uint64{2, 3, 4})
	assert.Equal(t, int64(0), l.Index([]uint64{0, 0, 0}))
	assert.Equal(t, int64(1*12+2*4+3), l.Index([]uint64{1, 2, 3}))
}

func TestSliceNarrowsAndOffsets(t *testing.T) {
	l := NewContiguous([]uint64{4, 4})
	sl, err := l.Slice(0, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 4}, sl.Shape)
	assert.Equal(t, int64(4), sl.Offset)

	_, err = l.Slice(0, 3, 2)
	require.Error(t, err)
}

func TestTileAddsZeroStrideAxis(t *testing.T) {
	l := NewContiguous([]uint64{3})
	tiled := l.Tile(5)
	assert.Equal(t, []uint64{5, 3}, tiled.Shape)
	assert.Equal(t, []int64{0, 1}, tiled.Strides)
}

func TestTransposePermutesShapeAndStrides(t *testing.T) {
	l := NewContiguous([]uint64{2, 3})
	tr, err := l.Transpose([]int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 2}, tr.Shape)
	assert.Equal(t, []int64{1, 3}, tr.Strides)

	_, err = l.Transpose([]int{0, 0})
	require.Error(t, err)
}

func TestBroadcastExpandsSizeOneAxes(t *testing.T) {
	l := NewContiguous([]uint64{1, 4})
	b, err := l.Broadcast([]uint64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, b.Shape)
	assert.Equal(t, int64(0), b.Strides[0])

	_, err = l.Broadcast([]uint64{3, 5})
	require.Error(t, err)
}

func TestMergeRequiresContiguity(t *testing.T) {
	l := NewContiguous([]uint64{2, 3, 4})
	m, err := l.Merge(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 12}, m.Shape)
	assert.Equal(t, m.NumElements(), l.NumElements())

	sliced, err := l.Slice(2, 0, 2)
	require.NoError(t, err)
	_, err = sliced.Merge(1, 2)
	assert.Error(t, err, "merging across a sliced axis must fail, not misdescribe memory")
}

func TestSplitIsInverseOfMerge(t *testing.T) {
	l := NewContiguous([]uint64{2, 12})
	s, err := l.Split(1, []uint64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3, 4}, s.Shape)
	assert.Equal(t, l.NumElements(), s.NumElements())

	_, err = l.Split(1, []uint64{5, 3})
	require.Error(t, err)
}
