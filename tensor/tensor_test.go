package tensor

import (
	"testing"

	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/digit"
	"github.com/stretchr/testify/assert"
)

func TestNewDividesLastDimByGroupSize(t *testing.T) {
	m := New(digit.Q8_0, dim.Const(2), dim.Const(64))

	want, err := m.Shape[1].ToUsize()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), want, "64 elements pack into 2 groups of 32")

	leading, err := m.Shape[0].ToUsize()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), leading, "only the last dimension is a group count")
}

func TestNewLeavesShapeAloneForUngroupedDtype(t *testing.T) {
	m := New(digit.F32, dim.Const(4), dim.Const(64))

	last, err := m.Shape[1].ToUsize()
	assert.NoError(t, err)
	assert.Equal(t, uint64(64), last, "group size 1 means no division")
}

func TestNewOnScalarShapeDoesNotPanic(t *testing.T) {
	m := New(digit.Q8_0)
	assert.Empty(t, m.Shape)
}
