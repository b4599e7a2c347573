package arg

import (
	"testing"

	"github.com/nnvm-go/nnvm/dim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteWalksStructure(t *testing.T) {
	a := Dict(map[string]Arg{
		"axis":  Int(1),
		"parts": Arr(Dim(dim.Var("n")), Dim(dim.Const(8))),
	})

	sub, err := a.Substitute(map[string]uint64{"n": 4})
	require.NoError(t, err)

	d, ok := sub.AsDict()
	require.True(t, ok)

	parts, ok := d["parts"].AsArr()
	require.True(t, ok)
	require.Len(t, parts, 2)

	v0, ok := parts[0].AsInt()
	require.True(t, ok)
	assert.Equal(t, uint64(4), v0)

	v1, ok := parts[1].AsInt()
	require.True(t, ok)
	assert.Equal(t, uint64(8), v1)
}

func TestSubstituteMissingVariableFails(t *testing.T) {
	a := Dim(dim.Var("missing"))
	_, err := a.Substitute(nil)
	require.Error(t, err)
}

func TestToUsizePanicsOnWrongKind(t *testing.T) {
	assert.Panics(t, func() {
		Bool(true).ToUsize()
	})
}
