package dim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticAndSubstitute(t *testing.T) {
	a := Var("a")
	b := Var("b")
	expr := a.Add(One()).Sub(Const(2)).Mul(Const(3)).Mul(b.Add(One())).Div(b.Add(One()))

	v, ok, err := expr.Substitute(map[string]uint64{"a": 8, "b": 6})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(21), v)
}

func TestSubstituteMissingVariableIsFatal(t *testing.T) {
	a := Var("a")
	_, _, err := a.Substitute(map[string]uint64{})
	require.ErrorIs(t, err, ErrMissingVariable)
}

func TestDivNonDivisorPanics(t *testing.T) {
	a := Var("a")
	b := Var("b")
	assert.Panics(t, func() {
		_ = a.Div(b)
	})
}

func TestCheckEqAlreadyEqualNoConstraint(t *testing.T) {
	a := Var("n")
	b := Var("n")
	eq := a.CheckEq(b)
	assert.Empty(t, eq.constraints)
}

func TestCheckEqDefersConstraint(t *testing.T) {
	a := Var("n")
	b := Var("m")
	eq := a.CheckEq(b)
	require.Len(t, eq.constraints, 1)

	// Consistent binding: n == m.
	v, ok, err := eq.Substitute(map[string]uint64{"n": 4, "m": 4})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(4), v)

	// Inconsistent binding: constraint fails, no value.
	_, ok, err = eq.Substitute(map[string]uint64{"n": 4, "m": 5})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMakeEqAllAgree(t *testing.T) {
	ds := []Dim{Var("a"), Var("b"), Var("c")}
	eq, ok := MakeEq(ds)
	require.True(t, ok)

	v, ok, err := eq.Substitute(map[string]uint64{"a": 7, "b": 7, "c": 7})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(7), v)
}

func TestMakeEqEmpty(t *testing.T) {
	_, ok := MakeEq(nil)
	assert.False(t, ok)
}

func TestToUsizeRequiresConstant(t *testing.T) {
	_, err := Var("n").ToUsize()
	require.ErrorIs(t, err, ErrNotConstant)

	v, err := Const(5).Mul(Const(2)).ToUsize()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
}

func TestEqualIsStructuralNotSemantic(t *testing.T) {
	a := Var("a").Add(Var("b"))
	b := Var("b").Add(Var("a"))
	assert.True(t, a.Equal(b), "commutative normal form should still match")

	c := Var("a").Mul(Const(2))
	d := Var("a").Add(Var("a"))
	assert.True(t, c.Equal(d))
}

func TestVariablesSorted(t *testing.T) {
	e := Var("z").Add(Var("a")).Mul(Var("m"))
	assert.Equal(t, []string{"a", "m", "z"}, e.Variables())
}
