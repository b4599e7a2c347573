package digit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualityIsByValue(t *testing.T) {
	a := New("f32", 4, 1)
	b := New("f32", 4, 1)
	assert.Equal(t, a, b)
	assert.Equal(t, F32, a)
}

func TestZeroGroupSizeNormalizesToOne(t *testing.T) {
	l := New("x", 2, 0)
	assert.Equal(t, uint32(1), l.GroupSize())
}

func TestFingerprintDeterministicAndDistinguishing(t *testing.T) {
	f1 := F32.Fingerprint()
	f2 := F32.Fingerprint()
	assert.Equal(t, f1, f2)
	assert.NotEqual(t, f1, F16.Fingerprint())
	assert.NotEqual(t, F32.Fingerprint(), Q8_0.Fingerprint())
}

func TestStringIncludesGroupSizeOnlyWhenQuantized(t *testing.T) {
	assert.NotContains(t, F32.String(), "g=")
	assert.Contains(t, Q8_0.String(), "g=32")
}
