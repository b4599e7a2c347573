// Package digit provides DigitLayout, the opaque element-type descriptor
// consumed (never interpreted) by the rest of this module: an element size
// in bytes plus an optional quantization group size. This stands in for the
// "external interface" type spec.md §6 describes as owned by a collaborator
// outside the compiler core — here it is implemented directly since no
// concrete element-type crate is part of this pack.
package digit

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Layout is an opaque, comparable element-type descriptor. Two Layouts
// compare equal with == iff they have the same name, element size and group
// size; callers should treat the zero value as invalid (NBytes() == 0).
type Layout struct {
	name      string
	nbytes    uint32
	groupSize uint32
}

// New constructs a Layout. groupSize must be >= 1; a groupSize of 1 means
// "not quantized" (every shape dimension counts elements, not groups).
func New(name string, nbytes, groupSize uint32) Layout {
	if groupSize == 0 {
		groupSize = 1
	}
	return Layout{name: name, nbytes: nbytes, groupSize: groupSize}
}

func (l Layout) Name() string      { return l.name }
func (l Layout) NBytes() uint32    { return l.nbytes }
func (l Layout) GroupSize() uint32 { return l.groupSize }

// Fingerprint returns a short, human-legible identifier for l, suitable for
// log lines and error messages that enumerate many dtypes at once: base58 of
// the 8-byte packed (nbytes, groupSize) pair.
func (l Layout) Fingerprint() string {
	packed := [8]byte{
		byte(l.nbytes >> 24), byte(l.nbytes >> 16), byte(l.nbytes >> 8), byte(l.nbytes),
		byte(l.groupSize >> 24), byte(l.groupSize >> 16), byte(l.groupSize >> 8), byte(l.groupSize),
	}
	return base58.Encode(packed[:])
}

func (l Layout) String() string {
	if l.groupSize > 1 {
		return fmt.Sprintf("%s(%dB,g=%d)", l.name, l.nbytes, l.groupSize)
	}
	return fmt.Sprintf("%s(%dB)", l.name, l.nbytes)
}

// Canonical element types, mirroring the small vocabulary actually exercised
// by the operator table (spec.md §4.B) and the end-to-end scenarios (§8).
var (
	F32 = New("f32", 4, 1)
	F16 = New("f16", 2, 1)
	U32 = New("u32", 4, 1)
	U8  = New("u8", 1, 1)
	// Q8_0 is a minimal stand-in for a group-quantized dtype: 34 bytes pack
	// a group of 32 int8 elements plus a scale, so its last declared shape
	// dimension is divided by 32 at TensorMeta construction time.
	Q8_0 = New("q8_0", 34, 32)
)
