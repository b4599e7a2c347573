// Package layout implements ArrayLayout, the strided-view description of how
// a tensor's logical shape maps onto a flat buffer of elements. Every
// operation here is a pure transform of shape/stride/offset metadata; none
// of them touch any actual element data, matching the source's separation
// between ArrayLayout (pure metadata) and its backing blob.
package layout

import "fmt"

// ArrayLayout describes one tensor's view over a buffer: Shape[i] elements
// along axis i, each step along axis i advancing Strides[i] elements, with
// Offset elements skipped at the front. Shape and Strides always have equal
// length (the rank). A freshly constructed contiguous layout uses
// big-endian (row-major, C-order) strides: the last axis is contiguous.
type ArrayLayout struct {
	Shape   []uint64
	Strides []int64
	Offset  int64
}

// NewContiguous builds the canonical row-major layout for shape: strides
// decrease from the outermost axis in, with the last axis having stride 1.
func NewContiguous(shape []uint64) ArrayLayout {
	n := len(shape)
	strides := make([]int64, n)
	acc := int64(1)
	for i := n - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= int64(shape[i])
	}
	return ArrayLayout{Shape: append([]uint64{}, shape...), Strides: strides}
}

// Rank returns the number of axes.
func (l ArrayLayout) Rank() int { return len(l.Shape) }

// NumElements returns the product of Shape; 1 for a rank-0 (scalar) layout.
func (l ArrayLayout) NumElements() uint64 {
	n := uint64(1)
	for _, s := range l.Shape {
		n *= s
	}
	return n
}

func (l ArrayLayout) clone() ArrayLayout {
	return ArrayLayout{
		Shape:   append([]uint64{}, l.Shape...),
		Strides: append([]int64{}, l.Strides...),
		Offset:  l.Offset,
	}
}

func (l ArrayLayout) checkAxis(axis int) error {
	if axis < 0 || axis >= l.Rank() {
		return fmt.Errorf("layout: axis %d out of range for rank %d", axis, l.Rank())
	}
	return nil
}

// Index computes the flat element offset addressed by indices, one per
// axis. It panics if len(indices) != Rank() or any index is out of bounds —
// both are programmer errors, never a data-dependent condition.
func (l ArrayLayout) Index(indices []uint64) int64 {
	if len(indices) != l.Rank() {
		panic(fmt.Sprintf("layout: index has %d components, layout has rank %d", len(indices), l.Rank()))
	}
	off := l.Offset
	for i, idx := range indices {
		if idx >= l.Shape[i] {
			panic(fmt.Sprintf("layout: index %d out of bounds for axis %d of size %d", idx, i, l.Shape[i]))
		}
		off += int64(idx) * l.Strides[i]
	}
	return off
}

// Slice narrows axis to the half-open range [start, start+length), keeping
// the axis's stride (so the resulting view remains a uniform strided walk)
// and advancing Offset to the first selected element.
func (l ArrayLayout) Slice(axis int, start, length uint64) (ArrayLayout, error) {
	if err := l.checkAxis(axis); err != nil {
		return ArrayLayout{}, err
	}
	if start+length > l.Shape[axis] {
		return ArrayLayout{}, fmt.Errorf("layout: slice [%d,%d) exceeds axis %d of size %d", start, start+length, axis, l.Shape[axis])
	}
	out := l.clone()
	out.Offset += int64(start) * l.Strides[axis]
	out.Shape[axis] = length
	return out, nil
}

// Tile repeats the layout n times along a new outermost axis 0 by giving
// that axis stride 0: every repetition reads the same underlying elements.
func (l ArrayLayout) Tile(n uint64) ArrayLayout {
	out := ArrayLayout{
		Shape:   append([]uint64{n}, l.Shape...),
		Strides: append([]int64{0}, l.Strides...),
		Offset:  l.Offset,
	}
	return out
}

// Transpose returns a view with axes permuted according to perm: axis i of
// the result is axis perm[i] of l. perm must be a permutation of
// [0, Rank()).
func (l ArrayLayout) Transpose(perm []int) (ArrayLayout, error) {
	if len(perm) != l.Rank() {
		return ArrayLayout{}, fmt.Errorf("layout: permutation has %d entries, layout has rank %d", len(perm), l.Rank())
	}
	seen := make([]bool, l.Rank())
	shape := make([]uint64, l.Rank())
	strides := make([]int64, l.Rank())
	for i, p := range perm {
		if p < 0 || p >= l.Rank() || seen[p] {
			return ArrayLayout{}, fmt.Errorf("layout: %v is not a valid permutation of rank %d", perm, l.Rank())
		}
		seen[p] = true
		shape[i] = l.Shape[p]
		strides[i] = l.Strides[p]
	}
	return ArrayLayout{Shape: shape, Strides: strides, Offset: l.Offset}, nil
}

// Broadcast expands l to target, which must agree with l.Shape on every
// axis where l.Shape[i] != 1; axes where l has size 1 get stride 0 and the
// target's size. Both slices must have equal length (no implicit rank
// padding — callers reshape to equal rank first).
func (l ArrayLayout) Broadcast(target []uint64) (ArrayLayout, error) {
	if len(target) != l.Rank() {
		return ArrayLayout{}, fmt.Errorf("layout: broadcast target has %d axes, layout has rank %d", len(target), l.Rank())
	}
	shape := make([]uint64, l.Rank())
	strides := make([]int64, l.Rank())
	for i, t := range target {
		switch {
		case l.Shape[i] == t:
			shape[i], strides[i] = t, l.Strides[i]
		case l.Shape[i] == 1:
			shape[i], strides[i] = t, 0
		default:
			return ArrayLayout{}, fmt.Errorf("layout: cannot broadcast axis %d of size %d to %d", i, l.Shape[i], t)
		}
	}
	return ArrayLayout{Shape: shape, Strides: strides, Offset: l.Offset}, nil
}

// Merge collapses the contiguous run of axes [first, last] into a single
// axis, and requires that run to actually be contiguous in memory (stride
// of axis i equals Shape[i+1] * stride of axis i+1, for each adjacent pair)
// — a merge across a view with gaps (e.g. after a Slice) is not a pure
// metadata operation and must fail rather than silently misdescribe memory.
func (l ArrayLayout) Merge(first, last int) (ArrayLayout, error) {
	if first < 0 || last >= l.Rank() || first > last {
		return ArrayLayout{}, fmt.Errorf("layout: invalid merge range [%d,%d] for rank %d", first, last, l.Rank())
	}
	for i := first; i < last; i++ {
		if l.Strides[i] != int64(l.Shape[i+1])*l.Strides[i+1] {
			return ArrayLayout{}, fmt.Errorf("layout: axes %d and %d are not contiguous, cannot merge", i, i+1)
		}
	}
	merged := uint64(1)
	for i := first; i <= last; i++ {
		merged *= l.Shape[i]
	}
	shape := append([]uint64{}, l.Shape[:first]...)
	shape = append(shape, merged)
	shape = append(shape, l.Shape[last+1:]...)

	strides := append([]int64{}, l.Strides[:first]...)
	strides = append(strides, l.Strides[last])
	strides = append(strides, l.Strides[last+1:]...)

	return ArrayLayout{Shape: shape, Strides: strides, Offset: l.Offset}, nil
}

// Split breaks axis into len(parts) new consecutive axes whose product
// equals the original axis size, in row-major order (parts[0] is the
// slowest-varying of the new axes).
func (l ArrayLayout) Split(axis int, parts []uint64) (ArrayLayout, error) {
	if err := l.checkAxis(axis); err != nil {
		return ArrayLayout{}, err
	}
	prod := uint64(1)
	for _, p := range parts {
		prod *= p
	}
	if prod != l.Shape[axis] {
		return ArrayLayout{}, fmt.Errorf("layout: split parts %v product %d does not match axis %d size %d", parts, prod, axis, l.Shape[axis])
	}

	newStrides := make([]int64, len(parts))
	acc := l.Strides[axis]
	for i := len(parts) - 1; i >= 0; i-- {
		newStrides[i] = acc
		acc *= int64(parts[i])
	}

	shape := append([]uint64{}, l.Shape[:axis]...)
	shape = append(shape, parts...)
	shape = append(shape, l.Shape[axis+1:]...)

	strides := append([]int64{}, l.Strides[:axis]...)
	strides = append(strides, newStrides...)
	strides = append(strides, l.Strides[axis+1:]...)

	return ArrayLayout{Shape: shape, Strides: strides, Offset: l.Offset}, nil
}

func (l ArrayLayout) String() string {
	return fmt.Sprintf("ArrayLayout{shape=%v, strides=%v, offset=%d}", l.Shape, l.Strides, l.Offset)
}
