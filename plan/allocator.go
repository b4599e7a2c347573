// Package plan implements Layer E: lifetime analysis over a storage graph
// plus a best-fit free-list allocator that assigns every live Info a byte
// offset within one shared workspace buffer.
package plan

import (
	"math"
	"sort"

	"github.com/nnvm-go/nnvm/mem"
)

type area struct {
	off uint64
	len uint64
}

// less orders areas by (len, off), the order the best-fit search relies on:
// the first area with len >= a requested size, smallest first, is the
// smallest region that still fits.
func (a area) less(b area) bool {
	if a.len != b.len {
		return a.len < b.len
	}
	return a.off < b.off
}

// Allocator is a best-fit, coalescing free-list allocator over a single
// growable workspace buffer. It starts empty (no bytes reserved) and grows
// its watermark only when Take cannot satisfy a request from already-freed
// space — so peak usage reflects genuine simultaneous liveness, not simply
// the sum of every allocation ever made.
type Allocator struct {
	alignment uint64
	free      []area // kept sorted by (len, off)
	heads     map[uint64]uint64 // offset -> len, for a free block starting there
	tails     map[uint64]uint64 // end offset -> len, for a free block ending there
	watermark uint64
}

// NewAllocator returns an Allocator that rounds every allocation up to a
// multiple of alignment. alignment must be a power of two; 1 disables
// rounding.
func NewAllocator(alignment uint64) *Allocator {
	if alignment == 0 {
		alignment = 1
	}
	return &Allocator{
		alignment: alignment,
		heads:     map[uint64]uint64{},
		tails:     map[uint64]uint64{},
	}
}

func (a *Allocator) alignUp(v uint64) uint64 {
	return (v + a.alignment - 1) / a.alignment * a.alignment
}

// insertFree adds r to the sorted free list.
func (a *Allocator) insertFree(r area) {
	i := sort.Search(len(a.free), func(i int) bool { return !a.free[i].less(r) })
	a.free = append(a.free, area{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = r
}

// removeFreeAt deletes the free-list entry at index i.
func (a *Allocator) removeFreeAt(i int) {
	a.free = append(a.free[:i], a.free[i+1:]...)
}

// Take reserves size bytes (rounded up to alignment), preferring the
// smallest already-freed region that still fits (best fit), splitting off
// and re-freeing any leftover. If no free region fits, it grows the
// workspace watermark instead. A zero-sized request returns the sentinel
// range {MaxUint64, MaxUint64} without touching the free list or watermark.
func (a *Allocator) Take(size uint64) mem.Range {
	if size == 0 {
		return mem.Range{Off: math.MaxUint64, Len: math.MaxUint64}
	}
	size = a.alignUp(size)

	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].len >= size })
	if i < len(a.free) {
		reg := a.free[i]
		a.removeFreeAt(i)
		delete(a.heads, reg.off)
		delete(a.tails, reg.off+reg.len)

		if leftover := reg.len - size; leftover > 0 {
			rest := area{off: reg.off + size, len: leftover}
			a.insertFree(rest)
			a.heads[rest.off] = rest.len
			a.tails[rest.off+rest.len] = rest.len
		}
		return mem.Range{Off: reg.off, Len: size}
	}

	off := a.watermark
	a.watermark += size
	return mem.Range{Off: off, Len: size}
}

// Put returns r to the free list, coalescing with any adjacent free region
// on either side using the heads/tails side tables so repeated Take/Put
// cycles don't fragment the workspace into ever-smaller pieces.
func (a *Allocator) Put(r mem.Range) {
	off, length := r.Off, r.Len

	if prevLen, ok := a.tails[off]; ok {
		prevOff := off - prevLen
		a.removeFreeExact(area{off: prevOff, len: prevLen})
		delete(a.heads, prevOff)
		delete(a.tails, off)
		off = prevOff
		length += prevLen
	}
	if nextLen, ok := a.heads[off+length]; ok {
		nextOff := off + length
		a.removeFreeExact(area{off: nextOff, len: nextLen})
		delete(a.heads, nextOff)
		delete(a.tails, nextOff+nextLen)
		length += nextLen
	}

	reg := area{off: off, len: length}
	a.insertFree(reg)
	a.heads[reg.off] = reg.len
	a.tails[reg.off+reg.len] = reg.len
}

func (a *Allocator) removeFreeExact(r area) {
	i := sort.Search(len(a.free), func(i int) bool { return !a.free[i].less(r) })
	for i < len(a.free) && a.free[i].len == r.len {
		if a.free[i].off == r.off {
			a.removeFreeAt(i)
			return
		}
		i++
	}
}

// Watermark returns the total workspace size required so far: the high
// water mark of bytes ever handed out by Take, which — because Put
// recycles freed space back into future Takes — is the plan's peak
// simultaneous memory usage, not the sum of all allocations made.
func (a *Allocator) Watermark() uint64 { return a.watermark }
