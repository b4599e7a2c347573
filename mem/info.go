// Package mem defines Info, the identity-keyed record of one allocated
// buffer shared by the lower and plan packages: lower creates one Info per
// storage-graph tensor that actually needs backing memory (view-fused
// tensors share their source's Info instead of getting their own), and plan
// assigns each Info a lifetime and, ultimately, a byte offset.
package mem

// Info is a single allocation: its size in bytes. Two Infos are the same
// allocation iff they are the same pointer — never compare Infos by value,
// and never put a non-pointer Info in a map keyed for identity; use *Info
// throughout so Go's native pointer identity does the job the source's
// KeyWeak wrapper exists for.
type Info struct {
	Size uint64
}

// New allocates a fresh Info of the given size. Every call returns a
// distinct identity, even for equal sizes.
func New(size uint64) *Info {
	return &Info{Size: size}
}

// Range is a half-open byte range [Off, Off+Len) within the single
// workspace buffer the plan package lays out.
type Range struct {
	Off uint64
	Len uint64
}

// End returns Off + Len.
func (r Range) End() uint64 { return r.Off + r.Len }

// Overlaps reports whether r and o share any byte.
func (r Range) Overlaps(o Range) bool {
	return r.Off < o.End() && o.Off < r.End()
}
