package model

import "fmt"

// Distribution describes one shard's slice of a tensor-parallel split: this
// shard owns [Start, Start+Len) of Total equal-sized shards. MonoDistribution
// is the trivial "no sharding" case.
type Distribution struct {
	Start, Len, Total uint64
}

// MonoDistribution is the identity distribution: one shard owning
// everything.
var MonoDistribution = Distribution{Start: 0, Len: 1, Total: 1}

// NewDistribution validates and constructs a Distribution.
func NewDistribution(start, length, total uint64) (Distribution, error) {
	if length == 0 || start+length > total {
		return Distribution{}, fmt.Errorf("model: invalid distribution start=%d len=%d total=%d", start, length, total)
	}
	return Distribution{Start: start, Len: length, Total: total}, nil
}

// IsMono reports whether this distribution is the trivial single-shard case.
func (d Distribution) IsMono() bool { return d.Len == d.Total }

// WeightType knows how a particular weight tensor's on-disk layout splits
// across tensor-parallel shards: attention QKV weights split differently
// from a plain column- or row-parallel linear weight, since QKV packs
// multiple logically-independent blocks (with a different head count ratio
// for grouped-query attention) into one tensor.
type WeightType interface {
	// MoveData copies the byte range belonging to dist out of a full,
	// unsharded weight's row-major bytes into dst.
	MoveData(dist Distribution, dst []byte, full []byte, rowBytes uint64)
}

// AttnQKV splits a fused QKV weight, whose output rows are packed as
// nh query heads followed by nkvh key heads followed by nkvh value heads;
// ratio is nh/nkvh, needed because query and key/value heads are sharded at
// the same granularity despite query having `ratio` as many heads.
type AttnQKV struct{ Ratio uint64 }

func (w AttnQKV) MoveData(dist Distribution, dst, full []byte, rowBytes uint64) {
	kvBytes := uint64(len(full)) / (w.Ratio + 2)
	qBytes := kvBytes * w.Ratio
	qDst := qBytes / dist.Total * dist.Len
	kvDst := kvBytes / dist.Total * dist.Len
	copyRowSlice(dist, dst[:qDst], full[:qBytes], rowBytes)
	copyRowSlice(dist, dst[qDst:qDst+kvDst], full[qBytes:qBytes+kvBytes], rowBytes)
	copyRowSlice(dist, dst[qDst+kvDst:], full[qBytes+kvBytes:], rowBytes)
}

// ColumnTPWeight splits a weight along its output (row) dimension: each
// shard owns a contiguous band of output rows.
type ColumnTPWeight struct{}

func (ColumnTPWeight) MoveData(dist Distribution, dst, full []byte, rowBytes uint64) {
	copyRowSlice(dist, dst, full, rowBytes)
}

// RowTPWeight splits a weight along its input (column) dimension instead of
// its output dimension — used for a block's second matrix (e.g. the
// attention output projection), whose inputs are already sharded coming in.
type RowTPWeight struct{}

func (RowTPWeight) MoveData(dist Distribution, dst, full []byte, rowBytes uint64) {
	rows := uint64(len(full)) / rowBytes
	shardBytes := rowBytes / dist.Total
	off := dist.Start * shardBytes
	length := dist.Len * shardBytes
	for r := uint64(0); r < rows; r++ {
		copy(dst[r*length:(r+1)*length], full[r*rowBytes+off:r*rowBytes+off+length])
	}
}

// FfnGateUp splits a fused gate+up MLP projection, whose output rows are
// packed as the gate half followed by the up half; both halves are sharded
// at the same granularity, independently of each other.
type FfnGateUp struct{}

func (FfnGateUp) MoveData(dist Distribution, dst, full []byte, rowBytes uint64) {
	half := uint64(len(full)) / 2
	dstHalf := uint64(len(dst)) / 2
	copyRowSlice(dist, dst[:dstHalf], full[:half], rowBytes)
	copyRowSlice(dist, dst[dstHalf:], full[half:], rowBytes)
}

// copyRowSlice copies the [Start, Start+Len) band of Total equal row-groups
// out of full into dst, each row being rowBytes wide.
func copyRowSlice(dist Distribution, dst, full []byte, rowBytes uint64) {
	totalRows := uint64(len(full)) / rowBytes
	rowsPerShard := totalRows / dist.Total
	off := dist.Start * rowsPerShard * rowBytes
	length := dist.Len * rowsPerShard * rowBytes
	copy(dst, full[off:off+length])
}

// TPAction records how a tensor-parallel Tensor handle was produced: which
// WeightType's splitting rule applies, under which Distribution.
type TPAction struct {
	Weight WeightType
	Dist   Distribution
}

// TPTensor wraps a value of type T with the TPAction that sharded it, or a
// nil Action if T is unsharded (mono).
type TPTensor[T any] struct {
	Action *TPAction
	Val    T
}

// FromValue wraps v with no sharding action.
func FromValue[T any](v T) TPTensor[T] { return TPTensor[T]{Val: v} }
