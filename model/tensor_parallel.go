package model

import (
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/digit"
	"github.com/nnvm-go/nnvm/nnctx"
	"github.com/nnvm-go/nnvm/tensor"
)

// ShardSize returns the size one shard of dist owns out of a full axis of
// size full, assuming full divides evenly by Total.
func (d Distribution) ShardSize(full dim.Dim) dim.Dim {
	return full.DivU(d.Total).MulU(d.Len)
}

// columnParallelWeight declares a weight whose output rows are split
// column-parallel: this shard only owns a Len/Total band of outFull rows,
// full input width.
func columnParallelWeight(ctx *nnctx.Context, name string, outFull, in dim.Dim, dist Distribution) Linear {
	shard := dist.ShardSize(outFull)
	return Linear{Weight: ctx.LoadExternal(name, tensor.New(digit.F32, shard, in))}
}

// rowParallelWeight declares a weight whose input columns are split
// row-parallel: this shard owns full output width but only a Len/Total band
// of inFull columns, since its input arrived already sharded from an
// upstream column-parallel layer.
func rowParallelWeight(ctx *nnctx.Context, name string, out, inFull dim.Dim, dist Distribution) Linear {
	shard := dist.ShardSize(inFull)
	return Linear{Weight: ctx.LoadExternal(name, tensor.New(digit.F32, out, shard))}
}

// AttentionTensorParallel builds an Attention block whose Q/K/V projections
// are column-parallel-sharded (each shard owns a band of attention heads)
// and whose output projection is row-parallel (it consumes only the local
// shard's heads, then the caller must all-reduce-sum the result across
// shards — see RWKVTimeMix.Dist for the same pattern applied elsewhere).
// ratio is nh/nkvh, preserved through sharding since every shard still
// serves whole query/key/value heads.
func AttentionTensorParallel(ctx *nnctx.Context, hidden dim.Dim, nh, nkvh uint64, dist Distribution, rope *RoPE) Attention {
	shardNh := nh / dist.Total * dist.Len
	shardNkvh := nkvh / dist.Total * dist.Len
	headDim := hidden.DivU(nh)

	shardKV := headDim.MulU(shardNkvh)
	q := columnParallelWeight(ctx, "wq", hidden, hidden, dist)
	k := Linear{Weight: ctx.LoadExternal("wk", tensor.New(digit.F32, shardKV, hidden))}
	v := Linear{Weight: ctx.LoadExternal("wv", tensor.New(digit.F32, shardKV, hidden))}
	out := rowParallelWeight(ctx, "wo", hidden, hidden, dist)

	return Attention{
		Nh: shardNh, Nkvh: shardNkvh,
		QKV:    QKVFormat{Q: &q, K: &k, V: &v},
		Rope:   rope,
		Output: out,
	}
}

// MlpTensorParallel builds an Mlp whose gate/up projections are
// column-parallel and whose down projection is row-parallel, the standard
// Megatron-style split for a gated feed-forward block.
func MlpTensorParallel(ctx *nnctx.Context, hidden, ffnFull dim.Dim, dist Distribution) Mlp {
	return Mlp{
		Gate: columnParallelWeight(ctx, "w-gate", ffnFull, hidden, dist),
		Up:   columnParallelWeight(ctx, "w-up", ffnFull, hidden, dist),
		Down: rowParallelWeight(ctx, "w-down", hidden, ffnFull, dist),
	}
}

// NormalizationTensorParallel builds a Normalization whose scale (and bias,
// for LayerNorm) are replicated in full on every shard: normalization
// statistics are computed over the complete hidden axis, so unlike a linear
// projection there is nothing to shard here — this constructor exists so a
// tensor-parallel model can declare every weight through one consistent
// *TensorParallel entry point rather than special-casing normalization.
func NormalizationTensorParallel(ctx *nnctx.Context, kind NormKind, hidden dim.Dim, epsilon float64, _ Distribution) Normalization {
	n := Normalization{Kind: kind, Epsilon: epsilon, Scale: ctx.LoadExternal("norm.scale", tensor.New(digit.F32, hidden))}
	if kind == LayerNorm {
		n.Bias = ctx.LoadExternal("norm.bias", tensor.New(digit.F32, hidden))
	}
	return n
}

// EmbeddingTensorParallel builds an Embedding whose vocabulary axis is
// column-parallel-sharded: each shard owns a Len/Total band of rows of the
// token table, keyed by vocabFull.
func EmbeddingTensorParallel(ctx *nnctx.Context, vocabFull, hidden dim.Dim, dist Distribution) Embedding {
	shard := dist.ShardSize(vocabFull)
	return Embedding{Wte: ctx.LoadExternal("wte", tensor.New(digit.F32, shard, hidden))}
}
