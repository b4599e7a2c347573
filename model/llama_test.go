package model

import (
	"testing"

	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/digit"
	"github.com/nnvm-go/nnvm/nnctx"
	"github.com/nnvm-go/nnvm/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weight(ctx *nnctx.Context, name string, shape ...dim.Dim) nnctx.Handle {
	return ctx.LoadExternal(name, tensor.New(digit.F32, shape...))
}

func buildTinyLLaMA(ctx *nnctx.Context, hidden, heads, vocab uint64) LLaMA {
	d := dim.Const(hidden)
	v := dim.Const(vocab)
	dh := dim.Const(hidden / heads)

	newLinear := func(name string, out, in dim.Dim) Linear {
		return Linear{Weight: weight(ctx, name, out, in)}
	}
	newNorm := func(name string) Normalization {
		return Normalization{Kind: RmsNorm, Scale: weight(ctx, name, d), Epsilon: 1e-5}
	}

	blk := TransformerBlk{
		AttnNorm: newNorm("attn-norm.scale"),
		Attn: Attention{
			Nh: heads, Nkvh: heads,
			QKV: QKVFormat{
				Q: ptrLinear(newLinear("wq", d, d)),
				K: ptrLinear(newLinear("wk", d, d)),
				V: ptrLinear(newLinear("wv", d, d)),
			},
			Rope: &RoPE{
				Sin: weight(ctx, "rope.sin", dim.Const(4096), dh.DivU(2)),
				Cos: weight(ctx, "rope.cos", dim.Const(4096), dh.DivU(2)),
			},
			Output: newLinear("wo", d, d),
		},
		FfnNorm: newNorm("ffn-norm.scale"),
		Ffn: Mlp{
			Gate: newLinear("w-gate", d.MulU(4), d),
			Up:   newLinear("w-up", d.MulU(4), d),
			Down: newLinear("w-down", d, d.MulU(4)),
		},
	}

	return LLaMA{
		Embedding: Embedding{Wte: weight(ctx, "wte", v, d)},
		Blocks:    []TransformerBlk{blk},
		OutNorm:   newNorm("out-norm.scale"),
		LMHead:    newLinear("lm-head", v, d),
	}
}

func ptrLinear(l Linear) *Linear { return &l }

func TestLLaMALaunchProducesValidGraph(t *testing.T) {
	ctx := nnctx.New()
	llama := buildTinyLLaMA(ctx, 64, 4, 1000)

	n := dim.Var("n")
	m := dim.Var("m")
	tokens := ctx.Input("tokens", tensor.New(digit.U32, n))
	pos := ctx.Input("pos", tensor.New(digit.U32, n))
	outIdx := ctx.Input("out-idx", tensor.New(digit.U32, m))

	out, err := llama.Launch(ctx, []nnctx.Handle{tokens, pos, outIdx})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Meta().Shape[1].Equal(dim.Const(1000)))

	g, err := ctx.Finish(out[0])
	require.NoError(t, err)
	assert.Greater(t, len(g.Nodes), 10)
}

func TestMambaBlkLaunchProducesValidGraph(t *testing.T) {
	ctx := nnctx.New()
	d := dim.Const(32)
	dState := dim.Const(16)
	blk := MambaBlk{
		Norm:      Normalization{Kind: RmsNorm, Scale: weight(ctx, "norm.scale", d), Epsilon: 1e-5},
		InProj:    Linear{Weight: weight(ctx, "in-proj", d.MulU(2), d)},
		ConvW:     weight(ctx, "conv.w", d, dim.Const(4)),
		ConvB:     weight(ctx, "conv.b", d),
		DeltaProj: Linear{Weight: weight(ctx, "delta-proj", d, d)},
		BProj:     Linear{Weight: weight(ctx, "b-proj", dState, d)},
		CProj:     Linear{Weight: weight(ctx, "c-proj", dState, d)},
		A:         weight(ctx, "a", d, dState),
		D:         weight(ctx, "d", d),
		OutProj:   Linear{Weight: weight(ctx, "out-proj", d, d)},
	}

	n := dim.Var("n")
	x := ctx.Input("x", tensor.New(digit.F32, n, d))

	out, err := blk.Launch(ctx, []nnctx.Handle{x})
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = ctx.Finish(out[0])
	require.NoError(t, err)
}

func TestRWKVBlkLaunchProducesValidGraph(t *testing.T) {
	ctx := nnctx.New()
	d := dim.Const(32)
	newLinear := func(name string) Linear { return Linear{Weight: weight(ctx, name, d, d)} }

	blk := RWKVBlk{
		TimeNorm: Normalization{Kind: RmsNorm, Scale: weight(ctx, "time-norm.scale", d), Epsilon: 1e-5},
		TimeMix: RWKVTimeMix{
			Receptance: newLinear("time.r"),
			Key:        newLinear("time.k"),
			Value:      newLinear("time.v"),
			Output:     newLinear("time.o"),
			Dist:       MonoDistribution,
		},
		ChannelNorm: Normalization{Kind: RmsNorm, Scale: weight(ctx, "channel-norm.scale", d), Epsilon: 1e-5},
		ChannelMix: RWKVChannelMix{
			Key:    newLinear("chan.k"),
			Value:  newLinear("chan.v"),
			Recept: newLinear("chan.r"),
		},
	}

	n := dim.Var("n")
	x := ctx.Input("x", tensor.New(digit.F32, n, d))
	out, err := blk.Launch(ctx, []nnctx.Handle{x})
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = ctx.Finish(out[0])
	require.NoError(t, err)
}

func TestRWKVTimeMixAllReducesWhenSharded(t *testing.T) {
	ctx := nnctx.New()
	d := dim.Const(32)
	newLinear := func(name string) Linear { return Linear{Weight: weight(ctx, name, d, d)} }
	dist, err := NewDistribution(0, 1, 2)
	require.NoError(t, err)

	mix := RWKVTimeMix{
		Receptance: newLinear("r"),
		Key:        newLinear("k"),
		Value:      newLinear("v"),
		Output:     newLinear("o"),
		Dist:       dist,
	}

	n := dim.Var("n")
	x := ctx.Input("x", tensor.New(digit.F32, n, d))
	out, err := mix.Launch(ctx, []nnctx.Handle{x})
	require.NoError(t, err)
	require.Len(t, out, 1)

	g, err := ctx.Finish(out[0])
	require.NoError(t, err)

	foundAllReduce := false
	for _, node := range g.Nodes {
		if node.Op == "all-reduce" {
			foundAllReduce = true
		}
	}
	assert.True(t, foundAllReduce, "sharded time-mix output must be all-reduced")
}

func TestCogVLMMergerLaunchProducesValidGraph(t *testing.T) {
	ctx := nnctx.New()
	d := dim.Const(16)
	merger := CogVLMMerger{
		Mlp: Mlp{
			Gate: Linear{Weight: weight(ctx, "merger.gate", d, d.MulU(4))},
			Up:   Linear{Weight: weight(ctx, "merger.up", d, d.MulU(4))},
			Down: Linear{Weight: weight(ctx, "merger.down", d, d)},
		},
	}

	n := dim.Const(8)
	x := ctx.Input("patches", tensor.New(digit.F32, n, d))
	out, err := merger.Launch(ctx, []nnctx.Handle{x})
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = ctx.Finish(out[0])
	require.NoError(t, err)
}

func TestDistributionRejectsOutOfRangeShard(t *testing.T) {
	_, err := NewDistribution(2, 1, 2)
	assert.Error(t, err)
}

func TestCopyRowSliceCopiesCorrectBand(t *testing.T) {
	full := make([]byte, 16)
	for i := range full {
		full[i] = byte(i)
	}
	dist, err := NewDistribution(1, 1, 4)
	require.NoError(t, err)
	dst := make([]byte, 4)
	ColumnTPWeight{}.MoveData(dist, dst, full, 4)
	assert.Equal(t, []byte{4, 5, 6, 7}, dst)
}

func TestAttentionTensorParallelShardsHeadsAndRowParallelsOutput(t *testing.T) {
	ctx := nnctx.New()
	hidden := dim.Const(64)
	dist, err := NewDistribution(0, 1, 2)
	require.NoError(t, err)

	attn := AttentionTensorParallel(ctx, hidden, 8, 8, dist, nil)
	assert.Equal(t, uint64(4), attn.Nh)
	assert.Equal(t, uint64(4), attn.Nkvh)

	n := dim.Var("n")
	x := ctx.Input("x", tensor.New(digit.F32, n, hidden))
	out, err := attn.Launch(ctx, []nnctx.Handle{x, x, x})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Meta().Shape[1].Equal(hidden))

	_, err = ctx.Finish(out[0])
	require.NoError(t, err)
}

func TestMlpTensorParallelShardsFfnWidth(t *testing.T) {
	ctx := nnctx.New()
	hidden := dim.Const(32)
	ffn := dim.Const(128)
	dist, err := NewDistribution(1, 1, 4)
	require.NoError(t, err)

	mlp := MlpTensorParallel(ctx, hidden, ffn, dist)
	assert.True(t, mlp.Gate.Weight.Meta().Shape[0].Equal(dim.Const(32)))
	assert.True(t, mlp.Down.Weight.Meta().Shape[1].Equal(dim.Const(32)))

	n := dim.Var("n")
	x := ctx.Input("x", tensor.New(digit.F32, n, hidden))
	out, err := mlp.Launch(ctx, []nnctx.Handle{x})
	require.NoError(t, err)
	assert.True(t, out[0].Meta().Shape[1].Equal(hidden))
}

func TestEmbeddingTensorParallelShardsVocab(t *testing.T) {
	ctx := nnctx.New()
	vocab := dim.Const(1000)
	hidden := dim.Const(32)
	dist, err := NewDistribution(0, 1, 4)
	require.NoError(t, err)

	emb := EmbeddingTensorParallel(ctx, vocab, hidden, dist)
	assert.True(t, emb.Wte.Meta().Shape[0].Equal(dim.Const(250)))
}

func TestAttentionMropeDispatchesToMropeOp(t *testing.T) {
	ctx := nnctx.New()
	d := dim.Const(16)
	n := dim.Var("n")

	a := Attention{
		Nh: 4, Nkvh: 4,
		QKV: QKVFormat{
			Q: ptrLinear(Linear{Weight: weight(ctx, "q", d, d)}),
			K: ptrLinear(Linear{Weight: weight(ctx, "k", d, d)}),
			V: ptrLinear(Linear{Weight: weight(ctx, "v", d, d)}),
		},
		Rope: &RoPE{
			Sin:   weight(ctx, "sin", dim.Const(4096), dim.Const(2)),
			Cos:   weight(ctx, "cos", dim.Const(4096), dim.Const(2)),
			Multi: true,
		},
		Output: Linear{Weight: weight(ctx, "wo", d, d)},
	}

	x := ctx.Input("x", tensor.New(digit.F32, n, d))
	pos := ctx.Input("pos", tensor.New(digit.U32, n, dim.Const(3)))
	residual := x

	out, err := a.Launch(ctx, []nnctx.Handle{x, pos, residual})
	require.NoError(t, err)
	require.Len(t, out, 1)

	g, err := ctx.Finish(out[0])
	require.NoError(t, err)

	foundMrope := false
	for _, node := range g.Nodes {
		if node.Op == "mrope" {
			foundMrope = true
		}
	}
	assert.True(t, foundMrope)
}
