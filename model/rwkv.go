package model

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/nnctx"
)

// allReduceSum sums h across tensor-parallel shards when dist is not the
// trivial single-shard case, leaving h untouched otherwise.
func allReduceSum(ctx *nnctx.Context, h nnctx.Handle, dist Distribution) (nnctx.Handle, error) {
	if dist.IsMono() {
		return h, nil
	}
	op := arg.Str("sum")
	out, err := ctx.Call("all-reduce", &op, h)
	if err != nil {
		return nnctx.Handle{}, err
	}
	return out[0], nil
}

// RWKVTimeMix is RWKV's linear-attention-style token mixing: receptance,
// key, and value projections feed a gated output that an output projection
// folds back into the residual stream.
type RWKVTimeMix struct {
	Receptance Linear
	Key        Linear
	Value      Linear
	Output     Linear
	Dist       Distribution
}

// Launch expects inputs = [x].
func (t RWKVTimeMix) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x := inputs[0]

	var err error
	var r, k, v []nnctx.Handle
	ctx.Namespace("receptance", func() { r, err = t.Receptance.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}
	ctx.Namespace("key", func() { k, err = t.Key.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}
	ctx.Namespace("value", func() { v, err = t.Value.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}

	sig, err := ctx.Call("silu", nil, r[0])
	if err != nil {
		return nil, err
	}
	wkv, err := ctx.Call("element-mul", nil, k[0], v[0])
	if err != nil {
		return nil, err
	}
	gated, err := ctx.Call("element-mul", nil, sig[0], wkv[0])
	if err != nil {
		return nil, err
	}

	var out []nnctx.Handle
	ctx.Namespace("output", func() { out, err = t.Output.Launch(ctx, []nnctx.Handle{gated[0]}) })
	if err != nil {
		return nil, err
	}
	reduced, err := allReduceSum(ctx, out[0], t.Dist)
	if err != nil {
		return nil, err
	}
	return []nnctx.Handle{reduced}, nil
}

// RWKVChannelMix is RWKV's position-wise feed-forward: a squared-ReLU-like
// gate (approximated here with GeLU, matching the activations the registry
// actually exposes) modulating a value projection.
type RWKVChannelMix struct {
	Key    Linear
	Value  Linear
	Recept Linear
}

// Launch expects inputs = [x].
func (c RWKVChannelMix) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x := inputs[0]

	var err error
	var k []nnctx.Handle
	ctx.Namespace("key", func() { k, err = c.Key.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}
	act, err := ctx.Call("gelu", nil, k[0])
	if err != nil {
		return nil, err
	}
	var v []nnctx.Handle
	ctx.Namespace("value", func() { v, err = c.Value.Launch(ctx, []nnctx.Handle{act[0]}) })
	if err != nil {
		return nil, err
	}
	var r []nnctx.Handle
	ctx.Namespace("receptance", func() { r, err = c.Recept.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}
	sig, err := ctx.Call("silu", nil, r[0])
	if err != nil {
		return nil, err
	}
	return ctx.Call("element-mul", nil, sig[0], v[0])
}

// RWKVBlk pairs a time-mix and channel-mix sublayer, each over its own
// pre-norm and residual stream.
type RWKVBlk struct {
	TimeNorm    Normalization
	TimeMix     RWKVTimeMix
	ChannelNorm Normalization
	ChannelMix  RWKVChannelMix
}

// Launch expects inputs = [x].
func (b RWKVBlk) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x := inputs[0]
	residual := x

	var err error
	var normed []nnctx.Handle
	ctx.Namespace("time-norm", func() { normed, err = b.TimeNorm.Launch(ctx, []nnctx.Handle{x}) })
	if err != nil {
		return nil, err
	}
	var timeOut []nnctx.Handle
	ctx.Namespace("time-mix", func() { timeOut, err = b.TimeMix.Launch(ctx, []nnctx.Handle{normed[0]}) })
	if err != nil {
		return nil, err
	}
	summed, err := ctx.Call("add", nil, timeOut[0], residual)
	if err != nil {
		return nil, err
	}
	residual = summed[0]

	var chNormed []nnctx.Handle
	ctx.Namespace("channel-norm", func() { chNormed, err = b.ChannelNorm.Launch(ctx, []nnctx.Handle{residual}) })
	if err != nil {
		return nil, err
	}
	var chOut []nnctx.Handle
	ctx.Namespace("channel-mix", func() { chOut, err = b.ChannelMix.Launch(ctx, []nnctx.Handle{chNormed[0]}) })
	if err != nil {
		return nil, err
	}
	return ctx.Call("add", nil, chOut[0], residual)
}
