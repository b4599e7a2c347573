package model

import (
	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/nnctx"
)

// QKVFormat selects how an Attention block produces its query/key/value
// projections: either one fused projection later split three ways, or
// three independent projections.
type QKVFormat struct {
	Combined *Linear
	Q, K, V  *Linear
}

// RoPE carries the precomputed rotary tables an Attention block applies to
// q and k before the dot-product. Multi selects the multi-section variant
// used for interleaved text/vision position ids (e.g. Qwen2-VL style
// models), which calls "mrope" instead of "rope".
type RoPE struct {
	Sin, Cos nnctx.Handle
	Multi    bool
}

func (r RoPE) op() string {
	if r.Multi {
		return "mrope"
	}
	return "rope"
}

// Attention is scaled dot-product self-attention with an optional fused
// QKV projection, optional rotary position embedding, and a final output
// projection that also absorbs the block's residual connection.
type Attention struct {
	Nh, Nkvh uint64
	QKV      QKVFormat
	Rope     *RoPE
	Output   Linear
}

// Launch expects inputs = [x, pos, residual].
func (a Attention) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x, pos, residual := inputs[0], inputs[1], inputs[2]

	var q, k, v nnctx.Handle
	if a.QKV.Combined != nil {
		var err error
		var proj []nnctx.Handle
		ctx.Namespace("attn-qkv", func() {
			proj, err = a.QKV.Combined.Launch(ctx, []nnctx.Handle{x})
		})
		if err != nil {
			return nil, err
		}
		split := arg.Dict(map[string]arg.Arg{
			"axis": arg.Int(1),
			"parts": arg.Arr(
				arg.Dim(dim.Const(a.Nh)),
				arg.Dim(dim.Const(a.Nkvh)),
				arg.Dim(dim.Const(a.Nkvh)),
			),
		})
		out, err := ctx.Call("split", &split, proj[0])
		if err != nil {
			return nil, err
		}
		q, k, v = out[0], out[1], out[2]
	} else {
		var err error
		var qo, ko, vo []nnctx.Handle
		ctx.Namespace("attn-q", func() { qo, err = a.QKV.Q.Launch(ctx, []nnctx.Handle{x}) })
		if err != nil {
			return nil, err
		}
		ctx.Namespace("attn-k", func() { ko, err = a.QKV.K.Launch(ctx, []nnctx.Handle{x}) })
		if err != nil {
			return nil, err
		}
		ctx.Namespace("attn-v", func() { vo, err = a.QKV.V.Launch(ctx, []nnctx.Handle{x}) })
		if err != nil {
			return nil, err
		}
		q, k, v = qo[0], ko[0], vo[0]
	}

	if a.Rope != nil {
		op := a.Rope.op()
		qOut, err := ctx.Call(op, nil, q, pos, a.Rope.Sin, a.Rope.Cos)
		if err != nil {
			return nil, err
		}
		kOut, err := ctx.Call(op, nil, k, pos, a.Rope.Sin, a.Rope.Cos)
		if err != nil {
			return nil, err
		}
		q, k = qOut[0], kOut[0]
	}

	dh := q.Meta().Shape[1].DivU(a.Nh)
	dhArg := arg.Dim(dh)
	attnOut, err := ctx.Call("attention", &dhArg, q, k, v)
	if err != nil {
		return nil, err
	}

	var out []nnctx.Handle
	ctx.Namespace("attn-output", func() {
		out, err = a.Output.Launch(ctx, []nnctx.Handle{attnOut[0], residual})
	})
	return out, err
}
