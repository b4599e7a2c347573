package model

import "github.com/nnvm-go/nnvm/nnctx"

// Mlp is a SwiGLU-gated feed-forward block: gate and up projections fused
// through SwiGLU, then a down projection back to the model's hidden size.
type Mlp struct {
	Gate Linear
	Up   Linear
	Down Linear
}

// Launch expects inputs = [x].
func (m Mlp) Launch(ctx *nnctx.Context, inputs []nnctx.Handle) ([]nnctx.Handle, error) {
	x := inputs[0]

	var gate, up nnctx.Handle
	var err error
	ctx.Namespace("gate-proj", func() {
		var out []nnctx.Handle
		out, err = m.Gate.Launch(ctx, []nnctx.Handle{x})
		if err == nil {
			gate = out[0]
		}
	})
	if err != nil {
		return nil, err
	}
	ctx.Namespace("up-proj", func() {
		var out []nnctx.Handle
		out, err = m.Up.Launch(ctx, []nnctx.Handle{x})
		if err == nil {
			up = out[0]
		}
	})
	if err != nil {
		return nil, err
	}

	act, err := Activation{Kind: SwiGLU}.Launch(ctx, []nnctx.Handle{gate, up})
	if err != nil {
		return nil, err
	}

	var down []nnctx.Handle
	ctx.Namespace("down-proj", func() {
		down, err = m.Down.Launch(ctx, act)
	})
	return down, err
}
