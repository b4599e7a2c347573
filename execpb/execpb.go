// Package execpb is the protobuf wire form of an exec.Plan: an
// out-of-process executor (explicitly out of scope for this module as a
// concrete kernel runner) can decode a Marshal'd Plan without linking
// against this module's Go types at all, only against the wire contract
// below. There is no exec.proto / protoc-generated exec.pb.go here — the
// encode/decode is hand-written directly against
// google.golang.org/protobuf/encoding/protowire's low-level tag/varint
// primitives, the same layer protoc-generated code itself compiles down to.
// The message shapes below are documented as if they were the .proto this
// wire format implements:
//
//	message Arg {
//	  uint32 kind = 1;       // mirrors arg.Kind
//	  bool bool_value = 2;
//	  uint64 int_value = 3;
//	  double float_value = 4;
//	  string str_value = 5;
//	  uint64 dim_const = 6;  // only set when kind == KindDim and the Dim is constant
//	  repeated Arg arr = 7;
//	  repeated DictEntry dict = 8;
//	}
//	message DictEntry { string key = 1; Arg value = 2; }
//	message Tensor {
//	  string name = 1;
//	  bool external = 2;
//	  uint32 dtype_nbytes = 3;
//	  uint32 dtype_group_size = 4;
//	  repeated uint64 shape = 5;
//	  repeated sint64 strides = 6;
//	  sint64 offset = 7;
//	  uint64 range_off = 8;
//	  uint64 range_len = 9;
//	}
//	message Step {
//	  string name = 1;
//	  string op = 2;
//	  Arg arg = 3;
//	  repeated Tensor inputs = 4;
//	  repeated Tensor outputs = 5;
//	}
//	message Plan {
//	  repeated Step steps = 1;
//	  uint64 workspace_size = 2;
//	}
//
// A Dim carried by a surviving node's Arg (e.g. attention's head-dim; fused
// view nodes such as "tile" reach Plan as "empty" with no Arg) is expected to already be a bound constant by the
// time a graph reaches Plan: Layer D only ever fuses and allocates, it never
// introduces new symbolic Dims, and every Dim a model author embeds directly
// in an Arg (as opposed to a tensor shape, which Substitute resolves) is
// itself a literal written at model-construction time. Marshal therefore
// refuses a non-constant Dim rather than silently losing its free variables.
package execpb

import (
	"fmt"
	"math"

	"github.com/nnvm-go/nnvm/arg"
	"github.com/nnvm-go/nnvm/dim"
	"github.com/nnvm-go/nnvm/exec"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldArgKind    protowire.Number = 1
	fieldArgBool    protowire.Number = 2
	fieldArgInt     protowire.Number = 3
	fieldArgFloat   protowire.Number = 4
	fieldArgStr     protowire.Number = 5
	fieldArgDim     protowire.Number = 6
	fieldArgArr     protowire.Number = 7
	fieldArgDict    protowire.Number = 8
	fieldDictKey    protowire.Number = 1
	fieldDictValue  protowire.Number = 2
	fieldTensorName     protowire.Number = 1
	fieldTensorExternal protowire.Number = 2
	fieldTensorNBytes   protowire.Number = 3
	fieldTensorGroup    protowire.Number = 4
	fieldTensorShape    protowire.Number = 5
	fieldTensorStrides  protowire.Number = 6
	fieldTensorOffset   protowire.Number = 7
	fieldTensorRangeOff protowire.Number = 8
	fieldTensorRangeLen protowire.Number = 9
	fieldStepName    protowire.Number = 1
	fieldStepOp      protowire.Number = 2
	fieldStepArg     protowire.Number = 3
	fieldStepInputs  protowire.Number = 4
	fieldStepOutputs protowire.Number = 5
	fieldPlanSteps protowire.Number = 1
	fieldPlanWorkspaceSize protowire.Number = 2
)

// MarshalPlan encodes p as the bytes of one protobuf Plan message, with no
// length prefix of its own.
func MarshalPlan(p exec.Plan) ([]byte, error) {
	var b []byte
	for _, s := range p.Steps {
		enc, err := marshalStep(s)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldPlanSteps, protowire.BytesType)
		b = protowire.AppendBytes(b, enc)
	}
	b = protowire.AppendTag(b, fieldPlanWorkspaceSize, protowire.VarintType)
	b = protowire.AppendVarint(b, p.WorkspaceSize)
	return b, nil
}

// UnmarshalPlan decodes a Plan encoded by MarshalPlan.
func UnmarshalPlan(b []byte) (exec.Plan, error) {
	var p exec.Plan
	for len(b) > 0 {
		num, typ, n, err := consumeTag(b)
		if err != nil {
			return exec.Plan{}, err
		}
		b = b[n:]
		switch num {
		case fieldPlanSteps:
			raw, n, err := consumeBytes(b)
			if err != nil {
				return exec.Plan{}, err
			}
			b = b[n:]
			step, err := unmarshalStep(raw)
			if err != nil {
				return exec.Plan{}, err
			}
			p.Steps = append(p.Steps, step)
		case fieldPlanWorkspaceSize:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Plan{}, err
			}
			b = b[n:]
			p.WorkspaceSize = v
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return exec.Plan{}, err
			}
			b = b[n:]
		}
	}
	return p, nil
}

func marshalStep(s exec.Step) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldStepName, protowire.BytesType)
	b = protowire.AppendString(b, s.Name)
	b = protowire.AppendTag(b, fieldStepOp, protowire.BytesType)
	b = protowire.AppendString(b, s.Op)
	if s.Arg != nil {
		enc, err := marshalArg(*s.Arg)
		if err != nil {
			return nil, fmt.Errorf("execpb: step %q: %w", s.Name, err)
		}
		b = protowire.AppendTag(b, fieldStepArg, protowire.BytesType)
		b = protowire.AppendBytes(b, enc)
	}
	for _, t := range s.Inputs {
		b = protowire.AppendTag(b, fieldStepInputs, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalTensor(t))
	}
	for _, t := range s.Outputs {
		b = protowire.AppendTag(b, fieldStepOutputs, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalTensor(t))
	}
	return b, nil
}

func unmarshalStep(b []byte) (exec.Step, error) {
	var s exec.Step
	for len(b) > 0 {
		num, typ, n, err := consumeTag(b)
		if err != nil {
			return exec.Step{}, err
		}
		b = b[n:]
		switch num {
		case fieldStepName:
			v, n, err := consumeString(b)
			if err != nil {
				return exec.Step{}, err
			}
			b = b[n:]
			s.Name = v
		case fieldStepOp:
			v, n, err := consumeString(b)
			if err != nil {
				return exec.Step{}, err
			}
			b = b[n:]
			s.Op = v
		case fieldStepArg:
			raw, n, err := consumeBytes(b)
			if err != nil {
				return exec.Step{}, err
			}
			b = b[n:]
			a, err := unmarshalArg(raw)
			if err != nil {
				return exec.Step{}, err
			}
			s.Arg = &a
		case fieldStepInputs:
			raw, n, err := consumeBytes(b)
			if err != nil {
				return exec.Step{}, err
			}
			b = b[n:]
			t, err := unmarshalTensor(raw)
			if err != nil {
				return exec.Step{}, err
			}
			s.Inputs = append(s.Inputs, t)
		case fieldStepOutputs:
			raw, n, err := consumeBytes(b)
			if err != nil {
				return exec.Step{}, err
			}
			b = b[n:]
			t, err := unmarshalTensor(raw)
			if err != nil {
				return exec.Step{}, err
			}
			s.Outputs = append(s.Outputs, t)
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return exec.Step{}, err
			}
			b = b[n:]
		}
	}
	return s, nil
}

func marshalTensor(t exec.Tensor) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldTensorName, protowire.BytesType)
	b = protowire.AppendString(b, t.Name)
	b = protowire.AppendTag(b, fieldTensorExternal, protowire.VarintType)
	b = protowire.AppendVarint(b, boolVarint(t.External))
	b = protowire.AppendTag(b, fieldTensorNBytes, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Dt.NBytes()))
	b = protowire.AppendTag(b, fieldTensorGroup, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Dt.GroupSize()))
	for _, s := range t.Layout.Shape {
		b = protowire.AppendTag(b, fieldTensorShape, protowire.VarintType)
		b = protowire.AppendVarint(b, s)
	}
	for _, s := range t.Layout.Strides {
		b = protowire.AppendTag(b, fieldTensorStrides, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(s))
	}
	b = protowire.AppendTag(b, fieldTensorOffset, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(t.Layout.Offset))
	b = protowire.AppendTag(b, fieldTensorRangeOff, protowire.VarintType)
	b = protowire.AppendVarint(b, t.Range.Off)
	b = protowire.AppendTag(b, fieldTensorRangeLen, protowire.VarintType)
	b = protowire.AppendVarint(b, t.Range.Len)
	return b
}

func unmarshalTensor(b []byte) (exec.Tensor, error) {
	var t exec.Tensor
	var nbytes, group uint32
	for len(b) > 0 {
		num, typ, n, err := consumeTag(b)
		if err != nil {
			return exec.Tensor{}, err
		}
		b = b[n:]
		switch num {
		case fieldTensorName:
			v, n, err := consumeString(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b, t.Name = b[n:], v
		case fieldTensorExternal:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b, t.External = b[n:], v != 0
		case fieldTensorNBytes:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b, nbytes = b[n:], uint32(v)
		case fieldTensorGroup:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b, group = b[n:], uint32(v)
		case fieldTensorShape:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b = b[n:]
			t.Layout.Shape = append(t.Layout.Shape, v)
		case fieldTensorStrides:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b = b[n:]
			t.Layout.Strides = append(t.Layout.Strides, protowire.DecodeZigZag(v))
		case fieldTensorOffset:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b, t.Layout.Offset = b[n:], protowire.DecodeZigZag(v)
		case fieldTensorRangeOff:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b, t.Range.Off = b[n:], v
		case fieldTensorRangeLen:
			v, n, err := consumeVarint(b)
			if err != nil {
				return exec.Tensor{}, err
			}
			b, t.Range.Len = b[n:], v
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return exec.Tensor{}, err
			}
			b = b[n:]
		}
	}
	t.Dt = digitLayout{nbytes: nbytes, groupSize: group}
	return t, nil
}

// digitLayout is the wire-decoded stand-in for tensor.Layout: execpb has no
// dependency on package digit's concrete dtype table, so a decoded Tensor
// only carries back the two fields tensor.Layout actually requires.
type digitLayout struct {
	nbytes    uint32
	groupSize uint32
}

func (d digitLayout) NBytes() uint32    { return d.nbytes }
func (d digitLayout) GroupSize() uint32 { return d.groupSize }

func marshalArg(a arg.Arg) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldArgKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(a.Kind()))

	switch a.Kind() {
	case arg.KindBool:
		v, _ := a.AsBool()
		b = protowire.AppendTag(b, fieldArgBool, protowire.VarintType)
		b = protowire.AppendVarint(b, boolVarint(v))
	case arg.KindInt:
		v, _ := a.AsInt()
		b = protowire.AppendTag(b, fieldArgInt, protowire.VarintType)
		b = protowire.AppendVarint(b, v)
	case arg.KindFloat:
		v, _ := a.AsFloat()
		b = protowire.AppendTag(b, fieldArgFloat, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	case arg.KindStr:
		v, _ := a.AsStr()
		b = protowire.AppendTag(b, fieldArgStr, protowire.BytesType)
		b = protowire.AppendString(b, v)
	case arg.KindDim:
		d, _ := a.AsDim()
		v, err := d.ToUsize()
		if err != nil {
			return nil, fmt.Errorf("execpb: arg carries a non-constant dim %q, cannot serialize: %w", d.String(), err)
		}
		b = protowire.AppendTag(b, fieldArgDim, protowire.VarintType)
		b = protowire.AppendVarint(b, v)
	case arg.KindArr:
		elems, _ := a.AsArr()
		for _, e := range elems {
			enc, err := marshalArg(e)
			if err != nil {
				return nil, err
			}
			b = protowire.AppendTag(b, fieldArgArr, protowire.BytesType)
			b = protowire.AppendBytes(b, enc)
		}
	case arg.KindDict:
		d, _ := a.AsDict()
		for k, v := range d {
			entry, err := marshalDictEntry(k, v)
			if err != nil {
				return nil, err
			}
			b = protowire.AppendTag(b, fieldArgDict, protowire.BytesType)
			b = protowire.AppendBytes(b, entry)
		}
	}
	return b, nil
}

func marshalDictEntry(key string, v arg.Arg) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldDictKey, protowire.BytesType)
	b = protowire.AppendString(b, key)
	enc, err := marshalArg(v)
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, fieldDictValue, protowire.BytesType)
	b = protowire.AppendBytes(b, enc)
	return b, nil
}

func unmarshalArg(b []byte) (arg.Arg, error) {
	var kind arg.Kind
	var boolVal bool
	var intVal uint64
	var floatVal float64
	var strVal string
	var arr []arg.Arg
	dict := map[string]arg.Arg{}
	haveDict := false

	for len(b) > 0 {
		num, typ, n, err := consumeTag(b)
		if err != nil {
			return arg.Arg{}, err
		}
		b = b[n:]
		switch num {
		case fieldArgKind:
			v, n, err := consumeVarint(b)
			if err != nil {
				return arg.Arg{}, err
			}
			b, kind = b[n:], arg.Kind(v)
		case fieldArgBool:
			v, n, err := consumeVarint(b)
			if err != nil {
				return arg.Arg{}, err
			}
			b, boolVal = b[n:], v != 0
		case fieldArgInt, fieldArgDim:
			v, n, err := consumeVarint(b)
			if err != nil {
				return arg.Arg{}, err
			}
			b, intVal = b[n:], v
		case fieldArgFloat:
			v, n, err := consumeFixed64(b)
			if err != nil {
				return arg.Arg{}, err
			}
			b, floatVal = b[n:], math.Float64frombits(v)
		case fieldArgStr:
			v, n, err := consumeString(b)
			if err != nil {
				return arg.Arg{}, err
			}
			b, strVal = b[n:], v
		case fieldArgArr:
			raw, n, err := consumeBytes(b)
			if err != nil {
				return arg.Arg{}, err
			}
			b = b[n:]
			elem, err := unmarshalArg(raw)
			if err != nil {
				return arg.Arg{}, err
			}
			arr = append(arr, elem)
		case fieldArgDict:
			raw, n, err := consumeBytes(b)
			if err != nil {
				return arg.Arg{}, err
			}
			b = b[n:]
			k, v, err := unmarshalDictEntry(raw)
			if err != nil {
				return arg.Arg{}, err
			}
			dict[k] = v
			haveDict = true
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return arg.Arg{}, err
			}
			b = b[n:]
		}
	}

	switch kind {
	case arg.KindBool:
		return arg.Bool(boolVal), nil
	case arg.KindInt:
		return arg.Int(intVal), nil
	case arg.KindFloat:
		return arg.Float(floatVal), nil
	case arg.KindStr:
		return arg.Str(strVal), nil
	case arg.KindDim:
		return arg.Dim(dim.Const(intVal)), nil
	case arg.KindArr:
		return arg.Arr(arr...), nil
	case arg.KindDict:
		if !haveDict {
			dict = map[string]arg.Arg{}
		}
		return arg.Dict(dict), nil
	default:
		return arg.Arg{}, fmt.Errorf("execpb: unknown arg kind %d", kind)
	}
}

func unmarshalDictEntry(b []byte) (string, arg.Arg, error) {
	var key string
	var val arg.Arg
	for len(b) > 0 {
		num, typ, n, err := consumeTag(b)
		if err != nil {
			return "", arg.Arg{}, err
		}
		b = b[n:]
		switch num {
		case fieldDictKey:
			v, n, err := consumeString(b)
			if err != nil {
				return "", arg.Arg{}, err
			}
			b, key = b[n:], v
		case fieldDictValue:
			raw, n, err := consumeBytes(b)
			if err != nil {
				return "", arg.Arg{}, err
			}
			b = b[n:]
			v, err := unmarshalArg(raw)
			if err != nil {
				return "", arg.Arg{}, err
			}
			val = v
		default:
			n, err := skipField(b, typ)
			if err != nil {
				return "", arg.Arg{}, err
			}
			b = b[n:]
		}
	}
	return key, val, nil
}

func boolVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}
