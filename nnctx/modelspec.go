package nnctx

import (
	"fmt"

	"github.com/nnvm-go/nnvm/digit"
	"gopkg.in/yaml.v3"
)

// ModelSpec is the YAML front-end for describing a model's static
// hyperparameters and input shapes, decoupled from the Go model tree
// (package model) itself: a deployment config file, not a second copy of
// the graph. It decodes into plain Go values only; nothing in this module
// builds a model from it. It follows the same "parse once, build immutable
// config" shape as the teacher's builderConfig.
type ModelSpec struct {
	Name       string         `yaml:"name"`
	Dtype      string         `yaml:"dtype"`
	HiddenSize uint64         `yaml:"hidden_size"`
	NumLayers  uint64         `yaml:"num_layers"`
	NumHeads   uint64         `yaml:"num_heads"`
	HeadDim    uint64         `yaml:"head_dim"`
	VocabSize  uint64         `yaml:"vocab_size"`
	Extra      map[string]any `yaml:"extra,omitempty"`
}

// ParseModelSpec decodes a ModelSpec from YAML bytes.
func ParseModelSpec(raw []byte) (ModelSpec, error) {
	var spec ModelSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return ModelSpec{}, fmt.Errorf("nnctx: parsing model spec: %w", err)
	}
	return spec, nil
}

// DigitLayout resolves the spec's declared dtype name to a digit.Layout. It
// recognizes the small vocabulary package digit predefines; an unknown name
// is a configuration error, not a panic.
func (s ModelSpec) DigitLayout() (digit.Layout, error) {
	switch s.Dtype {
	case "f32":
		return digit.F32, nil
	case "f16":
		return digit.F16, nil
	case "u32":
		return digit.U32, nil
	case "u8":
		return digit.U8, nil
	case "q8_0":
		return digit.Q8_0, nil
	default:
		return digit.Layout{}, fmt.Errorf("nnctx: unknown dtype %q in model spec", s.Dtype)
	}
}

// Validate checks that every hyperparameter a model constructor needs is
// present and internally consistent (head_dim * num_heads == hidden_size,
// when both head count and size are given).
func (s ModelSpec) Validate() error {
	if s.HiddenSize == 0 {
		return fmt.Errorf("nnctx: model spec %q: hidden_size must be set", s.Name)
	}
	if s.NumLayers == 0 {
		return fmt.Errorf("nnctx: model spec %q: num_layers must be set", s.Name)
	}
	if s.NumHeads != 0 && s.HeadDim != 0 && s.NumHeads*s.HeadDim != s.HiddenSize {
		return fmt.Errorf("nnctx: model spec %q: num_heads * head_dim (%d) != hidden_size (%d)",
			s.Name, s.NumHeads*s.HeadDim, s.HiddenSize)
	}
	return nil
}
