package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/dsl"
)

// Wire keys.
const (
	KeyURL          = "url"
	KeyAction       = "action"
	KeyInput        = "input"
	KeyResultStream = "result_stream"
)

const rootPath = "$"

// Decode converts a generic wire value (as produced by encoding/json or
// yaml.v3 into an any) into a typed, validated tree.
func Decode(v any) (domain.Node, error) {
	return decode(v, rootPath)
}

func decode(v any, path string) (domain.Node, error) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: empty reference", domain.ErrInvalidNode)}
		}
		return domain.Leaf{Reference: t}, nil
	case map[string]any:
		return decodeMap(t, path)
	case nil:
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: missing node", domain.ErrInvalidNode)}
	}
	return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: unexpected %T", domain.ErrInvalidNode, v)}
}

func decodeMap(m map[string]any, path string) (domain.Node, error) {
	if raw, ok := m[KeyResultStream]; ok {
		tok, ok := raw.(string)
		if !ok {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: %s must be a string", domain.ErrInvalidNode, KeyResultStream)}
		}
		n, err := DecodeToken(tok)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return n, nil
	}

	rawKind, ok := m[KeyAction]
	if !ok {
		ref, ok := m[KeyURL].(string)
		if !ok || ref == "" {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: node needs %q or %q", domain.ErrInvalidNode, KeyURL, KeyAction)}
		}
		return domain.Leaf{Reference: ref}, nil
	}

	name, _ := rawKind.(string)
	kind, err := domain.ParseActionKind(name)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	rawInput, ok := m[KeyInput]
	if !ok {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: %s without %q", domain.ErrInvalidNode, kind, KeyInput)}
	}

	var input any
	if list, ok := rawInput.([]any); ok {
		nodes := make([]domain.Node, 0, len(list))
		for i, item := range list {
			n, err := decode(item, fmt.Sprintf("%s.input[%d]", path, i))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		input = nodes
	} else {
		n, err := decode(rawInput, path+".input")
		if err != nil {
			return nil, err
		}
		input = n
	}

	params, err := DecodeParams(kind, m)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	node, err := dsl.Build(kind, input, params)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return node, nil
}

// DecodeParams reads the flat parameter keys of an action into its typed
// block. Numbers given as strings are accepted; unknown keys are rejected.
func DecodeParams(kind domain.ActionKind, m map[string]any) (domain.Params, error) {
	raw := make(map[string]any, len(m))
	for k, v := range m {
		if k == KeyAction || k == KeyInput {
			continue
		}
		raw[k] = v
	}

	params, err := domain.NewParams(kind)
	if err != nil {
		return nil, err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           params,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %s parameters: %v", domain.ErrValidation, kind, err)
	}
	return params, nil
}

// Encode converts a typed tree into its generic wire value.
func Encode(n domain.Node) (map[string]any, error) {
	switch v := n.(type) {
	case domain.Leaf:
		return map[string]any{KeyURL: v.Reference}, nil
	case *domain.ActionNode:
		if v == nil {
			return nil, fmt.Errorf("%w: nil action node", domain.ErrInvalidNode)
		}
		params := map[string]any{}
		if err := mapstructure.Decode(domain.ParamsValue(v.Params), &params); err != nil {
			return nil, fmt.Errorf("encode %s parameters: %w", v.Kind, err)
		}
		out := make(map[string]any, len(params)+2)
		for k, p := range params {
			out[k] = p
		}
		out[KeyAction] = string(v.Kind)

		if v.Kind.MultiInput() {
			list := make([]any, 0, len(v.Inputs))
			for _, c := range v.Inputs {
				enc, err := Encode(c)
				if err != nil {
					return nil, err
				}
				list = append(list, enc)
			}
			out[KeyInput] = list
			return out, nil
		}
		enc, err := Encode(v.Input)
		if err != nil {
			return nil, err
		}
		out[KeyInput] = enc
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", domain.ErrInvalidNode, n)
}
