package dsl

import (
	"fmt"

	"github.com/ofekfell/mediaflow/pkg/domain"
)

// normalizeOne turns a single input into a tree node.
func normalizeOne(kind domain.ActionKind, in any) (domain.Node, error) {
	switch v := in.(type) {
	case string:
		if v == "" {
			return nil, invalid(kind, "input", "reference must not be empty", nil)
		}
		return domain.Leaf{Reference: v}, nil
	case domain.Leaf:
		if v.Reference == "" {
			return nil, invalid(kind, "input", "reference must not be empty", nil)
		}
		return v, nil
	case *domain.ActionNode:
		if v == nil {
			return nil, invalid(kind, "input", "node must not be nil", nil)
		}
		return v, nil
	case *Chain:
		return v.Build()
	case nil:
		return nil, invalid(kind, "input", "input is required", nil)
	}
	return nil, invalid(kind, "input", fmt.Sprintf("unsupported input type %T", in), nil)
}

// normalizeList turns a list input into an ordered slice of tree nodes.
func normalizeList(kind domain.ActionKind, in any) ([]domain.Node, error) {
	var items []any
	switch v := in.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []domain.Node:
		for _, n := range v {
			items = append(items, n)
		}
	case []*domain.ActionNode:
		for _, n := range v {
			items = append(items, n)
		}
	default:
		return nil, invalid(kind, "input", "expects a list of inputs", nil)
	}

	out := make([]domain.Node, 0, len(items))
	for _, item := range items {
		n, err := normalizeOne(kind, item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func isList(in any) bool {
	switch in.(type) {
	case []any, []string, []domain.Node, []*domain.ActionNode:
		return true
	}
	return false
}
