package runtime

import (
	"context"
	"fmt"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/filtergraph"
	"github.com/ofekfell/mediaflow/pkg/ports"
)

// evaluator turns a tree into streams on one graph. It lives for one render.
type evaluator struct {
	graph      *filtergraph.Graph
	resolver   ports.Resolver
	copies     *CopyTable
	normalizer *Normalizer
	registry   *Registry
	prober     ports.Prober // optional
	onAction   func(domain.ActionKind)

	audio map[string]bool // canonical path -> has audio
}

// hasAudio probes canonical once per render. Copies are byte-identical, so the
// canonical file speaks for all of its aliases. Without a prober every input
// is assumed to carry audio.
func (e *evaluator) hasAudio(ctx context.Context, canonical string) (bool, error) {
	if e.prober == nil {
		return true, nil
	}
	if has, ok := e.audio[canonical]; ok {
		return has, nil
	}
	info, err := e.prober.Probe(ctx, canonical)
	if err != nil {
		return false, err
	}
	if !info.HasVideo {
		return false, fmt.Errorf("%w: %s has no video stream", domain.ErrShapeMismatch, canonical)
	}
	if e.audio == nil {
		e.audio = make(map[string]bool)
	}
	e.audio[canonical] = info.HasAudio
	return info.HasAudio, nil
}

func (e *evaluator) evaluate(ctx context.Context, n domain.Node) (Streams, error) {
	switch v := n.(type) {
	case domain.Leaf:
		canonical, err := e.resolver.Resolve(ctx, v.Reference)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", v.Reference, err)
		}
		path, err := e.copies.Next(canonical)
		if err != nil {
			return nil, err
		}
		audio, err := e.hasAudio(ctx, canonical)
		if err != nil {
			return nil, err
		}
		return e.normalizer.Apply(e.graph, path, audio), nil

	case *domain.ActionNode:
		if v == nil {
			return nil, fmt.Errorf("%w: nil action node", domain.ErrInvalidNode)
		}
		var in []Streams
		if v.Kind.MultiInput() {
			if v.Input != nil || v.Inputs == nil {
				return nil, fmt.Errorf("%w: %s expects a list input", domain.ErrInvalidNode, v.Kind)
			}
			for _, c := range v.Inputs {
				s, err := e.evaluate(ctx, c)
				if err != nil {
					return nil, err
				}
				in = append(in, s)
			}
		} else {
			if v.Input == nil || v.Inputs != nil {
				return nil, fmt.Errorf("%w: %s expects a single input", domain.ErrInvalidNode, v.Kind)
			}
			s, err := e.evaluate(ctx, v.Input)
			if err != nil {
				return nil, err
			}
			in = []Streams{s}
		}

		out, err := e.registry.Dispatch(e.graph, v.Kind, in, v.Params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Kind, err)
		}
		if e.onAction != nil {
			e.onAction(v.Kind)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", domain.ErrInvalidNode, n)
}

// compile evaluates root and binds its terminal streams to output.
func (e *evaluator) compile(ctx context.Context, root domain.Node, output string) (*filtergraph.Job, error) {
	s, err := e.evaluate(ctx, root)
	if err != nil {
		return nil, err
	}
	return e.graph.Output(output, videoOf(s), audioOf(s))
}
