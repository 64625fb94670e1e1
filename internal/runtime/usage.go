package runtime

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/ports"
)

// Usage counts leaf occurrences per canonical path.
type Usage struct {
	order  []string
	counts map[string]int
}

func newUsage() *Usage {
	return &Usage{counts: make(map[string]int)}
}

func (u *Usage) add(path string) {
	if u.counts[path] == 0 {
		u.order = append(u.order, path)
	}
	u.counts[path]++
}

// Count returns how many leaves resolved to path.
func (u *Usage) Count(path string) int { return u.counts[path] }

// Paths returns the canonical paths in first-seen order.
func (u *Usage) Paths() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

// Map returns a copy of the counts.
func (u *Usage) Map() map[string]int {
	out := make(map[string]int, len(u.counts))
	for k, v := range u.counts {
		out[k] = v
	}
	return out
}

// Scan visits every leaf occurrence once, parent to child and left to right,
// and counts the canonical path each resolves to.
func Scan(ctx context.Context, root domain.Node, resolver ports.Resolver) (*Usage, error) {
	u := newUsage()
	for _, leaf := range domain.Leaves(root) {
		path, err := resolver.Resolve(ctx, leaf.Reference)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", leaf.Reference, err)
		}
		u.add(path)
	}
	return u, nil
}

// memoResolver resolves each reference once per render and returns absolute,
// cleaned paths so that equal files compare equal.
type memoResolver struct {
	next ports.Resolver
	seen map[string]string
}

func newMemoResolver(next ports.Resolver) *memoResolver {
	return &memoResolver{next: next, seen: make(map[string]string)}
}

func (m *memoResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if p, ok := m.seen[ref]; ok {
		return p, nil
	}
	p, err := m.next.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrResolution, err)
	}
	m.seen[ref] = abs
	return abs, nil
}
