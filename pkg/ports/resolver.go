package ports

import "context"

// Resolver maps a workflow reference to a local file path.
type Resolver interface {
	// Resolve returns a local path for ref, retrieving it first when remote.
	// Failures wrap domain.ErrResolution.
	Resolve(ctx context.Context, ref string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, ref string) (string, error)

// Resolve calls f(ctx, ref).
func (f ResolverFunc) Resolve(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}
