package flake

import "context"

// NodeResolver determines the node identifier of the current producer.
// Implementations should return a value of at most 48 bits that is unique
// among all producers sharing an ID space.
type NodeResolver interface {
	ResolveNode(ctx context.Context) (uint64, error)
}

// NodeResolverFunc adapts a function to a NodeResolver.
type NodeResolverFunc func(ctx context.Context) (uint64, error)

// ResolveNode calls f(ctx).
func (f NodeResolverFunc) ResolveNode(ctx context.Context) (uint64, error) { return f(ctx) }
