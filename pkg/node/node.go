// Package node resolves flake node identifiers for the current host.
//
// Every resolver implements flake.NodeResolver. Resolvers report their own
// lookup errors; flake.NewFromResolver maps them to flake.ErrNoNodeIdentifier.
package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/mantono/flakeid/pkg/flake"
)

// ErrUnavailable is returned by a resolver that has no value to offer.
var ErrUnavailable = errors.New("node identifier unavailable")

// Static returns a resolver that always resolves to n.
func Static(n uint64) flake.NodeResolver {
	return flake.NodeResolverFunc(func(context.Context) (uint64, error) {
		if n > flake.MaxNode {
			return 0, fmt.Errorf("static node %#x exceeds %d bits", n, flake.NodeBits)
		}
		return n, nil
	})
}

// First returns a resolver that tries each resolver in order and returns the
// first identifier found. If all of them fail, the errors are joined.
func First(resolvers ...flake.NodeResolver) flake.NodeResolver {
	return flake.NodeResolverFunc(func(ctx context.Context) (uint64, error) {
		errs := []error{ErrUnavailable}
		for _, r := range resolvers {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			n, err := r.ResolveNode(ctx)
			if err == nil {
				return n, nil
			}
			errs = append(errs, err)
		}
		return 0, errors.Join(errs...)
	})
}
