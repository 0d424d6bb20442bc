package flake

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used to timestamp IDs. The default is time.Now.
func WithClock(clock Clock) Option {
	return func(g *Generator) {
		g.clock = clock
	}
}

// Generator produces flake IDs for a single node.
// A Generator is not safe for concurrent use.
type Generator struct {
	node  uint64
	seq   Counter
	clock Clock
}

// New creates a Generator for the given node identifier.
// The node must fit in 48 bits.
func New(node uint64, opts ...Option) (*Generator, error) {
	if node > MaxNode {
		return nil, NoNodeIdentifier(fmt.Errorf("node %#x exceeds %d bits", node, NodeBits))
	}

	g := &Generator{
		node:  node,
		clock: time.Now,
	}
	for _, optFn := range opts {
		optFn(g)
	}
	return g, nil
}

// NewFromResolver creates a Generator with the node identifier returned by r.
// Any resolution failure is reported as a *NodeError.
func NewFromResolver(ctx context.Context, r NodeResolver, opts ...Option) (*Generator, error) {
	node, err := r.ResolveNode(ctx)
	if err != nil {
		return nil, NoNodeIdentifier(err)
	}
	return New(node, opts...)
}

// Node returns the node identifier of the Generator.
func (g *Generator) Node() uint64 { return g.node }

// TryNext generates a new ID. It fails with ErrTimeDrift if the clock went
// backwards since the last ID and with ErrExhausted if the sequence space of
// the current millisecond is used up.
func (g *Generator) TryNext() (ID, error) {
	ms := g.clock().UnixMilli()
	if ms < 0 {
		return Nil, ErrTimeDrift
	}

	ts, seq, err := g.seq.Next(uint64(ms))
	if err != nil {
		return Nil, err
	}
	return Pack(ts, g.node, seq), nil
}

// Next generates a new ID, reporting false if generation failed.
// Next discards the reason for the failure; use TryNext when the caller must
// tell ErrExhausted and ErrTimeDrift apart.
func (g *Generator) Next() (ID, bool) {
	id, err := g.TryNext()
	return id, err == nil
}

// All returns an iterator over newly generated IDs. The iteration stops at
// the first generation failure, without reporting it.
//
//	for id := range gen.All() {
//		...
//	}
func (g *Generator) All() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for {
			id, ok := g.Next()
			if !ok || !yield(id) {
				return
			}
		}
	}
}
