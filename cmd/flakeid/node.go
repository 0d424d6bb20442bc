package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mantono/flakeid/internal/data/registry"
	"github.com/mantono/flakeid/pkg/flake"
	"github.com/mantono/flakeid/pkg/log"
	"github.com/mantono/flakeid/pkg/node"
)

// newGenerator resolves the node identifier selected by -node_source and
// creates a Generator for it. The returned close func releases any registry
// connections and must be called once the Generator is no longer needed.
func newGenerator(ctx context.Context, f *cliFlags, logger log.Logger) (*flake.Generator, func(), error) {
	var (
		resolver flake.NodeResolver
		db       = &database{}
	)

	switch f.nodeSource {
	case "auto":
		if f.node != "" {
			n, err := strconv.ParseUint(f.node, 0, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("parse -node: %w", err)
			}
			resolver = node.Static(n)
			break
		}
		resolver = node.First(node.Env{}, node.Hardware{}, node.Hash{Name: f.nodeName})
	case "mac":
		resolver = node.Hardware{}
	case "env":
		resolver = node.Env{}
	case "hash":
		resolver = node.Hash{Name: f.nodeName}
	case "static":
		if f.node == "" {
			return nil, nil, fmt.Errorf("-node_source=static requires -node")
		}
		n, err := strconv.ParseUint(f.node, 0, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse -node: %w", err)
		}
		resolver = node.Static(n)
	case "registry":
		if err := db.open(ctx, f, logger); err != nil {
			return nil, nil, err
		}
		resolver = registry.Resolver{Store: db.registry(), Host: f.nodeName}
	default:
		return nil, nil, fmt.Errorf("unknown -node_source %q", f.nodeSource)
	}

	gen, err := flake.NewFromResolver(ctx, resolver)
	if err != nil {
		db.close()
		return nil, nil, err
	}

	log.Debug(logger).Log("msg", "resolved node", "node", gen.Node(), "source", f.nodeSource)
	return gen, db.close, nil
}
