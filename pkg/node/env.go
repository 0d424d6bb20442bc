package node

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mantono/flakeid/pkg/flake"
)

// DefaultEnvVar is the environment variable read by Env when Name is empty.
const DefaultEnvVar = "FLAKEID_NODE"

// Env resolves the node identifier from an environment variable.
// Decimal, 0x-prefixed hexadecimal and 0o-prefixed octal values are accepted.
type Env struct {
	Name string
}

func (e Env) ResolveNode(ctx context.Context) (uint64, error) {
	name := e.Name
	if name == "" {
		name = DefaultEnvVar
	}

	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return 0, fmt.Errorf("%s not set: %w", name, ErrUnavailable)
	}

	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if n > flake.MaxNode {
		return 0, fmt.Errorf("%s=%s exceeds %d bits", name, v, flake.NodeBits)
	}
	return n, nil
}
