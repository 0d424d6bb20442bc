// Package registry assigns durable node identifiers to hosts.
//
// Each host name is given the next free node identifier the first time it is
// seen and keeps it afterwards, which makes node identifiers unique across
// every producer sharing the same registry.
package registry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mantono/flakeid/pkg/flake"
)

// Assignment binds a host to a node identifier.
type Assignment struct {
	ID        string    `json:"id"`
	Host      string    `json:"host"`
	Node      uint64    `json:"node"`
	CreatedAt time.Time `json:"created_at"`
}

func columns() []string {
	return []string{
		"node",
		"id",
		"host",
		"created_at",
	}
}

// Store is implemented by SQLite, Postgres and Redis.
type Store interface {
	// Assign returns the assignment of host, creating it if necessary.
	Assign(ctx context.Context, host string) (*Assignment, error)
	// Find returns the existing assignment of host.
	Find(ctx context.Context, host string) (*Assignment, error)
}

var constraints = map[string]map[string]string{
	"chk_host_not_empty": {"host": "Host name cannot be empty."},
}

// Error is returned for invalid input or unknown hosts.
type Error struct {
	invalid     map[string]string
	missingHost string
	overflow    *Assignment
}

func (e Error) Error() string {
	switch {
	case e.invalid != nil:
		return fmt.Sprintf("invalid node assignment: %v", e.invalid)
	case e.overflow != nil:
		return fmt.Sprintf("node %d assigned to host %q exceeds %d bits", e.overflow.Node, e.overflow.Host, flake.NodeBits)
	default:
		return fmt.Sprintf("no node assigned to host %q", e.missingHost)
	}
}

// Invalid returns a map of field names to validation messages.
func (e Error) Invalid() map[string]string { return e.invalid }

// NotFound reports whether the host has no assignment.
func (e Error) NotFound() bool { return e.missingHost != "" }

// IsNotFound reports whether err means that the host has no assignment.
func IsNotFound(err error) bool {
	var rerr Error
	return errors.As(err, &rerr) && rerr.NotFound()
}

func create(host string) (*Assignment, error) {
	if host == "" {
		return nil, Error{invalid: constraints["chk_host_not_empty"]}
	}

	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("create assignment id (host %s): %w", host, err)
	}

	return &Assignment{
		ID:   id.String(),
		Host: host,
	}, nil
}

// checkNode refuses assignments that no longer fit in a flake ID.
func checkNode(a *Assignment) (*Assignment, error) {
	if a.Node > flake.MaxNode {
		return nil, Error{overflow: a}
	}
	return a, nil
}

// Resolver resolves the node identifier of Host through a Store.
type Resolver struct {
	Store Store
	// Host defaults to the host name reported by the kernel.
	Host string
}

func (r Resolver) ResolveNode(ctx context.Context) (uint64, error) {
	host := r.Host
	if host == "" {
		var err error
		if host, err = os.Hostname(); err != nil {
			return 0, fmt.Errorf("get hostname: %w", err)
		}
	}

	a, err := r.Store.Assign(ctx, host)
	if err != nil {
		return 0, fmt.Errorf("assign node to %s: %w", host, err)
	}
	return a.Node, nil
}
