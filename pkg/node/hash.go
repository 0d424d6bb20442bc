package node

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Hash derives the node identifier from a name, such as a pod or host name,
// by hashing it with BLAKE2b and keeping 48 bits. Distinct names are very
// unlikely, but not guaranteed, to map to distinct nodes. Use a registry when
// uniqueness must be guaranteed.
type Hash struct {
	// Name to hash. Defaults to the host name.
	Name string
}

func (h Hash) ResolveNode(ctx context.Context) (uint64, error) {
	name := h.Name
	if name == "" {
		var err error
		if name, err = os.Hostname(); err != nil {
			return 0, fmt.Errorf("get hostname: %w", err)
		}
	}
	return HashName(name), nil
}

// HashName returns the 48-bit node identifier for name.
func HashName(name string) uint64 {
	sum := blake2b.Sum256([]byte(name))
	var b [8]byte
	copy(b[2:], sum[:6])
	return binary.BigEndian.Uint64(b[:])
}
