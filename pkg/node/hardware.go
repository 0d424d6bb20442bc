package node

import (
	"context"
	"fmt"
	"net"
)

// Hardware resolves the node identifier from the MAC address of the first
// network interface that has one. Loopback interfaces and all-zero addresses
// are skipped.
type Hardware struct {
	// Interfaces lists the network interfaces. Defaults to net.Interfaces.
	Interfaces func() ([]net.Interface, error)
}

func (h Hardware) ResolveNode(ctx context.Context) (uint64, error) {
	list := h.Interfaces
	if list == nil {
		list = net.Interfaces
	}

	ifaces, err := list()
	if err != nil {
		return 0, fmt.Errorf("list network interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if n, ok := macToNode(iface.HardwareAddr); ok {
			return n, nil
		}
	}

	return 0, fmt.Errorf("no interface with a hardware address: %w", ErrUnavailable)
}

// macToNode folds a 48-bit MAC address into an integer, first byte most significant.
func macToNode(addr net.HardwareAddr) (uint64, bool) {
	if len(addr) != 6 {
		return 0, false
	}

	var n uint64
	for _, b := range addr {
		n = n<<8 | uint64(b)
	}
	return n, n != 0
}
