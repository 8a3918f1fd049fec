// Package capture wraps the live pcap handle and implements the pure per-frame
// steps of the pipeline: direction classification and payload extraction.
package capture

import (
	"errors"
	"fmt"
	"net"

	"github.com/metalgrid/tcpgraph/internal/config"
)

// ErrInterfaceNotFound is returned when a specific interface name does not
// exist among enumerable interfaces. Callers are expected to list the
// available devices in response.
var ErrInterfaceNotFound = errors.New("interface not found")

// HardwareAddr is a 6-byte link-layer address.
type HardwareAddr [6]byte

// LocalAddressSet is the set of link-layer addresses considered local for
// classification. It is immutable after construction and safe to share across
// goroutines without synchronization.
type LocalAddressSet struct {
	addrs map[HardwareAddr]struct{}
}

// NewLocalAddressSet builds a set from the given addresses. Addresses that are
// not 6 bytes long (e.g. on virtual interfaces) are skipped.
func NewLocalAddressSet(addrs []net.HardwareAddr) *LocalAddressSet {
	set := &LocalAddressSet{addrs: make(map[HardwareAddr]struct{}, len(addrs))}
	for _, addr := range addrs {
		if len(addr) != 6 {
			continue
		}
		var hw HardwareAddr
		copy(hw[:], addr)
		set.addrs[hw] = struct{}{}
	}
	return set
}

// Contains reports whether the given address is in the set.
func (s *LocalAddressSet) Contains(addr HardwareAddr) bool {
	_, ok := s.addrs[addr]
	return ok
}

// Size returns the number of addresses in the set.
func (s *LocalAddressSet) Size() int {
	return len(s.addrs)
}

// ResolveLocalAddresses returns the set of link-layer addresses to treat as
// local for the given interface selector. The "any" selector unions the
// addresses of every active interface. A specific interface that exists but
// carries no address yields an empty set; every frame then classifies Unknown.
func ResolveLocalAddresses(selector string) (*LocalAddressSet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate interfaces: %w", err)
	}

	var addrs []net.HardwareAddr
	if selector == config.AnyInterface {
		for _, iface := range ifaces {
			if iface.Flags&net.FlagUp == 0 {
				continue
			}
			addrs = append(addrs, iface.HardwareAddr)
		}
		return NewLocalAddressSet(addrs), nil
	}

	for _, iface := range ifaces {
		if iface.Name == selector {
			addrs = append(addrs, iface.HardwareAddr)
			return NewLocalAddressSet(addrs), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrInterfaceNotFound, selector)
}
