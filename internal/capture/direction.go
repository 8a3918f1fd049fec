package capture

import (
	"github.com/metalgrid/tcpgraph/internal/model"
)

const ethernetHeaderLen = 14

// ClassifyDirection determines the traffic direction of a raw Ethernet frame
// relative to the local address set.
//
// Broadcast and multicast destinations have no meaningful "destination is
// local" test, so their direction is decided purely by whether a local address
// originated the frame. Unicast frames follow the precedence table: local
// source means outbound, local destination means inbound, and both or neither
// local (loopback, transit through a router or bridge) means Unknown.
func ClassifyDirection(data []byte, local *LocalAddressSet) model.Direction {
	if len(data) < ethernetHeaderLen {
		return model.DirectionUnknown
	}

	var dst, src HardwareAddr
	copy(dst[:], data[0:6])
	copy(src[:], data[6:12])

	srcIsLocal := local.Contains(src)
	dstIsLocal := local.Contains(dst)

	if isBroadcast(dst) || isMulticast(dst) {
		if srcIsLocal {
			return model.DirectionOutbound
		}
		return model.DirectionInbound
	}

	switch {
	case srcIsLocal && !dstIsLocal:
		return model.DirectionOutbound
	case !srcIsLocal && dstIsLocal:
		return model.DirectionInbound
	default:
		return model.DirectionUnknown
	}
}

// isBroadcast reports whether addr is the all-ones broadcast address.
func isBroadcast(addr HardwareAddr) bool {
	for _, b := range addr {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// isMulticast reports whether addr has the group bit set.
func isMulticast(addr HardwareAddr) bool {
	return addr[0]&0x01 != 0
}
