package capture

import (
	"encoding/binary"

	"github.com/metalgrid/tcpgraph/internal/model"
)

const (
	// EtherType values
	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD

	ipv4HeaderMinLen = 20
	ipv6HeaderLen    = 40
	udpHeaderLen     = 8
	tcpHeaderMinLen  = 20

	// Protocol numbers
	protocolTCP = 6
	protocolUDP = 17
)

// ExtractByteCount reduces a frame to the byte count the aggregator should
// accumulate. In full-frame mode this is the captured length including every
// protocol header. In payload-only mode it is the application payload length
// after stripping Ethernet, IP, and transport headers; any malformed or
// unrecognized header falls back to the full captured length so a single bad
// frame never interrupts the bandwidth stream.
func ExtractByteCount(frame *model.CapturedFrame, payloadOnly bool) int {
	if !payloadOnly {
		return frame.CaptureLength
	}
	if n, ok := payloadLength(frame.Data); ok {
		return n
	}
	return frame.CaptureLength
}

// payloadLength parses the Ethernet header's payload type and dispatches to
// the matching network-layer layout.
func payloadLength(data []byte) (int, bool) {
	if len(data) < ethernetHeaderLen {
		return 0, false
	}
	etherType := binary.BigEndian.Uint16(data[12:14])
	ipData := data[ethernetHeaderLen:]

	switch etherType {
	case etherTypeIPv4:
		return ipv4PayloadLength(ipData)
	case etherTypeIPv6:
		return ipv6PayloadLength(ipData)
	default:
		// Non-IP frame (ARP, LLDP, VLAN-tagged, ...)
		return 0, false
	}
}

// ipv4PayloadLength computes the application payload length from the IPv4
// header fields. IHL is in 32-bit words.
func ipv4PayloadLength(data []byte) (int, bool) {
	if len(data) < ipv4HeaderMinLen {
		return 0, false
	}

	headerLen := int(data[0]&0x0F) * 4
	totalLen := int(binary.BigEndian.Uint16(data[2:4]))
	if headerLen < ipv4HeaderMinLen || headerLen > totalLen || headerLen > len(data) {
		return 0, false
	}

	protocol := data[9]
	transport := data[headerLen:]

	switch protocol {
	case protocolTCP:
		tcpLen, ok := tcpHeaderLength(transport)
		if !ok {
			return 0, false
		}
		payload := totalLen - headerLen - tcpLen
		if payload < 0 {
			return 0, false
		}
		return payload, true
	case protocolUDP:
		if len(transport) < udpHeaderLen {
			return 0, false
		}
		// UDP length field includes the fixed 8-byte header.
		udpLen := int(binary.BigEndian.Uint16(transport[4:6]))
		if udpLen < udpHeaderLen {
			return 0, false
		}
		return udpLen - udpHeaderLen, true
	default:
		return totalLen - headerLen, true
	}
}

// ipv6PayloadLength computes the application payload length from the IPv6
// header fields. The payload-length field already excludes the fixed 40-byte
// base header.
func ipv6PayloadLength(data []byte) (int, bool) {
	if len(data) < ipv6HeaderLen {
		return 0, false
	}

	payloadLen := int(binary.BigEndian.Uint16(data[4:6]))
	nextHeader := data[6]

	if nextHeader != protocolTCP {
		return payloadLen, true
	}

	tcpLen, ok := tcpHeaderLength(data[ipv6HeaderLen:])
	if !ok {
		return 0, false
	}
	payload := payloadLen - tcpLen
	if payload < 0 {
		return 0, false
	}
	return payload, true
}

// tcpHeaderLength reads the TCP data-offset field. The offset is in 32-bit words.
func tcpHeaderLength(data []byte) (int, bool) {
	if len(data) < tcpHeaderMinLen {
		return 0, false
	}
	headerLen := int(data[12]>>4) * 4
	if headerLen < tcpHeaderMinLen {
		return 0, false
	}
	return headerLen, true
}
