package capture

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalgrid/tcpgraph/internal/model"
)

var (
	testLocalMAC  = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	testRemoteMAC = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA}
	testOtherMAC  = net.HardwareAddr{0x00, 0xAB, 0xCD, 0xEF, 0x01, 0x23}
	broadcastMAC  = net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	multicastMAC  = net.HardwareAddr{0x01, 0x00, 0x5E, 0x00, 0x00, 0xFB}
)

// ethernetFrame builds a minimal Ethernet frame with the given addresses.
func ethernetFrame(dst, src net.HardwareAddr) []byte {
	frame := make([]byte, ethernetHeaderLen)
	copy(frame[0:6], dst)
	copy(frame[6:12], src)
	frame[12] = 0x08 // IPv4
	return frame
}

func TestClassifyDirection_Unicast(t *testing.T) {
	local := NewLocalAddressSet([]net.HardwareAddr{testLocalMAC})

	tests := []struct {
		name string
		dst  net.HardwareAddr
		src  net.HardwareAddr
		want model.Direction
	}{
		{"outbound", testRemoteMAC, testLocalMAC, model.DirectionOutbound},
		{"inbound", testLocalMAC, testRemoteMAC, model.DirectionInbound},
		{"local to local", testLocalMAC, testLocalMAC, model.DirectionUnknown},
		{"transit", testOtherMAC, testRemoteMAC, model.DirectionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDirection(ethernetFrame(tt.dst, tt.src), local)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyDirection_BroadcastAndMulticast(t *testing.T) {
	local := NewLocalAddressSet([]net.HardwareAddr{testLocalMAC})

	// Destination is never "local" for broadcast, direction follows the source.
	assert.Equal(t, model.DirectionOutbound, ClassifyDirection(ethernetFrame(broadcastMAC, testLocalMAC), local))
	assert.Equal(t, model.DirectionInbound, ClassifyDirection(ethernetFrame(broadcastMAC, testRemoteMAC), local))
	assert.Equal(t, model.DirectionOutbound, ClassifyDirection(ethernetFrame(multicastMAC, testLocalMAC), local))
	assert.Equal(t, model.DirectionInbound, ClassifyDirection(ethernetFrame(multicastMAC, testRemoteMAC), local))
}

func TestClassifyDirection_ShortFrame(t *testing.T) {
	local := NewLocalAddressSet([]net.HardwareAddr{testLocalMAC})
	assert.Equal(t, model.DirectionUnknown, ClassifyDirection([]byte{0x00, 0x11}, local))
	assert.Equal(t, model.DirectionUnknown, ClassifyDirection(nil, local))
}

func TestClassifyDirection_EmptyAddressSet(t *testing.T) {
	empty := NewLocalAddressSet(nil)
	require.Equal(t, 0, empty.Size())

	// Unicast frames all degrade to Unknown; broadcast frames classify
	// Inbound because no source can be local.
	assert.Equal(t, model.DirectionUnknown, ClassifyDirection(ethernetFrame(testRemoteMAC, testLocalMAC), empty))
	assert.Equal(t, model.DirectionInbound, ClassifyDirection(ethernetFrame(broadcastMAC, testLocalMAC), empty))
}
