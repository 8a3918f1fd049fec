package pcap

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalgrid/tcpgraph/internal/model"
)

func writeTestPcap(t *testing.T, frameCount int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	ts := time.Now()
	for i := 0; i < frameCount; i++ {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    net.IP{10, 0, 0, 1},
			DstIP:    net.IP{10, 0, 0, 2},
		}
		udp := &layers.UDP{SrcPort: 5000, DstPort: 5001}
		udp.SetNetworkLayerForChecksum(ip)

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(make([]byte, 100))))

		data := buf.Bytes()
		ci := gopacket.CaptureInfo{
			Timestamp:     ts.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return path
}

func TestReader_ReplaysAllFrames(t *testing.T) {
	path := writeTestPcap(t, 10)

	r, err := NewReader(path, "", 4)
	require.NoError(t, err)
	defer r.Close()

	go r.Run(context.Background())

	var frames []*model.CapturedFrame
	for frame := range r.Frames() {
		frames = append(frames, frame)
	}

	require.Len(t, frames, 10)
	for _, frame := range frames {
		assert.Equal(t, len(frame.Data), frame.CaptureLength)
		assert.False(t, frame.Timestamp.IsZero())
	}
}

func TestReader_ContextCancellation(t *testing.T) {
	path := writeTestPcap(t, 100)

	// Queue smaller than the file: Run must stop blocking on a full channel
	// as soon as the context is cancelled.
	r, err := NewReader(path, "", 2)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	<-r.Frames() // at least one frame made it through
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader("/nonexistent/trace.pcap", "", 4)
	require.Error(t, err)
}

func TestReader_InvalidFilter(t *testing.T) {
	path := writeTestPcap(t, 1)
	_, err := NewReader(path, "not a valid filter ((", 4)
	require.Error(t, err)
}
