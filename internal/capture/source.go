package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/metalgrid/tcpgraph/internal/config"
	"github.com/metalgrid/tcpgraph/internal/model"
)

// LiveSource reads frames from a live pcap handle into a bounded channel.
//
// The read loop blocks inside libpcap, so it runs on its own goroutine and is
// interrupted by closing the handle, not by the context alone. When the frame
// channel is full, new frames are dropped (drop-newest) and counted; the
// capture side never blocks on a slow consumer.
type LiveSource struct {
	handle *pcap.Handle
	frames chan *model.CapturedFrame

	framesSeen    atomic.Uint64
	framesDropped atomic.Uint64

	closeOnce sync.Once
}

// NewLiveSource opens the capture handle and applies the BPF filter. Setup
// failures (no such device, insufficient privilege, invalid filter) are
// surfaced here and never retried.
func NewLiveSource(cfg config.CaptureConfig) (*LiveSource, error) {
	handle, err := pcap.OpenLive(cfg.Interface, cfg.SnapshotLen, cfg.Promiscuous, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", cfg.Interface, err)
	}

	if cfg.Filter != "" {
		if err := handle.SetBPFFilter(cfg.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("invalid capture filter %q: %w", cfg.Filter, err)
		}
	}

	return &LiveSource{
		handle: handle,
		frames: make(chan *model.CapturedFrame, cfg.QueueSize),
	}, nil
}

// Run reads packets until the context is cancelled or the handle is closed,
// then closes the frame channel.
func (s *LiveSource) Run(ctx context.Context) {
	defer close(s.frames)

	packetSource := gopacket.NewPacketSource(s.handle, s.handle.LinkType())
	packets := packetSource.Packets()

	for {
		select {
		case <-ctx.Done():
			return
		case packet, ok := <-packets:
			if !ok {
				// Handle closed or capture error; either way the source is done.
				return
			}
			ci := packet.Metadata().CaptureInfo
			s.enqueue(&model.CapturedFrame{
				Data:          packet.Data(),
				CaptureLength: ci.CaptureLength,
				Timestamp:     ci.Timestamp,
			})
		}
	}
}

// enqueue pushes a frame onto the bounded channel, dropping it when full.
func (s *LiveSource) enqueue(frame *model.CapturedFrame) bool {
	s.framesSeen.Add(1)
	select {
	case s.frames <- frame:
		return true
	default:
		s.framesDropped.Add(1)
		return false
	}
}

// Frames returns the bounded channel of captured frames.
func (s *LiveSource) Frames() <-chan *model.CapturedFrame {
	return s.frames
}

// Close closes the pcap handle, unblocking a Run stuck in a blocking read.
// It is idempotent and safe to call from any goroutine.
func (s *LiveSource) Close() {
	s.closeOnce.Do(func() {
		s.handle.Close()
	})
}

// Stats returns the number of frames seen and the number dropped due to a
// full queue.
func (s *LiveSource) Stats() (seen, dropped uint64) {
	return s.framesSeen.Load(), s.framesDropped.Load()
}
