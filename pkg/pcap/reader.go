// Package pcap replays capture files through the monitoring pipeline.
package pcap

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/metalgrid/tcpgraph/internal/model"
)

// Reader reads frames from a pcap file. It implements the same frame source
// contract as the live capture, so a recorded trace drives the identical
// classification and aggregation path.
//
// Unlike the live source, the replay loop blocks when the frame channel is
// full: a file has no upstream to drop for, and every recorded frame should
// be counted.
type Reader struct {
	handle *pcap.Handle
	frames chan *model.CapturedFrame

	closeOnce sync.Once
}

// NewReader opens the pcap file and applies the optional filter expression.
func NewReader(filePath, filter string, queueSize int) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", filePath, err)
	}

	if filter != "" {
		if err := handle.SetBPFFilter(filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("invalid capture filter %q: %w", filter, err)
		}
	}

	return &Reader{
		handle: handle,
		frames: make(chan *model.CapturedFrame, queueSize),
	}, nil
}

// Run reads all packets from the file, pushing each onto the frame channel,
// and closes the channel when the file is exhausted or the context cancelled.
func (r *Reader) Run(ctx context.Context) {
	defer close(r.frames)

	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range packetSource.Packets() {
		ci := packet.Metadata().CaptureInfo
		frame := &model.CapturedFrame{
			Data:          packet.Data(),
			CaptureLength: ci.CaptureLength,
			Timestamp:     ci.Timestamp,
		}
		select {
		case <-ctx.Done():
			return
		case r.frames <- frame:
		}
	}
}

// Frames returns the bounded channel of captured frames.
func (r *Reader) Frames() <-chan *model.CapturedFrame {
	return r.frames
}

// Close closes the pcap handle. It is idempotent.
func (r *Reader) Close() {
	r.closeOnce.Do(func() {
		r.handle.Close()
	})
}
