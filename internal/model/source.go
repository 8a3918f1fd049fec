package model

import "context"

// FrameSource produces a sequence of captured frames on a bounded channel.
// The live pcap source and the offline replay reader both implement it, so the
// pipeline is driven identically by either.
type FrameSource interface {
	// Run performs the blocking read loop, pushing frames onto the channel
	// returned by Frames. It returns when the source is exhausted, the
	// context is cancelled, or the underlying handle is closed. Run closes
	// the frame channel before returning.
	Run(ctx context.Context)

	// Frames returns the bounded channel of captured frames.
	Frames() <-chan *CapturedFrame

	// Close interrupts a blocked Run. It is idempotent.
	Close()
}
