package bandwidth

import (
	"sync"
	"time"

	"github.com/metalgrid/tcpgraph/internal/model"
)

// History is a bounded, time-ordered sequence of bandwidth samples. Entries
// older than the retention span are evicted as new samples arrive. The running
// maxima are never evicted and stay monotonic for the session's lifetime.
//
// Append runs on the aggregation goroutine; the read accessors may be called
// concurrently by export surfaces, hence the RWMutex.
type History struct {
	mu        sync.RWMutex
	samples   []model.BandwidthSample
	retention time.Duration

	maxInbound  float64
	maxOutbound float64
}

// NewHistory creates a history retaining samples for the given span.
func NewHistory(retention time.Duration) *History {
	return &History{retention: retention}
}

// Append adds a sample, evicts entries older than the retention span, and
// updates the running maxima.
func (h *History) Append(sample model.BandwidthSample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, sample)

	cutoff := sample.Timestamp.Add(-h.retention)
	evicted := 0
	for evicted < len(h.samples) && h.samples[evicted].Timestamp.Before(cutoff) {
		evicted++
	}
	if evicted > 0 {
		h.samples = h.samples[:copy(h.samples, h.samples[evicted:])]
	}

	if sample.InboundBps > h.maxInbound {
		h.maxInbound = sample.InboundBps
	}
	if sample.OutboundBps > h.maxOutbound {
		h.maxOutbound = sample.OutboundBps
	}
}

// Samples returns a copy of the retained samples in chronological order.
func (h *History) Samples() []model.BandwidthSample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.BandwidthSample, len(h.samples))
	copy(out, h.samples)
	return out
}

// Len returns the number of retained samples.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Maxima returns the running maximum inbound and outbound rates observed over
// the whole session, including rates whose samples have since been evicted.
func (h *History) Maxima() (inboundBps, outboundBps float64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maxInbound, h.maxOutbound
}
