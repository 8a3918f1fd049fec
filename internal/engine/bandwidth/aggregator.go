package bandwidth

import (
	"sync/atomic"
	"time"

	"github.com/metalgrid/tcpgraph/internal/model"
)

// Aggregator accumulates classified byte counts between ticks and turns them
// into smoothed bidirectional bandwidth samples.
//
// Accumulate and Tick must be called from a single goroutine; the pipeline
// confines them to its aggregation loop, so the byte counters need no locking.
// History, Maxima, and TransitBytes are safe for concurrent readers.
//
// Unknown-direction (transit) bytes are excluded from both the inbound and
// outbound totals and tracked in a separate counter, so a router's forwarded
// traffic never inflates the host's own rates.
type Aggregator struct {
	interval time.Duration

	inboundBytes  uint64
	outboundBytes uint64
	transitBytes  atomic.Uint64

	window  *SmoothingWindow
	history *History
}

// NewAggregator creates an aggregator producing one sample per interval,
// smoothed over windowSize intervals, retaining history for the given span.
func NewAggregator(interval time.Duration, windowSize int, retention time.Duration) *Aggregator {
	return &Aggregator{
		interval: interval,
		window:   NewSmoothingWindow(windowSize),
		history:  NewHistory(retention),
	}
}

// Accumulate adds one frame's byte count to the counter for its direction.
func (a *Aggregator) Accumulate(sample model.ByteSample) {
	switch sample.Direction {
	case model.DirectionInbound:
		a.inboundBytes += uint64(sample.Bytes)
	case model.DirectionOutbound:
		a.outboundBytes += uint64(sample.Bytes)
	default:
		a.transitBytes.Add(uint64(sample.Bytes))
	}
}

// Tick computes the raw rates for the elapsed interval, resets the byte
// counters, pushes the raw pair into the smoothing window, and returns the
// smoothed sample. An interval with zero frames yields a raw rate of exactly
// zero, which still enters the window and pulls the average down.
func (a *Aggregator) Tick(now time.Time) model.BandwidthSample {
	secs := a.interval.Seconds()
	rawInbound := float64(a.inboundBytes) * 8 / secs
	rawOutbound := float64(a.outboundBytes) * 8 / secs
	a.inboundBytes = 0
	a.outboundBytes = 0

	a.window.Push(rawInbound, rawOutbound)
	inbound, outbound := a.window.Mean()

	sample := model.BandwidthSample{
		InboundBps:  inbound,
		OutboundBps: outbound,
		Timestamp:   now,
	}
	a.history.Append(sample)
	return sample
}

// PendingBytes returns the directional bytes accumulated since the last tick.
// The pipeline uses it to decide whether a partial interval needs a final
// flush on shutdown.
func (a *Aggregator) PendingBytes() uint64 {
	return a.inboundBytes + a.outboundBytes
}

// History returns a copy of the retained bandwidth samples.
func (a *Aggregator) History() []model.BandwidthSample {
	return a.history.Samples()
}

// Maxima returns the session-lifetime maximum smoothed rates.
func (a *Aggregator) Maxima() (inboundBps, outboundBps float64) {
	return a.history.Maxima()
}

// TransitBytes returns the total bytes classified Unknown so far.
func (a *Aggregator) TransitBytes() uint64 {
	return a.transitBytes.Load()
}
