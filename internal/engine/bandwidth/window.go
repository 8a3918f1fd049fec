// Package bandwidth implements the aggregation core: per-interval byte
// accumulation, rate smoothing, and the bounded bandwidth history.
package bandwidth

// ratePair is one interval's raw bidirectional rate in bits per second.
type ratePair struct {
	inbound  float64
	outbound float64
}

// SmoothingWindow is a fixed-capacity sliding window of raw per-interval rate
// pairs with FIFO eviction. The smoothed rate is the arithmetic mean of the
// entries currently held, so during the first N ticks the effective window
// size ramps up from 1 to N instead of being padded with zeros.
type SmoothingWindow struct {
	entries  []ratePair
	capacity int
}

// NewSmoothingWindow creates a window holding at most capacity entries.
func NewSmoothingWindow(capacity int) *SmoothingWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &SmoothingWindow{
		entries:  make([]ratePair, 0, capacity),
		capacity: capacity,
	}
}

// Push adds a raw rate pair, evicting the oldest entry when at capacity.
func (w *SmoothingWindow) Push(inboundBps, outboundBps float64) {
	if len(w.entries) == w.capacity {
		copy(w.entries, w.entries[1:])
		w.entries = w.entries[:len(w.entries)-1]
	}
	w.entries = append(w.entries, ratePair{inbound: inboundBps, outbound: outboundBps})
}

// Mean returns the arithmetic mean of the entries currently in the window.
// An empty window yields zero rates.
func (w *SmoothingWindow) Mean() (inboundBps, outboundBps float64) {
	if len(w.entries) == 0 {
		return 0, 0
	}
	var inSum, outSum float64
	for _, e := range w.entries {
		inSum += e.inbound
		outSum += e.outbound
	}
	n := float64(len(w.entries))
	return inSum / n, outSum / n
}

// Len returns the number of entries currently held.
func (w *SmoothingWindow) Len() int {
	return len(w.entries)
}
