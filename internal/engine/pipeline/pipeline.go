// Package pipeline wires the capture source, the per-frame classification and
// extraction steps, and the bandwidth aggregator into a live, cancellable
// stream of bandwidth samples.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/metalgrid/tcpgraph/internal/capture"
	"github.com/metalgrid/tcpgraph/internal/config"
	"github.com/metalgrid/tcpgraph/internal/engine/bandwidth"
	"github.com/metalgrid/tcpgraph/internal/model"
)

// sampleChannelSize bounds the output stream. A consumer that stops reading
// loses samples rather than stalling the tick loop.
const sampleChannelSize = 64

// Stats is a point-in-time snapshot of the pipeline's counters.
type Stats struct {
	FramesSeen    uint64 `json:"frames_seen"`
	FramesDropped uint64 `json:"frames_dropped"`
	TransitBytes  uint64 `json:"transit_bytes"`
}

// Pipeline owns the two execution contexts of the monitoring core: the
// blocking capture goroutine and the timer-driven aggregation goroutine. All
// aggregator hot state is confined to the aggregation goroutine; the only
// synchronized boundaries are the bounded frame and sample channels.
type Pipeline struct {
	source      model.FrameSource
	local       *capture.LocalAddressSet
	agg         *bandwidth.Aggregator
	payloadOnly bool
	interval    time.Duration

	out    chan model.BandwidthSample
	cancel context.CancelFunc

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Start resolves the local address set, opens the live capture, and runs the
// pipeline. Setup failures (interface not found, invalid filter, insufficient
// privilege) are returned synchronously.
func Start(cfg *config.Config) (*Pipeline, error) {
	local, err := capture.ResolveLocalAddresses(cfg.Capture.Interface)
	if err != nil {
		return nil, err
	}

	source, err := capture.NewLiveSource(cfg.Capture)
	if err != nil {
		return nil, err
	}

	return StartWithSource(cfg, source, local)
}

// StartWithSource runs the pipeline over an arbitrary frame source. The
// offline replay reader and tests use it to drive the identical aggregation
// path without a live handle.
func StartWithSource(cfg *config.Config, source model.FrameSource, local *capture.LocalAddressSet) (*Pipeline, error) {
	interval, err := cfg.Interval()
	if err != nil {
		return nil, err
	}
	retention, err := cfg.HistoryRetention()
	if err != nil {
		return nil, err
	}
	duration, err := cfg.Duration()
	if err != nil {
		return nil, err
	}

	if local.Size() == 0 {
		log.Printf("Warning: no local link-layer addresses resolved for %q; all traffic will classify as unknown", cfg.Capture.Interface)
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, duration)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	p := &Pipeline{
		source:      source,
		local:       local,
		agg:         bandwidth.NewAggregator(interval, cfg.Monitor.SmoothingWindow, retention),
		payloadOnly: cfg.Monitor.PayloadOnly,
		interval:    interval,
		out:         make(chan model.BandwidthSample, sampleChannelSize),
		cancel:      cancel,
	}

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		source.Run(ctx)
	}()
	go p.run(ctx)

	return p, nil
}

// run is the aggregation loop. It owns all aggregator state exclusively.
func (p *Pipeline) run(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.out)
	defer p.cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	frames := p.source.Frames()
	for {
		select {
		case <-ctx.Done():
			// Close the handle so the capture goroutine is not left in a
			// blocking read, then drain whatever it already queued.
			p.source.Close()
			for frame := range frames {
				p.process(frame)
			}
			p.finalFlush()
			return
		case frame, ok := <-frames:
			if !ok {
				// Source exhausted (offline replay done, or handle closed).
				p.finalFlush()
				return
			}
			p.process(frame)
		case now := <-ticker.C:
			p.emit(p.agg.Tick(now))
		}
	}
}

// process classifies and sizes one frame and hands it to the aggregator.
func (p *Pipeline) process(frame *model.CapturedFrame) {
	dir := capture.ClassifyDirection(frame.Data, p.local)
	n := capture.ExtractByteCount(frame, p.payloadOnly)
	p.agg.Accumulate(model.ByteSample{Direction: dir, Bytes: n, Timestamp: frame.Timestamp})
}

// finalFlush emits one last sample if a partial interval has unflushed bytes.
func (p *Pipeline) finalFlush() {
	if p.agg.PendingBytes() > 0 {
		p.emit(p.agg.Tick(time.Now()))
	}
}

// emit writes a sample to the output channel without ever blocking the
// aggregation loop. A full channel means the consumer is gone or lagging; the
// sample is dropped and remains visible through the history.
func (p *Pipeline) emit(sample model.BandwidthSample) {
	select {
	case p.out <- sample:
	default:
	}
}

// Samples returns the output stream of bandwidth samples. The channel is
// closed after shutdown once in-flight frames are drained.
func (p *Pipeline) Samples() <-chan model.BandwidthSample {
	return p.out
}

// Stop triggers cooperative shutdown. It is idempotent, never blocks, and is
// safe to call from a signal handler. Use Wait to block until the pipeline
// has drained and the sample channel is closed.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.source.Close()
	})
}

// Wait blocks until both pipeline goroutines have exited.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// History returns a copy of the retained bandwidth samples.
func (p *Pipeline) History() []model.BandwidthSample {
	return p.agg.History()
}

// Maxima returns the session-lifetime maximum smoothed rates.
func (p *Pipeline) Maxima() (inboundBps, outboundBps float64) {
	return p.agg.Maxima()
}

// Stats returns the pipeline's counters. Frame counters are available only
// for sources that track them.
func (p *Pipeline) Stats() Stats {
	stats := Stats{TransitBytes: p.agg.TransitBytes()}
	if src, ok := p.source.(interface{ Stats() (seen, dropped uint64) }); ok {
		stats.FramesSeen, stats.FramesDropped = src.Stats()
	}
	return stats
}
