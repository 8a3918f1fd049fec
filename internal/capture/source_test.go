package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/metalgrid/tcpgraph/internal/model"
)

func TestLiveSource_EnqueueDropsNewestWhenFull(t *testing.T) {
	src := &LiveSource{frames: make(chan *model.CapturedFrame, 2)}

	frame := func(n int) *model.CapturedFrame {
		return &model.CapturedFrame{CaptureLength: n, Timestamp: time.Now()}
	}

	assert.True(t, src.enqueue(frame(1)))
	assert.True(t, src.enqueue(frame(2)))
	// Queue is full: the newest frame is dropped, the capture side never blocks.
	assert.False(t, src.enqueue(frame(3)))

	seen, dropped := src.Stats()
	assert.Equal(t, uint64(3), seen)
	assert.Equal(t, uint64(1), dropped)

	// The two queued frames are unaffected and still in capture order.
	first := <-src.frames
	second := <-src.frames
	assert.Equal(t, 1, first.CaptureLength)
	assert.Equal(t, 2, second.CaptureLength)

	// Space freed: enqueue succeeds again.
	assert.True(t, src.enqueue(frame(4)))
	seen, dropped = src.Stats()
	assert.Equal(t, uint64(4), seen)
	assert.Equal(t, uint64(1), dropped)
}
