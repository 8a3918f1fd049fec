package bandwidth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoothingWindow_RampUp(t *testing.T) {
	// During the first N ticks the mean covers only the entries pushed so
	// far; the window is never zero-padded.
	w := NewSmoothingWindow(3)

	w.Push(10, 100)
	in, out := w.Mean()
	assert.Equal(t, 10.0, in)
	assert.Equal(t, 100.0, out)

	w.Push(20, 200)
	in, out = w.Mean()
	assert.Equal(t, 15.0, in)
	assert.Equal(t, 150.0, out)

	w.Push(30, 300)
	in, out = w.Mean()
	assert.Equal(t, 20.0, in)
	assert.Equal(t, 200.0, out)
}

func TestSmoothingWindow_Eviction(t *testing.T) {
	w := NewSmoothingWindow(3)
	w.Push(10, 0)
	w.Push(20, 0)
	w.Push(30, 0)

	// A fourth push evicts the oldest entry.
	w.Push(40, 0)
	assert.Equal(t, 3, w.Len())
	in, _ := w.Mean()
	assert.Equal(t, 30.0, in)
}

func TestSmoothingWindow_SteadyState(t *testing.T) {
	w := NewSmoothingWindow(3)
	for i := 0; i < 10; i++ {
		w.Push(42, 7)
	}
	in, out := w.Mean()
	assert.Equal(t, 42.0, in)
	assert.Equal(t, 7.0, out)
}

func TestSmoothingWindow_Empty(t *testing.T) {
	w := NewSmoothingWindow(3)
	in, out := w.Mean()
	assert.Equal(t, 0.0, in)
	assert.Equal(t, 0.0, out)
	assert.Equal(t, 0, w.Len())
}

func TestSmoothingWindow_MinimumCapacity(t *testing.T) {
	w := NewSmoothingWindow(0)
	w.Push(10, 10)
	w.Push(30, 30)
	assert.Equal(t, 1, w.Len())
	in, _ := w.Mean()
	assert.Equal(t, 30.0, in)
}
