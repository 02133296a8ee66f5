// Package series keeps the bounded window of recent CPU samples that backs
// the sparkline.
package series

import "math"

// DefaultCapacity is the number of CPU samples the sparkline spans.
const DefaultCapacity = 50

// Point is a canvas coordinate; y grows downward.
type Point struct {
	X, Y float64
}

// Window is a fixed-capacity FIFO ring. The zero value is not usable.
type Window struct {
	buf   []float64
	head  int
	count int
}

// NewWindow returns an empty window. Capacities below 1 are raised to 1.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends a sample and evicts the oldest one once full.
func (w *Window) Push(sample float64) {
	tail := (w.head + w.count) % len(w.buf)
	w.buf[tail] = sample
	if w.count < len(w.buf) {
		w.count++
		return
	}
	w.head = (w.head + 1) % len(w.buf)
}

func (w *Window) Len() int      { return w.count }
func (w *Window) Capacity() int { return len(w.buf) }

// Samples returns a copy, oldest first.
func (w *Window) Samples() []float64 {
	out := make([]float64, w.count)
	for i := range out {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}

// Last returns the newest sample.
func (w *Window) Last() (float64, bool) {
	if w.count == 0 {
		return 0, false
	}
	return w.buf[(w.head+w.count-1)%len(w.buf)], true
}

// RenderPoints spreads the held samples evenly across width. 0% lands on
// height and 100% on margin. Fewer than two samples draw nothing.
func (w *Window) RenderPoints(width, height, margin float64) []Point {
	if w.count < 2 {
		return nil
	}
	step := width / float64(w.count-1)
	span := height - margin
	pts := make([]Point, w.count)
	for i := 0; i < w.count; i++ {
		s := clampPercent(w.buf[(w.head+i)%len(w.buf)])
		pts[i] = Point{X: float64(i) * step, Y: height - (s/100)*span}
	}
	return pts
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
