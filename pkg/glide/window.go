package glide

import "math"

// Window holds a bounded circular history of per-interval (min, max)
// pairs. Storage is a pair of fixed slices plus a count and a write
// index, so recording stays O(1) and resetting never reallocates.
// Slots beyond count are masked and never read.
type Window struct {
	mins  []float64
	maxs  []float64
	count int
	write int
}

// NewWindow creates an empty window holding up to capacity interval
// snapshots. Capacities below 1 are clamped to 1.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	w := &Window{
		mins: make([]float64, capacity),
		maxs: make([]float64, capacity),
	}
	w.Reset()
	return w
}

// Record commits the accumulator's extremes into the next slot,
// overwriting the oldest entry once the window is full. An empty
// accumulator contributes nothing: no slot is consumed and the write
// pointer does not advance.
func (w *Window) Record(e *Extremes) {
	if !e.HasValue() {
		return
	}
	w.write = (w.write + 1) % len(w.mins)
	w.mins[w.write] = e.Min()
	w.maxs[w.write] = e.Max()
	if w.count < len(w.mins) {
		w.count++
	}
}

// Reset empties the window without reallocating. Slot contents are
// cleared to NaN so stale values cannot leak into a later inspection.
func (w *Window) Reset() {
	w.count = 0
	w.write = -1
	for i := range w.mins {
		w.mins[i] = math.NaN()
		w.maxs[i] = math.NaN()
	}
}

// AggregateMin returns the minimum across the populated slots, NaN when
// the window is empty.
func (w *Window) AggregateMin() float64 {
	m := math.NaN()
	for i := 0; i < w.count; i++ {
		if math.IsNaN(m) || w.mins[i] < m {
			m = w.mins[i]
		}
	}
	return m
}

// AggregateMax returns the maximum across the populated slots, NaN when
// the window is empty.
func (w *Window) AggregateMax() float64 {
	m := math.NaN()
	for i := 0; i < w.count; i++ {
		if math.IsNaN(m) || w.maxs[i] > m {
			m = w.maxs[i]
		}
	}
	return m
}

// FractionComplete reports how full the window is, from 0 to 1.
func (w *Window) FractionComplete() float64 {
	return float64(w.count) / float64(len(w.mins))
}

// Count returns the number of populated slots.
func (w *Window) Count() int {
	return w.count
}

// Capacity returns the number of slots the window retains.
func (w *Window) Capacity() int {
	return len(w.mins)
}
