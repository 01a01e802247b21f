// Package glide implements the unpowered-glide classifier and its
// windowed statistics engine: running extremes are accumulated per
// flush interval, committed into fixed-capacity sliding windows, and
// summarized on demand.
package glide

import "math"

// Extremes tracks the running minimum and maximum of a scalar stream
// since the last reset. NaN is the "no value yet" sentinel for both
// bounds; they are set and cleared together.
type Extremes struct {
	min float64
	max float64
}

// NewExtremes returns an empty accumulator.
func NewExtremes() *Extremes {
	return &Extremes{min: math.NaN(), max: math.NaN()}
}

// Update widens the extremes to include v. NaN samples are dropped so a
// malformed reading can never poison the running bounds.
func (e *Extremes) Update(v float64) {
	if math.IsNaN(v) {
		return
	}
	if math.IsNaN(e.min) || v < e.min {
		e.min = v
	}
	if math.IsNaN(e.max) || v > e.max {
		e.max = v
	}
}

// Reset clears both bounds. Idempotent.
func (e *Extremes) Reset() {
	e.min = math.NaN()
	e.max = math.NaN()
}

// Min returns the running minimum, NaN if no sample was recorded.
func (e *Extremes) Min() float64 {
	return e.min
}

// Max returns the running maximum, NaN if no sample was recorded.
func (e *Extremes) Max() float64 {
	return e.max
}

// HasValue reports whether at least one valid sample was recorded since
// the last reset.
func (e *Extremes) HasValue() bool {
	return !math.IsNaN(e.min)
}
