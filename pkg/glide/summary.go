package glide

import "math"

// Summary is the pull-based consumer view of the tracker. While the
// window is still filling only Completeness is meaningful; Ratio,
// DescentSpeed and SpeedDelta stay NaN until it reaches 1.0.
type Summary struct {
	State  State
	Reason string

	// Completeness is the filled fraction of the sampling window.
	Completeness float64

	// Ratio is the minimum glide ratio seen across the window and
	// DescentSpeed the maximum descent speed: worst-case figures,
	// deliberately conservative.
	Ratio        float64
	DescentSpeed float64

	// SpeedDelta is (max/min)-1 of total speed across the window.
	SpeedDelta  float64
	Stabilizing bool

	// Controlled reports whether the latest tracked tick carried trim,
	// autopilot or manual input.
	Controlled bool

	// TrackingStart is the simulation time the current glide began, NaN
	// while invalid.
	TrackingStart float64
}

// Complete reports whether the trailing window is fully populated.
func (s Summary) Complete() bool {
	return s.Completeness >= 1.0
}

// Summary derives the current consumer view. The completeness is the
// min across the ratio and descent windows rather than an assumed
// equality, since a caller must not rely on strict lockstep.
func (t *Tracker) Summary() Summary {
	s := Summary{
		State:         t.State(),
		Reason:        t.reason,
		Ratio:         math.NaN(),
		DescentSpeed:  math.NaN(),
		SpeedDelta:    math.NaN(),
		TrackingStart: t.trackingStart,
	}
	if !t.tracking {
		return s
	}

	s.Controlled = t.controlled
	s.Completeness = math.Min(
		t.ratio.win.FractionComplete(),
		t.descent.win.FractionComplete(),
	)
	if !s.Complete() {
		return s
	}

	s.Ratio = t.ratio.win.AggregateMin()
	s.DescentSpeed = t.descent.win.AggregateMax()
	s.SpeedDelta = t.speed.win.AggregateMax()/t.speed.win.AggregateMin() - 1
	s.Stabilizing = s.SpeedDelta > t.opts.StabilizationThreshold
	return s
}
