package glide

import "math"

// Accumulators are committed into the windows every quarter second of
// simulation time, decoupling the tick rate from the statistics
// resolution.
const flushInterval = 0.25

// Vertical speed must be below this (negative) bound to count as a
// descent.
const descentEpsilon = 0.001

// State reports whether the tracker is accumulating statistics.
type State string

const (
	StateInvalid  State = "invalid"
	StateTracking State = "tracking"
)

// Disqualification reasons, surfaced verbatim in summaries and logs.
const (
	ReasonNotInFlight   = "not in flight"
	ReasonThrottle      = "throttle > 0"
	ReasonTrim          = "trim detected"
	ReasonControlInput  = "control input detected"
	ReasonNotDescending = "not descending"
)

// Options configures a Tracker. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	// SamplingWindowSeconds is the trailing window length the summary
	// covers. Together with the fixed flush interval it determines the
	// window capacity.
	SamplingWindowSeconds float64

	// StabilizationThreshold is the speed-delta fraction above which
	// the glide is flagged as still stabilizing.
	StabilizationThreshold float64

	// AllowTrim keeps tracking alive while trim input is present.
	AllowTrim bool

	// AllowControlInput keeps tracking alive while manual or autopilot
	// control input is present.
	AllowControlInput bool
}

// DefaultOptions returns the stock tracker configuration.
func DefaultOptions() Options {
	return Options{
		SamplingWindowSeconds:  10.0,
		StabilizationThreshold: 0.01,
		AllowTrim:              true,
		AllowControlInput:      true,
	}
}

// WindowCapacity derives the number of interval snapshots retained.
func (o Options) WindowCapacity() int {
	c := int(math.Round(o.SamplingWindowSeconds / flushInterval))
	if c < 1 {
		c = 1
	}
	return c
}

// Sample carries one tick's worth of host readings. Time is monotonic
// simulation seconds; VerticalSpeed is negative while descending.
type Sample struct {
	Time            float64
	Eligible        bool
	VerticalSpeed   float64
	HorizontalSpeed float64
	TotalSpeed      float64
	Throttle        float64
	TrimActive      bool
	AutopilotInput  bool
	ManualInput     bool
}

type pair struct {
	acc *Extremes
	win *Window
}

func newPair(capacity int) pair {
	return pair{acc: NewExtremes(), win: NewWindow(capacity)}
}

func (p pair) flush() {
	p.win.Record(p.acc)
	p.acc.Reset()
}

func (p pair) reset() {
	p.acc.Reset()
	p.win.Reset()
}

// Tracker decides, tick by tick, whether the craft is in a stable
// unpowered glide, and while it is, maintains windowed extremes of
// glide ratio, descent speed and total speed. It is not safe for
// concurrent use; the caller owns synchronization.
type Tracker struct {
	opts Options

	ratio   pair
	descent pair
	speed   pair

	tracking      bool
	reason        string
	controlled    bool
	trackingStart float64
	nextSample    float64
	flushes       int64
}

// NewTracker builds a tracker with all statistics empty.
func NewTracker(opts Options) *Tracker {
	capacity := opts.WindowCapacity()
	t := &Tracker{
		opts:    opts,
		ratio:   newPair(capacity),
		descent: newPair(capacity),
		speed:   newPair(capacity),
	}
	t.Reset()
	return t
}

// Options returns the configuration the tracker was built with.
func (t *Tracker) Options() Options {
	return t.opts
}

// State returns the current tracking state.
func (t *Tracker) State() State {
	if t.tracking {
		return StateTracking
	}
	return StateInvalid
}

// Reason returns the current disqualification, empty while tracking.
func (t *Tracker) Reason() string {
	return t.reason
}

// TrackingStart returns the simulation time tracking last began, NaN
// while invalid. Informational only.
func (t *Tracker) TrackingStart() float64 {
	return t.trackingStart
}

// Reset discards all statistics and returns the tracker to the invalid
// state, as on construction.
func (t *Tracker) Reset() {
	t.invalidate(ReasonNotInFlight)
}

// Update evaluates one tick. A disqualified tick resets every
// accumulator and window: statistics only ever describe one continuous
// glide. On a valid tick the three signals are accumulated and, each
// time the flush boundary passes, committed into the windows.
func (t *Tracker) Update(s Sample) State {
	if reason := t.disqualify(s); reason != "" {
		t.invalidate(reason)
		return StateInvalid
	}

	if !t.tracking {
		t.tracking = true
		t.reason = ""
		t.trackingStart = s.Time
	}
	t.controlled = s.TrimActive || s.AutopilotInput || s.ManualInput

	descent := -s.VerticalSpeed
	t.ratio.acc.Update(s.HorizontalSpeed / descent)
	t.descent.acc.Update(descent)
	t.speed.acc.Update(s.TotalSpeed)

	if s.Time >= t.nextSample {
		t.nextSample = s.Time + flushInterval
		t.ratio.flush()
		t.descent.flush()
		t.speed.flush()
		t.flushes++
	}
	return StateTracking
}

// Flushes returns the lifetime count of interval flushes. Invalidation
// clears the statistics but never this counter, so callers can detect
// whether a given Update crossed a flush boundary by diffing.
func (t *Tracker) Flushes() int64 {
	return t.flushes
}

// disqualify applies the validity checks in order and returns the first
// failing reason, empty when the tick qualifies.
func (t *Tracker) disqualify(s Sample) string {
	if !s.Eligible {
		return ReasonNotInFlight
	}
	if s.Throttle != 0 {
		return ReasonThrottle
	}
	if s.TrimActive && !t.opts.AllowTrim {
		return ReasonTrim
	}
	if (s.ManualInput || s.AutopilotInput) && !t.opts.AllowControlInput {
		return ReasonControlInput
	}
	if s.VerticalSpeed >= -descentEpsilon {
		return ReasonNotDescending
	}
	return ""
}

func (t *Tracker) invalidate(reason string) {
	t.tracking = false
	t.reason = reason
	t.controlled = false
	t.trackingStart = math.NaN()
	t.nextSample = math.Inf(-1)
	t.ratio.reset()
	t.descent.reset()
	t.speed.reset()
}
