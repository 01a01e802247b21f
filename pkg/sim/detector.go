package sim

// Detector debounces the glide-eligibility signal across telemetry
// ticks. Pause and loss of the craft gate immediately; ground contact
// flickers during bounces and rollouts, so contact transitions need a
// run of confirming ticks before they take.
type Detector struct {
	confirmTicks int

	initialized   bool
	airborne      bool
	candidate     bool
	hasCandidate  bool
	confirmations int
}

// NewDetector creates a detector requiring confirmTicks consecutive
// ticks (minimum 1) to accept an air/ground transition.
func NewDetector(confirmTicks int) *Detector {
	if confirmTicks < 1 {
		confirmTicks = 1
	}
	return &Detector{confirmTicks: confirmTicks}
}

// Update evaluates one telemetry frame and returns whether the craft is
// considered eligible for glide tracking.
func (d *Detector) Update(t *Telemetry) bool {
	if !t.InFlight || t.Paused {
		return false
	}

	raw := !t.OnGround

	if !d.initialized {
		d.initialized = true
		d.airborne = raw
		return d.airborne
	}

	switch {
	case raw == d.airborne:
		d.hasCandidate = false
		d.confirmations = 0
	case d.hasCandidate && raw == d.candidate:
		d.confirmations++
		if d.confirmations >= d.confirmTicks-1 {
			d.airborne = raw
			d.hasCandidate = false
			d.confirmations = 0
		}
	default:
		d.candidate = raw
		d.hasCandidate = true
		d.confirmations = 0
	}

	return d.airborne
}

// Reset forgets all history, as if freshly constructed.
func (d *Detector) Reset() {
	d.initialized = false
	d.airborne = false
	d.hasCandidate = false
	d.confirmations = 0
}
