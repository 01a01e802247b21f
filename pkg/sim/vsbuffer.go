package sim

// VSBuffer derives vertical speed from altitude samples for feeds that
// do not report it directly. Samples live in the simulation-time
// domain; the rate is the altitude slope across the retained window.
// Not safe for concurrent use; it belongs to the feed's read loop.
type VSBuffer struct {
	samples []altSample
	window  float64 // seconds
}

type altSample struct {
	time float64
	alt  float64
}

// NewVSBuffer creates a buffer spanning the given window in seconds.
func NewVSBuffer(windowSeconds float64) *VSBuffer {
	return &VSBuffer{window: windowSeconds}
}

// Update adds an altitude sample and returns the vertical speed in
// meters per second, 0 until two samples span a positive interval.
func (b *VSBuffer) Update(now, alt float64) float64 {
	b.samples = append(b.samples, altSample{time: now, alt: alt})

	cutoff := now - b.window
	for len(b.samples) > 2 && b.samples[1].time < cutoff {
		b.samples = b.samples[1:]
	}

	if len(b.samples) < 2 {
		return 0
	}

	first := b.samples[0]
	last := b.samples[len(b.samples)-1]
	dt := last.time - first.time
	if dt <= 0 {
		return 0
	}
	return (last.alt - first.alt) / dt
}

// Reset clears the buffer.
func (b *VSBuffer) Reset() {
	b.samples = nil
}
