package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
)

// toneStreamer renders a fixed-length sine burst. A short attack and
// release ramp keeps the cue free of clicks.
type toneStreamer struct {
	freq       float64
	sampleRate float64
	pos        int
	length     int
	ramp       int
}

func newTone(sr beep.SampleRate, freq float64, dur time.Duration) *toneStreamer {
	length := sr.N(dur)
	ramp := sr.N(5 * time.Millisecond)
	if 2*ramp > length {
		ramp = length / 2
	}
	return &toneStreamer{
		freq:       freq,
		sampleRate: float64(sr),
		length:     length,
		ramp:       ramp,
	}
}

func (t *toneStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.length {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.length {
			break
		}
		v := math.Sin(2 * math.Pi * t.freq * float64(t.pos) / t.sampleRate)
		v *= t.envelope()
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
		n++
	}
	return n, true
}

func (t *toneStreamer) envelope() float64 {
	if t.ramp == 0 {
		return 1
	}
	if t.pos < t.ramp {
		return float64(t.pos) / float64(t.ramp)
	}
	if rem := t.length - t.pos; rem < t.ramp {
		return float64(rem) / float64(t.ramp)
	}
	return 1
}

func (t *toneStreamer) Err() error { return nil }

// note is one element of a cue melody.
type note struct {
	freq float64
	dur  time.Duration
}

// cueNotes returns the melody for a cue. Unknown cues are silent.
func cueNotes(cue Cue) []note {
	switch cue {
	case CueWindowComplete:
		// Rising pair: measurement is ready.
		return []note{{880, 120 * time.Millisecond}, {1318, 160 * time.Millisecond}}
	case CueStabilizing:
		// Single mid tone: speed still settling.
		return []note{{660, 110 * time.Millisecond}}
	case CueTrackingLost:
		// Falling pair: glide over.
		return []note{{660, 120 * time.Millisecond}, {440, 160 * time.Millisecond}}
	default:
		return nil
	}
}

// cueStreamer assembles the melody for a cue with short gaps between
// notes at the given sample rate.
func cueStreamer(cue Cue, sr beep.SampleRate) beep.Streamer {
	notes := cueNotes(cue)
	if len(notes) == 0 {
		return beep.Silence(0)
	}

	gap := sr.N(40 * time.Millisecond)
	parts := make([]beep.Streamer, 0, 2*len(notes)-1)
	for i, nt := range notes {
		if i > 0 {
			parts = append(parts, beep.Silence(gap))
		}
		parts = append(parts, newTone(sr, nt.freq, nt.dur))
	}
	return beep.Seq(parts...)
}
