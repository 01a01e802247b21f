package glide

import "fmt"

// Units accepted by the formatting helpers.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

const (
	knotsPerMS = 1.9438444924406
	fpmPerMS   = 196.8503937008
)

// FormatSpeed renders an airspeed in the requested units.
func FormatSpeed(ms float64, units string) string {
	if units == UnitsImperial {
		return fmt.Sprintf("%.0f kt", ms*knotsPerMS)
	}
	return fmt.Sprintf("%.1f m/s", ms)
}

// FormatSink renders a descent rate in the requested units.
func FormatSink(ms float64, units string) string {
	if units == UnitsImperial {
		return fmt.Sprintf("%.0f fpm", ms*fpmPerMS)
	}
	return fmt.Sprintf("%.1f m/s", ms)
}

// FormatStatus renders the one-line overlay status for a summary.
func FormatStatus(s Summary, units string) string {
	if s.State != StateTracking {
		return fmt.Sprintf("Not gliding (%s)", s.Reason)
	}
	if !s.Complete() {
		return fmt.Sprintf("Measuring glide... %d%%", int(s.Completeness*100))
	}
	if s.Stabilizing {
		return fmt.Sprintf("L/D %.1f, sink %s, speed delta %.1f%% (stabilizing)",
			s.Ratio, FormatSink(s.DescentSpeed, units), s.SpeedDelta*100)
	}
	return fmt.Sprintf("L/D %.1f, sink %s", s.Ratio, FormatSink(s.DescentSpeed, units))
}
