package logging

import "log/slog"

// EnableTrace gates per-frame logging. Off by default; flip it during
// development to get one DEBUG line per datalink frame.
var EnableTrace = false

// Trace logs at DEBUG level only while EnableTrace is set, so hot paths
// pay a single flag check in normal runs.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}
