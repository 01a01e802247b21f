package logging

import (
	"strings"
	"sync"
)

// captureDepth is the number of log lines the capture ring retains.
const captureDepth = 200

// LogCaptureWriter is a thread-safe writer that keeps the most recent
// log lines in a ring for the overlay and the log API.
type LogCaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// GlobalLogCapture is the singleton instance for capturing logs.
var GlobalLogCapture = &LogCaptureWriter{}

// GlobalEventCapture is the singleton instance for capturing glide events.
var GlobalEventCapture = &LogCaptureWriter{}

// Write implements io.Writer. Each write is treated as one log line.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimRight(string(p), "\n")
	if line == "" {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.lines) < captureDepth {
		w.lines = append(w.lines, line)
	} else {
		w.lines[w.next] = line
		w.next = (w.next + 1) % captureDepth
		w.full = true
	}
	return len(p), nil
}

// GetLastLine returns the most recent log line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.lines) == 0 {
		return ""
	}
	if !w.full {
		return w.lines[len(w.lines)-1]
	}
	return w.lines[(w.next-1+captureDepth)%captureDepth]
}

// Snapshot returns the retained lines, oldest first.
func (w *LogCaptureWriter) Snapshot() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.lines))
	if !w.full {
		return append(out, w.lines...)
	}
	out = append(out, w.lines[w.next:]...)
	return append(out, w.lines[:w.next]...)
}
