package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"glidescope/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	datalinkLog := filepath.Join(tempDir, "datalink.log")
	requestLog := filepath.Join(tempDir, "requests.log")
	eventLog := filepath.Join(tempDir, "events.log")

	cfg := &config.LogConfig{
		Server: config.LogSettings{
			Path:  serverLog,
			Level: "DEBUG",
		},
		Datalink: config.LogSettings{
			Path:  datalinkLog,
			Level: "INFO",
		},
		Requests: config.LogSettings{
			Path:  requestLog,
			Level: "INFO",
		},
		Events: config.LogSettings{
			Path: eventLog,
		},
	}

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	if _, err := os.Stat(serverLog); os.IsNotExist(err) {
		t.Error("Server log file not created")
	}
	if _, err := os.Stat(datalinkLog); os.IsNotExist(err) {
		t.Error("Datalink log file not created")
	}
	if _, err := os.Stat(requestLog); os.IsNotExist(err) {
		t.Error("Request log file not created")
	}

	if DatalinkLogger == nil {
		t.Error("DatalinkLogger was not initialized")
	}
	if RequestLogger == nil {
		t.Error("RequestLogger was not initialized")
	}
}

func TestRotatePaths(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "app.log")

	if err := os.WriteFile(path, []byte("previous run"), 0o644); err != nil {
		t.Fatalf("failed to seed log file: %v", err)
	}

	rotatePaths(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected original log to be moved away")
	}
	content, err := os.ReadFile(path + ".old")
	if err != nil {
		t.Fatalf("expected rotated log: %v", err)
	}
	if string(content) != "previous run" {
		t.Errorf("rotated log content = %q", content)
	}
}

func TestLogEvent(t *testing.T) {
	tempDir := t.TempDir()
	eventLog := filepath.Join(tempDir, "events.log")
	SetEventLogPath(eventLog)
	defer SetEventLogPath("")

	LogEvent(&Event{
		Type:      "segment",
		Title:     "Glide segment closed",
		Summary:   "L/D 10.2, sink 1.8 m/s",
		Timestamp: time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
	})

	content, err := os.ReadFile(eventLog)
	if err != nil {
		t.Fatalf("event log not written: %v", err)
	}
	want := "[2025-03-14 15:09:26] [segment] Glide segment closed - L/D 10.2, sink 1.8 m/s\n"
	if string(content) != want {
		t.Errorf("event line = %q, want %q", content, want)
	}

	if got := GlobalEventCapture.GetLastLine(); !strings.Contains(got, "Glide segment closed") {
		t.Errorf("event capture = %q", got)
	}
}

func TestCaptureRing(t *testing.T) {
	w := &LogCaptureWriter{}

	if w.GetLastLine() != "" {
		t.Error("expected empty last line on fresh writer")
	}

	for i := 0; i < captureDepth+10; i++ {
		fmt.Fprintf(w, "line %d\n", i)
	}

	lines := w.Snapshot()
	if len(lines) != captureDepth {
		t.Fatalf("expected %d retained lines, got %d", captureDepth, len(lines))
	}
	if lines[0] != "line 10" {
		t.Errorf("oldest retained = %q, want line 10", lines[0])
	}
	last := fmt.Sprintf("line %d", captureDepth+9)
	if lines[len(lines)-1] != last {
		t.Errorf("newest retained = %q, want %q", lines[len(lines)-1], last)
	}
	if w.GetLastLine() != last {
		t.Errorf("GetLastLine = %q, want %q", w.GetLastLine(), last)
	}
}
