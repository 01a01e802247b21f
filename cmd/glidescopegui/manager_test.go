package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResolveAddr(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{name: "Port Only", addr: ":8420", want: "127.0.0.1:8420"},
		{name: "Localhost", addr: "localhost:8420", want: "127.0.0.1:8420"},
		{name: "Explicit Host", addr: "192.168.1.10:8420", want: "192.168.1.10:8420"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil, nil, nil, tt.addr)
			if got := m.resolveAddr(); got != tt.want {
				t.Errorf("resolveAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsServerReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	m := NewManager(nil, nil, nil, strings.TrimPrefix(srv.URL, "http://"))
	if !m.isServerReady() {
		t.Error("expected server to be ready")
	}

	srv.Close()
	if m.isServerReady() {
		t.Error("expected server to be unreachable after close")
	}
}

func TestStreamReader(t *testing.T) {
	var lines []string
	m := NewManager(func(s string) { lines = append(lines, s) }, nil, nil, "")

	m.streamReader(strings.NewReader("first line\nsecond line\n"))

	if len(lines) != 2 || lines[0] != "first line" || lines[1] != "second line" {
		t.Errorf("unexpected lines: %v", lines)
	}
}
