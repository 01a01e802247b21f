package probe

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"glidescope/pkg/config"
	"glidescope/pkg/store"
)

// DatabaseWritable verifies the settings store accepts a write, reads it
// back and deletes it again.
func DatabaseWritable(st store.StateStore) CheckFunc {
	return func(ctx context.Context) error {
		const key = "probe_rw"
		token := time.Now().Format(time.RFC3339Nano)

		if err := st.SetState(ctx, key, token); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		val, ok := st.GetState(ctx, key)
		if !ok || val != token {
			return fmt.Errorf("read back mismatch: got %q", val)
		}
		return st.DeleteState(ctx, key)
	}
}

// DatalinkReachable dials the TCP endpoint behind a ws:// or wss:// URL.
// It does not speak the websocket protocol; reachability is enough for a
// startup check since the client reconnects on its own.
func DatalinkReachable(rawURL string) CheckFunc {
	return func(ctx context.Context) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		if u.Hostname() == "" {
			return fmt.Errorf("url %q has no host", rawURL)
		}

		addr := u.Host
		if u.Port() == "" {
			port := "80"
			if u.Scheme == "wss" {
				port = "443"
			}
			addr = net.JoinHostPort(u.Hostname(), port)
		}

		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

// ConfigSane applies the cross-field checks that the YAML loader cannot
// express, like the poll interval fitting inside the sampling window.
func ConfigSane(cfg *config.Config) CheckFunc {
	return func(ctx context.Context) error {
		interval := time.Duration(cfg.Ticker.TelemetryLoop)
		if interval <= 0 {
			return fmt.Errorf("telemetry_loop must be positive, got %v", interval)
		}
		window := time.Duration(cfg.Glide.SamplingWindow)
		if interval > window {
			return fmt.Errorf("telemetry_loop %v exceeds sampling window %v", interval, window)
		}
		if cfg.Server.Address == "" {
			return fmt.Errorf("server address is empty")
		}
		if cfg.Sim.Provider == "datalink" && cfg.Sim.Datalink.URL == "" {
			return fmt.Errorf("sim provider is datalink but no url is configured")
		}
		return nil
	}
}
