// Package datalink connects to a simulator-side telemetry plugin over
// a websocket and exposes the feed as a sim.Client. The plugin pushes
// one JSON frame per simulation tick; the client caches the latest
// frame and reconnects with backoff when the link drops.
package datalink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"glidescope/pkg/logging"
	"glidescope/pkg/sim"
	"glidescope/pkg/stats"
)

const (
	dialTimeout = 5 * time.Second
	// A feed silent for longer than this demotes the state to inactive.
	staleAfter = 2 * time.Second
	// Window for deriving vertical speed when the feed omits it.
	vsWindowSeconds = 2.0
)

// Frame is the wire format of one telemetry message.
type Frame struct {
	SimTime   float64 `json:"sim_time"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`

	// VerticalSpeed is optional; when absent it is derived from the
	// altitude history.
	VerticalSpeed   *float64 `json:"vertical_speed,omitempty"`
	HorizontalSpeed float64  `json:"horizontal_speed"`
	TotalSpeed      float64  `json:"total_speed"`

	Throttle    float64 `json:"throttle"`
	Trim        bool    `json:"trim"`
	Autopilot   bool    `json:"autopilot"`
	ManualInput bool    `json:"manual_input"`

	OnGround bool `json:"on_ground"`
	Paused   bool `json:"paused"`
	InFlight bool `json:"in_flight"`
}

// Client implements sim.Client over a websocket telemetry feed.
type Client struct {
	url     string
	tracker *stats.Tracker
	// logger is the feed traffic log, kept out of the main log file.
	logger *slog.Logger

	mu     sync.RWMutex
	conn   *websocket.Conn
	tel    sim.Telemetry
	hasTel bool
	state  sim.State

	vsBuf   *sim.VSBuffer
	backoff *Backoff
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewClient starts the connection loop for the given websocket URL.
func NewClient(url string, tracker *stats.Tracker) *Client {
	logger := logging.DatalinkLogger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		url:     url,
		tracker: tracker,
		logger:  logger,
		state:   sim.StateDisconnected,
		vsBuf:   sim.NewVSBuffer(vsWindowSeconds),
		backoff: NewBackoff(500*time.Millisecond, 30*time.Second),
		stopCh:  make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// GetTelemetry returns the most recent frame.
func (c *Client) GetTelemetry(ctx context.Context) (sim.Telemetry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == sim.StateDisconnected {
		return sim.Telemetry{}, sim.ErrNotConnected
	}
	if !c.hasTel {
		return sim.Telemetry{}, sim.ErrNoTelemetry
	}
	return c.tel, nil
}

// GetState returns the feed state, demoted to inactive when frames
// stop arriving.
func (c *Client) GetState() sim.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == sim.StateActive && time.Since(c.tel.Received) > staleAfter {
		return sim.StateInactive
	}
	return c.state
}

// Close stops the connection loop and closes the link.
func (c *Client) Close() error {
	close(c.stopCh)
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
	c.wg.Wait()
	return nil
}

func (c *Client) run() {
	defer c.wg.Done()
	for {
		if c.stopped() {
			return
		}
		if !c.sleep(c.backoff.Delay()) {
			return
		}

		conn, err := c.dial()
		if err != nil {
			c.backoff.RecordFailure()
			slog.Warn("Datalink dial failed", "url", c.url, "error", err)
			continue
		}

		c.setConn(conn)
		c.setState(sim.StateInactive)
		slog.Info("Datalink connected", "url", c.url)
		c.backoff.RecordSuccess()

		err = c.readLoop(conn)
		c.setConn(nil)
		c.setState(sim.StateDisconnected)
		if c.stopped() {
			return
		}
		c.backoff.RecordFailure()
		slog.Warn("Datalink disconnected", "error", err)
	}
}

func (c *Client) dial() (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.tracker.TrackFrameError()
			c.logger.Debug("Datalink frame rejected", "error", err)
			continue
		}
		c.apply(&frame)
	}
}

// apply converts a wire frame into the cached telemetry snapshot.
func (c *Client) apply(f *Frame) {
	c.tracker.TrackFrame()

	vs := 0.0
	if f.VerticalSpeed != nil {
		vs = *f.VerticalSpeed
	} else {
		vs = c.vsBuf.Update(f.SimTime, f.Altitude)
	}

	logging.Trace(c.logger, "Datalink frame",
		"sim_time", f.SimTime,
		"altitude", f.Altitude,
		"vs", vs,
		"paused", f.Paused,
		"in_flight", f.InFlight)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tel = sim.Telemetry{
		SimTime:         f.SimTime,
		Received:        time.Now(),
		Latitude:        f.Latitude,
		Longitude:       f.Longitude,
		Altitude:        f.Altitude,
		Heading:         f.Heading,
		VerticalSpeed:   vs,
		HorizontalSpeed: f.HorizontalSpeed,
		TotalSpeed:      f.TotalSpeed,
		Throttle:        f.Throttle,
		TrimActive:      f.Trim,
		AutopilotOn:     f.Autopilot,
		ManualInput:     f.ManualInput,
		OnGround:        f.OnGround,
		Paused:          f.Paused,
		InFlight:        f.InFlight,
	}
	c.hasTel = true
	if f.Paused || !f.InFlight {
		c.state = sim.StateInactive
	} else {
		c.state = sim.StateActive
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) setState(s sim.State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// sleep waits for d unless the client is closed first; it reports
// whether the client should keep running.
func (c *Client) sleep(d time.Duration) bool {
	if d <= 0 {
		return !c.stopped()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-c.stopCh:
		return false
	case <-timer.C:
		return true
	}
}
