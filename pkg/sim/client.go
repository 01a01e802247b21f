package sim

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConnected is returned when a client action requires a connection.
	ErrNotConnected = errors.New("simulator not connected")
	// ErrNoTelemetry is returned while no frame has been received yet.
	ErrNoTelemetry = errors.New("no telemetry received yet")
)

// Client defines the interface for simulator interaction.
type Client interface {
	// GetTelemetry returns the current state of the craft.
	GetTelemetry(ctx context.Context) (Telemetry, error)
	// GetState returns the current simulator connection/activity state.
	GetState() State
	// Close cleans up resources associated with the client.
	Close() error
}

// Telemetry is a snapshot of craft state. Distances are meters, speeds
// meters per second, angles degrees. VerticalSpeed is negative while
// descending.
type Telemetry struct {
	// SimTime is monotonic simulation seconds; it stalls while paused.
	SimTime float64
	// Received is the wall-clock arrival time of the frame.
	Received time.Time

	Latitude  float64
	Longitude float64
	Altitude  float64 // MSL
	Heading   float64 // True

	VerticalSpeed   float64
	HorizontalSpeed float64 // Surface-relative
	TotalSpeed      float64

	Throttle       float64 // 0..1
	TrimActive     bool
	AutopilotOn    bool
	ManualInput    bool

	OnGround bool
	Paused   bool
	// InFlight is the host-level flag that a controllable craft exists.
	InFlight bool
}
