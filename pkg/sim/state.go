// Package sim defines the simulator-facing types: the client interface,
// the telemetry frame and the coarse connection state.
package sim

// State is the coarse simulator condition the rest of the application
// keys off. It combines the transport condition with the host flags
// carried in telemetry.
type State string

const (
	// StateDisconnected means no telemetry source is attached.
	StateDisconnected State = "disconnected"
	// StateInactive means a source is attached but the craft is not
	// flyable: paused, in menus, or between flights.
	StateInactive State = "inactive"
	// StateActive means telemetry is live and the craft is flyable.
	StateActive State = "active"
)
