// Package mocksim simulates a motorglider for development and tests:
// it climbs under power to a ceiling, cuts the motor, glides down to a
// floor and repeats, with optional control-input blips while gliding.
package mocksim

import (
	"context"
	"math"
	"sync"
	"time"

	"glidescope/pkg/geo"
	"glidescope/pkg/sim"
)

const (
	PhasePowered = "POWERED"
	PhaseGliding = "GLIDING"

	tickRateMs   = 100
	blipDuration = 1.0 // seconds of manual input per blip
)

// Config holds the flight envelope of the simulated motorglider.
type Config struct {
	StartLat float64
	StartLon float64
	StartAlt float64 // meters MSL
	Heading  float64 // degrees true

	CeilingAlt float64 // meters, motor cuts here
	FloorAlt   float64 // meters, motor restarts here

	ClimbRate   float64 // m/s under power
	SinkRate    float64 // m/s while gliding
	CruiseSpeed float64 // m/s total speed
	SpeedJitter float64 // fraction of cruise speed, sinusoidal

	// BlipPeriod inserts a short manual-input blip this often while
	// gliding; zero disables blips.
	BlipPeriod time.Duration
}

// DefaultConfig returns a hands-off glider that fills a 10s sampling
// window many times per cycle.
func DefaultConfig() Config {
	return Config{
		StartLat:    47.42,
		StartLon:    10.98,
		StartAlt:    1200,
		Heading:     270,
		CeilingAlt:  2200,
		FloorAlt:    900,
		ClimbRate:   5,
		SinkRate:    1.8,
		CruiseSpeed: 28,
		SpeedJitter: 0.005,
	}
}

// MockClient implements sim.Client with a self-contained physics loop.
type MockClient struct {
	mu     sync.Mutex
	tel    sim.Telemetry
	cfg    Config
	phase  string
	stopCh chan struct{}
	wg     sync.WaitGroup

	simTime    float64
	nextBlipAt float64
	blipEndsAt float64
}

// NewClient starts a mock simulator at the configured position.
func NewClient(cfg Config) *MockClient {
	m := &MockClient{
		cfg:    cfg,
		phase:  PhasePowered,
		stopCh: make(chan struct{}),
		tel: sim.Telemetry{
			Latitude:  cfg.StartLat,
			Longitude: cfg.StartLon,
			Altitude:  cfg.StartAlt,
			Heading:   cfg.Heading,
			InFlight:  true,
			Received:  time.Now(),
		},
	}
	m.scheduleBlip()

	m.wg.Add(1)
	go m.physicsLoop()
	return m
}

// GetTelemetry returns the current state of the simulated glider.
func (m *MockClient) GetTelemetry(ctx context.Context) (sim.Telemetry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tel, nil
}

// GetState returns the simulator state. Mock is always active.
func (m *MockClient) GetState() sim.State {
	return sim.StateActive
}

// Close stops the physics loop and releases resources.
func (m *MockClient) Close() error {
	close(m.stopCh)
	m.wg.Wait()
	return nil
}

func (m *MockClient) physicsLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Duration(tickRateMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.step(float64(tickRateMs) / 1000.0)
		}
	}
}

// step advances the physics by dt seconds.
func (m *MockClient) step(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.simTime += dt

	switch m.phase {
	case PhasePowered:
		m.tel.Throttle = 0.8
		m.tel.VerticalSpeed = m.cfg.ClimbRate
		m.tel.ManualInput = false
		m.tel.Altitude += m.tel.VerticalSpeed * dt
		if m.tel.Altitude >= m.cfg.CeilingAlt {
			m.phase = PhaseGliding
			m.scheduleBlip()
		}

	case PhaseGliding:
		m.tel.Throttle = 0
		m.tel.VerticalSpeed = -m.cfg.SinkRate
		m.updateBlip()
		m.tel.Altitude += m.tel.VerticalSpeed * dt
		if m.tel.Altitude <= m.cfg.FloorAlt {
			m.phase = PhasePowered
		}
	}

	total := m.cfg.CruiseSpeed * (1 + m.cfg.SpeedJitter*math.Sin(m.simTime))
	m.tel.TotalSpeed = total
	m.tel.HorizontalSpeed = horizontalComponent(total, m.tel.VerticalSpeed)

	pos := geo.DestinationPoint(
		geo.Point{Lat: m.tel.Latitude, Lon: m.tel.Longitude},
		m.tel.HorizontalSpeed*dt,
		m.tel.Heading,
	)
	m.tel.Latitude = pos.Lat
	m.tel.Longitude = pos.Lon

	m.tel.SimTime = m.simTime
	m.tel.Received = time.Now()
	m.tel.OnGround = false
	m.tel.InFlight = true
}

func (m *MockClient) scheduleBlip() {
	if m.cfg.BlipPeriod <= 0 {
		m.nextBlipAt = math.Inf(1)
		return
	}
	m.nextBlipAt = m.simTime + m.cfg.BlipPeriod.Seconds()
}

// updateBlip toggles a short burst of manual input while gliding.
func (m *MockClient) updateBlip() {
	if m.tel.ManualInput {
		if m.simTime >= m.blipEndsAt {
			m.tel.ManualInput = false
			m.scheduleBlip()
		}
		return
	}
	if m.simTime >= m.nextBlipAt {
		m.tel.ManualInput = true
		m.blipEndsAt = m.simTime + blipDuration
	}
}

// horizontalComponent recovers ground-plane speed from total speed and
// the vertical component.
func horizontalComponent(total, vertical float64) float64 {
	h := total*total - vertical*vertical
	if h <= 0 {
		return 0
	}
	return math.Sqrt(h)
}
