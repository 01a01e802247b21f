package datalink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glidescope/pkg/sim"
	"glidescope/pkg/stats"
)

var upgrader = websocket.Upgrader{}

// feedServer pushes every string from the channel as one text frame.
func feedServer(t *testing.T, frames <-chan string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientReceivesFrames(t *testing.T) {
	frames := make(chan string, 8)
	srv := feedServer(t, frames)
	defer srv.Close()

	tr := stats.New()
	c := NewClient(wsURL(srv), tr)
	defer c.Close()

	frames <- `{"sim_time":12.5,"latitude":47.0,"longitude":11.0,"altitude":1500,` +
		`"heading":270,"vertical_speed":-2.5,"horizontal_speed":27,"total_speed":27.2,` +
		`"throttle":0,"in_flight":true}`

	require.Eventually(t, func() bool {
		_, err := c.GetTelemetry(context.Background())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	tel, err := c.GetTelemetry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.5, tel.SimTime)
	assert.Equal(t, -2.5, tel.VerticalSpeed)
	assert.Equal(t, 27.2, tel.TotalSpeed)
	assert.True(t, tel.InFlight)
	assert.Equal(t, sim.StateActive, c.GetState())
	assert.EqualValues(t, 1, tr.Snapshot().Frames)
}

func TestClientDerivesVerticalSpeed(t *testing.T) {
	frames := make(chan string, 8)
	srv := feedServer(t, frames)
	defer srv.Close()

	tr := stats.New()
	c := NewClient(wsURL(srv), tr)
	defer c.Close()

	// No vertical_speed field: 100m down over 10s of sim time.
	frames <- `{"sim_time":10,"altitude":1000,"in_flight":true}`
	frames <- `{"sim_time":20,"altitude":900,"in_flight":true}`

	require.Eventually(t, func() bool {
		return tr.Snapshot().Frames == 2
	}, 2*time.Second, 10*time.Millisecond)

	tel, err := c.GetTelemetry(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, -10.0, tel.VerticalSpeed, 1e-9)
}

func TestClientRejectsMalformedFrame(t *testing.T) {
	frames := make(chan string, 8)
	srv := feedServer(t, frames)
	defer srv.Close()

	tr := stats.New()
	c := NewClient(wsURL(srv), tr)
	defer c.Close()

	frames <- `this is not json`
	frames <- `{"sim_time":1,"in_flight":true}`

	require.Eventually(t, func() bool {
		_, err := c.GetTelemetry(context.Background())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	s := tr.Snapshot()
	assert.EqualValues(t, 1, s.FrameErrors)
	assert.EqualValues(t, 1, s.Frames)
}

func TestClientStateBeforeFirstFrame(t *testing.T) {
	frames := make(chan string)
	srv := feedServer(t, frames)
	defer srv.Close()

	c := NewClient(wsURL(srv), stats.New())
	defer c.Close()

	require.Eventually(t, func() bool {
		return c.GetState() == sim.StateInactive
	}, 2*time.Second, 10*time.Millisecond)

	_, err := c.GetTelemetry(context.Background())
	assert.ErrorIs(t, err, sim.ErrNoTelemetry)
}

func TestClientPausedFrameInactive(t *testing.T) {
	frames := make(chan string, 8)
	srv := feedServer(t, frames)
	defer srv.Close()

	tr := stats.New()
	c := NewClient(wsURL(srv), tr)
	defer c.Close()

	frames <- `{"sim_time":5,"in_flight":true,"paused":true}`

	require.Eventually(t, func() bool {
		return tr.Snapshot().Frames == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, sim.StateInactive, c.GetState())
	tel, err := c.GetTelemetry(context.Background())
	require.NoError(t, err)
	assert.True(t, tel.Paused)
}

func TestClientStaleFeedGoesInactive(t *testing.T) {
	frames := make(chan string, 8)
	srv := feedServer(t, frames)
	defer srv.Close()

	tr := stats.New()
	c := NewClient(wsURL(srv), tr)
	defer c.Close()

	frames <- `{"sim_time":5,"in_flight":true}`
	require.Eventually(t, func() bool {
		return c.GetState() == sim.StateActive
	}, 2*time.Second, 10*time.Millisecond)

	c.mu.Lock()
	c.tel.Received = time.Now().Add(-staleAfter - time.Second)
	c.mu.Unlock()

	assert.Equal(t, sim.StateInactive, c.GetState())
}
