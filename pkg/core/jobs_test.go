package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glidescope/pkg/config"
	"glidescope/pkg/glide"
	"glidescope/pkg/sim"
)

// memStore is an in-memory store.StateStore.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) GetState(ctx context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *memStore) SetState(ctx context.Context, key, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = val
	return nil
}

func (s *memStore) DeleteState(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func TestTimeJob_Cadence(t *testing.T) {
	fired := 0
	job := NewTimeJob("Cadence", 50*time.Millisecond, func(ctx context.Context, _ sim.Telemetry) {
		fired++
	})

	tel := &sim.Telemetry{}
	ctx := context.Background()

	require.True(t, job.ShouldFire(tel), "first evaluation fires immediately")
	job.Run(ctx, tel)
	assert.Equal(t, 1, fired)

	assert.False(t, job.ShouldFire(tel), "threshold not elapsed yet")

	time.Sleep(60 * time.Millisecond)
	require.True(t, job.ShouldFire(tel))
	job.Run(ctx, tel)
	assert.Equal(t, 2, fired)
}

func TestDynamicConfigJob_AppliesStoreValues(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	require.NoError(t, st.SetState(ctx, config.KeySamplingWindow, "5s"))
	require.NoError(t, st.SetState(ctx, config.KeyAllowTrim, "false"))
	require.NoError(t, st.SetState(ctx, config.KeyAudioEnabled, "true"))
	require.NoError(t, st.SetState(ctx, config.KeyAudioVolume, "0.35"))

	prov := config.NewProvider(config.DefaultConfig(), st)
	f := newMonitorFixture(glide.DefaultOptions())

	job := NewDynamicConfigJob(prov, f.mon, f.flog, f.snd)
	job.Run(ctx, &sim.Telemetry{})

	opts := f.mon.Options()
	assert.Equal(t, 5.0, opts.SamplingWindowSeconds)
	assert.False(t, opts.AllowTrim)
	assert.True(t, opts.AllowControlInput, "untouched key keeps its default")

	assert.True(t, f.snd.Enabled())
	assert.InDelta(t, 0.35, f.snd.Volume(), 1e-9)
}

func TestDynamicConfigJob_NoChangeKeepsTracker(t *testing.T) {
	ctx := context.Background()
	prov := config.NewProvider(config.DefaultConfig(), newMemStore())

	f := newMonitorFixture(glide.DefaultOptions())
	f.feedGlide(40, 0)
	require.True(t, f.mon.Summary().Complete())

	job := NewDynamicConfigJob(prov, f.mon, f.flog, f.snd)
	job.Run(ctx, &sim.Telemetry{})

	// Defaults match the running options, so the glide survives.
	assert.True(t, f.mon.Summary().Complete())
	assert.Empty(t, f.flog.Segments())
}
