package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/observability"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/scheduler"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_RejectsBadSchedule(t *testing.T) {
	reg := session.NewRegistry(time.Minute)
	_, err := scheduler.New("every five minutes", reg, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestSweepOnce_EvictsAndRecords(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	reg := session.NewRegistry(30*time.Minute, session.WithClock(clock))

	reg.GetOrCreate("old")
	now = now.Add(20 * time.Minute)
	reg.GetOrCreate("fresh")
	now = now.Add(15 * time.Minute)

	m := observability.NewMetrics()
	s, err := scheduler.New("@every 5m", reg, m, zap.NewNop())
	require.NoError(t, err)

	removed := s.SweepOnce()
	assert.Equal(t, []string{"old"}, removed)

	snap := m.Snapshot()
	assert.EqualValues(t, 1, snap.EvictedSessions)
	assert.EqualValues(t, 1, snap.ActiveSessions)
}

func TestRun_StopsWithContext(t *testing.T) {
	reg := session.NewRegistry(time.Minute)
	s, err := scheduler.New("@every 1h", reg, nil, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
