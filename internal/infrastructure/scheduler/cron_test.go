package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNextHonoursLocation(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	s := NewCronScheduler("0 6 * * *", berlin)
	from := time.Date(2026, 3, 2, 4, 0, 0, 0, time.UTC) // 05:00 in Berlin

	next, err := s.Next(from)
	require.NoError(t, err)
	assert.True(t, next.Equal(time.Date(2026, 3, 2, 6, 0, 0, 0, berlin)), "got %s", next)
	assert.Equal(t, "Europe/Berlin", next.Location().String())
}

func TestStartRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("every day at six", nil)
	err := s.Start(context.Background(), func(time.Time) {})
	require.Error(t, err)

	_, err = s.Next(time.Now())
	require.Error(t, err)
}

func TestRunOnStartTriggersJob(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 1)
	s := NewCronScheduler("0 6 * * *", time.UTC, WithRunOnStart())
	require.NoError(t, s.Start(context.Background(), func(at time.Time) { fired <- at }))

	select {
	case at := <-fired:
		assert.Equal(t, time.UTC, at.Location())
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()), "second stop is a no-op")
}

func TestStartIsIdempotentAndNilJobIgnored(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@daily", nil)
	require.NoError(t, s.Start(context.Background(), nil))
	assert.Nil(t, s.cron)

	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	first := s.cron
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	assert.Same(t, first, s.cron)

	require.NoError(t, s.Stop(context.Background()))
}

func TestContextCancelStopsScheduler(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewCronScheduler("*/5 * * * *", nil)
	require.NoError(t, s.Start(ctx, func(time.Time) {}))

	cancel()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cron == nil
	}, 2*time.Second, 10*time.Millisecond)
}
