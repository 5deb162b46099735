package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterJob(t *testing.T) {
	s := NewService(arbor.NewLogger())
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.RegisterJob("score", "*/15 * * * *", "batch scoring", noop))
	assert.Error(t, s.RegisterJob("score", "*/15 * * * *", "duplicate", noop))
	assert.Error(t, s.RegisterJob("fast", "* * * * *", "too frequent", noop))
	assert.Error(t, s.RegisterJob("bad", "whenever", "invalid", noop))

	status, err := s.GetJobStatus("score")
	require.NoError(t, err)
	assert.Equal(t, "*/15 * * * *", status.Schedule)
	assert.Nil(t, status.LastRun)

	_, err = s.GetJobStatus("missing")
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	s := NewService(arbor.NewLogger())

	calls := 0
	require.NoError(t, s.RegisterJob("ok", "0 * * * *", "", func(ctx context.Context) error {
		calls++
		return ctx.Err()
	}))
	require.NoError(t, s.RegisterJob("fails", "0 * * * *", "", func(context.Context) error {
		return errors.New("input missing")
	}))
	require.NoError(t, s.RegisterJob("panics", "0 * * * *", "", func(context.Context) error {
		panic("boom")
	}))

	require.NoError(t, s.RunNow("ok"))
	assert.Equal(t, 1, calls)

	assert.EqualError(t, s.RunNow("fails"), "input missing")
	status, err := s.GetJobStatus("fails")
	require.NoError(t, err)
	assert.Equal(t, "input missing", status.LastError)
	assert.Equal(t, 1, status.Runs)
	assert.NotNil(t, status.LastRun)
	assert.False(t, status.IsRunning)

	assert.ErrorContains(t, s.RunNow("panics"), "panic: boom")
	status, err = s.GetJobStatus("panics")
	require.NoError(t, err)
	assert.Equal(t, "panic: boom", status.LastError)

	assert.Error(t, s.RunNow("missing"))
}

func TestStartStop(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterJob("hourly", "0 * * * *", "", func(context.Context) error { return nil }))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())

	status, err := s.GetJobStatus("hourly")
	require.NoError(t, err)
	require.NotNil(t, status.NextRun)
	assert.True(t, status.NextRun.After(time.Now()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx))
}
