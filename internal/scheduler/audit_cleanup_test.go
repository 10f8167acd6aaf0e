package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (r *recordingEnqueuer) EnqueueAuditCleanup(retentionDays int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, retentionDays)
	return "task-1", r.err
}

type recordingCleaner struct {
	retention time.Duration
}

func (c *recordingCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	c.retention = retention
	return 0, nil
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("every night"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"))
}

func TestAuditCleanupScheduler_StartStop(t *testing.T) {
	s := NewAuditCleanupScheduler(&recordingEnqueuer{}, "0 3 * * *", 30)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestAuditCleanupScheduler_ContextCancelStops(t *testing.T) {
	s := NewAuditCleanupScheduler(&recordingEnqueuer{}, "0 3 * * *", 30)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestAuditCleanupScheduler_InvalidSchedule(t *testing.T) {
	s := NewAuditCleanupScheduler(&recordingEnqueuer{}, "not a schedule", 30)

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestAuditCleanupScheduler_EmptyScheduleDisables(t *testing.T) {
	s := NewAuditCleanupScheduler(&recordingEnqueuer{}, "", 30)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestAuditCleanupScheduler_RunNow(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	s := NewAuditCleanupScheduler(enqueuer, "0 3 * * *", 14)

	id, err := s.RunNow()
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)
	assert.Equal(t, []int{14}, enqueuer.calls)

	enqueuer.err = errors.New("queue closed")
	_, err = s.RunNow()
	assert.Error(t, err)
}

func TestInlineCleanup(t *testing.T) {
	cleaner := &recordingCleaner{}

	_, err := InlineCleanup{Cleaner: cleaner}.EnqueueAuditCleanup(2)

	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cleaner.retention)
}
