package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"
	"registrar-portal/backend/internal/store/memory"
)

func TestSweeper_RunOnce(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := mem.IssueOTP(ctx, model.OTPRecord{
		Email: "old@x.com", Code: "123456",
		ExpiresAt: start.Add(OTPTTL), CooldownUntil: start.Add(RegistrationCooldown),
	}, start)
	require.NoError(t, err)
	_, err = mem.RecordFailure(ctx, "idle@x.com", start, MaxFailedAttempts, LockDuration)
	require.NoError(t, err)

	now := start.Add(2 * time.Hour)
	_, err = mem.RecordFailure(ctx, "busy@x.com", now, MaxFailedAttempts, LockDuration)
	require.NoError(t, err)

	sw := &Sweeper{State: mem, Retention: time.Hour, Now: func() time.Time { return now }}
	n, err := sw.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = mem.GetOTP(ctx, "old@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = mem.GetLockout(ctx, "idle@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = mem.GetLockout(ctx, "busy@x.com")
	assert.NoError(t, err, "recent counters survive")
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sw := &Sweeper{State: memory.NewStore(), Interval: time.Millisecond, Retention: time.Hour}

	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_DisabledInterval(t *testing.T) {
	sw := &Sweeper{State: memory.NewStore()}
	assert.NoError(t, sw.Run(context.Background()))
}
