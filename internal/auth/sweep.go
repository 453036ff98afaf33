package auth

import (
	"context"
	"time"

	"registrar-portal/backend/internal/logging"
	"registrar-portal/backend/internal/store"
)

// Sweeper periodically drops dead OTP records and idle lockout counters so the
// state store does not grow with every distinct identifier ever tried.
type Sweeper struct {
	State     store.StateStore
	Interval  time.Duration
	Retention time.Duration
	Log       logging.Logger
	Now       func() time.Time
}

// RunOnce purges once and returns the number of records removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now()
	ctxPurge, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.State.PurgeExpired(ctxPurge, t, t.Add(-s.Retention))
}

// Run sweeps immediately and then every Interval until ctx is done. A
// non-positive Interval disables sweeping.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return nil
	}
	log := s.Log
	if log == nil {
		log = logging.Nop()
	}

	runOnce := func() {
		n, err := s.RunOnce(ctx)
		if err != nil {
			log.Warn(ctx, "state sweep failed", "error", err)
			return
		}
		if n > 0 {
			log.Debug(ctx, "state sweep", "purged", n)
		}
	}

	runOnce()

	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			runOnce()
		}
	}
}
