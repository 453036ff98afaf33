package memory

import (
	"context"
	"time"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"
)

func (s *Store) IssueOTP(_ context.Context, rec model.OTPRecord, now time.Time) (*model.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.otps[rec.Email]; ok && existing.CoolingDown(now) {
		return &existing, store.ErrConflict
	}
	s.otps[rec.Email] = rec
	return &rec, nil
}

func (s *Store) GetOTP(_ context.Context, email string) (*model.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.otps[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) DeleteOTP(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.otps, email)
	return nil
}

func (s *Store) GetLockout(_ context.Context, key string) (*model.LockoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lockouts[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) RecordFailure(_ context.Context, key string, now time.Time, maxAttempts int, lockFor time.Duration) (model.LockoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lockouts[key]
	if !ok {
		rec = model.LockoutRecord{Key: key}
	}
	rec.Count++
	rec.UpdatedAt = now
	if rec.Count >= maxAttempts {
		until := now.Add(lockFor)
		rec.LockedUntil = &until
	}
	s.lockouts[key] = rec
	return rec, nil
}

func (s *Store) ClearLockout(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lockouts, key)
	return nil
}

func (s *Store) PurgeExpired(_ context.Context, now, idleBefore time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for email, rec := range s.otps {
		if rec.Expired(now) && !rec.CoolingDown(now) {
			delete(s.otps, email)
			n++
		}
	}
	for key, rec := range s.lockouts {
		if !rec.Locked(now) && rec.UpdatedAt.Before(idleBefore) {
			delete(s.lockouts, key)
			n++
		}
	}
	return n, nil
}
