package postgres

import (
	"context"
	"errors"
	"time"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"

	"github.com/jackc/pgx/v5"
)

func (s *Store) IssueOTP(ctx context.Context, rec model.OTPRecord, now time.Time) (*model.OTPRecord, error) {
	// The upsert only overwrites a row whose cooldown has elapsed; no row back
	// means another code is still cooling down.
	var out model.OTPRecord
	err := s.pool.QueryRow(ctx, `
		insert into public.otp_codes (email, code, expires_at, cooldown_until)
		values ($1, $2, $3, $4)
		on conflict (email) do update
		set code = excluded.code,
		    expires_at = excluded.expires_at,
		    cooldown_until = excluded.cooldown_until
		where public.otp_codes.cooldown_until <= $5
		returning email, code, expires_at, cooldown_until
	`, rec.Email, rec.Code, rec.ExpiresAt, rec.CooldownUntil, now).Scan(&out.Email, &out.Code, &out.ExpiresAt, &out.CooldownUntil)
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapPgErr(err)
	}

	existing, err := s.GetOTP(ctx, rec.Email)
	if err != nil {
		return nil, err
	}
	return existing, store.ErrConflict
}

func (s *Store) GetOTP(ctx context.Context, email string) (*model.OTPRecord, error) {
	var out model.OTPRecord
	err := s.pool.QueryRow(ctx, `
		select email, code, expires_at, cooldown_until
		from public.otp_codes
		where email = $1
	`, email).Scan(&out.Email, &out.Code, &out.ExpiresAt, &out.CooldownUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &out, nil
}

func (s *Store) DeleteOTP(ctx context.Context, email string) error {
	if _, err := s.pool.Exec(ctx, `delete from public.otp_codes where email = $1`, email); err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (s *Store) GetLockout(ctx context.Context, key string) (*model.LockoutRecord, error) {
	var out model.LockoutRecord
	err := s.pool.QueryRow(ctx, `
		select key, count, locked_until, updated_at
		from public.login_lockouts
		where key = $1
	`, key).Scan(&out.Key, &out.Count, &out.LockedUntil, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &out, nil
}

func (s *Store) RecordFailure(ctx context.Context, key string, now time.Time, maxAttempts int, lockFor time.Duration) (model.LockoutRecord, error) {
	var out model.LockoutRecord
	err := s.pool.QueryRow(ctx, `
		insert into public.login_lockouts as l (key, count, locked_until, updated_at)
		values ($1, 1, case when 1 >= $3 then $4::timestamptz else null end, $2)
		on conflict (key) do update
		set count = l.count + 1,
		    locked_until = case when l.count + 1 >= $3 then $4::timestamptz else l.locked_until end,
		    updated_at = $2
		returning key, count, locked_until, updated_at
	`, key, now, maxAttempts, now.Add(lockFor)).Scan(&out.Key, &out.Count, &out.LockedUntil, &out.UpdatedAt)
	if err != nil {
		return model.LockoutRecord{}, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) ClearLockout(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `delete from public.login_lockouts where key = $1`, key); err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (s *Store) PurgeExpired(ctx context.Context, now, idleBefore time.Time) (int, error) {
	otps, err := s.pool.Exec(ctx, `
		delete from public.otp_codes
		where expires_at < $1 and cooldown_until <= $1
	`, now)
	if err != nil {
		return 0, mapPgErr(err)
	}
	locks, err := s.pool.Exec(ctx, `
		delete from public.login_lockouts
		where (locked_until is null or locked_until <= $1) and updated_at < $2
	`, now, idleBefore)
	if err != nil {
		return 0, mapPgErr(err)
	}
	return int(otps.RowsAffected() + locks.RowsAffected()), nil
}
