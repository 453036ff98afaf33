package model

import "time"

// OTPRecord is the single live one-time code for an email.
type OTPRecord struct {
	Email         string    `json:"email"`
	Code          string    `json:"-"`
	ExpiresAt     time.Time `json:"expires_at"`
	CooldownUntil time.Time `json:"cooldown_until"`
}

func (r OTPRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

func (r OTPRecord) CoolingDown(now time.Time) bool {
	return r.CooldownUntil.After(now)
}

// LockoutRecord counts consecutive verification failures for a login key.
type LockoutRecord struct {
	Key         string     `json:"key"`
	Count       int        `json:"count"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Locked reports whether a lock is active at now.
func (r LockoutRecord) Locked(now time.Time) bool {
	return r.LockedUntil != nil && r.LockedUntil.After(now)
}

// Remaining returns the lock time left at now, zero when unlocked.
func (r LockoutRecord) Remaining(now time.Time) time.Duration {
	if !r.Locked(now) {
		return 0
	}
	return r.LockedUntil.Sub(now)
}
