package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountSource(t *testing.T) {
	s, err := ParseAccountSource("user")
	require.NoError(t, err)
	assert.Equal(t, SourceUser, s)

	s, err = ParseAccountSource("prof")
	require.NoError(t, err)
	assert.Equal(t, SourceProf, s)

	_, err = ParseAccountSource("user_accounts; drop table x")
	assert.Error(t, err)
	assert.False(t, AccountSource("").Valid())
	assert.True(t, SourceProf.Valid())
}

func TestActiveTerm_FormatApplicantNumber(t *testing.T) {
	term := ActiveTerm{YearDescription: "2025-2026", SemesterCode: "1"}
	assert.Equal(t, "2025100001", term.FormatApplicantNumber(1))
	assert.Equal(t, "2025112345", term.FormatApplicantNumber(12345))

	term = ActiveTerm{YearDescription: "2030", SemesterCode: "2"}
	assert.Equal(t, "2030200042", term.FormatApplicantNumber(42))
}

func TestLockoutRecord_Locked(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(3 * time.Minute)

	rec := LockoutRecord{Key: "a@x.com", Count: 3, LockedUntil: &until}
	assert.True(t, rec.Locked(now))
	assert.Equal(t, 3*time.Minute, rec.Remaining(now))
	assert.False(t, rec.Locked(until))
	assert.Zero(t, rec.Remaining(until.Add(time.Second)))

	assert.False(t, LockoutRecord{Count: 2}.Locked(now))
}

func TestOTPRecord_ExpiryAndCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rec := OTPRecord{Email: "a@x.com", Code: "012345", ExpiresAt: now.Add(5 * time.Minute), CooldownUntil: now.Add(time.Minute)}

	assert.False(t, rec.Expired(now))
	assert.True(t, rec.CoolingDown(now))
	assert.False(t, rec.CoolingDown(now.Add(time.Minute)))
	assert.True(t, rec.Expired(now.Add(5*time.Minute+time.Millisecond)))
}
