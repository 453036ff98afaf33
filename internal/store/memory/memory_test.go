package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAccountByLogin(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	dept := int64(4)
	s.AddAccount(model.Account{
		PersonID:      "10",
		EmployeeID:    "E-10",
		Email:         "registrar@school.edu",
		StudentNumber: "2025-00017",
		Role:          "registrar",
		DepartmentID:  &dept,
		Active:        true,
		Source:        model.SourceUser,
	})
	s.AddAccount(model.Account{
		PersonID:     "20",
		EmployeeID:   "P-20",
		Email:        "prof@school.edu",
		Role:         "faculty",
		DepartmentID: &dept,
		Active:       true,
		Source:       model.SourceProf,
	})

	// Test case 1: email on a user account
	a, err := s.FindAccountByLogin(ctx, "registrar@school.edu")
	require.NoError(t, err)
	assert.Equal(t, "10", a.PersonID)
	assert.Equal(t, model.SourceUser, a.Source)

	// Test case 2: student number alias
	a, err = s.FindAccountByLogin(ctx, "2025-00017")
	require.NoError(t, err)
	assert.Equal(t, "10", a.PersonID)

	// Test case 3: instructor by email, department dropped
	a, err = s.FindAccountByLogin(ctx, "prof@school.edu")
	require.NoError(t, err)
	assert.Equal(t, model.SourceProf, a.Source)
	assert.Nil(t, a.DepartmentID)

	// Test case 4: matching is case-sensitive
	_, err = s.FindAccountByLogin(ctx, "REGISTRAR@school.edu")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Test case 5: empty login never matches an account without a student number
	_, err = s.FindAccountByLogin(ctx, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEmailRegistered(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.AddAccount(model.Account{PersonID: "1", Email: "Student@School.edu"})

	ok, err := s.EmailRegistered(ctx, "student@school.edu")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.EmailRegistered(ctx, "new@school.edu")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireOTPSetting(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.AddAccount(model.Account{PersonID: "1", Email: "u@school.edu", Source: model.SourceUser})
	s.AddAccount(model.Account{PersonID: "2", Email: "p@school.edu", Source: model.SourceProf, RequireOTP: true})

	got, err := s.GetRequireOTP(ctx, model.SourceProf, "2")
	require.NoError(t, err)
	assert.True(t, got)

	// person 2 is an instructor, not a user account
	_, err = s.GetRequireOTP(ctx, model.SourceUser, "2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetRequireOTP(ctx, model.SourceUser, "1", true))
	got, err = s.GetRequireOTP(ctx, model.SourceUser, "1")
	require.NoError(t, err)
	assert.True(t, got)

	assert.ErrorIs(t, s.SetRequireOTP(ctx, model.SourceUser, "404", true), store.ErrNotFound)
	assert.ErrorIs(t, s.SetRequireOTP(ctx, model.AccountSource("dprtmnt_table"), "1", true), store.ErrNotFound)
}

func TestPageAccess(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.GrantPage("E-1", 12, 1)
	s.GrantPage("E-1", 3, 1)
	s.GrantPage("E-2", 7, 0)

	pages, err := s.ListPageAccess(ctx, "E-1")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 12}, pages)

	pages, err = s.ListPageAccess(ctx, "E-404")
	require.NoError(t, err)
	assert.Empty(t, pages)

	p, err := s.GetPagePrivilege(ctx, "E-2", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, p)

	_, err = s.GetPagePrivilege(ctx, "E-2", 8)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateApplicantNumber(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	term := model.ActiveTerm{YearDescription: "2025-2026", SemesterCode: "1"}

	_, err := s.GetApplicantNumber(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	first, err := s.CreateApplicantNumber(ctx, "p1", term.FormatApplicantNumber)
	require.NoError(t, err)
	assert.Equal(t, "2025100001", first.ApplicantNumber)

	second, err := s.CreateApplicantNumber(ctx, "p2", term.FormatApplicantNumber)
	require.NoError(t, err)
	assert.Equal(t, "2025100002", second.ApplicantNumber)

	// Existing holders keep their number.
	again, err := s.CreateApplicantNumber(ctx, "p1", term.FormatApplicantNumber)
	require.NoError(t, err)
	assert.Equal(t, first.ApplicantNumber, again.ApplicantNumber)

	require.NoError(t, s.SetApplicantQRCode(ctx, "2025100001", "2025100001_qrcode.png"))
	got, err := s.GetApplicantNumber(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2025100001_qrcode.png", got.QRCode)

	assert.ErrorIs(t, s.SetApplicantQRCode(ctx, "nope", "x.png"), store.ErrNotFound)
}

func TestIssueOTP_Cooldown(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	rec := model.OTPRecord{Email: "a@x.com", Code: "111111", ExpiresAt: now.Add(5 * time.Minute), CooldownUntil: now.Add(time.Minute)}
	_, err := s.IssueOTP(ctx, rec, now)
	require.NoError(t, err)

	// Second issue inside cooldown is refused and leaves the code untouched.
	again := model.OTPRecord{Email: "a@x.com", Code: "222222", ExpiresAt: now.Add(6 * time.Minute), CooldownUntil: now.Add(2 * time.Minute)}
	existing, err := s.IssueOTP(ctx, again, now.Add(30*time.Second))
	assert.ErrorIs(t, err, store.ErrConflict)
	require.NotNil(t, existing)
	assert.Equal(t, "111111", existing.Code)

	got, err := s.GetOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "111111", got.Code)

	// After cooldown the record is replaced.
	_, err = s.IssueOTP(ctx, again, now.Add(time.Minute))
	require.NoError(t, err)
	got, err = s.GetOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)

	require.NoError(t, s.DeleteOTP(ctx, "a@x.com"))
	_, err = s.GetOTP(ctx, "a@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordFailure_LocksAtThreshold(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for i := 1; i <= 2; i++ {
		rec, err := s.RecordFailure(ctx, "k", now, 3, 3*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, rec.Count)
		assert.False(t, rec.Locked(now))
	}

	rec, err := s.RecordFailure(ctx, "k", now, 3, 3*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Count)
	assert.True(t, rec.Locked(now))
	assert.Equal(t, 3*time.Minute, rec.Remaining(now))

	require.NoError(t, s.ClearLockout(ctx, "k"))
	_, err = s.GetLockout(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordFailure_Concurrent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RecordFailure(ctx, "race", now, 3, time.Minute)
		}()
	}
	wg.Wait()

	rec, err := s.GetLockout(ctx, "race")
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Count)
	assert.True(t, rec.Locked(now))
}

func TestPurgeExpired(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, age := range []time.Duration{10 * time.Minute, time.Minute} {
		issued := now.Add(-age)
		_, err := s.IssueOTP(ctx, model.OTPRecord{
			Email:         fmt.Sprintf("u%d@x.com", i),
			Code:          "000000",
			ExpiresAt:     issued.Add(5 * time.Minute),
			CooldownUntil: issued.Add(time.Minute),
		}, issued)
		require.NoError(t, err)
	}

	_, err := s.RecordFailure(ctx, "stale", now.Add(-48*time.Hour), 3, 3*time.Minute)
	require.NoError(t, err)
	_, err = s.RecordFailure(ctx, "fresh", now.Add(-time.Minute), 3, 3*time.Minute)
	require.NoError(t, err)

	n, err := s.PurgeExpired(ctx, now, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetOTP(ctx, "u0@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetOTP(ctx, "u1@x.com")
	assert.NoError(t, err)
	_, err = s.GetLockout(ctx, "stale")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetLockout(ctx, "fresh")
	assert.NoError(t, err)
}
