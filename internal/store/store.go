package store

import (
	"context"
	"errors"
	"time"

	"registrar-portal/backend/internal/model"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
)

// Store is the credential store, access-control gate and applicant numbering.
type Store interface {
	// FindAccountByLogin resolves an email or student number against user accounts
	// first, then instructor accounts by email. Matching is case-sensitive.
	FindAccountByLogin(ctx context.Context, login string) (*model.Account, error)
	GetUserAccountByPersonID(ctx context.Context, personID string) (*model.Account, error)
	// FindApplicantByEmail matches user accounts by email only.
	FindApplicantByEmail(ctx context.Context, email string) (*model.Account, error)
	EmailRegistered(ctx context.Context, email string) (bool, error)

	GetRequireOTP(ctx context.Context, source model.AccountSource, personID string) (bool, error)
	SetRequireOTP(ctx context.Context, source model.AccountSource, personID string, require bool) error

	ListPageAccess(ctx context.Context, employeeID string) ([]int, error)
	GetPagePrivilege(ctx context.Context, employeeID string, pageID int) (int, error)

	ShortTerm(ctx context.Context) (string, error)

	GetActiveTerm(ctx context.Context) (*model.ActiveTerm, error)
	GetApplicantNumber(ctx context.Context, personID string) (*model.ApplicantNumber, error)
	// CreateApplicantNumber mints format(count+1) for personID. If the person already
	// holds a number, that number is returned unchanged.
	CreateApplicantNumber(ctx context.Context, personID string, format func(seq int) string) (*model.ApplicantNumber, error)
	SetApplicantQRCode(ctx context.Context, applicantNumber, filename string) error
}

// StateStore holds OTP codes and lockout counters. Every method is atomic per key.
type StateStore interface {
	// IssueOTP stores rec unless a record for the same email is still cooling down
	// at now, in which case the existing record is returned with ErrConflict.
	IssueOTP(ctx context.Context, rec model.OTPRecord, now time.Time) (*model.OTPRecord, error)
	GetOTP(ctx context.Context, email string) (*model.OTPRecord, error)
	DeleteOTP(ctx context.Context, email string) error

	GetLockout(ctx context.Context, key string) (*model.LockoutRecord, error)
	// RecordFailure increments the counter for key and sets a lock for lockFor once
	// the count reaches maxAttempts.
	RecordFailure(ctx context.Context, key string, now time.Time, maxAttempts int, lockFor time.Duration) (model.LockoutRecord, error)
	ClearLockout(ctx context.Context, key string) error

	// PurgeExpired drops OTP records past both expiry and cooldown, and unlocked
	// lockout records not touched since idleBefore.
	PurgeExpired(ctx context.Context, now, idleBefore time.Time) (int, error)
}
