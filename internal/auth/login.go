package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"registrar-portal/backend/internal/mailer"
	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"
)

// LoginResult is returned for a successful staff, faculty or student login.
type LoginResult struct {
	Token      string
	RequireOTP bool
	Message    string
	Email      string
	Role       string
	PersonID   string
	EmployeeID string
	Department *int64
	AccessList []int
}

// Login authenticates by email or student number. Failures count toward a
// lockout keyed by the submitted identifier.
func (s *Service) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	if login == "" || password == "" {
		return nil, newError(KindValidation, "All fields are required")
	}

	now := s.now()
	if err := s.checkLock(ctx, login, now); err != nil {
		return nil, wrapInternal(err, "Server error during login")
	}

	acct, err := s.store.FindAccountByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.loginFailure(ctx, login, "Invalid email or student number", false)
	}
	if err != nil {
		return nil, internalError("Server error during login", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, s.loginFailure(ctx, login, "", true)
	}

	// An inactive account with the right password consumes no attempt.
	if !acct.Active {
		return nil, newError(KindUnauthorized, "The user didn’t exist or account is inactive")
	}

	if s.resetOnWin {
		if err := s.state.ClearLockout(ctx, login); err != nil {
			s.log.Warn(ctx, "clear lockout failed", "key", login, "error", err)
		}
	}

	access := []int{}
	if acct.EmployeeID != "" {
		access, err = s.store.ListPageAccess(ctx, acct.EmployeeID)
		if err != nil {
			return nil, internalError("Server error during login", err)
		}
	}

	token, err := s.tokens.Issue(Claims{
		PersonID:   acct.PersonID,
		EmployeeID: acct.EmployeeID,
		Email:      acct.Email,
		Role:       acct.Role,
		Department: acct.DepartmentID,
		AccessList: access,
	})
	if err != nil {
		return nil, internalError("Server error during login", err)
	}

	res := &LoginResult{
		Token:      token,
		RequireOTP: acct.RequireOTP,
		Email:      acct.Email,
		Role:       acct.Role,
		PersonID:   acct.PersonID,
		EmployeeID: acct.EmployeeID,
		Department: acct.DepartmentID,
		AccessList: access,
	}
	if !acct.RequireOTP {
		res.Message = "Login success. OTP not required."
		s.log.Info(ctx, "login success", "person_id", acct.PersonID, "source", acct.Source)
		return res, nil
	}

	if err := s.sendLoginOTP(ctx, acct); err != nil {
		return nil, internalError("Server error during login", err)
	}
	res.Message = "OTP sent to your email"
	s.log.Info(ctx, "login pending otp", "person_id", acct.PersonID, "source", acct.Source)
	return res, nil
}

// loginFailure records a failed attempt against key and builds the client error.
func (s *Service) loginFailure(ctx context.Context, key, msg string, badPassword bool) error {
	now := s.now()
	lock, err := s.state.RecordFailure(ctx, key, now, MaxFailedAttempts, LockDuration)
	if err != nil {
		return internalError("Server error during login", err)
	}
	if lock.Locked(now) {
		s.log.Warn(ctx, "login locked", "key", key)
		return rateLimited("Too many failed attempts. Locked for 3 minutes.", LockDuration)
	}
	if !badPassword {
		return newError(KindUnauthorized, msg)
	}
	remaining := max(MaxFailedAttempts-lock.Count, 0)
	return &Error{
		Kind:      KindUnauthorized,
		Message:   fmt.Sprintf("Invalid Password or Email, You have %d attempt(s) remaining.", remaining),
		Remaining: &remaining,
	}
}

// sendLoginOTP issues the second-factor code for acct. A code still inside its
// cooldown is left in place and not re-sent. Delivery failures are logged only;
// the client still receives its token.
func (s *Service) sendLoginOTP(ctx context.Context, acct *model.Account) error {
	code, err := newCode()
	if err != nil {
		return err
	}
	now := s.now()
	rec := model.OTPRecord{
		Email:         acct.Email,
		Code:          code,
		ExpiresAt:     now.Add(OTPTTL),
		CooldownUntil: now.Add(LoginOTPCooldown),
	}
	if _, err := s.state.IssueOTP(ctx, rec, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.log.Info(ctx, "login otp still valid, not re-sent", "email", acct.Email)
			return nil
		}
		return err
	}

	short := s.shortTerm(ctx)
	msg := mailer.Message{
		FromName: short + " - OTP Verification",
		To:       acct.Email,
		Subject:  short + " OTP Code",
		Body:     fmt.Sprintf("Your OTP is: %s (Valid for 5 minutes)", code),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Warn(ctx, "login otp delivery failed", "email", acct.Email, "error", err)
	}
	return nil
}

// VerifyPassword re-checks the password of a user account, for step-up prompts.
// Wrong passwords count toward a lockout keyed by person id.
func (s *Service) VerifyPassword(ctx context.Context, personID, password string) error {
	if personID == "" || password == "" {
		return newError(KindValidation, "Person ID and password required")
	}

	now := s.now()
	key := verifyPasswordKey(personID)
	if err := s.checkLock(ctx, key, now); err != nil {
		return wrapInternal(err, "Server error")
	}

	acct, err := s.store.GetUserAccountByPersonID(ctx, personID)
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, "User not found")
	}
	if err != nil {
		return internalError("Server error", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		lock, err := s.state.RecordFailure(ctx, key, now, MaxFailedAttempts, LockDuration)
		if err != nil {
			return internalError("Server error", err)
		}
		if lock.Locked(now) {
			s.log.Warn(ctx, "password re-check locked", "person_id", personID)
			return rateLimited("Too many failed attempts. Locked for 3 minutes.", LockDuration)
		}
		return newError(KindUnauthorized, "Invalid password")
	}
	if err := s.state.ClearLockout(ctx, key); err != nil {
		return internalError("Server error", err)
	}
	return nil
}

// verifyPasswordKey keeps person ids apart from login identifiers, which share
// the lockout keyspace.
func verifyPasswordKey(personID string) string {
	return "verify-password:" + personID
}
