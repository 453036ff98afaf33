package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"registrar-portal/backend/internal/mailer"
	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"
)

// RequestOTP emails a registration code to an address that has no account yet.
// It returns the confirmation message shown to the client.
func (s *Service) RequestOTP(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", newError(KindValidation, "Email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", newError(KindValidation, "Invalid email address")
	}

	registered, err := s.store.EmailRegistered(ctx, email)
	if err != nil {
		return "", internalError("Failed to send OTP", err)
	}
	if registered {
		return "", newError(KindConflict, "This email is already registered and cannot be used again.")
	}

	code, err := newCode()
	if err != nil {
		return "", internalError("Failed to send OTP", err)
	}
	now := s.now()
	rec := model.OTPRecord{
		Email:         email,
		Code:          code,
		ExpiresAt:     now.Add(OTPTTL),
		CooldownUntil: now.Add(RegistrationCooldown),
	}
	existing, err := s.state.IssueOTP(ctx, rec, now)
	if errors.Is(err, store.ErrConflict) {
		wait := existing.CooldownUntil.Sub(now)
		return "", rateLimited(fmt.Sprintf("OTP already sent. Please wait %ds.", ceilSeconds(wait)), wait)
	}
	if err != nil {
		return "", internalError("Failed to send OTP", err)
	}

	short := s.shortTerm(ctx)
	msg := mailer.Message{
		FromName: short + " OTP Verification",
		To:       email,
		Subject:  short + " OTP Code",
		Body:     fmt.Sprintf("Your %s OTP is: %s. It is valid for 5 minutes.", short, code),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		// Roll back so the client is not held by a cooldown for a code it never got.
		if derr := s.state.DeleteOTP(ctx, email); derr != nil {
			s.log.Error(ctx, "otp rollback failed", "email", email, "error", derr)
		}
		s.log.Error(ctx, "otp delivery failed", "email", email, "error", err)
		return "", internalError("Failed to send OTP", err)
	}

	s.log.Info(ctx, "registration otp sent", "email", email)
	return short + " OTP sent to your email", nil
}

// VerifyOTP checks code against the pending record for email. Wrong codes count
// toward the lockout keyed by email.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return newError(KindValidation, "Email and OTP are required")
	}

	now := s.now()
	if err := s.checkLock(ctx, email, now); err != nil {
		return wrapInternal(err, "Server error verifying OTP")
	}

	rec, err := s.state.GetOTP(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, "No OTP request found for this email")
	}
	if err != nil {
		return internalError("Server error verifying OTP", err)
	}

	if rec.Expired(now) {
		if err := s.state.DeleteOTP(ctx, email); err != nil {
			return internalError("Server error verifying OTP", err)
		}
		return newError(KindValidation, "OTP has expired. Please request a new one.")
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		lock, err := s.state.RecordFailure(ctx, email, now, MaxFailedAttempts, LockDuration)
		if err != nil {
			return internalError("Server error verifying OTP", err)
		}
		if lock.Locked(now) {
			s.log.Warn(ctx, "otp verification locked", "email", email)
			return rateLimited("Too many failed OTP attempts. Locked for 3 minutes.", LockDuration)
		}
		return newError(KindValidation, "Invalid OTP. Please try again.")
	}

	if err := s.state.DeleteOTP(ctx, email); err != nil {
		return internalError("Server error verifying OTP", err)
	}
	if err := s.state.ClearLockout(ctx, email); err != nil {
		return internalError("Server error verifying OTP", err)
	}
	s.log.Info(ctx, "otp verified", "email", email)
	return nil
}

// wrapInternal passes *Error values through and wraps anything else.
func wrapInternal(err error, msg string) error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return internalError(msg, err)
}
