// Package auth implements the registrar authentication flows: registration
// OTPs, staff login with lockout and second-factor codes, applicant login with
// applicant-number provisioning, and per-account OTP settings.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"registrar-portal/backend/internal/logging"
	"registrar-portal/backend/internal/mailer"
	"registrar-portal/backend/internal/store"
)

const (
	OTPTTL               = 5 * time.Minute
	RegistrationCooldown = 60 * time.Second
	LoginOTPCooldown     = 5 * time.Minute
	MaxFailedAttempts    = 3
	LockDuration         = 3 * time.Minute

	DefaultShortTerm = "School"
)

// QRGenerator renders and stores the QR image for an applicant number.
type QRGenerator interface {
	Generate(ctx context.Context, applicantNumber string) (string, error)
}

type Options struct {
	Store  store.Store
	State  store.StateStore
	Mailer mailer.Mailer
	Tokens *TokenIssuer
	QR     QRGenerator
	Log    logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// ResetLockoutOnLogin clears the failure counter after a correct password.
	ResetLockoutOnLogin bool
}

type Service struct {
	store      store.Store
	state      store.StateStore
	mail       mailer.Mailer
	tokens     *TokenIssuer
	qr         QRGenerator
	log        logging.Logger
	now        func() time.Time
	resetOnWin bool
}

func NewService(opts Options) (*Service, error) {
	if opts.Store == nil || opts.State == nil {
		return nil, errors.New("auth: store and state store are required")
	}
	if opts.Mailer == nil {
		return nil, errors.New("auth: mailer is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	if opts.QR == nil {
		return nil, errors.New("auth: qr generator is required")
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:      opts.Store,
		state:      opts.State,
		mail:       opts.Mailer,
		tokens:     opts.Tokens,
		qr:         opts.QR,
		log:        opts.Log,
		now:        opts.Now,
		resetOnWin: opts.ResetLockoutOnLogin,
	}, nil
}

// Tokens exposes the issuer so the transport layer can verify bearer tokens.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// shortTerm returns the institution short name, or DefaultShortTerm when the
// settings row is absent or unreadable.
func (s *Service) shortTerm(ctx context.Context) string {
	name, err := s.store.ShortTerm(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn(ctx, "short term lookup failed", "error", err)
		}
		return DefaultShortTerm
	}
	if strings.TrimSpace(name) == "" {
		return DefaultShortTerm
	}
	return name
}

var codeMax = big.NewInt(1_000_000)

// newCode returns a uniformly random six-digit code, leading zeros kept.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// checkLock rejects key while its lockout is active.
func (s *Service) checkLock(ctx context.Context, key string, now time.Time) error {
	lock, err := s.state.GetLockout(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if lock.Locked(now) {
		wait := lock.Remaining(now)
		return rateLimited(fmt.Sprintf("Too many failed attempts. Try again in %ds.", ceilSeconds(wait)), wait)
	}
	return nil
}
