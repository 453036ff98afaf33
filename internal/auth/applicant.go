package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"
)

type ApplicantResult struct {
	Token           string
	Email           string
	Role            string
	PersonID        string
	ApplicantNumber string
	QRCode          string
}

// LoginApplicant authenticates an applicant by email and makes sure the person
// holds an applicant number and a QR image. Provisioning is idempotent.
func (s *Service) LoginApplicant(ctx context.Context, email, password string) (*ApplicantResult, error) {
	if email == "" || password == "" {
		return nil, newError(KindValidation, "All fields are required")
	}

	acct, err := s.store.FindApplicantByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return nil, internalError("Server error during login", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, newError(KindUnauthorized, "Invalid Password or Email")
	}
	if !acct.Active {
		return nil, newError(KindUnauthorized, "The user didn’t exist or is inactive")
	}

	num, err := s.provisionApplicant(ctx, acct.PersonID)
	if err != nil {
		return nil, wrapInternal(err, "Server error during login")
	}

	token, err := s.tokens.Issue(Claims{
		PersonID: acct.PersonID,
		Email:    acct.Email,
		Role:     acct.Role,
	})
	if err != nil {
		return nil, internalError("Server error during login", err)
	}

	s.log.Info(ctx, "applicant login", "person_id", acct.PersonID, "applicant_number", num.ApplicantNumber)
	return &ApplicantResult{
		Token:           token,
		Email:           acct.Email,
		Role:            acct.Role,
		PersonID:        acct.PersonID,
		ApplicantNumber: num.ApplicantNumber,
		QRCode:          num.QRCode,
	}, nil
}

func (s *Service) provisionApplicant(ctx context.Context, personID string) (*model.ApplicantNumber, error) {
	num, err := s.store.GetApplicantNumber(ctx, personID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		term, terr := s.store.GetActiveTerm(ctx)
		if errors.Is(terr, store.ErrNotFound) {
			return nil, internalError("No active school year found", terr)
		}
		if terr != nil {
			return nil, terr
		}
		num, err = s.store.CreateApplicantNumber(ctx, personID, term.FormatApplicantNumber)
		if err != nil {
			return nil, err
		}
		s.log.Info(ctx, "applicant number assigned", "person_id", personID, "applicant_number", num.ApplicantNumber)
	case err != nil:
		return nil, err
	}

	if num.QRCode != "" {
		return num, nil
	}
	name, err := s.qr.Generate(ctx, num.ApplicantNumber)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetApplicantQRCode(ctx, num.ApplicantNumber, name); err != nil {
		return nil, err
	}
	num.QRCode = name
	return num, nil
}
