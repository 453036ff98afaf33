package auth

import (
	"context"
	"errors"

	"registrar-portal/backend/internal/model"
	"registrar-portal/backend/internal/store"
)

// OTPSetting reports whether the user account of personID requires an OTP.
// A missing account reads as false.
func (s *Service) OTPSetting(ctx context.Context, personID string) (bool, error) {
	return s.OTPSettingFor(ctx, string(model.SourceUser), personID)
}

// OTPSettingFor is OTPSetting for an explicit account source, "user" or "prof".
func (s *Service) OTPSettingFor(ctx context.Context, source, personID string) (bool, error) {
	if source == "" || personID == "" {
		return false, newError(KindValidation, "Missing parameters")
	}
	src, err := model.ParseAccountSource(source)
	if err != nil {
		return false, newError(KindValidation, "Invalid type")
	}
	require, err := s.store.GetRequireOTP(ctx, src, personID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, internalError("Server error", err)
	}
	return require, nil
}

// UpdateOTPSetting toggles the OTP requirement and returns the confirmation message.
func (s *Service) UpdateOTPSetting(ctx context.Context, source, personID string, require *bool) (string, error) {
	if source == "" || personID == "" || require == nil {
		return "", newError(KindValidation, "Missing parameters")
	}
	src, err := model.ParseAccountSource(source)
	if err != nil {
		return "", newError(KindValidation, "Invalid type")
	}
	err = s.store.SetRequireOTP(ctx, src, personID, *require)
	if errors.Is(err, store.ErrNotFound) {
		return "", newError(KindUnknownAccount, "User not found")
	}
	if err != nil {
		return "", internalError("Server error updating OTP setting", err)
	}
	s.log.Info(ctx, "otp setting updated", "person_id", personID, "source", src, "require_otp", *require)
	if *require {
		return "OTP has been enabled for your account.", nil
	}
	return "OTP has been disabled for your account.", nil
}

// PagePrivilege returns the privilege an employee holds on a page, 0 if none.
func (s *Service) PagePrivilege(ctx context.Context, employeeID string, pageID int) (int, error) {
	if employeeID == "" {
		return 0, newError(KindValidation, "Missing parameters")
	}
	p, err := s.store.GetPagePrivilege(ctx, employeeID, pageID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, internalError("Server error", err)
	}
	return p, nil
}
