package httpapi

import (
	"net/http"
	"strconv"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

type verifyPasswordRequest struct {
	PersonID flexString `json:"person_id"`
	Password string     `json:"password"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	var req verifyPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !authorizeAccount(w, r, string(req.PersonID)) {
		return
	}
	if err := s.auth.VerifyPassword(r.Context(), string(req.PersonID), req.Password); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Password verified"})
}

type otpSettingResponse struct {
	RequireOTP int `json:"require_otp"`
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Server) handleGetOTPSetting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if !authorizeAccount(w, r, r.PathValue("person_id")) {
		return
	}
	require, err := s.auth.OTPSetting(r.Context(), r.PathValue("person_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, otpSettingResponse{RequireOTP: boolToInt(require)})
}

func (s *Server) handleGetOTPSettingFor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if !authorizeAccount(w, r, r.PathValue("person_id")) {
		return
	}
	require, err := s.auth.OTPSettingFor(r.Context(), r.PathValue("type"), r.PathValue("person_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, otpSettingResponse{RequireOTP: boolToInt(require)})
}

type updateOTPSettingRequest struct {
	Type       string     `json:"type"`
	PersonID   flexString `json:"person_id"`
	RequireOTP flexBool   `json:"require_otp"`
}

func (s *Server) handleUpdateOTPSetting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	var req updateOTPSettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !authorizeAccount(w, r, string(req.PersonID)) {
		return
	}
	msg, err := s.auth.UpdateOTPSetting(r.Context(), req.Type, string(req.PersonID), req.RequireOTP.ptr())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msg})
}

type pageAccessResponse struct {
	PagePrivilege int `json:"page_privilege"`
}

func (s *Server) handlePageAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if !authorizeStaff(w, r) {
		return
	}
	pageID, err := strconv.Atoi(r.PathValue("page_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid page id")
		return
	}
	p, err := s.auth.PagePrivilege(r.Context(), r.PathValue("employee_id"), pageID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageAccessResponse{PagePrivilege: p})
}
