package httpapi

import (
	"net/http"
)

type emailRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string     `json:"email"`
	OTP   flexString `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Success    bool   `json:"success"`
	RequireOTP bool   `json:"requireOtp"`
	Token      string `json:"token"`
	Message    string `json:"message"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	PersonID   string `json:"person_id"`
	EmployeeID string `json:"employee_id"`
	Department *int64 `json:"department"`
	AccessList []int  `json:"accessList"`
}

type applicantLoginResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Token           string `json:"token"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	PersonID        string `json:"person_id"`
	ApplicantNumber string `json:"applicant_number"`
	QRCode          string `json:"qr_code"`
}

func (s *Server) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := s.auth.RequestOTP(r.Context(), req.Email)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	var req verifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.auth.VerifyOTP(r.Context(), req.Email, string(req.OTP)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "OTP verified successfully"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Success:    true,
		RequireOTP: res.RequireOTP,
		Token:      res.Token,
		Message:    res.Message,
		Email:      res.Email,
		Role:       res.Role,
		PersonID:   res.PersonID,
		EmployeeID: res.EmployeeID,
		Department: res.Department,
		AccessList: res.AccessList,
	})
}

func (s *Server) handleLoginApplicant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.auth.LoginApplicant(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, applicantLoginResponse{
		Success:         true,
		Message:         "Login successful",
		Token:           res.Token,
		Email:           res.Email,
		Role:            res.Role,
		PersonID:        res.PersonID,
		ApplicantNumber: res.ApplicantNumber,
		QRCode:          res.QRCode,
	})
}
