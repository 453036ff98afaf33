package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"registrar-portal/backend/internal/auth"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	Remaining *int   `json:"remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, msg string) {
	writeJSON(w, status, errorResponse{Message: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON")
		return false
	}
	return true
}

func statusForKind(k auth.Kind) int {
	switch k {
	case auth.KindValidation, auth.KindConflict, auth.KindNotFound:
		return http.StatusBadRequest
	case auth.KindUnknownAccount:
		return http.StatusNotFound
	case auth.KindUnauthorized:
		return http.StatusUnauthorized
	case auth.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps an auth.Error to its status and body. Anything else is
// a 500 with a generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		s.log.Error(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error")
		return
	}
	status := statusForKind(ae.Kind)
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", ae)
	}
	if ae.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(ae.RetryAfterSeconds()))
	}
	writeJSON(w, status, errorResponse{
		Message:   ae.Message,
		Code:      string(ae.Kind),
		Remaining: ae.Remaining,
	})
}

// flexBool accepts true/false, 0/1 and "0"/"1", as the admin panels send all three.
type flexBool struct {
	set bool
	val bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null":
		return nil
	case "true", "1", `"1"`, `"true"`:
		b.set, b.val = true, true
		return nil
	case "false", "0", `"0"`, `"false"`:
		b.set, b.val = true, false
		return nil
	}
	return fmt.Errorf("invalid boolean %s", data)
}

// ptr returns nil when the field was absent or null.
func (b flexBool) ptr() *bool {
	if !b.set {
		return nil
	}
	v := b.val
	return &v
}

// flexString accepts a JSON string or number, since person ids arrive as either.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
