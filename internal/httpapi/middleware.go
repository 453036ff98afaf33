package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"registrar-portal/backend/internal/auth"
	"registrar-portal/backend/internal/logging"
)

const requestIDHeader = "X-Request-Id"

type contextKey string

const ctxClaims contextKey = "claims"

func claimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(ctxClaims).(*auth.Claims)
	return c
}

// authorizeAccount lets staff tokens act on any account and limits tokens
// without an employee id (applicants) to their own person id. An empty person id
// is left for the service to reject as a missing parameter.
func authorizeAccount(w http.ResponseWriter, r *http.Request, personID string) bool {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
		return false
	}
	if claims.EmployeeID == "" && personID != "" && personID != claims.PersonID {
		writeError(w, http.StatusForbidden, "forbidden", "Not allowed to access this account")
		return false
	}
	return true
}

// authorizeStaff admits only tokens that carry an employee id.
func authorizeStaff(w http.ResponseWriter, r *http.Request) bool {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
		return false
	}
	if claims.EmployeeID == "" {
		writeError(w, http.StatusForbidden, "forbidden", "Staff account required")
		return false
	}
	return true
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

func recoverMiddleware(log logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error(r.Context(), "panic in handler", "path", r.URL.Path, "panic", rec)
				writeError(w, http.StatusInternalServerError, "panic", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// protectedPrefixes need a bearer token from /login or /login_applicant.
var protectedPrefixes = []string{
	"/api/verify-password",
	"/api/page_access/",
	"/get-otp-setting/",
	"/update-otp-setting",
}

func requiresAuth(path string) bool {
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func authMiddleware(tokens *auth.TokenIssuer, log logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requiresAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, prefix) {
			tokenStr := strings.TrimSpace(strings.TrimPrefix(header, prefix))
			claims, err := tokens.Parse(tokenStr)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxClaims, claims)))
				return
			}
			log.Debug(r.Context(), "bearer token rejected", "error", err)
		}

		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
	})
}
