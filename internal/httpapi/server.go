package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"

	"registrar-portal/backend/internal/auth"
	"registrar-portal/backend/internal/config"
	"registrar-portal/backend/internal/logging"
)

type Server struct {
	cfg  config.Config
	auth *auth.Service
	log  logging.Logger
	mux  *http.ServeMux
}

func NewServer(cfg config.Config, svc *auth.Service, log logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{
		cfg:  cfg,
		auth: svc,
		log:  log,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = authMiddleware(s.auth.Tokens(), s.log, h)
	h = recoverMiddleware(s.log, h)
	h = loggingMiddleware(s.log, h)
	h = requestIDMiddleware(h)
	h = s.corsMiddleware(h)
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	s.mux.HandleFunc("/request-otp", s.handleRequestOTP)
	s.mux.HandleFunc("/verify-otp", s.handleVerifyOTP)
	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/login_applicant", s.handleLoginApplicant)

	s.mux.HandleFunc("/api/verify-password", s.handleVerifyPassword)
	s.mux.HandleFunc("/get-otp-setting/{person_id}", s.handleGetOTPSetting)
	s.mux.HandleFunc("/get-otp-setting/{type}/{person_id}", s.handleGetOTPSettingFor)
	s.mux.HandleFunc("/update-otp-setting", s.handleUpdateOTPSetting)
	s.mux.HandleFunc("/api/page_access/{employee_id}/{page_id}", s.handlePageAccess)

	if !s.cfg.QRS3.Enabled() && s.cfg.UploadDir != "" {
		s.mux.Handle("/uploads/", uploadsHandler(s.cfg.UploadDir))
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 && s.cfg.FrontendBaseURL != "" {
		origins = []string{strings.TrimRight(s.cfg.FrontendBaseURL, "/")}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader, "Retry-After"}),
		handlers.AllowCredentials(),
	)(next)
}

// uploadsHandler serves stored QR images. Directory listings are refused.
func uploadsHandler(dir string) http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		if strings.HasSuffix(r.URL.Path, "/") {
			writeError(w, http.StatusNotFound, "not_found", "not found")
			return
		}
		files.ServeHTTP(w, r)
	})
}
