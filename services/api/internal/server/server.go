package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"aspirelink/internal/ratelimit"
	"aspirelink/internal/util"
	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/app"
)

// TokenVerifier verifies a bearer credential against the identity provider.
// Tests substitute a fake signer.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                            *app.App
	TokenVerifier                  TokenVerifier
	RedisAddr                      string
	RedisPassword                  string
	RegistrationRateLimitPerMinute int
	CheckEmailRateLimitPerMinute   int
}

// Server exposes the mentorship REST surface.
type Server struct {
	app              *app.App
	tokenVerifier    TokenVerifier
	mux              *http.ServeMux
	registrationRate *ratelimit.FixedWindowLimiter
	checkEmailRate   *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	registrationLimit := cfg.RegistrationRateLimitPerMinute
	if registrationLimit <= 0 {
		registrationLimit = 5
	}
	checkEmailLimit := cfg.CheckEmailRateLimitPerMinute
	if checkEmailLimit <= 0 {
		checkEmailLimit = 30
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "aspirelink:api:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	registrationRate, err := newLimiter("registration", registrationLimit)
	if err != nil {
		return nil, err
	}
	checkEmailRate, err := newLimiter("check-email", checkEmailLimit)
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:              cfg.App,
		tokenVerifier:    cfg.TokenVerifier,
		mux:              http.NewServeMux(),
		registrationRate: registrationRate,
		checkEmailRate:   checkEmailRate,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// public, rate limited
	s.mux.HandleFunc("/api/check-email-registration", s.handleCheckEmail)
	s.mux.HandleFunc("/api/student-registration", s.handleStudentRegistration)
	s.mux.HandleFunc("/api/mentor-registration", s.handleMentorRegistration)

	// bearer
	s.mux.Handle("/api/auth/register", s.authenticated(s.handleRegister))
	s.mux.Handle("/api/auth/link-registration", s.authenticated(s.handleLinkRegistration))
	s.mux.Handle("/api/me", s.authenticated(s.handleMe))
	s.mux.Handle("/api/me/cohorts", s.authenticated(s.handleMyCohorts))
	s.mux.Handle("/api/mentor/assignments", s.authenticated(s.handleMentorAssignments))
	s.mux.Handle("/api/student/assignments", s.authenticated(s.handleStudentAssignments))
	s.mux.Handle("/api/sessions", s.authenticated(s.handleSessions))
	s.mux.Handle("/api/sessions/", s.authenticated(s.handleSessionByID))

	// admin
	s.mux.Handle("/api/cohorts", s.adminOnly(s.handleCohorts))
	s.mux.Handle("/api/cohorts/", s.adminOnly(s.handleCohortSubtree))
	s.mux.Handle("/api/admin/accounts", s.adminOnly(s.handleAdminAccounts))
	s.mux.Handle("/api/admin/accounts/", s.adminOnly(s.handleAdminAccountByID))
	s.mux.Handle("/api/admin/registrations", s.adminOnly(s.handleAdminRegistrations))
	s.mux.Handle("/api/admin/match-suggestions", s.adminOnly(s.handleMatchSuggestions))
	s.mux.Handle("/api/admin/sessions", s.adminOnly(s.handleAdminSessions))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.Identity)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ident, err := s.tokenVerifier.Verify(token)
		if err != nil {
			s.audit(r, "api.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, ident)
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
		isAdmin, err := s.app.IsAdmin(ident)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !isAdmin {
			s.audit(r, "api.admin.authorize", "fail", "subject", ident.Subject)
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r, ident)
	})
}

// callerAccount resolves the caller's account or writes a 404.
func (s *Server) callerAccount(w http.ResponseWriter, ident domain.Identity) (domain.Account, bool) {
	account, ok, err := s.app.AccountForIdentity(ident)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return domain.Account{}, false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return domain.Account{}, false
	}
	return account, true
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps app-layer errors onto the REST error taxonomy.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case app.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case app.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrMentorRoleRequired),
		errors.Is(err, app.ErrStudentRoleRequired),
		errors.Is(err, app.ErrAccountInactive):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
