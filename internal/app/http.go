package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"ucsbexample/api/internal/auth"
	"ucsbexample/api/internal/logging"
	"ucsbexample/api/internal/metrics"
	"ucsbexample/api/internal/rbac"
)

type HTTPServer struct {
	service    *Service
	logger     logrus.FieldLogger
	corsOrigin string
	limiter    *RateLimiter
}

func NewHTTPServer(service *Service, logger logrus.FieldLogger, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, logger: logger, corsOrigin: corsOrigin}
}

// WithRateLimit turns on per-client admission control. A non-positive rate
// leaves requests unlimited.
func (s *HTTPServer) WithRateLimit(requestsPerSecond float64, burst int) *HTTPServer {
	if requestsPerSecond > 0 {
		s.limiter = NewRateLimiter(requestsPerSecond, burst)
	}
	return s
}

func (s *HTTPServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(metrics.Middleware)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/ready", s.handleReady).Methods(http.MethodGet, http.MethodHead)

	router.HandleFunc("/api/session/login", s.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/api/session/refresh", s.handleRefresh).Methods(http.MethodPost)
	router.HandleFunc("/api/session/logout", s.handleLogout).Methods(http.MethodPost)
	router.HandleFunc("/api/currentUser", s.handleCurrentUser).Methods(http.MethodGet)

	newResource(s, s.service.Organizations, bindOrganization, stringKey, "id", "orgCode").mount(router, "/api/UCSBOrganization")
	newResource(s, s.service.DiningCommons, bindDiningCommons, stringKey, "id", "code").mount(router, "/api/ucsbdiningcommons")
	newResource(s, s.service.HelpRequests, bindHelpRequest, int64Key, "id").mount(router, "/api/helprequests")
	newResource(s, s.service.MenuItemReviews, bindMenuItemReview, int64Key, "id").mount(router, "/api/menuitemreview")
	newResource(s, s.service.Dates, bindDate, int64Key, "id").mount(router, "/api/ucsbdates")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, typeNotFound, "No handler for "+r.Method+" "+r.URL.Path)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Protected paths authenticate before reporting a wrong method.
		if !publicPath(r.URL.Path) {
			if _, ok := s.authorize(w, r, rbac.ActionRead); !ok {
				return
			}
		}
		writeError(w, http.StatusMethodNotAllowed, typeMethod, "Method "+r.Method+" is not supported")
	})

	return s.withMiddleware(router)
}

func publicPath(path string) bool {
	switch path {
	case "/metrics", "/api/health", "/api/ready":
		return true
	}
	return strings.HasPrefix(path, "/api/session/")
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"store": map[string]any{"status": "ok"},
	}
	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["store"] = map[string]any{
			"status": "error",
			"error":  err.Error(),
		}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.service.DevLoginEnabled() {
		writeError(w, http.StatusNotFound, typeNotFound, "No handler for "+r.Method+" "+r.URL.Path)
		return
	}
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	session, err := s.service.Login(r.Context(), body.Email, body.Name)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	session, err := s.service.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal := Principal{}
	if token := bearerToken(r); token != "" {
		if parsed, err := s.service.PrincipalFromToken(r.Context(), token); err == nil {
			principal = parsed
		}
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &body); err != nil {
			s.writeFailure(w, r, err)
			return
		}
	}
	if err := s.service.Logout(r.Context(), principal, body.RefreshToken); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	r, ok := s.authorize(w, r, rbac.ActionRead)
	if !ok {
		return
	}
	principal := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"email": principal.Email,
		"name":  principal.Name,
		"roles": principal.Roles,
	})
}

func sessionResponse(session Session) map[string]any {
	return map[string]any{
		"token":        session.Token,
		"refreshToken": session.RefreshToken,
		"email":        session.Email,
		"name":         session.Name,
		"roles":        session.Roles,
		"expiresAt":    session.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

type principalKey struct{}

func principalFrom(ctx context.Context) Principal {
	principal, _ := ctx.Value(principalKey{}).(Principal)
	return principal
}

// authorize runs before anything else in a protected handler. On success the
// returned request carries the principal; otherwise the response is written.
func (s *HTTPServer) authorize(w http.ResponseWriter, r *http.Request, action rbac.Action) (*http.Request, bool) {
	token := bearerToken(r)
	if token == "" {
		s.forbid(w, r, "", action)
		return r, false
	}
	principal, err := s.service.PrincipalFromToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
			s.forbid(w, r, "", action)
			return r, false
		}
		s.writeFailure(w, r, fmt.Errorf("resolve principal: %w", err))
		return r, false
	}
	if !s.service.Can(principal, action) {
		s.forbid(w, r, principal.Email, action)
		return r, false
	}

	ctx := context.WithValue(r.Context(), principalKey{}, principal)
	ctx = logging.WithPrincipal(ctx, principal.Email)
	return r.WithContext(ctx), true
}

func (s *HTTPServer) forbid(w http.ResponseWriter, r *http.Request, email string, action rbac.Action) {
	logging.FromContext(r.Context(), s.logger).WithFields(logrus.Fields{
		"principal": email,
		"action":    action,
		"path":      r.URL.Path,
	}).Debug("access denied")
	writeError(w, http.StatusForbidden, typeAccessDenied, "Access is denied")
}

func (s *HTTPServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, errorType, message, unexpected := mapError(err)
	if unexpected {
		logging.FromContext(r.Context(), s.logger).WithError(err).Error("request failed")
	}
	writeError(w, status, errorType, message)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		r = r.WithContext(logging.WithRequestID(r.Context(), requestID))

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		switch {
		case r.Method == http.MethodOptions:
			writer.WriteHeader(http.StatusNoContent)
		case s.limiter != nil && !s.limiter.Allow(clientAddress(r)):
			writeError(writer, http.StatusTooManyRequests, typeRateLimited, "Rate limit exceeded")
		default:
			next.ServeHTTP(writer, r)
		}

		logging.FromContext(r.Context(), s.logger).WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      writer.status,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, errorType, message string) {
	writeJSON(w, status, map[string]string{
		"type":    errorType,
		"message": message,
	})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return validationError("Request body is required")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return validationError("Request body is required")
		}
		return validationError("Invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
