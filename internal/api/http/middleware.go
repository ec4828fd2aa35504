package http

import (
	"net/http"
	"strings"
	"time"

	"toolirent/internal/domain"
	"toolirent/internal/logger"
	"toolirent/internal/policy"
	"toolirent/internal/security"

	"github.com/google/uuid"
)

// RequestIDMiddleware tags every request with a unique id, echoed back
// in the X-Request-ID header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// LoggingMiddleware logs one line per completed request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFrom(r.Context()),
		)
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

// AuthMiddleware validates the bearer token and stores the caller's
// identity and admin flag on the context. Role-claim extraction happens
// here only; everything past this point works with policy.Caller.
type AuthMiddleware struct {
	tokens security.TokenManager
}

func NewAuthMiddleware(tokens security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		caller := policy.Caller{Email: claims.Email, IsAdmin: claims.IsAdmin()}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// RequireAdmin gates admin-only routes. It never reveals whether the
// requested resource exists.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok || !caller.IsAdmin {
			writeDomainError(w, r, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
