package api

import (
	"context"
	"net/http"
	"strings"

	"venuebook/internal/models"

	"github.com/google/uuid"
)

// TokenResolver resolves an API token to the account that owns it.
type TokenResolver interface {
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
}

type contextKey int

const actorKey contextKey = iota

func actorFrom(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(models.Actor)
	return actor, ok
}

// auth resolves the bearer token into an actor and rejects requests
// without a valid one.
func (s *HTTPServer) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := s.tokens.GetUserByToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		actor := models.Actor{ID: user.ID, Role: user.UserType}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next(w, r.WithContext(ctx))
	}
}

// requestID tags every request for log correlation.
func (s *HTTPServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		logger := s.logger.With().Str("request_id", id).Logger()
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")

		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

// rateLimit sheds load when the global inbound budget is exhausted.
func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
