// Package middleware provides HTTP middleware for session authentication and
// request instrumentation.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/fmarinoa/el-impostor-game/internal/auth"
	"github.com/fmarinoa/el-impostor-game/internal/service"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s service.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom extracts the session from the context.
// The second return is false if no session is attached.
func SessionFrom(ctx context.Context) (service.Session, bool) {
	s, ok := ctx.Value(sessionKey).(service.Session)
	return s, ok
}

// BearerToken extracts the bearer token from a request's Authorization
// header, falling back to the "token" query parameter for transports that
// cannot set headers (browser websocket clients).
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// RequireSession validates the request's session token and attaches the
// resulting session to the context. Requests without a valid token get 401.
func RequireSession(tokens *auth.JWTManager, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		token := BearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"authorization token required"}`, http.StatusUnauthorized)
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		sess := service.Session{
			PlayerID:   claims.PlayerID,
			PlayerName: claims.PlayerName,
			RoomID:     claims.RoomID,
			RoomCode:   claims.RoomCode,
		}
		next(w, r.WithContext(WithSession(r.Context(), sess)), p)
	}
}
