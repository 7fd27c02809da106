// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenValidator resolves a bearer token to a user id.
type TokenValidator func(ctx context.Context, token string) (int64, bool)

// BearerAuth is a middleware that enforces "Authorization: Bearer <token>".
//
// A missing header or a token rejected by validate yields 401 with a
// {"detail": ...} body. On success the user id is stored in the request
// context, see UserIDFromContext.
func BearerAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}
			userID, ok := validate(r.Context(), strings.TrimSpace(token))
			if !ok {
				unauthorized(w, "Given token not valid for any token type")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// UserIDFromContext returns the user id stored by BearerAuth, or 0.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userKey).(int64); ok {
		return id
	}
	return 0
}

// WithUserID returns a copy of ctx carrying id, as BearerAuth does.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey, id)
}
