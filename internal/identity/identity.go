// Package identity carries the caller-supplied user id through a request.
// The id is opaque and not verified.
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Header is the request header that names the caller.
const Header = "X-User-Id"

const maxUserIDLen = 128

type ctxKey string

const userIDKey ctxKey = "user_id"

// UserIDFromContext returns the caller's id, or "" when none was sent.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// WithUserID returns a copy of ctx carrying id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// FromHeader stores the trimmed X-User-Id header in the request context.
// Requests without the header pass through with an empty id; ids longer
// than maxUserIDLen are rejected.
func FromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(Header))
		if len(uid) > maxUserIDLen {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "user id too long"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
	})
}
