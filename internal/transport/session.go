package transport

import (
	"context"
	"net/http"
)

type sessionKey struct{}

// SessionIDFromContext reports the session ID stashed by
// SessionMiddleware, if any.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionKey{}).(string)
	return sessionID, ok
}

// SessionMiddleware copies the Mcp-Session-Id header into the request
// context. An absent header is fine; downstream code falls back to the
// tenant's default workspace.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionID := r.Header.Get("Mcp-Session-Id"); sessionID != "" {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, sessionID))
		}
		next.ServeHTTP(w, r)
	})
}
