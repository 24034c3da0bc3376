package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const visitorContextKey contextKey = "visitor"

// SessionCookieName names the anonymous visitor cookie.
const SessionCookieName = "board_session"

// SecureCookies marks the visitor cookie Secure. Set in production.
var SecureCookies = false

// Visitor returns middleware that identifies the browser by an anonymous
// session cookie, issuing a fresh random ID when the cookie is missing or
// malformed. The cookie lives for ttl after the last request.
// POST: The request context carries a non-empty visitor ID
func Visitor(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.New().String()
			}
			setSessionCookie(w, id, ttl)
			next.ServeHTTP(w, r.WithContext(ContextWithVisitor(r.Context(), id)))
		})
	}
}

// VisitorFromContext extracts the visitor ID from the request context.
func VisitorFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorContextKey).(string)
	return id, ok && id != ""
}

// ContextWithVisitor returns a context with the given visitor ID set.
// Intended for use in tests.
func ContextWithVisitor(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorContextKey, id)
}

func setSessionCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}
