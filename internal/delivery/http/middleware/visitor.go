package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// VisitorCookie is the cookie that keys a browser's cart session.
const VisitorCookie = "visitor_id"

const (
	visitorKey    contextKey = "visitor"
	visitorMaxAge = 180 * 24 * time.Hour
)

// SetVisitorID returns a context carrying the visitor ID.
func SetVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorKey, id)
}

// VisitorIDFromContext returns the visitor ID set by Visitor.
func VisitorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorKey).(string)
	return id, ok && id != ""
}

// Visitor reads the visitor_id cookie, issuing a fresh UUID when it is missing or malformed, and
// puts the ID in the request context.
func Visitor(secure bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(VisitorCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
			}
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(visitorMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			next(w, r.WithContext(SetVisitorID(r.Context(), id)))
		}
	}
}
