package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "symposium/internal/delivery/http/helpers"
	"symposium/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// SetIdentity returns a context carrying the authenticated identity. Used by the auth middleware.
func SetIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity from the context, if present.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*domain.Identity)
	return id, ok && id != nil
}

// ContextIdentity implements domain.IdentityProvider over the request context.
type ContextIdentity struct{}

func (ContextIdentity) CurrentIdentity(ctx context.Context) (*domain.Identity, bool) {
	return IdentityFromContext(ctx)
}

func bearerToken(r *http.Request) (token string, present bool, msg string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false, "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", true, "invalid authorization format"
	}
	token = strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", true, "missing token"
	}
	return token, true, ""
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the identity in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, _, msg := bearerToken(r)
			if msg != "" {
				h.WriteJSONErrorWithRemediation(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msg, h.RemediationLogin)
				return
			}
			identity, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "err", err)
				h.WriteJSONErrorWithRemediation(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token", h.RemediationLogin)
				return
			}
			next(w, r.WithContext(SetIdentity(r.Context(), identity)))
		}
	}
}

// OptionalAuth sets the identity when a valid Bearer token is sent and otherwise lets the request
// through anonymously. A present but invalid token is still rejected so clients notice expiry.
func OptionalAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, present, msg := bearerToken(r)
			if !present {
				next(w, r)
				return
			}
			if msg != "" {
				h.WriteJSONErrorWithRemediation(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msg, h.RemediationLogin)
				return
			}
			identity, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "err", err)
				h.WriteJSONErrorWithRemediation(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token", h.RemediationLogin)
				return
			}
			next(w, r.WithContext(SetIdentity(r.Context(), identity)))
		}
	}
}
