package domain

import "context"

// Identity is an authenticated visitor.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentityProvider resolves the identity bound to a request context.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*Identity, bool)
}

// ProfileOracle reports whether the identity's profile has every field required to register.
type ProfileOracle interface {
	IsProfileComplete(ctx context.Context, identity *Identity) (bool, error)
}
