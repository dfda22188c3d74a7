package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"symposium/internal/domain"
)

// ErrInvalidToken is returned by Verify for malformed, expired or foreign tokens.
var ErrInvalidToken = errors.New("invalid token")

const ticketAudience = "symposium-ticket"

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type ticketClaims struct {
	jwt.RegisteredClaims
	Email  string   `json:"email"`
	Events []string `json:"events"`
}

// JWTIssuer signs and verifies HS256 tokens. It issues session tokens and ticket payloads.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

var (
	_ domain.TokenIssuer   = (*JWTIssuer)(nil)
	_ domain.TokenVerifier = (*JWTIssuer)(nil)
	_ domain.TicketSigner  = (*JWTIssuer)(nil)
)

// NewJWTIssuer returns a JWTIssuer using secret for both signing and verification.
func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), now: time.Now}
}

func (i *JWTIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	now := i.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses a session token. Ticket tokens are rejected.
func (i *JWTIssuer) Verify(tokenString string) (*domain.Identity, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	for _, aud := range claims.Audience {
		if aud == ticketAudience {
			return nil, fmt.Errorf("%w: ticket token used as session", ErrInvalidToken)
		}
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &domain.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

// SignTicket signs the registered event list so door staff can check it offline.
func (i *JWTIssuer) SignTicket(identity, email string, events []string, issuedAt time.Time) (string, error) {
	claims := ticketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identity,
			Audience: jwt.ClaimStrings{ticketAudience},
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
		Email:  email,
		Events: events,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ticket: %w", err)
	}
	return tokenString, nil
}

func (i *JWTIssuer) keyFunc(*jwt.Token) (any, error) {
	return i.secret, nil
}
