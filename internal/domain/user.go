package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// User is an attendee account. The profile fields (Name, LastName, Phone, College) must all be
// set before the attendee can register for events.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	College   string    `json:"college"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, lastName, phone, college string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		Name:      name,
		LastName:  lastName,
		Phone:     phone,
		College:   college,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// ProfileComplete reports whether every required profile field is filled in.
func (u *User) ProfileComplete() bool {
	for _, f := range []string{u.Name, u.LastName, u.Phone, u.College} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated identity.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// MaxLoginCodeAttempts is how many wrong guesses a login code survives.
const MaxLoginCodeAttempts = 5

// LoginCodeRepository defines the interface for one-time login code storage.
// Consume counts a mismatched hash against the email's live code and discards the code
// once MaxLoginCodeAttempts misses have been recorded.
type LoginCodeRepository interface {
	Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	Consume(ctx context.Context, email, codeHash string) (consumed bool, err error)
}

// UserService defines the business logic for user profile and authentication.
type UserService interface {
	ProfileOracle
	RequestLoginCode(ctx context.Context, email string) error
	VerifyLoginCode(ctx context.Context, email, code string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}
