package auth

import (
	"context"
	"time"
)

// Logger is the structured logger used across the package. Arguments after
// the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() int64
	Username() string
	Role() Role
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() time.Duration
	GetIssuer() string
	GetAuthScheme() string
	GetContextKey() string
	GetPublicPrefixes() []string
	GetPasswordCost() int
}

// CredentialStore maps a username to a stored identity record.
// FindByUsername returns ErrIdentityNotFound when there is no match and Save
// returns ErrUsernameTaken when the username already exists.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) (*User, error)
}

// PasswordVerifier performs one-way hashing and comparison of secrets.
type PasswordVerifier interface {
	Hash(plaintext string) (string, error)
	Matches(plaintext, hash string) bool
}

// TokenService mints and verifies signed bearer tokens.
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (*JWTClaims, error)
	UsernameFromToken(tokenString string) (string, error)
	IsValid(tokenString, username string) bool
}

// AuthResponse is returned by Login and Register.
type AuthResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}
