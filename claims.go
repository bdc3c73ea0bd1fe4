package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the signed payload of a bearer token.
type JWTClaims struct {
	jwt.RegisteredClaims
	AuthID      int64    `json:"auth_id"`
	Authorities []string `json:"authorities"`
}

// Username returns the subject claim
func (c *JWTClaims) Username() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the identity id carried in auth_id
func (c *JWTClaims) UserID() int64 {
	return c.AuthID
}

// HasAuthority reports whether the token grants the given authority.
func (c *JWTClaims) HasAuthority(authority string) bool {
	for _, a := range c.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
