package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenOptions controls how MintToken issues a token.
type TokenOptions struct {
	// TTL overrides the default token expiration. Zero uses TokenService defaults.
	TTL time.Duration
	// IssuedAt overrides the issuance time. Zero uses the service clock.
	IssuedAt time.Time
	// ExpiresAt pins the expiration time, taking precedence over TTL.
	ExpiresAt time.Time
	// Authorities overrides the authorities derived from the identity role.
	Authorities []string
}

type tokenDefaults struct {
	issuer    string
	ttl       time.Duration
	now       func() time.Time
	decorator ClaimsDecorator
}

type tokenDefaultsProvider interface {
	tokenDefaults() tokenDefaults
}

// MintToken builds the claim set for identity and signs it with tokenService.
// It returns the token and its expiration time.
func MintToken(tokenService TokenService, identity Identity, opts TokenOptions) (string, time.Time, error) {
	if tokenService == nil {
		return "", time.Time{}, goerrors.New("token service is required", goerrors.CategoryBadInput)
	}
	if identity == nil {
		return "", time.Time{}, goerrors.New("identity is required", goerrors.CategoryBadInput)
	}
	if identity.Username() == "" {
		return "", time.Time{}, goerrors.New("identity username is required", goerrors.CategoryBadInput)
	}

	issuer := ""
	ttl := opts.TTL
	now := time.Now
	var decorator ClaimsDecorator

	if defaultsProvider, ok := tokenService.(tokenDefaultsProvider); ok {
		defaults := defaultsProvider.tokenDefaults()
		issuer = defaults.issuer
		if ttl == 0 {
			ttl = defaults.ttl
		}
		if defaults.now != nil {
			now = defaults.now
		}
		decorator = defaults.decorator
	}

	if ttl == 0 {
		ttl = DefaultTokenExpiration
	}

	if ttl < 0 {
		return "", time.Time{}, goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = now()
	}

	expiresAt := opts.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = issuedAt.Add(ttl)
	}

	if !expiresAt.After(issuedAt) {
		return "", time.Time{}, goerrors.New("token must expire after it is issued", goerrors.CategoryBadInput)
	}

	authorities := opts.Authorities
	if authorities == nil {
		authorities = AuthoritiesFor(identity.Role())
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   identity.Username(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AuthID:      identity.ID(),
		Authorities: dedupeAuthorities(authorities),
	}

	if err := decorateClaims(decorator, identity, claims); err != nil {
		return "", time.Time{}, err
	}

	token, err := tokenService.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}
