package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenServiceImpl implements the TokenService interface with HS256 over a
// single symmetric key.
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration time.Duration
	issuer          string
	logger          Logger
	decorator       ClaimsDecorator
	now             func() time.Time
}

// TokenServiceOption customizes a TokenServiceImpl.
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenClock overrides the clock used for issuing and validating tokens.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, tokenExpiration time.Duration, issuer string, logger Logger, opts ...TokenServiceOption) TokenService {
	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}

	ts := &TokenServiceImpl{
		signingKey:      append([]byte(nil), signingKey...),
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          resolveLogger(logger),
		decorator:       noopClaimsDecorator{},
		now:             time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// NewTokenServiceFromConfig decodes the configured base64 key and builds
// the service.
func NewTokenServiceFromConfig(cfg Config, logger Logger, opts ...TokenServiceOption) (TokenService, error) {
	key, err := DecodeSigningKey(cfg.GetSigningKey())
	if err != nil {
		return nil, err
	}
	return NewTokenService(key, cfg.GetTokenExpiration(), cfg.GetIssuer(), logger, opts...), nil
}

// Generate creates a token for the identity with the default TTL.
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	token, _, err := MintToken(ts, identity, TokenOptions{})
	return token, err
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	if claims.RegisteredClaims.Subject == "" {
		return "", goerrors.New("token subject is required", goerrors.CategoryBadInput)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string. Failures are one of
// ErrTokenMalformed, ErrTokenInvalidSignature or ErrTokenExpired.
func (ts *TokenServiceImpl) Validate(tokenString string) (*JWTClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, withSource(ErrTokenInvalidSignature, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, withSource(ErrTokenExpired, err)
		default:
			return nil, withSource(ErrTokenMalformed, err)
		}
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	// jwt treats exp == now as still valid; a token is expired once now reaches exp
	if !claims.Expires().After(ts.now()) {
		return nil, ErrTokenExpired
	}

	if iat := claims.IssuedAt(); !iat.IsZero() && !claims.Expires().After(iat) {
		return nil, ErrTokenMalformed.Clone().WithMetadata(map[string]any{
			"reason": "expiration not after issuance",
		})
	}

	return claims, nil
}

// UsernameFromToken returns the subject of a verified token.
func (ts *TokenServiceImpl) UsernameFromToken(tokenString string) (string, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return "", err
	}

	if claims.Username() == "" {
		return "", ErrTokenMalformed.Clone().WithMetadata(map[string]any{
			"reason": "missing subject",
		})
	}

	return claims.Username(), nil
}

// IsValid reports whether the token verifies, is unexpired and belongs to
// username. It never returns an error.
func (ts *TokenServiceImpl) IsValid(tokenString, username string) bool {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		ts.logger.Debug("token rejected", "error", err)
		return false
	}

	if username == "" || claims.Username() != username {
		return false
	}

	return claims.Expires().After(ts.now())
}

func (ts *TokenServiceImpl) tokenDefaults() tokenDefaults {
	return tokenDefaults{
		issuer:    ts.issuer,
		ttl:       ts.tokenExpiration,
		now:       ts.now,
		decorator: ts.decorator,
	}
}
