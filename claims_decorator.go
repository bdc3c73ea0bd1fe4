package auth

// ClaimsDecorator can mutate extension claims before a token is signed.
// Implementations may only touch Authorities; sub, iss, jti, auth_id, iat and
// exp must be left as minted.
type ClaimsDecorator interface {
	Decorate(identity Identity, claims *JWTClaims) error
}

// ClaimsDecoratorFunc adapts a function into a ClaimsDecorator.
type ClaimsDecoratorFunc func(identity Identity, claims *JWTClaims) error

// Decorate satisfies the ClaimsDecorator interface.
func (f ClaimsDecoratorFunc) Decorate(identity Identity, claims *JWTClaims) error {
	if f == nil {
		return nil
	}
	return f(identity, claims)
}

type noopClaimsDecorator struct{}

func (noopClaimsDecorator) Decorate(Identity, *JWTClaims) error {
	return nil
}

func normalizeClaimsDecorator(d ClaimsDecorator) ClaimsDecorator {
	if d == nil {
		return noopClaimsDecorator{}
	}
	return d
}

// WithClaimsDecorator runs d on every claim set minted by the service.
func WithClaimsDecorator(d ClaimsDecorator) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.decorator = normalizeClaimsDecorator(d)
	}
}

// decorateClaims runs the decorator and rejects changes to protected claims.
func decorateClaims(decorator ClaimsDecorator, identity Identity, claims *JWTClaims) error {
	snap := captureImmutableClaims(claims)
	if err := normalizeClaimsDecorator(decorator).Decorate(identity, claims); err != nil {
		return err
	}
	if err := snap.validate(claims); err != nil {
		return err
	}
	claims.Authorities = dedupeAuthorities(claims.Authorities)
	return nil
}
