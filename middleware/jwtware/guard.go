package jwtware

import (
	auth "github.com/goliatone/go-jwt-auth"
	"github.com/goliatone/go-router"
)

// RequireAuthenticated rejects requests without a principal with
// auth.ErrUnauthorized.
func RequireAuthenticated() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if _, ok := PrincipalFrom(ctx); !ok {
				return auth.ErrUnauthorized
			}
			return next(ctx)
		}
	}
}

// RequireAuthority rejects anonymous requests with auth.ErrUnauthorized and
// principals lacking authority with auth.ErrForbidden.
func RequireAuthority(authority string) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			principal, ok := PrincipalFrom(ctx)
			if !ok {
				return auth.ErrUnauthorized
			}
			if !principal.HasAuthority(authority) {
				return auth.ErrForbidden.Clone().WithMetadata(map[string]any{
					"required": authority,
				})
			}
			return next(ctx)
		}
	}
}
