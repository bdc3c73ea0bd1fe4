package jwtware

import (
	"context"

	auth "github.com/goliatone/go-jwt-auth"
	"github.com/goliatone/go-router"
)

// Decider is the per request authentication gate.
type Decider interface {
	Decide(ctx context.Context, req auth.Request) auth.Decision
}

// DecisionListener is invoked with every decision before the request proceeds.
type DecisionListener func(ctx router.Context, decision auth.Decision)

type Config struct {
	// Filter skips the middleware entirely when it returns true.
	Filter func(router.Context) bool
	// SuccessHandler runs after the decision; defaults to the next handler.
	SuccessHandler router.HandlerFunc
	// Gate is required.
	Gate Decider
	// ContextKey is the Locals key holding the *auth.Principal.
	ContextKey string
	// ClaimsKey is the Locals key holding the verified *auth.JWTClaims.
	ClaimsKey string

	DecisionListeners []DecisionListener
}

// New returns the authentication filter. It never rejects a request: it
// binds a principal when the bearer token checks out and otherwise passes
// the request on anonymously. Use RequireAuthenticated and RequireAuthority
// on the routes that need one.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	return func(next router.HandlerFunc) router.HandlerFunc {
		success := cfg.SuccessHandler
		if success == nil {
			success = next
		}

		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			stdCtx := ctx.Context()
			decision := cfg.Gate.Decide(stdCtx, auth.Request{
				Method:        ctx.Method(),
				Path:          ctx.Path(),
				Authorization: ctx.GetString(router.HeaderAuthorization, ""),
			})

			if decision.Authenticated() {
				ctx.Locals(cfg.ContextKey, decision.Principal)
				stdCtx = auth.WithPrincipal(stdCtx, decision.Principal)
				if decision.Claims != nil {
					ctx.Locals(cfg.ClaimsKey, decision.Claims)
					stdCtx = auth.WithClaimsContext(stdCtx, decision.Claims)
				}
				ctx.SetContext(stdCtx)
			}

			for _, listener := range cfg.DecisionListeners {
				if listener != nil {
					listener(ctx, decision)
				}
			}

			return success(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Gate == nil {
		panic("AUTH: JWT middleware configuration: Gate is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = auth.DefaultContextKey
	}

	if cfg.ClaimsKey == "" {
		cfg.ClaimsKey = cfg.ContextKey + "_claims"
	}

	return cfg
}

// PrincipalFrom returns the principal bound by the filter, if any.
func PrincipalFrom(ctx router.Context) (*auth.Principal, bool) {
	return auth.PrincipalFromContext(ctx.Context())
}
