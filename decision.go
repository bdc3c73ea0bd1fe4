package auth

import (
	"context"
	"net/http"
	"strings"
)

// DecisionKind tags the outcome of the authentication gate.
type DecisionKind int

const (
	// DecisionSkip means the request was not inspected (preflight or public route).
	DecisionSkip DecisionKind = iota
	// DecisionAnonymous means the request proceeds without a principal.
	DecisionAnonymous
	// DecisionAuthenticated means a principal is bound to the request.
	DecisionAuthenticated
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionSkip:
		return "skip"
	case DecisionAnonymous:
		return "anonymous"
	case DecisionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Decision is the gate outcome. Principal and Claims are set only for
// DecisionAuthenticated. Reason is a short label for logs and metrics.
type Decision struct {
	Kind      DecisionKind
	Principal *Principal
	Claims    *JWTClaims
	Reason    string
}

// Authenticated reports whether a principal was bound.
func (d Decision) Authenticated() bool {
	return d.Kind == DecisionAuthenticated && d.Principal != nil
}

const (
	ReasonPreflight       = "preflight"
	ReasonPublicRoute     = "public_route"
	ReasonNoToken         = "no_token"
	ReasonInvalidToken    = "invalid_token"
	ReasonUnknownIdentity = "unknown_identity"
	ReasonStoreError      = "store_error"
	ReasonTokenMismatch   = "token_mismatch"
	ReasonAlreadyBound    = "already_bound"
	ReasonVerified        = "verified"
)

// Request is the part of an HTTP request the gate looks at.
type Request struct {
	Method        string
	Path          string
	Authorization string
}

// Gate decides, per request, whether and as whom the request is
// authenticated. It never fails a request: invalid credentials degrade to
// anonymous and route guards do the rejecting.
type Gate struct {
	store          CredentialStore
	tokens         TokenService
	publicPrefixes []string
	authScheme     string
	logger         Logger
	metrics        *Metrics
}

// NewGate creates a gate reading public prefixes and auth scheme from cfg.
func NewGate(store CredentialStore, tokens TokenService, cfg Config) *Gate {
	prefixes := make([]string, 0)
	for _, p := range cfg.GetPublicPrefixes() {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return &Gate{
		store:          store,
		tokens:         tokens,
		publicPrefixes: prefixes,
		authScheme:     cfg.GetAuthScheme(),
		logger:         defLogger(),
	}
}

func (g *Gate) WithLogger(logger Logger) *Gate {
	g.logger = resolveLogger(logger)
	return g
}

func (g *Gate) WithMetrics(metrics *Metrics) *Gate {
	g.metrics = metrics
	return g
}

// Decide runs the decision sequence. Each step short-circuits.
func (g *Gate) Decide(ctx context.Context, req Request) Decision {
	d := g.decide(ctx, req)
	g.metrics.observeDecision(d)
	return d
}

func (g *Gate) decide(ctx context.Context, req Request) Decision {
	if req.Method == http.MethodOptions {
		return Decision{Kind: DecisionSkip, Reason: ReasonPreflight}
	}

	if g.IsPublicPath(req.Path) {
		return Decision{Kind: DecisionSkip, Reason: ReasonPublicRoute}
	}

	raw, ok := BearerToken(req.Authorization, g.authScheme)
	if !ok {
		return Decision{Kind: DecisionAnonymous, Reason: ReasonNoToken}
	}

	claims, err := g.tokens.Validate(raw)
	if err != nil || claims.Username() == "" {
		g.logger.Info("bearer token rejected, continuing anonymously",
			"path", req.Path,
			"text_code", TextCode(err),
			"error", err,
		)
		return Decision{Kind: DecisionAnonymous, Reason: ReasonInvalidToken}
	}

	username := claims.Username()

	if principal, bound := PrincipalFromContext(ctx); bound {
		return Decision{Kind: DecisionAuthenticated, Principal: principal, Claims: claims, Reason: ReasonAlreadyBound}
	}

	user, err := g.store.FindByUsername(ctx, username)
	if err != nil {
		if HasTextCode(err, TextCodeIdentityNotFound) {
			g.logger.Info("token subject has no identity", "username", username)
			return Decision{Kind: DecisionAnonymous, Reason: ReasonUnknownIdentity}
		}
		g.logger.Error("credential store lookup failed", "username", username, "error", err)
		return Decision{Kind: DecisionAnonymous, Reason: ReasonStoreError}
	}

	if !g.tokens.IsValid(raw, user.Username) {
		g.logger.Info("token failed identity check", "username", username)
		return Decision{Kind: DecisionAnonymous, Reason: ReasonTokenMismatch}
	}

	principal := &Principal{
		Username:    user.Username,
		Authorities: user.Authorities(),
	}

	g.logger.Debug("request authenticated", "username", principal.Username, "path", req.Path)

	return Decision{Kind: DecisionAuthenticated, Principal: principal, Claims: claims, Reason: ReasonVerified}
}

// IsPublicPath matches path against the public prefixes on segment
// boundaries, so "/auth/login" covers "/auth/login/" but not "/auth/loginx".
func (g *Gate) IsPublicPath(path string) bool {
	for _, prefix := range g.publicPrefixes {
		base := strings.TrimSuffix(prefix, "/")
		if base == "" {
			return true
		}
		if path == base || strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

// BearerToken extracts the token from an Authorization header value. The
// scheme match is case-sensitive and must be followed by a single space.
func BearerToken(header, scheme string) (string, bool) {
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	prefix := scheme + " "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := header[len(prefix):]
	if raw == "" {
		return "", false
	}
	return raw, true
}
