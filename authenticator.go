package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Auther runs login and registration against a CredentialStore.
type Auther struct {
	store        CredentialStore
	verifier     PasswordVerifier
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
	metrics      *Metrics
	now          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store CredentialStore, verifier PasswordVerifier, tokenService TokenService) *Auther {
	return &Auther{
		store:        store,
		verifier:     verifier,
		tokenService: tokenService,
		logger:       defLogger(),
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = resolveLogger(logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithMetrics enables Prometheus counters for login and registration.
func (s *Auther) WithMetrics(metrics *Metrics) *Auther {
	s.metrics = metrics
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and mints a token. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	started := s.now()

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if !HasTextCode(err, TextCodeIdentityNotFound) {
			s.logger.Error("login identity lookup failed", "error", err)
			s.loginFailed(ctx, username, "store_error", started)
			return nil, err
		}
		s.compareDummy(password)
		s.loginFailed(ctx, username, "unknown_username", started)
		return nil, ErrInvalidCredentials
	}

	if !s.verifier.Matches(password, user.PasswordHash) {
		s.loginFailed(ctx, username, "password_mismatch", started)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(user.Identity())
	if err != nil {
		s.logger.Error("login token generation failed", "error", err)
		s.loginFailed(ctx, username, "token_error", started)
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Username:  user.Username,
		UserID:    user.ID,
		Role:      user.Role,
	})
	s.metrics.observeLogin("success", started)

	return newAuthResponse(token, user), nil
}

// Register creates a new identity and mints a token for it. An empty role
// resolves to RoleUser; anything outside the role set is rejected.
func (s *Auther) Register(ctx context.Context, username, password, role string) (*AuthResponse, error) {
	started := s.now()

	username = strings.TrimSpace(username)

	parsed, ok := ParseRole(role)
	if !ok {
		s.registerFailed(ctx, username, "invalid_role", started)
		return nil, ErrInvalidRole.Clone().WithMetadata(map[string]any{
			"role":    role,
			"allowed": GetAllRoles(),
		})
	}

	if username == "" {
		s.registerFailed(ctx, username, "validation", started)
		return nil, goerrors.New("username is required", goerrors.CategoryValidation).
			WithTextCode(TextCodeValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		s.registerFailed(ctx, username, "username_taken", started)
		return nil, ErrUsernameTaken
	} else if !HasTextCode(err, TextCodeIdentityNotFound) {
		s.logger.Error("register identity lookup failed", "error", err)
		s.registerFailed(ctx, username, "store_error", started)
		return nil, err
	}

	hash, err := s.verifier.Hash(password)
	if err != nil {
		s.registerFailed(ctx, username, "hash_error", started)
		return nil, err
	}

	user, err := s.store.Save(ctx, &User{
		Username:     username,
		PasswordHash: hash,
		Role:         parsed,
	})
	if err != nil {
		reason := "store_error"
		if HasTextCode(err, TextCodeUsernameTaken) {
			reason = "username_taken"
		} else {
			s.logger.Error("register save failed", "error", err)
		}
		s.registerFailed(ctx, username, reason, started)
		return nil, err
	}

	token, err := s.tokenService.Generate(user.Identity())
	if err != nil {
		s.logger.Error("register token generation failed", "error", err)
		s.registerFailed(ctx, username, "token_error", started)
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEvent{
		EventType: ActivityEventRegisterSuccess,
		Username:  user.Username,
		UserID:    user.ID,
		Role:      user.Role,
	})
	s.metrics.observeRegistration("success", started)

	return newAuthResponse(token, user), nil
}

// compareDummy runs a password comparison against a throwaway hash so unknown
// usernames cost the same as wrong passwords.
func (s *Auther) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.verifier.Hash("unknown-identity-placeholder")
		if err != nil {
			s.logger.Warn("dummy password hash failed", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_ = s.verifier.Matches(password, s.dummyHash)
	}
}

func newAuthResponse(token string, user *User) *AuthResponse {
	return &AuthResponse{
		Token: token,
		Role:  user.Role.String(),
		Email: user.Username,
	}
}

func (s *Auther) loginFailed(ctx context.Context, username, reason string, started time.Time) {
	s.emitAuthEvent(ctx, ActivityEvent{
		EventType: ActivityEventLoginFailure,
		Username:  username,
		Reason:    reason,
	})
	s.metrics.observeLogin("failure", started)
}

func (s *Auther) registerFailed(ctx context.Context, username, reason string, started time.Time) {
	s.emitAuthEvent(ctx, ActivityEvent{
		EventType: ActivityEventRegisterFailure,
		Username:  username,
		Reason:    reason,
	})
	s.metrics.observeRegistration("failure", started)
}

func (s *Auther) emitAuthEvent(ctx context.Context, event ActivityEvent) {
	sink := normalizeActivitySink(s.activitySink)

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}
