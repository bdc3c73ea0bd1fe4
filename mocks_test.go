package auth_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auth "github.com/goliatone/go-jwt-auth"
)

var testSigningKey = []byte("unit-test-signing-key-0123456789")

// MockCredentialStore implements auth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) Save(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPasswordVerifier implements auth.PasswordVerifier
type MockPasswordVerifier struct {
	mock.Mock
}

func (m *MockPasswordVerifier) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordVerifier) Matches(plaintext, hash string) bool {
	args := m.Called(plaintext, hash)
	return args.Bool(0)
}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (*auth.AuthResponse, error) {
	args := m.Called(ctx, username, password)
	if r, ok := args.Get(0).(*auth.AuthResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, username, password, role string) (*auth.AuthResponse, error) {
	args := m.Called(ctx, username, password, role)
	if r, ok := args.Get(0).(*auth.AuthResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingSink collects activity events.
type recordingSink struct {
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []auth.ActivityEventType {
	out := make([]auth.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

func newTestTokenService(opts ...auth.TokenServiceOption) auth.TokenService {
	return auth.NewTokenService(testSigningKey, time.Hour, "", auth.NopLogger(), opts...)
}
