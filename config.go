package auth

import (
	"encoding/base64"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultTokenExpiration is the token TTL used when none is configured.
	DefaultTokenExpiration = 24 * time.Hour
	DefaultAuthScheme      = "Bearer"
	DefaultContextKey      = "user"
	// MinSigningKeyLength is the HS256 key floor in bytes.
	MinSigningKeyLength = 32
)

// DefaultPublicPrefixes are the routes the gate never authenticates.
var DefaultPublicPrefixes = []string{"/auth/login", "/auth/register"}

// Options is the plain struct implementation of Config.
type Options struct {
	SigningKey      string        `yaml:"signing_key" json:"signing_key"`
	TokenExpiration time.Duration `yaml:"token_ttl" json:"token_ttl"`
	Issuer          string        `yaml:"issuer" json:"issuer"`
	AuthScheme      string        `yaml:"auth_scheme" json:"auth_scheme"`
	ContextKey      string        `yaml:"context_key" json:"context_key"`
	PublicPrefixes  []string      `yaml:"public_prefixes" json:"public_prefixes"`
	PasswordCost    int           `yaml:"password_cost" json:"password_cost"`
}

var _ Config = Options{}

func (o Options) GetSigningKey() string { return o.SigningKey }

func (o Options) GetTokenExpiration() time.Duration {
	if o.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return o.TokenExpiration
}

func (o Options) GetIssuer() string { return o.Issuer }

func (o Options) GetAuthScheme() string {
	if strings.TrimSpace(o.AuthScheme) == "" {
		return DefaultAuthScheme
	}
	return o.AuthScheme
}

func (o Options) GetContextKey() string {
	if o.ContextKey == "" {
		return DefaultContextKey
	}
	return o.ContextKey
}

func (o Options) GetPublicPrefixes() []string {
	if o.PublicPrefixes == nil {
		return append([]string(nil), DefaultPublicPrefixes...)
	}
	return o.PublicPrefixes
}

func (o Options) GetPasswordCost() int { return o.PasswordCost }

// DecodeSigningKey turns the configured base64 secret into raw key bytes.
// Standard and URL alphabets are accepted, padded or not.
func DecodeSigningKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrSigningKeyMissing
	}

	var key []byte
	var err error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if key, err = enc.DecodeString(encoded); err == nil {
			break
		}
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "signing key is not valid base64").
			WithTextCode(TextCodeInvalidSigningKey)
	}

	if len(key) < MinSigningKeyLength {
		return nil, ErrSigningKeyTooShort.Clone().WithMetadata(map[string]any{
			"length":   len(key),
			"required": MinSigningKeyLength,
		})
	}

	return key, nil
}
