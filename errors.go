package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	TextCodeUsernameTaken         = "USERNAME_TAKEN"
	TextCodeValidation            = "VALIDATION_ERROR"
	TextCodeInvalidRole           = "INVALID_ROLE"
	TextCodeTokenMalformed        = "TOKEN_MALFORMED"
	TextCodeTokenInvalidSignature = "TOKEN_INVALID_SIGNATURE"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeUnauthorized          = "UNAUTHORIZED"
	TextCodeForbidden             = "FORBIDDEN"
	TextCodeIdentityNotFound      = "IDENTITY_NOT_FOUND"
	TextCodeSigningKeyMissing     = "SIGNING_KEY_MISSING"
	TextCodeInvalidSigningKey     = "INVALID_SIGNING_KEY"
	TextCodeImmutableClaim        = "IMMUTABLE_CLAIM_MUTATION"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
var ErrInvalidCredentials = goerrors.New("invalid username or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = goerrors.New("username already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(goerrors.CodeConflict)

// ErrInvalidRole is returned when a requested role is outside the role set.
var ErrInvalidRole = goerrors.New("invalid role", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidRole).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenMalformed is returned for tokens that cannot be parsed.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalidSignature is returned when the signature does not verify.
var ErrTokenInvalidSignature = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalidSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their expiration.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnauthorized is returned when a guarded route has no principal.
var ErrUnauthorized = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when the principal lacks the required authority.
var ErrForbidden = goerrors.New("insufficient authority", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrSigningKeyMissing is returned when no signing key is configured.
var ErrSigningKeyMissing = goerrors.New("signing key is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeSigningKeyMissing)

// ErrSigningKeyTooShort is returned for keys below MinSigningKeyLength.
var ErrSigningKeyTooShort = goerrors.New("signing key is too short", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidSigningKey)

// ErrImmutableClaimMutation is returned when a ClaimsDecorator edits a
// protected claim.
var ErrImmutableClaimMutation = goerrors.New("immutable claim mutated", goerrors.CategoryInternal).
	WithTextCode(TextCodeImmutableClaim)

// TextCode returns the text code of a go-errors error, or "".
func TextCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}

// HasTextCode reports whether err carries the given text code.
func HasTextCode(err error, code string) bool {
	return err != nil && TextCode(err) == code
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return HasTextCode(err, TextCodeTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return HasTextCode(err, TextCodeTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed")
}

// IsInvalidSignatureError checks for signature verification failures
func IsInvalidSignatureError(err error) bool {
	return HasTextCode(err, TextCodeTokenInvalidSignature)
}

func withSource(base *goerrors.Error, err error) *goerrors.Error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	if err != nil {
		clone.Source = err
	}
	return clone
}
