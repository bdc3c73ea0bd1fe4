package auth_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/goliatone/go-jwt-auth"
)

func TestBcryptVerifier_Hash(t *testing.T) {
	verifier := auth.NewBcryptVerifier(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "Exactly 72 bytes",
			password: strings.Repeat("p", auth.MaxPasswordBytes),
		},
		{
			name:     "73 bytes",
			password: strings.Repeat("p", auth.MaxPasswordBytes+1),
			wantErr:  true,
		},
		{
			name:     "128 bytes",
			password: strings.Repeat("p", 128),
			wantErr:  true,
		},
		{
			name:     "40 runes over 72 bytes",
			password: strings.Repeat("é", 40),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := verifier.Hash(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, auth.HasTextCode(err, auth.TextCodeValidation))
				assert.Equal(t, http.StatusBadRequest, auth.StatusCode(auth.AsRichError(err)))
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, bcrypt.MinCost, cost)

			assert.True(t, verifier.Matches(tt.password, hash))
		})
	}
}

func TestBcryptVerifier_Matches(t *testing.T) {
	verifier := auth.NewBcryptVerifier(bcrypt.MinCost)

	hash, err := verifier.Hash("testPassword123!")
	require.NoError(t, err)

	assert.True(t, verifier.Matches("testPassword123!", hash))
	assert.False(t, verifier.Matches("wrongPassword", hash))
	assert.False(t, verifier.Matches("testPassword123!", "not-a-hash"))
	assert.False(t, verifier.Matches("", hash))
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("testPassword123!"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, auth.ComparePasswordAndHash("testPassword123!", string(hash)))
	assert.ErrorIs(t, auth.ComparePasswordAndHash("nope", string(hash)), auth.ErrMismatchedHashAndPassword)
}

func TestNewBcryptVerifier_OutOfRangeCost(t *testing.T) {
	verifier := auth.NewBcryptVerifier(bcrypt.MaxCost + 1)

	hash, err := verifier.Hash("password")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, bcrypt.DefaultCost)
}
