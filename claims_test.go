package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-jwt-auth"
)

func TestJWTClaims_Accessors(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		AuthID:      12,
		Authorities: []string{auth.AuthorityUser},
	}

	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, int64(12), claims.UserID())
	assert.Equal(t, now, claims.IssuedAt().UTC())
	assert.Equal(t, now.Add(time.Hour), claims.Expires().UTC())
	assert.True(t, claims.HasAuthority(auth.AuthorityUser))
	assert.False(t, claims.HasAuthority(auth.AuthorityAdmin))
}

func TestJWTClaims_ZeroTimes(t *testing.T) {
	claims := &auth.JWTClaims{}
	assert.True(t, claims.IssuedAt().IsZero())
	assert.True(t, claims.Expires().IsZero())
}

func TestJWTClaims_WireNames(t *testing.T) {
	claims := auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
		AuthID:           3,
		Authorities:      []string{auth.AuthorityAdmin},
	}

	raw, err := json.Marshal(claims)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "alice", fields["sub"])
	assert.EqualValues(t, 3, fields["auth_id"])
	assert.Equal(t, []any{auth.AuthorityAdmin}, fields["authorities"])
}
