package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "secret", time.Hour)
	require.NoError(t, err)

	userID, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestParseTokenRejects(t *testing.T) {
	valid, err := GenerateToken(7, "secret", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(7, "secret", -time.Minute)
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]struct {
		token  string
		secret string
	}{
		"wrong secret":  {valid, "other"},
		"expired":       {expired, "secret"},
		"garbage":       {"not.a.token", "secret"},
		"missing claim": {noUser, "secret"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.token, tc.secret)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}
