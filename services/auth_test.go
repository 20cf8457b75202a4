package services_test

import (
	"testing"

	"github.com/CUknot/studymatch_backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthSignupAndLogin(t *testing.T) {
	f := newFixture(t)

	token, user, err := f.auth.Signup(f.ctx, "Ann", "ann@example.com", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "secret-pass", user.Password)

	id, err := f.auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, _, err = f.auth.Signup(f.ctx, "Ann again", "ann@example.com", "other")
	assert.ErrorIs(t, err, services.ErrUserExists)

	_, logged, err := f.auth.Login(f.ctx, "ann@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, _, err = f.auth.Login(f.ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, _, err = f.auth.Login(f.ctx, "nobody@example.com", "secret-pass")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestSignupRejectsBlankName(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.auth.Signup(f.ctx, " \t ", "blank@example.com", "secret-pass")
	assert.ErrorIs(t, err, services.ErrNameRequired)

	_, user, err := f.auth.Signup(f.ctx, "  Ann  ", "ann@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
}
