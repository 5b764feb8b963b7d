package services

import (
	"context"
	"errors"
	"testing"

	"studyproject/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.account.Register(ctx, RegisterForm{Username: " alice ", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsSuperuser)
	assert.NotEqual(t, "password123", user.PasswordHash)

	got, err := f.account.Authenticate(ctx, LoginForm{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.account.Authenticate(ctx, LoginForm{Username: "alice", Password: "wrong-password"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = f.account.Authenticate(ctx, LoginForm{Username: "nobody", Password: "password123"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = f.account.Authenticate(ctx, LoginForm{})
	assert.True(t, IsValidation(err))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.account.Register(ctx, RegisterForm{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = f.account.Register(ctx, RegisterForm{Username: "alice", Email: "other@example.com", Password: "password123"})
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Empty(t, e.Form.(RegisterForm).Password)

	_, err = f.account.Register(ctx, RegisterForm{Username: "al", Email: "not-an-email", Password: "short"})
	e, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "username")
	assert.Contains(t, e.Fields, "email")
	assert.Contains(t, e.Fields, "password")
}

func TestEnsureSuperuser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.account.EnsureSuperuser(ctx, "admin", "", "secret-password")
	require.NoError(t, err)
	assert.True(t, admin.IsSuperuser)
	assert.Equal(t, "admin@localhost", admin.Email)

	again, err := f.account.EnsureSuperuser(ctx, "admin", "", "another-password")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = f.account.Authenticate(ctx, LoginForm{Username: "admin", Password: "secret-password"})
	require.NoError(t, err)

	plain := f.user(t, "bob")
	_, err = f.account.EnsureSuperuser(ctx, "bob", "", "whatever-pass")
	require.NoError(t, err)
	reloaded, err := f.account.GetByID(ctx, plain.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsSuperuser)

	_, err = f.account.GetByID(ctx, 999)
	assert.True(t, IsNotFound(err))

	_, err = f.account.EnsureSuperuser(ctx, "", "", "")
	assert.Error(t, err)
	assert.Equal(t, int64(2), f.count(t, &models.User{}, "is_superuser = ?", true))
}
