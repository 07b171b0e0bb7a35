package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, access, refresh, err := env.services.Auth.Register(ctx, "Nadia", "nadia@example.com", "hunter2hunter2", "")
	require.NoError(t, err)
	assert.Equal(t, types.RoleTeamMember, user.Role)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	// Password is stored hashed.
	assert.NotEqual(t, "hunter2hunter2", user.Password)

	loggedIn, _, _, err := env.services.Auth.Login(ctx, "nadia@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, _, err = env.services.Auth.Login(ctx, "nadia@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, _, err := env.services.Auth.Register(ctx, "A", "dup@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	_, _, _, err = env.services.Auth.Register(ctx, "B", "dup@example.com", "hunter2hunter2", "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	_, _, _, err := env.services.Auth.Register(context.Background(), "X", "x@example.com", "hunter2hunter2", "superuser")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, refresh, err := env.services.Auth.Register(ctx, "R", "r@example.com", "hunter2hunter2", types.RoleProjectManager)
	require.NoError(t, err)

	access2, refresh2, err := env.services.Auth.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEqual(t, refresh, refresh2)

	// The old refresh token is single use.
	_, _, err = env.services.Auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorFromToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, access, _, err := env.services.Auth.Register(ctx, "Actor", "actor@example.com", "hunter2hunter2", types.RoleAdmin)
	require.NoError(t, err)

	token, err := env.services.Auth.ValidateToken(access)
	require.NoError(t, err)

	actor, err := env.services.Auth.ActorFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.True(t, actor.IsAdmin())
	assert.True(t, actor.HasPermission(types.PermManageMembers))
}
