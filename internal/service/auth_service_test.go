package service

import (
	"context"
	"testing"

	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func (e *testEnv) addLoginMember(t *testing.T, username, password, status string) *repository.Member {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	member := &repository.Member{
		Username:    username,
		DisplayName: username,
		Password:    string(hashed),
		Status:      status,
	}
	require.NoError(t, e.repos.MemberRepo.Create(context.Background(), member))
	return member
}

func TestLoginIssuesTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addLoginMember(t, "steve", "hunter2hunter2", types.MemberActive)

	member, access, refresh, err := env.services.Auth.Login(ctx, "steve", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "steve", member.Username)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	token, err := env.services.Auth.ValidateToken(access)
	require.NoError(t, err)

	memberID, err := env.services.Auth.GetMemberIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, member.ID, memberID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addLoginMember(t, "steve", "hunter2hunter2", types.MemberActive)

	_, _, _, err := env.services.Auth.Login(ctx, "steve", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = env.services.Auth.Login(ctx, "nobody", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsNonActiveMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addLoginMember(t, "newbie", "hunter2hunter2", types.MemberPending)
	env.addLoginMember(t, "frozen", "hunter2hunter2", types.MemberSuspended)

	_, _, _, err := env.services.Auth.Login(ctx, "newbie", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, _, _, err = env.services.Auth.Login(ctx, "frozen", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRefreshTokenRotates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addLoginMember(t, "steve", "hunter2hunter2", types.MemberActive)

	_, _, refresh, err := env.services.Auth.Login(ctx, "steve", "hunter2hunter2")
	require.NoError(t, err)

	access, newRefresh, err := env.services.Auth.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEqual(t, refresh, newRefresh)

	// The old refresh token is single-use.
	_, _, err = env.services.Auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addLoginMember(t, "steve", "hunter2hunter2", types.MemberActive)

	_, _, refresh, err := env.services.Auth.Login(ctx, "steve", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, env.services.Auth.Logout(ctx, refresh))

	_, _, err = env.services.Auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
