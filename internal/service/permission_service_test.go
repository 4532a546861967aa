package service

import (
	"context"
	"testing"

	"github.com/craftnest/teamforge-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorRankFollowsLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.addMember(t, "member", types.MemberActive, 0)

	rankName, err := env.services.Permission.ActorRank(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jr. Supporter", rankName)

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	_, err = env.services.Ledger.RecordEvent(ctx, admin.ID, member.ID, types.KindManual, 120, nil)
	require.NoError(t, err)

	rankName, err = env.services.Permission.ActorRank(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moderator", rankName)
}

func TestActorRankUnknownMember(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Permission.ActorRank(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestRequireReturnsRankOnSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)

	rankName, err := env.services.Permission.Require(ctx, admin.ID, types.CapManagePoints)
	require.NoError(t, err)
	assert.Equal(t, "Admin", rankName)
}

func TestRequireDeniesNonActiveMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pending := env.addMember(t, "newbie", types.MemberPending, 500)
	suspended := env.addMember(t, "frozen", types.MemberSuspended, 500)

	_, err := env.services.Permission.Require(ctx, pending.ID, types.CapViewTeam)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.services.Permission.Require(ctx, suspended.ID, types.CapViewTeam)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGrantsAreFlat(t *testing.T) {
	env := newTestEnv(t)

	// Admin outranks Moderator yet does not hold its suggest grant.
	assert.True(t, env.services.Permission.Can("Moderator", types.CapSuggestPoints))
	assert.False(t, env.services.Permission.Can("Admin", types.CapSuggestPoints))

	// Unknown ranks hold nothing.
	assert.False(t, env.services.Permission.Can("Emperor", types.CapViewTeam))
}
