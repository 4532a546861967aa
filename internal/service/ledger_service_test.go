package service

import (
	"context"
	"testing"

	"github.com/craftnest/teamforge-backend/internal/notification"
	"github.com/craftnest/teamforge-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEventFoldsIntoRank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "alice", types.MemberActive, 500)
	target := env.addMember(t, "bob", types.MemberActive, 0)

	// An infraction followed by a large manual award.
	_, err := env.services.Ledger.RecordEvent(ctx, admin.ID, target.ID, types.KindRightsAbuse, 0, nil)
	require.NoError(t, err)

	_, err = env.services.Ledger.RecordEvent(ctx, admin.ID, target.ID, types.KindManual, 450, nil)
	require.NoError(t, err)

	total, err := env.services.Ledger.TotalPoints(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 430, total)

	rankName, err := env.services.Permission.ActorRank(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", rankName)

	// Crossing the threshold produced a rank change notification.
	var rankChanged bool
	for _, n := range env.notificationsFor(t, target.ID) {
		if n.Type == notification.TypeRankChanged {
			rankChanged = true
		}
	}
	assert.True(t, rankChanged, "expected a RANK_CHANGED notification")
}

func TestRecordEventPermissionDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	junior := env.addMember(t, "junior", types.MemberActive, 0)
	target := env.addMember(t, "target", types.MemberActive, 0)

	_, err := env.services.Ledger.RecordEvent(ctx, junior.ID, target.ID, types.KindManual, 50, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// A denied append leaves the ledger untouched.
	assert.Empty(t, env.eventsFor(t, target.ID))
}

func TestRecordEventSuspendedActorDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	suspended := env.addMember(t, "frozen", types.MemberSuspended, 500)
	target := env.addMember(t, "target", types.MemberActive, 0)

	_, err := env.services.Ledger.RecordEvent(ctx, suspended.ID, target.ID, types.KindManual, 10, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSuggestionIsNonBinding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	moderator := env.addMember(t, "mod", types.MemberActive, 150)
	target := env.addMember(t, "target", types.MemberActive, 0)

	event, err := env.services.Ledger.RecordEvent(ctx, moderator.ID, target.ID, types.KindManual, 500, nil)
	require.NoError(t, err)
	assert.False(t, event.Binding)

	// Suggestions never move the total or the rank.
	total, err := env.services.Ledger.TotalPoints(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	rankName, err := env.services.Permission.ActorRank(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jr. Supporter", rankName)

	events := env.eventsFor(t, target.ID)
	require.Len(t, events, 1)
	assert.False(t, events[0].Binding)
}

func TestRecordEventDeltaValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	target := env.addMember(t, "target", types.MemberActive, 0)

	// Manual deltas must be non-zero.
	_, err := env.services.Ledger.RecordEvent(ctx, admin.ID, target.ID, types.KindManual, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidDelta)

	// Infraction deltas cannot be positive.
	_, err = env.services.Ledger.RecordEvent(ctx, admin.ID, target.ID, types.KindSpam, 5, nil)
	assert.ErrorIs(t, err, ErrInvalidDelta)

	// A zero delta on an infraction takes the kind's fixed delta.
	event, err := env.services.Ledger.RecordEvent(ctx, admin.ID, target.ID, types.KindSpam, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, types.InfractionDeltas[types.KindSpam], event.Delta)

	// Unknown kinds are rejected outright.
	_, err = env.services.Ledger.RecordEvent(ctx, admin.ID, target.ID, "heroism", 10, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordEventUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)

	_, err := env.services.Ledger.RecordEvent(ctx, admin.ID, "no-such-member", types.KindManual, 10, nil)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestTotalPointsFlooredAtMinimum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	target := env.addMember(t, "target", types.MemberActive, 0)

	for i := 0; i < 3; i++ {
		_, err := env.services.Ledger.RecordEvent(ctx, admin.ID, target.ID, types.KindRepeatedMisconduct, 0, nil)
		require.NoError(t, err)
	}

	// The raw fold is -90 but the exposed total never drops below zero.
	total, err := env.services.Ledger.TotalPoints(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	rankName, err := env.services.Permission.ActorRank(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jr. Supporter", rankName)
}

func TestRecordBatchOrderIndependent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	first := env.addMember(t, "first", types.MemberActive, 0)
	second := env.addMember(t, "second", types.MemberActive, 0)

	entries := []BatchEntry{
		{Kind: types.KindManual, Delta: 450},
		{Kind: types.KindRightsAbuse},
		{Kind: types.KindManual, Delta: 80},
	}
	reversed := []BatchEntry{entries[2], entries[1], entries[0]}

	_, err := env.services.Ledger.RecordBatch(ctx, admin.ID, first.ID, entries)
	require.NoError(t, err)
	_, err = env.services.Ledger.RecordBatch(ctx, admin.ID, second.ID, reversed)
	require.NoError(t, err)

	totalFirst, err := env.services.Ledger.TotalPoints(ctx, first.ID)
	require.NoError(t, err)
	totalSecond, err := env.services.Ledger.TotalPoints(ctx, second.ID)
	require.NoError(t, err)

	assert.Equal(t, totalFirst, totalSecond)
	assert.Equal(t, 510, totalFirst)
}

func TestRecordBatchValidatesBeforeAppending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	target := env.addMember(t, "target", types.MemberActive, 0)

	_, err := env.services.Ledger.RecordBatch(ctx, admin.ID, target.ID, []BatchEntry{
		{Kind: types.KindManual, Delta: 100},
		{Kind: types.KindManual, Delta: 0}, // invalid
	})
	assert.ErrorIs(t, err, ErrInvalidDelta)

	// Nothing from the rejected batch landed in the ledger.
	assert.Empty(t, env.eventsFor(t, target.ID))
}

func TestRecordInactivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	target := env.addMember(t, "idle", types.MemberActive, 200)

	event, err := env.services.Ledger.RecordInactivity(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, ActorSystem, event.ActorID)
	assert.Equal(t, types.KindInactivity, event.Kind)
	assert.Equal(t, types.InfractionDeltas[types.KindInactivity], event.Delta)
	assert.True(t, event.Binding)

	total, err := env.services.Ledger.TotalPoints(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 175, total)
}

func TestEventsForVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	member := env.addMember(t, "member", types.MemberActive, 0)
	other := env.addMember(t, "other", types.MemberActive, 0)

	_, err := env.services.Ledger.RecordEvent(ctx, admin.ID, member.ID, types.KindManual, 30, nil)
	require.NoError(t, err)

	// Members can read their own history.
	events, err := env.services.Ledger.EventsFor(ctx, member.ID, member.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// view_all lets the admin read anyone's history.
	events, err = env.services.Ledger.EventsFor(ctx, admin.ID, member.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// Without view_all other members are shut out.
	_, err = env.services.Ledger.EventsFor(ctx, other.ID, member.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestKindCatalog(t *testing.T) {
	env := newTestEnv(t)

	kinds := env.services.Ledger.KindCatalog()
	assert.Len(t, kinds, len(types.ValidPointKinds))

	byKind := make(map[string]KindInfo, len(kinds))
	for _, info := range kinds {
		byKind[info.Kind] = info
	}

	assert.True(t, byKind[types.KindSpam].Infraction)
	assert.Equal(t, -5, byKind[types.KindSpam].DefaultDelta)
	assert.False(t, byKind[types.KindManual].Infraction)
	assert.Equal(t, 0, byKind[types.KindManual].DefaultDelta)
}
