package service

import (
	"context"
	"testing"
	"time"

	"github.com/craftnest/teamforge-backend/internal/config"
	"github.com/craftnest/teamforge-backend/internal/notification"
	"github.com/craftnest/teamforge-backend/internal/rank"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/types"
	"github.com/stretchr/testify/require"
)

// Catalog used across the service tests. Grants are flat on purpose:
// Admin manages points but cannot suggest, Moderator can only suggest.
func testServiceRanks() []rank.Rank {
	return []rank.Rank{
		{
			Name:     "Owner",
			Level:    5,
			Infinite: true,
			Permissions: []string{
				types.CapManageUsers, types.CapManagePoints,
				types.CapApproveRequests, types.CapManageStory,
				types.CapViewAll, types.CapViewTeam,
			},
		},
		{
			Name:      "Admin",
			Level:     4,
			Threshold: 400,
			Permissions: []string{
				types.CapManageUsers, types.CapManagePoints,
				types.CapApproveRequests, types.CapManageStory,
				types.CapViewAll, types.CapViewTeam,
			},
		},
		{
			Name:      "Moderator",
			Level:     3,
			Threshold: 100,
			Permissions: []string{
				types.CapSuggestPoints, types.CapViewTeam,
			},
		},
		{
			Name:      "Jr. Supporter",
			Level:     1,
			Threshold: 0,
			Permissions: []string{
				types.CapViewTeam,
			},
		},
	}
}

type testEnv struct {
	repos    *repository.Repositories
	services *Services
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	catalog, err := rank.Load(testServiceRanks())
	require.NoError(t, err)

	repos := repository.NewRepositories()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	deps := &ServiceDeps{
		Config: &config.Config{
			JWTSecret:     "test-secret",
			JWTExpiry:     1,
			RefreshExpiry: 1,
			MinPoints:     0,
		},
		Repos:    repos,
		Catalog:  catalog,
		NotifSvc: notification.NewService(repos.NotificationRepo),
		Clock:    func() time.Time { return now },
	}

	return &testEnv{
		repos:    repos,
		services: NewServices(deps),
		now:      now,
	}
}

// addMember seeds a member directly through the repositories, bypassing
// the registration flow, with an optional binding point balance.
func (e *testEnv) addMember(t *testing.T, username, status string, points int) *repository.Member {
	t.Helper()

	member := &repository.Member{
		Username:    username,
		DisplayName: username,
		Password:    "not-a-real-hash",
		Status:      status,
	}
	require.NoError(t, e.repos.MemberRepo.Create(context.Background(), member))

	if points != 0 {
		event := &repository.PointEvent{
			MemberID: member.ID,
			ActorID:  "seed",
			Kind:     types.KindManual,
			Delta:    points,
			Binding:  true,
		}
		require.NoError(t, e.repos.PointEventRepo.Append(context.Background(), event))
	}

	return member
}

func (e *testEnv) notificationsFor(t *testing.T, memberID string) []*repository.Notification {
	t.Helper()
	notifications, err := e.repos.NotificationRepo.FindByMemberID(context.Background(), memberID, false)
	require.NoError(t, err)
	return notifications
}

func (e *testEnv) eventsFor(t *testing.T, memberID string) []*repository.PointEvent {
	t.Helper()
	events, err := e.repos.PointEventRepo.FindByMemberID(context.Background(), memberID)
	require.NoError(t, err)
	return events
}
