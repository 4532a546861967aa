package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/craftnest/teamforge-backend/internal/db"
	"github.com/craftnest/teamforge-backend/internal/notification"
	"github.com/craftnest/teamforge-backend/internal/rank"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/socket"
	"github.com/craftnest/teamforge-backend/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// Member Service
// ============================================

// MemberService is the team directory. Registration lands members in
// pending until an approve_requests holder lets them in; suspension and
// removal need manage_users.
type MemberService interface {
	Register(ctx context.Context, username, displayName, password string) (*repository.Member, error)
	Approve(ctx context.Context, actorID, memberID string) (*repository.Member, error)
	Suspend(ctx context.Context, actorID, memberID string) (*repository.Member, error)
	Reinstate(ctx context.Context, actorID, memberID string) (*repository.Member, error)
	Remove(ctx context.Context, actorID, memberID string) error

	Get(ctx context.Context, memberID string) (*repository.Member, error)
	GetByUsername(ctx context.Context, username string) (*repository.Member, error)
	List(ctx context.Context, actorID string) ([]*repository.Member, error)
	PendingMembers(ctx context.Context, actorID string) ([]*repository.Member, error)
	Leaderboard(ctx context.Context, actorID string) ([]*repository.Member, error)
}

type memberService struct {
	memberRepo  repository.MemberRepository
	eventRepo   repository.PointEventRepository
	perms       PermissionService
	catalog     *rank.Catalog
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
	cache       *db.RedisDB
	minPoints   int

	statusLocks *keyedMutex
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	eventRepo repository.PointEventRepository,
	perms PermissionService,
	catalog *rank.Catalog,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
	cache *db.RedisDB,
	minPoints int,
) MemberService {
	return &memberService{
		memberRepo:  memberRepo,
		eventRepo:   eventRepo,
		perms:       perms,
		catalog:     catalog,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
		cache:       cache,
		minPoints:   minPoints,
		statusLocks: newKeyedMutex(),
	}
}

func (s *memberService) Register(ctx context.Context, username, displayName, password string) (*repository.Member, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	if username == "" || displayName == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existing, err := s.memberRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateMember
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &repository.Member{
		Username:    username,
		DisplayName: displayName,
		Password:    string(hashedPassword),
		Status:      types.MemberPending,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	log.Printf("[Member] 📝 Registration pending: username=%s", member.Username)
	return s.decorate(ctx, member)
}

func (s *memberService) Approve(ctx context.Context, actorID, memberID string) (*repository.Member, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapApproveRequests); err != nil {
		return nil, err
	}

	unlock := s.statusLocks.Lock(memberID)
	defer unlock()

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status != types.MemberPending {
		return nil, ErrInvalidInput
	}

	member.Status = types.MemberActive
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	decorated, err := s.decorate(ctx, member)
	if err != nil {
		return nil, err
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendMemberApproved(ctx, member.ID, decorated.Rank); err != nil {
			log.Printf("[Member] Failed to send approval notification: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberApproved(map[string]interface{}{
			"memberId":    member.ID,
			"username":    member.Username,
			"displayName": member.DisplayName,
			"rank":        decorated.Rank,
		})
	}

	log.Printf("[Member] ✅ Approved: username=%s, by=%s", member.Username, actorID)
	return decorated, nil
}

func (s *memberService) Suspend(ctx context.Context, actorID, memberID string) (*repository.Member, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapManageUsers); err != nil {
		return nil, err
	}

	unlock := s.statusLocks.Lock(memberID)
	defer unlock()

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status == types.MemberSuspended {
		return s.decorate(ctx, member)
	}

	member.Status = types.MemberSuspended
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendMemberSuspended(ctx, member.ID); err != nil {
			log.Printf("[Member] Failed to send suspension notification: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberSuspended(member.ID, actorID)
	}

	log.Printf("[Member] ⛔ Suspended: username=%s, by=%s", member.Username, actorID)
	return s.decorate(ctx, member)
}

func (s *memberService) Reinstate(ctx context.Context, actorID, memberID string) (*repository.Member, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapManageUsers); err != nil {
		return nil, err
	}

	unlock := s.statusLocks.Lock(memberID)
	defer unlock()

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status != types.MemberSuspended {
		return nil, ErrInvalidInput
	}

	member.Status = types.MemberActive
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	log.Printf("[Member] ♻️ Reinstated: username=%s, by=%s", member.Username, actorID)
	return s.decorate(ctx, member)
}

func (s *memberService) Remove(ctx context.Context, actorID, memberID string) error {
	if _, err := s.perms.Require(ctx, actorID, types.CapManageUsers); err != nil {
		return err
	}

	unlock := s.statusLocks.Lock(memberID)
	defer unlock()

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return ErrMemberNotFound
	}

	if err := s.memberRepo.DeleteMemberRefreshTokens(ctx, memberID); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	if err := s.eventRepo.DeleteByMemberID(ctx, memberID); err != nil {
		return fmt.Errorf("failed to delete point events: %w", err)
	}
	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	s.invalidateLeaderboard(ctx)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberRemoved(memberID, actorID)
	}

	log.Printf("[Member] 🗑 Removed: username=%s, by=%s", member.Username, actorID)
	return nil
}

func (s *memberService) Get(ctx context.Context, memberID string) (*repository.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return s.decorate(ctx, member)
}

func (s *memberService) GetByUsername(ctx context.Context, username string) (*repository.Member, error) {
	member, err := s.memberRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return s.decorate(ctx, member)
}

func (s *memberService) List(ctx context.Context, actorID string) ([]*repository.Member, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapViewTeam); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return s.decorateAll(ctx, members)
}

func (s *memberService) PendingMembers(ctx context.Context, actorID string) ([]*repository.Member, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapApproveRequests); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.FindByStatus(ctx, types.MemberPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending members: %w", err)
	}
	return s.decorateAll(ctx, members)
}

func (s *memberService) Leaderboard(ctx context.Context, actorID string) ([]*repository.Member, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapViewTeam); err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached []*repository.Member
		if err := s.cache.GetCache(ctx, "leaderboard", &cached); err == nil {
			return cached, nil
		}
	}

	members, err := s.memberRepo.FindByStatus(ctx, types.MemberActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	decorated, err := s.decorateAll(ctx, members)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(decorated, func(i, j int) bool {
		if decorated[i].Points != decorated[j].Points {
			return decorated[i].Points > decorated[j].Points
		}
		return decorated[i].Username < decorated[j].Username
	})

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, "leaderboard", decorated, 5*time.Minute); err != nil {
			log.Printf("[Member] Failed to cache leaderboard: %v", err)
		}
	}

	return decorated, nil
}

// ============================================
// Internals
// ============================================

// decorate fills the derived Points and Rank fields from the ledger.
func (s *memberService) decorate(ctx context.Context, member *repository.Member) (*repository.Member, error) {
	total, err := s.eventRepo.SumBindingByMemberID(ctx, member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger: %w", err)
	}
	if total < s.minPoints {
		total = s.minPoints
	}
	member.Points = total
	member.Rank = s.catalog.Resolve(total).Name
	return member, nil
}

func (s *memberService) decorateAll(ctx context.Context, members []*repository.Member) ([]*repository.Member, error) {
	for _, member := range members {
		if _, err := s.decorate(ctx, member); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func (s *memberService) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx, "leaderboard*"); err != nil {
		log.Printf("[Member] Failed to invalidate leaderboard cache: %v", err)
	}
}
