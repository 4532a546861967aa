package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/craftnest/teamforge-backend/internal/db"
	"github.com/craftnest/teamforge-backend/internal/notification"
	"github.com/craftnest/teamforge-backend/internal/rank"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/socket"
	"github.com/craftnest/teamforge-backend/internal/types"
)

// ============================================
// Ledger Service
// ============================================

// BatchEntry is one event in a batch append against a single member.
type BatchEntry struct {
	Kind   string
	Delta  int
	Reason *string
}

// KindInfo describes a point event kind for clients.
type KindInfo struct {
	Kind         string
	DefaultDelta int
	Infraction   bool
}

// LedgerService appends point events and re-resolves ranks. Events are
// immutable once appended; a member's total is the fold of their binding
// events, floored at the configured minimum.
type LedgerService interface {
	// RecordEvent appends one event. manage_points holders append binding
	// events; suggest_points holders append non-binding suggestions.
	// Infraction kinds take their fixed delta when delta is zero and
	// otherwise must stay negative. Manual deltas must be non-zero.
	RecordEvent(ctx context.Context, actorID, memberID, kind string, delta int, reason *string) (*repository.PointEvent, error)

	// RecordBatch appends several events against one member atomically
	// with respect to other writers of that member. Validation happens
	// before any event is appended; rank is re-resolved once at the end.
	RecordBatch(ctx context.Context, actorID, memberID string, entries []BatchEntry) ([]*repository.PointEvent, error)

	// RecordInactivity appends the system-issued inactivity infraction.
	RecordInactivity(ctx context.Context, memberID string) (*repository.PointEvent, error)

	// TotalPoints returns the floored binding total for a member.
	TotalPoints(ctx context.Context, memberID string) (int, error)

	// EventsFor lists a member's events, newest first. Members may view
	// their own history; anyone else needs view_all.
	EventsFor(ctx context.Context, actorID, memberID string) ([]*repository.PointEvent, error)

	// KindCatalog lists the recognized event kinds and default deltas.
	KindCatalog() []KindInfo
}

type ledgerService struct {
	eventRepo  repository.PointEventRepository
	memberRepo repository.MemberRepository
	perms      PermissionService
	catalog    *rank.Catalog
	notifSvc   *notification.Service
	broadcaster *socket.Broadcaster
	cache      *db.RedisDB
	minPoints  int
	clock      func() time.Time

	memberLocks *keyedMutex
}

func NewLedgerService(
	eventRepo repository.PointEventRepository,
	memberRepo repository.MemberRepository,
	perms PermissionService,
	catalog *rank.Catalog,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
	cache *db.RedisDB,
	minPoints int,
	clock func() time.Time,
) LedgerService {
	if clock == nil {
		clock = time.Now
	}
	return &ledgerService{
		eventRepo:   eventRepo,
		memberRepo:  memberRepo,
		perms:       perms,
		catalog:     catalog,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
		cache:       cache,
		minPoints:   minPoints,
		clock:       clock,
		memberLocks: newKeyedMutex(),
	}
}

func (s *ledgerService) RecordEvent(ctx context.Context, actorID, memberID, kind string, delta int, reason *string) (*repository.PointEvent, error) {
	binding, err := s.resolveBinding(ctx, actorID)
	if err != nil {
		return nil, err
	}

	delta, err = normalizeDelta(kind, delta)
	if err != nil {
		return nil, err
	}

	target, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if target == nil {
		return nil, ErrMemberNotFound
	}

	unlock := s.memberLocks.Lock(memberID)
	defer unlock()

	event := &repository.PointEvent{
		MemberID:  memberID,
		ActorID:   actorID,
		Kind:      kind,
		Delta:     delta,
		Reason:    reason,
		Binding:   binding,
		CreatedAt: s.clock(),
	}

	if !binding {
		if err := s.eventRepo.Append(ctx, event); err != nil {
			return nil, fmt.Errorf("failed to append event: %w", err)
		}
		if s.notifSvc != nil {
			if err := s.notifSvc.SendPointsSuggested(ctx, memberID, kind, delta); err != nil {
				log.Printf("[Ledger] Failed to send suggestion notification: %v", err)
			}
		}
		return event, nil
	}

	if err := s.appendBinding(ctx, memberID, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *ledgerService) RecordBatch(ctx context.Context, actorID, memberID string, entries []BatchEntry) ([]*repository.PointEvent, error) {
	if len(entries) == 0 {
		return nil, ErrInvalidInput
	}

	binding, err := s.resolveBinding(ctx, actorID)
	if err != nil {
		return nil, err
	}

	// Validate everything before appending anything.
	events := make([]*repository.PointEvent, 0, len(entries))
	for _, entry := range entries {
		delta, err := normalizeDelta(entry.Kind, entry.Delta)
		if err != nil {
			return nil, err
		}
		events = append(events, &repository.PointEvent{
			MemberID: memberID,
			ActorID:  actorID,
			Kind:     entry.Kind,
			Delta:    delta,
			Reason:   entry.Reason,
			Binding:  binding,
		})
	}

	target, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if target == nil {
		return nil, ErrMemberNotFound
	}

	unlock := s.memberLocks.Lock(memberID)
	defer unlock()

	if binding {
		return events, s.appendBinding(ctx, memberID, events...)
	}

	for _, event := range events {
		event.CreatedAt = s.clock()
		if err := s.eventRepo.Append(ctx, event); err != nil {
			return nil, fmt.Errorf("failed to append event: %w", err)
		}
	}
	return events, nil
}

func (s *ledgerService) RecordInactivity(ctx context.Context, memberID string) (*repository.PointEvent, error) {
	target, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if target == nil {
		return nil, ErrMemberNotFound
	}

	unlock := s.memberLocks.Lock(memberID)
	defer unlock()

	event := &repository.PointEvent{
		MemberID: memberID,
		ActorID:  ActorSystem,
		Kind:     types.KindInactivity,
		Delta:    types.InfractionDeltas[types.KindInactivity],
		Binding:  true,
	}

	if err := s.appendBinding(ctx, memberID, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *ledgerService) TotalPoints(ctx context.Context, memberID string) (int, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return 0, ErrMemberNotFound
	}
	return s.flooredTotal(ctx, memberID)
}

func (s *ledgerService) EventsFor(ctx context.Context, actorID, memberID string) ([]*repository.PointEvent, error) {
	if actorID != memberID {
		if _, err := s.perms.Require(ctx, actorID, types.CapViewAll); err != nil {
			return nil, err
		}
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	return s.eventRepo.FindByMemberID(ctx, memberID)
}

func (s *ledgerService) KindCatalog() []KindInfo {
	kinds := make([]KindInfo, 0, len(types.ValidPointKinds))
	for _, kind := range types.ValidPointKinds {
		info := KindInfo{Kind: kind}
		if delta, ok := types.InfractionDeltas[kind]; ok {
			info.DefaultDelta = delta
			info.Infraction = true
		}
		kinds = append(kinds, info)
	}
	return kinds
}

// ============================================
// Internals
// ============================================

// resolveBinding decides whether the actor appends binding events
// (manage_points) or non-binding suggestions (suggest_points).
func (s *ledgerService) resolveBinding(ctx context.Context, actorID string) (bool, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapManagePoints); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrPermissionDenied) {
		return false, err
	}

	if _, err := s.perms.Require(ctx, actorID, types.CapSuggestPoints); err != nil {
		return false, err
	}
	return false, nil
}

func normalizeDelta(kind string, delta int) (int, error) {
	if !types.IsValidPointKind(kind) {
		return 0, ErrInvalidInput
	}
	if types.IsInfraction(kind) {
		if delta == 0 {
			return types.InfractionDeltas[kind], nil
		}
		if delta > 0 {
			return 0, ErrInvalidDelta
		}
		return delta, nil
	}
	// manual
	if delta == 0 {
		return 0, ErrInvalidDelta
	}
	return delta, nil
}

func (s *ledgerService) flooredTotal(ctx context.Context, memberID string) (int, error) {
	total, err := s.eventRepo.SumBindingByMemberID(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger: %w", err)
	}
	if total < s.minPoints {
		total = s.minPoints
	}
	return total, nil
}

// appendBinding appends binding events under the caller-held member lock
// and re-resolves the member's rank once afterwards. The member lock must
// already be held.
func (s *ledgerService) appendBinding(ctx context.Context, memberID string, events ...*repository.PointEvent) error {
	before, err := s.flooredTotal(ctx, memberID)
	if err != nil {
		return err
	}
	oldRank := s.catalog.Resolve(before).Name

	for _, event := range events {
		if event.CreatedAt.IsZero() {
			event.CreatedAt = s.clock()
		}
		if err := s.eventRepo.Append(ctx, event); err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
	}

	after, err := s.flooredTotal(ctx, memberID)
	if err != nil {
		return err
	}
	newRank := s.catalog.Resolve(after).Name

	s.invalidateCaches(ctx, memberID)

	for _, event := range events {
		if s.notifSvc != nil {
			if err := s.notifSvc.SendPointsRecorded(ctx, memberID, event.Kind, event.Delta, after); err != nil {
				log.Printf("[Ledger] Failed to send points notification: %v", err)
			}
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastPointsRecorded(memberID, event.Kind, event.Delta, after, event.ActorID)
		}
	}

	if newRank != oldRank {
		log.Printf("[Ledger] 🏅 Rank change: member=%s, %s -> %s (points=%d)", memberID, oldRank, newRank, after)
		if s.notifSvc != nil {
			if err := s.notifSvc.SendRankChanged(ctx, memberID, oldRank, newRank, after); err != nil {
				log.Printf("[Ledger] Failed to send rank notification: %v", err)
			}
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastRankChanged(memberID, oldRank, newRank, after)
		}
	}

	return nil
}

func (s *ledgerService) invalidateCaches(ctx context.Context, memberID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx, "leaderboard*"); err != nil {
		log.Printf("[Ledger] Failed to invalidate leaderboard cache: %v", err)
	}
	if err := s.cache.InvalidateCache(ctx, "points:"+memberID); err != nil {
		log.Printf("[Ledger] Failed to invalidate points cache: %v", err)
	}
}
