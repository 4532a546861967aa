package service

import (
	"context"
	"fmt"

	"github.com/craftnest/teamforge-backend/internal/rank"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/types"
)

// ============================================
// Permission Service
// ============================================

// PermissionService answers capability questions against the rank
// catalog. Grants are flat: a rank holds exactly the capabilities listed
// on it, nothing is inherited from ranks above or below.
type PermissionService interface {
	// Can reports whether the named rank holds the capability.
	Can(rankName, capability string) bool

	// ActorRank resolves a member's current rank from their ledger total.
	ActorRank(ctx context.Context, memberID string) (string, error)

	// Require resolves the actor's rank and checks the capability,
	// returning the rank name on success. Suspended and pending members
	// hold no capabilities.
	Require(ctx context.Context, actorID, capability string) (string, error)

	// PermissionsOf lists the capabilities of the named rank.
	PermissionsOf(rankName string) ([]string, error)
}

type permissionService struct {
	catalog    *rank.Catalog
	memberRepo repository.MemberRepository
	eventRepo  repository.PointEventRepository
	minPoints  int
}

func NewPermissionService(
	catalog *rank.Catalog,
	memberRepo repository.MemberRepository,
	eventRepo repository.PointEventRepository,
	minPoints int,
) PermissionService {
	return &permissionService{
		catalog:    catalog,
		memberRepo: memberRepo,
		eventRepo:  eventRepo,
		minPoints:  minPoints,
	}
}

func (s *permissionService) Can(rankName, capability string) bool {
	return s.catalog.Has(rankName, capability)
}

func (s *permissionService) ActorRank(ctx context.Context, memberID string) (string, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return "", fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return "", ErrMemberNotFound
	}

	total, err := s.eventRepo.SumBindingByMemberID(ctx, memberID)
	if err != nil {
		return "", fmt.Errorf("failed to sum ledger: %w", err)
	}
	if total < s.minPoints {
		total = s.minPoints
	}

	return s.catalog.Resolve(total).Name, nil
}

func (s *permissionService) Require(ctx context.Context, actorID, capability string) (string, error) {
	member, err := s.memberRepo.FindByID(ctx, actorID)
	if err != nil {
		return "", fmt.Errorf("failed to find actor: %w", err)
	}
	if member == nil {
		return "", ErrMemberNotFound
	}
	if member.Status != types.MemberActive {
		return "", ErrPermissionDenied
	}

	rankName, err := s.ActorRank(ctx, actorID)
	if err != nil {
		return "", err
	}
	if !s.Can(rankName, capability) {
		return "", ErrPermissionDenied
	}
	return rankName, nil
}

func (s *permissionService) PermissionsOf(rankName string) ([]string, error) {
	return s.catalog.PermissionsOf(rankName)
}
