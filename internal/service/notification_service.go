package service

import (
	"context"
	"fmt"

	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/socket"
)

// ============================================
// Notification Service
// ============================================

// NotificationService exposes a member's notification inbox.
type NotificationService interface {
	List(ctx context.Context, memberID string, unreadOnly bool) ([]*repository.Notification, error)
	Counts(ctx context.Context, memberID string) (total int, unread int, err error)
	MarkAsRead(ctx context.Context, memberID, notificationID string) error
	MarkAllAsRead(ctx context.Context, memberID string) error
	Delete(ctx context.Context, memberID, notificationID string) error
	DeleteAll(ctx context.Context, memberID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

func NewNotificationService(notificationRepo repository.NotificationRepository, broadcaster *socket.Broadcaster) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		broadcaster:      broadcaster,
	}
}

func (s *notificationService) List(ctx context.Context, memberID string, unreadOnly bool) ([]*repository.Notification, error) {
	return s.notificationRepo.FindByMemberID(ctx, memberID, unreadOnly)
}

func (s *notificationService) Counts(ctx context.Context, memberID string) (int, int, error) {
	return s.notificationRepo.CountByMemberID(ctx, memberID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, memberID, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("failed to find notification: %w", err)
	}
	if notification == nil || notification.MemberID != memberID {
		return ErrNotFound
	}

	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	s.pushCounts(ctx, memberID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, memberID string) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, memberID); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	s.pushCounts(ctx, memberID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, memberID, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("failed to find notification: %w", err)
	}
	if notification == nil || notification.MemberID != memberID {
		return ErrNotFound
	}

	if err := s.notificationRepo.Delete(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	s.pushCounts(ctx, memberID)
	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, memberID string) error {
	if err := s.notificationRepo.DeleteAll(ctx, memberID); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	s.pushCounts(ctx, memberID)
	return nil
}

func (s *notificationService) pushCounts(ctx context.Context, memberID string) {
	if s.broadcaster == nil {
		return
	}
	total, unread, err := s.notificationRepo.CountByMemberID(ctx, memberID)
	if err != nil {
		return
	}
	s.broadcaster.SendNotificationCount(memberID, total, unread)
}
