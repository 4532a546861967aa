package notification

import (
	"context"
	"fmt"

	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/socket"
)

// Notification types
const (
	TypePointsRecorded  = "POINTS_RECORDED"
	TypePointsSuggested = "POINTS_SUGGESTED"
	TypeRankChanged     = "RANK_CHANGED"
	TypeTaskAssigned    = "TASK_ASSIGNED"
	TypeTaskCompleted   = "TASK_COMPLETED"
	TypeMemberApproved  = "MEMBER_APPROVED"
	TypeMemberSuspended = "MEMBER_SUSPENDED"
)

// Service handles sending notifications
type Service struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{
		notificationRepo: notificationRepo,
	}
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// ============================================
// WebSocket Helper
// ============================================

// sendWebSocketNotification sends real-time notification via WebSocket
func (s *Service) sendWebSocketNotification(notification *repository.Notification) {
	if s.broadcaster == nil || notification == nil {
		return
	}

	s.broadcaster.SendNotification(notification.MemberID, map[string]interface{}{
		"id":        notification.ID,
		"type":      notification.Type,
		"title":     notification.Title,
		"message":   notification.Message,
		"data":      notification.Data,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	})
}

func (s *Service) deliver(ctx context.Context, notification *repository.Notification) error {
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}
	s.sendWebSocketNotification(notification)
	return nil
}

// ============================================
// Ledger Notifications
// ============================================

// SendPointsRecorded notifies a member that a binding ledger event was
// appended against them.
func (s *Service) SendPointsRecorded(ctx context.Context, memberID, kind string, delta, total int) error {
	if memberID == "" {
		return nil
	}

	verb := "earned"
	if delta < 0 {
		verb = "lost"
	}
	amount := delta
	if amount < 0 {
		amount = -amount
	}

	return s.deliver(ctx, &repository.Notification{
		MemberID: memberID,
		Type:     TypePointsRecorded,
		Title:    "Points Recorded",
		Message:  fmt.Sprintf("You %s %d points (%s). New total: %d", verb, amount, kind, total),
		Read:     false,
		Data: map[string]interface{}{
			"kind":   kind,
			"delta":  delta,
			"total":  total,
			"action": "view_points",
		},
	})
}

// SendPointsSuggested notifies a member that a non-binding suggestion
// was recorded against them.
func (s *Service) SendPointsSuggested(ctx context.Context, memberID, kind string, delta int) error {
	if memberID == "" {
		return nil
	}

	return s.deliver(ctx, &repository.Notification{
		MemberID: memberID,
		Type:     TypePointsSuggested,
		Title:    "Points Suggested",
		Message:  fmt.Sprintf("A %+d point change (%s) was suggested for you", delta, kind),
		Read:     false,
		Data: map[string]interface{}{
			"kind":   kind,
			"delta":  delta,
			"action": "view_points",
		},
	})
}

// SendRankChanged notifies a member that their resolved rank moved.
func (s *Service) SendRankChanged(ctx context.Context, memberID, oldRank, newRank string, points int) error {
	if memberID == "" {
		return nil
	}

	return s.deliver(ctx, &repository.Notification{
		MemberID: memberID,
		Type:     TypeRankChanged,
		Title:    "Rank Changed",
		Message:  fmt.Sprintf("Your rank changed from %s to %s (%d points)", oldRank, newRank, points),
		Read:     false,
		Data: map[string]interface{}{
			"oldRank": oldRank,
			"newRank": newRank,
			"points":  points,
			"action":  "view_profile",
		},
	})
}

// ============================================
// Task Notifications
// ============================================

// SendTaskAssigned sends a notification when a task is assigned
func (s *Service) SendTaskAssigned(ctx context.Context, memberID, taskTitle, taskID string) error {
	if memberID == "" {
		return nil
	}

	return s.deliver(ctx, &repository.Notification{
		MemberID: memberID,
		Type:     TypeTaskAssigned,
		Title:    "Task Assigned",
		Message:  fmt.Sprintf("You have been assigned to task: %s", taskTitle),
		Read:     false,
		Data: map[string]interface{}{
			"taskId": taskID,
			"action": "view_task",
		},
	})
}

// SendTaskAssignedToMembers fans a task assignment out to several members
func (s *Service) SendTaskAssignedToMembers(ctx context.Context, memberIDs []string, excludeMemberID, taskTitle, taskID string) error {
	var errs []error

	for _, memberID := range memberIDs {
		if memberID == "" || memberID == excludeMemberID {
			continue
		}
		if err := s.SendTaskAssigned(ctx, memberID, taskTitle, taskID); err != nil {
			errs = append(errs, fmt.Errorf("failed to notify member %s: %w", memberID, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors sending task assigned notifications: %v", errs)
	}
	return nil
}

// SendTaskCompleted notifies the task creator that their task was closed
func (s *Service) SendTaskCompleted(ctx context.Context, memberID, completedByName, taskTitle, taskID string) error {
	if memberID == "" {
		return nil
	}

	return s.deliver(ctx, &repository.Notification{
		MemberID: memberID,
		Type:     TypeTaskCompleted,
		Title:    "Task Completed",
		Message:  fmt.Sprintf("%s completed task: %s", completedByName, taskTitle),
		Read:     false,
		Data: map[string]interface{}{
			"taskId":      taskID,
			"completedBy": completedByName,
			"action":      "view_task",
		},
	})
}

// ============================================
// Member Lifecycle Notifications
// ============================================

// SendMemberApproved notifies a member that their registration was approved
func (s *Service) SendMemberApproved(ctx context.Context, memberID, rankName string) error {
	if memberID == "" {
		return nil
	}

	return s.deliver(ctx, &repository.Notification{
		MemberID: memberID,
		Type:     TypeMemberApproved,
		Title:    "Welcome to the Team",
		Message:  fmt.Sprintf("Your registration has been approved. You start as %s.", rankName),
		Read:     false,
		Data: map[string]interface{}{
			"rank":   rankName,
			"action": "view_profile",
		},
	})
}

// SendMemberSuspended notifies a member that their account was suspended
func (s *Service) SendMemberSuspended(ctx context.Context, memberID string) error {
	if memberID == "" {
		return nil
	}

	return s.deliver(ctx, &repository.Notification{
		MemberID: memberID,
		Type:     TypeMemberSuspended,
		Title:    "Account Suspended",
		Message:  "Your account has been suspended. Contact a team admin for details.",
		Read:     false,
	})
}

// ============================================
// Batch Notifications
// ============================================

// SendBatchNotifications sends the same notification to multiple members
func (s *Service) SendBatchNotifications(ctx context.Context, memberIDs []string, excludeMemberID, notificationType, title, message string, data map[string]interface{}) error {
	var errs []error

	for _, memberID := range memberIDs {
		if memberID == "" || memberID == excludeMemberID {
			continue
		}

		notification := &repository.Notification{
			MemberID: memberID,
			Type:     notificationType,
			Title:    title,
			Message:  message,
			Read:     false,
			Data:     data,
		}

		if err := s.deliver(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("failed to notify member %s: %w", memberID, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors sending batch notifications: %v", errs)
	}
	return nil
}
