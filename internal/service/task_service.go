package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/craftnest/teamforge-backend/internal/notification"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/socket"
	"github.com/craftnest/teamforge-backend/internal/types"
)

// ============================================
// Task Service
// ============================================

// CreateTaskInput carries the fields for a new task.
type CreateTaskInput struct {
	Title       string
	Description *string
	Category    string
	Priority    string
	AssigneeID  string
}

// TaskService is the task registry. Creation needs manage_story; the
// pending -> completed transition is one-way and only moves through
// Complete.
type TaskService interface {
	Create(ctx context.Context, actorID string, input CreateTaskInput) (*repository.Task, error)

	// Complete marks a task done. Only the assignee may complete it
	// ("all" tasks are completable by any active member); manage_users
	// and manage_story holders may complete on someone's behalf.
	Complete(ctx context.Context, actorID, taskID string) (*repository.Task, error)

	Get(ctx context.Context, taskID string) (*repository.Task, error)
	List(ctx context.Context, actorID string) ([]*repository.Task, error)

	// TasksFor lists tasks visible to a member: their direct assignments
	// plus every "all" task, newest first.
	TasksFor(ctx context.Context, memberID string) ([]*repository.Task, error)
}

type taskService struct {
	taskRepo    repository.TaskRepository
	memberRepo  repository.MemberRepository
	perms       PermissionService
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
	clock       func() time.Time

	taskLocks *keyedMutex
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	memberRepo repository.MemberRepository,
	perms PermissionService,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
	clock func() time.Time,
) TaskService {
	if clock == nil {
		clock = time.Now
	}
	return &taskService{
		taskRepo:    taskRepo,
		memberRepo:  memberRepo,
		perms:       perms,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
		clock:       clock,
		taskLocks:   newKeyedMutex(),
	}
}

func (s *taskService) Create(ctx context.Context, actorID string, input CreateTaskInput) (*repository.Task, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapManageStory); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || !types.IsValidCategory(input.Category) {
		return nil, ErrInvalidInput
	}
	if input.Priority == "" {
		input.Priority = types.PriorityMedium
	}
	if !types.IsValidPriority(input.Priority) {
		return nil, ErrInvalidInput
	}

	if input.AssigneeID != types.AssigneeAll {
		assignee, err := s.memberRepo.FindByID(ctx, input.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("failed to find assignee: %w", err)
		}
		if assignee == nil || assignee.Status != types.MemberActive {
			return nil, ErrInvalidAssignee
		}
	}

	task := &repository.Task{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      types.TaskPending,
		AssigneeID:  input.AssigneeID,
		CreatedBy:   actorID,
		CreatedAt:   s.clock(),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTaskCreated(taskPayload(task), actorID)
	}
	if task.AssigneeID != types.AssigneeAll {
		if s.notifSvc != nil {
			if err := s.notifSvc.SendTaskAssigned(ctx, task.AssigneeID, task.Title, task.ID); err != nil {
				log.Printf("[Task] Failed to send assignment notification: %v", err)
			}
		}
		if s.broadcaster != nil {
			s.broadcaster.SendTaskAssigned(task.AssigneeID, taskPayload(task), actorID)
		}
	}

	log.Printf("[Task] 📋 Created: title=%q, category=%s, assignee=%s, by=%s",
		task.Title, task.Category, task.AssigneeID, actorID)
	return task, nil
}

func (s *taskService) Complete(ctx context.Context, actorID, taskID string) (*repository.Task, error) {
	actor, err := s.memberRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find actor: %w", err)
	}
	if actor == nil {
		return nil, ErrMemberNotFound
	}
	if actor.Status != types.MemberActive {
		return nil, ErrPermissionDenied
	}

	unlock := s.taskLocks.Lock(taskID)
	defer unlock()

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.Status == types.TaskCompleted {
		return nil, ErrAlreadyCompleted
	}

	if task.AssigneeID != types.AssigneeAll && task.AssigneeID != actorID {
		if !s.canCompleteForOthers(ctx, actorID) {
			return nil, ErrNotAssignee
		}
	}

	now := s.clock()
	task.Status = types.TaskCompleted
	task.CompletedBy = &actorID
	task.CompletedAt = &now

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if s.notifSvc != nil && task.CreatedBy != actorID {
		if err := s.notifSvc.SendTaskCompleted(ctx, task.CreatedBy, actor.DisplayName, task.Title, task.ID); err != nil {
			log.Printf("[Task] Failed to send completion notification: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastTaskCompleted(taskPayload(task), actorID)
	}

	log.Printf("[Task] ✅ Completed: title=%q, by=%s", task.Title, actorID)
	return task, nil
}

func (s *taskService) Get(ctx context.Context, taskID string) (*repository.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, actorID string) ([]*repository.Task, error) {
	if _, err := s.perms.Require(ctx, actorID, types.CapViewTeam); err != nil {
		return nil, err
	}
	return s.taskRepo.FindAll(ctx)
}

func (s *taskService) TasksFor(ctx context.Context, memberID string) ([]*repository.Task, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return s.taskRepo.FindForAssignee(ctx, memberID)
}

// ============================================
// Internals
// ============================================

func (s *taskService) canCompleteForOthers(ctx context.Context, actorID string) bool {
	rankName, err := s.perms.ActorRank(ctx, actorID)
	if err != nil {
		return false
	}
	return s.perms.Can(rankName, types.CapManageUsers) || s.perms.Can(rankName, types.CapManageStory)
}

func taskPayload(task *repository.Task) map[string]interface{} {
	payload := map[string]interface{}{
		"id":         task.ID,
		"title":      task.Title,
		"category":   task.Category,
		"priority":   task.Priority,
		"status":     task.Status,
		"assigneeId": task.AssigneeID,
		"createdBy":  task.CreatedBy,
	}
	if task.CompletedBy != nil {
		payload["completedBy"] = *task.CompletedBy
	}
	if task.CompletedAt != nil {
		payload["completedAt"] = *task.CompletedAt
	}
	return payload
}
