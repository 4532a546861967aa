package handlers

import (
	"errors"
	"net/http"

	"github.com/craftnest/teamforge-backend/internal/models"
	"github.com/craftnest/teamforge-backend/internal/rank"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	Member       *MemberHandler
	Point        *PointHandler
	Task         *TaskHandler
	Rank         *RankHandler
	Notification *NotificationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, catalog *rank.Catalog) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth, memberService: services.Member},
		Member:       &MemberHandler{memberService: services.Member},
		Point:        &PointHandler{ledgerService: services.Ledger, permissionService: services.Permission},
		Task:         &TaskHandler{taskService: services.Task},
		Rank:         &RankHandler{catalog: catalog, permissionService: services.Permission},
		Notification: &NotificationHandler{notificationService: services.Notification},
	}
}

// ============================================
// Error Mapping
// ============================================

// handleServiceError maps service sentinel errors to HTTP statuses.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrNotAssignee):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrDuplicateMember),
		errors.Is(err, service.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidDelta),
		errors.Is(err, service.ErrInvalidAssignee),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, rank.ErrUnknownRank):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

// ============================================
// Response Mappers
// ============================================

func toMemberResponse(m *repository.Member) models.MemberResponse {
	return models.MemberResponse{
		ID:           m.ID,
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		Status:       m.Status,
		Points:       m.Points,
		Rank:         m.Rank,
		LastActiveAt: m.LastActiveAt,
		CreatedAt:    m.CreatedAt,
	}
}

func toPointEventResponse(e *repository.PointEvent) models.PointEventResponse {
	return models.PointEventResponse{
		ID:        e.ID,
		MemberID:  e.MemberID,
		ActorID:   e.ActorID,
		Kind:      e.Kind,
		Delta:     e.Delta,
		Reason:    e.Reason,
		Binding:   e.Binding,
		CreatedAt: e.CreatedAt,
	}
}

func toTaskResponse(t *repository.Task) models.TaskResponse {
	return models.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status,
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		CompletedBy: t.CompletedBy,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toRankResponse(r rank.Rank) models.RankResponse {
	perms := r.Permissions
	if perms == nil {
		perms = []string{}
	}
	return models.RankResponse{
		Name:        r.Name,
		Level:       r.Level,
		Threshold:   r.Threshold,
		Infinite:    r.Infinite,
		Permissions: perms,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	return models.NotificationResponse{
		ID:        n.ID,
		MemberID:  n.MemberID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}
