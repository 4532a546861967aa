package handlers

import (
	"net/http"

	"github.com/craftnest/teamforge-backend/internal/api/middleware"
	"github.com/craftnest/teamforge-backend/internal/models"
	"github.com/craftnest/teamforge-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Point Handler
// ============================================

type PointHandler struct {
	ledgerService     service.LedgerService
	permissionService service.PermissionService
}

// Record appends one point event against the member in the path.
func (h *PointHandler) Record(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.RecordPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	event, err := h.ledgerService.RecordEvent(c.Request.Context(), actorID, c.Param("id"), req.Kind, req.Delta, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPointEventResponse(event))
}

// RecordBatch appends several events against one member in one call.
func (h *PointHandler) RecordBatch(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.RecordBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	entries := make([]service.BatchEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = service.BatchEntry{Kind: e.Kind, Delta: e.Delta, Reason: e.Reason}
	}

	events, err := h.ledgerService.RecordBatch(c.Request.Context(), actorID, c.Param("id"), entries)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.PointEventResponse, len(events))
	for i, e := range events {
		response[i] = toPointEventResponse(e)
	}

	c.JSON(http.StatusCreated, response)
}

// History lists a member's point events, newest first.
func (h *PointHandler) History(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	events, err := h.ledgerService.EventsFor(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.PointEventResponse, len(events))
	for i, e := range events {
		response[i] = toPointEventResponse(e)
	}

	c.JSON(http.StatusOK, response)
}

// Total returns the member's floored binding total.
func (h *PointHandler) Total(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}

	memberID := c.Param("id")
	total, err := h.ledgerService.TotalPoints(c.Request.Context(), memberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	rankName, err := h.permissionService.ActorRank(c.Request.Context(), memberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PointTotalResponse{
		MemberID: memberID,
		Points:   total,
		Rank:     rankName,
	})
}

// Kinds lists the recognized point event kinds.
func (h *PointHandler) Kinds(c *gin.Context) {
	kinds := h.ledgerService.KindCatalog()

	response := make([]models.PointKindResponse, len(kinds))
	for i, k := range kinds {
		response[i] = models.PointKindResponse{
			Kind:         k.Kind,
			DefaultDelta: k.DefaultDelta,
			Infraction:   k.Infraction,
		}
	}

	c.JSON(http.StatusOK, response)
}
