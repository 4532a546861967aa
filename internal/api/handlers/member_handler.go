package handlers

import (
	"net/http"

	"github.com/craftnest/teamforge-backend/internal/api/middleware"
	"github.com/craftnest/teamforge-backend/internal/models"
	"github.com/craftnest/teamforge-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Member Handler
// ============================================

type MemberHandler struct {
	memberService service.MemberService
}

func (h *MemberHandler) List(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	members, err := h.memberService.List(c.Request.Context(), memberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) Get(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}

	member, err := h.memberService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Pending(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	members, err := h.memberService.PendingMembers(c.Request.Context(), memberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) Approve(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	member, err := h.memberService.Approve(c.Request.Context(), memberID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Suspend(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	member, err := h.memberService.Suspend(c.Request.Context(), memberID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Reinstate(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	member, err := h.memberService.Reinstate(c.Request.Context(), memberID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Remove(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	if err := h.memberService.Remove(c.Request.Context(), memberID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *MemberHandler) Leaderboard(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	members, err := h.memberService.Leaderboard(c.Request.Context(), memberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}
