package handlers

import (
	"net/http"
	"strconv"

	"github.com/craftnest/teamforge-backend/internal/api/middleware"
	"github.com/craftnest/teamforge-backend/internal/models"
	"github.com/craftnest/teamforge-backend/internal/rank"
	"github.com/craftnest/teamforge-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Rank Handler
// ============================================

type RankHandler struct {
	catalog           *rank.Catalog
	permissionService service.PermissionService
}

// List returns the full rank table, most senior first.
func (h *RankHandler) List(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}

	ranks := h.catalog.Ordered()
	response := make([]models.RankResponse, len(ranks))
	for i, r := range ranks {
		response[i] = toRankResponse(*r)
	}

	c.JSON(http.StatusOK, response)
}

func (h *RankHandler) Get(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}

	r, err := h.catalog.ByName(c.Param("name"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRankResponse(*r))
}

// Resolve answers which rank a hypothetical point total earns.
func (h *RankHandler) Resolve(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}

	points, err := strconv.Atoi(c.Query("points"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "points query parameter must be an integer"})
		return
	}

	c.JSON(http.StatusOK, toRankResponse(*h.catalog.Resolve(points)))
}
