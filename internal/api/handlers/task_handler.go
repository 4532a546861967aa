package handlers

import (
	"net/http"

	"github.com/craftnest/teamforge-backend/internal/api/middleware"
	"github.com/craftnest/teamforge-backend/internal/models"
	"github.com/craftnest/teamforge-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Task Handler
// ============================================

type TaskHandler struct {
	taskService service.TaskService
}

func (h *TaskHandler) Create(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), actorID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *TaskHandler) List(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.TaskResponse, len(tasks))
	for i, t := range tasks {
		response[i] = toTaskResponse(t)
	}

	c.JSON(http.StatusOK, response)
}

func (h *TaskHandler) Get(c *gin.Context) {
	if _, ok := middleware.RequireMemberID(c); !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Complete marks a task done on behalf of the authenticated member.
func (h *TaskHandler) Complete(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Complete(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Mine lists the authenticated member's tasks, including "all" tasks.
func (h *TaskHandler) Mine(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.TasksFor(c.Request.Context(), actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.TaskResponse, len(tasks))
	for i, t := range tasks {
		response[i] = toTaskResponse(t)
	}

	c.JSON(http.StatusOK, response)
}
