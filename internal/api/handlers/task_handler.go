package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-backend/internal/api/middleware"
	"github.com/taskhive/taskhive-backend/internal/models"
	"github.com/taskhive/taskhive-backend/internal/service"
)

// ============================================
// Task Handler
// ============================================

type TaskHandler struct {
	taskService service.TaskService
}

func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), actor, &service.CreateTaskRequest{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *TaskHandler) GetByID(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListMine(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), actor, c.Param("id"), &service.UpdateTaskRequest{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
		ClearDue:      req.ClearDue,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Transition handles the board's status-only move. The reply is the full
// authoritative task list for the project; clients that applied the move
// speculatively replace their local state with it wholesale.
func (h *TaskHandler) Transition(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.TransitionTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.ApplyTransition(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tasks, err := h.taskService.ListByProject(c.Request.Context(), actor, task.ProjectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Delete removes a task and, like Transition, returns the surviving project
// task list so board clients can resync in one round trip.
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), actor, task.ID); err != nil {
		// Rows are gone even when file cleanup trailed behind; the board still
		// needs the surviving list.
		if !errors.Is(err, service.ErrStorage) {
			respondServiceError(c, err)
			return
		}
		log.Printf("[Tasks] delete of %s left files behind: %v", task.ID, err)
	}

	tasks, err := h.taskService.ListByProject(c.Request.Context(), actor, task.ProjectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskListResponse(tasks))
}
