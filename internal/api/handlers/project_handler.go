package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-backend/internal/api/middleware"
	"github.com/taskhive/taskhive-backend/internal/models"
	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/service"
)

// ============================================
// Project Handler
// ============================================

type ProjectHandler struct {
	projectService service.ProjectService
	taskService    service.TaskService
}

func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), actor, &service.CreateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project, nil))
}

func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	response := make([]models.ProjectResponse, len(projects))
	for i, project := range projects {
		stats, err := h.projectService.Stats(c.Request.Context(), project)
		if err != nil {
			log.Printf("[Projects] stats failed for project %s: %v", project.ID, err)
		}
		response[i] = toProjectResponse(project, stats)
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	stats, err := h.projectService.Stats(c.Request.Context(), project)
	if err != nil {
		log.Printf("[Projects] stats failed for project %s: %v", project.ID, err)
	}

	c.JSON(http.StatusOK, toProjectResponse(project, stats))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := &service.UpdateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ClearEnd:    req.ClearEnd,
	}
	if req.Members != nil {
		update.Members = make([]service.MemberSpec, len(req.Members))
		for i, m := range req.Members {
			update.Members[i] = service.MemberSpec{UserID: m.UserID, Role: m.Role}
		}
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, c.Param("id"), update)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project, nil))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		// The project is gone even when file cleanup trailed behind.
		if errors.Is(err, service.ErrStorage) {
			c.JSON(http.StatusOK, gin.H{"warning": "Project deleted but some files could not be removed"})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *ProjectHandler) Stats(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	stats, err := h.projectService.Stats(c.Request.Context(), project)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ProjectHandler) ListTasks(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var (
		tasks []*repository.Task
		err   error
	)
	if status := c.Query("status"); status != "" {
		tasks, err = h.taskService.ListByStatus(c.Request.Context(), actor, c.Param("id"), status)
	} else {
		tasks, err = h.taskService.ListByProject(c.Request.Context(), actor, c.Param("id"))
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// ============================================
// Member endpoints
// ============================================

func (h *ProjectHandler) AddMember(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.AddProjectMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.projectService.AddMember(c.Request.Context(), actor, c.Param("id"), req.UserID, req.Role); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Member added"})
}

func (h *ProjectHandler) ListMembers(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	members, err := h.projectService.ListMembers(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]models.ProjectMemberResponse, len(members))
	for i, member := range members {
		response[i] = models.ProjectMemberResponse{
			ID:        member.ID,
			ProjectID: member.ProjectID,
			UserID:    member.UserID,
			Role:      member.Role,
			JoinedAt:  member.JoinedAt,
		}
		if member.User != nil {
			user := toUserResponse(member.User)
			response[i].User = &user
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.projectService.UpdateMemberRole(c.Request.Context(), actor, c.Param("id"), c.Param("userId"), req.Role); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member role updated"})
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), actor, c.Param("id"), c.Param("userId")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
