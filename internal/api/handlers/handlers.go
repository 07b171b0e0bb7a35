package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-backend/internal/config"
	"github.com/taskhive/taskhive-backend/internal/models"
	"github.com/taskhive/taskhive-backend/internal/progress"
	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth    *AuthHandler
	Project *ProjectHandler
	Task    *TaskHandler
	Comment *CommentHandler
}

// NewHandlers creates all handlers
func NewHandlers(cfg *config.Config, services *service.Services) *Handlers {
	return &Handlers{
		Auth:    &AuthHandler{authService: services.Auth},
		Project: &ProjectHandler{projectService: services.Project, taskService: services.Task},
		Task:    &TaskHandler{taskService: services.Task},
		Comment: &CommentHandler{commentService: services.Comment, maxUploadBytes: cfg.MaxUploadBytes},
	}
}

// respondServiceError maps service sentinels onto HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	var fieldErr *service.FieldError
	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toProjectResponse(p *repository.Project, stats *service.ProjectStats) models.ProjectResponse {
	response := models.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatorID:   p.CreatorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if stats != nil {
		response.Progress = &models.ProgressResponse{
			Total:      stats.Progress.Total,
			Completed:  stats.Progress.Completed,
			Percentage: stats.Progress.Percentage,
		}
		overdue := stats.IsOverdue
		response.IsOverdue = &overdue
		response.DaysRemaining = stats.DaysRemaining
	}
	return response
}

func toTaskResponse(t *repository.Task) models.TaskResponse {
	if t == nil {
		return models.TaskResponse{}
	}

	now := time.Now()
	response := models.TaskResponse{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		AssigneeID:    t.AssigneeID,
		CreatorID:     t.CreatorID,
		DueDate:       t.DueDate,
		IsOverdue:     progress.TaskOverdue(t, now),
		DaysRemaining: progress.TaskDaysRemaining(t, now),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.Assignee != nil {
		assignee := toUserResponse(t.Assignee)
		response.Assignee = &assignee
	}
	return response
}

func toTaskListResponse(tasks []*repository.Task) models.TaskListResponse {
	response := models.TaskListResponse{Tasks: make([]models.TaskResponse, len(tasks))}
	for i, t := range tasks {
		response.Tasks[i] = toTaskResponse(t)
	}
	return response
}

func toAttachmentResponse(a *repository.Attachment) models.AttachmentResponse {
	return models.AttachmentResponse{
		ID:           a.ID,
		OwnerKind:    a.OwnerKind,
		OwnerID:      a.OwnerID,
		OriginalName: a.OriginalName,
		FileSize:     a.FileSize,
		MimeType:     a.MimeType,
		UploaderID:   a.UploaderID,
		CreatedAt:    a.CreatedAt,
	}
}

func toCommentResponse(cm *repository.Comment) models.CommentResponse {
	response := models.CommentResponse{
		ID:          cm.ID,
		TaskID:      cm.TaskID,
		AuthorID:    cm.AuthorID,
		Content:     cm.Content,
		Attachments: make([]models.AttachmentResponse, len(cm.Attachments)),
		CreatedAt:   cm.CreatedAt,
		UpdatedAt:   cm.UpdatedAt,
	}
	if cm.Author != nil {
		author := toUserResponse(cm.Author)
		response.Author = &author
	}
	for i, a := range cm.Attachments {
		response.Attachments[i] = toAttachmentResponse(a)
	}
	return response
}
