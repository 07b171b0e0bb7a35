package service

import (
	"context"
	"time"

	"github.com/taskhive/taskhive-backend/internal/db"
	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/storage"
	"github.com/taskhive/taskhive-backend/internal/types"
)

// ============================================
// Task Service
// ============================================

type CreateTaskRequest struct {
	ProjectID   string
	Title       string
	Description *string
	Status      string
	Priority    string
	AssigneeID  *string
	DueDate     *time.Time
}

type UpdateTaskRequest struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssigneeID    *string
	ClearAssignee bool
	DueDate       *time.Time
	ClearDue      bool
}

type TaskService interface {
	Create(ctx context.Context, actor *types.Actor, req *CreateTaskRequest) (*repository.Task, error)
	GetByID(ctx context.Context, actor *types.Actor, id string) (*repository.Task, error)
	ListByProject(ctx context.Context, actor *types.Actor, projectID string) ([]*repository.Task, error)
	ListByStatus(ctx context.Context, actor *types.Actor, projectID, status string) ([]*repository.Task, error)
	ListMine(ctx context.Context, actor *types.Actor) ([]*repository.Task, error)
	Update(ctx context.Context, actor *types.Actor, id string, req *UpdateTaskRequest) (*repository.Task, error)
	ApplyTransition(ctx context.Context, actor *types.Actor, id, newStatus string) (*repository.Task, error)
	Delete(ctx context.Context, actor *types.Actor, id string) error
}

type taskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	access      AccessService
	cache       *db.RedisDB
	cleaner     *attachmentCleaner
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	commentRepo repository.CommentRepository,
	attachmentRepo repository.AttachmentRepository,
	userRepo repository.UserRepository,
	access AccessService,
	cache *db.RedisDB,
	files storage.FileStore,
) TaskService {
	return &taskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		access:      access,
		cache:       cache,
		cleaner: &attachmentCleaner{
			commentRepo:    commentRepo,
			attachmentRepo: attachmentRepo,
			files:          files,
		},
	}
}

func (s *taskService) Create(ctx context.Context, actor *types.Actor, req *CreateTaskRequest) (*repository.Task, error) {
	if !actor.HasPermission(types.PermCreateTask) {
		return nil, ErrForbidden
	}
	// Tasks never float free of a project.
	if req.ProjectID == "" {
		return nil, fieldErr("project_id", "is required")
	}
	if req.Title == "" {
		return nil, fieldErr("title", "is required")
	}

	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanViewProject(ctx, actor, project) {
		return nil, ErrForbidden
	}

	status := types.NormalizeTaskStatus(req.Status)
	if status == "" {
		status = types.StatusTodo
	}
	if !types.IsValidTaskStatus(status) {
		return nil, fieldErr("status", "unknown status")
	}

	priority := req.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !types.IsValidPriority(priority) {
		return nil, fieldErr("priority", "unknown priority")
	}

	if req.AssigneeID != nil {
		if user, _ := s.userRepo.FindByID(ctx, *req.AssigneeID); user == nil {
			return nil, fieldErr("assignee_id", "unknown user")
		}
	}

	task := &repository.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		CreatorID:   actor.ID,
		DueDate:     req.DueDate,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, task.ProjectID)
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, actor *types.Actor, id string) (*repository.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanViewTask(ctx, actor, task) {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *taskService) ListByProject(ctx context.Context, actor *types.Actor, projectID string) ([]*repository.Task, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanViewProject(ctx, actor, project) {
		return nil, ErrForbidden
	}
	return s.taskRepo.FindByProjectID(ctx, projectID)
}

func (s *taskService) ListByStatus(ctx context.Context, actor *types.Actor, projectID, status string) ([]*repository.Task, error) {
	normalized := types.NormalizeTaskStatus(status)
	if !types.IsValidTaskStatus(normalized) {
		return nil, fieldErr("status", "unknown status")
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanViewProject(ctx, actor, project) {
		return nil, ErrForbidden
	}
	return s.taskRepo.FindByStatus(ctx, projectID, normalized)
}

func (s *taskService) ListMine(ctx context.Context, actor *types.Actor) ([]*repository.Task, error) {
	return s.taskRepo.FindByAssignee(ctx, actor.ID)
}

func (s *taskService) Update(ctx context.Context, actor *types.Actor, id string, req *UpdateTaskRequest) (*repository.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanMutateTask(ctx, actor, task, ActionUpdate) {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fieldErr("title", "is required")
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		status := types.NormalizeTaskStatus(*req.Status)
		if !types.IsValidTaskStatus(status) {
			return nil, fieldErr("status", "unknown status")
		}
		task.Status = status
	}
	if req.Priority != nil {
		if !types.IsValidPriority(*req.Priority) {
			return nil, fieldErr("priority", "unknown priority")
		}
		task.Priority = *req.Priority
	}
	if req.ClearAssignee {
		task.AssigneeID = nil
		task.Assignee = nil
	} else if req.AssigneeID != nil {
		if user, _ := s.userRepo.FindByID(ctx, *req.AssigneeID); user == nil {
			return nil, fieldErr("assignee_id", "unknown user")
		}
		task.AssigneeID = req.AssigneeID
	}
	if req.ClearDue {
		task.DueDate = nil
	} else if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, task.ProjectID)

	// Re-read so the assignee join reflects the new row.
	return s.taskRepo.FindByID(ctx, task.ID)
}

// ApplyTransition is the status-only path the board uses. The set of valid
// statuses is flat, so any valid status may follow any other; a transition to
// the current status is a no-op that still succeeds.
func (s *taskService) ApplyTransition(ctx context.Context, actor *types.Actor, id, newStatus string) (*repository.Task, error) {
	status := types.NormalizeTaskStatus(newStatus)
	if !types.IsValidTaskStatus(status) {
		return nil, fieldErr("status", "unknown status")
	}

	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanTransitionStatus(ctx, actor, task) {
		return nil, ErrForbidden
	}

	if task.Status == status {
		return task, nil
	}

	task.Status = status
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, task.ProjectID)
	return task, nil
}

// Delete removes a task, its comments, and every attachment either owns.
// Attachment rows have no FK to cascade on, so they go explicitly, files
// first; a failed unlink never blocks the delete but comes back wrapped in
// ErrStorage once the rows are gone.
func (s *taskService) Delete(ctx context.Context, actor *types.Actor, id string) error {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}
	if !s.access.CanMutateTask(ctx, actor, task, ActionDelete) {
		return ErrForbidden
	}

	cleanupFailed, err := s.cleaner.removeTask(ctx, task.ID)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateStats(ctx, task.ProjectID)
	if cleanupFailed {
		return errFilesNotRemoved()
	}
	return nil
}

func (s *taskService) invalidateStats(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.InvalidateCache(ctx, "project_stats:"+projectID)
}
