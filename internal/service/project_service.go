package service

import (
	"context"
	"log"
	"time"

	"github.com/taskhive/taskhive-backend/internal/db"
	"github.com/taskhive/taskhive-backend/internal/progress"
	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/storage"
	"github.com/taskhive/taskhive-backend/internal/types"
)

// ============================================
// Project Service
// ============================================

const statsCacheTTL = 5 * time.Minute

// ProjectStats bundles the derived fields a project response carries.
type ProjectStats struct {
	Progress      progress.Summary `json:"progress"`
	IsOverdue     bool             `json:"isOverdue"`
	DaysRemaining *int             `json:"daysRemaining"`
}

// StatsFor derives project stats from an already-computed summary, for
// callers that hold a loaded task collection.
func StatsFor(project *repository.Project, sum progress.Summary, now time.Time) *ProjectStats {
	return &ProjectStats{
		Progress:      sum,
		IsOverdue:     progress.ProjectOverdue(project, now),
		DaysRemaining: progress.ProjectDaysRemaining(project, now),
	}
}

type CreateProjectRequest struct {
	Name        string
	Description *string
	Status      string
	StartDate   time.Time
	EndDate     *time.Time
}

type UpdateProjectRequest struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
	ClearEnd    bool
	// Members, when non-nil, replaces the roster in the same transaction as
	// the project row update.
	Members []MemberSpec
}

type MemberSpec struct {
	UserID string
	Role   string
}

type ProjectService interface {
	Create(ctx context.Context, actor *types.Actor, req *CreateProjectRequest) (*repository.Project, error)
	GetByID(ctx context.Context, actor *types.Actor, id string) (*repository.Project, error)
	List(ctx context.Context, actor *types.Actor) ([]*repository.Project, error)
	Update(ctx context.Context, actor *types.Actor, id string, req *UpdateProjectRequest) (*repository.Project, error)
	Delete(ctx context.Context, actor *types.Actor, id string) error

	Stats(ctx context.Context, project *repository.Project) (*ProjectStats, error)

	AddMember(ctx context.Context, actor *types.Actor, projectID, userID, role string) error
	ListMembers(ctx context.Context, actor *types.Actor, projectID string) ([]*repository.ProjectMember, error)
	UpdateMemberRole(ctx context.Context, actor *types.Actor, projectID, userID, role string) error
	RemoveMember(ctx context.Context, actor *types.Actor, projectID, userID string) error
}

type projectService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	access      AccessService
	cache       *db.RedisDB
	cleaner     *attachmentCleaner
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	commentRepo repository.CommentRepository,
	attachmentRepo repository.AttachmentRepository,
	userRepo repository.UserRepository,
	access AccessService,
	cache *db.RedisDB,
	files storage.FileStore,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
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

func (s *projectService) Create(ctx context.Context, actor *types.Actor, req *CreateProjectRequest) (*repository.Project, error) {
	if !actor.HasPermission(types.PermCreateProject) {
		return nil, ErrForbidden
	}
	if req.Name == "" {
		return nil, fieldErr("name", "is required")
	}

	status := types.NormalizeProjectStatus(req.Status)
	if status == "" {
		status = types.ProjectPlanning
	}
	if !types.IsValidProjectStatus(status) {
		return nil, fieldErr("status", "unknown status")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, fieldErr("end_date", "must be on or after start_date")
	}

	project := &repository.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatorID:   actor.ID,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	// Creator always holds a membership row.
	member := &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    actor.ID,
		Role:      types.MemberRoleManager,
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, actor *types.Actor, id string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanViewProject(ctx, actor, project) {
		return nil, ErrForbidden
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context, actor *types.Actor) ([]*repository.Project, error) {
	return s.access.VisibleProjects(ctx, actor)
}

func (s *projectService) Update(ctx context.Context, actor *types.Actor, id string, req *UpdateProjectRequest) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if !s.access.CanMutateProject(ctx, actor, project, ActionUpdate) {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fieldErr("name", "is required")
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Status != nil {
		status := types.NormalizeProjectStatus(*req.Status)
		if !types.IsValidProjectStatus(status) {
			return nil, fieldErr("status", "unknown status")
		}
		project.Status = status
	}
	if req.StartDate != nil {
		project.StartDate = *req.StartDate
	}
	if req.ClearEnd {
		project.EndDate = nil
	} else if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if project.EndDate != nil && project.EndDate.Before(project.StartDate) {
		return nil, fieldErr("end_date", "must be on or after start_date")
	}

	if req.Members == nil {
		if err := s.projectRepo.Update(ctx, project); err != nil {
			return nil, err
		}
		return project, nil
	}

	// Roster sync rides in the same transaction as the row update. The
	// creator stays on the roster no matter what the request says.
	members := make([]*repository.ProjectMember, 0, len(req.Members)+1)
	creatorListed := false
	for _, spec := range req.Members {
		if !types.IsValidMemberRole(spec.Role) {
			return nil, fieldErr("members", "unknown member role")
		}
		if user, _ := s.userRepo.FindByID(ctx, spec.UserID); user == nil {
			return nil, fieldErr("members", "unknown user")
		}
		if spec.UserID == project.CreatorID {
			creatorListed = true
		}
		members = append(members, &repository.ProjectMember{UserID: spec.UserID, Role: spec.Role})
	}
	if !creatorListed {
		members = append(members, &repository.ProjectMember{
			UserID: project.CreatorID,
			Role:   types.MemberRoleManager,
		})
	}

	if err := s.projectRepo.UpdateWithMembers(ctx, project, members); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, actor *types.Actor, id string) error {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrNotFound
	}
	if !s.access.CanMutateProject(ctx, actor, project, ActionDelete) {
		return ErrForbidden
	}

	// Tasks, memberships and comments go with the project via FK cascade.
	// Attachment rows are polymorphic and carry no FK, so each task's
	// attachments (and its comments') come off explicitly, files included.
	tasks, err := s.taskRepo.FindByProjectID(ctx, id)
	if err != nil {
		return err
	}
	var cleanupFailed bool
	for _, task := range tasks {
		failed, err := s.cleaner.removeTask(ctx, task.ID)
		cleanupFailed = cleanupFailed || failed
		if err != nil {
			return err
		}
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateStats(ctx, id)
	if cleanupFailed {
		return errFilesNotRemoved()
	}
	return nil
}

// Stats computes derived metrics from the aggregate count query, with an
// optional cache in front. The in-memory reduction path (progress.Reduce over
// a loaded collection) yields the same numbers.
func (s *projectService) Stats(ctx context.Context, project *repository.Project) (*ProjectStats, error) {
	cacheKey := "project_stats:" + project.ID
	if s.cache != nil {
		var cached ProjectStats
		if err := s.cache.GetCache(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	counts, err := s.taskRepo.CountByStatus(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	stats := StatsFor(project, progress.FromCounts(counts), time.Now())

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, cacheKey, stats, statsCacheTTL); err != nil {
			log.Printf("[Stats] cache write failed for project %s: %v", project.ID, err)
		}
	}
	return stats, nil
}

func (s *projectService) invalidateStats(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx, "project_stats:"+projectID); err != nil {
		log.Printf("[Stats] cache invalidation failed for project %s: %v", projectID, err)
	}
}

func (s *projectService) AddMember(ctx context.Context, actor *types.Actor, projectID, userID, role string) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrNotFound
	}
	if !s.access.CanManageMembers(ctx, actor, project) {
		return ErrForbidden
	}
	if !types.IsValidMemberRole(role) {
		return fieldErr("role", "unknown member role")
	}
	if user, _ := s.userRepo.FindByID(ctx, userID); user == nil {
		return fieldErr("user_id", "unknown user")
	}

	existing, _ := s.projectRepo.FindMember(ctx, projectID, userID)
	if existing != nil {
		return ErrConflict
	}

	member := &repository.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	return s.projectRepo.AddMember(ctx, member)
}

func (s *projectService) ListMembers(ctx context.Context, actor *types.Actor, projectID string) ([]*repository.ProjectMember, error) {
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
	return s.projectRepo.FindMembers(ctx, projectID)
}

// UpdateMemberRole changes an existing member's roster role. The creator
// stays a manager.
func (s *projectService) UpdateMemberRole(ctx context.Context, actor *types.Actor, projectID, userID, role string) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrNotFound
	}
	if !s.access.CanManageMembers(ctx, actor, project) {
		return ErrForbidden
	}
	if !types.IsValidMemberRole(role) {
		return fieldErr("role", "unknown member role")
	}
	if userID == project.CreatorID && role != types.MemberRoleManager {
		return fieldErr("role", "cannot demote the project creator")
	}

	member, err := s.projectRepo.FindMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	return s.projectRepo.UpdateMemberRole(ctx, projectID, userID, role)
}

func (s *projectService) RemoveMember(ctx context.Context, actor *types.Actor, projectID, userID string) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrNotFound
	}
	if !s.access.CanManageMembers(ctx, actor, project) {
		return ErrForbidden
	}
	if userID == project.CreatorID {
		return fieldErr("user_id", "cannot remove the project creator")
	}
	return s.projectRepo.RemoveMember(ctx, projectID, userID)
}
