package service

import (
	"context"

	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/types"
)

// Action types
const (
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AccessService is the single source of truth for who may see or mutate
// what. Bulk listings and single-object guards both go through it, so a list
// can never show a project a direct fetch would refuse.
type AccessService interface {
	CanViewProject(ctx context.Context, actor *types.Actor, project *repository.Project) bool
	CanViewTask(ctx context.Context, actor *types.Actor, task *repository.Task) bool
	CanMutateProject(ctx context.Context, actor *types.Actor, project *repository.Project, action string) bool
	CanMutateTask(ctx context.Context, actor *types.Actor, task *repository.Task, action string) bool
	CanTransitionStatus(ctx context.Context, actor *types.Actor, task *repository.Task) bool
	CanManageMembers(ctx context.Context, actor *types.Actor, project *repository.Project) bool
	VisibleProjects(ctx context.Context, actor *types.Actor) ([]*repository.Project, error)
}

type accessService struct {
	projectRepo repository.ProjectRepository
}

func NewAccessService(projectRepo repository.ProjectRepository) AccessService {
	return &accessService{projectRepo: projectRepo}
}

func (s *accessService) CanViewProject(ctx context.Context, actor *types.Actor, project *repository.Project) bool {
	if project == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if actor.ID == project.CreatorID {
		return true
	}
	member, err := s.projectRepo.FindMember(ctx, project.ID, actor.ID)
	return err == nil && member != nil
}

// CanViewTask inherits from the owning project; tasks carry no ACL of their
// own beyond project scope.
func (s *accessService) CanViewTask(ctx context.Context, actor *types.Actor, task *repository.Task) bool {
	if task == nil {
		return false
	}
	project, err := s.projectRepo.FindByID(ctx, task.ProjectID)
	if err != nil || project == nil {
		return false
	}
	return s.CanViewProject(ctx, actor, project)
}

func (s *accessService) CanMutateProject(ctx context.Context, actor *types.Actor, project *repository.Project, action string) bool {
	if project == nil {
		return false
	}
	switch action {
	case ActionDelete:
		// Deletion stays with the creator, gated by the global permission.
		return actor.ID == project.CreatorID && actor.HasPermission(types.PermDeleteProject)
	case ActionUpdate:
		if actor.IsAdmin() {
			return true
		}
		if !actor.HasPermission(types.PermUpdateProject) {
			return false
		}
		if actor.ID == project.CreatorID {
			return true
		}
		member, err := s.projectRepo.FindMember(ctx, project.ID, actor.ID)
		return err == nil && member != nil && member.Role == types.MemberRoleManager
	}
	return false
}

func (s *accessService) CanMutateTask(ctx context.Context, actor *types.Actor, task *repository.Task, action string) bool {
	if task == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	switch action {
	case ActionUpdate:
		if !actor.HasPermission(types.PermUpdateTask) {
			return false
		}
	case ActionDelete:
		if !actor.HasPermission(types.PermDeleteTask) {
			return false
		}
	default:
		return false
	}
	return s.CanViewTask(ctx, actor, task)
}

// CanTransitionStatus covers the board's status-only path: full task-update
// rights, or being the assignee. Any other field change needs the stronger
// permission.
func (s *accessService) CanTransitionStatus(ctx context.Context, actor *types.Actor, task *repository.Task) bool {
	if task == nil {
		return false
	}
	if task.AssigneeID != nil && *task.AssigneeID == actor.ID {
		return true
	}
	return s.CanMutateTask(ctx, actor, task, ActionUpdate)
}

func (s *accessService) CanManageMembers(ctx context.Context, actor *types.Actor, project *repository.Project) bool {
	if project == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if !actor.HasPermission(types.PermManageMembers) {
		return false
	}
	if actor.ID == project.CreatorID {
		return true
	}
	member, err := s.projectRepo.FindMember(ctx, project.ID, actor.ID)
	return err == nil && member != nil && member.Role == types.MemberRoleManager
}

// VisibleProjects applies the same rule set as CanViewProject, as a query
// filter rather than a per-object check.
func (s *accessService) VisibleProjects(ctx context.Context, actor *types.Actor) ([]*repository.Project, error) {
	if actor.IsAdmin() {
		return s.projectRepo.FindAll(ctx)
	}
	return s.projectRepo.FindVisibleByUser(ctx, actor.ID)
}
