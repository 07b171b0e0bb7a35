package service

import (
	"errors"
	"fmt"

	"github.com/taskhive/taskhive-backend/internal/config"
	"github.com/taskhive/taskhive-backend/internal/db"
	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("resource already exists")
	ErrStorage            = errors.New("file storage failure")
)

// FieldError is a validation failure tied to one input field. It matches
// ErrValidation under errors.Is so handlers can branch on the category while
// still surfacing the field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

func fieldErr(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth    AuthService
	Access  AccessService
	Project ProjectService
	Task    TaskService
	Comment CommentService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config *config.Config
	Repos  *repository.Repositories
	Cache  *db.RedisDB
	Files  storage.FileStore
}

func NewServices(deps *ServiceDeps) *Services {
	access := NewAccessService(deps.Repos.ProjectRepo)

	return &Services{
		Auth:   NewAuthService(deps.Config, deps.Repos.UserRepo),
		Access: access,
		Project: NewProjectService(
			deps.Repos.ProjectRepo,
			deps.Repos.TaskRepo,
			deps.Repos.CommentRepo,
			deps.Repos.AttachmentRepo,
			deps.Repos.UserRepo,
			access,
			deps.Cache,
			deps.Files,
		),
		Task: NewTaskService(
			deps.Repos.TaskRepo,
			deps.Repos.ProjectRepo,
			deps.Repos.CommentRepo,
			deps.Repos.AttachmentRepo,
			deps.Repos.UserRepo,
			access,
			deps.Cache,
			deps.Files,
		),
		Comment: NewCommentService(
			deps.Repos.CommentRepo,
			deps.Repos.TaskRepo,
			deps.Repos.AttachmentRepo,
			deps.Repos.ProjectRepo,
			access,
			deps.Files,
		),
	}
}
