// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// ============================================
// Models / Entities
// ============================================

type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Project struct {
	ID          string
	Name        string
	Description *string
	Status      string
	StartDate   time.Time
	EndDate     *time.Time
	CreatorID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectMember struct {
	ID        string
	ProjectID string
	UserID    string
	Role      string
	JoinedAt  time.Time
	User      *User
}

type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description *string
	Status      string
	Priority    string
	AssigneeID  *string
	CreatorID   string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Assignee    *User
}

type Comment struct {
	ID          string
	TaskID      string
	AuthorID    string
	Content     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Author      *User
	Attachments []*Attachment
}

// Attachment ownership is a tagged variant: OwnerKind is either "task" or
// "comment" and OwnerID points into the matching table.
type Attachment struct {
	ID           string    `db:"id"`
	OwnerKind    string    `db:"owner_kind"`
	OwnerID      string    `db:"owner_id"`
	Filename     string    `db:"filename"`
	OriginalName string    `db:"original_name"`
	FileSize     int64     `db:"file_size"`
	MimeType     string    `db:"mime_type"`
	StoragePath  string    `db:"storage_path"`
	UploaderID   string    `db:"uploader_id"`
	CreatedAt    time.Time `db:"created_at"`
}

const (
	OwnerKindTask    = "task"
	OwnerKindComment = "comment"
)

// StatusCounts is the aggregate-query shape for a project's task collection.
// progress.FromCounts over this struct must match progress.Reduce over the
// loaded tasks; both paths render the same project.
type StatusCounts struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
}

// ============================================
// Repository Interfaces
// ============================================

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindAll(ctx context.Context) ([]*Project, error)
	FindVisibleByUser(ctx context.Context, userID string) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	UpdateWithMembers(ctx context.Context, project *Project, members []*ProjectMember) error
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, member *ProjectMember) error
	FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error)
	FindMember(ctx context.Context, projectID, userID string) (*ProjectMember, error)
	UpdateMemberRole(ctx context.Context, projectID, userID, role string) error
	RemoveMember(ctx context.Context, projectID, userID string) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	FindByProjectID(ctx context.Context, projectID string) ([]*Task, error)
	FindByStatus(ctx context.Context, projectID, status string) ([]*Task, error)
	FindByAssignee(ctx context.Context, assigneeID string) ([]*Task, error)
	FindOverdue(ctx context.Context) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, projectID string) (*StatusCounts, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	FindByTaskID(ctx context.Context, taskID string) ([]*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id string) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) error
	FindByID(ctx context.Context, id string) (*Attachment, error)
	FindByOwner(ctx context.Context, ownerKind, ownerID string) ([]*Attachment, error)
	Delete(ctx context.Context, id string) error
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	UserRepo       UserRepository
	ProjectRepo    ProjectRepository
	TaskRepo       TaskRepository
	CommentRepo    CommentRepository
	AttachmentRepo AttachmentRepository
}

// NewRepositories creates in-memory repositories (for testing/fallback).
// Tasks hold the comment store and projects hold the task store so their
// deletes cascade the way the pg foreign keys do.
func NewRepositories() *Repositories {
	comments := newInMemoryCommentRepository()
	tasks := newInMemoryTaskRepository(comments)
	return &Repositories{
		UserRepo:       newInMemoryUserRepository(),
		ProjectRepo:    newInMemoryProjectRepository(tasks),
		TaskRepo:       tasks,
		CommentRepo:    comments,
		AttachmentRepo: newInMemoryAttachmentRepository(),
	}
}

// NewPgRepositories creates PostgreSQL-backed repositories. Attachments run
// on the sqlx handle, everything else on the pgx pool.
func NewPgRepositories(pool *pgxpool.Pool, db *sqlx.DB) *Repositories {
	return &Repositories{
		UserRepo:       &pgUserRepository{pool: pool},
		ProjectRepo:    &pgProjectRepository{pool: pool},
		TaskRepo:       &pgTaskRepository{pool: pool},
		CommentRepo:    &pgCommentRepository{pool: pool},
		AttachmentRepo: &sqlxAttachmentRepository{db: db},
	}
}
