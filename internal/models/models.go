package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin project_manager team_member"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================
// Project DTOs
// ============================================

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	StartDate   time.Time  `json:"startDate" binding:"required"`
	EndDate     *time.Time `json:"endDate"`
}

type UpdateProjectRequest struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *string       `json:"status,omitempty"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	ClearEnd    bool          `json:"clearEndDate,omitempty"`
	Members     []MemberInput `json:"members,omitempty"`
}

type MemberInput struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=manager member"`
}

type ProgressResponse struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

type ProjectResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   *string           `json:"description,omitempty"`
	Status        string            `json:"status"`
	StartDate     time.Time         `json:"startDate"`
	EndDate       *time.Time        `json:"endDate,omitempty"`
	CreatorID     string            `json:"creatorId"`
	Progress      *ProgressResponse `json:"progress,omitempty"`
	IsOverdue     *bool             `json:"isOverdue,omitempty"`
	DaysRemaining *int              `json:"daysRemaining"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type ProjectMemberResponse struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"projectId"`
	UserID    string        `json:"userId"`
	Role      string        `json:"role"`
	JoinedAt  time.Time     `json:"joinedAt"`
	User      *UserResponse `json:"user,omitempty"`
}

type AddProjectMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=manager member"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=manager member"`
}

// ============================================
// Task DTOs
// ============================================

type CreateTaskRequest struct {
	ProjectID   string     `json:"projectId" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	AssigneeID    *string    `json:"assigneeId,omitempty"`
	ClearAssignee bool       `json:"clearAssignee,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	ClearDue      bool       `json:"clearDueDate,omitempty"`
}

type TransitionTaskRequest struct {
	Status string `json:"status" binding:"required"`
}

type TaskResponse struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"projectId"`
	Title         string        `json:"title"`
	Description   *string       `json:"description,omitempty"`
	Status        string        `json:"status"`
	Priority      string        `json:"priority"`
	AssigneeID    *string       `json:"assigneeId,omitempty"`
	Assignee      *UserResponse `json:"assignee,omitempty"`
	CreatorID     string        `json:"creatorId"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	IsOverdue     bool          `json:"isOverdue"`
	DaysRemaining *int          `json:"daysRemaining"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// TaskListResponse is the authoritative-list reply for board mutations: the
// client replaces its local state with Tasks wholesale.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// ============================================
// Comment / Attachment DTOs
// ============================================

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type AttachmentResponse struct {
	ID           string    `json:"id"`
	OwnerKind    string    `json:"ownerKind"`
	OwnerID      string    `json:"ownerId"`
	OriginalName string    `json:"originalName"`
	FileSize     int64     `json:"fileSize"`
	MimeType     string    `json:"mimeType"`
	UploaderID   string    `json:"uploaderId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TaskThreadResponse is what a comment mutation returns: the task plus its
// full discussion, so clients re-render the thread from one payload.
type TaskThreadResponse struct {
	Task     TaskResponse      `json:"task"`
	Comments []CommentResponse `json:"comments"`
}

type CommentResponse struct {
	ID          string               `json:"id"`
	TaskID      string               `json:"taskId"`
	AuthorID    string               `json:"authorId"`
	Content     *string              `json:"content"`
	Author      *UserResponse        `json:"author,omitempty"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}
