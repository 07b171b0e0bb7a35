package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// In-memory repository implementations backing tests and local fallback.
// Single-request semantics only; no locking, same as the pg versions rely on
// the database for.

// ============================================
// In-Memory User Repository
// ============================================

type inMemoryUserRepository struct {
	users         map[string]*User
	refreshTokens map[string]*RefreshToken
}

func newInMemoryUserRepository() *inMemoryUserRepository {
	return &inMemoryUserRepository{
		users:         make(map[string]*User),
		refreshTokens: make(map[string]*RefreshToken),
	}
}

func (r *inMemoryUserRepository) Create(ctx context.Context, user *User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *inMemoryUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindAll(ctx context.Context) ([]*User, error) {
	users := make([]*User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *inMemoryUserRepository) Update(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *inMemoryUserRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	r.refreshTokens[token.Token] = token
	return nil
}

func (r *inMemoryUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	if rt, ok := r.refreshTokens[token]; ok {
		return rt, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	delete(r.refreshTokens, token)
	return nil
}

func (r *inMemoryUserRepository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	for token, rt := range r.refreshTokens {
		if rt.UserID == userID {
			delete(r.refreshTokens, token)
		}
	}
	return nil
}

// ============================================
// In-Memory Project Repository
// ============================================

type inMemoryProjectRepository struct {
	projects map[string]*Project
	members  map[string][]*ProjectMember
	tasks    *inMemoryTaskRepository
}

func newInMemoryProjectRepository(tasks *inMemoryTaskRepository) *inMemoryProjectRepository {
	return &inMemoryProjectRepository{
		projects: make(map[string]*Project),
		members:  make(map[string][]*ProjectMember),
		tasks:    tasks,
	}
}

func (r *inMemoryProjectRepository) Create(ctx context.Context, project *Project) error {
	project.ID = uuid.New().String()
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()
	r.projects[project.ID] = project
	return nil
}

func (r *inMemoryProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	if p, ok := r.projects[id]; ok {
		return p, nil
	}
	return nil, nil
}

func (r *inMemoryProjectRepository) FindAll(ctx context.Context) ([]*Project, error) {
	projects := make([]*Project, 0, len(r.projects))
	for _, p := range r.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (r *inMemoryProjectRepository) FindVisibleByUser(ctx context.Context, userID string) ([]*Project, error) {
	var projects []*Project
	for _, p := range r.projects {
		if p.CreatorID == userID {
			projects = append(projects, p)
			continue
		}
		for _, m := range r.members[p.ID] {
			if m.UserID == userID {
				projects = append(projects, p)
				break
			}
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (r *inMemoryProjectRepository) Update(ctx context.Context, project *Project) error {
	project.UpdatedAt = time.Now()
	r.projects[project.ID] = project
	return nil
}

func (r *inMemoryProjectRepository) UpdateWithMembers(ctx context.Context, project *Project, members []*ProjectMember) error {
	if err := r.Update(ctx, project); err != nil {
		return err
	}
	roster := make([]*ProjectMember, 0, len(members))
	for _, m := range members {
		mm := &ProjectMember{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			UserID:    m.UserID,
			Role:      m.Role,
			JoinedAt:  time.Now(),
		}
		roster = append(roster, mm)
	}
	r.members[project.ID] = roster
	return nil
}

// Delete mirrors the pg FK cascade: the project's tasks go too, and each
// task takes its comments with it.
func (r *inMemoryProjectRepository) Delete(ctx context.Context, id string) error {
	delete(r.projects, id)
	delete(r.members, id)
	for taskID, t := range r.tasks.tasks {
		if t.ProjectID == id {
			_ = r.tasks.Delete(ctx, taskID)
		}
	}
	return nil
}

func (r *inMemoryProjectRepository) AddMember(ctx context.Context, member *ProjectMember) error {
	for _, m := range r.members[member.ProjectID] {
		if m.UserID == member.UserID {
			m.Role = member.Role
			member.ID = m.ID
			member.JoinedAt = m.JoinedAt
			return nil
		}
	}
	member.ID = uuid.New().String()
	member.JoinedAt = time.Now()
	r.members[member.ProjectID] = append(r.members[member.ProjectID], member)
	return nil
}

func (r *inMemoryProjectRepository) FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error) {
	return r.members[projectID], nil
}

func (r *inMemoryProjectRepository) FindMember(ctx context.Context, projectID, userID string) (*ProjectMember, error) {
	for _, m := range r.members[projectID] {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *inMemoryProjectRepository) UpdateMemberRole(ctx context.Context, projectID, userID, role string) error {
	for _, m := range r.members[projectID] {
		if m.UserID == userID {
			m.Role = role
		}
	}
	return nil
}

func (r *inMemoryProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	members := r.members[projectID]
	for i, m := range members {
		if m.UserID == userID {
			r.members[projectID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

// ============================================
// In-Memory Task Repository
// ============================================

type inMemoryTaskRepository struct {
	tasks    map[string]*Task
	comments *inMemoryCommentRepository
}

func newInMemoryTaskRepository(comments *inMemoryCommentRepository) *inMemoryTaskRepository {
	return &inMemoryTaskRepository{tasks: make(map[string]*Task), comments: comments}
}

func (r *inMemoryTaskRepository) Create(ctx context.Context, task *Task) error {
	if task.Status == "" {
		task.Status = "todo"
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	task.ID = uuid.New().String()
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = task
	return nil
}

func (r *inMemoryTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	if t, ok := r.tasks[id]; ok {
		return t, nil
	}
	return nil, nil
}

func (r *inMemoryTaskRepository) findWhere(match func(*Task) bool) []*Task {
	var tasks []*Task
	for _, t := range r.tasks {
		if match(t) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks
}

func (r *inMemoryTaskRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Task, error) {
	return r.findWhere(func(t *Task) bool { return t.ProjectID == projectID }), nil
}

func (r *inMemoryTaskRepository) FindByStatus(ctx context.Context, projectID, status string) ([]*Task, error) {
	return r.findWhere(func(t *Task) bool { return t.ProjectID == projectID && t.Status == status }), nil
}

func (r *inMemoryTaskRepository) FindByAssignee(ctx context.Context, assigneeID string) ([]*Task, error) {
	return r.findWhere(func(t *Task) bool { return t.AssigneeID != nil && *t.AssigneeID == assigneeID }), nil
}

func (r *inMemoryTaskRepository) FindOverdue(ctx context.Context) ([]*Task, error) {
	now := time.Now()
	return r.findWhere(func(t *Task) bool {
		return t.DueDate != nil && t.DueDate.Before(now) && t.Status != "done"
	}), nil
}

func (r *inMemoryTaskRepository) Update(ctx context.Context, task *Task) error {
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = task
	return nil
}

// Delete mirrors the pg FK cascade: the task's comments go with it.
func (r *inMemoryTaskRepository) Delete(ctx context.Context, id string) error {
	delete(r.tasks, id)
	for commentID, c := range r.comments.comments {
		if c.TaskID == id {
			delete(r.comments.comments, commentID)
		}
	}
	return nil
}

func (r *inMemoryTaskRepository) CountByStatus(ctx context.Context, projectID string) (*StatusCounts, error) {
	counts := &StatusCounts{}
	for _, t := range r.tasks {
		if t.ProjectID != projectID {
			continue
		}
		counts.Total++
		switch t.Status {
		case "todo":
			counts.Todo++
		case "in_progress":
			counts.InProgress++
		case "done":
			counts.Done++
		}
	}
	return counts, nil
}

// ============================================
// In-Memory Comment Repository
// ============================================

type inMemoryCommentRepository struct {
	comments map[string]*Comment
}

func newInMemoryCommentRepository() *inMemoryCommentRepository {
	return &inMemoryCommentRepository{comments: make(map[string]*Comment)}
}

func (r *inMemoryCommentRepository) Create(ctx context.Context, comment *Comment) error {
	comment.ID = uuid.New().String()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	r.comments[comment.ID] = comment
	return nil
}

func (r *inMemoryCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	if c, ok := r.comments[id]; ok {
		return c, nil
	}
	return nil, nil
}

func (r *inMemoryCommentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*Comment, error) {
	var comments []*Comment
	for _, c := range r.comments {
		if c.TaskID == taskID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (r *inMemoryCommentRepository) Update(ctx context.Context, comment *Comment) error {
	comment.UpdatedAt = time.Now()
	r.comments[comment.ID] = comment
	return nil
}

func (r *inMemoryCommentRepository) Delete(ctx context.Context, id string) error {
	delete(r.comments, id)
	return nil
}

// ============================================
// In-Memory Attachment Repository
// ============================================

type inMemoryAttachmentRepository struct {
	attachments map[string]*Attachment
}

func newInMemoryAttachmentRepository() *inMemoryAttachmentRepository {
	return &inMemoryAttachmentRepository{attachments: make(map[string]*Attachment)}
}

func (r *inMemoryAttachmentRepository) Create(ctx context.Context, attachment *Attachment) error {
	attachment.ID = uuid.New().String()
	attachment.CreatedAt = time.Now()
	r.attachments[attachment.ID] = attachment
	return nil
}

func (r *inMemoryAttachmentRepository) FindByID(ctx context.Context, id string) (*Attachment, error) {
	if a, ok := r.attachments[id]; ok {
		return a, nil
	}
	return nil, nil
}

func (r *inMemoryAttachmentRepository) FindByOwner(ctx context.Context, ownerKind, ownerID string) ([]*Attachment, error) {
	var attachments []*Attachment
	for _, a := range r.attachments {
		if a.OwnerKind == ownerKind && a.OwnerID == ownerID {
			attachments = append(attachments, a)
		}
	}
	sort.Slice(attachments, func(i, j int) bool { return attachments[i].CreatedAt.Before(attachments[j].CreatedAt) })
	return attachments, nil
}

func (r *inMemoryAttachmentRepository) Delete(ctx context.Context, id string) error {
	delete(r.attachments, id)
	return nil
}
