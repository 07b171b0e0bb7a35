package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/types"
)

func TestCreateTaskRequiresProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)

	_, err := env.services.Task.Create(ctx, pm, &CreateTaskRequest{Title: "floating"})
	assert.ErrorIs(t, err, ErrValidation)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "project_id", fe.Field)
}

func TestCreateTaskUnknownProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)

	_, err := env.services.Task.Create(ctx, pm, &CreateTaskRequest{ProjectID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTaskDefaults(t *testing.T) {
	env := newTestEnv(t)

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Defaults")

	task := env.createTask(t, pm, project.ID, "New work", "")
	assert.Equal(t, types.StatusTodo, task.Status)
	assert.Equal(t, types.PriorityMedium, task.Priority)
}

func TestCompletedSynonymNormalizes(t *testing.T) {
	env := newTestEnv(t)

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Legacy")

	// "completed" is a legacy display label for done.
	task := env.createTask(t, pm, project.ID, "Old client payload", "completed")
	assert.Equal(t, types.StatusDone, task.Status)
}

func TestCancelledIsNotATaskStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Strict")

	_, err := env.services.Task.Create(ctx, pm, &CreateTaskRequest{
		ProjectID: project.ID,
		Title:     "nope",
		Status:    "cancelled",
	})
	assert.ErrorIs(t, err, ErrValidation)

	task := env.createTask(t, pm, project.ID, "real", types.StatusTodo)
	_, err = env.services.Task.ApplyTransition(ctx, pm, task.ID, "cancelled")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTransitionMovesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Board")
	task := env.createTask(t, pm, project.ID, "Move me", types.StatusTodo)

	updated, err := env.services.Task.ApplyTransition(ctx, pm, task.ID, types.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, updated.Status)

	updated, err = env.services.Task.ApplyTransition(ctx, pm, task.ID, types.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDone, updated.Status)
}

func TestTransitionToSameStatusIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Board")
	task := env.createTask(t, pm, project.ID, "Stay put", types.StatusTodo)

	updated, err := env.services.Task.ApplyTransition(ctx, pm, task.ID, types.StatusTodo)
	require.NoError(t, err)
	assert.Equal(t, types.StatusTodo, updated.Status)
	assert.Equal(t, task.ID, updated.ID)
}

func TestTransitionForbiddenForOutsider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	_, outsider := env.createUser(t, "outsider", types.RoleTeamMember)

	project := env.createProject(t, pm, "Board")
	task := env.createTask(t, pm, project.ID, "Hands off", types.StatusTodo)

	_, err := env.services.Task.ApplyTransition(ctx, outsider, task.ID, types.StatusDone)
	assert.ErrorIs(t, err, ErrForbidden)

	// The task is untouched.
	current, err := env.repos.TaskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusTodo, current.Status)
}

func TestAssigneeTransitionsOwnTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	dev, devActor := env.createUser(t, "dev", types.RoleTeamMember)

	project := env.createProject(t, pm, "Board")
	require.NoError(t, env.services.Project.AddMember(ctx, pm, project.ID, dev.ID, types.MemberRoleMember))

	task, err := env.services.Task.Create(ctx, pm, &CreateTaskRequest{
		ProjectID:  project.ID,
		Title:      "Assigned work",
		AssigneeID: &dev.ID,
	})
	require.NoError(t, err)

	updated, err := env.services.Task.ApplyTransition(ctx, devActor, task.ID, types.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, updated.Status)
}

func TestUpdateTaskFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Edits")
	task := env.createTask(t, pm, project.ID, "Before", types.StatusTodo)

	title := "After"
	priority := types.PriorityHigh
	updated, err := env.services.Task.Update(ctx, pm, task.ID, &UpdateTaskRequest{
		Title:    &title,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, types.PriorityHigh, updated.Priority)
	assert.Equal(t, types.StatusTodo, updated.Status)
}

func TestUpdateTaskUnknownAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Edits")
	task := env.createTask(t, pm, project.ID, "Unassignable", types.StatusTodo)

	ghost := "no-such-user"
	_, err := env.services.Task.Update(ctx, pm, task.ID, &UpdateTaskRequest{AssigneeID: &ghost})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	_, member := env.createUser(t, "dev", types.RoleTeamMember)

	project := env.createProject(t, pm, "Cleanup")
	task := env.createTask(t, pm, project.ID, "Doomed", types.StatusTodo)

	// Team members lack delete_task.
	assert.ErrorIs(t, env.services.Task.Delete(ctx, member, task.ID), ErrForbidden)

	require.NoError(t, env.services.Task.Delete(ctx, pm, task.ID))
	assert.ErrorIs(t, env.services.Task.Delete(ctx, pm, task.ID), ErrNotFound)

	remaining, err := env.services.Task.ListByProject(ctx, pm, project.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestListByStatusFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Filtered")

	env.createTask(t, pm, project.ID, "a", types.StatusTodo)
	env.createTask(t, pm, project.ID, "b", types.StatusDone)
	env.createTask(t, pm, project.ID, "c", types.StatusDone)

	done, err := env.services.Task.ListByStatus(ctx, pm, project.ID, "completed")
	require.NoError(t, err)
	assert.Len(t, done, 2)

	todo, err := env.services.Task.ListByStatus(ctx, pm, project.ID, types.StatusTodo)
	require.NoError(t, err)
	assert.Len(t, todo, 1)
}

func TestDeleteTaskRemovesAttachmentsAndComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Teardown")
	task := env.createTask(t, pm, project.ID, "Carrier", types.StatusTodo)

	direct, err := env.services.Comment.AttachToTask(ctx, pm, task.ID, upload("design.pdf", "pdf"))
	require.NoError(t, err)
	comment, err := env.services.Comment.Create(ctx, pm, task.ID, strPtr("see file"), []Upload{upload("log.txt", "log")})
	require.NoError(t, err)
	require.Len(t, comment.Attachments, 1)

	require.NoError(t, env.services.Task.Delete(ctx, pm, task.ID))

	// Attachment rows have no FK; the delete path removes them itself.
	rows, err := env.repos.AttachmentRepo.FindByOwner(ctx, repository.OwnerKindTask, task.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	rows, err = env.repos.AttachmentRepo.FindByOwner(ctx, repository.OwnerKindComment, comment.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.False(t, env.store.Exists(direct.StoragePath))
	assert.False(t, env.store.Exists(comment.Attachments[0].StoragePath))

	gone, err := env.repos.CommentRepo.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDeleteTaskReportsFileCleanupFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Flaky Disk")
	task := env.createTask(t, pm, project.ID, "Carrier", types.StatusTodo)

	attachment, err := env.services.Comment.AttachToTask(ctx, pm, task.ID, upload("stuck.txt", "x"))
	require.NoError(t, err)

	env.store.failDelete = true
	err = env.services.Task.Delete(ctx, pm, task.ID)
	assert.ErrorIs(t, err, ErrStorage)

	// The task and the attachment rows are gone regardless.
	gone, findErr := env.repos.TaskRepo.FindByID(ctx, task.ID)
	require.NoError(t, findErr)
	assert.Nil(t, gone)
	rows, err := env.repos.AttachmentRepo.FindByOwner(ctx, repository.OwnerKindTask, task.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	// The stuck file stays on disk for an operator to reap.
	assert.True(t, env.store.Exists(attachment.StoragePath))
}
