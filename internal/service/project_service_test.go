package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/progress"
	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/types"
)

func TestCreateProjectValidatesDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)

	start := time.Now()
	end := start.AddDate(0, 0, -1)
	_, err := env.services.Project.Create(ctx, pm, &CreateProjectRequest{
		Name:      "Backwards",
		StartDate: start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateProjectAddsCreatorAsManager(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Mine")

	member, err := env.repos.ProjectRepo.FindMember(ctx, project.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, types.MemberRoleManager, member.Role)
}

func TestTeamMemberCannotCreateProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, dev := env.createUser(t, "dev", types.RoleTeamMember)

	_, err := env.services.Project.Create(ctx, dev, &CreateProjectRequest{
		Name:      "Denied",
		StartDate: time.Now(),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestProjectStatusSynonymNormalizes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)

	project, err := env.services.Project.Create(ctx, pm, &CreateProjectRequest{
		Name:      "Legacy Status",
		Status:    "in_progress",
		StartDate: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, types.ProjectActive, project.Status)
}

func TestStatsEmptyProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Empty")

	stats, err := env.services.Project.Stats(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Progress.Total)
	assert.Equal(t, 0, stats.Progress.Percentage)
}

// The aggregate-count path behind Stats must yield the same summary as an
// in-memory reduction over the loaded task list.
func TestStatsAgreesWithReduction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Dual Path")

	env.createTask(t, pm, project.ID, "a", types.StatusDone)
	env.createTask(t, pm, project.ID, "b", types.StatusTodo)
	env.createTask(t, pm, project.ID, "c", types.StatusTodo)
	env.createTask(t, pm, project.ID, "d", types.StatusInProgress)

	stats, err := env.services.Project.Stats(ctx, project)
	require.NoError(t, err)

	tasks, err := env.services.Task.ListByProject(ctx, pm, project.ID)
	require.NoError(t, err)

	assert.Equal(t, progress.Reduce(tasks), stats.Progress)
	assert.Equal(t, 25, stats.Progress.Percentage)
}

func TestUpdateProjectSyncsMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, pm := env.createUser(t, "pm", types.RoleProjectManager)
	devA, _ := env.createUser(t, "dev-a", types.RoleTeamMember)
	devB, _ := env.createUser(t, "dev-b", types.RoleTeamMember)

	project := env.createProject(t, pm, "Roster")
	require.NoError(t, env.services.Project.AddMember(ctx, pm, project.ID, devA.ID, types.MemberRoleMember))

	// Replace the roster: devA out, devB in. The creator is kept even
	// though the request omits them.
	name := "Roster v2"
	_, err := env.services.Project.Update(ctx, pm, project.ID, &UpdateProjectRequest{
		Name: &name,
		Members: []MemberSpec{
			{UserID: devB.ID, Role: types.MemberRoleMember},
		},
	})
	require.NoError(t, err)

	members, err := env.services.Project.ListMembers(ctx, pm, project.ID)
	require.NoError(t, err)
	ids := make(map[string]bool)
	for _, m := range members {
		ids[m.UserID] = true
	}
	assert.True(t, ids[devB.ID])
	assert.True(t, ids[creator.ID])
	assert.False(t, ids[devA.ID])
}

func TestAddMemberTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	dev, _ := env.createUser(t, "dev", types.RoleTeamMember)

	project := env.createProject(t, pm, "Dupes")
	require.NoError(t, env.services.Project.AddMember(ctx, pm, project.ID, dev.ID, types.MemberRoleMember))

	err := env.services.Project.AddMember(ctx, pm, project.ID, dev.ID, types.MemberRoleMember)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRemoveCreatorRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Sticky Creator")

	err := env.services.Project.RemoveMember(ctx, pm, project.ID, creator.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProjectEndBeforeStartRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Dated")

	bad := project.StartDate.AddDate(0, 0, -3)
	_, err := env.services.Project.Update(ctx, pm, project.ID, &UpdateProjectRequest{EndDate: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteProjectCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	project := env.createProject(t, pm, "Teardown")
	task := env.createTask(t, pm, project.ID, "Carrier", types.StatusTodo)

	direct, err := env.services.Comment.AttachToTask(ctx, pm, task.ID, upload("brief.pdf", "pdf"))
	require.NoError(t, err)
	comment, err := env.services.Comment.Create(ctx, pm, task.ID, strPtr("see file"), []Upload{upload("log.txt", "log")})
	require.NoError(t, err)

	require.NoError(t, env.services.Project.Delete(ctx, pm, project.ID))

	// Tasks and comments cascade; attachment rows and files go explicitly.
	goneTask, err := env.repos.TaskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, goneTask)
	goneComment, err := env.repos.CommentRepo.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, goneComment)

	rows, err := env.repos.AttachmentRepo.FindByOwner(ctx, repository.OwnerKindTask, task.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	rows, err = env.repos.AttachmentRepo.FindByOwner(ctx, repository.OwnerKindComment, comment.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.False(t, env.store.Exists(direct.StoragePath))
	assert.False(t, env.store.Exists(comment.Attachments[0].StoragePath))
}

func TestUpdateMemberRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	dev, devActor := env.createUser(t, "dev", types.RoleTeamMember)

	project := env.createProject(t, pm, "Roster")
	require.NoError(t, env.services.Project.AddMember(ctx, pm, project.ID, dev.ID, types.MemberRoleMember))

	// Plain members cannot manage the roster.
	err := env.services.Project.UpdateMemberRole(ctx, devActor, project.ID, dev.ID, types.MemberRoleManager)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.services.Project.UpdateMemberRole(ctx, pm, project.ID, dev.ID, types.MemberRoleManager))
	member, err := env.repos.ProjectRepo.FindMember(ctx, project.ID, dev.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, types.MemberRoleManager, member.Role)

	// Unknown members and bogus roles are rejected.
	err = env.services.Project.UpdateMemberRole(ctx, pm, project.ID, "no-such-user", types.MemberRoleMember)
	assert.ErrorIs(t, err, ErrNotFound)
	err = env.services.Project.UpdateMemberRole(ctx, pm, project.ID, dev.ID, "owner")
	assert.ErrorIs(t, err, ErrValidation)

	// The creator keeps the manager seat.
	err = env.services.Project.UpdateMemberRole(ctx, pm, project.ID, pm.ID, types.MemberRoleMember)
	assert.ErrorIs(t, err, ErrValidation)
}
