package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/types"
)

func TestAdminSeesEveryProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, admin := env.createUser(t, "admin", types.RoleAdmin)
	_, pm := env.createUser(t, "pm", types.RoleProjectManager)

	project := env.createProject(t, pm, "Private Project")

	assert.True(t, env.services.Access.CanViewProject(ctx, admin, project))

	visible, err := env.services.Access.VisibleProjects(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestNonMemberCannotViewProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	_, outsider := env.createUser(t, "outsider", types.RoleTeamMember)

	project := env.createProject(t, pm, "Closed Project")

	assert.False(t, env.services.Access.CanViewProject(ctx, outsider, project))

	visible, err := env.services.Access.VisibleProjects(ctx, outsider)
	require.NoError(t, err)
	assert.Empty(t, visible)

	_, err = env.services.Project.GetByID(ctx, outsider, project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMemberGainsVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	member, memberActor := env.createUser(t, "dev", types.RoleTeamMember)

	project := env.createProject(t, pm, "Team Project")
	require.NoError(t, env.services.Project.AddMember(ctx, pm, project.ID, member.ID, types.MemberRoleMember))

	assert.True(t, env.services.Access.CanViewProject(ctx, memberActor, project))

	visible, err := env.services.Access.VisibleProjects(ctx, memberActor)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestListNeverShowsWhatGetRefuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	_, other := env.createUser(t, "other", types.RoleProjectManager)

	env.createProject(t, pm, "Mine")
	env.createProject(t, other, "Theirs")

	visible, err := env.services.Access.VisibleProjects(ctx, pm)
	require.NoError(t, err)
	for _, p := range visible {
		_, err := env.services.Project.GetByID(ctx, pm, p.ID)
		assert.NoError(t, err)
	}
	assert.Len(t, visible, 1)
}

func TestOnlyCreatorDeletesProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	otherUser, otherActor := env.createUser(t, "other", types.RoleProjectManager)

	project := env.createProject(t, pm, "Guarded")
	require.NoError(t, env.services.Project.AddMember(ctx, pm, project.ID, otherUser.ID, types.MemberRoleManager))

	// A manager-role member with full permissions still cannot delete.
	err := env.services.Project.Delete(ctx, otherActor, project.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.NoError(t, env.services.Project.Delete(ctx, pm, project.ID))
}

func TestTeamMemberCannotMutateProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	member, memberActor := env.createUser(t, "dev", types.RoleTeamMember)

	project := env.createProject(t, pm, "Locked")
	require.NoError(t, env.services.Project.AddMember(ctx, pm, project.ID, member.ID, types.MemberRoleMember))

	// Membership grants visibility, not update rights.
	assert.False(t, env.services.Access.CanMutateProject(ctx, memberActor, project, ActionUpdate))

	name := "renamed"
	_, err := env.services.Project.Update(ctx, memberActor, project.ID, &UpdateProjectRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAssigneeCanTransitionWithoutUpdatePermission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	assignee, assigneeActor := env.createUser(t, "dev", types.RoleTeamMember)

	project := env.createProject(t, pm, "Board")
	task := env.createTask(t, pm, project.ID, "Ship it", types.StatusTodo)

	// Not yet assigned, not a member: no transition.
	assert.False(t, env.services.Access.CanTransitionStatus(ctx, assigneeActor, task))

	task.AssigneeID = &assignee.ID
	require.NoError(t, env.repos.TaskRepo.Update(ctx, task))

	assert.True(t, env.services.Access.CanTransitionStatus(ctx, assigneeActor, task))
}

func TestTaskVisibilityFollowsProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pm := env.createUser(t, "pm", types.RoleProjectManager)
	_, outsider := env.createUser(t, "outsider", types.RoleTeamMember)
	_, admin := env.createUser(t, "admin", types.RoleAdmin)

	project := env.createProject(t, pm, "Hidden")
	task := env.createTask(t, pm, project.ID, "Secret work", types.StatusTodo)

	assert.False(t, env.services.Access.CanViewTask(ctx, outsider, task))
	assert.True(t, env.services.Access.CanViewTask(ctx, admin, task))
	assert.True(t, env.services.Access.CanViewTask(ctx, pm, task))
}

func TestOrphanTaskIsInvisible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, admin := env.createUser(t, "admin", types.RoleAdmin)

	// A task pointing at a project that no longer exists resolves to not
	// viewable rather than an error.
	orphan := &repository.Task{ProjectID: "gone", Title: "stray", Status: types.StatusTodo}
	assert.False(t, env.services.Access.CanViewTask(ctx, admin, orphan))
}
