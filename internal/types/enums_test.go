package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTaskStatus(t *testing.T) {
	assert.Equal(t, StatusDone, NormalizeTaskStatus("completed"))
	assert.Equal(t, StatusTodo, NormalizeTaskStatus(StatusTodo))
	// "cancelled" is not a synonym and stays invalid.
	assert.Equal(t, "cancelled", NormalizeTaskStatus("cancelled"))
	assert.False(t, IsValidTaskStatus("cancelled"))
}

func TestNormalizeProjectStatus(t *testing.T) {
	assert.Equal(t, ProjectActive, NormalizeProjectStatus("in_progress"))
	assert.True(t, IsValidProjectStatus(ProjectCancelled))
}

func TestRolePermissions(t *testing.T) {
	admin := NewActor("u1", RoleAdmin)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.HasPermission(PermDeleteProject))

	dev := NewActor("u2", RoleTeamMember)
	assert.False(t, dev.IsAdmin())
	assert.True(t, dev.HasPermission(PermCreateTask))
	assert.False(t, dev.HasPermission(PermCreateProject))
	assert.False(t, dev.HasPermission(PermDeleteTask))

	unknown := NewActor("u3", "ghost")
	assert.False(t, unknown.HasPermission(PermCreateTask))
}
