package types

// Actor is the authenticated party behind a request. It is built once by the
// auth middleware and threaded explicitly into every resolver and service
// call; business logic never reaches for ambient "current user" state.
type Actor struct {
	ID          string
	Role        string
	Permissions []string
}

// rolePermissions lists the default permission grants per global role.
var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermCreateProject, PermUpdateProject, PermDeleteProject,
		PermCreateTask, PermUpdateTask, PermDeleteTask,
		PermAssignTask, PermManageMembers,
	},
	RoleProjectManager: {
		PermCreateProject, PermUpdateProject, PermDeleteProject,
		PermCreateTask, PermUpdateTask, PermDeleteTask,
		PermAssignTask, PermManageMembers,
	},
	RoleTeamMember: {
		PermCreateTask, PermUpdateTask,
	},
}

// NewActor builds an actor with the default permission set for its role.
func NewActor(id, role string) *Actor {
	return &Actor{
		ID:          id,
		Role:        role,
		Permissions: rolePermissions[role],
	}
}

func (a *Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Actor) HasPermission(name string) bool {
	for _, p := range a.Permissions {
		if p == name {
			return true
		}
	}
	return false
}
