package types

// Task status values
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Project status values
const (
	ProjectPlanning  = "planning"
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

// Task priority values
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Global roles
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleTeamMember     = "team_member"
)

// Project membership roles
const (
	MemberRoleManager = "manager"
	MemberRoleMember  = "member"
)

// Permission names
const (
	PermCreateProject = "create_project"
	PermUpdateProject = "update_project"
	PermDeleteProject = "delete_project"
	PermCreateTask    = "create_task"
	PermUpdateTask    = "update_task"
	PermDeleteTask    = "delete_task"
	PermAssignTask    = "assign_task"
	PermManageMembers = "manage_members"
)

var ValidTaskStatuses = []string{StatusTodo, StatusInProgress, StatusDone}

var ValidProjectStatuses = []string{
	ProjectPlanning, ProjectActive, ProjectOnHold,
	ProjectCompleted, ProjectCancelled,
}

var ValidPriorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

var ValidMemberRoles = []string{MemberRoleManager, MemberRoleMember}

// taskStatusSynonyms maps legacy display labels to canonical values.
// "cancelled" is deliberately absent: it was never a real task state.
var taskStatusSynonyms = map[string]string{
	"completed": StatusDone,
}

var projectStatusSynonyms = map[string]string{
	"in_progress": ProjectActive,
}

// NormalizeTaskStatus resolves display synonyms to the canonical enum value.
func NormalizeTaskStatus(status string) string {
	if canonical, ok := taskStatusSynonyms[status]; ok {
		return canonical
	}
	return status
}

func NormalizeProjectStatus(status string) string {
	if canonical, ok := projectStatusSynonyms[status]; ok {
		return canonical
	}
	return status
}

func IsValidTaskStatus(status string) bool {
	for _, s := range ValidTaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidProjectStatus(status string) bool {
	for _, s := range ValidProjectStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidPriority(priority string) bool {
	for _, p := range ValidPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

func IsValidMemberRole(role string) bool {
	for _, r := range ValidMemberRoles {
		if r == role {
			return true
		}
	}
	return false
}
