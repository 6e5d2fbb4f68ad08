package auth

import (
	"estateflow/crm/internal/models"
)

// Action names a privileged operation gated by role.
type Action string

const (
	// ActionCreateProperty covers creating listings and uploading their images.
	ActionCreateProperty Action = "property:create"
	// ActionModerateProperty covers approving and rejecting listings.
	ActionModerateProperty Action = "property:moderate"
	// ActionManageAgents covers the agent directory and per-agent listing views.
	ActionManageAgents Action = "agents:manage"
)

// policy is the single role capability table. Handlers never compare role
// strings directly; they ask Can.
var policy = map[models.Role]map[Action]bool{
	models.RoleAgent: {
		ActionCreateProperty: true,
	},
	models.RoleAdmin: {
		ActionModerateProperty: true,
		ActionManageAgents:     true,
	},
}

// Can reports whether the given role is allowed to perform the action.
func Can(role models.Role, action Action) bool {
	return policy[role][action]
}
