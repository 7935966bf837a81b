package capability

import "github.com/scolaria/class_admin/internal/model"

// Action is a UI action a viewer may take on a class.
type Action string

const (
	ActionView         Action = "view"
	ActionManage       Action = "manage"
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
	ActionDeactivate   Action = "deactivate"
	ActionAssignRights Action = "assign_rights"
)

// Decision is the resolved action set for one viewer on one class.
// PendingBadge carries the pending-request count shown on the manage
// action; it never gates availability of manage itself.
type Decision struct {
	Actions      map[Action]bool
	PendingBadge int
}

// Allows checks if the decision grants the action
func (d Decision) Allows(a Action) bool {
	return d.Actions[a]
}

func decision(actions ...Action) Decision {
	set := make(map[Action]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return Decision{Actions: set}
}

// Resolve combines actor role, class state, rights-registry lookup and
// pending-request count into the permitted action set. Resolution is
// total: unknown role/state combinations fall back to view-only.
func Resolve(role model.Role, state model.ClassState, hasRights bool, pendingCount int) Decision {
	switch role {
	case model.RoleAdministrateur:
		d := decision(ActionView, ActionEdit, ActionDelete, ActionManage)
		if state == model.ClassStateActive {
			d.Actions[ActionAssignRights] = true
		}
		d.PendingBadge = pendingCount
		return d

	case model.RoleEtablissement:
		// Establishments decide access requests, so the badge shows on
		// every class they oversee.
		var d Decision
		switch state {
		case model.ClassStatePending:
			d = decision(ActionView, ActionApprove, ActionReject)
		case model.ClassStateActive:
			d = decision(ActionView, ActionDeactivate)
		default:
			d = decision(ActionView)
		}
		d.PendingBadge = pendingCount
		return d

	case model.RoleProfesseur:
		// Manage is withheld until the class clears approval, rights or not.
		if state == model.ClassStateActive && hasRights {
			d := decision(ActionView, ActionManage, ActionEdit, ActionDelete)
			d.PendingBadge = pendingCount
			return d
		}
		return decision(ActionView)
	}

	return decision(ActionView)
}
